package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/plombicrm/httpx"
	"github.com/diewo77/plombicrm/internal/calendar"
	"github.com/diewo77/plombicrm/internal/services"
)

type ProjectHandler struct {
	svc *services.ProjectService
}

func NewProjectHandler(svc *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.List(userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ProjectInput
	if !decode(w, r, &in) {
		return
	}
	p, err := h.svc.Create(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"project": p})
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in services.ProjectPatch
	if !decode(w, r, &in) {
		return
	}
	p, err := h.svc.Update(r.Context(), userID(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"project": p})
}

// ICS downloads the project as a calendar file.
func (h *ProjectHandler) ICS(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	name, data, err := h.svc.ICS(userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// SyncCalendar pushes the project to the configured calendar. Failures are reported as 400.
func (h *ProjectHandler) SyncCalendar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.SyncCalendar(r.Context(), userID(r), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProjectNotFound),
			errors.Is(err, calendar.ErrNotConfigured),
			errors.Is(err, calendar.ErrNotConnected):
			writeError(w, r, err)
		default:
			httpx.JSONErrorLang(w, r, http.StatusBadRequest, "calendar_unavailable", err.Error())
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "url": res.URL})
}
