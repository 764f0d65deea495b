package handlers

import (
	"net/http"

	"github.com/diewo77/plombicrm/httpx"
	"github.com/diewo77/plombicrm/internal/services"
)

type SettingsHandler struct {
	svc *services.SettingsService
}

func NewSettingsHandler(svc *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Get(userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"settings": st})
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var p services.SettingsPatch
	if !decode(w, r, &p) {
		return
	}
	st, err := h.svc.Update(userID(r), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"settings": st})
}

// UpdateIntegration toggles one dashboard connector.
func (h *SettingsHandler) UpdateIntegration(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if !decode(w, r, &req) {
		return
	}
	in, err := h.svc.SetIntegration(userID(r), id, req.Enabled)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"integration": in})
}
