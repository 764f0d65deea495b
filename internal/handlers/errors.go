package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/diewo77/plombicrm/auth"
	"github.com/diewo77/plombicrm/httpx"
	"github.com/diewo77/plombicrm/internal/calendar"
	"github.com/diewo77/plombicrm/internal/mail"
	"github.com/diewo77/plombicrm/internal/services"
)

// writeError maps service errors to a status and a translated error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.JSONErrorLang(w, r, http.StatusBadRequest, "validation_failed", verr.Violations)
	case errors.Is(err, services.ErrQuoteNotFound),
		errors.Is(err, services.ErrDocumentNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrInvalidLink),
		errors.Is(err, services.ErrNotFound):
		httpx.JSONErrorLang(w, r, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrClientNotFound),
		errors.Is(err, services.ErrServiceNotFound),
		errors.Is(err, services.ErrMaterialNotFound),
		errors.Is(err, services.ErrInvalidDuration),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrNoRecipient),
		errors.Is(err, mail.ErrNotConfigured),
		errors.Is(err, calendar.ErrNotConfigured),
		errors.Is(err, calendar.ErrNotConnected):
		httpx.JSONErrorLang(w, r, http.StatusBadRequest, err.Error(), nil)
	default:
		log.Printf("handlers: %s %s: %v", r.Method, r.URL.Path, err)
		httpx.JSONErrorLang(w, r, http.StatusInternalServerError, "internal_error", nil)
	}
}

// userID is set by auth.RequireAuth on every /api route that calls it.
func userID(r *http.Request) uint {
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		httpx.JSONErrorLang(w, r, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id), true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.JSONErrorLang(w, r, http.StatusBadRequest, "invalid_json", nil)
		return false
	}
	return true
}
