package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/diewo77/plombicrm/auth"
	"github.com/diewo77/plombicrm/httpx"
	"github.com/diewo77/plombicrm/i18n"
	"github.com/diewo77/plombicrm/internal/calendar"
	"github.com/diewo77/plombicrm/internal/services"
)

// GoogleHandler runs the Google Calendar consent flow. The session token travels as the OAuth state.
type GoogleHandler struct {
	google   *calendar.Google
	settings *services.SettingsService
	baseURL  string
}

// NewGoogleHandler accepts a nil adapter when the OAuth client is not configured.
func NewGoogleHandler(g *calendar.Google, settings *services.SettingsService, baseURL string) *GoogleHandler {
	return &GoogleHandler{google: g, settings: settings, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (h *GoogleHandler) text(w http.ResponseWriter, r *http.Request, status int, code string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(i18n.T(i18n.LangFromContext(r.Context()), code)))
}

// Connect redirects the browser to the consent page. The bearer token comes as ?token= since this is a navigation.
func (h *GoogleHandler) Connect(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.text(w, r, http.StatusBadRequest, "unauthorized")
		return
	}
	if _, err := auth.ParseToken(token); err != nil {
		h.text(w, r, http.StatusUnauthorized, "session_expired")
		return
	}
	if h.google == nil {
		h.text(w, r, http.StatusBadRequest, "google_unconfigured")
		return
	}
	http.Redirect(w, r, h.google.AuthURL(token), http.StatusFound)
}

// Callback stores the refresh token and sends the operator back to the dashboard.
func (h *GoogleHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code, state := r.URL.Query().Get("code"), r.URL.Query().Get("state")
	if code == "" || state == "" {
		h.text(w, r, http.StatusBadRequest, "invalid_link")
		return
	}
	claims, err := auth.ParseToken(state)
	if err != nil {
		h.text(w, r, http.StatusUnauthorized, "session_expired")
		return
	}
	if h.google == nil {
		h.text(w, r, http.StatusBadRequest, "google_unconfigured")
		return
	}
	refresh, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		log.Printf("google: exchange: %v", err)
		if connected, _ := h.settings.GoogleConnected(claims.ID); !connected {
			h.text(w, r, http.StatusBadRequest, "calendar_unavailable")
			return
		}
	} else if err := h.settings.SaveGoogleToken(claims.ID, refresh); err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, h.baseURL+"/?google=connected", http.StatusFound)
}

func (h *GoogleHandler) Status(w http.ResponseWriter, r *http.Request) {
	connected, err := h.settings.GoogleConnected(userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"connected": connected, "configured": h.google != nil})
}

func (h *GoogleHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.settings.DisconnectGoogle(userID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
