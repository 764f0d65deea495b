package handlers

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/plombicrm/httpx"
	"github.com/diewo77/plombicrm/internal/db"
	"github.com/diewo77/plombicrm/internal/models"
	"github.com/diewo77/plombicrm/internal/services"
)

// DashboardHandler serves the single-page bootstrap payload and account-wide actions.
type DashboardHandler struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db, now: time.Now}
}

func (h *DashboardHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	d, err := services.LoadDashboard(h.db.WithContext(r.Context()), userID(r), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

// Notifications returns the persisted activity entries and the derived alerts.
func (h *DashboardHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	var list []models.Notification
	if err := h.db.WithContext(r.Context()).Where("user_id = ?", uid).Order("id").Find(&list).Error; err != nil {
		writeError(w, r, err)
		return
	}
	alerts, err := services.AlertsFor(h.db.WithContext(r.Context()), uid, h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"notifications": list, "alerts": alerts})
}

// Reset clears quotes, projects, notifications and clients of the account.
func (h *DashboardHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := db.Reset(h.db.WithContext(r.Context()), userID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
