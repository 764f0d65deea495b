package services

import (
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/plombicrm/internal/models"
)

// MaxAlerts caps the derived alert list.
const MaxAlerts = 6

// Alert is a dashboard reminder computed on the fly, never stored.
type Alert struct {
	Label string                  `json:"label"`
	Type  models.NotificationType `json:"type"`
}

// dayDiff counts whole days from now until date (a YYYY-MM-DD at local midnight), rounding up.
func dayDiff(now time.Time, date string) (int, bool) {
	d, err := time.ParseInLocation(models.DateLayout, date, now.Location())
	if err != nil {
		return 0, false
	}
	return int(math.Ceil(d.Sub(now).Hours() / 24)), true
}

// DeriveAlerts scans projects then quotes, in the given order, and keeps the first MaxAlerts.
// For an open project: urgent, then overdue or due within 5 days.
// For a quote: pending for 7 days or more, or sent and unacknowledged for 2 days or more.
func DeriveAlerts(now time.Time, projects []models.Project, quotes []models.Quote, clientName func(uint) string) []Alert {
	out := make([]Alert, 0, MaxAlerts)
	for _, p := range projects {
		if p.Status == models.ProjectStatusDone {
			continue
		}
		if p.Status == models.ProjectStatusUrgent {
			out = append(out, Alert{Label: "Projet urgent : " + p.Name, Type: models.NotificationDanger})
		}
		diff, ok := dayDiff(now, p.DueDate)
		if !ok {
			continue
		}
		if diff < 0 {
			out = append(out, Alert{Label: "Projet en retard : " + p.Name, Type: models.NotificationDanger})
		} else if diff <= 5 {
			out = append(out, Alert{Label: fmt.Sprintf("Échéance proche (%d j) : %s", diff, p.Name), Type: models.NotificationWarning})
		}
	}
	for _, q := range quotes {
		diff, ok := dayDiff(now, q.SentAt)
		if !ok {
			continue
		}
		if q.Status == models.QuoteStatusPending && diff <= -7 {
			out = append(out, Alert{Label: "Relance devis : " + clientName(q.ClientID), Type: models.NotificationWarning})
		}
		if q.Status == models.QuoteStatusSent && !q.Ack && diff <= -2 {
			out = append(out, Alert{Label: "Accusé manquant : " + clientName(q.ClientID), Type: models.NotificationWarning})
		}
	}
	if len(out) > MaxAlerts {
		out = out[:MaxAlerts]
	}
	return out
}

// AlertsFor loads the account's projects and quotes in storage order and derives its alerts.
func AlertsFor(db *gorm.DB, userID uint, now time.Time) ([]Alert, error) {
	var (
		projects []models.Project
		quotes   []models.Quote
		clients  []models.Client
	)
	if err := db.Where("user_id = ?", userID).Order("id").Find(&projects).Error; err != nil {
		return nil, err
	}
	if err := db.Where("user_id = ?", userID).Order("id").Find(&quotes).Error; err != nil {
		return nil, err
	}
	if err := db.Where("user_id = ?", userID).Find(&clients).Error; err != nil {
		return nil, err
	}
	return DeriveAlerts(now, projects, quotes, clientNames(clients)), nil
}

func clientNames(clients []models.Client) func(uint) string {
	names := make(map[uint]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
	}
	return func(id uint) string { return names[id] }
}
