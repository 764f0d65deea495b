package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/plombicrm/internal/models"
)

// defaultSatisfaction is shown until a score has been recorded.
const defaultSatisfaction = 4.6

type DashboardUser struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Initials string `json:"initials"`
}

type Satisfaction struct {
	Score     float64 `json:"score"`
	Responses int     `json:"responses"`
}

type DashboardData struct {
	Clients       []models.Client       `json:"clients"`
	Services      []models.Service      `json:"services"`
	Materials     []models.Material     `json:"materials"`
	LaborRate     float64               `json:"laborRate"`
	Quotes        []models.Quote        `json:"quotes"`
	Projects      []models.Project      `json:"projects"`
	Notifications []models.Notification `json:"notifications"`
	Alerts        []Alert               `json:"alerts"`
	Integrations  []models.Integration  `json:"integrations"`
	Satisfaction  Satisfaction          `json:"satisfaction"`
}

// Dashboard is the payload of the bootstrap endpoint.
type Dashboard struct {
	User DashboardUser `json:"user"`
	Data DashboardData `json:"data"`
}

// LoadDashboard gathers everything the single-page dashboard renders.
func LoadDashboard(db *gorm.DB, userID uint, now time.Time) (*Dashboard, error) {
	var u models.User
	if err := db.First(&u, userID).Error; err != nil {
		return nil, err
	}
	settings, err := ensureSettings(db, userID)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{User: DashboardUser{ID: u.ID, Name: u.Name, Email: u.Email, Initials: u.Initials()}}
	scoped := db.Where("user_id = ?", userID)
	if err := scoped.Session(&gorm.Session{}).Order("id").Find(&d.Data.Clients).Error; err != nil {
		return nil, err
	}
	if err := scoped.Session(&gorm.Session{}).Order("id").Find(&d.Data.Services).Error; err != nil {
		return nil, err
	}
	if err := scoped.Session(&gorm.Session{}).Order("id").Find(&d.Data.Materials).Error; err != nil {
		return nil, err
	}
	if err := scoped.Session(&gorm.Session{}).Order("id DESC").Find(&d.Data.Quotes).Error; err != nil {
		return nil, err
	}
	if err := scoped.Session(&gorm.Session{}).Order("id").Find(&d.Data.Projects).Error; err != nil {
		return nil, err
	}
	if err := scoped.Session(&gorm.Session{}).Order("id").Find(&d.Data.Notifications).Error; err != nil {
		return nil, err
	}
	if err := scoped.Session(&gorm.Session{}).Order("id").Find(&d.Data.Integrations).Error; err != nil {
		return nil, err
	}
	d.Data.LaborRate = settings.LaborRate
	d.Data.Satisfaction = Satisfaction{Score: settings.SatisfactionScore, Responses: settings.SatisfactionResponses}
	if d.Data.Satisfaction.Score == 0 {
		d.Data.Satisfaction.Score = defaultSatisfaction
	}
	d.Data.Alerts, err = AlertsFor(db, userID, now)
	if err != nil {
		return nil, err
	}
	return d, nil
}
