package models

import "time"

// DefaultLaborRate is the hourly labor rate of a fresh account.
const DefaultLaborRate = 65

// Settings holds the per-account tunables. One row per user, created lazily.
type Settings struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	UserID uint `gorm:"uniqueIndex;not null" json:"-"`

	LaborRate             float64 `gorm:"not null;default:65" json:"laborRate"`
	SatisfactionScore     float64 `gorm:"not null;default:0" json:"satisfactionScore"`
	SatisfactionResponses int     `gorm:"not null;default:0" json:"satisfactionResponses"`

	// Calendar credentials
	GoogleRefreshToken *string `gorm:"type:text" json:"-"`
	GoogleCalendarID   string  `gorm:"size:255" json:"-"`
}

func (s *Settings) GetUserID() uint { return s.UserID }

// CalendarID defaults to the account's primary calendar.
func (s *Settings) CalendarID() string {
	if s.GoogleCalendarID == "" {
		return "primary"
	}
	return s.GoogleCalendarID
}

// Integration is a toggleable external connector listed on the dashboard.
type Integration struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"index;not null" json:"-"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	Enabled     bool   `gorm:"not null;default:false" json:"enabled"`
}

func (i *Integration) GetUserID() uint { return i.UserID }

// All returns every model managed by migrations, in dependency order.
func All() []any {
	return []any{
		&User{}, &Settings{}, &Integration{},
		&Client{}, &Service{}, &Material{},
		&Quote{}, &Project{}, &Notification{},
	}
}
