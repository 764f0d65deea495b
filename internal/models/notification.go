package models

import "time"

type NotificationType string

const (
	NotificationDanger  NotificationType = "danger"
	NotificationWarning NotificationType = "warning"
	NotificationSuccess NotificationType = "success"
)

// Notification is a persisted activity entry (project created, status changed).
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time        `json:"createdAt"`
	UserID    uint             `gorm:"index;not null" json:"-"`
	Label     string           `gorm:"size:500;not null" json:"label"`
	Type      NotificationType `gorm:"size:20;not null" json:"type"`
}
