package models

import "time"

// ProjectStatus is the stage a job is in.
type ProjectStatus string

const (
	ProjectStatusPlanned    ProjectStatus = "planned"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusUrgent     ProjectStatus = "urgent"
	ProjectStatusDone       ProjectStatus = "done"
)

var projectStatusLabels = map[ProjectStatus]string{
	ProjectStatusPlanned:    "Planifié",
	ProjectStatusInProgress: "En cours",
	ProjectStatusUrgent:     "Urgent",
	ProjectStatusDone:       "Terminé",
}

func (s ProjectStatus) Label() string {
	if l, ok := projectStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseProjectStatus accepts either a status code or its French label.
func ParseProjectStatus(v string) (ProjectStatus, bool) {
	for code, label := range projectStatusLabels {
		if v == string(code) || v == label {
			return code, true
		}
	}
	return "", false
}

// ProgressForStatus maps a status to its canonical progress. Unknown statuses keep fallback.
func ProgressForStatus(s ProjectStatus, fallback int) int {
	switch s {
	case ProjectStatusPlanned:
		return 15
	case ProjectStatusInProgress:
		return 55
	case ProjectStatusUrgent:
		return 75
	case ProjectStatusDone:
		return 100
	}
	return fallback
}

// NotificationTypeForStatus picks the severity emitted when a project enters s.
func NotificationTypeForStatus(s ProjectStatus) NotificationType {
	switch s {
	case ProjectStatusUrgent:
		return NotificationDanger
	case ProjectStatusDone:
		return NotificationSuccess
	}
	return NotificationWarning
}

type Project struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	UserID   uint    `gorm:"index;not null" json:"-"`
	ClientID uint    `gorm:"index;not null" json:"clientId"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"-"`

	Name        string        `gorm:"size:255;not null" json:"name"`
	Status      ProjectStatus `gorm:"size:20;not null" json:"status"`
	Progress    int           `gorm:"not null;default:0" json:"progress"`
	DueDate     string        `gorm:"size:10;not null" json:"dueDate"`
	Responsible string        `gorm:"size:255" json:"responsible"`
	Comment     string        `gorm:"type:text" json:"comment"`

	// CalendarEventID is the external calendar's id for this job, set after a successful sync.
	CalendarEventID *string `gorm:"size:255" json:"-"`
}

func (p *Project) GetUserID() uint { return p.UserID }

// ClampProgress bounds a progress value to [0,100].
func ClampProgress(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
