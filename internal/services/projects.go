package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/plombicrm/internal/calendar"
	"github.com/diewo77/plombicrm/internal/models"
	"github.com/diewo77/plombicrm/validation"
)

type ProjectInput struct {
	Name        string `json:"name"`
	ClientID    uint   `json:"clientId"`
	Status      string `json:"status"`
	DueDate     string `json:"dueDate"`
	Responsible string `json:"responsible"`
	Comment     string `json:"comment"`
}

// ProjectPatch is a partial update; nil fields are left unchanged.
type ProjectPatch struct {
	Status      *string  `json:"status"`
	Progress    *float64 `json:"progress"`
	Responsible *string  `json:"responsible"`
	Comment     *string  `json:"comment"`
}

// ProjectService applies the status/progress rules and records activity notifications.
type ProjectService struct {
	DB       *gorm.DB
	Calendar calendar.Syncer
	Now      func() time.Time
}

func NewProjectService(db *gorm.DB, cal calendar.Syncer) *ProjectService {
	if cal == nil {
		cal = calendar.Disabled{}
	}
	return &ProjectService{DB: db, Calendar: cal, Now: time.Now}
}

func (s *ProjectService) List(userID uint) ([]models.Project, error) {
	var out []models.Project
	err := s.DB.Where("user_id = ?", userID).Order("id").Find(&out).Error
	return out, err
}

func (s *ProjectService) Get(userID, id uint) (*models.Project, error) {
	return owned[models.Project](s.DB, userID, id, ErrProjectNotFound)
}

func notify(db *gorm.DB, userID uint, label string, t models.NotificationType) error {
	return db.Create(&models.Notification{UserID: userID, Label: label, Type: t}).Error
}

// Create stores a project at the canonical progress of its status and pushes it to the calendar.
// A calendar failure is logged only.
func (s *ProjectService) Create(ctx context.Context, userID uint, in ProjectInput) (*models.Project, error) {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.RequiredID("clientId", in.ClientID, v)
	validation.Date("dueDate", in.DueDate, v)
	if err := invalid(v); err != nil {
		return nil, err
	}
	status := models.ProjectStatusPlanned
	if raw := strings.TrimSpace(in.Status); raw != "" {
		st, ok := models.ParseProjectStatus(raw)
		if !ok {
			return nil, ErrInvalidStatus
		}
		status = st
	}
	client, err := owned[models.Client](s.DB, userID, in.ClientID, ErrClientNotFound)
	if err != nil {
		return nil, err
	}

	p := models.Project{
		UserID:      userID,
		ClientID:    client.ID,
		Name:        strings.TrimSpace(in.Name),
		Status:      status,
		Progress:    models.ProgressForStatus(status, 0),
		DueDate:     in.DueDate,
		Responsible: in.Responsible,
		Comment:     in.Comment,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		return notify(tx, userID, fmt.Sprintf("Nouveau chantier : %s (%s)", p.Name, status.Label()),
			models.NotificationTypeForStatus(status))
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.sync(ctx, &p, client.Name); err != nil && !errors.Is(err, calendar.ErrNotConfigured) {
		log.Printf("projects: calendar sync of %d failed: %v", p.ID, err)
	}
	return &p, nil
}

// Update applies a patch. A supplied status sets progress to its canonical value; progress alone
// is clamped to [0,100] and completes the project at 100.
func (s *ProjectService) Update(ctx context.Context, userID, id uint, in ProjectPatch) (*models.Project, error) {
	p, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	var (
		status    = p.Status
		hasStatus bool
	)
	if in.Status != nil && strings.TrimSpace(*in.Status) != "" {
		st, ok := models.ParseProjectStatus(strings.TrimSpace(*in.Status))
		if !ok {
			return nil, ErrInvalidStatus
		}
		status, hasStatus = st, true
	}
	progress := p.Progress
	if in.Progress != nil && !math.IsNaN(*in.Progress) && !math.IsInf(*in.Progress, 0) {
		progress = models.ClampProgress(int(math.Round(*in.Progress)))
	}
	if hasStatus {
		progress = models.ProgressForStatus(status, progress)
	} else if progress >= 100 {
		status = models.ProjectStatusDone
	}

	updates := map[string]any{"status": status, "progress": progress}
	if in.Responsible != nil {
		updates["responsible"] = *in.Responsible
	}
	if in.Comment != nil {
		updates["comment"] = *in.Comment
	}
	previous := p.Status
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(p).Updates(updates).Error; err != nil {
			return err
		}
		if status == previous {
			return nil
		}
		return notify(tx, userID, fmt.Sprintf("Statut modifié : %s → %s", p.Name, status.Label()),
			models.NotificationTypeForStatus(status))
	})
	if err != nil {
		return nil, err
	}
	return s.Get(userID, id)
}

func (s *ProjectService) clientName(id uint) string {
	var c models.Client
	if err := s.DB.Select("name").First(&c, id).Error; err != nil {
		return ""
	}
	return c.Name
}

func (s *ProjectService) sync(ctx context.Context, p *models.Project, clientName string) (calendar.Result, error) {
	ev, err := calendar.ProjectEvent(p, clientName)
	if err != nil {
		return calendar.Result{}, err
	}
	res, err := s.Calendar.UpsertEvent(ctx, ev)
	if err != nil {
		return calendar.Result{}, err
	}
	if res.ID != "" && (p.CalendarEventID == nil || *p.CalendarEventID != res.ID) {
		if err := s.DB.Model(p).Update("calendar_event_id", res.ID).Error; err != nil {
			return res, err
		}
		p.CalendarEventID = &res.ID
	}
	return res, nil
}

// SyncCalendar pushes one project to the configured calendar and returns the event link.
func (s *ProjectService) SyncCalendar(ctx context.Context, userID, id uint) (calendar.Result, error) {
	p, err := s.Get(userID, id)
	if err != nil {
		return calendar.Result{}, err
	}
	return s.sync(ctx, p, s.clientName(p.ClientID))
}

// ICS renders the project as a downloadable calendar file.
func (s *ProjectService) ICS(userID, id uint) (string, []byte, error) {
	p, err := s.Get(userID, id)
	if err != nil {
		return "", nil, err
	}
	ev, err := calendar.ProjectEvent(p, s.clientName(p.ClientID))
	if err != nil {
		return "", nil, err
	}
	data, err := calendar.BuildICS(ev, s.Now())
	if err != nil {
		return "", nil, err
	}
	return calendar.ICSFilename(p.ID), data, nil
}
