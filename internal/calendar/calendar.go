package calendar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/diewo77/plombicrm/internal/models"
)

var (
	ErrNotConfigured = errors.New("calendar_unavailable")
	ErrNotConnected  = errors.New("calendar_not_connected")
)

// Paris is the fixed timezone of every job event.
var Paris = loadParis()

func loadParis() *time.Location {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		log.Printf("calendar: Europe/Paris unavailable, using fixed CET: %v", err)
		return time.FixedZone("CET", 3600)
	}
	return loc
}

// Event is one job slot pushed to an external calendar.
type Event struct {
	Account     uint
	Key         string // stable local name, e.g. project-12
	ExternalID  string // id returned by a previous sync, empty on first push
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// UID is the iCalendar identity of the event.
func (e Event) UID() string { return e.Key + "@plombicrm" }

type Result struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Syncer creates or updates an event in an external calendar.
type Syncer interface {
	UpsertEvent(ctx context.Context, ev Event) (Result, error)
	Name() string
}

// Disabled is used when no backend is configured.
type Disabled struct{}

func (Disabled) UpsertEvent(context.Context, Event) (Result, error) { return Result{}, ErrNotConfigured }
func (Disabled) Name() string                                       { return "none" }

// Select picks the backend named by cfg. An unknown or unconfigured backend yields Disabled.
func Select(backend string, g *Google, c *CalDAV) Syncer {
	switch backend {
	case "google":
		if g != nil {
			return g
		}
	case "caldav":
		if c != nil && c.Configured() {
			return c
		}
	}
	return Disabled{}
}

// ProjectEvent maps a job to its calendar slot: due date 08:00 to 09:00, Paris time.
func ProjectEvent(p *models.Project, clientName string) (Event, error) {
	day, err := time.ParseInLocation(models.DateLayout, p.DueDate, Paris)
	if err != nil {
		return Event{}, fmt.Errorf("calendar: due date %q: %w", p.DueDate, err)
	}
	lines := []string{
		"Client: " + clientName,
		"Statut: " + p.Status.Label(),
	}
	if p.Responsible != "" {
		lines = append(lines, "Responsable: "+p.Responsible)
	}
	if p.Comment != "" {
		lines = append(lines, "Commentaire: "+p.Comment)
	}
	ev := Event{
		Account:     p.UserID,
		Key:         fmt.Sprintf("project-%d", p.ID),
		Title:       "Chantier - " + p.Name,
		Description: strings.Join(lines, "\n"),
		Location:    "Chantier",
		Start:       day.Add(8 * time.Hour),
		End:         day.Add(9 * time.Hour),
	}
	if p.CalendarEventID != nil {
		ev.ExternalID = *p.CalendarEventID
	}
	return ev, nil
}
