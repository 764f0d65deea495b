package jobs

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/plombicrm/internal/mail"
	"github.com/diewo77/plombicrm/internal/models"
)

type recorder struct {
	enabled bool
	sent    []mail.Message
}

func (r *recorder) Enabled() bool { return r.enabled }

func (r *recorder) Send(_ context.Context, m mail.Message) error {
	r.sent = append(r.sent, m)
	return nil
}

func setupTestDB(t *testing.T) (*gorm.DB, uint) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	u := models.User{Email: "crm@example.com", Password: "x"}
	db.Create(&u)
	c := models.Client{UserID: u.ID, Name: "Jean", Address: "a", Phone: "p", Segment: "s"}
	db.Create(&c)
	db.Create(&models.Project{UserID: u.ID, ClientID: c.ID, Name: "Fuite cuisine", Status: models.ProjectStatusPlanned, DueDate: "2026-03-01"})
	return db, u.ID
}

var now = func() time.Time { return time.Date(2026, 3, 10, 7, 30, 0, 0, time.UTC) }

func TestDigestMailsAlerts(t *testing.T) {
	db, uid := setupTestDB(t)
	m := &recorder{enabled: true}
	d := &Digest{DB: db, Mailer: m, To: "contact@example.com", Account: uid, Now: now}
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(m.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(m.sent))
	}
	msg := m.sent[0]
	if msg.To[0] != "contact@example.com" || msg.Subject != "PlombiCRM : 1 alerte(s) du jour" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if !strings.Contains(msg.Text, "- Projet en retard : Fuite cuisine") {
		t.Fatalf("alert missing from body:\n%s", msg.Text)
	}
}

func TestDigestNoop(t *testing.T) {
	db, uid := setupTestDB(t)

	off := &recorder{}
	if err := (&Digest{DB: db, Mailer: off, To: "x@example.com", Account: uid, Now: now}).Run(context.Background()); err != nil || len(off.sent) != 0 {
		t.Fatalf("disabled mailer must not send: %v", err)
	}

	on := &recorder{enabled: true}
	if err := (&Digest{DB: db, Mailer: on, Account: uid, Now: now}).Run(context.Background()); err != nil || len(on.sent) != 0 {
		t.Fatalf("missing recipient must not send: %v", err)
	}

	db.Where("user_id = ?", uid).Delete(&models.Project{})
	if err := (&Digest{DB: db, Mailer: on, To: "x@example.com", Account: uid, Now: now}).Run(context.Background()); err != nil || len(on.sent) != 0 {
		t.Fatalf("no alerts must not send: %v", err)
	}
}

func TestStart(t *testing.T) {
	c, err := Start("", &Digest{})
	if err != nil || c != nil {
		t.Fatalf("empty spec should disable: %v %v", c, err)
	}
	if _, err := Start("not a spec", &Digest{}); err == nil {
		t.Fatalf("expected error for an invalid spec")
	}
	c, err = Start("30 7 * * *", &Digest{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(c.Entries()) != 1 {
		t.Fatalf("expected one entry")
	}
	c.Stop()
}
