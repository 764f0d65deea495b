package db

import (
	"fmt"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/plombicrm/internal/config"
	"github.com/diewo77/plombicrm/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestEnsureAccountIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	acc := config.AccountConfig{Email: "crm", Password: "secret", Name: "CRM Plomberie"}

	id, err := EnsureAccount(db, acc)
	if err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}
	again, err := EnsureAccount(db, acc)
	if err != nil || again != id {
		t.Fatalf("second EnsureAccount: id=%d err=%v, want %d", again, err, id)
	}

	var u models.User
	db.First(&u, id)
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret")); err != nil {
		t.Fatalf("password not hashed with bcrypt: %v", err)
	}

	var settings models.Settings
	if err := db.Where("user_id = ?", id).First(&settings).Error; err != nil {
		t.Fatalf("settings not seeded: %v", err)
	}
	if settings.LaborRate != models.DefaultLaborRate {
		t.Fatalf("labor rate=%v", settings.LaborRate)
	}
	var n int64
	db.Model(&models.Integration{}).Where("user_id = ?", id).Count(&n)
	if n != int64(len(defaultIntegrations)) {
		t.Fatalf("integrations=%d", n)
	}
}

func TestResetKeepsCatalog(t *testing.T) {
	db := openTestDB(t)
	id, err := EnsureAccount(db, config.AccountConfig{Email: "crm", Password: "pw", Name: "CRM"})
	if err != nil {
		t.Fatal(err)
	}
	c := models.Client{UserID: id, Name: "Dupont", Address: "1 rue", Phone: "06", Segment: "VIP"}
	db.Create(&c)
	s := models.Service{UserID: id, Name: "Débouchage", BasePrice: 90}
	db.Create(&s)
	db.Create(&models.Quote{UserID: id, ClientID: c.ID, ServiceID: s.ID, Hours: 1, Status: models.QuoteStatusPending, SentAt: "2026-01-02"})
	db.Create(&models.Project{UserID: id, ClientID: c.ID, Name: "SdB", Status: models.ProjectStatusPlanned, DueDate: "2026-02-01"})
	db.Create(&models.Notification{UserID: id, Label: "x", Type: models.NotificationWarning})

	if err := Reset(db, id); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	for _, m := range []any{&models.Quote{}, &models.Project{}, &models.Notification{}, &models.Client{}} {
		var n int64
		db.Model(m).Where("user_id = ?", id).Count(&n)
		if n != 0 {
			t.Fatalf("%T not cleared: %d rows", m, n)
		}
	}
	var services int64
	db.Model(&models.Service{}).Where("user_id = ?", id).Count(&services)
	if services != 1 {
		t.Fatalf("services should survive reset, got %d", services)
	}
}
