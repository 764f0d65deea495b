package db

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/plombicrm/internal/config"
	"github.com/diewo77/plombicrm/internal/models"
)

// Migrate applies the GORM schema for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrations échouées : %w", err)
	}
	return nil
}

// defaultIntegrations are the connectors listed for a fresh account.
var defaultIntegrations = []models.Integration{
	{Name: "Google Calendar", Description: "Synchronise les échéances de chantier avec Google Agenda."},
	{Name: "iCloud (CalDAV)", Description: "Publie les chantiers dans un calendrier CalDAV."},
	{Name: "E-mail", Description: "Envoie les devis et les signatures par e-mail."},
}

// EnsureAccount creates the single login if it is missing and returns its id.
// Settings and integrations are seeded alongside a new account.
func EnsureAccount(db *gorm.DB, acc config.AccountConfig) (uint, error) {
	var u models.User
	err := db.Where("email = ?", acc.Email).First(&u).Error
	if err == nil {
		return u.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(acc.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	u = models.User{Email: acc.Email, Name: acc.Name, Password: string(hash)}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&u).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.Settings{UserID: u.ID, LaborRate: models.DefaultLaborRate}).Error; err != nil {
			return err
		}
		for _, in := range defaultIntegrations {
			in.UserID = u.ID
			if err := tx.Create(&in).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("création du compte : %w", err)
	}
	return u.ID, nil
}

// Reset clears the operational data of an account: quotes, projects, notifications and clients.
// Catalog entries and settings are kept.
func Reset(db *gorm.DB, userID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.Quote{}, &models.Project{}, &models.Notification{}, &models.Client{}} {
			if err := tx.Where("user_id = ?", userID).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
