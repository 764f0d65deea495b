package services

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/plombicrm/internal/calendar"
	"github.com/diewo77/plombicrm/internal/models"
	"github.com/diewo77/plombicrm/validation"
)

type SettingsPatch struct {
	LaborRate             *float64 `json:"laborRate"`
	SatisfactionScore     *float64 `json:"satisfactionScore"`
	SatisfactionResponses *int     `json:"satisfactionResponses"`
}

type SettingsService struct{ DB *gorm.DB }

func NewSettingsService(db *gorm.DB) *SettingsService { return &SettingsService{DB: db} }

// Get returns the account settings, creating the row with defaults on first access.
func (s *SettingsService) Get(userID uint) (*models.Settings, error) {
	return ensureSettings(s.DB, userID)
}

func ensureSettings(db *gorm.DB, userID uint) (*models.Settings, error) {
	var st models.Settings
	err := db.Where("user_id = ?", userID).First(&st).Error
	if err == nil {
		return &st, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	st = models.Settings{UserID: userID, LaborRate: models.DefaultLaborRate}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&st).Error; err != nil {
		return nil, err
	}
	if err := db.Where("user_id = ?", userID).First(&st).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *SettingsService) Update(userID uint, p SettingsPatch) (*models.Settings, error) {
	st, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	v := validation.Violations{}
	updates := map[string]any{}
	if p.LaborRate != nil {
		validation.PositiveFloat("laborRate", *p.LaborRate, v)
		validation.Finite("laborRate", *p.LaborRate, v)
		updates["labor_rate"] = *p.LaborRate
	}
	if p.SatisfactionScore != nil {
		validation.RangeFloat("satisfactionScore", *p.SatisfactionScore, 0, 5, v)
		updates["satisfaction_score"] = *p.SatisfactionScore
	}
	if p.SatisfactionResponses != nil {
		if *p.SatisfactionResponses < 0 {
			v["satisfactionResponses"] = "out_of_range"
		}
		updates["satisfaction_responses"] = *p.SatisfactionResponses
	}
	if err := invalid(v); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.DB.Model(st).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(userID)
}

// GoogleConnected reports whether a refresh token is stored.
func (s *SettingsService) GoogleConnected(userID uint) (bool, error) {
	st, err := s.Get(userID)
	if err != nil {
		return false, err
	}
	return st.GoogleRefreshToken != nil && *st.GoogleRefreshToken != "", nil
}

// SaveGoogleToken stores the refresh token granted by the consent flow.
func (s *SettingsService) SaveGoogleToken(userID uint, refresh string) error {
	st, err := s.Get(userID)
	if err != nil {
		return err
	}
	return s.DB.Model(st).Updates(map[string]any{
		"google_refresh_token": refresh,
		"google_calendar_id":   st.CalendarID(),
	}).Error
}

func (s *SettingsService) DisconnectGoogle(userID uint) error {
	if _, err := s.Get(userID); err != nil {
		return err
	}
	return s.DB.Model(&models.Settings{}).Where("user_id = ?", userID).
		Update("google_refresh_token", nil).Error
}

// Credentials feeds the Google calendar adapter from stored settings.
func (s *SettingsService) Credentials() calendar.Credentials {
	return func(ctx context.Context, account uint) (string, string, error) {
		st, err := ensureSettings(s.DB.WithContext(ctx), account)
		if err != nil {
			return "", "", err
		}
		if st.GoogleRefreshToken == nil {
			return "", st.CalendarID(), nil
		}
		return *st.GoogleRefreshToken, st.CalendarID(), nil
	}
}

func (s *SettingsService) Integrations(userID uint) ([]models.Integration, error) {
	var out []models.Integration
	err := s.DB.Where("user_id = ?", userID).Order("id").Find(&out).Error
	return out, err
}

// SetIntegration toggles a connector of the account.
func (s *SettingsService) SetIntegration(userID, id uint, enabled bool) (*models.Integration, error) {
	in, err := owned[models.Integration](s.DB, userID, id, ErrNotFound)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(in).Update("enabled", enabled).Error; err != nil {
		return nil, err
	}
	in.Enabled = enabled
	return in, nil
}
