package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/plombicrm/internal/models"
	"github.com/diewo77/plombicrm/validation"
)

type ClientInput struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Segment     string `json:"segment"`
	LastProject string `json:"lastProject"`
}

type ServiceInput struct {
	Name      string   `json:"name"`
	BasePrice *float64 `json:"basePrice"`
}

type MaterialInput struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
}

// CatalogService manages clients, services and materials of the account.
type CatalogService struct{ DB *gorm.DB }

func NewCatalogService(db *gorm.DB) *CatalogService { return &CatalogService{DB: db} }

func (s *CatalogService) CreateClient(userID uint, in ClientInput) (*models.Client, error) {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Required("address", in.Address, v)
	validation.Required("phone", in.Phone, v)
	validation.Required("segment", in.Segment, v)
	if err := invalid(v); err != nil {
		return nil, err
	}
	last := strings.TrimSpace(in.LastProject)
	if last == "" {
		last = models.DefaultLastProject
	}
	c := models.Client{
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Address:     strings.TrimSpace(in.Address),
		Phone:       strings.TrimSpace(in.Phone),
		Email:       strings.TrimSpace(in.Email),
		Segment:     strings.TrimSpace(in.Segment),
		LastProject: last,
	}
	if err := s.DB.Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CatalogService) CreateService(userID uint, in ServiceInput) (*models.Service, error) {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if in.BasePrice == nil {
		v["basePrice"] = "required"
	} else {
		validation.Finite("basePrice", *in.BasePrice, v)
	}
	if err := invalid(v); err != nil {
		return nil, err
	}
	svc := models.Service{UserID: userID, Name: strings.TrimSpace(in.Name), BasePrice: *in.BasePrice}
	if err := s.DB.Create(&svc).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (s *CatalogService) CreateMaterial(userID uint, in MaterialInput) (*models.Material, error) {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if in.Price == nil {
		v["price"] = "required"
	} else {
		validation.Finite("price", *in.Price, v)
	}
	if err := invalid(v); err != nil {
		return nil, err
	}
	m := models.Material{UserID: userID, Name: strings.TrimSpace(in.Name), Price: *in.Price}
	if err := s.DB.Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *CatalogService) Clients(userID uint) ([]models.Client, error) {
	var out []models.Client
	err := s.DB.Where("user_id = ?", userID).Order("id").Find(&out).Error
	return out, err
}

func (s *CatalogService) Services(userID uint) ([]models.Service, error) {
	var out []models.Service
	err := s.DB.Where("user_id = ?", userID).Order("id").Find(&out).Error
	return out, err
}

func (s *CatalogService) Materials(userID uint) ([]models.Material, error) {
	var out []models.Material
	err := s.DB.Where("user_id = ?", userID).Order("id").Find(&out).Error
	return out, err
}

// owned loads an account-scoped record by id, mapping a miss to notFound.
func owned[T any](db *gorm.DB, userID, id uint, notFound error) (*T, error) {
	var out T
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
