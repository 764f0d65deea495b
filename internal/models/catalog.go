package models

import "time"

// DefaultLastProject labels a client that has no project yet.
const DefaultLastProject = "Nouveau projet"

type Client struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"-"`
	UserID      uint      `gorm:"index;not null" json:"-"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Address     string    `gorm:"size:500;not null" json:"address"`
	Phone       string    `gorm:"size:50;not null" json:"phone"`
	Email       string    `gorm:"size:255" json:"email,omitempty"`
	Segment     string    `gorm:"size:50;not null" json:"segment"`
	LastProject string    `gorm:"size:255" json:"lastProject"`
}

// GetUserID implements the Ownable interface.
func (c *Client) GetUserID() uint { return c.UserID }

// Service is a catalog entry priced at a fixed base amount.
type Service struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	BasePrice float64   `gorm:"not null" json:"basePrice"`
}

func (s *Service) GetUserID() uint { return s.UserID }

// Material is a catalog material a quote may reference by id.
type Material struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Price     float64   `gorm:"not null" json:"price"`
}

func (m *Material) GetUserID() uint { return m.UserID }

// Ownable is implemented by every account-scoped record.
type Ownable interface {
	GetUserID() uint
}
