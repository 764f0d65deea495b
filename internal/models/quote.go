package models

import (
	"fmt"
	"time"
)

// QuoteStatus represents where a quote stands in its acceptance lifecycle.
type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "pending"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRefused  QuoteStatus = "refused"
)

var quoteStatusLabels = map[QuoteStatus]string{
	QuoteStatusPending:  "En attente",
	QuoteStatusSent:     "Envoyé",
	QuoteStatusAccepted: "Accepté",
	QuoteStatusRefused:  "Refusé",
}

// Label returns the French label shown to the operator.
func (s QuoteStatus) Label() string {
	if l, ok := quoteStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseQuoteStatus accepts either a status code or its French label.
func ParseQuoteStatus(v string) (QuoteStatus, bool) {
	for code, label := range quoteStatusLabels {
		if v == string(code) || v == label {
			return code, true
		}
	}
	return "", false
}

// DateLayout is the calendar-date format used for stored dates.
const DateLayout = "2006-01-02"

// Quote is a priced proposal sent to a client.
// A nil MaterialID means the materials were entered ad hoc and MaterialsTotal alone carries them.
type Quote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	UserID uint `gorm:"index;not null" json:"-"`

	ClientID   uint      `gorm:"index;not null" json:"clientId"`
	Client     *Client   `gorm:"foreignKey:ClientID" json:"-"`
	ServiceID  uint      `gorm:"index;not null" json:"serviceId"`
	Service    *Service  `gorm:"foreignKey:ServiceID" json:"-"`
	MaterialID *uint     `gorm:"index" json:"materialId"`
	Material   *Material `gorm:"foreignKey:MaterialID" json:"-"`

	Hours          float64     `gorm:"not null" json:"hours"`
	Discount       float64     `gorm:"not null;default:0" json:"discount"`
	Amount         float64     `gorm:"not null" json:"amount"`
	Status         QuoteStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	SentAt         string      `gorm:"size:10" json:"sentAt"`
	Ack            bool        `gorm:"not null;default:false" json:"ack"`
	MaterialsDesc  string      `gorm:"type:text" json:"materialsDesc"`
	MaterialsTotal float64     `gorm:"not null;default:0" json:"materialsTotal"`

	// Accept/sign capability, set once the quote has been mailed.
	AcceptToken   *string    `gorm:"size:64;uniqueIndex" json:"-"`
	AcceptedAt    *time.Time `json:"acceptedAt"`
	SignerName    *string    `gorm:"size:255" json:"signerName,omitempty"`
	SignatureData *string    `gorm:"type:text" json:"-"`
}

// GetUserID implements the Ownable interface.
func (q *Quote) GetUserID() uint { return q.UserID }

// Ref is the document reference, e.g. DV-00042.
func (q *Quote) Ref() string { return QuoteRef(q.ID) }

// QuoteRef formats a quote id as a zero-padded document reference.
func QuoteRef(id uint) string { return fmt.Sprintf("DV-%05d", id) }

// Signed reports whether a signature has already been captured.
func (q *Quote) Signed() bool { return q.SignatureData != nil && *q.SignatureData != "" }

// Materials returns how the quote's materials are referenced.
func (q *Quote) Materials() MaterialRef {
	if q.MaterialID != nil {
		return MaterialRef{ID: q.MaterialID, Total: q.MaterialsTotal}
	}
	return AdHocMaterials(q.MaterialsTotal)
}

// MaterialRef is either a named catalog material or an ad hoc total.
type MaterialRef struct {
	ID    *uint
	Total float64
}

// NamedMaterial references a catalog material.
func NamedMaterial(id uint) MaterialRef { return MaterialRef{ID: &id} }

// AdHocMaterials carries a free-form materials total with no catalog row.
func AdHocMaterials(total float64) MaterialRef { return MaterialRef{Total: total} }

// Named reports whether the reference points at a catalog material.
func (r MaterialRef) Named() bool { return r.ID != nil }
