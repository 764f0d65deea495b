package models

import (
	"strings"
	"time"
	"unicode"
)

// User is the single operator account that owns every record.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name      string    `gorm:"size:255" json:"name"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash
}

// Initials returns up to two upper-cased initials from the display name.
func (u *User) Initials() string {
	var b strings.Builder
	for i, part := range strings.Fields(u.Name) {
		if i == 2 {
			break
		}
		r := []rune(part)
		b.WriteRune(unicode.ToUpper(r[0]))
	}
	return b.String()
}
