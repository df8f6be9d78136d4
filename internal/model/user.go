package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a local identity. Federated accounts also carry a password hash
// (an unusable one) so every row satisfies the same constraints.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	GoogleID     *string   `json:"-" gorm:"uniqueIndex;size:255"`
	Name         string    `json:"name,omitempty" gorm:"size:255"`
	Picture      string    `json:"picture,omitempty" gorm:"size:1024"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Items []Item `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasGoogleID reports whether the account is linked to a Google identity.
func (u *User) HasGoogleID() bool {
	return u.GoogleID != nil && *u.GoogleID != ""
}
