package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Item is an inventory entry owned by exactly one user.
type Item struct {
	ID          uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID      uuid.UUID `json:"user" gorm:"type:char(36);not null;index"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// OwnedBy reports whether userID owns the item.
func (i *Item) OwnedBy(userID uuid.UUID) bool {
	return i.UserID == userID
}
