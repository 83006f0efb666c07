package models

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the identity provider's account record. Rows are created by
// the auth callback, never by this service.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"type:text;not null;unique"`
	Username  string    `gorm:"type:text;not null;unique"`
	FullName  string    `gorm:"type:text;not null"`
	AvatarURL *string   `gorm:"type:text"`
	Bio       *string   `gorm:"type:text"`
	Theme     string    `gorm:"type:text;not null;default:'default'"`
	CreatedAt time.Time `gorm:"type:timestamptz;default:now()"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}
