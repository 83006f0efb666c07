package models

import (
	"time"

	"github.com/google/uuid"
)

// ProfileView is one analytics row per public page visit.
type ProfileView struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID   uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Referrer *string   `gorm:"type:text"`
	ViewedAt time.Time `gorm:"column:viewed_at;type:timestamptz;default:now()"`
}
