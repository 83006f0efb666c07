package models

import (
	"time"

	"github.com/google/uuid"
)

// Link is a single entry on a user's public profile page.
type Link struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Title     string    `gorm:"type:text;not null"`
	URL       string    `gorm:"type:text;not null"`
	Position  int       `gorm:"not null;default:0"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	ClickCount int64    `gorm:"column:click_count;not null;default:0"`
	CreatedAt time.Time `gorm:"type:timestamptz;default:now()"`
}
