package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/enlacehub/enlacehub-backend/pkg/enums"
)

// ABTest is a two-variant experiment over a user's profile presentation.
type ABTest struct {
	ID           uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	Name         string             `gorm:"type:text;not null"`
	Description  string             `gorm:"type:text;not null;default:''"`
	VariantA     json.RawMessage    `gorm:"column:variant_a;type:jsonb;not null"`
	VariantB     json.RawMessage    `gorm:"column:variant_b;type:jsonb;not null"`
	TrafficSplit int                `gorm:"column:traffic_split;not null;default:50"`
	Status       enums.ABTestStatus `gorm:"type:ab_test_status;not null;default:'draft'"`
	StartDate    *time.Time         `gorm:"column:start_date;type:timestamptz"`
	EndDate      *time.Time         `gorm:"column:end_date;type:timestamptz"`
	CreatedAt    time.Time          `gorm:"type:timestamptz;default:now()"`
}
