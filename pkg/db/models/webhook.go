package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/enlacehub/enlacehub-backend/pkg/db/types"
)

// Webhook is a user-configured outbound endpoint. The signing secret is
// generated once at creation and never returned to the client again.
type Webhook struct {
	ID            uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	URL           string             `gorm:"type:text;not null"`
	Events        dbtypes.StringArray `gorm:"type:text[];not null"`
	Secret        string             `gorm:"type:text;not null"`
	IsActive      bool               `gorm:"column:is_active;not null;default:true"`
	LastTriggered *time.Time         `gorm:"column:last_triggered;type:timestamptz"`
	CreatedAt     time.Time          `gorm:"type:timestamptz;default:now()"`
}
