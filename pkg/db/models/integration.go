package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/enlacehub/enlacehub-backend/pkg/enums"
)

// Integration holds per-user third-party analytics configuration.
// One row per (user, service); writes upsert on that pair.
type Integration struct {
	ID        uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID                `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_integrations_user_service"`
	Service   enums.IntegrationService `gorm:"type:integration_service;not null;uniqueIndex:idx_integrations_user_service"`
	Config    json.RawMessage          `gorm:"type:jsonb;not null"`
	IsActive  bool                     `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time                `gorm:"type:timestamptz;default:now()"`
	UpdatedAt time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
