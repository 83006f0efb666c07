package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/enlacehub/enlacehub-backend/pkg/enums"
)

// Backup is a point-in-time snapshot of a user's profile, links and analytics.
type Backup struct {
	ID         uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	BackupData json.RawMessage  `gorm:"column:backup_data;type:jsonb;not null"`
	BackupType enums.BackupType `gorm:"column:backup_type;type:backup_type;not null;default:'manual'"`
	FileSize   int64            `gorm:"column:file_size;not null"`
	CreatedAt  time.Time        `gorm:"type:timestamptz;default:now()"`
}
