package backups

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, backup *models.Backup) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Backup, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Backup, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, backup *models.Backup) error {
	if backup.ID == uuid.Nil {
		backup.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(backup).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Backup, error) {
	var backup models.Backup
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&backup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &backup, nil
}

// ListByUser returns the newest backups first, capped at limit.
func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Backup, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []models.Backup
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Backup{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
