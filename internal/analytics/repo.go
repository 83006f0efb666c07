package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
)

// Repository exposes profile view analytics rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	RecordView(ctx context.Context, view *models.ProfileView) error
	RecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.ProfileView, error)
	CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an analytics repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) RecordView(ctx context.Context, view *models.ProfileView) error {
	if view.ID == uuid.Nil {
		view.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(view).Error
}

func (r *repositoryImpl) RecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.ProfileView, error) {
	if limit <= 0 {
		limit = 100
	}
	var views []models.ProfileView
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("viewed_at DESC").
		Limit(limit).
		Find(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (r *repositoryImpl) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProfileView{}).
		Where("user_id = ? AND viewed_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}
