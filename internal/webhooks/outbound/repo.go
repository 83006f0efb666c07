package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
)

// Repository exposes persistence helpers for outbound webhook configs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, webhook *models.Webhook) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Webhook, error)
	ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Webhook, error)
	SetActive(ctx context.Context, userID, id uuid.UUID, active bool) (bool, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
	TouchLastTriggered(ctx context.Context, id uuid.UUID, at time.Time) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a webhooks repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, webhook *models.Webhook) error {
	if webhook.ID == uuid.Nil {
		webhook.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(webhook).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Webhook, error) {
	var webhook models.Webhook
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&webhook).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &webhook, nil
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Webhook, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var webhooks []models.Webhook
	if err := query.Order("created_at DESC").Find(&webhooks).Error; err != nil {
		return nil, err
	}
	return webhooks, nil
}

func (r *repositoryImpl) SetActive(ctx context.Context, userID, id uuid.UUID, active bool) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Webhook{}).
		Where("id = ? AND user_id = ?", id, userID).
		UpdateColumn("is_active", active)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Webhook{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) TouchLastTriggered(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Webhook{}).
		Where("id = ?", id).
		UpdateColumn("last_triggered", at).Error
}
