package integrations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, integration *models.Integration) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Integration, error)
	ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Integration, error)
	SetActive(ctx context.Context, userID, id uuid.UUID, active bool) (bool, error)
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

// Upsert inserts or replaces the config for the (user, service) pair.
func (r *repositoryImpl) Upsert(ctx context.Context, integration *models.Integration) error {
	if integration.ID == uuid.Nil {
		integration.ID = uuid.New()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "service"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"config", "is_active", "updated_at",
			}),
		}).
		Create(integration).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Integration, error) {
	var integration models.Integration
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&integration).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &integration, nil
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Integration, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var rows []models.Integration
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) SetActive(ctx context.Context, userID, id uuid.UUID, active bool) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Integration{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_active", active)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Integration{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
