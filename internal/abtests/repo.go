package abtests

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
	"github.com/enlacehub/enlacehub-backend/pkg/enums"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, test *models.ABTest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ABTest, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ABTest, error)
	Update(ctx context.Context, test *models.ABTest) error
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
	ListExpiredRunning(ctx context.Context, now time.Time) ([]models.ABTest, error)
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

func (r *repositoryImpl) Create(ctx context.Context, test *models.ABTest) error {
	if test.ID == uuid.Nil {
		test.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(test).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.ABTest, error) {
	var test models.ABTest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&test).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ABTest, error) {
	var rows []models.ABTest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) Update(ctx context.Context, test *models.ABTest) error {
	return r.db.WithContext(ctx).Save(test).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.ABTest{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListExpiredRunning returns running tests whose end date has passed. The
// cron worker completes them.
func (r *repositoryImpl) ListExpiredRunning(ctx context.Context, now time.Time) ([]models.ABTest, error) {
	var rows []models.ABTest
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date IS NOT NULL AND end_date <= ?", enums.ABTestStatusRunning, now).
		Order("end_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
