package links

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
)

// Repository exposes persistence helpers for profile links.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Link, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Link, error)
	Create(ctx context.Context, link *models.Link) error
	Update(ctx context.Context, link *models.Link) error
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
	IncrementClicks(ctx context.Context, id uuid.UUID) error
	ReplaceForUser(ctx context.Context, userID uuid.UUID, links []models.Link) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a links repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Link, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var links []models.Link
	if err := query.Order("position ASC, created_at ASC").Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Link, error) {
	var link models.Link
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repositoryImpl) Create(ctx context.Context, link *models.Link) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *repositoryImpl) Update(ctx context.Context, link *models.Link) error {
	return r.db.WithContext(ctx).Save(link).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Link{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) IncrementClicks(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Link{}).
		Where("id = ?", id).
		UpdateColumn("click_count", gorm.Expr("click_count + 1")).Error
}

// ReplaceForUser swaps the user's link set atomically; backup restore uses it.
func (r *repositoryImpl) ReplaceForUser(ctx context.Context, userID uuid.UUID, links []models.Link) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Link{}).Error; err != nil {
			return err
		}
		for i := range links {
			links[i].UserID = userID
			if links[i].ID == uuid.Nil {
				links[i].ID = uuid.New()
			}
			if err := tx.Create(&links[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
