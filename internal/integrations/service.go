package integrations

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
	"github.com/enlacehub/enlacehub-backend/pkg/enums"
	pkgerrors "github.com/enlacehub/enlacehub-backend/pkg/errors"
)

// Service manages per-user third-party integration configuration.
type Service interface {
	Upsert(ctx context.Context, userID uuid.UUID, service string, config json.RawMessage) (*models.Integration, error)
	List(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Integration, error)
	SetActive(ctx context.Context, userID, id uuid.UUID, active bool) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type serviceImpl struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "integrations repo required")
	}
	return &serviceImpl{repo: repo}, nil
}

func (s *serviceImpl) Upsert(ctx context.Context, userID uuid.UUID, service string, config json.RawMessage) (*models.Integration, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	parsed, err := enums.ParseIntegrationService(service)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid integration service")
	}
	if len(config) == 0 || !json.Valid(config) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "config must be a JSON object")
	}

	integration := &models.Integration{
		UserID:   userID,
		Service:  parsed,
		Config:   config,
		IsActive: true,
	}
	if err := s.repo.Upsert(ctx, integration); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert integration")
	}
	return integration, nil
}

func (s *serviceImpl) List(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Integration, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	rows, err := s.repo.ListByUser(ctx, userID, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list integrations")
	}
	return rows, nil
}

func (s *serviceImpl) SetActive(ctx context.Context, userID, id uuid.UUID, active bool) error {
	found, err := s.repo.SetActive(ctx, userID, id, active)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle integration")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "integration not found")
	}
	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, userID, id uuid.UUID) error {
	found, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete integration")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "integration not found")
	}
	return nil
}
