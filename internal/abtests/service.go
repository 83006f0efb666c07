package abtests

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
	"github.com/enlacehub/enlacehub-backend/pkg/enums"
	pkgerrors "github.com/enlacehub/enlacehub-backend/pkg/errors"
)

// CreateParams describes a new experiment. DurationDays bounds the run; the
// end date is fixed at creation, not at start.
type CreateParams struct {
	UserID       uuid.UUID
	Name         string
	Description  string
	VariantA     json.RawMessage
	VariantB     json.RawMessage
	TrafficSplit int
	DurationDays int
}

// Service manages the experiment lifecycle: draft, running, paused, completed.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.ABTest, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.ABTest, error)
	Transition(ctx context.Context, userID, id uuid.UUID, next enums.ABTestStatus) (*models.ABTest, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	CompleteExpired(ctx context.Context) (int, error)
}

type serviceImpl struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ab tests repo required")
	}
	return &serviceImpl{repo: repo, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *serviceImpl) Create(ctx context.Context, params CreateParams) (*models.ABTest, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if params.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if !json.Valid(params.VariantA) || !json.Valid(params.VariantB) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "both variants must be JSON objects")
	}
	if params.TrafficSplit < 0 || params.TrafficSplit > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "traffic split must be between 0 and 100")
	}
	if params.DurationDays <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration must be at least one day")
	}

	now := s.now()
	end := now.AddDate(0, 0, params.DurationDays)
	test := &models.ABTest{
		UserID:       params.UserID,
		Name:         params.Name,
		Description:  params.Description,
		VariantA:     params.VariantA,
		VariantB:     params.VariantB,
		TrafficSplit: params.TrafficSplit,
		Status:       enums.ABTestStatusDraft,
		EndDate:      &end,
		CreatedAt:    now,
	}
	if err := s.repo.Create(ctx, test); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist ab test")
	}
	return test, nil
}

func (s *serviceImpl) List(ctx context.Context, userID uuid.UUID) ([]models.ABTest, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ab tests")
	}
	return rows, nil
}

// Transition moves the experiment to the next lifecycle state. Starting the
// test stamps start_date on the first run only.
func (s *serviceImpl) Transition(ctx context.Context, userID, id uuid.UUID, next enums.ABTestStatus) (*models.ABTest, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}

	test, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ab test")
	}
	if test == nil || test.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ab test not found")
	}
	if !test.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("cannot move test from %s to %s", test.Status, next))
	}

	now := s.now()
	if next == enums.ABTestStatusRunning && test.StartDate == nil {
		test.StartDate = &now
	}
	if next == enums.ABTestStatusCompleted {
		test.EndDate = &now
	}
	test.Status = next

	if err := s.repo.Update(ctx, test); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ab test")
	}
	return test, nil
}

// CompleteExpired marks running tests past their end date as completed. The
// stored end date is kept; only the status changes.
func (s *serviceImpl) CompleteExpired(ctx context.Context) (int, error) {
	expired, err := s.repo.ListExpiredRunning(ctx, s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired ab tests")
	}

	var (
		completed int
		errs      error
	)
	for i := range expired {
		test := &expired[i]
		test.Status = enums.ABTestStatusCompleted
		if err := s.repo.Update(ctx, test); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		completed++
	}
	return completed, errs
}

func (s *serviceImpl) Delete(ctx context.Context, userID, id uuid.UUID) error {
	found, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete ab test")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "ab test not found")
	}
	return nil
}
