package abtests

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
	"github.com/enlacehub/enlacehub-backend/pkg/enums"
	pkgerrors "github.com/enlacehub/enlacehub-backend/pkg/errors"
)

type stubABTestsRepo struct {
	byID    map[uuid.UUID]*models.ABTest
	updated []*models.ABTest
}

func (s *stubABTestsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubABTestsRepo) Create(ctx context.Context, test *models.ABTest) error {
	if test.ID == uuid.Nil {
		test.ID = uuid.New()
	}
	if s.byID == nil {
		s.byID = map[uuid.UUID]*models.ABTest{}
	}
	s.byID[test.ID] = test
	return nil
}

func (s *stubABTestsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ABTest, error) {
	return s.byID[id], nil
}

func (s *stubABTestsRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ABTest, error) {
	return nil, nil
}

func (s *stubABTestsRepo) Update(ctx context.Context, test *models.ABTest) error {
	s.updated = append(s.updated, test)
	return nil
}

func (s *stubABTestsRepo) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	_, ok := s.byID[id]
	delete(s.byID, id)
	return ok, nil
}

func (s *stubABTestsRepo) ListExpiredRunning(ctx context.Context, now time.Time) ([]models.ABTest, error) {
	var rows []models.ABTest
	for _, test := range s.byID {
		if test.Status == enums.ABTestStatusRunning && test.EndDate != nil && !test.EndDate.After(now) {
			rows = append(rows, *test)
		}
	}
	return rows, nil
}

func fixedClockService(t *testing.T, repo *stubABTestsRepo, now time.Time) *serviceImpl {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	impl := svc.(*serviceImpl)
	impl.now = func() time.Time { return now }
	return impl
}

func validCreateParams(userID uuid.UUID) CreateParams {
	return CreateParams{
		UserID:       userID,
		Name:         "Botón rojo vs azul",
		VariantA:     json.RawMessage(`{"button_color":"red"}`),
		VariantB:     json.RawMessage(`{"button_color":"blue"}`),
		TrafficSplit: 50,
		DurationDays: 14,
	}
}

func TestCreateDraftWithEndDate(t *testing.T) {
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	repo := &stubABTestsRepo{}
	svc := fixedClockService(t, repo, now)
	userID := uuid.New()

	test, err := svc.Create(context.Background(), validCreateParams(userID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if test.Status != enums.ABTestStatusDraft {
		t.Errorf("status = %s, want draft", test.Status)
	}
	if test.StartDate != nil {
		t.Error("draft must not have a start date")
	}
	wantEnd := time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)
	if test.EndDate == nil || !test.EndDate.Equal(wantEnd) {
		t.Errorf("end date = %v, want %v", test.EndDate, wantEnd)
	}
}

func TestCreateValidation(t *testing.T) {
	repo := &stubABTestsRepo{}
	svc := fixedClockService(t, repo, time.Now().UTC())
	userID := uuid.New()

	cases := []struct {
		name   string
		mutate func(*CreateParams)
	}{
		{"nil user", func(p *CreateParams) { p.UserID = uuid.Nil }},
		{"empty name", func(p *CreateParams) { p.Name = "" }},
		{"bad variant", func(p *CreateParams) { p.VariantB = json.RawMessage(`{`) }},
		{"split below zero", func(p *CreateParams) { p.TrafficSplit = -1 }},
		{"split above hundred", func(p *CreateParams) { p.TrafficSplit = 101 }},
		{"zero duration", func(p *CreateParams) { p.DurationDays = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := validCreateParams(userID)
			tc.mutate(&params)
			_, err := svc.Create(context.Background(), params)
			if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
				t.Errorf("code = %s, want validation", code)
			}
		})
	}
}

func TestTransitionLifecycle(t *testing.T) {
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	repo := &stubABTestsRepo{}
	svc := fixedClockService(t, repo, now)
	userID := uuid.New()

	test, err := svc.Create(context.Background(), validCreateParams(userID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	started, err := svc.Transition(context.Background(), userID, test.ID, enums.ABTestStatusRunning)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != enums.ABTestStatusRunning {
		t.Errorf("status = %s, want running", started.Status)
	}
	if started.StartDate == nil || !started.StartDate.Equal(now) {
		t.Errorf("start date = %v, want %v", started.StartDate, now)
	}

	paused, err := svc.Transition(context.Background(), userID, test.ID, enums.ABTestStatusPaused)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if paused.Status != enums.ABTestStatusPaused {
		t.Errorf("status = %s, want paused", paused.Status)
	}

	resumed, err := svc.Transition(context.Background(), userID, test.ID, enums.ABTestStatusRunning)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !resumed.StartDate.Equal(now) {
		t.Error("resume must keep the original start date")
	}

	completed, err := svc.Transition(context.Background(), userID, test.ID, enums.ABTestStatusCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.EndDate == nil || !completed.EndDate.Equal(now) {
		t.Errorf("end date = %v, want completion time", completed.EndDate)
	}
}

func TestTransitionRejectsInvalidMoves(t *testing.T) {
	repo := &stubABTestsRepo{}
	svc := fixedClockService(t, repo, time.Now().UTC())
	userID := uuid.New()

	test, err := svc.Create(context.Background(), validCreateParams(userID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Transition(context.Background(), userID, test.ID, enums.ABTestStatusCompleted)
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeConflict {
		t.Errorf("draft to completed code = %s, want conflict", code)
	}

	if _, err := svc.Transition(context.Background(), userID, test.ID, enums.ABTestStatusRunning); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Transition(context.Background(), userID, test.ID, enums.ABTestStatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}

	_, err = svc.Transition(context.Background(), userID, test.ID, enums.ABTestStatusRunning)
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeConflict {
		t.Errorf("completed to running code = %s, want conflict", code)
	}
}

func TestCompleteExpired(t *testing.T) {
	start := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	repo := &stubABTestsRepo{}
	svc := fixedClockService(t, repo, start)
	userID := uuid.New()

	params := validCreateParams(userID)
	params.DurationDays = 7
	test, err := svc.Create(context.Background(), params)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Transition(context.Background(), userID, test.ID, enums.ABTestStatusRunning); err != nil {
		t.Fatalf("start: %v", err)
	}

	// not yet expired
	svc.now = func() time.Time { return start.AddDate(0, 0, 3) }
	completed, err := svc.CompleteExpired(context.Background())
	if err != nil {
		t.Fatalf("CompleteExpired: %v", err)
	}
	if completed != 0 {
		t.Errorf("completed = %d, want 0", completed)
	}

	svc.now = func() time.Time { return start.AddDate(0, 0, 8) }
	completed, err = svc.CompleteExpired(context.Background())
	if err != nil {
		t.Fatalf("CompleteExpired: %v", err)
	}
	if completed != 1 {
		t.Errorf("completed = %d, want 1", completed)
	}
	if len(repo.updated) == 0 || repo.updated[len(repo.updated)-1].Status != enums.ABTestStatusCompleted {
		t.Error("expired test was not marked completed")
	}
}

func TestTransitionScopedToOwner(t *testing.T) {
	repo := &stubABTestsRepo{}
	svc := fixedClockService(t, repo, time.Now().UTC())
	userID := uuid.New()

	test, err := svc.Create(context.Background(), validCreateParams(userID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Transition(context.Background(), uuid.New(), test.ID, enums.ABTestStatusRunning)
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeNotFound {
		t.Errorf("code = %s, want not_found", code)
	}
}
