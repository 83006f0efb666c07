package subscriptions

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
	"github.com/enlacehub/enlacehub-backend/pkg/enums"
)

type stubRepo struct {
	byCustomer map[string]*models.Subscription
	updated    []*models.Subscription
	findErr    error
	updateErr  error
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	for _, sub := range s.byCustomer {
		if sub.UserID == userID {
			return sub, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) FindByCustomerID(ctx context.Context, customerID string) (*models.Subscription, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.byCustomer[customerID], nil
}

func (s *stubRepo) Create(ctx context.Context, sub *models.Subscription) error { return nil }

func (s *stubRepo) Update(ctx context.Context, sub *models.Subscription) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = append(s.updated, sub)
	return nil
}

func (s *stubRepo) Upsert(ctx context.Context, sub *models.Subscription) error { return nil }

func (s *stubRepo) ListActiveUserIDsByPlan(ctx context.Context, plan enums.PlanType) ([]uuid.UUID, error) {
	return nil, nil
}

type stubNotifier struct {
	created []*models.Notification
	err     error
}

func (s *stubNotifier) Create(ctx context.Context, notification *models.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, notification)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo *stubRepo, notifier *stubNotifier) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:              repo,
		Notifications:     notifier,
		TransactionRunner: stubTxRunner{},
	})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return svc
}

func proSubscription(customerID string) *stripe.Subscription {
	return &stripe.Subscription{
		ID:       "sub_1",
		Status:   stripe.SubscriptionStatusActive,
		Customer: &stripe.Customer{ID: customerID},
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{{
				CurrentPeriodStart: 1735689600,
				CurrentPeriodEnd:   1738368000,
				Price:              &stripe.Price{ID: PriceIDProMonthly},
			}},
		},
	}
}

func TestReconcileUpdatesRowAndNotifies(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{byCustomer: map[string]*models.Subscription{
		"cus_1": {ID: uuid.New(), UserID: userID, StripeCustomerID: "cus_1", PlanType: enums.PlanTypeFree},
	}}
	notifier := &stubNotifier{}
	svc := newTestService(t, repo, notifier)

	if err := svc.Reconcile(context.Background(), proSubscription("cus_1")); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if len(repo.updated) != 1 {
		t.Fatalf("expected one update, got %d", len(repo.updated))
	}
	row := repo.updated[0]
	if row.PlanType != enums.PlanTypePro {
		t.Fatalf("expected pro plan, got %s", row.PlanType)
	}
	if row.Status != enums.SubscriptionStatusActive {
		t.Fatalf("expected active status, got %s", row.Status)
	}

	if len(notifier.created) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.created))
	}
	n := notifier.created[0]
	if n.UserID != userID {
		t.Fatalf("notification for wrong user")
	}
	if n.Title != "Suscripción actualizada" {
		t.Fatalf("unexpected title %q", n.Title)
	}
	if n.Message != "Tu plan PRO está ahora activo." {
		t.Fatalf("unexpected message %q", n.Message)
	}
	if n.Type != enums.NotificationTypeSuccess {
		t.Fatalf("unexpected type %s", n.Type)
	}
}

func TestReconcileUnknownCustomerIsSilent(t *testing.T) {
	repo := &stubRepo{byCustomer: map[string]*models.Subscription{}}
	notifier := &stubNotifier{}
	svc := newTestService(t, repo, notifier)

	if err := svc.Reconcile(context.Background(), proSubscription("cus_ghost")); err != nil {
		t.Fatalf("expected silent skip, got %v", err)
	}
	if len(repo.updated) != 0 {
		t.Fatalf("no row should be written")
	}
	if len(notifier.created) != 0 {
		t.Fatalf("no notification should be created")
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	userID := uuid.New()
	row := &models.Subscription{ID: uuid.New(), UserID: userID, StripeCustomerID: "cus_1"}
	repo := &stubRepo{byCustomer: map[string]*models.Subscription{"cus_1": row}}
	notifier := &stubNotifier{}
	svc := newTestService(t, repo, notifier)

	event := proSubscription("cus_1")
	if err := svc.Reconcile(context.Background(), event); err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	first := *repo.updated[0]

	if err := svc.Reconcile(context.Background(), event); err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	second := *repo.updated[1]

	if first.PlanType != second.PlanType || first.Status != second.Status {
		t.Fatalf("replay changed the row: %+v vs %+v", first, second)
	}
	if !first.CurrentPeriodEnd.Equal(*second.CurrentPeriodEnd) {
		t.Fatalf("replay changed period end")
	}
}

func TestReconcileNotificationFailureIsSwallowed(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{byCustomer: map[string]*models.Subscription{
		"cus_1": {ID: uuid.New(), UserID: userID, StripeCustomerID: "cus_1"},
	}}
	notifier := &stubNotifier{err: errors.New("notifications down")}
	svc := newTestService(t, repo, notifier)

	if err := svc.Reconcile(context.Background(), proSubscription("cus_1")); err != nil {
		t.Fatalf("notification failure must not propagate: %v", err)
	}
	if len(repo.updated) != 1 {
		t.Fatalf("row should still be updated")
	}
}

func TestCancelDropsToFreeAndWarns(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{byCustomer: map[string]*models.Subscription{
		"cus_1": {ID: uuid.New(), UserID: userID, StripeCustomerID: "cus_1", PlanType: enums.PlanTypeBusiness, Status: enums.SubscriptionStatusActive},
	}}
	notifier := &stubNotifier{}
	svc := newTestService(t, repo, notifier)

	if err := svc.Cancel(context.Background(), proSubscription("cus_1")); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	row := repo.updated[0]
	if row.PlanType != enums.PlanTypeFree {
		t.Fatalf("expected free plan, got %s", row.PlanType)
	}
	if row.Status != enums.SubscriptionStatusCanceled {
		t.Fatalf("expected canceled status, got %s", row.Status)
	}

	if len(notifier.created) != 1 {
		t.Fatalf("expected one notification")
	}
	n := notifier.created[0]
	if n.Title != "Suscripción cancelada" {
		t.Fatalf("unexpected title %q", n.Title)
	}
	if n.Type != enums.NotificationTypeWarning {
		t.Fatalf("unexpected type %s", n.Type)
	}
}

func TestNotifyPaymentSucceededFormatsAmount(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{byCustomer: map[string]*models.Subscription{
		"cus_1": {ID: uuid.New(), UserID: userID, StripeCustomerID: "cus_1"},
	}}
	notifier := &stubNotifier{}
	svc := newTestService(t, repo, notifier)

	if err := svc.NotifyPaymentSucceeded(context.Background(), "cus_1", 1999); err != nil {
		t.Fatalf("notify payment succeeded: %v", err)
	}

	if len(notifier.created) != 1 {
		t.Fatalf("expected one notification")
	}
	n := notifier.created[0]
	if n.Title != "Pago procesado" {
		t.Fatalf("unexpected title %q", n.Title)
	}
	if !strings.Contains(n.Message, "€19.99") {
		t.Fatalf("amount not formatted: %q", n.Message)
	}
}

func TestNotifyPaymentFailedSetsActionURL(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{byCustomer: map[string]*models.Subscription{
		"cus_1": {ID: uuid.New(), UserID: userID, StripeCustomerID: "cus_1"},
	}}
	notifier := &stubNotifier{}
	svc := newTestService(t, repo, notifier)

	if err := svc.NotifyPaymentFailed(context.Background(), "cus_1"); err != nil {
		t.Fatalf("notify payment failed: %v", err)
	}

	n := notifier.created[0]
	if n.Type != enums.NotificationTypeError {
		t.Fatalf("unexpected type %s", n.Type)
	}
	if n.ActionURL == nil || *n.ActionURL != "/dashboard/billing" {
		t.Fatalf("missing action url")
	}
}

func TestPaymentNotificationsSkipUnknownCustomer(t *testing.T) {
	repo := &stubRepo{byCustomer: map[string]*models.Subscription{}}
	notifier := &stubNotifier{}
	svc := newTestService(t, repo, notifier)

	if err := svc.NotifyPaymentSucceeded(context.Background(), "cus_ghost", 500); err != nil {
		t.Fatalf("expected silent skip, got %v", err)
	}
	if err := svc.NotifyPaymentFailed(context.Background(), "cus_ghost"); err != nil {
		t.Fatalf("expected silent skip, got %v", err)
	}
	if len(notifier.created) != 0 {
		t.Fatalf("no notifications expected")
	}
}
