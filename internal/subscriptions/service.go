package subscriptions

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
	"github.com/enlacehub/enlacehub-backend/pkg/enums"
	pkgerrors "github.com/enlacehub/enlacehub-backend/pkg/errors"
	"github.com/enlacehub/enlacehub-backend/pkg/logger"
)

type notificationCreator interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	Repo              Repository
	Notifications     notificationCreator
	TransactionRunner txRunner
	Logger            *logger.Logger
}

// Service reconciles provider subscription state into local rows and emits
// the user-facing notifications the product shows for billing changes.
type Service struct {
	repo          Repository
	notifications notificationCreator
	txRunner      txRunner
	logg          *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions repo required")
	}
	if params.Notifications == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notification creator required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		repo:          params.Repo,
		notifications: params.Notifications,
		txRunner:      params.TransactionRunner,
		logg:          params.Logger,
	}, nil
}

// Reconcile folds a created/updated provider subscription into the local row
// matched by Stripe customer id. Events for customers without a local row are
// acknowledged and skipped so the provider does not retry forever.
func (s *Service) Reconcile(ctx context.Context, stripeSub *stripe.Subscription) error {
	if stripeSub == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription is required")
	}
	customerID := CustomerIDFromSubscription(stripeSub)
	if customerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id missing from subscription")
	}

	plan := PlanFromPriceID(PriceIDFromSubscription(stripeSub))
	var userID uuid.UUID
	matched := false

	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		stored, err := repo.FindByCustomerID(ctx, customerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find subscription by customer")
		}
		if stored == nil {
			return nil
		}
		ApplyStripeState(stored, stripeSub, plan)
		if err := repo.Update(ctx, stored); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update subscription")
		}
		userID = stored.UserID
		matched = true
		return nil
	})
	if err != nil {
		return err
	}
	if !matched {
		s.warnUnmatched(ctx, customerID)
		return nil
	}

	s.notify(ctx, &models.Notification{
		UserID:  userID,
		Type:    enums.NotificationTypeSuccess,
		Title:   "Suscripción actualizada",
		Message: fmt.Sprintf("Tu plan %s está ahora activo.", strings.ToUpper(plan.String())),
	})
	return nil
}

// Cancel drops the matched row back to the free tier.
func (s *Service) Cancel(ctx context.Context, stripeSub *stripe.Subscription) error {
	if stripeSub == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription is required")
	}
	customerID := CustomerIDFromSubscription(stripeSub)
	if customerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id missing from subscription")
	}

	var userID uuid.UUID
	matched := false

	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		stored, err := repo.FindByCustomerID(ctx, customerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find subscription by customer")
		}
		if stored == nil {
			return nil
		}
		ApplyCancellation(stored)
		if err := repo.Update(ctx, stored); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel subscription")
		}
		userID = stored.UserID
		matched = true
		return nil
	})
	if err != nil {
		return err
	}
	if !matched {
		s.warnUnmatched(ctx, customerID)
		return nil
	}

	s.notify(ctx, &models.Notification{
		UserID:  userID,
		Type:    enums.NotificationTypeWarning,
		Title:   "Suscripción cancelada",
		Message: "Tu suscripción ha sido cancelada. Has vuelto al plan gratuito.",
	})
	return nil
}

// NotifyPaymentSucceeded records the paid-invoice notification. The amount
// arrives in cents and is rendered with two decimals.
func (s *Service) NotifyPaymentSucceeded(ctx context.Context, customerID string, amountPaid int64) error {
	sub, err := s.repo.FindByCustomerID(ctx, customerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find subscription by customer")
	}
	if sub == nil {
		s.warnUnmatched(ctx, customerID)
		return nil
	}

	amount := decimal.NewFromInt(amountPaid).Div(decimal.NewFromInt(100))
	notification := &models.Notification{
		UserID:  sub.UserID,
		Type:    enums.NotificationTypeSuccess,
		Title:   "Pago procesado",
		Message: fmt.Sprintf("Tu pago de €%s ha sido procesado exitosamente.", amount.StringFixed(2)),
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment notification")
	}
	return nil
}

// NotifyPaymentFailed records the failed-invoice notification pointing the
// user at the billing page.
func (s *Service) NotifyPaymentFailed(ctx context.Context, customerID string) error {
	sub, err := s.repo.FindByCustomerID(ctx, customerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find subscription by customer")
	}
	if sub == nil {
		s.warnUnmatched(ctx, customerID)
		return nil
	}

	actionURL := "/dashboard/billing"
	notification := &models.Notification{
		UserID:    sub.UserID,
		Type:      enums.NotificationTypeError,
		Title:     "Error en el pago",
		Message:   "Hubo un problema procesando tu pago. Por favor, actualiza tu método de pago.",
		ActionURL: &actionURL,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment notification")
	}
	return nil
}

func (s *Service) warnUnmatched(ctx context.Context, customerID string) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithField(ctx, "stripe_customer_id", customerID)
	s.logg.Warn(ctx, "subscription.customer_unmatched")
}

// notify swallows notification failures: billing state is already persisted
// and a lost notification must not make the provider retry the event.
func (s *Service) notify(ctx context.Context, notification *models.Notification) {
	if err := s.notifications.Create(ctx, notification); err != nil && s.logg != nil {
		s.logg.Error(ctx, "subscription.notification_failed", err)
	}
}
