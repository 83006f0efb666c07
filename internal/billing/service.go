package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/enlacehub/enlacehub-backend/internal/subscriptions"
	"github.com/enlacehub/enlacehub-backend/internal/users"
	"github.com/enlacehub/enlacehub-backend/pkg/config"
	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
	"github.com/enlacehub/enlacehub-backend/pkg/enums"
	pkgerrors "github.com/enlacehub/enlacehub-backend/pkg/errors"
	"github.com/enlacehub/enlacehub-backend/pkg/logger"
)

type ServiceParams struct {
	Users         users.Repository
	Subscriptions subscriptions.Repository
	Stripe        StripeBillingClient
	Config        config.StripeConfig
	Logger        *logger.Logger
}

// Service creates Stripe checkout sessions, reusing or creating the
// customer bound to the user's subscription row.
type Service struct {
	users  users.Repository
	subs   subscriptions.Repository
	stripe StripeBillingClient
	cfg    config.StripeConfig
	logg   *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users repo required")
	}
	if params.Subscriptions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscriptions repo required")
	}
	if params.Stripe == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	return &Service{
		users:  params.Users,
		subs:   params.Subscriptions,
		stripe: params.Stripe,
		cfg:    params.Config,
		logg:   params.Logger,
	}, nil
}

// CheckoutResult carries the session id the frontend redirects to.
type CheckoutResult struct {
	SessionID string `json:"session_id"`
}

// CreateCheckout builds a subscription-mode checkout session for the price.
func (s *Service) CreateCheckout(ctx context.Context, userID uuid.UUID, priceID string) (*CheckoutResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if priceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price id required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(priceID),
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(s.cfg.CheckoutSuccessURL),
		CancelURL:  stripe.String(s.cfg.CheckoutCancelURL),
		Customer:   stripe.String(customerID),
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}

	return &CheckoutResult{SessionID: session.ID}, nil
}

// ensureCustomer returns the stored Stripe customer id, creating the customer
// and a free/active subscription row on first checkout.
func (s *Service) ensureCustomer(ctx context.Context, user *models.User) (string, error) {
	sub, err := s.subs.FindByUserID(ctx, user.ID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	if sub != nil && sub.StripeCustomerID != "" {
		return sub.StripeCustomerID, nil
	}

	created, err := s.stripe.CreateCustomer(ctx, &stripe.CustomerParams{
		Email: stripe.String(user.Email),
		Name:  stripe.String(user.FullName),
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe customer")
	}

	row := &models.Subscription{
		UserID:           user.ID,
		StripeCustomerID: created.ID,
		PlanType:         enums.PlanTypeFree,
		Status:           enums.SubscriptionStatusActive,
	}
	if sub != nil {
		row.ID = sub.ID
	}
	if err := s.subs.Upsert(ctx, row); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist customer id")
	}

	return created.ID, nil
}
