package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/enlacehub/enlacehub-backend/pkg/errors"
	"github.com/enlacehub/enlacehub-backend/pkg/logger"
)

type subscriptionSync interface {
	Reconcile(ctx context.Context, sub *stripe.Subscription) error
	Cancel(ctx context.Context, sub *stripe.Subscription) error
	NotifyPaymentSucceeded(ctx context.Context, customerID string, amountPaid int64) error
	NotifyPaymentFailed(ctx context.Context, customerID string) error
}

type ServiceParams struct {
	Subscriptions subscriptionSync
	Logger        *logger.Logger
}

// Service dispatches verified Stripe events to the subscription flows.
type Service struct {
	subs subscriptionSync
	logg *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Subscriptions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscription service required")
	}
	return &Service{
		subs: params.Subscriptions,
		logg: params.Logger,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	if s.logg != nil {
		ctx = s.logg.WithEventType(ctx, string(event.Type))
	}

	switch event.Type {
	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated:
		sub, err := decodeSubscription(event)
		if err != nil {
			return err
		}
		return s.subs.Reconcile(ctx, sub)

	case stripe.EventTypeCustomerSubscriptionDeleted:
		sub, err := decodeSubscription(event)
		if err != nil {
			return err
		}
		return s.subs.Cancel(ctx, sub)

	case stripe.EventTypeInvoicePaymentSucceeded:
		invoice, err := decodeInvoice(event)
		if err != nil {
			return err
		}
		customerID := invoiceCustomerID(invoice)
		if customerID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "customer id missing from invoice")
		}
		return s.subs.NotifyPaymentSucceeded(ctx, customerID, invoice.AmountPaid)

	case stripe.EventTypeInvoicePaymentFailed:
		invoice, err := decodeInvoice(event)
		if err != nil {
			return err
		}
		customerID := invoiceCustomerID(invoice)
		if customerID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "customer id missing from invoice")
		}
		return s.subs.NotifyPaymentFailed(ctx, customerID)

	default:
		if s.logg != nil {
			s.logg.Info(ctx, "webhook.event_ignored")
		}
		return nil
	}
}

func decodeSubscription(event *stripe.Event) (*stripe.Subscription, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode subscription event")
	}
	return &sub, nil
}

func decodeInvoice(event *stripe.Event) (*stripe.Invoice, error) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode invoice event")
	}
	return &invoice, nil
}

func invoiceCustomerID(invoice *stripe.Invoice) string {
	if invoice == nil || invoice.Customer == nil {
		return ""
	}
	return invoice.Customer.ID
}
