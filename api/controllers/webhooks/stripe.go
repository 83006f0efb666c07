package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/enlacehub/enlacehub-backend/api/responses"
	"github.com/enlacehub/enlacehub-backend/pkg/logger"
)

type StripeWebhookService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

type stripeWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type stripeClient interface {
	SigningSecret() string
}

// Stripe matches these bodies on retry decisions, so they are fixed and
// skip the usual response envelope.
var (
	ackBody        = map[string]bool{"received": true}
	badSigBody     = map[string]string{"error": "Invalid signature"}
	processingBody = map[string]string{"error": "Webhook processing failed"}
)

// StripeWebhook handles Stripe subscription and invoice events.
func StripeWebhook(svc StripeWebhookService, client stripeClient, guard stripeWebhookGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || client == nil || guard == nil {
			responses.WriteRaw(w, http.StatusInternalServerError, processingBody)
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteRaw(w, http.StatusInternalServerError, processingBody)
			return
		}

		sigHeader := r.Header.Get("Stripe-Signature")
		event, err := webhook.ConstructEvent(payload, sigHeader, client.SigningSecret())
		if err != nil {
			if logg != nil {
				logg.Warn(ctx, "stripe webhook signature rejected")
			}
			responses.WriteRaw(w, http.StatusBadRequest, badSigBody)
			return
		}

		alreadyProcessed, err := guard.CheckAndMark(ctx, event.ID)
		if err != nil {
			responses.WriteRaw(w, http.StatusInternalServerError, processingBody)
			return
		}
		if alreadyProcessed {
			responses.WriteRaw(w, http.StatusOK, ackBody)
			return
		}

		if err := svc.HandleEvent(ctx, &event); err != nil {
			// release the mark so the provider retry is not swallowed
			_ = guard.Delete(ctx, event.ID)
			if logg != nil {
				logg.Error(ctx, "stripe webhook processing failed", err)
			}
			responses.WriteRaw(w, http.StatusInternalServerError, processingBody)
			return
		}

		responses.WriteRaw(w, http.StatusOK, ackBody)
	}
}
