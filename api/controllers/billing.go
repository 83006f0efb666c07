package controllers

import (
	"net/http"

	"github.com/enlacehub/enlacehub-backend/api/responses"
	"github.com/enlacehub/enlacehub-backend/api/validators"
	"github.com/enlacehub/enlacehub-backend/internal/billing"
	pkgerrors "github.com/enlacehub/enlacehub-backend/pkg/errors"
	"github.com/enlacehub/enlacehub-backend/pkg/logger"
)

type createCheckoutRequest struct {
	PriceID string `json:"price_id" validate:"required"`
}

// CreateCheckout starts a Stripe checkout session for the authenticated user.
func CreateCheckout(svc *billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req createCheckoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.CreateCheckout(ctx, userID, req.PriceID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListPlans returns the public plan catalog.
func ListPlans() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, billing.Plans())
	}
}
