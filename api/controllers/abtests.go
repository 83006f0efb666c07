package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/enlacehub/enlacehub-backend/api/responses"
	"github.com/enlacehub/enlacehub-backend/api/validators"
	"github.com/enlacehub/enlacehub-backend/internal/abtests"
	"github.com/enlacehub/enlacehub-backend/pkg/enums"
	pkgerrors "github.com/enlacehub/enlacehub-backend/pkg/errors"
	"github.com/enlacehub/enlacehub-backend/pkg/logger"
)

type createABTestRequest struct {
	Name         string          `json:"name" validate:"required"`
	Description  string          `json:"description"`
	VariantA     json.RawMessage `json:"variant_a" validate:"required"`
	VariantB     json.RawMessage `json:"variant_b" validate:"required"`
	TrafficSplit int             `json:"traffic_split"`
	DurationDays int             `json:"duration_days" validate:"required,min=1"`
}

type transitionABTestRequest struct {
	Status string `json:"status" validate:"required,oneof=running paused completed"`
}

// CreateABTest creates a draft experiment.
func CreateABTest(svc abtests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ab tests service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req createABTestRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		split := req.TrafficSplit
		if split == 0 {
			split = 50
		}

		test, err := svc.Create(ctx, abtests.CreateParams{
			UserID:       userID,
			Name:         validators.SanitizeString(req.Name, 200),
			Description:  validators.SanitizeString(req.Description, 1000),
			VariantA:     req.VariantA,
			VariantB:     req.VariantB,
			TrafficSplit: split,
			DurationDays: req.DurationDays,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, test)
	}
}

// ListABTests returns the user's experiments, newest first.
func ListABTests(svc abtests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ab tests service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.List(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// TransitionABTest moves an experiment through its lifecycle.
func TransitionABTest(svc abtests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ab tests service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		testID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ab test id"))
			return
		}

		var req transitionABTestRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status, err := enums.ParseABTestStatus(req.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		test, err := svc.Transition(ctx, userID, testID, status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, test)
	}
}

// DeleteABTest removes an experiment.
func DeleteABTest(svc abtests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ab tests service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		testID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ab test id"))
			return
		}

		if err := svc.Delete(ctx, userID, testID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
