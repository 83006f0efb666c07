package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/enlacehub/enlacehub-backend/api/responses"
	"github.com/enlacehub/enlacehub-backend/api/validators"
	"github.com/enlacehub/enlacehub-backend/internal/integrations"
	pkgerrors "github.com/enlacehub/enlacehub-backend/pkg/errors"
	"github.com/enlacehub/enlacehub-backend/pkg/logger"
)

type upsertIntegrationRequest struct {
	Service string          `json:"service" validate:"required"`
	Config  json.RawMessage `json:"config" validate:"required"`
}

type setIntegrationActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// UpsertIntegration creates or replaces the config for a service.
func UpsertIntegration(svc integrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "integrations service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req upsertIntegrationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		integration, err := svc.Upsert(ctx, userID, req.Service, req.Config)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, integration)
	}
}

// ListIntegrations returns the user's integrations.
func ListIntegrations(svc integrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "integrations service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		activeOnly := false
		if active := strings.TrimSpace(r.URL.Query().Get("activeOnly")); active != "" {
			value, err := strconv.ParseBool(active)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid activeOnly value"))
				return
			}
			activeOnly = value
		}

		rows, err := svc.List(ctx, userID, activeOnly)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// SetIntegrationActive toggles an integration.
func SetIntegrationActive(svc integrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "integrations service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		integrationID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid integration id"))
			return
		}

		var req setIntegrationActiveRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.SetActive(ctx, userID, integrationID, *req.IsActive); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"is_active": *req.IsActive})
	}
}

// DeleteIntegration removes an integration.
func DeleteIntegration(svc integrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "integrations service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		integrationID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid integration id"))
			return
		}

		if err := svc.Delete(ctx, userID, integrationID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
