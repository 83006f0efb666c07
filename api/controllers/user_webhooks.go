package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/enlacehub/enlacehub-backend/api/responses"
	"github.com/enlacehub/enlacehub-backend/api/validators"
	"github.com/enlacehub/enlacehub-backend/internal/webhooks/outbound"
	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
	pkgerrors "github.com/enlacehub/enlacehub-backend/pkg/errors"
	"github.com/enlacehub/enlacehub-backend/pkg/logger"
)

type createWebhookRequest struct {
	URL    string   `json:"url" validate:"required,url"`
	Events []string `json:"events" validate:"required,min=1"`
}

type setWebhookActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// webhookResponse hides the secret on every call except creation.
type webhookResponse struct {
	ID            uuid.UUID  `json:"id"`
	URL           string     `json:"url"`
	Events        []string   `json:"events"`
	IsActive      bool       `json:"is_active"`
	LastTriggered *time.Time `json:"last_triggered,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	Secret        string     `json:"secret,omitempty"`
}

func toWebhookResponse(webhook *models.Webhook, includeSecret bool) webhookResponse {
	resp := webhookResponse{
		ID:            webhook.ID,
		URL:           webhook.URL,
		Events:        []string(webhook.Events),
		IsActive:      webhook.IsActive,
		LastTriggered: webhook.LastTriggered,
		CreatedAt:     webhook.CreatedAt,
	}
	if includeSecret {
		resp.Secret = webhook.Secret
	}
	return resp
}

// CreateWebhook registers an outbound endpoint. The signing secret appears in
// this response only.
func CreateWebhook(svc *outbound.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhooks service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req createWebhookRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		webhook, err := svc.Create(ctx, userID, req.URL, req.Events)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toWebhookResponse(webhook, true))
	}
}

// ListWebhooks returns the user's configured endpoints without secrets.
func ListWebhooks(svc *outbound.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhooks service unavailable"))
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

		webhooks, err := svc.List(ctx, userID, activeOnly)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items := make([]webhookResponse, 0, len(webhooks))
		for i := range webhooks {
			items = append(items, toWebhookResponse(&webhooks[i], false))
		}
		responses.WriteSuccess(w, items)
	}
}

// SetWebhookActive toggles delivery for an endpoint.
func SetWebhookActive(svc *outbound.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhooks service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		webhookID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid webhook id"))
			return
		}

		var req setWebhookActiveRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.SetActive(ctx, userID, webhookID, *req.IsActive); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"is_active": *req.IsActive})
	}
}

// DeleteWebhook removes an endpoint.
func DeleteWebhook(svc *outbound.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhooks service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		webhookID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid webhook id"))
			return
		}

		if err := svc.Delete(ctx, userID, webhookID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
