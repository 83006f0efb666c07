package outbound

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
	dbtypes "github.com/enlacehub/enlacehub-backend/pkg/db/types"
	"github.com/enlacehub/enlacehub-backend/pkg/enums"
	pkgerrors "github.com/enlacehub/enlacehub-backend/pkg/errors"
	"github.com/enlacehub/enlacehub-backend/pkg/logger"
	"github.com/enlacehub/enlacehub-backend/pkg/metrics"
)

const (
	signatureHeader = "X-EnlaceHub-Signature"
	eventHeader     = "X-EnlaceHub-Event"

	secretByteLen = 32

	defaultDeliveryTimeout = 10 * time.Second
)

// Event is the envelope POSTed to subscriber endpoints. It is never persisted.
type Event struct {
	Type      enums.WebhookEventType `json:"type"`
	Data      any                    `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	UserID    uuid.UUID              `json:"user_id"`
}

type ServiceParams struct {
	Repo       Repository
	HTTPClient *http.Client
	Timeout    time.Duration
	Metrics    *metrics.WebhookMetrics
	Logger     *logger.Logger
}

// Service manages webhook configs and delivers events to subscriber URLs.
type Service struct {
	repo    Repository
	client  *http.Client
	metrics *metrics.WebhookMetrics
	logg    *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "webhooks repo required")
	}
	client := params.HTTPClient
	if client == nil {
		timeout := params.Timeout
		if timeout <= 0 {
			timeout = defaultDeliveryTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Service{
		repo:    params.Repo,
		client:  client,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

// Create registers an endpoint with a freshly generated signing secret. The
// secret is returned on this call only.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, rawURL string, events []string) (*models.Webhook, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook url must be absolute")
	}
	if len(events) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one event is required")
	}
	for _, event := range events {
		if _, err := enums.ParseWebhookEventType(event); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event subscription")
		}
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate webhook secret")
	}

	webhook := &models.Webhook{
		UserID:   userID,
		URL:      rawURL,
		Events:   dbtypes.StringArray(events),
		Secret:   secret,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, webhook); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create webhook")
	}
	return webhook, nil
}

// List returns the user's configured endpoints.
func (s *Service) List(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Webhook, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	webhooks, err := s.repo.ListByUser(ctx, userID, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list webhooks")
	}
	return webhooks, nil
}

// SetActive toggles an endpoint on or off.
func (s *Service) SetActive(ctx context.Context, userID, id uuid.UUID, active bool) error {
	found, err := s.repo.SetActive(ctx, userID, id, active)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle webhook")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "webhook not found")
	}
	return nil
}

// Delete removes an endpoint.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete webhook")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "webhook not found")
	}
	return nil
}

// Trigger delivers an event to a single endpoint. A missing or inactive
// endpoint is a silent no-op. Delivery failures never surface as errors:
// the caller only learns whether the POST got a 2xx back. last_triggered is
// updated for every attempt, delivered or not.
func (s *Service) Trigger(ctx context.Context, webhookID uuid.UUID, event Event) (bool, error) {
	webhook, err := s.repo.FindByID(ctx, webhookID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load webhook")
	}
	if webhook == nil || !webhook.IsActive {
		if s.metrics != nil {
			s.metrics.IncSkipped()
		}
		return false, nil
	}

	delivered := s.deliver(ctx, webhook, event)

	if err := s.repo.TouchLastTriggered(ctx, webhookID, time.Now().UTC()); err != nil && s.logg != nil {
		s.logg.Error(ctx, "webhook.touch_failed", err)
	}

	return delivered, nil
}

// Broadcast fans an event out to every active endpoint of the user that
// subscribes to the event type.
func (s *Service) Broadcast(ctx context.Context, userID uuid.UUID, event Event) error {
	webhooks, err := s.repo.ListByUser(ctx, userID, true)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list webhooks")
	}
	for i := range webhooks {
		webhook := &webhooks[i]
		if !webhook.Events.Contains(string(event.Type)) {
			continue
		}
		s.deliver(ctx, webhook, event)
		if err := s.repo.TouchLastTriggered(ctx, webhook.ID, time.Now().UTC()); err != nil && s.logg != nil {
			s.logg.Error(ctx, "webhook.touch_failed", err)
		}
	}
	return nil
}

func (s *Service) deliver(ctx context.Context, webhook *models.Webhook, event Event) bool {
	start := time.Now()
	delivered := s.post(ctx, webhook, event)
	if s.metrics != nil {
		s.metrics.ObserveDelivery(string(event.Type), time.Since(start), delivered)
	}
	if s.logg != nil {
		fields := map[string]any{
			"webhook_id": webhook.ID.String(),
			"event_type": string(event.Type),
			"delivered":  delivered,
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "webhook.delivery")
	}
	return delivered
}

func (s *Service) post(ctx context.Context, webhook *models.Webhook, event Event) bool {
	payload, err := json.Marshal(event)
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewReader(payload))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(signatureHeader, Sign(webhook.Secret, payload))
	req.Header.Set(eventHeader, string(event.Type))

	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func generateSecret() (string, error) {
	buf := make([]byte, secretByteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
