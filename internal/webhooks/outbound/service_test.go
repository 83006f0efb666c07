package outbound

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
	dbtypes "github.com/enlacehub/enlacehub-backend/pkg/db/types"
	"github.com/enlacehub/enlacehub-backend/pkg/enums"
	pkgerrors "github.com/enlacehub/enlacehub-backend/pkg/errors"
)

type memoryWebhookRepo struct {
	rows    map[uuid.UUID]*models.Webhook
	touched []uuid.UUID
}

func newMemoryWebhookRepo() *memoryWebhookRepo {
	return &memoryWebhookRepo{rows: map[uuid.UUID]*models.Webhook{}}
}

func (m *memoryWebhookRepo) WithTx(tx *gorm.DB) Repository { return m }

func (m *memoryWebhookRepo) Create(ctx context.Context, webhook *models.Webhook) error {
	if webhook.ID == uuid.Nil {
		webhook.ID = uuid.New()
	}
	m.rows[webhook.ID] = webhook
	return nil
}

func (m *memoryWebhookRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Webhook, error) {
	return m.rows[id], nil
}

func (m *memoryWebhookRepo) ListByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Webhook, error) {
	var out []models.Webhook
	for _, row := range m.rows {
		if row.UserID != userID {
			continue
		}
		if activeOnly && !row.IsActive {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (m *memoryWebhookRepo) SetActive(ctx context.Context, userID, id uuid.UUID, active bool) (bool, error) {
	row, ok := m.rows[id]
	if !ok || row.UserID != userID {
		return false, nil
	}
	row.IsActive = active
	return true, nil
}

func (m *memoryWebhookRepo) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	row, ok := m.rows[id]
	if !ok || row.UserID != userID {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

func (m *memoryWebhookRepo) TouchLastTriggered(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.touched = append(m.touched, id)
	if row, ok := m.rows[id]; ok {
		row.LastTriggered = &at
	}
	return nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return svc
}

func TestCreateGeneratesSecret(t *testing.T) {
	repo := newMemoryWebhookRepo()
	svc := newTestService(t, repo)
	userID := uuid.New()

	webhook, err := svc.Create(context.Background(), userID, "https://example.com/hook", []string{"link.clicked", "profile.viewed"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(webhook.Secret) != 64 {
		t.Fatalf("expected 64 hex chars of secret, got %d", len(webhook.Secret))
	}
	if !webhook.IsActive {
		t.Fatal("new webhooks start active")
	}

	other, err := svc.Create(context.Background(), userID, "https://example.com/hook2", []string{"link.clicked"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if other.Secret == webhook.Secret {
		t.Fatal("secrets must be unique per webhook")
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc := newTestService(t, newMemoryWebhookRepo())
	userID := uuid.New()

	cases := []struct {
		name   string
		url    string
		events []string
	}{
		{"relative url", "/hook", []string{"link.clicked"}},
		{"empty events", "https://example.com/hook", nil},
		{"unknown event", "https://example.com/hook", []string{"user.deleted"}},
	}

	for _, tc := range cases {
		_, err := svc.Create(context.Background(), userID, tc.url, tc.events)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestTriggerDeliversSignedPayload(t *testing.T) {
	repo := newMemoryWebhookRepo()
	userID := uuid.New()

	var gotSig, gotEvent string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-EnlaceHub-Signature")
		gotEvent = r.Header.Get("X-EnlaceHub-Event")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	webhook := &models.Webhook{
		UserID:   userID,
		URL:      server.URL,
		Events:   dbtypes.StringArray{"link.clicked"},
		Secret:   "0123456789abcdef",
		IsActive: true,
	}
	if err := repo.Create(context.Background(), webhook); err != nil {
		t.Fatalf("seed webhook: %v", err)
	}

	svc := newTestService(t, repo)
	event := Event{
		Type:      enums.WebhookEventLinkClicked,
		Data:      map[string]string{"link_id": "abc"},
		Timestamp: time.Now().UTC(),
		UserID:    userID,
	}

	delivered, err := svc.Trigger(context.Background(), webhook.ID, event)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if !delivered {
		t.Fatal("expected delivery to succeed")
	}

	if gotEvent != "link.clicked" {
		t.Fatalf("unexpected event header %q", gotEvent)
	}
	if !Verify(webhook.Secret, gotBody, gotSig) {
		t.Fatal("signature does not verify against delivered body")
	}

	var envelope Event
	if err := json.Unmarshal(gotBody, &envelope); err != nil {
		t.Fatalf("decode delivered body: %v", err)
	}
	if envelope.Type != enums.WebhookEventLinkClicked || envelope.UserID != userID {
		t.Fatalf("unexpected envelope %+v", envelope)
	}

	if len(repo.touched) != 1 {
		t.Fatal("last_triggered must be touched")
	}
}

func TestTriggerInactiveIsSilentNoop(t *testing.T) {
	repo := newMemoryWebhookRepo()
	userID := uuid.New()

	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	webhook := &models.Webhook{
		UserID:   userID,
		URL:      server.URL,
		Events:   dbtypes.StringArray{"link.clicked"},
		Secret:   "s",
		IsActive: false,
	}
	if err := repo.Create(context.Background(), webhook); err != nil {
		t.Fatalf("seed webhook: %v", err)
	}

	svc := newTestService(t, repo)
	delivered, err := svc.Trigger(context.Background(), webhook.ID, Event{Type: enums.WebhookEventLinkClicked})
	if err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
	if delivered {
		t.Fatal("inactive webhook must not deliver")
	}
	if requests != 0 {
		t.Fatal("no HTTP request expected for inactive webhook")
	}
	if len(repo.touched) != 0 {
		t.Fatal("last_triggered must not change without an attempt")
	}
}

func TestTriggerMissingWebhookIsSilentNoop(t *testing.T) {
	svc := newTestService(t, newMemoryWebhookRepo())

	delivered, err := svc.Trigger(context.Background(), uuid.New(), Event{Type: enums.WebhookEventLinkClicked})
	if err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
	if delivered {
		t.Fatal("missing webhook must not report delivery")
	}
}

func TestTriggerRecordsFailedDelivery(t *testing.T) {
	repo := newMemoryWebhookRepo()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	webhook := &models.Webhook{
		UserID:   uuid.New(),
		URL:      server.URL,
		Events:   dbtypes.StringArray{"link.clicked"},
		Secret:   "s",
		IsActive: true,
	}
	if err := repo.Create(context.Background(), webhook); err != nil {
		t.Fatalf("seed webhook: %v", err)
	}

	svc := newTestService(t, repo)
	delivered, err := svc.Trigger(context.Background(), webhook.ID, Event{Type: enums.WebhookEventLinkClicked})
	if err != nil {
		t.Fatalf("delivery failure must not error: %v", err)
	}
	if delivered {
		t.Fatal("5xx response is not a delivery")
	}
	if len(repo.touched) != 1 {
		t.Fatal("attempt must still touch last_triggered")
	}
}

func TestTriggerTransportErrorIsNotAnError(t *testing.T) {
	repo := newMemoryWebhookRepo()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	webhook := &models.Webhook{
		UserID:   uuid.New(),
		URL:      server.URL,
		Events:   dbtypes.StringArray{"link.clicked"},
		Secret:   "s",
		IsActive: true,
	}
	if err := repo.Create(context.Background(), webhook); err != nil {
		t.Fatalf("seed webhook: %v", err)
	}

	svc := newTestService(t, repo)
	delivered, err := svc.Trigger(context.Background(), webhook.ID, Event{Type: enums.WebhookEventLinkClicked})
	if err != nil {
		t.Fatalf("transport error must not surface: %v", err)
	}
	if delivered {
		t.Fatal("transport error is not a delivery")
	}
	if len(repo.touched) != 1 {
		t.Fatal("attempt must still touch last_triggered")
	}
}

func TestBroadcastFiltersBySubscription(t *testing.T) {
	repo := newMemoryWebhookRepo()
	userID := uuid.New()

	hits := map[string]int{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits[r.URL.Path]++
	}))
	defer server.Close()

	subscribed := &models.Webhook{
		UserID: userID, URL: server.URL + "/subscribed",
		Events: dbtypes.StringArray{"backup.completed"}, Secret: "s", IsActive: true,
	}
	unsubscribed := &models.Webhook{
		UserID: userID, URL: server.URL + "/unsubscribed",
		Events: dbtypes.StringArray{"link.clicked"}, Secret: "s", IsActive: true,
	}
	for _, wh := range []*models.Webhook{subscribed, unsubscribed} {
		if err := repo.Create(context.Background(), wh); err != nil {
			t.Fatalf("seed webhook: %v", err)
		}
	}

	svc := newTestService(t, repo)
	err := svc.Broadcast(context.Background(), userID, Event{
		Type:      enums.WebhookEventBackupCompleted,
		Timestamp: time.Now().UTC(),
		UserID:    userID,
	})
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	if hits["/subscribed"] != 1 {
		t.Fatalf("subscribed endpoint should get one delivery, got %d", hits["/subscribed"])
	}
	if hits["/unsubscribed"] != 0 {
		t.Fatalf("unsubscribed endpoint must not be called")
	}
}
