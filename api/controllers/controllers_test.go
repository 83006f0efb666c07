package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/enlacehub/enlacehub-backend/api/middleware"
	"github.com/enlacehub/enlacehub-backend/internal/notifications"
	"github.com/enlacehub/enlacehub-backend/internal/users"
	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
	pkgerrors "github.com/enlacehub/enlacehub-backend/pkg/errors"
)

func authedRequest(method, target string, body []byte, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

type fakeNotificationsService struct {
	notifications.Service
	listResult *notifications.ListResult
	markErr    error
	lastUser   uuid.UUID
	lastID     uuid.UUID
}

func (f *fakeNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	f.lastUser = params.UserID
	return f.listResult, nil
}

func (f *fakeNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	f.lastUser = userID
	f.lastID = notificationID
	return f.markErr
}

func TestListNotificationsRequiresAuth(t *testing.T) {
	handler := ListNotifications(&fakeNotificationsService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestListNotificationsScopesToAuthedUser(t *testing.T) {
	userID := uuid.New()
	svc := &fakeNotificationsService{listResult: &notifications.ListResult{
		Items: []models.Notification{{ID: uuid.New(), UserID: userID, Title: "Pago procesado"}},
	}}
	handler := ListNotifications(svc, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/notifications?limit=5", nil, userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.lastUser != userID {
		t.Errorf("service called with user %s, want %s", svc.lastUser, userID)
	}

	var envelope struct {
		Data notifications.ListResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(envelope.Data.Items) != 1 {
		t.Errorf("items = %d, want 1", len(envelope.Data.Items))
	}
}

func TestListNotificationsRejectsBadLimit(t *testing.T) {
	handler := ListNotifications(&fakeNotificationsService{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/notifications?limit=nope", nil, uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMarkNotificationReadNotFound(t *testing.T) {
	svc := &fakeNotificationsService{markErr: pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")}

	router := chi.NewRouter()
	router.Post("/notifications/{id}/read", MarkNotificationRead(svc, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/notifications/"+uuid.NewString()+"/read", nil, uuid.New()))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListPlansIsPublic(t *testing.T) {
	handler := ListPlans()

	req := httptest.NewRequest(http.MethodGet, "/api/public/plans", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var envelope struct {
		Data []struct {
			Name    string `json:"name"`
			Price   int    `json:"price"`
			PriceID string `json:"price_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(envelope.Data) != 3 {
		t.Fatalf("plans = %d, want 3", len(envelope.Data))
	}
	if envelope.Data[1].Name != "Pro" || envelope.Data[1].Price != 9 {
		t.Errorf("second plan = %+v", envelope.Data[1])
	}
}

type fakeUsersRepo struct {
	byUsername map[string]*models.User
}

func (f *fakeUsersRepo) WithTx(tx *gorm.DB) users.Repository { return f }

func (f *fakeUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, nil
}

func (f *fakeUsersRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return f.byUsername[username], nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, user *models.User) error { return nil }

func TestProfileQRCodeReturnsPNG(t *testing.T) {
	repo := &fakeUsersRepo{byUsername: map[string]*models.User{
		"ana": {ID: uuid.New(), Username: "ana", CreatedAt: time.Now()},
	}}

	router := chi.NewRouter()
	router.Get("/qr/{username}", ProfileQRCode(repo, "https://enlacehub.com", nil))

	req := httptest.NewRequest(http.MethodGet, "/qr/ana?size=128", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty body")
	}
}

func TestProfileQRCodeUnknownProfile(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/qr/{username}", ProfileQRCode(&fakeUsersRepo{}, "https://enlacehub.com", nil))

	req := httptest.NewRequest(http.MethodGet, "/qr/nadie", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
