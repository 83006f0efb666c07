package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/enlacehub/enlacehub-backend/internal/billing"
	"github.com/enlacehub/enlacehub-backend/internal/subscriptions"
	"github.com/enlacehub/enlacehub-backend/internal/users"
	"github.com/enlacehub/enlacehub-backend/pkg/config"
	"github.com/enlacehub/enlacehub-backend/pkg/db/models"
	"github.com/enlacehub/enlacehub-backend/pkg/enums"
)

type checkoutUsersRepo struct {
	user *models.User
}

func (r *checkoutUsersRepo) WithTx(tx *gorm.DB) users.Repository { return r }

func (r *checkoutUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, nil
}

func (r *checkoutUsersRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, nil
}

func (r *checkoutUsersRepo) Update(ctx context.Context, user *models.User) error { return nil }

type checkoutSubsRepo struct{}

func (r *checkoutSubsRepo) WithTx(tx *gorm.DB) subscriptions.Repository { return r }

func (r *checkoutSubsRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	return nil, nil
}

func (r *checkoutSubsRepo) FindByCustomerID(ctx context.Context, customerID string) (*models.Subscription, error) {
	return nil, nil
}

func (r *checkoutSubsRepo) Create(ctx context.Context, sub *models.Subscription) error { return nil }

func (r *checkoutSubsRepo) Update(ctx context.Context, sub *models.Subscription) error { return nil }

func (r *checkoutSubsRepo) Upsert(ctx context.Context, sub *models.Subscription) error { return nil }

func (r *checkoutSubsRepo) ListActiveUserIDsByPlan(ctx context.Context, plan enums.PlanType) ([]uuid.UUID, error) {
	return nil, nil
}

type checkoutStripeStub struct{}

func (s *checkoutStripeStub) CreateCustomer(ctx context.Context, params *stripe.CustomerParams) (*stripe.Customer, error) {
	return &stripe.Customer{ID: "cus_ctrl"}, nil
}

func (s *checkoutStripeStub) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return &stripe.CheckoutSession{ID: "cs_ctrl"}, nil
}

func newCheckoutService(t *testing.T, user *models.User) *billing.Service {
	t.Helper()
	svc, err := billing.NewService(billing.ServiceParams{
		Users:         &checkoutUsersRepo{user: user},
		Subscriptions: &checkoutSubsRepo{},
		Stripe:        &checkoutStripeStub{},
		Config: config.StripeConfig{
			CheckoutSuccessURL: "https://enlacehub.com/dashboard?success=true",
			CheckoutCancelURL:  "https://enlacehub.com/dashboard?canceled=true",
		},
	})
	if err != nil {
		t.Fatalf("build billing service: %v", err)
	}
	return svc
}

func TestCreateCheckoutReturnsSessionID(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "ana@example.com", Username: "ana"}
	handler := CreateCheckout(newCheckoutService(t, user), nil)

	body := []byte(`{"price_id":"price_pro_monthly"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/billing/checkout", body, user.ID))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data struct {
			SessionID string `json:"session_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Data.SessionID != "cs_ctrl" {
		t.Errorf("session_id = %q", envelope.Data.SessionID)
	}
}

func TestCreateCheckoutRejectsMissingPriceID(t *testing.T) {
	handler := CreateCheckout(newCheckoutService(t, nil), nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/billing/checkout", []byte(`{}`), uuid.New()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateCheckoutUnknownUser(t *testing.T) {
	handler := CreateCheckout(newCheckoutService(t, nil), nil)

	body := []byte(`{"price_id":"price_pro_monthly"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/billing/checkout", body, uuid.New()))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
