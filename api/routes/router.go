package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/enlacehub/enlacehub-backend/api/controllers"
	webhookcontrollers "github.com/enlacehub/enlacehub-backend/api/controllers/webhooks"
	"github.com/enlacehub/enlacehub-backend/api/middleware"
	"github.com/enlacehub/enlacehub-backend/internal/abtests"
	"github.com/enlacehub/enlacehub-backend/internal/backups"
	"github.com/enlacehub/enlacehub-backend/internal/billing"
	"github.com/enlacehub/enlacehub-backend/internal/integrations"
	"github.com/enlacehub/enlacehub-backend/internal/notifications"
	"github.com/enlacehub/enlacehub-backend/internal/users"
	"github.com/enlacehub/enlacehub-backend/internal/webhooks/outbound"
	stripewebhook "github.com/enlacehub/enlacehub-backend/internal/webhooks/stripe"
	"github.com/enlacehub/enlacehub-backend/pkg/config"
	"github.com/enlacehub/enlacehub-backend/pkg/logger"
	"github.com/enlacehub/enlacehub-backend/pkg/redis"
	"github.com/enlacehub/enlacehub-backend/pkg/stripe"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config             *config.Config
	Logger             *logger.Logger
	DB                 controllers.Pinger
	Redis              *redis.Client
	Users              users.Repository
	Notifications      notifications.Service
	Billing            *billing.Service
	Webhooks           *outbound.Service
	Integrations       integrations.Service
	Backups            *backups.Service
	ABTests            abtests.Service
	StripeClient       *stripe.Client
	StripeWebhooks     *stripewebhook.Service
	StripeWebhookGuard *stripewebhook.IdempotencyGuard
	Metrics            prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.Live())
		r.Get("/ready", controllers.Ready(deps.DB, deps.Redis, logg))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	// inbound provider webhooks are authenticated by signature, not JWT
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(deps.StripeWebhooks, deps.StripeClient, deps.StripeWebhookGuard, logg))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/plans", controllers.ListPlans())
		r.Get("/qr/{username}", controllers.ProfileQRCode(deps.Users, cfg.App.PublicURL, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Post("/billing/checkout", controllers.CreateCheckout(deps.Billing, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
			r.Post("/{id}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Delete("/{id}", controllers.DeleteNotification(deps.Notifications, logg))
		})

		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/", controllers.CreateWebhook(deps.Webhooks, logg))
			r.Get("/", controllers.ListWebhooks(deps.Webhooks, logg))
			r.Patch("/{id}", controllers.SetWebhookActive(deps.Webhooks, logg))
			r.Delete("/{id}", controllers.DeleteWebhook(deps.Webhooks, logg))
		})

		r.Route("/integrations", func(r chi.Router) {
			r.Put("/", controllers.UpsertIntegration(deps.Integrations, logg))
			r.Get("/", controllers.ListIntegrations(deps.Integrations, logg))
			r.Patch("/{id}", controllers.SetIntegrationActive(deps.Integrations, logg))
			r.Delete("/{id}", controllers.DeleteIntegration(deps.Integrations, logg))
		})

		r.Route("/backups", func(r chi.Router) {
			r.Post("/", controllers.CreateBackup(deps.Backups, logg))
			r.Get("/", controllers.ListBackups(deps.Backups, logg))
			r.Post("/{id}/restore", controllers.RestoreBackup(deps.Backups, logg))
		})

		r.Route("/ab-tests", func(r chi.Router) {
			r.Post("/", controllers.CreateABTest(deps.ABTests, logg))
			r.Get("/", controllers.ListABTests(deps.ABTests, logg))
			r.Post("/{id}/status", controllers.TransitionABTest(deps.ABTests, logg))
			r.Delete("/{id}", controllers.DeleteABTest(deps.ABTests, logg))
		})
	})

	return r
}
