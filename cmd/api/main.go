package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/enlacehub/enlacehub-backend/api/routes"
	"github.com/enlacehub/enlacehub-backend/internal/abtests"
	"github.com/enlacehub/enlacehub-backend/internal/analytics"
	"github.com/enlacehub/enlacehub-backend/internal/backups"
	"github.com/enlacehub/enlacehub-backend/internal/billing"
	"github.com/enlacehub/enlacehub-backend/internal/integrations"
	"github.com/enlacehub/enlacehub-backend/internal/links"
	"github.com/enlacehub/enlacehub-backend/internal/notifications"
	"github.com/enlacehub/enlacehub-backend/internal/subscriptions"
	"github.com/enlacehub/enlacehub-backend/internal/users"
	"github.com/enlacehub/enlacehub-backend/internal/webhooks/outbound"
	stripewebhook "github.com/enlacehub/enlacehub-backend/internal/webhooks/stripe"
	"github.com/enlacehub/enlacehub-backend/pkg/config"
	"github.com/enlacehub/enlacehub-backend/pkg/db"
	"github.com/enlacehub/enlacehub-backend/pkg/instance"
	"github.com/enlacehub/enlacehub-backend/pkg/logger"
	"github.com/enlacehub/enlacehub-backend/pkg/metrics"
	"github.com/enlacehub/enlacehub-backend/pkg/migrate"
	"github.com/enlacehub/enlacehub-backend/pkg/redis"
	pkgstripe "github.com/enlacehub/enlacehub-backend/pkg/stripe"
)

const stripeWebhookScope = "stripe-webhook"

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to initialize stripe", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	linksRepo := links.NewRepository(dbClient.DB())
	analyticsRepo := analytics.NewRepository(dbClient.DB())
	subscriptionsRepo := subscriptions.NewRepository(dbClient.DB())

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	subscriptionsService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Repo:              subscriptionsRepo,
		Notifications:     notificationsService,
		TransactionRunner: dbClient,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}

	billingService, err := billing.NewService(billing.ServiceParams{
		Users:         usersRepo,
		Subscriptions: subscriptionsRepo,
		Stripe:        billing.NewStripeClient(stripeClient),
		Config:        cfg.Stripe,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	webhookMetrics := metrics.NewWebhookMetrics(prometheus.DefaultRegisterer)
	webhooksService, err := outbound.NewService(outbound.ServiceParams{
		Repo:    outbound.NewRepository(dbClient.DB()),
		Timeout: cfg.Webhooks.DeliveryTimeout,
		Metrics: webhookMetrics,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhooks service", err)
		os.Exit(1)
	}

	integrationsService, err := integrations.NewService(integrations.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create integrations service", err)
		os.Exit(1)
	}

	backupsService, err := backups.NewService(backups.ServiceParams{
		Repo:          backups.NewRepository(dbClient.DB()),
		Users:         usersRepo,
		Links:         linksRepo,
		Analytics:     analyticsRepo,
		Subscriptions: subscriptionsRepo,
		Broadcaster:   webhooksService,
		Config:        cfg.Backups,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create backups service", err)
		os.Exit(1)
	}

	abTestsService, err := abtests.NewService(abtests.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create ab tests service", err)
		os.Exit(1)
	}

	stripeWebhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Subscriptions: subscriptionsService,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe webhook service", err)
		os.Exit(1)
	}

	stripeWebhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Webhooks.EventTTL, stripeWebhookScope)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:             cfg,
			Logger:             logg,
			DB:                 dbClient,
			Redis:              redisClient,
			Users:              usersRepo,
			Notifications:      notificationsService,
			Billing:            billingService,
			Webhooks:           webhooksService,
			Integrations:       integrationsService,
			Backups:            backupsService,
			ABTests:            abTestsService,
			StripeClient:       stripeClient,
			StripeWebhooks:     stripeWebhookService,
			StripeWebhookGuard: stripeWebhookGuard,
			Metrics:            prometheus.DefaultGatherer,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
