package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/enlacehub/enlacehub-backend/internal/abtests"
	"github.com/enlacehub/enlacehub-backend/internal/analytics"
	"github.com/enlacehub/enlacehub-backend/internal/backups"
	"github.com/enlacehub/enlacehub-backend/internal/cron"
	"github.com/enlacehub/enlacehub-backend/internal/links"
	"github.com/enlacehub/enlacehub-backend/internal/notifications"
	"github.com/enlacehub/enlacehub-backend/internal/subscriptions"
	"github.com/enlacehub/enlacehub-backend/internal/users"
	"github.com/enlacehub/enlacehub-backend/internal/webhooks/outbound"
	"github.com/enlacehub/enlacehub-backend/pkg/config"
	"github.com/enlacehub/enlacehub-backend/pkg/db"
	"github.com/enlacehub/enlacehub-backend/pkg/instance"
	"github.com/enlacehub/enlacehub-backend/pkg/logger"
	"github.com/enlacehub/enlacehub-backend/pkg/metrics"
	"github.com/enlacehub/enlacehub-backend/pkg/migrate"
	"github.com/enlacehub/enlacehub-backend/pkg/redis"
)


func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	webhooksService, err := outbound.NewService(outbound.ServiceParams{
		Repo:    outbound.NewRepository(dbClient.DB()),
		Timeout: cfg.Webhooks.DeliveryTimeout,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhooks service", err)
		os.Exit(1)
	}

	backupsService, err := backups.NewService(backups.ServiceParams{
		Repo:          backups.NewRepository(dbClient.DB()),
		Users:         users.NewRepository(dbClient.DB()),
		Links:         links.NewRepository(dbClient.DB()),
		Analytics:     analytics.NewRepository(dbClient.DB()),
		Subscriptions: subscriptions.NewRepository(dbClient.DB()),
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

	cleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:        logg,
		Notifications: notificationsService,
		RetentionDays: cfg.Cron.NotificationRetention,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification cleanup job", err)
		os.Exit(1)
	}

	backupJob, err := cron.NewAutomaticBackupJob(cron.AutomaticBackupJobParams{
		Logger:  logg,
		Backups: backupsService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create automatic backup job", err)
		os.Exit(1)
	}

	expiryJob, err := cron.NewABTestExpiryJob(cron.ABTestExpiryJobParams{
		Logger:  logg,
		ABTests: abTestsService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create ab test expiry job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName(cfg.App.Env)), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(cleanupJob, backupJob, expiryJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("cron-worker:%s", env)
}
