package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/enlacehub/enlacehub-backend/pkg/logger"
)

const defaultNotificationRetentionDays = 30

type notificationPurger interface {
	DeleteOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}

type NotificationCleanupJobParams struct {
	Logger        *logger.Logger
	Notifications notificationPurger
	RetentionDays int
}

func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = defaultNotificationRetentionDays
	}
	return &notificationCleanupJob{
		logg:          params.Logger,
		notifications: params.Notifications,
		retention:     retention,
	}, nil
}

type notificationCleanupJob struct {
	logg          *logger.Logger
	notifications notificationPurger
	retention     int
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	retention := time.Duration(j.retention) * 24 * time.Hour
	deleted, err := j.notifications.DeleteOlderThan(ctx, retention)
	if err != nil {
		return fmt.Errorf("notification cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "notification cleanup complete")
	return nil
}
