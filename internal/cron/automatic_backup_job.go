package cron

import (
	"context"
	"fmt"

	"github.com/enlacehub/enlacehub-backend/pkg/logger"
)

type backupRunner interface {
	RunAutomatic(ctx context.Context) (int, error)
}

type AutomaticBackupJobParams struct {
	Logger  *logger.Logger
	Backups backupRunner
}

func NewAutomaticBackupJob(params AutomaticBackupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Backups == nil {
		return nil, fmt.Errorf("backups service required")
	}
	return &automaticBackupJob{logg: params.Logger, backups: params.Backups}, nil
}

type automaticBackupJob struct {
	logg    *logger.Logger
	backups backupRunner
}

func (j *automaticBackupJob) Name() string { return "automatic-backups" }

// Run sweeps every business tier account. RunAutomatic aggregates per-user
// failures, so a partial error still reports how many backups landed.
func (j *automaticBackupJob) Run(ctx context.Context) error {
	created, err := j.backups.RunAutomatic(ctx)
	logCtx := j.logg.WithField(ctx, "backups_created", created)
	if err != nil {
		j.logg.Error(logCtx, "automatic backups finished with failures", err)
		return fmt.Errorf("automatic backups: %w", err)
	}
	j.logg.Info(logCtx, "automatic backups complete")
	return nil
}
