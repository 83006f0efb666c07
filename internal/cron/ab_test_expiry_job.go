package cron

import (
	"context"
	"fmt"

	"github.com/enlacehub/enlacehub-backend/pkg/logger"
)

type abTestExpirer interface {
	CompleteExpired(ctx context.Context) (int, error)
}

type ABTestExpiryJobParams struct {
	Logger  *logger.Logger
	ABTests abTestExpirer
}

func NewABTestExpiryJob(params ABTestExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.ABTests == nil {
		return nil, fmt.Errorf("ab tests service required")
	}
	return &abTestExpiryJob{logg: params.Logger, abtests: params.ABTests}, nil
}

type abTestExpiryJob struct {
	logg    *logger.Logger
	abtests abTestExpirer
}

func (j *abTestExpiryJob) Name() string { return "ab-test-expiry" }

func (j *abTestExpiryJob) Run(ctx context.Context) error {
	completed, err := j.abtests.CompleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("ab test expiry: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "tests_completed", completed)
	j.logg.Info(logCtx, "ab test expiry sweep complete")
	return nil
}
