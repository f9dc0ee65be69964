package activity

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/edvin/cronhook/internal/executor"
)

// CronRunner executes one tick of a cron job. Implemented by executor.Runner.
type CronRunner interface {
	Execute(ctx context.Context, jobID string) (executor.Ack, error)
}

// Cron contains the activity fired by cron schedules.
type Cron struct {
	runner CronRunner
	logger zerolog.Logger
}

// NewCron creates a new Cron activity struct.
func NewCron(runner CronRunner, logger zerolog.Logger) *Cron {
	return &Cron{runner: runner, logger: logger}
}

// ExecuteCron runs the job's HTTP callback and records the outcome. A job
// that no longer exists fails without retry.
func (a *Cron) ExecuteCron(ctx context.Context, cronID string) (executor.Ack, error) {
	logger := a.logger
	if activity.IsActivity(ctx) {
		info := activity.GetInfo(ctx)
		logger = logger.With().
			Str("workflow_id", info.WorkflowExecution.ID).
			Int32("attempt", info.Attempt).
			Logger()
	}
	ctx = logger.WithContext(ctx)

	ack, err := a.runner.Execute(ctx, cronID)
	if err != nil {
		if errors.Is(err, executor.ErrJobNotFound) {
			return executor.Ack{}, temporal.NewNonRetryableApplicationError(err.Error(), "JOB_NOT_FOUND", err)
		}
		return executor.Ack{}, err
	}
	return ack, nil
}
