package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/edvin/cronhook/internal/executor"
)

// ExecuteCronWorkflow is started by a cron schedule on every tick. The
// activity runs exactly once; a missed tick is recorded by the runner as a
// failure rather than retried.
func ExecuteCronWorkflow(ctx workflow.Context, cronID string) (executor.Ack, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: executor.RequestTimeout + 25*time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var ack executor.Ack
	if err := workflow.ExecuteActivity(ctx, "ExecuteCron", cronID).Get(ctx, &ack); err != nil {
		workflow.GetLogger(ctx).Error("cron execution failed", "cronID", cronID, "error", err)
		return executor.Ack{}, err
	}
	return ack, nil
}
