package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// PurgeExpiredWorkflow deletes expired sessions and execution logs. It runs
// on a schedule when the store has no native TTL.
func PurgeExpiredWorkflow(ctx workflow.Context) error {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var deleted int64
	err := workflow.ExecuteActivity(ctx, "PurgeExpired").Get(ctx, &deleted)
	if err != nil {
		return err
	}

	workflow.GetLogger(ctx).Info("purged expired rows", "deleted", deleted)
	return nil
}
