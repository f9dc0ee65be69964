package workflow

import (
	"go.temporal.io/sdk/testsuite"

	"github.com/edvin/cronhook/internal/activity"
)

// registerActivities registers activity structs with the test workflow
// environment so that parameter and return types can be deserialized
// correctly. All activities are mocked via OnActivity in unit tests.
func registerActivities(env *testsuite.TestWorkflowEnvironment) {
	env.RegisterActivity(&activity.Cron{})
	env.RegisterActivity(&activity.Maintenance{})
}
