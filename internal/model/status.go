package model

// Cron job status constants.
const (
	CronStatusEnabled     = "ENABLED"
	CronStatusDisabled    = "DISABLED"
	CronStatusTooManyFail = "TOO_MANY_FAIL"
)

// MaxConsecutiveFailures is the failure count at which a job is disabled
// with CronStatusTooManyFail instead of being executed.
const MaxConsecutiveFailures = 1440

// RoleOwner is the membership role granted to a workspace's creator.
const RoleOwner = "owner"

// IsDisableReason reports whether status may be used to disable a job.
func IsDisableReason(status string) bool {
	return status == CronStatusDisabled || status == CronStatusTooManyFail
}
