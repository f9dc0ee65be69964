package model

import "time"

// CronAction is the HTTP request performed on every tick.
type CronAction struct {
	Type    string            `json:"type"`
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

// CronSchedule holds an AWS-style six field expression, e.g. "cron(0 12 * * ? *)".
type CronSchedule struct {
	Type       string `json:"type"`
	Expression string `json:"expression"`
}

// CronSetting is the user supplied job definition.
type CronSetting struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Schedule    CronSchedule `json:"schedule"`
	Action      CronAction   `json:"action"`
}

type CronJob struct {
	ID          string      `json:"id"`
	WorkspaceID string      `json:"workspace_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Setting     CronSetting `json:"setting"`
	Status      string      `json:"status"`
	FailedCount int         `json:"failed_count"`
	TriggerID   string      `json:"trigger_id"`
	CreatedBy   string      `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TriggerName returns the trigger registry name for a job id.
func TriggerName(jobID string) string {
	return "pmt-schedule-" + jobID
}
