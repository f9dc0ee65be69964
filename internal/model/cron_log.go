package model

import "time"

// ExecutionLog is one recorded tick of a cron job.
type ExecutionLog struct {
	JobID        string     `json:"job_id"`
	ID           string     `json:"id"`
	WorkspaceID  string     `json:"workspace_id"`
	StartedAt    time.Time  `json:"started_at"`
	Success      bool       `json:"success"`
	Status       string     `json:"status"`
	DurationMs   int64      `json:"duration_ms"`
	ResponseBody string     `json:"response_body"`
	Action       CronAction `json:"action"`
	ExpireAt     time.Time  `json:"expire_at"`
}

// ExecutionLogSummary is the list projection of an ExecutionLog.
type ExecutionLogSummary struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	Success    bool      `json:"success"`
	DurationMs int64     `json:"duration_ms"`
	StartedAt  time.Time `json:"started_at"`
}

// Summary returns the list projection of l.
func (l *ExecutionLog) Summary() ExecutionLogSummary {
	return ExecutionLogSummary{
		ID:         l.ID,
		Status:     l.Status,
		Success:    l.Success,
		DurationMs: l.DurationMs,
		StartedAt:  l.StartedAt,
	}
}

// DailySummary counts executions for one UTC day (YYYY-MM-DD).
type DailySummary struct {
	Date         string `json:"date"`
	SuccessCount int64  `json:"success_count"`
	FailedCount  int64  `json:"failed_count"`
}

// LogPage is one page of execution log summaries.
type LogPage struct {
	Logs   []ExecutionLogSummary `json:"logs"`
	Cursor string                `json:"cursor,omitempty"`
}

// DateLayout is the layout of DailySummary.Date.
const DateLayout = "2006-01-02"
