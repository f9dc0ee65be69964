package postgres

import (
	"context"
	"fmt"

	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/store"
)

func (s *Store) PutExecutionLog(ctx context.Context, l *model.ExecutionLog) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO execution_logs (job_id, log_id, workspace_id, started_at, success, status, duration_ms, response_body, action, expire_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.JobID, l.ID, l.WorkspaceID, l.StartedAt, l.Success, l.Status, l.DurationMs,
		l.ResponseBody, l.Action, l.ExpireAt,
	)
	if err != nil {
		return fmt.Errorf("insert log %s for cron %s: %w", l.ID, l.JobID, mapError(err))
	}
	return nil
}

func (s *Store) IncrementDailySummary(ctx context.Context, date string, success, failed int64) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO daily_summaries (date, success_count, failed_count) VALUES ($1, $2, $3)
		 ON CONFLICT (date) DO UPDATE SET
		   success_count = daily_summaries.success_count + EXCLUDED.success_count,
		   failed_count = daily_summaries.failed_count + EXCLUDED.failed_count`,
		date, success, failed,
	)
	if err != nil {
		return fmt.Errorf("increment daily summary %s: %w", date, err)
	}
	return nil
}

// ListExecutionLogs fetches one row past limit to decide whether a cursor
// is needed.
func (s *Store) ListExecutionLogs(ctx context.Context, jobID string, limit int, cursor string) (*model.LogPage, error) {
	after, err := store.DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("list logs for cron %s: %w", jobID, err)
	}

	query := `SELECT log_id, status, success, duration_ms, started_at FROM execution_logs WHERE job_id = $1`
	args := []any{jobID}
	if after != "" {
		query += ` AND log_id < $2`
		args = append(args, after)
	}
	query += fmt.Sprintf(` ORDER BY log_id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list logs for cron %s: %w", jobID, err)
	}
	defer rows.Close()

	page := &model.LogPage{Logs: []model.ExecutionLogSummary{}}
	for rows.Next() {
		var l model.ExecutionLogSummary
		if err := rows.Scan(&l.ID, &l.Status, &l.Success, &l.DurationMs, &l.StartedAt); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		page.Logs = append(page.Logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate logs: %w", err)
	}

	if len(page.Logs) > limit {
		page.Logs = page.Logs[:limit]
		page.Cursor = store.EncodeCursor(page.Logs[limit-1].ID)
	}
	return page, nil
}

func (s *Store) GetExecutionLog(ctx context.Context, jobID, logID string) (*model.ExecutionLog, error) {
	var l model.ExecutionLog
	err := s.db.QueryRow(ctx,
		`SELECT job_id, log_id, workspace_id, started_at, success, status, duration_ms, response_body, action, expire_at
		 FROM execution_logs WHERE job_id = $1 AND log_id = $2`, jobID, logID,
	).Scan(&l.JobID, &l.ID, &l.WorkspaceID, &l.StartedAt, &l.Success, &l.Status, &l.DurationMs,
		&l.ResponseBody, &l.Action, &l.ExpireAt)
	if err != nil {
		return nil, fmt.Errorf("get log %s for cron %s: %w", logID, jobID, mapError(err))
	}
	return &l, nil
}

func (s *Store) ListDailySummaries(ctx context.Context, start, end string) ([]model.DailySummary, error) {
	rows, err := s.db.Query(ctx,
		`SELECT date, success_count, failed_count FROM daily_summaries
		 WHERE date BETWEEN $1 AND $2 ORDER BY date`, start, end)
	if err != nil {
		return nil, fmt.Errorf("list daily summaries: %w", err)
	}
	defer rows.Close()

	var out []model.DailySummary
	for rows.Next() {
		var d model.DailySummary
		if err := rows.Scan(&d.Date, &d.SuccessCount, &d.FailedCount); err != nil {
			return nil, fmt.Errorf("scan daily summary: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily summaries: %w", err)
	}
	return out, nil
}
