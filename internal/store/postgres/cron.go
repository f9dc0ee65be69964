package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/cronhook/internal/model"
)

const cronColumns = `id, workspace_id, name, description, setting, status, failed_count, trigger_id, created_by, created_at, updated_at`

func scanCron(row pgx.Row) (*model.CronJob, error) {
	var j model.CronJob
	err := row.Scan(&j.ID, &j.WorkspaceID, &j.Name, &j.Description, &j.Setting, &j.Status,
		&j.FailedCount, &j.TriggerID, &j.CreatedBy, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *Store) CreateCron(ctx context.Context, job *model.CronJob) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO cron_jobs (`+cronColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		job.ID, job.WorkspaceID, job.Name, job.Description, job.Setting, job.Status,
		job.FailedCount, job.TriggerID, job.CreatedBy, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cron %s: %w", job.ID, mapError(err))
	}
	return nil
}

func (s *Store) GetCron(ctx context.Context, id string) (*model.CronJob, error) {
	job, err := scanCron(s.db.QueryRow(ctx,
		`SELECT `+cronColumns+` FROM cron_jobs WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get cron %s: %w", id, mapError(err))
	}
	return job, nil
}

func (s *Store) ListCronsByWorkspace(ctx context.Context, workspaceID string) ([]model.CronJob, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+cronColumns+` FROM cron_jobs WHERE workspace_id = $1 ORDER BY id`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list crons for workspace %s: %w", workspaceID, err)
	}
	defer rows.Close()

	var jobs []model.CronJob
	for rows.Next() {
		job, err := scanCron(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cron: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crons: %w", err)
	}
	return jobs, nil
}

func (s *Store) UpdateCronDefinition(ctx context.Context, id string, setting model.CronSetting, updatedAt time.Time) error {
	return s.execOne(ctx, "update cron "+id,
		`UPDATE cron_jobs SET setting = $2, name = $3, description = $4, updated_at = $5 WHERE id = $1`,
		id, setting, setting.Name, setting.Description, updatedAt)
}

func (s *Store) UpdateCronStatus(ctx context.Context, id, status string, resetFailedCount bool) error {
	if resetFailedCount {
		return s.execOne(ctx, "update cron status "+id,
			`UPDATE cron_jobs SET status = $2, failed_count = 0 WHERE id = $1`, id, status)
	}
	return s.execOne(ctx, "update cron status "+id,
		`UPDATE cron_jobs SET status = $2 WHERE id = $1`, id, status)
}

func (s *Store) IncrementFailedCount(ctx context.Context, id string) error {
	return s.execOne(ctx, "increment failed count "+id,
		`UPDATE cron_jobs SET failed_count = failed_count + 1 WHERE id = $1`, id)
}

func (s *Store) ResetFailedCount(ctx context.Context, id string) error {
	return s.execOne(ctx, "reset failed count "+id,
		`UPDATE cron_jobs SET failed_count = 0 WHERE id = $1`, id)
}

func (s *Store) DeleteCron(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM cron_jobs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete cron %s: %w", id, err)
	}
	return nil
}
