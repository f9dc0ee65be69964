package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/platform"
	"github.com/edvin/cronhook/internal/store"
	"github.com/edvin/cronhook/internal/trigger"
)

// CronService owns the lifecycle of cron jobs. Every mutation touches both
// the job record and its trigger and runs as a saga so the two never
// diverge.
type CronService struct {
	store    store.CronStore
	registry trigger.Registry
	now      func() time.Time
}

func NewCronService(s store.CronStore, r trigger.Registry) *CronService {
	return &CronService{store: s, registry: r, now: time.Now}
}

func (s *CronService) Create(ctx context.Context, workspaceID, userID string, setting model.CronSetting) (*model.CronJob, error) {
	if err := ValidateCronSetting(setting); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	id := platform.NewNumericID()
	job := &model.CronJob{
		ID:          id,
		WorkspaceID: workspaceID,
		Name:        setting.Name,
		Description: setting.Description,
		Setting:     setting,
		Status:      model.CronStatusEnabled,
		FailedCount: 0,
		TriggerID:   model.TriggerName(id),
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	saga := NewSaga("create-cron",
		SagaStep{
			Name: "create trigger",
			Action: func(ctx context.Context) error {
				return s.registry.Create(ctx, triggerFor(job, setting, trigger.StateEnabled))
			},
			Compensate: func(ctx context.Context) error {
				return s.registry.Delete(ctx, job.TriggerID)
			},
		},
		SagaStep{
			Name: "create record",
			Action: func(ctx context.Context) error {
				return s.store.CreateCron(ctx, job)
			},
		},
	)
	if err := saga.Run(ctx); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) || errors.Is(err, trigger.ErrAlreadyExists) {
			return nil, ConflictError("cron already exists", err)
		}
		return nil, InfrastructureError("failed to create cron", err)
	}

	zerolog.Ctx(ctx).Info().Str("cron_id", id).Str("workspace_id", workspaceID).Msg("cron created")
	return job, nil
}

// Update replaces the job's definition. The trigger keeps its current
// enabled or disabled state.
func (s *CronService) Update(ctx context.Context, job *model.CronJob, setting model.CronSetting) (*model.CronJob, error) {
	if err := ValidateCronSetting(setting); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	state := trigger.StateEnabled
	if model.IsDisableReason(job.Status) {
		state = trigger.StateDisabled
	}

	saga := NewSaga("update-cron",
		SagaStep{
			Name: "update trigger",
			Action: func(ctx context.Context) error {
				return s.registry.Update(ctx, triggerFor(job, setting, state))
			},
			Compensate: func(ctx context.Context) error {
				return s.registry.Update(ctx, triggerFor(job, job.Setting, state))
			},
		},
		SagaStep{
			Name: "update record",
			Action: func(ctx context.Context) error {
				return s.store.UpdateCronDefinition(ctx, job.ID, setting, now)
			},
		},
	)
	if err := saga.Run(ctx); err != nil {
		return nil, InfrastructureError("failed to update cron", err)
	}

	updated := *job
	updated.Name = setting.Name
	updated.Description = setting.Description
	updated.Setting = setting
	updated.UpdatedAt = now
	return &updated, nil
}

// Delete removes the trigger first so nothing fires against a job without a
// record. A trigger that is already gone is not an error.
func (s *CronService) Delete(ctx context.Context, job *model.CronJob) error {
	if err := s.registry.Delete(ctx, job.TriggerID); err != nil && !errors.Is(err, trigger.ErrNotFound) {
		return InfrastructureError("failed to delete cron", err)
	}
	if err := s.store.DeleteCron(ctx, job.ID); err != nil {
		return InfrastructureError("failed to delete cron", err)
	}
	zerolog.Ctx(ctx).Info().Str("cron_id", job.ID).Msg("cron deleted")
	return nil
}

func (s *CronService) Get(ctx context.Context, id string) (*model.CronJob, error) {
	job, err := s.store.GetCron(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundError("cron not found")
		}
		return nil, InfrastructureError("failed to get cron", err)
	}
	return job, nil
}

// GetForWorkspace loads a job and checks that it belongs to workspaceID.
func (s *CronService) GetForWorkspace(ctx context.Context, workspaceID, id string) (*model.CronJob, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.WorkspaceID != workspaceID {
		return nil, ForbiddenError("cron does not belong to this workspace")
	}
	return job, nil
}

func (s *CronService) List(ctx context.Context, workspaceID string) ([]model.CronJob, error) {
	jobs, err := s.store.ListCronsByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, InfrastructureError("failed to list crons", err)
	}
	if jobs == nil {
		jobs = []model.CronJob{}
	}
	return jobs, nil
}

// Disable pauses the trigger and records reason as the job status.
func (s *CronService) Disable(ctx context.Context, job *model.CronJob, reason string) error {
	if !model.IsDisableReason(reason) {
		return ValidationError(fmt.Sprintf("invalid disable reason %q", reason))
	}

	var live *trigger.Trigger
	saga := NewSaga("disable-cron",
		SagaStep{
			Name: "pause trigger",
			Action: func(ctx context.Context) error {
				t, err := s.registry.Get(ctx, job.TriggerID)
				if errors.Is(err, trigger.ErrNotFound) {
					return nil
				}
				if err != nil {
					return err
				}
				live = t
				paused := *t
				paused.State = trigger.StateDisabled
				return s.registry.Update(ctx, paused)
			},
			Compensate: func(ctx context.Context) error {
				if live == nil {
					return nil
				}
				return s.registry.Update(ctx, *live)
			},
		},
		SagaStep{
			Name: "update status",
			Action: func(ctx context.Context) error {
				return s.store.UpdateCronStatus(ctx, job.ID, reason, false)
			},
		},
	)
	if err := saga.Run(ctx); err != nil {
		return InfrastructureError("failed to disable cron", err)
	}

	zerolog.Ctx(ctx).Info().Str("cron_id", job.ID).Str("reason", reason).Msg("cron disabled")
	return nil
}

// Enable resumes the trigger, recreating it if it is missing, and resets the
// failure counter.
func (s *CronService) Enable(ctx context.Context, job *model.CronJob) error {
	var live *trigger.Trigger
	saga := NewSaga("enable-cron",
		SagaStep{
			Name: "resume trigger",
			Action: func(ctx context.Context) error {
				t, err := s.registry.Get(ctx, job.TriggerID)
				if errors.Is(err, trigger.ErrNotFound) {
					return s.registry.Create(ctx, triggerFor(job, job.Setting, trigger.StateEnabled))
				}
				if err != nil {
					return err
				}
				live = t
				resumed := *t
				resumed.State = trigger.StateEnabled
				return s.registry.Update(ctx, resumed)
			},
			Compensate: func(ctx context.Context) error {
				if live == nil {
					return s.registry.Delete(ctx, job.TriggerID)
				}
				return s.registry.Update(ctx, *live)
			},
		},
		SagaStep{
			Name: "update status",
			Action: func(ctx context.Context) error {
				return s.store.UpdateCronStatus(ctx, job.ID, model.CronStatusEnabled, true)
			},
		},
	)
	if err := saga.Run(ctx); err != nil {
		return InfrastructureError("failed to enable cron", err)
	}

	zerolog.Ctx(ctx).Info().Str("cron_id", job.ID).Msg("cron enabled")
	return nil
}

func triggerFor(job *model.CronJob, setting model.CronSetting, state trigger.State) trigger.Trigger {
	return trigger.Trigger{
		Name:        job.TriggerID,
		Expression:  setting.Schedule.Expression,
		Description: setting.Description,
		State:       state,
		Target:      trigger.Target{Payload: trigger.Payload{CronID: job.ID}},
	}
}
