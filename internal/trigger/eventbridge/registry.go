// Package eventbridge implements trigger.Registry on EventBridge Scheduler.
// Every schedule targets the executor Lambda with a {"cronId": ...} input.
package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/aws/aws-sdk-go-v2/service/scheduler/types"
	"github.com/google/uuid"

	"github.com/edvin/cronhook/internal/trigger"
)

const (
	maxEventAgeSeconds = 60
	maxRetryAttempts   = 0
)

// API is the subset of the scheduler client used by the registry.
type API interface {
	CreateSchedule(ctx context.Context, params *scheduler.CreateScheduleInput, optFns ...func(*scheduler.Options)) (*scheduler.CreateScheduleOutput, error)
	UpdateSchedule(ctx context.Context, params *scheduler.UpdateScheduleInput, optFns ...func(*scheduler.Options)) (*scheduler.UpdateScheduleOutput, error)
	DeleteSchedule(ctx context.Context, params *scheduler.DeleteScheduleInput, optFns ...func(*scheduler.Options)) (*scheduler.DeleteScheduleOutput, error)
	GetSchedule(ctx context.Context, params *scheduler.GetScheduleInput, optFns ...func(*scheduler.Options)) (*scheduler.GetScheduleOutput, error)
}

type Config struct {
	GroupName string
	// TargetARN is the executor Lambda invoked when Target.ID is empty.
	TargetARN string
	RoleARN   string
}

type Registry struct {
	client API
	cfg    Config
}

var _ trigger.Registry = (*Registry)(nil)

func New(client API, cfg Config) *Registry {
	return &Registry{client: client, cfg: cfg}
}

func (r *Registry) Create(ctx context.Context, t trigger.Trigger) error {
	target, err := r.target(t.Target)
	if err != nil {
		return fmt.Errorf("create schedule %s: %w", t.Name, err)
	}
	_, err = r.client.CreateSchedule(ctx, &scheduler.CreateScheduleInput{
		Name:               aws.String(t.Name),
		GroupName:          aws.String(r.cfg.GroupName),
		ScheduleExpression: aws.String(t.Expression),
		Description:        aws.String(t.Description),
		State:              scheduleState(t.State),
		FlexibleTimeWindow: &types.FlexibleTimeWindow{Mode: types.FlexibleTimeWindowModeOff},
		Target:             target,
		ClientToken:        aws.String(uuid.NewString()),
	})
	if err != nil {
		return fmt.Errorf("create schedule %s: %w", t.Name, mapError(err))
	}
	return nil
}

// Update replaces the whole schedule definition.
func (r *Registry) Update(ctx context.Context, t trigger.Trigger) error {
	target, err := r.target(t.Target)
	if err != nil {
		return fmt.Errorf("update schedule %s: %w", t.Name, err)
	}
	_, err = r.client.UpdateSchedule(ctx, &scheduler.UpdateScheduleInput{
		Name:               aws.String(t.Name),
		GroupName:          aws.String(r.cfg.GroupName),
		ScheduleExpression: aws.String(t.Expression),
		Description:        aws.String(t.Description),
		State:              scheduleState(t.State),
		FlexibleTimeWindow: &types.FlexibleTimeWindow{Mode: types.FlexibleTimeWindowModeOff},
		Target:             target,
		ClientToken:        aws.String(uuid.NewString()),
	})
	if err != nil {
		return fmt.Errorf("update schedule %s: %w", t.Name, mapError(err))
	}
	return nil
}

func (r *Registry) Delete(ctx context.Context, name string) error {
	_, err := r.client.DeleteSchedule(ctx, &scheduler.DeleteScheduleInput{
		Name:        aws.String(name),
		GroupName:   aws.String(r.cfg.GroupName),
		ClientToken: aws.String(uuid.NewString()),
	})
	if err != nil {
		return fmt.Errorf("delete schedule %s: %w", name, mapError(err))
	}
	return nil
}

func (r *Registry) Get(ctx context.Context, name string) (*trigger.Trigger, error) {
	out, err := r.client.GetSchedule(ctx, &scheduler.GetScheduleInput{
		Name:      aws.String(name),
		GroupName: aws.String(r.cfg.GroupName),
	})
	if err != nil {
		return nil, fmt.Errorf("get schedule %s: %w", name, mapError(err))
	}

	t := &trigger.Trigger{
		Name:        aws.ToString(out.Name),
		Expression:  aws.ToString(out.ScheduleExpression),
		Description: aws.ToString(out.Description),
		State:       trigger.StateEnabled,
	}
	if out.State == types.ScheduleStateDisabled {
		t.State = trigger.StateDisabled
	}
	if out.Target != nil {
		if arn := aws.ToString(out.Target.Arn); arn != r.cfg.TargetARN {
			t.Target.ID = arn
		}
		if input := aws.ToString(out.Target.Input); input != "" {
			if err := json.Unmarshal([]byte(input), &t.Target.Payload); err != nil {
				return nil, fmt.Errorf("decode schedule %s input: %w", name, err)
			}
		}
	}
	return t, nil
}

func (r *Registry) target(t trigger.Target) (*types.Target, error) {
	input, err := json.Marshal(t.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode target input: %w", err)
	}
	arn := t.ID
	if arn == "" {
		arn = r.cfg.TargetARN
	}
	return &types.Target{
		Arn:     aws.String(arn),
		RoleArn: aws.String(r.cfg.RoleARN),
		Input:   aws.String(string(input)),
		RetryPolicy: &types.RetryPolicy{
			MaximumEventAgeInSeconds: aws.Int32(maxEventAgeSeconds),
			MaximumRetryAttempts:     aws.Int32(maxRetryAttempts),
		},
	}, nil
}

func scheduleState(s trigger.State) types.ScheduleState {
	if s == trigger.StateDisabled {
		return types.ScheduleStateDisabled
	}
	return types.ScheduleStateEnabled
}

func mapError(err error) error {
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return trigger.ErrNotFound
	}
	var conflict *types.ConflictException
	if errors.As(err, &conflict) {
		return trigger.ErrAlreadyExists
	}
	return err
}
