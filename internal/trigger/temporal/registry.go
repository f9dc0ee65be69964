// Package temporal implements trigger.Registry on Temporal schedules. Each
// trigger is a schedule that starts the cron execution workflow with the
// job id as its only argument.
package temporal

import (
	"context"
	"errors"
	"fmt"

	commonpb "go.temporal.io/api/common/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"
	sdktemporal "go.temporal.io/sdk/temporal"

	"github.com/edvin/cronhook/internal/trigger"
)

// WorkflowName is the registered name of the workflow every schedule starts.
const WorkflowName = "ExecuteCronWorkflow"

const (
	memoExpression  = "expression"
	memoDescription = "description"
)

type Registry struct {
	schedules client.ScheduleClient
	taskQueue string
}

var _ trigger.Registry = (*Registry)(nil)

func New(schedules client.ScheduleClient, taskQueue string) *Registry {
	return &Registry{schedules: schedules, taskQueue: taskQueue}
}

func (r *Registry) Create(ctx context.Context, t trigger.Trigger) error {
	spec, err := scheduleSpec(t.Expression)
	if err != nil {
		return fmt.Errorf("create schedule %s: %w", t.Name, err)
	}
	_, err = r.schedules.Create(ctx, client.ScheduleOptions{
		ID:     t.Name,
		Spec:   spec,
		Action: r.action(t),
		Paused: t.State == trigger.StateDisabled,
		Note:   t.Description,
	})
	if err != nil {
		return fmt.Errorf("create schedule %s: %w", t.Name, mapError(err))
	}
	return nil
}

// Update replaces spec, action and paused state of an existing schedule.
func (r *Registry) Update(ctx context.Context, t trigger.Trigger) error {
	spec, err := scheduleSpec(t.Expression)
	if err != nil {
		return fmt.Errorf("update schedule %s: %w", t.Name, err)
	}
	handle := r.schedules.GetHandle(ctx, t.Name)
	err = handle.Update(ctx, client.ScheduleUpdateOptions{
		DoUpdate: func(in client.ScheduleUpdateInput) (*client.ScheduleUpdate, error) {
			s := in.Description.Schedule
			s.Spec = &spec
			s.Action = r.action(t)
			state := client.ScheduleState{}
			if s.State != nil {
				state = *s.State
			}
			state.Paused = t.State == trigger.StateDisabled
			state.Note = t.Description
			s.State = &state
			return &client.ScheduleUpdate{Schedule: &s}, nil
		},
	})
	if err != nil {
		return fmt.Errorf("update schedule %s: %w", t.Name, mapError(err))
	}
	return nil
}

func (r *Registry) Delete(ctx context.Context, name string) error {
	if err := r.schedules.GetHandle(ctx, name).Delete(ctx); err != nil {
		return fmt.Errorf("delete schedule %s: %w", name, mapError(err))
	}
	return nil
}

func (r *Registry) Get(ctx context.Context, name string) (*trigger.Trigger, error) {
	desc, err := r.schedules.GetHandle(ctx, name).Describe(ctx)
	if err != nil {
		return nil, fmt.Errorf("describe schedule %s: %w", name, mapError(err))
	}

	t := &trigger.Trigger{Name: name, State: trigger.StateEnabled}
	if desc.Schedule.State != nil && desc.Schedule.State.Paused {
		t.State = trigger.StateDisabled
	}

	action, ok := desc.Schedule.Action.(*client.ScheduleWorkflowAction)
	if !ok {
		return nil, fmt.Errorf("schedule %s has unexpected action %T", name, desc.Schedule.Action)
	}
	if err := decodeValue(action.Memo[memoExpression], &t.Expression); err != nil {
		return nil, fmt.Errorf("decode schedule %s expression: %w", name, err)
	}
	if err := decodeValue(action.Memo[memoDescription], &t.Description); err != nil {
		return nil, fmt.Errorf("decode schedule %s description: %w", name, err)
	}
	if len(action.Args) > 0 {
		if err := decodeValue(action.Args[0], &t.Target.Payload.CronID); err != nil {
			return nil, fmt.Errorf("decode schedule %s argument: %w", name, err)
		}
	}
	return t, nil
}

func (r *Registry) action(t trigger.Trigger) *client.ScheduleWorkflowAction {
	return &client.ScheduleWorkflowAction{
		ID:        t.Name,
		Workflow:  WorkflowName,
		Args:      []interface{}{t.Target.Payload.CronID},
		TaskQueue: r.taskQueue,
		Memo: map[string]interface{}{
			memoExpression:  t.Expression,
			memoDescription: t.Description,
		},
	}
}

func scheduleSpec(expr string) (client.ScheduleSpec, error) {
	cal, err := CalendarSpec(expr)
	if err != nil {
		return client.ScheduleSpec{}, err
	}
	return client.ScheduleSpec{
		Calendars:    []client.ScheduleCalendarSpec{cal},
		TimeZoneName: "UTC",
	}, nil
}

// decodeValue reads a described memo or argument. Values come back from the
// server as payloads; locally built values are plain Go values.
func decodeValue(v interface{}, out *string) error {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		*out = val
		return nil
	case *commonpb.Payload:
		return converter.GetDefaultDataConverter().FromPayload(val, out)
	default:
		return fmt.Errorf("unexpected value type %T", v)
	}
}

func mapError(err error) error {
	var notFound *serviceerror.NotFound
	if errors.As(err, &notFound) {
		return trigger.ErrNotFound
	}
	var exists *serviceerror.AlreadyExists
	if errors.As(err, &exists) || errors.Is(err, sdktemporal.ErrScheduleAlreadyRunning) {
		return trigger.ErrAlreadyExists
	}
	return err
}
