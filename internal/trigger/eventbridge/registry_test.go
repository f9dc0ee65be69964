package eventbridge

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/aws/aws-sdk-go-v2/service/scheduler/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/cronhook/internal/trigger"
)

// ---------- Mock scheduler ----------

type mockScheduler struct {
	mock.Mock
}

func (m *mockScheduler) CreateSchedule(ctx context.Context, in *scheduler.CreateScheduleInput, _ ...func(*scheduler.Options)) (*scheduler.CreateScheduleOutput, error) {
	args := m.Called(ctx, in)
	return &scheduler.CreateScheduleOutput{}, args.Error(0)
}

func (m *mockScheduler) UpdateSchedule(ctx context.Context, in *scheduler.UpdateScheduleInput, _ ...func(*scheduler.Options)) (*scheduler.UpdateScheduleOutput, error) {
	args := m.Called(ctx, in)
	return &scheduler.UpdateScheduleOutput{}, args.Error(0)
}

func (m *mockScheduler) DeleteSchedule(ctx context.Context, in *scheduler.DeleteScheduleInput, _ ...func(*scheduler.Options)) (*scheduler.DeleteScheduleOutput, error) {
	args := m.Called(ctx, in)
	return &scheduler.DeleteScheduleOutput{}, args.Error(0)
}

func (m *mockScheduler) GetSchedule(ctx context.Context, in *scheduler.GetScheduleInput, _ ...func(*scheduler.Options)) (*scheduler.GetScheduleOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scheduler.GetScheduleOutput), args.Error(1)
}

var testConfig = Config{
	GroupName: "cron-group",
	TargetARN: "arn:aws:lambda:eu-west-1:123:function:execute-cron",
	RoleARN:   "arn:aws:iam::123:role/scheduler",
}

func testTrigger() trigger.Trigger {
	return trigger.Trigger{
		Name:        "pmt-schedule-1",
		Expression:  "cron(0 12 * * ? *)",
		Description: "noon",
		State:       trigger.StateEnabled,
		Target:      trigger.Target{Payload: trigger.Payload{CronID: "1"}},
	}
}

// ---------- Create ----------

func TestRegistry_Create(t *testing.T) {
	api := &mockScheduler{}
	api.On("CreateSchedule", mock.Anything, mock.MatchedBy(func(in *scheduler.CreateScheduleInput) bool {
		return aws.ToString(in.Name) == "pmt-schedule-1" &&
			aws.ToString(in.GroupName) == "cron-group" &&
			aws.ToString(in.ScheduleExpression) == "cron(0 12 * * ? *)" &&
			in.State == types.ScheduleStateEnabled &&
			in.FlexibleTimeWindow.Mode == types.FlexibleTimeWindowModeOff &&
			aws.ToString(in.Target.Arn) == testConfig.TargetARN &&
			aws.ToString(in.Target.RoleArn) == testConfig.RoleARN &&
			aws.ToString(in.Target.Input) == `{"cronId":"1"}` &&
			aws.ToInt32(in.Target.RetryPolicy.MaximumEventAgeInSeconds) == 60 &&
			aws.ToInt32(in.Target.RetryPolicy.MaximumRetryAttempts) == 0 &&
			aws.ToString(in.ClientToken) != ""
	})).Return(nil)

	require.NoError(t, New(api, testConfig).Create(context.Background(), testTrigger()))
	api.AssertExpectations(t)
}

func TestRegistry_Create_Conflict(t *testing.T) {
	api := &mockScheduler{}
	api.On("CreateSchedule", mock.Anything, mock.Anything).Return(&types.ConflictException{Message: aws.String("exists")})

	err := New(api, testConfig).Create(context.Background(), testTrigger())
	assert.ErrorIs(t, err, trigger.ErrAlreadyExists)
}

// ---------- Update ----------

func TestRegistry_Update_Disabled(t *testing.T) {
	api := &mockScheduler{}
	api.On("UpdateSchedule", mock.Anything, mock.MatchedBy(func(in *scheduler.UpdateScheduleInput) bool {
		return in.State == types.ScheduleStateDisabled && aws.ToString(in.Target.Arn) == "arn:custom"
	})).Return(nil)

	tr := testTrigger()
	tr.State = trigger.StateDisabled
	tr.Target.ID = "arn:custom"
	require.NoError(t, New(api, testConfig).Update(context.Background(), tr))
	api.AssertExpectations(t)
}

// ---------- Delete ----------

func TestRegistry_Delete_NotFound(t *testing.T) {
	api := &mockScheduler{}
	api.On("DeleteSchedule", mock.Anything, mock.Anything).Return(&types.ResourceNotFoundException{Message: aws.String("gone")})

	err := New(api, testConfig).Delete(context.Background(), "pmt-schedule-1")
	assert.ErrorIs(t, err, trigger.ErrNotFound)
}

func TestRegistry_Delete_OtherError(t *testing.T) {
	api := &mockScheduler{}
	api.On("DeleteSchedule", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	err := New(api, testConfig).Delete(context.Background(), "pmt-schedule-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, trigger.ErrNotFound)
}

// ---------- Get ----------

func TestRegistry_Get(t *testing.T) {
	api := &mockScheduler{}
	api.On("GetSchedule", mock.Anything, mock.MatchedBy(func(in *scheduler.GetScheduleInput) bool {
		return aws.ToString(in.Name) == "pmt-schedule-1" && aws.ToString(in.GroupName) == "cron-group"
	})).Return(&scheduler.GetScheduleOutput{
		Name:               aws.String("pmt-schedule-1"),
		ScheduleExpression: aws.String("cron(0 12 * * ? *)"),
		Description:        aws.String("noon"),
		State:              types.ScheduleStateDisabled,
		Target: &types.Target{
			Arn:   aws.String(testConfig.TargetARN),
			Input: aws.String(`{"cronId":"1"}`),
		},
	}, nil)

	got, err := New(api, testConfig).Get(context.Background(), "pmt-schedule-1")
	require.NoError(t, err)
	assert.Equal(t, trigger.StateDisabled, got.State)
	assert.Equal(t, "cron(0 12 * * ? *)", got.Expression)
	assert.Equal(t, "1", got.Target.Payload.CronID)
	assert.Empty(t, got.Target.ID)
}

func TestRegistry_Get_NotFound(t *testing.T) {
	api := &mockScheduler{}
	api.On("GetSchedule", mock.Anything, mock.Anything).Return(nil, &types.ResourceNotFoundException{})

	_, err := New(api, testConfig).Get(context.Background(), "pmt-schedule-1")
	assert.ErrorIs(t, err, trigger.ErrNotFound)
}
