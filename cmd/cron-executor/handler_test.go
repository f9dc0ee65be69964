package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/cronhook/internal/executor"
	"github.com/edvin/cronhook/internal/trigger"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Execute(ctx context.Context, jobID string) (executor.Ack, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).(executor.Ack), args.Error(1)
}

func newHandler(r runner) *handler {
	return &handler{runner: r, logger: zerolog.Nop()}
}

func TestHandle_Executes(t *testing.T) {
	r := &mockRunner{}
	r.On("Execute", mock.Anything, "job-1").Return(executor.OK, nil)

	ack, err := newHandler(r).Handle(context.Background(), trigger.Payload{CronID: "job-1"})
	require.NoError(t, err)
	assert.Equal(t, executor.OK, ack)
	r.AssertExpectations(t)
}

func TestHandle_MissingCronID(t *testing.T) {
	r := &mockRunner{}

	_, err := newHandler(r).Handle(context.Background(), trigger.Payload{})
	assert.Error(t, err)
	r.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestHandle_DeletedJobFails(t *testing.T) {
	r := &mockRunner{}
	r.On("Execute", mock.Anything, "gone").
		Return(executor.Ack{}, fmt.Errorf("execute cron gone: %w", executor.ErrJobNotFound))

	ack, err := newHandler(r).Handle(context.Background(), trigger.Payload{CronID: "gone"})
	require.Error(t, err)
	assert.ErrorIs(t, err, executor.ErrJobNotFound)
	assert.Equal(t, executor.Ack{}, ack)
}

func TestHandle_StoreError(t *testing.T) {
	r := &mockRunner{}
	r.On("Execute", mock.Anything, "job-1").Return(executor.Ack{}, errors.New("dynamodb unavailable"))

	_, err := newHandler(r).Handle(context.Background(), trigger.Payload{CronID: "job-1"})
	assert.EqualError(t, err, "dynamodb unavailable")
}
