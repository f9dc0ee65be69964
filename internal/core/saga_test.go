package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaga_AllStepsSucceed(t *testing.T) {
	var calls []string
	saga := NewSaga("test",
		SagaStep{Name: "a", Action: func(context.Context) error { calls = append(calls, "a"); return nil }},
		SagaStep{Name: "b", Action: func(context.Context) error { calls = append(calls, "b"); return nil }},
	)

	require.NoError(t, saga.Run(context.Background()))
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestSaga_CompensatesInReverseOrder(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	saga := NewSaga("test",
		SagaStep{
			Name:       "a",
			Action:     func(context.Context) error { calls = append(calls, "a"); return nil },
			Compensate: func(context.Context) error { calls = append(calls, "undo a"); return nil },
		},
		SagaStep{
			Name:       "b",
			Action:     func(context.Context) error { calls = append(calls, "b"); return nil },
			Compensate: func(context.Context) error { calls = append(calls, "undo b"); return nil },
		},
		SagaStep{
			Name:       "c",
			Action:     func(context.Context) error { calls = append(calls, "c"); return boom },
			Compensate: func(context.Context) error { calls = append(calls, "undo c"); return nil },
		},
	)

	err := saga.Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "b", "c", "undo b", "undo a"}, calls)
}

func TestSaga_CompensationFailureKeepsOriginalError(t *testing.T) {
	boom := errors.New("boom")
	undoErr := errors.New("undo failed")
	undone := false
	saga := NewSaga("test",
		SagaStep{
			Name:       "a",
			Action:     func(context.Context) error { return nil },
			Compensate: func(context.Context) error { undone = true; return nil },
		},
		SagaStep{
			Name:       "b",
			Action:     func(context.Context) error { return nil },
			Compensate: func(context.Context) error { return undoErr },
		},
		SagaStep{Name: "c", Action: func(context.Context) error { return boom }},
	)

	err := saga.Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, undoErr)
	assert.True(t, undone)
}

func TestSaga_CompensationRunsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var compensateErr error
	saga := NewSaga("test",
		SagaStep{
			Name:   "a",
			Action: func(context.Context) error { return nil },
			Compensate: func(ctx context.Context) error {
				compensateErr = ctx.Err()
				return nil
			},
		},
		SagaStep{Name: "b", Action: func(context.Context) error { cancel(); return context.Canceled }},
	)

	require.Error(t, saga.Run(ctx))
	assert.NoError(t, compensateErr)
}
