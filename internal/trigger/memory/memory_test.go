package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/cronhook/internal/trigger"
)

func TestRegistry_Lifecycle(t *testing.T) {
	r := New()
	ctx := context.Background()
	tr := trigger.Trigger{
		Name:       "pmt-schedule-1",
		Expression: "cron(0 12 * * ? *)",
		State:      trigger.StateEnabled,
		Target:     trigger.Target{Payload: trigger.Payload{CronID: "1"}},
	}

	require.NoError(t, r.Create(ctx, tr))
	assert.ErrorIs(t, r.Create(ctx, tr), trigger.ErrAlreadyExists)
	assert.Equal(t, 1, r.Len())

	tr.State = trigger.StateDisabled
	require.NoError(t, r.Update(ctx, tr))

	got, err := r.Get(ctx, "pmt-schedule-1")
	require.NoError(t, err)
	assert.Equal(t, trigger.StateDisabled, got.State)
	assert.Equal(t, "1", got.Target.Payload.CronID)

	require.NoError(t, r.Delete(ctx, "pmt-schedule-1"))
	assert.ErrorIs(t, r.Delete(ctx, "pmt-schedule-1"), trigger.ErrNotFound)
	_, err = r.Get(ctx, "pmt-schedule-1")
	assert.ErrorIs(t, err, trigger.ErrNotFound)
	assert.ErrorIs(t, r.Update(ctx, tr), trigger.ErrNotFound)
}
