package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/edvin/cronhook/internal/executor"
	"github.com/edvin/cronhook/internal/trigger"
)

type runner interface {
	Execute(ctx context.Context, jobID string) (executor.Ack, error)
}

// handler receives the scheduler payload. Every execution error, including a
// job that no longer exists, fails the invocation.
type handler struct {
	runner runner
	logger zerolog.Logger
}

func (h *handler) Handle(ctx context.Context, p trigger.Payload) (executor.Ack, error) {
	if p.CronID == "" {
		return executor.Ack{}, fmt.Errorf("missing cronId in event")
	}

	ctx = h.logger.WithContext(ctx)

	ack, err := h.runner.Execute(ctx, p.CronID)
	if err != nil {
		h.logger.Error().Err(err).Str("cron_id", p.CronID).Msg("cron execution failed")
		return executor.Ack{}, err
	}
	return ack, nil
}
