package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/edvin/cronhook/internal/backend"
	"github.com/edvin/cronhook/internal/config"
	"github.com/edvin/cronhook/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("cron-executor"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)
	ctx := context.Background()

	b, err := backend.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer b.Close()

	// Disabling a job after too many failures pauses its schedule.
	registry, err := b.Triggers(ctx, config.BackendEventBridge, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create trigger registry")
	}
	svcs := b.Services(registry)

	// Lambda has no scrape endpoint; runner metrics go to a private registry.
	runner, err := b.Runner(ctx, svcs.Cron, prometheus.NewRegistry())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create runner")
	}

	h := &handler{runner: runner, logger: logger}
	lambda.Start(h.Handle)
}
