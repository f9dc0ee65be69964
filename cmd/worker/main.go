package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.temporal.io/api/serviceerror"
	temporalclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/interceptor"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"

	"github.com/edvin/cronhook/internal/activity"
	"github.com/edvin/cronhook/internal/backend"
	"github.com/edvin/cronhook/internal/config"
	"github.com/edvin/cronhook/internal/logging"
	"github.com/edvin/cronhook/internal/metrics"
	"github.com/edvin/cronhook/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("worker"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := backend.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer b.Close()
	b.RegisterMetrics(prometheus.DefaultRegisterer)

	dialOpts, err := cfg.TemporalOptions()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure temporal TLS")
	}
	if dialOpts.ConnectionOptions.TLS != nil {
		logger.Info().Msg("temporal mTLS enabled")
	}
	tc, err := temporalclient.Dial(dialOpts)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to temporal")
	}
	defer tc.Close()

	registry, err := b.Triggers(ctx, config.BackendTemporal, tc)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create trigger registry")
	}
	svcs := b.Services(registry)

	runner, err := b.Runner(ctx, svcs.Cron, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create runner")
	}

	w := worker.New(tc, cfg.TemporalTaskQueue, worker.Options{
		Interceptors: []interceptor.WorkerInterceptor{&workflow.ErrorTypingInterceptor{}},
	})

	w.RegisterActivity(activity.NewCron(runner, logger))
	w.RegisterWorkflow(workflow.ExecuteCronWorkflow)

	// Postgres has no TTL index; expired logs and sessions are purged on a
	// schedule instead.
	var schedules []cronSchedule
	if b.Postgres != nil {
		w.RegisterActivity(activity.NewMaintenance(b.Postgres))
		w.RegisterWorkflow(workflow.PurgeExpiredWorkflow)
		schedules = append(schedules, cronSchedule{
			id:       "purge-expired-cron",
			cron:     "17 * * * *",
			workflow: workflow.PurgeExpiredWorkflow,
		})
	}

	if cfg.MetricsAddr != "" {
		metricsSrv := metrics.NewServer(cfg.MetricsAddr, nil)
		go func() {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("starting metrics server")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	go func() {
		logger.Info().Str("taskQueue", cfg.TemporalTaskQueue).Msg("starting temporal worker")
		if err := w.Run(worker.InterruptCh()); err != nil {
			logger.Fatal().Err(err).Msg("worker failed")
		}
	}()

	if err := registerCronSchedules(ctx, tc.ScheduleClient(), cfg.TemporalTaskQueue, schedules, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to create cron schedule")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down worker")
	cancel()
}

type cronSchedule struct {
	id       string
	cron     string
	workflow interface{}
	args     []interface{}
}

// registerCronSchedules creates the housekeeping schedules. Schedules that
// already exist are left alone so re-deploys do not fail.
func registerCronSchedules(ctx context.Context, sc temporalclient.ScheduleClient, taskQueue string, schedules []cronSchedule, logger zerolog.Logger) error {
	for _, s := range schedules {
		_, err := sc.Create(ctx, temporalclient.ScheduleOptions{
			ID: s.id,
			Spec: temporalclient.ScheduleSpec{
				CronExpressions: []string{s.cron},
			},
			Action: &temporalclient.ScheduleWorkflowAction{
				ID:        s.id,
				Workflow:  s.workflow,
				Args:      s.args,
				TaskQueue: taskQueue,
			},
		})
		if err != nil {
			var exists *serviceerror.AlreadyExists
			if errors.As(err, &exists) || errors.Is(err, temporal.ErrScheduleAlreadyRunning) {
				logger.Info().Str("id", s.id).Msg("cron schedule already exists, skipping")
				continue
			}
			return fmt.Errorf("create schedule %s: %w", s.id, err)
		}
		logger.Info().Str("id", s.id).Str("cron", s.cron).Msg("created cron schedule")
	}
	return nil
}
