package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	temporalclient "go.temporal.io/sdk/client"

	"github.com/edvin/cronhook/internal/api"
	"github.com/edvin/cronhook/internal/backend"
	"github.com/edvin/cronhook/internal/config"
	"github.com/edvin/cronhook/internal/db"
	"github.com/edvin/cronhook/internal/logging"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting (postgres store only)")
	migrateDirFlag := flag.String("migrate-dir", db.DefaultMigrationsDir, "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("cron-api"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		if cfg.StoreBackend != config.BackendPostgres {
			logger.Fatal().Str("store", cfg.StoreBackend).Msg("-migrate requires the postgres store")
		}
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL, *migrateDirFlag); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := backend.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer b.Close()
	b.RegisterMetrics(prometheus.DefaultRegisterer)

	checks := map[string]api.ReadinessCheck{"store": b.Ping}

	var tc temporalclient.Client
	if cfg.TriggerBackend == config.BackendTemporal {
		dialOpts, err := cfg.TemporalOptions()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure temporal TLS")
		}
		if dialOpts.ConnectionOptions.TLS != nil {
			logger.Info().Msg("temporal mTLS enabled")
		}
		tc, err = temporalclient.Dial(dialOpts)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to temporal")
		}
		defer tc.Close()

		checks["temporal"] = func(ctx context.Context) error {
			_, err := tc.CheckHealth(ctx, &temporalclient.CheckHealthRequest{})
			return err
		}
	}

	registry, err := b.Triggers(ctx, cfg.TriggerBackend, tc)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create trigger registry")
	}

	srv := api.NewServer(logger, b.Services(registry), cfg, checks)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", cfg.HTTPListenAddr).
			Str("trigger", cfg.TriggerBackend).
			Msg("starting cron API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
}
