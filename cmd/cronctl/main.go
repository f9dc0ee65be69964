package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	temporalclient "go.temporal.io/sdk/client"

	"github.com/edvin/cronhook/internal/backend"
	"github.com/edvin/cronhook/internal/config"
	"github.com/edvin/cronhook/internal/db"
	"github.com/edvin/cronhook/internal/seed"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "migrate":
		fs := flag.NewFlagSet("migrate", flag.ExitOnError)
		dir := fs.String("dir", db.DefaultMigrationsDir, "Migration files directory")
		fs.Parse(os.Args[2:])
		err = runMigrate(*dir)

	case "seed":
		fs := flag.NewFlagSet("seed", flag.ExitOnError)
		file := fs.String("f", "", "Path to seed definition YAML file (required)")
		timeout := fs.Duration("timeout", 2*time.Minute, "Timeout for the whole seed run")
		fs.Parse(os.Args[2:])

		if *file == "" {
			fmt.Fprintln(os.Stderr, "Error: -f flag is required")
			fs.Usage()
			os.Exit(1)
		}
		err = runSeed(*file, *timeout)

	case "purge":
		fs := flag.NewFlagSet("purge", flag.ExitOnError)
		fs.Parse(os.Args[2:])
		err = runPurge()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage:
  cronctl migrate [-dir migrations]    Apply Postgres migrations
  cronctl seed -f <seed.yaml>          Create users, workspaces and cron jobs
  cronctl purge                        Delete expired logs and sessions (Postgres)`)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate("cronctl"); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runMigrate(dir string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.StoreBackend != config.BackendPostgres {
		return fmt.Errorf("migrate requires STORE_BACKEND=postgres, got %q", cfg.StoreBackend)
	}
	if err := db.RunMigrations(cfg.DatabaseURL, dir); err != nil {
		return err
	}
	fmt.Println("Migrations applied.")
	return nil
}

func runSeed(path string, timeout time.Duration) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	seedCfg, err := seed.Load(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	b, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	var tc temporalclient.Client
	if cfg.TriggerBackend == config.BackendTemporal {
		opts, err := cfg.TemporalOptions()
		if err != nil {
			return err
		}
		tc, err = temporalclient.Dial(opts)
		if err != nil {
			return fmt.Errorf("connect to temporal: %w", err)
		}
		defer tc.Close()
	}

	registry, err := b.Triggers(ctx, cfg.TriggerBackend, tc)
	if err != nil {
		return err
	}

	result, err := seed.Apply(ctx, b.Services(registry), seedCfg)
	if err != nil {
		return err
	}
	fmt.Printf("Seed complete: %s\n", result)
	return nil
}

func runPurge() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.StoreBackend != config.BackendPostgres {
		return fmt.Errorf("purge requires STORE_BACKEND=postgres; DynamoDB expires items by TTL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	b, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	n, err := b.Postgres.PurgeExpired(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	fmt.Printf("Purged %d expired rows.\n", n)
	return nil
}
