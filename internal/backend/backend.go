// Package backend opens the store, trigger registry and executor selected by
// configuration. The binaries under cmd/ share it.
package backend

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	temporalclient "go.temporal.io/sdk/client"

	"github.com/edvin/cronhook/internal/archive"
	"github.com/edvin/cronhook/internal/awsclient"
	"github.com/edvin/cronhook/internal/config"
	"github.com/edvin/cronhook/internal/core"
	"github.com/edvin/cronhook/internal/db"
	"github.com/edvin/cronhook/internal/executor"
	"github.com/edvin/cronhook/internal/metrics"
	"github.com/edvin/cronhook/internal/store"
	"github.com/edvin/cronhook/internal/store/dynamo"
	"github.com/edvin/cronhook/internal/store/memory"
	"github.com/edvin/cronhook/internal/store/postgres"
	"github.com/edvin/cronhook/internal/trigger"
	"github.com/edvin/cronhook/internal/trigger/eventbridge"
	triggermem "github.com/edvin/cronhook/internal/trigger/memory"
	temporaltrigger "github.com/edvin/cronhook/internal/trigger/temporal"
)

// Backends holds the opened store and the shared AWS configuration.
type Backends struct {
	Store store.Store
	Pool  *pgxpool.Pool

	// Postgres is set when STORE_BACKEND is postgres.
	Postgres *postgres.Store

	cfg *config.Config
	aws *aws.Config
}

// AWSOptions maps the AWS settings of cfg to client options.
func AWSOptions(cfg *config.Config) awsclient.Options {
	return awsclient.Options{
		Region:           cfg.AWSRegion,
		DynamoDBEndpoint: cfg.DynamoDBEndpoint,
		S3Endpoint:       cfg.S3Endpoint,
		AccessKeyID:      cfg.AWSAccessKeyID,
		SecretAccessKey:  cfg.AWSSecretAccessKey,
	}
}

// Open connects the configured store. The caller must Close the result.
func Open(ctx context.Context, cfg *config.Config) (*Backends, error) {
	b := &Backends{cfg: cfg}

	switch cfg.StoreBackend {
	case config.BackendDynamoDB:
		awsCfg, err := b.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		client := awsclient.NewDynamoDB(awsCfg, AWSOptions(cfg))
		b.Store = dynamo.New(client, cfg.DDBTableName, cfg.DDBTableNameCronLog)
	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		b.Pool = pool
		b.Postgres = postgres.New(pool)
		b.Store = b.Postgres
	case config.BackendMemory:
		b.Store = memory.New()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	return b, nil
}

func (b *Backends) Close() {
	if b.Pool != nil {
		b.Pool.Close()
	}
}

// RegisterMetrics exposes connection pool gauges when the store has a pool.
func (b *Backends) RegisterMetrics(reg prometheus.Registerer) {
	if b.Pool != nil {
		metrics.RegisterPgxPoolMetrics(reg, b.Pool)
	}
}

// Ping checks the store connection. Stores without a connection always
// succeed.
func (b *Backends) Ping(ctx context.Context) error {
	if b.Pool != nil {
		return b.Pool.Ping(ctx)
	}
	return nil
}

func (b *Backends) awsConfig(ctx context.Context) (aws.Config, error) {
	if b.aws != nil {
		return *b.aws, nil
	}
	awsCfg, err := awsclient.LoadConfig(ctx, AWSOptions(b.cfg))
	if err != nil {
		return aws.Config{}, err
	}
	b.aws = &awsCfg
	return awsCfg, nil
}

// Triggers returns the registry for backend. tc is required for the
// temporal backend only.
func (b *Backends) Triggers(ctx context.Context, backend string, tc temporalclient.Client) (trigger.Registry, error) {
	switch backend {
	case config.BackendEventBridge:
		awsCfg, err := b.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		return eventbridge.New(awsclient.NewScheduler(awsCfg), eventbridge.Config{
			GroupName: b.cfg.SchedulerGroupName,
			TargetARN: b.cfg.ExecuteCronARN,
			RoleARN:   b.cfg.RoleARN,
		}), nil
	case config.BackendTemporal:
		if tc == nil {
			return nil, fmt.Errorf("temporal trigger backend needs a temporal client")
		}
		return temporaltrigger.New(tc.ScheduleClient(), b.cfg.TemporalTaskQueue), nil
	case config.BackendMemory:
		return triggermem.New(), nil
	default:
		return nil, fmt.Errorf("unknown trigger backend %q", backend)
	}
}

// Services builds the core services over the store and registry.
func (b *Backends) Services(registry trigger.Registry) *core.Services {
	return core.NewServices(b.Store, registry, GitHub(b.cfg), b.cfg.SessionTTL)
}

// Runner builds the execution runner. Logs are archived to S3 when
// LOG_ARCHIVE_BUCKET is set.
func (b *Backends) Runner(ctx context.Context, crons *core.CronService, reg prometheus.Registerer) (*executor.Runner, error) {
	opts := []executor.Option{executor.WithMetrics(metrics.NewRunnerMetrics(reg))}

	if b.cfg.LogArchiveBucket != "" {
		awsCfg, err := b.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		s3Client := awsclient.NewS3(awsCfg, AWSOptions(b.cfg))
		opts = append(opts, executor.WithArchiver(archive.NewS3Archiver(s3Client, b.cfg.LogArchiveBucket)))
	}

	return executor.NewRunner(b.Store, b.Store, crons, opts...), nil
}

// GitHub returns the OAuth client, or nil when GitHub login is not
// configured.
func GitHub(cfg *config.Config) core.GitHubAuthenticator {
	if cfg.GitHubClientID == "" {
		return nil
	}
	return core.NewGitHubClient(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubOAuthURL, cfg.GitHubAPIURL)
}
