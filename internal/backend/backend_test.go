package backend

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/cronhook/internal/config"
	"github.com/edvin/cronhook/internal/core"
	"github.com/edvin/cronhook/internal/store/dynamo"
	"github.com/edvin/cronhook/internal/store/memory"
	"github.com/edvin/cronhook/internal/trigger/eventbridge"
	triggermem "github.com/edvin/cronhook/internal/trigger/memory"
)

func awsTestConfig(storeBackend string) *config.Config {
	return &config.Config{
		StoreBackend:        storeBackend,
		DDBTableName:        "cron",
		DDBTableNameCronLog: "cron-log",
		AWSRegion:           "eu-west-1",
		AWSAccessKeyID:      "AKIDEXAMPLE",
		AWSSecretAccessKey:  "secret",
		SchedulerGroupName:  "default",
		RoleARN:             "arn:aws:iam::1:role/scheduler",
		ExecuteCronARN:      "arn:aws:lambda:eu-west-1:1:function:exec",
	}
}

func TestOpen_Memory(t *testing.T) {
	b, err := Open(context.Background(), &config.Config{StoreBackend: config.BackendMemory})
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &memory.Store{}, b.Store)
	assert.Nil(t, b.Postgres)
	assert.NoError(t, b.Ping(context.Background()))
}

func TestOpen_DynamoDB(t *testing.T) {
	b, err := Open(context.Background(), awsTestConfig(config.BackendDynamoDB))
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &dynamo.Store{}, b.Store)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StoreBackend: "redis"})
	assert.EqualError(t, err, `unknown store backend "redis"`)
}

func TestTriggers(t *testing.T) {
	ctx := context.Background()
	b, err := Open(ctx, awsTestConfig(config.BackendMemory))
	require.NoError(t, err)

	reg, err := b.Triggers(ctx, config.BackendMemory, nil)
	require.NoError(t, err)
	assert.IsType(t, &triggermem.Registry{}, reg)

	reg, err = b.Triggers(ctx, config.BackendEventBridge, nil)
	require.NoError(t, err)
	assert.IsType(t, &eventbridge.Registry{}, reg)

	_, err = b.Triggers(ctx, config.BackendTemporal, nil)
	assert.Error(t, err)

	_, err = b.Triggers(ctx, "cron", nil)
	assert.Error(t, err)
}

func TestRunner_WithArchive(t *testing.T) {
	ctx := context.Background()
	cfg := awsTestConfig(config.BackendMemory)
	cfg.LogArchiveBucket = "cron-logs"
	b, err := Open(ctx, cfg)
	require.NoError(t, err)

	svcs := b.Services(triggermem.New())
	runner, err := b.Runner(ctx, svcs.Cron, prometheus.NewRegistry())
	require.NoError(t, err)
	assert.NotNil(t, runner)
}

func TestGitHub(t *testing.T) {
	assert.Nil(t, GitHub(&config.Config{}))

	gh := GitHub(&config.Config{GitHubClientID: "id", GitHubClientSecret: "secret"})
	assert.IsType(t, &core.GitHubClient{}, gh)
}

func TestAWSOptions(t *testing.T) {
	opts := AWSOptions(&config.Config{AWSRegion: "us-east-1", DynamoDBEndpoint: "http://localhost:8000", S3Endpoint: "http://minio:9000"})
	assert.Equal(t, "us-east-1", opts.Region)
	assert.Equal(t, "http://localhost:8000", opts.DynamoDBEndpoint)
	assert.Equal(t, "http://minio:9000", opts.S3Endpoint)
}
