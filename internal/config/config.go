package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Backends selectable through STORE_BACKEND and TRIGGER_BACKEND.
const (
	BackendDynamoDB    = "dynamodb"
	BackendPostgres    = "postgres"
	BackendMemory      = "memory"
	BackendEventBridge = "eventbridge"
	BackendTemporal    = "temporal"
)

type Config struct {
	ServiceName    string
	HTTPListenAddr string
	MetricsAddr    string
	LogLevel       string

	StoreBackend        string
	DDBTableName        string
	DDBTableNameCronLog string
	DynamoDBEndpoint    string
	DatabaseURL         string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	LogArchiveBucket   string
	S3Endpoint         string

	TriggerBackend     string
	SchedulerGroupName string
	RoleARN            string
	ExecuteCronARN     string

	TemporalAddress       string
	TemporalNamespace     string
	TemporalTaskQueue     string
	TemporalTLSCert       string
	TemporalTLSKey        string
	TemporalTLSCACert     string
	TemporalTLSServerName string

	GitHubClientID     string
	GitHubClientSecret string
	GitHubOAuthURL     string
	GitHubAPIURL       string

	CORSOrigins []string
	SessionTTL  time.Duration
}

func Load() (*Config, error) {
	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("parse SESSION_TTL: %w", err)
	}

	var origins []string
	for _, o := range strings.Split(getEnv("CORS_ORIGINS", "*"), ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	cfg := &Config{
		ServiceName:    getEnv("SERVICE_NAME", ""),
		HTTPListenAddr: getEnv("HTTP_LISTEN_ADDR", ":8080"),
		MetricsAddr:    getEnv("METRICS_ADDR", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		StoreBackend:        getEnv("STORE_BACKEND", BackendDynamoDB),
		DDBTableName:        getEnv("DDB_TABLE_NAME", ""),
		DDBTableNameCronLog: getEnv("DDB_TABLE_NAME_CRON_LOG", ""),
		DynamoDBEndpoint:    getEnv("DYNAMODB_ENDPOINT", ""),
		DatabaseURL:         getEnv("DATABASE_URL", ""),

		AWSRegion:          getEnv("AWS_REGION", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		LogArchiveBucket:   getEnv("LOG_ARCHIVE_BUCKET", ""),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),

		TriggerBackend:     getEnv("TRIGGER_BACKEND", BackendEventBridge),
		SchedulerGroupName: getEnv("SCHEDULER_GROUP_NAME", "default"),
		RoleARN:            getEnv("ROLE_ARN", ""),
		ExecuteCronARN:     getEnv("LAMBDA_EXECUTE_CRON_ARN", ""),

		TemporalAddress:       getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		TemporalNamespace:     getEnv("TEMPORAL_NAMESPACE", "default"),
		TemporalTaskQueue:     getEnv("TEMPORAL_TASK_QUEUE", "cron-tasks"),
		TemporalTLSCert:       getEnv("TEMPORAL_TLS_CERT", ""),
		TemporalTLSKey:        getEnv("TEMPORAL_TLS_KEY", ""),
		TemporalTLSCACert:     getEnv("TEMPORAL_TLS_CA_CERT", ""),
		TemporalTLSServerName: getEnv("TEMPORAL_TLS_SERVER_NAME", ""),

		GitHubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		GitHubOAuthURL:     getEnv("GITHUB_OAUTH_URL", ""),
		GitHubAPIURL:       getEnv("GITHUB_API_URL", ""),

		CORSOrigins: origins,
		SessionTTL:  ttl,
	}

	return cfg, nil
}

// Validate reports the settings the given binary needs but does not have.
// Roles: "cron-api", "cron-executor", "worker", "cronctl".
func (c *Config) Validate(role string) error {
	var missing []string
	require := func(key, value string) {
		if value == "" {
			missing = append(missing, key)
		}
	}

	switch c.StoreBackend {
	case BackendDynamoDB:
		require("DDB_TABLE_NAME", c.DDBTableName)
		require("DDB_TABLE_NAME_CRON_LOG", c.DDBTableNameCronLog)
	case BackendPostgres:
		require("DATABASE_URL", c.DatabaseURL)
	case BackendMemory:
		if role != "cron-api" {
			return fmt.Errorf("STORE_BACKEND %q is only supported by cron-api", c.StoreBackend)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	requireTrigger := func(backend string) error {
		switch backend {
		case BackendEventBridge:
			require("SCHEDULER_GROUP_NAME", c.SchedulerGroupName)
			require("ROLE_ARN", c.RoleARN)
			require("LAMBDA_EXECUTE_CRON_ARN", c.ExecuteCronARN)
		case BackendTemporal:
			require("TEMPORAL_ADDRESS", c.TemporalAddress)
			require("TEMPORAL_TASK_QUEUE", c.TemporalTaskQueue)
		case BackendMemory:
		default:
			return fmt.Errorf("unknown TRIGGER_BACKEND %q", backend)
		}
		return nil
	}

	switch role {
	case "cron-api":
		require("HTTP_LISTEN_ADDR", c.HTTPListenAddr)
		if err := requireTrigger(c.TriggerBackend); err != nil {
			return err
		}
	case "cron-executor":
		// The executor pauses EventBridge schedules of failing jobs.
		if err := requireTrigger(BackendEventBridge); err != nil {
			return err
		}
	case "worker":
		if err := requireTrigger(BackendTemporal); err != nil {
			return err
		}
	case "cronctl":
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if (c.TemporalTLSCert == "") != (c.TemporalTLSKey == "") {
		return fmt.Errorf("TEMPORAL_TLS_CERT and TEMPORAL_TLS_KEY must both be set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
