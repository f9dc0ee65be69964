package core

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/store"
	"github.com/edvin/cronhook/internal/trigger"
)

// ---------- Mock Registry ----------

// mockRegistry implements trigger.Registry for testing.
type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) Create(ctx context.Context, t trigger.Trigger) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockRegistry) Update(ctx context.Context, t trigger.Trigger) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockRegistry) Delete(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *mockRegistry) Get(ctx context.Context, name string) (*trigger.Trigger, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trigger.Trigger), args.Error(1)
}

// ---------- Mock CronStore ----------

// mockCronStore implements store.CronStore for testing.
type mockCronStore struct {
	mock.Mock
}

func (m *mockCronStore) CreateCron(ctx context.Context, job *model.CronJob) error {
	return m.Called(ctx, job).Error(0)
}

func (m *mockCronStore) GetCron(ctx context.Context, id string) (*model.CronJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CronJob), args.Error(1)
}

func (m *mockCronStore) ListCronsByWorkspace(ctx context.Context, workspaceID string) ([]model.CronJob, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CronJob), args.Error(1)
}

func (m *mockCronStore) UpdateCronDefinition(ctx context.Context, id string, setting model.CronSetting, updatedAt time.Time) error {
	return m.Called(ctx, id, setting, updatedAt).Error(0)
}

func (m *mockCronStore) UpdateCronStatus(ctx context.Context, id, status string, resetFailedCount bool) error {
	return m.Called(ctx, id, status, resetFailedCount).Error(0)
}

func (m *mockCronStore) IncrementFailedCount(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCronStore) ResetFailedCount(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCronStore) DeleteCron(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

var _ store.CronStore = (*mockCronStore)(nil)

// ---------- Mock GitHub ----------

type mockGitHub struct {
	mock.Mock
}

func (m *mockGitHub) ExchangeCode(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *mockGitHub) FetchUser(ctx context.Context, accessToken string) (*GitHubUser, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*GitHubUser), args.Error(1)
}

// ---------- Fixtures ----------

func validSetting() model.CronSetting {
	return model.CronSetting{
		Name:        "nightly ping",
		Description: "pings the health endpoint",
		Schedule:    model.CronSchedule{Type: "cron", Expression: "cron(0 12 * * ? *)"},
		Action: model.CronAction{
			Type:    "fetch",
			URL:     "https://example.com/health",
			Method:  "GET",
			Headers: map[string]string{"X-Token": "abc"},
		},
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
