// Package store defines the persistence boundary for cron jobs, execution
// logs, sessions and identities. Backends live in the dynamo, postgres and
// memory subpackages.
package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/platform"
)

var (
	ErrNotFound      = errors.New("item not found")
	ErrAlreadyExists = errors.New("item already exists")
	ErrInvalidCursor = errors.New("invalid cursor")
)

// CronStore persists cron job records.
type CronStore interface {
	// CreateCron inserts job, failing with ErrAlreadyExists if the id is taken.
	CreateCron(ctx context.Context, job *model.CronJob) error
	GetCron(ctx context.Context, id string) (*model.CronJob, error)
	ListCronsByWorkspace(ctx context.Context, workspaceID string) ([]model.CronJob, error)
	// UpdateCronDefinition replaces the setting, name, description and updated_at of an existing job.
	UpdateCronDefinition(ctx context.Context, id string, setting model.CronSetting, updatedAt time.Time) error
	UpdateCronStatus(ctx context.Context, id, status string, resetFailedCount bool) error
	// IncrementFailedCount atomically adds one to the job's failure counter.
	IncrementFailedCount(ctx context.Context, id string) error
	ResetFailedCount(ctx context.Context, id string) error
	DeleteCron(ctx context.Context, id string) error
}

// LogStore persists execution logs and daily summaries.
type LogStore interface {
	PutExecutionLog(ctx context.Context, log *model.ExecutionLog) error
	// IncrementDailySummary atomically adds to the counters of the given day.
	IncrementDailySummary(ctx context.Context, date string, success, failed int64) error
	// ListExecutionLogs returns up to limit logs newest first, starting after
	// the opaque cursor. The returned cursor is empty when no rows remain.
	ListExecutionLogs(ctx context.Context, jobID string, limit int, cursor string) (*model.LogPage, error)
	GetExecutionLog(ctx context.Context, jobID, logID string) (*model.ExecutionLog, error)
	// ListDailySummaries returns summaries with start <= date <= end in date order.
	ListDailySummaries(ctx context.Context, start, end string) ([]model.DailySummary, error)
}

// SessionContext is the result of the batched session lookup. Fields are
// nil when the corresponding record does not exist.
type SessionContext struct {
	Session    *model.Session
	User       *model.User
	Membership *model.Membership
}

// SessionStore persists sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *model.Session) error
	// GetSessionContext reads the session, the user profile and, if
	// workspaceID is not empty, the user's membership in one round trip.
	GetSessionContext(ctx context.Context, token, userID, workspaceID string) (*SessionContext, error)
	ListSessionsByUser(ctx context.Context, userID string) ([]model.Session, error)
	// DeleteSession succeeds when the session does not exist.
	DeleteSession(ctx context.Context, token string) error
}

// IdentityStore persists users, login identities and workspaces.
type IdentityStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	CreateAuthIdentity(ctx context.Context, identity *model.AuthIdentity) error
	GetAuthIdentity(ctx context.Context, provider, subject string) (*model.AuthIdentity, error)
	// CreateWorkspace writes the workspace and the owner membership atomically.
	CreateWorkspace(ctx context.Context, workspace *model.Workspace, owner *model.Membership) error
	ListMembershipsByUser(ctx context.Context, userID string) ([]model.Membership, error)
	ListMembershipsByWorkspace(ctx context.Context, workspaceID string) ([]model.Membership, error)
}

// Store is implemented by every backend.
type Store interface {
	CronStore
	LogStore
	SessionStore
	IdentityStore
}

// LogID formats an execution start time as a sortable log id.
func LogID(startedAt time.Time) string {
	return fmt.Sprintf("%013d", startedAt.UnixMilli())
}

// NewLogID returns LogID(startedAt) with a random suffix, so duplicate ticks
// in the same millisecond get distinct ids and still sort by start time.
func NewLogID(startedAt time.Time) string {
	return LogID(startedAt) + "-" + platform.NewSuffix()
}

// EncodeCursor wraps a backend position into an opaque cursor.
func EncodeCursor(position string) string {
	if position == "" {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(position))
}

// DecodeCursor reverses EncodeCursor. An empty cursor decodes to "".
func DecodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil || len(b) == 0 {
		return "", ErrInvalidCursor
	}
	return string(b), nil
}
