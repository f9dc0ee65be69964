// Package trigger defines the registry of named cron triggers that fire the
// execution runner. Backends: EventBridge Scheduler, Temporal schedules and
// an in-memory registry.
package trigger

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("trigger not found")
	ErrAlreadyExists = errors.New("trigger already exists")
)

type State string

const (
	StateEnabled  State = "ENABLED"
	StateDisabled State = "DISABLED"
)

// Payload is delivered to the runner on every firing.
type Payload struct {
	CronID string `json:"cronId"`
}

// Target identifies what a trigger invokes. An empty ID means the registry's
// configured default target.
type Target struct {
	ID      string
	Payload Payload
}

type Trigger struct {
	Name        string
	Expression  string
	Description string
	State       State
	Target      Target
}

// Registry manages triggers. Update replaces the full definition.
type Registry interface {
	Create(ctx context.Context, t Trigger) error
	Update(ctx context.Context, t Trigger) error
	Delete(ctx context.Context, name string) error
	Get(ctx context.Context, name string) (*Trigger, error)
}
