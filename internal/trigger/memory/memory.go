// Package memory is an in-process trigger.Registry. It records definitions
// only; nothing fires.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/edvin/cronhook/internal/trigger"
)

type Registry struct {
	mu       sync.Mutex
	triggers map[string]trigger.Trigger
}

var _ trigger.Registry = (*Registry)(nil)

func New() *Registry {
	return &Registry{triggers: make(map[string]trigger.Trigger)}
}

func (r *Registry) Create(_ context.Context, t trigger.Trigger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.triggers[t.Name]; ok {
		return fmt.Errorf("create trigger %s: %w", t.Name, trigger.ErrAlreadyExists)
	}
	r.triggers[t.Name] = t
	return nil
}

func (r *Registry) Update(_ context.Context, t trigger.Trigger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.triggers[t.Name]; !ok {
		return fmt.Errorf("update trigger %s: %w", t.Name, trigger.ErrNotFound)
	}
	r.triggers[t.Name] = t
	return nil
}

func (r *Registry) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.triggers[name]; !ok {
		return fmt.Errorf("delete trigger %s: %w", name, trigger.ErrNotFound)
	}
	delete(r.triggers, name)
	return nil
}

func (r *Registry) Get(_ context.Context, name string) (*trigger.Trigger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.triggers[name]
	if !ok {
		return nil, fmt.Errorf("get trigger %s: %w", name, trigger.ErrNotFound)
	}
	return &t, nil
}

// Len returns the number of registered triggers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.triggers)
}
