package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/platform"
	"github.com/edvin/cronhook/internal/store"
)

// WorkspaceMember is a user together with their role in a workspace.
type WorkspaceMember struct {
	User model.User `json:"user"`
	Role string     `json:"role"`
}

type WorkspaceService struct {
	store store.IdentityStore
	now   func() time.Time
}

func NewWorkspaceService(s store.IdentityStore) *WorkspaceService {
	return &WorkspaceService{store: s, now: time.Now}
}

// Create makes a new workspace owned by userID.
func (s *WorkspaceService) Create(ctx context.Context, userID, name string) (*model.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationError("workspace name is required")
	}

	now := s.now().UTC()
	ws := &model.Workspace{
		ID:        platform.NewNumericID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	owner := &model.Membership{
		UserID:        userID,
		WorkspaceID:   ws.ID,
		WorkspaceName: name,
		Role:          model.RoleOwner,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreateWorkspace(ctx, ws, owner); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ConflictError("workspace already exists", err)
		}
		return nil, InfrastructureError("failed to create workspace", err)
	}
	return ws, nil
}

// ListByUser returns the memberships of userID.
func (s *WorkspaceService) ListByUser(ctx context.Context, userID string) ([]model.Membership, error) {
	ms, err := s.store.ListMembershipsByUser(ctx, userID)
	if err != nil {
		return nil, InfrastructureError("failed to list workspaces", err)
	}
	if ms == nil {
		ms = []model.Membership{}
	}
	return ms, nil
}

// ListMembers resolves every member of the workspace to a user profile.
// Members whose profile no longer exists are skipped.
func (s *WorkspaceService) ListMembers(ctx context.Context, workspaceID string) ([]WorkspaceMember, error) {
	ms, err := s.store.ListMembershipsByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, InfrastructureError("failed to list members", err)
	}

	users := make([]*model.User, len(ms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(10)
	for i, m := range ms {
		g.Go(func() error {
			u, err := s.store.GetUser(gctx, m.UserID)
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("get user %s: %w", m.UserID, err)
			}
			users[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, InfrastructureError("failed to list members", err)
	}

	out := make([]WorkspaceMember, 0, len(ms))
	for i, m := range ms {
		if users[i] == nil {
			continue
		}
		out = append(out, WorkspaceMember{User: *users[i], Role: m.Role})
	}
	return out, nil
}
