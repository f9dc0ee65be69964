package postgres

import (
	"context"
	"fmt"

	"github.com/edvin/cronhook/internal/model"
)

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO users (id, name, picture, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Name, user.Picture, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user %s: %w", user.ID, mapError(err))
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.db.QueryRow(ctx,
		`SELECT id, name, picture, created_at, updated_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Picture, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, mapError(err))
	}
	return &u, nil
}

func (s *Store) CreateAuthIdentity(ctx context.Context, identity *model.AuthIdentity) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO auth_identities (provider, subject, user_id, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		identity.Provider, identity.Subject, identity.UserID, identity.PasswordHash, identity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert %s identity: %w", identity.Provider, mapError(err))
	}
	return nil
}

func (s *Store) GetAuthIdentity(ctx context.Context, provider, subject string) (*model.AuthIdentity, error) {
	var a model.AuthIdentity
	err := s.db.QueryRow(ctx,
		`SELECT provider, subject, user_id, password_hash, created_at
		 FROM auth_identities WHERE provider = $1 AND subject = $2`, provider, subject,
	).Scan(&a.Provider, &a.Subject, &a.UserID, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get %s identity: %w", provider, mapError(err))
	}
	return &a, nil
}

// CreateWorkspace inserts the workspace and its owner membership in a
// single statement so both rows commit together.
func (s *Store) CreateWorkspace(ctx context.Context, workspace *model.Workspace, owner *model.Membership) error {
	_, err := s.db.Exec(ctx,
		`WITH ws AS (
		   INSERT INTO workspaces (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)
		   RETURNING id, name
		 )
		 INSERT INTO memberships (user_id, workspace_id, workspace_name, role, created_at, updated_at)
		 SELECT $5, ws.id, ws.name, $6, $7, $8 FROM ws`,
		workspace.ID, workspace.Name, workspace.CreatedAt, workspace.UpdatedAt,
		owner.UserID, owner.Role, owner.CreatedAt, owner.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create workspace %s: %w", workspace.ID, mapError(err))
	}
	return nil
}

func (s *Store) ListMembershipsByUser(ctx context.Context, userID string) ([]model.Membership, error) {
	return s.listMemberships(ctx, `WHERE user_id = $1 ORDER BY created_at, workspace_id`, userID)
}

func (s *Store) ListMembershipsByWorkspace(ctx context.Context, workspaceID string) ([]model.Membership, error) {
	return s.listMemberships(ctx, `WHERE workspace_id = $1 ORDER BY created_at, user_id`, workspaceID)
}

func (s *Store) listMemberships(ctx context.Context, where string, arg string) ([]model.Membership, error) {
	rows, err := s.db.Query(ctx,
		`SELECT user_id, workspace_id, workspace_name, role, created_at, updated_at FROM memberships `+where, arg)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var out []model.Membership
	for rows.Next() {
		var m model.Membership
		if err := rows.Scan(&m.UserID, &m.WorkspaceID, &m.WorkspaceName, &m.Role, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return out, nil
}
