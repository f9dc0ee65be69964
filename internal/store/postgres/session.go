package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/store"
)

const sessionColumns = `id, user_id, created_at, last_used_at, ip, user_agent, country, expire_at`

func (s *Store) CreateSession(ctx context.Context, session *model.Session) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		session.ID, session.UserID, session.CreatedAt, session.LastUsedAt,
		session.IP, session.UserAgent, session.Country, session.ExpireAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", mapError(err))
	}
	return nil
}

// GetSessionContext resolves session, user and membership with one query.
// Absent rows come back as NULL columns.
func (s *Store) GetSessionContext(ctx context.Context, token, userID, workspaceID string) (*store.SessionContext, error) {
	var (
		sessID, sessUser, ip, ua, country *string
		sessCreated, lastUsed, expireAt   *time.Time
		uID, uName, uPicture              *string
		uCreated, uUpdated                *time.Time
		mWorkspace, mName, mRole          *string
		mCreated, mUpdated                *time.Time
	)
	err := s.db.QueryRow(ctx,
		`SELECT s.id, s.user_id, s.created_at, s.last_used_at, s.ip, s.user_agent, s.country, s.expire_at,
		        u.id, u.name, u.picture, u.created_at, u.updated_at,
		        m.workspace_id, m.workspace_name, m.role, m.created_at, m.updated_at
		 FROM (SELECT 1) AS one
		 LEFT JOIN sessions s ON s.id = $1
		 LEFT JOIN users u ON u.id = $2
		 LEFT JOIN memberships m ON m.user_id = $2 AND m.workspace_id = $3 AND $3 <> ''`,
		token, userID, workspaceID,
	).Scan(&sessID, &sessUser, &sessCreated, &lastUsed, &ip, &ua, &country, &expireAt,
		&uID, &uName, &uPicture, &uCreated, &uUpdated,
		&mWorkspace, &mName, &mRole, &mCreated, &mUpdated)
	if err != nil {
		return nil, fmt.Errorf("get session context: %w", err)
	}

	sc := &store.SessionContext{}
	if sessID != nil {
		sc.Session = &model.Session{
			ID:         *sessID,
			UserID:     deref(sessUser),
			CreatedAt:  derefTime(sessCreated),
			LastUsedAt: derefTime(lastUsed),
			IP:         deref(ip),
			UserAgent:  deref(ua),
			Country:    deref(country),
			ExpireAt:   derefTime(expireAt),
		}
	}
	if uID != nil {
		sc.User = &model.User{
			ID:        *uID,
			Name:      deref(uName),
			Picture:   uPicture,
			CreatedAt: derefTime(uCreated),
			UpdatedAt: derefTime(uUpdated),
		}
	}
	if mWorkspace != nil {
		sc.Membership = &model.Membership{
			UserID:        userID,
			WorkspaceID:   *mWorkspace,
			WorkspaceName: deref(mName),
			Role:          deref(mRole),
			CreatedAt:     derefTime(mCreated),
			UpdatedAt:     derefTime(mUpdated),
		}
	}
	return sc, nil
}

func (s *Store) ListSessionsByUser(ctx context.Context, userID string) ([]model.Session, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions for user %s: %w", userID, err)
	}
	defer rows.Close()

	var out []model.Session
	for rows.Next() {
		var sess model.Session
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.LastUsedAt,
			&sess.IP, &sess.UserAgent, &sess.Country, &sess.ExpireAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefTime(p *time.Time) time.Time {
	if p == nil {
		return time.Time{}
	}
	return *p
}
