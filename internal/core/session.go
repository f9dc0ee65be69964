package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/platform"
	"github.com/edvin/cronhook/internal/store"
)

// DefaultSessionTTL is used when the service is built with a zero TTL.
const DefaultSessionTTL = 24 * time.Hour

// Principal is the authenticated caller. Role is empty when the session was
// validated without a workspace scope.
type Principal struct {
	User      model.User
	Role      string
	SessionID string
}

type SessionService struct {
	store store.SessionStore
	ttl   time.Duration
	now   func() time.Time
}

func NewSessionService(s store.SessionStore, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{store: s, ttl: ttl, now: time.Now}
}

// Create issues a new session token for userID.
func (s *SessionService) Create(ctx context.Context, userID string, meta model.SessionMeta) (string, error) {
	now := s.now().UTC()
	session := &model.Session{
		ID:         model.SessionPrefix + userID + "." + platform.NewSessionSecret(),
		UserID:     userID,
		CreatedAt:  now,
		LastUsedAt: now,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
		Country:    meta.Country,
		ExpireAt:   now.Add(s.ttl),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return "", ConflictError("session already exists", err)
		}
		return "", InfrastructureError("failed to create session", err)
	}
	return session.ID, nil
}

// Validate resolves token to a principal. When workspaceID is not empty the
// user must also be a member of that workspace. A nil principal with a nil
// error means the caller is not authenticated; the reason is not exposed.
func (s *SessionService) Validate(ctx context.Context, token, workspaceID string) (*Principal, error) {
	userID, ok := model.SessionUserID(token)
	if !ok {
		return nil, nil
	}

	sc, err := s.store.GetSessionContext(ctx, token, userID, workspaceID)
	if err != nil {
		return nil, InfrastructureError("failed to validate session", err)
	}
	if sc.Session == nil || sc.User == nil {
		return nil, nil
	}
	if sc.Session.UserID != userID || !sc.Session.ExpireAt.After(s.now()) {
		return nil, nil
	}

	p := &Principal{User: *sc.User, SessionID: token}
	if workspaceID != "" {
		if sc.Membership == nil {
			return nil, nil
		}
		p.Role = sc.Membership.Role
	}
	return p, nil
}

// List returns the user's sessions in store order.
func (s *SessionService) List(ctx context.Context, userID string) ([]model.SessionSummary, error) {
	sessions, err := s.store.ListSessionsByUser(ctx, userID)
	if err != nil {
		return nil, InfrastructureError("failed to list sessions", err)
	}
	out := make([]model.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, model.SessionSummary{
			ID:         sess.ID,
			CreatedAt:  sess.CreatedAt,
			LastUsedAt: sess.LastUsedAt,
			UserAgent:  sess.UserAgent,
		})
	}
	return out, nil
}

// Revoke deletes the session. Revoking an unknown session succeeds.
func (s *SessionService) Revoke(ctx context.Context, id string) error {
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return InfrastructureError("failed to revoke session", err)
	}
	return nil
}

// RevokeBySuffix deletes every session of userID whose id ends with suffix
// and returns how many were deleted.
func (s *SessionService) RevokeBySuffix(ctx context.Context, userID, suffix string) (int, error) {
	if suffix == "" {
		return 0, ValidationError("session suffix is required")
	}
	sessions, err := s.store.ListSessionsByUser(ctx, userID)
	if err != nil {
		return 0, InfrastructureError("failed to list sessions", err)
	}

	var matched []string
	for _, sess := range sessions {
		if strings.HasSuffix(sess.ID, suffix) {
			matched = append(matched, sess.ID)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range matched {
		g.Go(func() error {
			return s.store.DeleteSession(gctx, id)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, InfrastructureError("failed to revoke session", err)
	}
	return len(matched), nil
}
