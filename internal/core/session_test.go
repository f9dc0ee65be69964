package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/store"
	"github.com/edvin/cronhook/internal/store/memory"
)

type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) CreateSession(ctx context.Context, session *model.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *mockSessionStore) GetSessionContext(ctx context.Context, token, userID, workspaceID string) (*store.SessionContext, error) {
	args := m.Called(ctx, token, userID, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.SessionContext), args.Error(1)
}

func (m *mockSessionStore) ListSessionsByUser(ctx context.Context, userID string) ([]model.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Session), args.Error(1)
}

func (m *mockSessionStore) DeleteSession(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

var sessionNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestSessionService(t *testing.T) (*SessionService, *memory.Store) {
	t.Helper()
	st := memory.New()
	require.NoError(t, st.CreateUser(context.Background(), &model.User{ID: "u1", Name: "Ada"}))
	require.NoError(t, st.CreateWorkspace(context.Background(),
		&model.Workspace{ID: "ws-1", Name: "Ada's workspace"},
		&model.Membership{UserID: "u1", WorkspaceID: "ws-1", Role: model.RoleOwner},
	))
	svc := NewSessionService(st, time.Hour)
	svc.now = fixedClock(sessionNow)
	return svc, st
}

// ---------- Create ----------

func TestSessionService_Create_TokenShape(t *testing.T) {
	svc, st := newTestSessionService(t)
	ctx := context.Background()

	token, err := svc.Create(ctx, "u1", model.SessionMeta{IP: "10.0.0.1", UserAgent: "curl/8", Country: "NO"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(token, "uz_u1."))
	secret := strings.TrimPrefix(token, "uz_u1.")
	assert.Len(t, secret, 32)
	for _, r := range secret {
		assert.True(t, (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'), "unexpected rune %q", r)
	}

	sessions, err := st.ListSessionsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "curl/8", sessions[0].UserAgent)
	assert.True(t, sessions[0].ExpireAt.Equal(sessionNow.Add(time.Hour)))
}

func TestSessionService_Create_Conflict(t *testing.T) {
	ms := &mockSessionStore{}
	ms.On("CreateSession", mock.Anything, mock.Anything).Return(store.ErrAlreadyExists)
	svc := NewSessionService(ms, 0)

	_, err := svc.Create(context.Background(), "u1", model.SessionMeta{})
	assert.Equal(t, KindConflict, KindOf(err))
}

// ---------- Validate ----------

func TestSessionService_Validate(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()
	token, err := svc.Create(ctx, "u1", model.SessionMeta{})
	require.NoError(t, err)

	p, err := svc.Validate(ctx, token, "")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "u1", p.User.ID)
	assert.Equal(t, token, p.SessionID)
	assert.Empty(t, p.Role)

	p, err = svc.Validate(ctx, token, "ws-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, model.RoleOwner, p.Role)

	p, err = svc.Validate(ctx, token, "ws-other")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSessionService_Validate_Expired(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()
	token, err := svc.Create(ctx, "u1", model.SessionMeta{})
	require.NoError(t, err)

	svc.now = fixedClock(sessionNow.Add(2 * time.Hour))
	p, err := svc.Validate(ctx, token, "")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSessionService_Validate_UnknownSession(t *testing.T) {
	svc, _ := newTestSessionService(t)
	p, err := svc.Validate(context.Background(), "uz_u1.doesnotexist", "")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSessionService_Validate_MissingUser(t *testing.T) {
	svc, st := newTestSessionService(t)
	ctx := context.Background()
	require.NoError(t, st.CreateSession(ctx, &model.Session{ID: "uz_ghost.abc", UserID: "ghost", ExpireAt: sessionNow.Add(time.Hour)}))

	p, err := svc.Validate(ctx, "uz_ghost.abc", "")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSessionService_Validate_MalformedTokenSkipsStore(t *testing.T) {
	ms := &mockSessionStore{}
	svc := NewSessionService(ms, 0)

	for _, token := range []string{"", "bearer", "uz_", "uz_u1", "uz_.abc", "uz_u1.", "xx_u1.abc"} {
		p, err := svc.Validate(context.Background(), token, "ws-1")
		require.NoError(t, err)
		assert.Nil(t, p, token)
	}
	ms.AssertNotCalled(t, "GetSessionContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionService_Validate_SingleBatchedRead(t *testing.T) {
	ms := &mockSessionStore{}
	ms.On("GetSessionContext", mock.Anything, "uz_u1.secret", "u1", "ws-1").Return(&store.SessionContext{
		Session:    &model.Session{ID: "uz_u1.secret", UserID: "u1", ExpireAt: time.Now().Add(time.Hour)},
		User:       &model.User{ID: "u1"},
		Membership: &model.Membership{Role: model.RoleOwner},
	}, nil).Once()
	svc := NewSessionService(ms, 0)

	p, err := svc.Validate(context.Background(), "uz_u1.secret", "ws-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	ms.AssertNumberOfCalls(t, "GetSessionContext", 1)
}

func TestSessionService_Validate_StoreError(t *testing.T) {
	ms := &mockSessionStore{}
	ms.On("GetSessionContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
	svc := NewSessionService(ms, 0)

	p, err := svc.Validate(context.Background(), "uz_u1.secret", "")
	assert.Nil(t, p)
	assert.Equal(t, KindInfrastructure, KindOf(err))
}

// ---------- List / Revoke ----------

func TestSessionService_ListAndRevoke(t *testing.T) {
	svc, _ := newTestSessionService(t)
	ctx := context.Background()
	first, err := svc.Create(ctx, "u1", model.SessionMeta{UserAgent: "a"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "u1", model.SessionMeta{UserAgent: "b"})
	require.NoError(t, err)

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first, list[0].ID)
	assert.Equal(t, "a", list[0].UserAgent)

	require.NoError(t, svc.Revoke(ctx, first))
	require.NoError(t, svc.Revoke(ctx, first))

	list, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	p, err := svc.Validate(ctx, first, "")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSessionService_RevokeBySuffix(t *testing.T) {
	svc, st := newTestSessionService(t)
	ctx := context.Background()
	for _, id := range []string{"uz_u1.aaaaaaaa123456789", "uz_u1.bbbbbbbb123456789", "uz_u1.cccccccc987654321"} {
		require.NoError(t, st.CreateSession(ctx, &model.Session{ID: id, UserID: "u1"}))
	}
	require.NoError(t, st.CreateSession(ctx, &model.Session{ID: "uz_u2.dddddddd123456789", UserID: "u2"}))

	n, err := svc.RevokeBySuffix(ctx, "u1", "123456789")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, err := st.ListSessionsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "uz_u1.cccccccc987654321", left[0].ID)

	other, err := st.ListSessionsByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, other, 1)

	n, err = svc.RevokeBySuffix(ctx, "u1", "nomatch")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSessionService_RevokeBySuffix_Empty(t *testing.T) {
	svc, _ := newTestSessionService(t)
	_, err := svc.RevokeBySuffix(context.Background(), "u1", "")
	assert.Equal(t, KindValidation, KindOf(err))
}
