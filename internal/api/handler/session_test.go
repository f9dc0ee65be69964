package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/cronhook/internal/model"
)

// ---------- List ----------

func TestSessionList_RevealsSuffixOnly(t *testing.T) {
	env := newTestEnv(t)
	token, err := env.svcs.Session.Create(context.Background(), env.userID, model.SessionMeta{UserAgent: "curl/8.0"})
	require.NoError(t, err)
	h := NewSession(env.svcs.Session)

	rec := httptest.NewRecorder()
	h.List(rec, withUser(newRequest(http.MethodGet, "/v1/auth/sessions", nil), env.userID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), token)

	var items []sessionItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, token[len(token)-9:], items[0].SessionSuffix)
	assert.Equal(t, "curl/8.0", items[0].UserAgent)
}

func TestSessionList_Unauthenticated(t *testing.T) {
	h := NewSession(newTestEnv(t).svcs.Session)

	rec := httptest.NewRecorder()
	h.List(rec, newRequest(http.MethodGet, "/v1/auth/sessions", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ---------- Revoke ----------

func TestSessionRevoke_ByID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	token, err := env.svcs.Session.Create(ctx, env.userID, model.SessionMeta{})
	require.NoError(t, err)
	h := NewSession(env.svcs.Session)

	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/v1/auth/revoke", map[string]string{"session_id": token})
	h.Revoke(rec, withUser(r, env.userID))

	require.Equal(t, http.StatusOK, rec.Code)
	p, err := env.svcs.Session.Validate(ctx, token, "")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSessionRevoke_OtherUsersSession(t *testing.T) {
	env := newTestEnv(t)
	h := NewSession(env.svcs.Session)

	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/v1/auth/revoke", map[string]string{"session_id": "uz_someoneelse.secret"})
	h.Revoke(rec, withUser(r, env.userID))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "session does not belong to this user", decodeErrorResponse(rec)["error"])
}

func TestSessionRevoke_BySuffix(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	token, err := env.svcs.Session.Create(ctx, env.userID, model.SessionMeta{})
	require.NoError(t, err)
	h := NewSession(env.svcs.Session)

	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/v1/auth/revoke", map[string]string{"session_suffix": token[len(token)-9:]})
	h.Revoke(rec, withUser(r, env.userID))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp revokeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Revoked)

	sessions, err := env.svcs.Session.List(ctx, env.userID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSessionRevoke_NothingNamed(t *testing.T) {
	env := newTestEnv(t)
	h := NewSession(env.svcs.Session)

	rec := httptest.NewRecorder()
	h.Revoke(rec, withUser(newRequest(http.MethodPost, "/v1/auth/revoke", map[string]string{}), env.userID))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "session_id or session_suffix is required", decodeErrorResponse(rec)["error"])
}

func TestSuffix(t *testing.T) {
	assert.Equal(t, "abc", suffix("abc", 9))
	assert.Equal(t, "456789abc", suffix("0123456789abc", 9))
}
