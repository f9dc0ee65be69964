package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- Login ----------

func TestAuthLogin_Email(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuth(env.svcs.Auth, env.svcs.Session)

	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/v1/auth", map[string]any{
		"type":     "email",
		"email":    "Alice@Example.com",
		"password": "correct horse",
	})
	h.Login(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Token, "uz_"+env.userID+"."))
}

func TestAuthLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuth(env.svcs.Auth, env.svcs.Session)

	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/v1/auth", map[string]any{
		"type":     "email",
		"email":    "alice@example.com",
		"password": "wrong password",
	})
	h.Login(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", decodeErrorResponse(rec)["error"])
}

func TestAuthLogin_GitHubNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuth(env.svcs.Auth, env.svcs.Session)

	rec := httptest.NewRecorder()
	h.Login(rec, newRequest(http.MethodPost, "/v1/auth", map[string]any{"type": "github", "code": "abc"}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthLogin_UnknownType(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuth(env.svcs.Auth, env.svcs.Session)

	rec := httptest.NewRecorder()
	h.Login(rec, newRequest(http.MethodPost, "/v1/auth", map[string]any{"type": "saml"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "validation error")
}

func TestAuthLogin_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuth(env.svcs.Auth, env.svcs.Session)

	rec := httptest.NewRecorder()
	h.Login(rec, newRequestRaw(http.MethodPost, "/v1/auth", "{"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErrorResponse(rec)["error"], "invalid JSON")
}

// ---------- Register ----------

func TestAuthRegister_Success(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuth(env.svcs.Auth, env.svcs.Session)

	rec := httptest.NewRecorder()
	h.Register(rec, newRequest(http.MethodPost, "/v1/auth/register", map[string]any{
		"name":     "Bob",
		"email":    "bob@example.com",
		"password": "hunter2hunter2",
	}))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestAuthRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuth(env.svcs.Auth, env.svcs.Session)

	rec := httptest.NewRecorder()
	h.Register(rec, newRequest(http.MethodPost, "/v1/auth/register", map[string]any{
		"name":     "Alice again",
		"email":    "alice@example.com",
		"password": "another password",
	}))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "email already registered", decodeErrorResponse(rec)["error"])
}

func TestAuthRegister_ShortPassword(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuth(env.svcs.Auth, env.svcs.Session)

	rec := httptest.NewRecorder()
	h.Register(rec, newRequest(http.MethodPost, "/v1/auth/register", map[string]any{
		"name":     "Bob",
		"email":    "bob@example.com",
		"password": "short",
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password must be at least 8 characters", decodeErrorResponse(rec)["error"])
}
