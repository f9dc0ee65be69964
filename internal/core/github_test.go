package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitHubClient_ExchangeAndFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client", r.PostForm.Get("client_id"))
		assert.Equal(t, "secret", r.PostForm.Get("client_secret"))
		if r.PostForm.Get("code") != "good" {
			w.Write([]byte(`{"error":"bad_verification_code"}`))
			return
		}
		w.Write([]byte(`{"access_token":"gho_abc","token_type":"bearer"}`))
	})
	mux.HandleFunc("/api/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gho_abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"id":42,"login":"octocat","name":"The Octocat","avatar_url":"https://a/42"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewGitHubClient("client", "secret", srv.URL+"/login/oauth/", srv.URL+"/api")
	ctx := context.Background()

	token, err := c.ExchangeCode(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "gho_abc", token)

	u, err := c.FetchUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), u.ID)
	assert.Equal(t, "octocat", u.Login)

	_, err = c.ExchangeCode(ctx, "bad")
	assert.ErrorContains(t, err, "bad_verification_code")

	_, err = c.FetchUser(ctx, "wrong")
	assert.ErrorContains(t, err, "returned 401")
}

func TestNewGitHubClient_Defaults(t *testing.T) {
	c := NewGitHubClient("id", "secret", "", "")
	assert.Equal(t, DefaultGitHubOAuthURL, c.oauthURL)
	assert.Equal(t, DefaultGitHubAPIURL, c.apiURL)
}
