package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	mw "github.com/edvin/cronhook/internal/api/middleware"
	"github.com/edvin/cronhook/internal/core"
	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/store/memory"
	triggermem "github.com/edvin/cronhook/internal/trigger/memory"
)

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParams adds chi URL parameters to the request context.
func withChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

// withUser injects an authenticated principal into the request context.
func withUser(r *http.Request, userID string) *http.Request {
	p := &core.Principal{User: model.User{ID: userID}, Role: model.RoleOwner}
	return r.WithContext(mw.WithPrincipal(r.Context(), p))
}

// testEnv is a set of services over in-memory backends with one registered
// user and their default workspace.
type testEnv struct {
	store       *memory.Store
	triggers    *triggermem.Registry
	svcs        *core.Services
	userID      string
	workspaceID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	st := memory.New()
	reg := triggermem.New()
	svcs := core.NewServices(st, reg, nil, 0)

	userID, err := svcs.Auth.Register(ctx, "Alice", "alice@example.com", "correct horse")
	require.NoError(t, err)
	ms, err := svcs.Workspace.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, ms, 1)

	return &testEnv{
		store:       st,
		triggers:    reg,
		svcs:        svcs,
		userID:      userID,
		workspaceID: ms[0].WorkspaceID,
	}
}

func validCronBody() map[string]any {
	return map[string]any{
		"name": "nightly",
		"schedule": map[string]any{
			"expression": "cron(0 3 * * ? *)",
		},
		"action": map[string]any{
			"type":   "fetch",
			"url":    "https://example.com/hook",
			"method": "POST",
		},
	}
}

// createCron creates a job in the env's workspace through the service.
func (e *testEnv) createCron(t *testing.T) *model.CronJob {
	t.Helper()
	job, err := e.svcs.Cron.Create(context.Background(), e.workspaceID, e.userID, model.CronSetting{
		Name:     "nightly",
		Schedule: model.CronSchedule{Type: "cron", Expression: "cron(0 3 * * ? *)"},
		Action:   model.CronAction{Type: "fetch", URL: "https://example.com/hook", Method: "POST"},
	})
	require.NoError(t, err)
	return job
}
