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
	"github.com/edvin/cronhook/internal/trigger"
)

func cronRequest(env *testEnv, method, cronID string, body any) *http.Request {
	r := newRequest(method, "/v1/workspace/"+env.workspaceID+"/cron/"+cronID, body)
	r = withChiURLParams(r, map[string]string{"workspaceID": env.workspaceID, "cronID": cronID})
	return withUser(r, env.userID)
}

// ---------- Create ----------

func TestCronJobCreate_Success(t *testing.T) {
	env := newTestEnv(t)
	h := NewCronJob(env.svcs.Cron)

	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/v1/workspace/"+env.workspaceID+"/cron", validCronBody())
	r = withChiURLParams(r, map[string]string{"workspaceID": env.workspaceID})
	h.Create(rec, withUser(r, env.userID))

	require.Equal(t, http.StatusCreated, rec.Code)
	var job model.CronJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, env.workspaceID, job.WorkspaceID)
	assert.Equal(t, env.userID, job.CreatedBy)
	assert.Equal(t, model.CronStatusEnabled, job.Status)
	assert.Equal(t, "cron", job.Setting.Schedule.Type)
	assert.Equal(t, 1, env.triggers.Len())
}

func TestCronJobCreate_InvalidExpression(t *testing.T) {
	env := newTestEnv(t)
	h := NewCronJob(env.svcs.Cron)

	body := validCronBody()
	body["schedule"] = map[string]any{"expression": "every day"}
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/v1/workspace/"+env.workspaceID+"/cron", body)
	r = withChiURLParams(r, map[string]string{"workspaceID": env.workspaceID})
	h.Create(rec, withUser(r, env.userID))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid cron expression", decodeErrorResponse(rec)["error"])
	assert.Equal(t, 0, env.triggers.Len())
}

func TestCronJobCreate_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)
	h := NewCronJob(env.svcs.Cron)

	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/v1/workspace/"+env.workspaceID+"/cron", validCronBody())
	h.Create(rec, withChiURLParams(r, map[string]string{"workspaceID": env.workspaceID}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ---------- List ----------

func TestCronJobList_Empty(t *testing.T) {
	env := newTestEnv(t)
	h := NewCronJob(env.svcs.Cron)

	rec := httptest.NewRecorder()
	r := newRequest(http.MethodGet, "/v1/workspace/"+env.workspaceID+"/cron", nil)
	h.List(rec, withChiURLParams(r, map[string]string{"workspaceID": env.workspaceID}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCronJobList_WithJobs(t *testing.T) {
	env := newTestEnv(t)
	env.createCron(t)
	env.createCron(t)
	h := NewCronJob(env.svcs.Cron)

	rec := httptest.NewRecorder()
	r := newRequest(http.MethodGet, "/v1/workspace/"+env.workspaceID+"/cron", nil)
	h.List(rec, withChiURLParams(r, map[string]string{"workspaceID": env.workspaceID}))

	require.Equal(t, http.StatusOK, rec.Code)
	var jobs []model.CronJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	assert.Len(t, jobs, 2)
}

// ---------- Get ----------

func TestCronJobGet_Success(t *testing.T) {
	env := newTestEnv(t)
	job := env.createCron(t)
	h := NewCronJob(env.svcs.Cron)

	rec := httptest.NewRecorder()
	h.Get(rec, cronRequest(env, http.MethodGet, job.ID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got model.CronJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, job.ID, got.ID)
}

func TestCronJobGet_NotFound(t *testing.T) {
	env := newTestEnv(t)
	h := NewCronJob(env.svcs.Cron)

	rec := httptest.NewRecorder()
	h.Get(rec, cronRequest(env, http.MethodGet, "404", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCronJobGet_OtherWorkspace(t *testing.T) {
	env := newTestEnv(t)
	job := env.createCron(t)
	h := NewCronJob(env.svcs.Cron)

	rec := httptest.NewRecorder()
	r := newRequest(http.MethodGet, "/v1/workspace/other/cron/"+job.ID, nil)
	r = withChiURLParams(r, map[string]string{"workspaceID": "other", "cronID": job.ID})
	h.Get(rec, withUser(r, env.userID))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "cron does not belong to this workspace", decodeErrorResponse(rec)["error"])
}

func TestCronJobGet_MissingID(t *testing.T) {
	env := newTestEnv(t)
	h := NewCronJob(env.svcs.Cron)

	rec := httptest.NewRecorder()
	h.Get(rec, cronRequest(env, http.MethodGet, "", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing cronID", decodeErrorResponse(rec)["error"])
}

// ---------- Update ----------

func TestCronJobUpdate_Success(t *testing.T) {
	env := newTestEnv(t)
	job := env.createCron(t)
	h := NewCronJob(env.svcs.Cron)

	body := validCronBody()
	body["name"] = "hourly"
	body["schedule"] = map[string]any{"expression": "cron(0 * * * ? *)"}
	rec := httptest.NewRecorder()
	h.Update(rec, cronRequest(env, http.MethodPost, job.ID, body))

	require.Equal(t, http.StatusOK, rec.Code)
	var got model.CronJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "hourly", got.Name)

	tr, err := env.triggers.Get(context.Background(), job.TriggerID)
	require.NoError(t, err)
	assert.Equal(t, "cron(0 * * * ? *)", tr.Expression)
}

func TestCronJobUpdate_InvalidBody(t *testing.T) {
	env := newTestEnv(t)
	job := env.createCron(t)
	h := NewCronJob(env.svcs.Cron)

	body := validCronBody()
	body["action"] = map[string]any{"type": "fetch", "url": "/relative", "method": "GET"}
	rec := httptest.NewRecorder()
	h.Update(rec, cronRequest(env, http.MethodPut, job.ID, body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid url", decodeErrorResponse(rec)["error"])
}

// ---------- Delete ----------

func TestCronJobDelete(t *testing.T) {
	env := newTestEnv(t)
	job := env.createCron(t)
	h := NewCronJob(env.svcs.Cron)

	rec := httptest.NewRecorder()
	h.Delete(rec, cronRequest(env, http.MethodDelete, job.ID, nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, env.triggers.Len())

	rec = httptest.NewRecorder()
	h.Get(rec, cronRequest(env, http.MethodGet, job.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---------- Enable / Disable ----------

func TestCronJobDisableThenEnable(t *testing.T) {
	env := newTestEnv(t)
	job := env.createCron(t)
	h := NewCronJob(env.svcs.Cron)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	h.Disable(rec, cronRequest(env, http.MethodPost, job.ID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got model.CronJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, model.CronStatusDisabled, got.Status)
	tr, err := env.triggers.Get(ctx, job.TriggerID)
	require.NoError(t, err)
	assert.Equal(t, trigger.StateDisabled, tr.State)

	rec = httptest.NewRecorder()
	h.Enable(rec, cronRequest(env, http.MethodPost, job.ID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, model.CronStatusEnabled, got.Status)
	assert.Equal(t, 0, got.FailedCount)
	tr, err = env.triggers.Get(ctx, job.TriggerID)
	require.NoError(t, err)
	assert.Equal(t, trigger.StateEnabled, tr.State)
}

func TestCronJobEnable_RecreatesMissingTrigger(t *testing.T) {
	env := newTestEnv(t)
	job := env.createCron(t)
	require.NoError(t, env.triggers.Delete(context.Background(), job.TriggerID))
	h := NewCronJob(env.svcs.Cron)

	rec := httptest.NewRecorder()
	h.Enable(rec, cronRequest(env, http.MethodPost, job.ID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.triggers.Len())
}
