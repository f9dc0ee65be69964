package handler

import (
	"net/http"

	"github.com/edvin/cronhook/internal/api/request"
	"github.com/edvin/cronhook/internal/api/response"
	"github.com/edvin/cronhook/internal/core"
	"github.com/edvin/cronhook/internal/model"
)

type CronLog struct {
	crons *core.CronService
	logs  *core.LogService
}

func NewCronLog(crons *core.CronService, logs *core.LogService) *CronLog {
	return &CronLog{crons: crons, logs: logs}
}

type logListResponse struct {
	Cron   *model.CronJob              `json:"cron"`
	Logs   []model.ExecutionLogSummary `json:"logs"`
	Cursor string                      `json:"cursor,omitempty"`
}

type logDetailResponse struct {
	Cron *model.CronJob      `json:"cron"`
	Log  *model.ExecutionLog `json:"log"`
}

// List godoc
//
//	@Summary		List execution logs
//	@Description	Returns one page of the job's execution logs, newest first. Pass the returned cursor to fetch the next page.
//	@Tags			Cron Logs
//	@Security		BearerAuth
//	@Param			workspaceID path string true "Workspace ID"
//	@Param			cronID path string true "Cron job ID"
//	@Param			limit query int false "Page size" default(20)
//	@Param			cursor query string false "Pagination cursor"
//	@Success		200 {object} logListResponse
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		403 {object} response.ErrorResponse
//	@Failure		404 {object} response.ErrorResponse
//	@Router			/workspace/{workspaceID}/cron/{cronID}/logs [get]
func (h *CronLog) List(w http.ResponseWriter, r *http.Request) {
	job, ok := loadWorkspaceCron(w, r, h.crons)
	if !ok {
		return
	}

	pg, err := request.ParsePagination(r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.logs.ListLogs(r.Context(), job.ID, pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, logListResponse{Cron: job, Logs: page.Logs, Cursor: page.Cursor})
}

// Get godoc
//
//	@Summary		Get an execution log
//	@Tags			Cron Logs
//	@Security		BearerAuth
//	@Param			workspaceID path string true "Workspace ID"
//	@Param			cronID path string true "Cron job ID"
//	@Param			logID path string true "Log ID"
//	@Success		200 {object} logDetailResponse
//	@Failure		403 {object} response.ErrorResponse
//	@Failure		404 {object} response.ErrorResponse
//	@Router			/workspace/{workspaceID}/cron/{cronID}/logs/{logID} [get]
func (h *CronLog) Get(w http.ResponseWriter, r *http.Request) {
	job, ok := loadWorkspaceCron(w, r, h.crons)
	if !ok {
		return
	}
	logID, err := request.RequireParam(r, "logID")
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	l, err := h.logs.GetLog(r.Context(), job.ID, logID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, logDetailResponse{Cron: job, Log: l})
}
