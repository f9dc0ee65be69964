package handler

import (
	"net/http"

	"github.com/edvin/cronhook/internal/api/request"
	"github.com/edvin/cronhook/internal/api/response"
	"github.com/edvin/cronhook/internal/core"
	"github.com/edvin/cronhook/internal/model"
)

type CronJob struct {
	svc *core.CronService
}

func NewCronJob(svc *core.CronService) *CronJob {
	return &CronJob{svc: svc}
}

// List godoc
//
//	@Summary		List cron jobs
//	@Description	Returns every cron job of the workspace.
//	@Tags			Cron Jobs
//	@Security		BearerAuth
//	@Param			workspaceID path string true "Workspace ID"
//	@Success		200 {array} model.CronJob
//	@Failure		401 {object} response.ErrorResponse
//	@Failure		500 {object} response.ErrorResponse
//	@Router			/workspace/{workspaceID}/cron [get]
func (h *CronJob) List(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := request.RequireParam(r, "workspaceID")
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobs, err := h.svc.List(r.Context(), workspaceID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, jobs)
}

// Create godoc
//
//	@Summary		Create a cron job
//	@Description	Validates the definition, registers the schedule trigger and stores the job. Nothing is left behind when any step fails.
//	@Tags			Cron Jobs
//	@Security		BearerAuth
//	@Param			workspaceID path string true "Workspace ID"
//	@Param			body body request.CronJob true "Cron job definition"
//	@Success		201 {object} model.CronJob
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		401 {object} response.ErrorResponse
//	@Failure		500 {object} response.ErrorResponse
//	@Router			/workspace/{workspaceID}/cron [post]
func (h *CronJob) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	workspaceID, err := request.RequireParam(r, "workspaceID")
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.CronJob
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.svc.Create(r.Context(), workspaceID, p.User.ID, req.Setting())
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, job)
}

// Get godoc
//
//	@Summary		Get a cron job
//	@Tags			Cron Jobs
//	@Security		BearerAuth
//	@Param			workspaceID path string true "Workspace ID"
//	@Param			cronID path string true "Cron job ID"
//	@Success		200 {object} model.CronJob
//	@Failure		403 {object} response.ErrorResponse
//	@Failure		404 {object} response.ErrorResponse
//	@Router			/workspace/{workspaceID}/cron/{cronID} [get]
func (h *CronJob) Get(w http.ResponseWriter, r *http.Request) {
	job, ok := loadWorkspaceCron(w, r, h.svc)
	if !ok {
		return
	}
	response.WriteJSON(w, http.StatusOK, job)
}

// Update godoc
//
//	@Summary		Update a cron job
//	@Description	Replaces the definition. A disabled job stays disabled.
//	@Tags			Cron Jobs
//	@Security		BearerAuth
//	@Param			workspaceID path string true "Workspace ID"
//	@Param			cronID path string true "Cron job ID"
//	@Param			body body request.CronJob true "Cron job definition"
//	@Success		200 {object} model.CronJob
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		403 {object} response.ErrorResponse
//	@Failure		404 {object} response.ErrorResponse
//	@Router			/workspace/{workspaceID}/cron/{cronID} [put]
func (h *CronJob) Update(w http.ResponseWriter, r *http.Request) {
	job, ok := loadWorkspaceCron(w, r, h.svc)
	if !ok {
		return
	}

	var req request.CronJob
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.svc.Update(r.Context(), job, req.Setting())
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, updated)
}

// Delete godoc
//
//	@Summary		Delete a cron job
//	@Tags			Cron Jobs
//	@Security		BearerAuth
//	@Param			workspaceID path string true "Workspace ID"
//	@Param			cronID path string true "Cron job ID"
//	@Success		204
//	@Failure		403 {object} response.ErrorResponse
//	@Failure		404 {object} response.ErrorResponse
//	@Router			/workspace/{workspaceID}/cron/{cronID} [delete]
func (h *CronJob) Delete(w http.ResponseWriter, r *http.Request) {
	job, ok := loadWorkspaceCron(w, r, h.svc)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), job); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Enable godoc
//
//	@Summary		Enable a cron job
//	@Description	Resumes the schedule and resets the failure counter.
//	@Tags			Cron Jobs
//	@Security		BearerAuth
//	@Param			workspaceID path string true "Workspace ID"
//	@Param			cronID path string true "Cron job ID"
//	@Success		200 {object} model.CronJob
//	@Failure		403 {object} response.ErrorResponse
//	@Failure		404 {object} response.ErrorResponse
//	@Router			/workspace/{workspaceID}/cron/{cronID}/enable [post]
func (h *CronJob) Enable(w http.ResponseWriter, r *http.Request) {
	job, ok := loadWorkspaceCron(w, r, h.svc)
	if !ok {
		return
	}

	if err := h.svc.Enable(r.Context(), job); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	h.writeCurrent(w, r, job.ID)
}

// Disable godoc
//
//	@Summary		Disable a cron job
//	@Tags			Cron Jobs
//	@Security		BearerAuth
//	@Param			workspaceID path string true "Workspace ID"
//	@Param			cronID path string true "Cron job ID"
//	@Success		200 {object} model.CronJob
//	@Failure		403 {object} response.ErrorResponse
//	@Failure		404 {object} response.ErrorResponse
//	@Router			/workspace/{workspaceID}/cron/{cronID}/disable [post]
func (h *CronJob) Disable(w http.ResponseWriter, r *http.Request) {
	job, ok := loadWorkspaceCron(w, r, h.svc)
	if !ok {
		return
	}

	if err := h.svc.Disable(r.Context(), job, model.CronStatusDisabled); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	h.writeCurrent(w, r, job.ID)
}

func (h *CronJob) writeCurrent(w http.ResponseWriter, r *http.Request, id string) {
	job, err := h.svc.Get(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, job)
}
