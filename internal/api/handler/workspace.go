package handler

import (
	"net/http"

	"github.com/edvin/cronhook/internal/api/request"
	"github.com/edvin/cronhook/internal/api/response"
	"github.com/edvin/cronhook/internal/core"
)

type Workspace struct {
	svc *core.WorkspaceService
}

func NewWorkspace(svc *core.WorkspaceService) *Workspace {
	return &Workspace{svc: svc}
}

// Create makes a workspace owned by the caller.
//
//	@Summary		Create a workspace
//	@Tags			Workspaces
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body body request.CreateWorkspace true "Workspace details"
//	@Success		201 {object} model.Workspace
//	@Failure		400 {object} response.ErrorResponse
//	@Router			/workspace [post]
func (h *Workspace) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req request.CreateWorkspace
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ws, err := h.svc.Create(r.Context(), p.User.ID, req.Name)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, ws)
}

// ListUsers returns the members of a workspace.
//
//	@Summary		List workspace members
//	@Tags			Workspaces
//	@Security		BearerAuth
//	@Produce		json
//	@Param			workspaceID path string true "Workspace ID"
//	@Success		200 {array} core.WorkspaceMember
//	@Failure		401 {object} response.ErrorResponse
//	@Router			/workspace/{workspaceID}/users [get]
func (h *Workspace) ListUsers(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := request.RequireParam(r, "workspaceID")
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	members, err := h.svc.ListMembers(r.Context(), workspaceID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, members)
}
