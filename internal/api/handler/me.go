package handler

import (
	"net/http"

	"github.com/edvin/cronhook/internal/api/response"
	"github.com/edvin/cronhook/internal/core"
	"github.com/edvin/cronhook/internal/model"
)

type Me struct {
	workspaces *core.WorkspaceService
}

func NewMe(workspaces *core.WorkspaceService) *Me {
	return &Me{workspaces: workspaces}
}

type meResponse struct {
	model.User
	Workspaces []model.Membership `json:"workspaces"`
}

// Get returns the caller's profile and workspace memberships.
//
//	@Summary		Get current user
//	@Tags			Profile
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200 {object} meResponse
//	@Failure		401 {object} response.ErrorResponse
//	@Router			/me [get]
func (h *Me) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	memberships, err := h.workspaces.ListByUser(r.Context(), p.User.ID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, meResponse{User: p.User, Workspaces: memberships})
}
