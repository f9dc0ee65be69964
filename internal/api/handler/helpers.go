package handler

import (
	"net/http"

	mw "github.com/edvin/cronhook/internal/api/middleware"
	"github.com/edvin/cronhook/internal/api/request"
	"github.com/edvin/cronhook/internal/api/response"
	"github.com/edvin/cronhook/internal/core"
	"github.com/edvin/cronhook/internal/model"
)

// sessionSuffixLength is how much of a session id the session list reveals.
const sessionSuffixLength = 9

// requirePrincipal returns the authenticated caller or writes a 401.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (*core.Principal, bool) {
	p := mw.GetPrincipal(r.Context())
	if p == nil {
		response.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return p, true
}

// sessionMeta describes the client of r. RealIP has already resolved the
// remote address.
func sessionMeta(r *http.Request) model.SessionMeta {
	return model.SessionMeta{
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
		Country:   r.Header.Get("CloudFront-Viewer-Country-Name"),
	}
}

// loadWorkspaceCron reads the workspace and cron URL parameters and returns
// the job if it belongs to the workspace. It writes the error response
// otherwise.
func loadWorkspaceCron(w http.ResponseWriter, r *http.Request, svc *core.CronService) (*model.CronJob, bool) {
	workspaceID, err := request.RequireParam(r, "workspaceID")
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	cronID, err := request.RequireParam(r, "cronID")
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	job, err := svc.GetForWorkspace(r.Context(), workspaceID, cronID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return nil, false
	}
	return job, true
}
