package handler

import (
	"net/http"
	"time"

	"github.com/edvin/cronhook/internal/api/request"
	"github.com/edvin/cronhook/internal/api/response"
	"github.com/edvin/cronhook/internal/core"
	"github.com/edvin/cronhook/internal/model"
)

type Session struct {
	svc *core.SessionService
}

func NewSession(svc *core.SessionService) *Session {
	return &Session{svc: svc}
}

type sessionItem struct {
	SessionSuffix string    `json:"session_suffix"`
	CreatedAt     time.Time `json:"created_at"`
	LastUsedAt    time.Time `json:"last_used_at"`
	UserAgent     string    `json:"user_agent"`
}

// List returns the caller's sessions. Only the tail of each session id is
// shown.
//
//	@Summary		List sessions
//	@Tags			Sessions
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200 {array} sessionItem
//	@Failure		401 {object} response.ErrorResponse
//	@Router			/auth/sessions [get]
func (h *Session) List(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	sessions, err := h.svc.List(r.Context(), p.User.ID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	items := make([]sessionItem, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, sessionItem{
			SessionSuffix: suffix(s.ID, sessionSuffixLength),
			CreatedAt:     s.CreatedAt,
			LastUsedAt:    s.LastUsedAt,
			UserAgent:     s.UserAgent,
		})
	}
	response.WriteJSON(w, http.StatusOK, items)
}

type revokeResponse struct {
	Revoked int `json:"revoked"`
}

// Revoke ends one of the caller's sessions, named either by full id or by
// suffix. A suffix revokes every matching session.
//
//	@Summary		Revoke sessions
//	@Tags			Sessions
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body body request.RevokeSession true "Session to revoke"
//	@Success		200 {object} revokeResponse
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		403 {object} response.ErrorResponse
//	@Router			/auth/revoke [post]
func (h *Session) Revoke(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req request.RevokeSession
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch {
	case req.SessionID != "":
		if owner, ok := model.SessionUserID(req.SessionID); !ok || owner != p.User.ID {
			response.WriteError(w, http.StatusForbidden, "session does not belong to this user")
			return
		}
		if err := h.svc.Revoke(r.Context(), req.SessionID); err != nil {
			response.WriteServiceError(w, r, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, revokeResponse{Revoked: 1})
	case req.SessionSuffix != "":
		n, err := h.svc.RevokeBySuffix(r.Context(), p.User.ID, req.SessionSuffix)
		if err != nil {
			response.WriteServiceError(w, r, err)
			return
		}
		response.WriteJSON(w, http.StatusOK, revokeResponse{Revoked: n})
	default:
		response.WriteError(w, http.StatusBadRequest, "session_id or session_suffix is required")
	}
}

func suffix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
