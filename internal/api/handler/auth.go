package handler

import (
	"net/http"

	"github.com/edvin/cronhook/internal/api/request"
	"github.com/edvin/cronhook/internal/api/response"
	"github.com/edvin/cronhook/internal/core"
)

type Auth struct {
	auth     *core.AuthService
	sessions *core.SessionService
}

func NewAuth(auth *core.AuthService, sessions *core.SessionService) *Auth {
	return &Auth{auth: auth, sessions: sessions}
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login authenticates a user and opens a session.
//
//	@Summary		Sign in
//	@Description	Sign in with email and password or with a GitHub OAuth code. Returns a session token for the Authorization header.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			body body request.Login true "Credentials"
//	@Success		200 {object} tokenResponse
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		401 {object} response.ErrorResponse
//	@Router			/auth [post]
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req request.Login
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		userID string
		err    error
	)
	switch req.Type {
	case "email":
		userID, err = h.auth.LoginEmail(r.Context(), req.Email, req.Password)
	case "github":
		userID, err = h.auth.LoginGitHub(r.Context(), req.Code)
	}
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	h.writeSession(w, r, http.StatusOK, userID)
}

// Register creates an email account with a default workspace and opens a
// session.
//
//	@Summary		Register
//	@Description	Create an account with email and password. A workspace owned by the new user is created as well.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			body body request.Register true "Account details"
//	@Success		201 {object} tokenResponse
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		409 {object} response.ErrorResponse
//	@Router			/auth/register [post]
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req request.Register
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	h.writeSession(w, r, http.StatusCreated, userID)
}

func (h *Auth) writeSession(w http.ResponseWriter, r *http.Request, status int, userID string) {
	token, err := h.sessions.Create(r.Context(), userID, sessionMeta(r))
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, status, tokenResponse{Token: token})
}
