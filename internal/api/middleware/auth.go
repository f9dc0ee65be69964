package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/edvin/cronhook/internal/api/response"
	"github.com/edvin/cronhook/internal/core"
)

type contextKey string

const principalKey contextKey = "principal"

// SessionValidator resolves a bearer token. Implemented by core.SessionService.
type SessionValidator interface {
	Validate(ctx context.Context, token, workspaceID string) (*core.Principal, error)
}

// Session returns middleware that requires a valid session token.
func Session(sessions SessionValidator) func(http.Handler) http.Handler {
	return authenticate(sessions, "")
}

// WorkspaceSession returns middleware that requires a valid session whose
// user is a member of the workspace named by the URL parameter param.
func WorkspaceSession(sessions SessionValidator, param string) func(http.Handler) http.Handler {
	return authenticate(sessions, param)
}

func authenticate(sessions SessionValidator, workspaceParam string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				response.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			var workspaceID string
			if workspaceParam != "" {
				workspaceID = chi.URLParam(r, workspaceParam)
				if workspaceID == "" {
					response.WriteError(w, http.StatusBadRequest, "missing workspace ID")
					return
				}
			}

			principal, err := sessions.Validate(r.Context(), token, workspaceID)
			if err != nil {
				response.WriteServiceError(w, r, err)
				return
			}
			if principal == nil {
				response.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("user_id", principal.User.ID)
			})
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// bearerToken returns the token of an "Authorization: Bearer ..." header.
func bearerToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// WithPrincipal stores the authenticated principal in ctx.
func WithPrincipal(ctx context.Context, p *core.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal returns the authenticated principal, or nil.
func GetPrincipal(ctx context.Context) *core.Principal {
	p, _ := ctx.Value(principalKey).(*core.Principal)
	return p
}
