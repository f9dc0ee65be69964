package core

import (
	"time"

	"github.com/edvin/cronhook/internal/store"
	"github.com/edvin/cronhook/internal/trigger"
)

type Services struct {
	Session   *SessionService
	Cron      *CronService
	Log       *LogService
	Auth      *AuthService
	User      *UserService
	Workspace *WorkspaceService
}

// NewServices wires every service against one store and trigger registry.
// github may be nil when GitHub sign in is not configured.
func NewServices(s store.Store, r trigger.Registry, github GitHubAuthenticator, sessionTTL time.Duration) *Services {
	workspaces := NewWorkspaceService(s)
	return &Services{
		Session:   NewSessionService(s, sessionTTL),
		Cron:      NewCronService(s, r),
		Log:       NewLogService(s),
		Auth:      NewAuthService(s, workspaces, github),
		User:      NewUserService(s),
		Workspace: workspaces,
	}
}
