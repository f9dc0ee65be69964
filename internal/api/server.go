package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/cronhook/internal/api/docs"
	"github.com/edvin/cronhook/internal/api/handler"
	mw "github.com/edvin/cronhook/internal/api/middleware"
	"github.com/edvin/cronhook/internal/config"
	"github.com/edvin/cronhook/internal/core"
)

// ReadinessCheck reports whether a backend the API depends on is reachable.
type ReadinessCheck func(ctx context.Context) error

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	cfg      *config.Config
	checks   map[string]ReadinessCheck
}

func NewServer(logger zerolog.Logger, services *core.Services, cfg *config.Config, checks map[string]ReadinessCheck) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: services,
		cfg:      cfg,
		checks:   checks,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(chimw.Recoverer)
	s.router.Use(mw.Metrics)
	s.router.Use(mw.CORS(s.cfg.CORSOrigins))
}

func (s *Server) setupRoutes() {
	// Prometheus metrics
	s.router.Handle("/metrics", promhttp.Handler())

	// Health checks
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	// OpenAPI spec and docs (public, no auth)
	s.router.Route("/docs", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(scalarHTML))
		})
		r.Get("/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(docs.SwaggerInfo.ReadDoc()))
		})
	})

	auth := handler.NewAuth(s.services.Auth, s.services.Session)
	sessions := handler.NewSession(s.services.Session)
	me := handler.NewMe(s.services.Workspace)
	workspace := handler.NewWorkspace(s.services.Workspace)
	cronJob := handler.NewCronJob(s.services.Cron)
	cronLog := handler.NewCronLog(s.services.Cron, s.services.Log)
	stats := handler.NewStats(s.services.Log)

	s.router.Route("/v1", func(r chi.Router) {
		// Public
		r.Post("/auth", auth.Login)
		r.Post("/auth/register", auth.Register)
		r.Get("/stats/cron", stats.Cron)

		// Any valid session
		r.Group(func(r chi.Router) {
			r.Use(mw.Session(s.services.Session))

			r.Get("/auth/sessions", sessions.List)
			r.Post("/auth/revoke", sessions.Revoke)
			r.Get("/me", me.Get)
			r.Post("/workspace", workspace.Create)
		})

		// Session with membership in {workspaceID}
		r.Route("/workspace/{workspaceID}", func(r chi.Router) {
			r.Use(mw.WorkspaceSession(s.services.Session, "workspaceID"))

			r.Get("/users", workspace.ListUsers)

			r.Get("/cron", cronJob.List)
			r.Post("/cron", cronJob.Create)
			r.Route("/cron/{cronID}", func(r chi.Router) {
				r.Get("/", cronJob.Get)
				r.Post("/", cronJob.Update)
				r.Put("/", cronJob.Update)
				r.Delete("/", cronJob.Delete)
				r.Post("/enable", cronJob.Enable)
				r.Post("/disable", cronJob.Disable)
				r.Get("/logs", cronLog.List)
				r.Get("/logs/{logID}", cronLog.Get)
			})
		})
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	results := map[string]string{}
	healthy := true

	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			healthy = false
		} else {
			results[name] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(results)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

const scalarHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Cronhook API</title>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
</head>
<body>
  <script id="api-reference" data-url="/docs/openapi.json"></script>
  <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`
