package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bastionworks/bastion/internal/gate"
	"github.com/bastionworks/bastion/internal/grants"
	"github.com/bastionworks/bastion/internal/observability"
	"github.com/bastionworks/bastion/internal/platform/httpx"
	"github.com/bastionworks/bastion/internal/projects"
	"github.com/bastionworks/bastion/internal/users"
)

// PublicPaths lists the endpoints the gate lets through without a token.
func PublicPaths() []string {
	return []string{"/ping", "/healthz", "/user", "/metrics"}
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Gate            gate.Middleware
	UsersHandler    *users.Handler
	ProjectsHandler *projects.Handler
	GrantsHandler   *grants.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Gate:    params.Gate,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	r.MethodNotAllowed(httpx.MethodNotAllowed)

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"message": "app-is-online"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/user", params.UsersHandler.MountRoutes)
	r.Route("/project", func(r chi.Router) {
		params.ProjectsHandler.MountRoutes(r)
		params.GrantsHandler.MountRoutes(r)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
