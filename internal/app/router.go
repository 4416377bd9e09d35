package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	journalhttp "github.com/statement-workbench/statement-workbench/internal/journal/http"
	mapperhttp "github.com/statement-workbench/statement-workbench/internal/mapper/http"
	"github.com/statement-workbench/statement-workbench/internal/observability"
	"github.com/statement-workbench/statement-workbench/internal/platform/httpx"
	statementhttp "github.com/statement-workbench/statement-workbench/internal/statement/http"
	"github.com/statement-workbench/statement-workbench/internal/workspace"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Store            *workspace.Store
	Metrics          *observability.Metrics
	MapperHandler    *mapperhttp.Handler
	StatementHandler *statementhttp.Handler
	JournalHandler   *journalhttp.Handler
}

// NewRouter constructs the chi.Router with workbench defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}
	r.Use(params.Metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	limiter := httprate.LimitByIP(params.Config.RateLimitRequests, params.Config.RateLimitWindow)

	r.Route("/workspaces", func(r chi.Router) {
		r.Post("/", func(w http.ResponseWriter, req *http.Request) {
			id := params.Store.Create()
			params.Logger.Info("workspace created", slog.String("workspace", id))
			httpx.JSON(w, http.StatusCreated, map[string]string{"id": id})
		})
		r.Route("/{workspaceID}", func(r chi.Router) {
			r.Delete("/", func(w http.ResponseWriter, req *http.Request) {
				params.Store.Delete(chi.URLParam(req, "workspaceID"))
				w.WriteHeader(http.StatusNoContent)
			})
			r.Group(func(r chi.Router) {
				r.Use(limiter)
				params.MapperHandler.MountRoutes(r)
				params.JournalHandler.MountRoutes(r)
			})
			params.StatementHandler.MountRoutes(r)
		})
	})

	return r
}
