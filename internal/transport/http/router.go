// Package httptransport assembles the public HTTP surface. It holds no
// business logic; feature handlers mount their own routes.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slammedialab/vercel-siteid/internal/platform/middleware"
	"github.com/slammedialab/vercel-siteid/pkg/platform/httputil"
	"github.com/slammedialab/vercel-siteid/pkg/platform/middleware/metadata"
	"github.com/slammedialab/vercel-siteid/pkg/platform/middleware/requesttime"
)

// RouteRegistrar mounts a feature's routes.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// NewRouter wires the middleware chain, health and metrics endpoints, and
// every feature's routes. Unsupported methods get a bare 405.
func NewRouter(logger *slog.Logger, features ...RouteRegistrar) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS)

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	for _, f := range features {
		f.Register(r)
	}
	return r
}
