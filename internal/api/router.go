package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Strategist/internal/session"
	"github.com/MikeSquared-Agency/Strategist/internal/store"
)

func NewRouter(e *session.Evaluator, history store.Store, csvHeader, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(120))

	evals := NewEvaluationsHandler(e, history, csvHeader, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/criteria", evals.Criteria)
		r.Post("/evaluations", evals.Create)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Get("/evaluations", evals.List)
			r.Get("/evaluations/{pair}/export.csv", evals.Export)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
