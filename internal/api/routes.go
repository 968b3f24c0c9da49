package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"self-healing-kernel/internal/health"
)

// NewRouter builds the admin HTTP surface. logger may be nil.
func NewRouter(h *Handler, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)

	// Subsystem APIs
	r.Route("/subsystems", func(r chi.Router) {
		r.Get("/", h.ListSubsystems)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetSubsystem)
			r.Post("/crash", h.Operation(health.OpCrash))
			r.Post("/heal", h.Operation(health.OpHeal))
			r.Post("/restart", h.Operation(health.OpRestart))
		})
	})

	// Observability APIs
	r.Get("/health", h.GetHealth)
	r.Handle("/metrics", h.metricsHandler)
	r.Get("/logs/{mode}", h.GetLogs)

	return Chain(
		r,
		middleware.RequestID,
		LoggingMiddleware(logger),
		RecoveryMiddleware(logger),
	)
}
