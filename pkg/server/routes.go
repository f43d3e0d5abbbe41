package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.recoveryMiddleware)
	r.Use(requestIDMiddleware)
	r.Use(s.tracingMiddleware)
	r.Use(s.loggingMiddleware)
	if s.config.WriteTimeout > 0 {
		r.Use(chimw.Timeout(s.config.WriteTimeout))
	}

	r.Get("/health", s.health.LivenessHandler())
	r.Head("/health", s.health.LivenessHandler())
	r.Get("/ready", s.health.ReadinessHandler())
	r.Head("/ready", s.health.ReadinessHandler())
	if s.metrics != nil {
		r.Handle(s.metricsPath, s.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(chimw.AllowContentType("application/json"))

		r.Post("/estimate", s.handleEstimate)
		r.Post("/compare", s.cached("compare", s.handleCompare))
		r.Post("/batch", s.handleBatch)
		r.Post("/quote", s.cached("quote", s.handleQuote))
		r.Post("/equivalents", s.cached("equivalents", s.handleEquivalents))
		r.Get("/models", s.cached("models", s.handleModels))
		r.Get("/history", s.handleHistory)
		r.Get("/history/summary", s.handleHistorySummary)
		r.Get("/history/export", s.handleHistoryExport)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errorTypeNotFound, "no route for "+r.Method+" "+r.URL.Path, "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, errorTypeInvalidRequest, "method "+r.Method+" not allowed", "")
	})

	return r
}
