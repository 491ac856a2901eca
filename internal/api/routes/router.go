package routes

import (
	"net/http"

	"github.com/zatekoja/mindcare/internal/api/handlers"
	"github.com/zatekoja/mindcare/internal/api/middleware"
	"github.com/zatekoja/mindcare/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	recommendationHandler *handlers.RecommendationHandler
	healthHandler         *handlers.HealthHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	recommendationHandler *handlers.RecommendationHandler,
	healthHandler *handlers.HealthHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                   http.NewServeMux(),
		recommendationHandler: recommendationHandler,
		healthHandler:         healthHandler,
		allowedOrigins:        allowedOrigins,
		metrics:               metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", r.healthHandler.GetHealth)

	// Recommendation endpoints
	r.mux.HandleFunc("GET /api/recommendations", r.recommendationHandler.GetRecommendations)
	r.mux.HandleFunc("POST /api/recommendations", r.recommendationHandler.PostRecommendations)

	// Center endpoints
	r.mux.HandleFunc("GET /api/centers/{id}/operating-status", r.recommendationHandler.GetOperatingStatus)

	// Observability sits directly on the mux so the matched pattern is visible to it.
	// CORS wraps everything so preflights never reach the handlers.
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
