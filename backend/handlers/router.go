// ABOUTME: Assembles the HTTP router from the route table and middleware stack
// ABOUTME: Applies logging, CORS, metrics and rate limiting per route

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/sparkcalc/sparkcalc/backend/config"
	"github.com/sparkcalc/sparkcalc/backend/middleware"
)

// rateLimitExempt lists routes served without a quota
var rateLimitExempt = map[string]bool{
	"health":  true,
	"openapi": true,
}

// NewRouter registers every route on a new ServeMux. Each route runs as
// LogRequest -> CORS -> Instrument -> RateLimit -> handler. A nil metrics
// disables instrumentation and the /metrics endpoint.
func NewRouter(h *Handler, cfg *config.Config, m *middleware.Metrics) *http.ServeMux {
	if cfg == nil {
		cfg = &config.Config{}
	}

	cors := middleware.CORSWithConfig(cfg.CORSAllowedOrigins)

	var limit middleware.Middleware
	if cfg.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
		limit = middleware.RateLimit(limiter, middleware.ClientIP)
		slog.Info("Rate limiting enabled", "requests", cfg.RateLimitRequests, "window", cfg.RateLimitWindow)
	}

	mux := http.NewServeMux()
	for _, route := range h.Routes() {
		routeLimit := limit
		if rateLimitExempt[route.Name] {
			routeLimit = nil
		}
		mux.HandleFunc(route.Pattern(), middleware.Chain(route.Handler,
			middleware.LogRequest,
			cors,
			m.Instrument(route.Name),
			routeLimit,
		))
	}

	// CORS preflight for every API path
	mux.HandleFunc("OPTIONS /api/", middleware.Chain(func(http.ResponseWriter, *http.Request) {}, cors))

	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}

	return mux
}
