package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nerrad567/gray-logic-av/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(middleware.RequestSize(maxRequestBodySize))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	// Prometheus scrape endpoint
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		// No auth: health and basic monitoring
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		// WebSocket authenticates with a ticket, validated in the handler
		r.Get("/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// Read-only
			r.Group(func(r chi.Router) {
				r.Use(s.requirePermission(auth.PermRouteRead))

				r.Post("/auth/ws-ticket", s.handleWSTicket)
				r.Get("/sources", s.handleListSources)
				r.Get("/destinations", s.handleListDestinations)
				r.Get("/routers", s.handleListRouters)
				r.Get("/routers/{id}/status", s.handleGetRouterStatus)
				r.Get("/routes", s.handleListRoutes)
				r.Get("/routes/{destination}", s.handleGetRoute)
				r.Get("/topology", s.handleGetTopology)
				r.Get("/presets", s.handleListPresets)
				r.Get("/presets/{id}", s.handleGetPreset)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.requirePermission(auth.PermRouteOperate))

				r.Post("/routes", s.handleMakeRoute)
				r.Post("/routes/all", s.handleRouteToAll)
				r.Post("/presets/{id}/recall", s.handleRecallPreset)
			})

			r.With(s.requirePermission(auth.PermDestinationLock)).
				Put("/destinations/{id}/lock", s.handleLockDestination)
			r.With(s.requirePermission(auth.PermPresetManage)).
				Put("/presets/{id}/enabled", s.handleSetPresetEnabled)
			r.With(s.requirePermission(auth.PermAuditRead)).
				Get("/audit", s.handleListAuditLogs)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
