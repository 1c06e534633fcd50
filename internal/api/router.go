package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// WebSocket (auth via ticket, validated in handler)
		r.Get("/ws", s.handleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/ws-ticket", s.handleWSTicket)

			r.Get("/circuits", s.handleListCircuits)
			r.Get("/circuits/{id}", s.handleGetCircuit)

			r.Get("/active", s.handleGetActive)
			r.Put("/active", s.handleSetActive)

			r.Route("/instances", func(r chi.Router) {
				r.Get("/", s.handleListInstances)
				r.Post("/restart-all", s.handleRestartAll)
				r.Post("/deactivate-all", s.handleDeactivateAll)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetInstance)
					r.Post("/skip", s.handleSkipStep)
					r.Post("/complete", s.handleComplete)
					r.Post("/deactivate", s.handleDeactivate)
					r.Post("/restart", s.handleRestart)
					r.Put("/players", s.handleAssignInstancePlayers)
				})
			})

			r.Route("/outcomes", func(r chi.Router) {
				r.Get("/", s.handleListOutcomes)
				r.Get("/{id}", s.handleGetOutcome)
				r.Put("/{id}/players", s.handleAssignOutcomePlayers)
			})

			r.Route("/players", func(r chi.Router) {
				r.Get("/", s.handleListPlayers)
				r.Put("/", s.handleReplacePlayers)
				r.Post("/", s.handleAddPlayer)
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   s.version,
		"instances": len(s.engine.Instances()),
		"clients":   s.hub.ClientCount(),
	})
}
