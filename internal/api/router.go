package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthProbeTimeout bounds dependency checks in the health handler.
const healthProbeTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)

			r.Route("/{code}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Patch("/", s.handleUpdateDevice)

				// Live streams
				r.Get("/sse", s.handleSSE)
				r.Get("/ws", s.handleWebSocket)

				r.Route("/sensors", func(r chi.Router) {
					r.Get("/", s.handleListSensors)
					r.Get("/{id}", s.handleGetSensor)
					r.Patch("/{id}", s.handleUpdateSensor)
				})

				r.Route("/actuators", func(r chi.Router) {
					r.Get("/", s.handleListActuators)
					r.Get("/{id}", s.handleGetActuator)
					r.Patch("/{id}", s.handleUpdateActuator)
					r.Post("/{id}/action", s.handleActuatorAction)
				})
			})
		})
	})

	return r
}

// handleHealth returns the server health status including dependency probes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	resp := map[string]any{
		"status":  "ok",
		"version": s.version,
	}

	deps := map[string]HealthChecker{
		"database": s.db,
		"mqtt":     s.broker,
	}
	for name, checker := range deps {
		if checker == nil {
			continue
		}
		if err := checker.HealthCheck(ctx); err != nil {
			resp["status"] = "degraded"
			resp[name] = err.Error()
		} else {
			resp[name] = "ok"
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
