// Package api provides the HTTP REST API and live stream endpoints for
// IoT Home Core.
//
// It exposes the device registry (devices, sensors, actuators), actuator
// command dispatch, and per-device live event streams over SSE and
// WebSocket to user interfaces.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/iothome/core/internal/device"
	"github.com/iothome/core/internal/event"
	"github.com/iothome/core/internal/gateway"
	"github.com/iothome/core/internal/infrastructure/config"
	"github.com/iothome/core/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// HealthChecker reports whether a dependency is usable.
// Satisfied by *database.DB and *mqtt.Client.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Logger    *logging.Logger
	Repo      device.Repository
	Hub       *event.Hub
	Publisher *gateway.Publisher
	DB        HealthChecker // optional, reported by /health
	Broker    HealthChecker // optional, reported by /health
	Version   string
}

// Server is the HTTP API server for IoT Home Core.
//
// It manages the HTTP listener, routes and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	repo      device.Repository
	hub       *event.Hub
	publisher *gateway.Publisher
	db        HealthChecker
	broker    HealthChecker
	version   string
	server    *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Repo == nil {
		return nil, fmt.Errorf("device repository is required")
	}
	if deps.Hub == nil {
		return nil, fmt.Errorf("event hub is required")
	}
	// Publisher is optional: actuator commands fail with 503 without it,
	// but reads and streams still function.

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		repo:      deps.Repo,
		hub:       deps.Hub,
		publisher: deps.Publisher,
		db:        deps.DB,
		broker:    deps.Broker,
		version:   deps.Version,
	}, nil
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
