// IoT Home Core - device registry and control gateway.
//
// This is the main entry point for the IoT Home Core application: an
// MQTT-driven backend that registers home IoT devices, tracks their
// sensor and actuator state, and exposes the registry plus live state
// streams over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/iothome/core/migrations"

	"github.com/iothome/core/internal/api"
	"github.com/iothome/core/internal/device"
	"github.com/iothome/core/internal/event"
	"github.com/iothome/core/internal/gateway"
	"github.com/iothome/core/internal/infrastructure/config"
	"github.com/iothome/core/internal/infrastructure/database"
	"github.com/iothome/core/internal/infrastructure/logging"
	"github.com/iothome/core/internal/infrastructure/mqtt"
	"github.com/iothome/core/internal/infrastructure/tsdb"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// startupHealthTimeout bounds the post-init health verification.
const startupHealthTimeout = 5 * time.Second

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting IoT Home Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration. Broker host and credentials are hard requirements;
	// Load fails fast when they are missing.
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database and run migrations
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations complete")

	repo := device.NewSQLiteRepository(db.DB)

	// Live event hub between the MQTT pipeline and stream clients
	hub := event.NewHub(cfg.Stream.QueueCapacity, log.Logger)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional telemetry sink)
	var telemetry *tsdb.Writer
	if cfg.InfluxDB.Enabled {
		telemetry, err = tsdb.Connect(cfg.InfluxDB, log.Logger)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			telemetry.Close()
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start the device gateway: registration/update pipeline
	publisher := gateway.NewPublisher(mqttClient, repo)
	listener := gateway.NewListener(mqttClient, repo, hub, publisher, telemetryOrNil(telemetry), log.Logger)
	if err := listener.Start(ctx); err != nil {
		return fmt.Errorf("starting device gateway: %w", err)
	}

	// Start the HTTP API
	server, err := api.New(api.Deps{
		Config:    cfg.API,
		Logger:    log,
		Repo:      repo,
		Hub:       hub,
		Publisher: publisher,
		DB:        db,
		Broker:    mqttClient,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT
	// 4. Database

	log.Info("IoT Home Core stopped")
	return nil
}

// telemetryOrNil avoids handing the listener a typed nil interface value.
func telemetryOrNil(w *tsdb.Writer) gateway.StatePublisher {
	if w == nil {
		return nil
	}
	return w
}

// getConfigPath returns the configuration file path.
// Uses IOTHOME_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("IOTHOME_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, checkers ...api.HealthChecker) error {
	ctx, cancel := context.WithTimeout(ctx, startupHealthTimeout)
	defer cancel()

	for _, c := range checkers {
		if c == nil {
			continue
		}
		if err := c.HealthCheck(ctx); err != nil {
			return err
		}
	}
	return nil
}
