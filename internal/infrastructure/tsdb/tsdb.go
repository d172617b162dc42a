package tsdb

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/iothome/core/internal/infrastructure/config"
)

// Measurement names written to the bucket.
const (
	measurementSensor   = "sensor_state"
	measurementActuator = "actuator_state"
)

// defaultBatchSize is used when influxdb.batch_size is not configured.
const defaultBatchSize = 50

// healthTimeout bounds the connectivity probe at startup.
const healthTimeout = 5 * time.Second

// Writer mirrors device state updates into InfluxDB.
//
// Writes go through the client's non-blocking write API: points are
// batched and flushed in the background, and a write failure can never
// stall the message pipeline. Write errors surface on an error channel
// that the Writer drains into the log.
type Writer struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	logger   *slog.Logger
	done     chan struct{}
}

// Connect creates a Writer and verifies the server is reachable.
func Connect(cfg config.InfluxDBConfig, logger *slog.Logger) (*Writer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	options := influxdb2.DefaultOptions().SetBatchSize(uint(batchSize))
	if cfg.FlushInterval > 0 {
		options = options.SetFlushInterval(uint(cfg.FlushInterval * 1000))
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, options)

	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()
	if _, err := client.Health(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("influxdb health check: %w", err)
	}

	w := &Writer{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
		logger:   logger,
		done:     make(chan struct{}),
	}

	go w.drainErrors()

	return w, nil
}

// drainErrors logs asynchronous write failures until Close.
func (w *Writer) drainErrors() {
	errCh := w.writeAPI.Errors()
	for {
		select {
		case err, ok := <-errCh:
			if !ok {
				return
			}
			w.logger.Warn("influxdb write failed", "error", err)
		case <-w.done:
			return
		}
	}
}

// RecordSensorState writes a sensor state point. States that don't parse
// as a number are skipped: free-form states ("open", "detected") have no
// useful numeric series.
func (w *Writer) RecordSensorState(deviceCode, name, state string) {
	value, err := strconv.ParseFloat(state, 64)
	if err != nil {
		return
	}

	p := influxdb2.NewPoint(measurementSensor,
		map[string]string{"device_code": deviceCode, "name": name},
		map[string]any{"value": value},
		time.Now())
	w.writeAPI.WritePoint(p)
}

// RecordActuatorState writes an actuator state point.
func (w *Writer) RecordActuatorState(deviceCode, name string, state int) {
	p := influxdb2.NewPoint(measurementActuator,
		map[string]string{"device_code": deviceCode, "name": name},
		map[string]any{"value": state},
		time.Now())
	w.writeAPI.WritePoint(p)
}

// Close flushes buffered points and releases the client.
func (w *Writer) Close() {
	close(w.done)
	w.writeAPI.Flush()
	w.client.Close()
}
