// Package tsdb is the optional time series sink for device state history.
// SQLite keeps only the latest state per component; InfluxDB, when enabled,
// keeps the series so dashboards can chart temperature over time or dimmer
// usage per day.
package tsdb
