// Package event implements the live fanout hub between the MQTT pipeline
// and stream clients (SSE, WebSocket).
//
// The MQTT handler goroutine publishes; stream handlers subscribe with a
// bounded queue per connection. Publishing is non-blocking so one stalled
// client can never back-pressure the broker pipeline.
package event
