// Package mqtt wraps the Eclipse Paho MQTT client for IoT Home Core.
//
// The wrapper adds what the raw client lacks for this deployment:
//
//   - Subscription tracking with automatic restore after reconnect
//   - Handler wrapping with panic recovery and error logging
//   - Publish/subscribe timeouts so a dead broker cannot wedge callers
//   - Retained online/offline status with a Last Will for crash detection
//   - Topic builders for the devices/{code}/... hierarchy
//
// Handlers run on the paho network goroutine and are dispatched
// sequentially per client; they hand work that must cross into other
// goroutines to the event hub rather than blocking.
package mqtt
