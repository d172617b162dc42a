// Package device holds the persistent data model: devices and their
// sensors and actuators.
//
// Devices appear when the first sensor or actuator registers under their
// code. Sensors and actuators are keyed by (device_code, name) and register
// idempotently: a duplicate registration returns the existing row untouched.
// Actuator state is constrained to [0, level] at the repository layer, so
// no caller can persist an out-of-range value.
package device
