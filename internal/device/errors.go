package device

import "errors"

// Domain-specific errors for device persistence operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrDeviceNotFound is returned when a device code has no record.
	ErrDeviceNotFound = errors.New("device: device not found")

	// ErrSensorNotFound is returned when a sensor lookup finds no record.
	// For state updates this means the sensor never registered.
	ErrSensorNotFound = errors.New("device: sensor not found")

	// ErrActuatorNotFound is returned when an actuator lookup finds no record.
	ErrActuatorNotFound = errors.New("device: actuator not found")

	// ErrStateOutOfRange is returned when an actuator state violates
	// 0 <= state <= level.
	ErrStateOutOfRange = errors.New("device: actuator state out of range")

	// ErrInvalidLevel is returned when an actuator registers with a negative level.
	ErrInvalidLevel = errors.New("device: actuator level must be >= 0")
)
