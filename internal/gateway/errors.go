package gateway

import "errors"

// Gateway errors. Handlers log these with the offending topic and payload;
// a bad message never takes the pipeline down.
var (
	// ErrMalformedTopic is returned when a topic does not match
	// devices/{code}/{suffix} or carries an empty device code.
	ErrMalformedTopic = errors.New("gateway: malformed topic")

	// ErrMalformedPayload is returned when a payload is not valid JSON.
	ErrMalformedPayload = errors.New("gateway: malformed payload")

	// ErrUnknownMessageType is returned when the type field is neither
	// "sensor" nor "actuator".
	ErrUnknownMessageType = errors.New("gateway: unknown message type")

	// ErrInvalidMessage is returned when a decoded message is missing
	// required fields or carries invalid values.
	ErrInvalidMessage = errors.New("gateway: invalid message")
)
