package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iothome/core/internal/device"
)

// ComponentKind discriminates the two component families in device messages.
type ComponentKind string

// Component kinds carried in the type field of device messages.
const (
	KindSensor   ComponentKind = "sensor"
	KindActuator ComponentKind = "actuator"
)

// MessageKind is the topic suffix classifying an inbound message.
type MessageKind string

// Inbound message kinds.
const (
	MessageRegister MessageKind = "register"
	MessageUpdate   MessageKind = "update"
)

// RegisterMessage is a decoded registration request. Exactly one of Sensor
// or Actuator is set, matching Kind.
type RegisterMessage struct {
	Kind     ComponentKind
	Sensor   *device.SensorRegistration
	Actuator *device.ActuatorRegistration
}

// UpdateMessage is a decoded state update. SensorState is set for sensors,
// ActuatorState for actuators.
type UpdateMessage struct {
	Kind          ComponentKind
	Name          string
	SensorState   string
	ActuatorState int
}

// ParseTopic extracts the device code and message kind from an inbound
// topic of the form devices/{code}/{register|update}.
func ParseTopic(topic string) (deviceCode string, kind MessageKind, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "devices" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedTopic, topic)
	}
	if parts[1] == "" || strings.ContainsAny(parts[1], "+#") {
		return "", "", fmt.Errorf("%w: bad device code in %q", ErrMalformedTopic, topic)
	}

	switch MessageKind(parts[2]) {
	case MessageRegister, MessageUpdate:
		return parts[1], MessageKind(parts[2]), nil
	default:
		return "", "", fmt.Errorf("%w: unknown suffix in %q", ErrMalformedTopic, topic)
	}
}

// registerEnvelope is the wire shape of a registration payload.
// Sensor state rides as a string, actuator state as an integer; State stays
// raw until the type field settles which one applies.
type registerEnvelope struct {
	Type       string          `json:"type"`
	Name       string          `json:"name"`
	SensorType string          `json:"sensor_type"`
	Level      *int            `json:"level"`
	State      json.RawMessage `json:"state"`
}

// DecodeRegister parses and validates a registration payload.
func DecodeRegister(payload []byte) (*RegisterMessage, error) {
	var env registerEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if env.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidMessage)
	}

	switch ComponentKind(env.Type) {
	case KindSensor:
		st := device.SensorType(env.SensorType)
		if !st.IsValid() {
			return nil, fmt.Errorf("%w: unknown sensor_type %q", ErrInvalidMessage, env.SensorType)
		}
		reg := &device.SensorRegistration{Name: env.Name, Type: st}
		if len(env.State) > 0 {
			var state string
			if err := json.Unmarshal(env.State, &state); err != nil {
				return nil, fmt.Errorf("%w: sensor state must be a string", ErrInvalidMessage)
			}
			reg.State = &state
		}
		return &RegisterMessage{Kind: KindSensor, Sensor: reg}, nil

	case KindActuator:
		if env.Level == nil {
			return nil, fmt.Errorf("%w: missing level", ErrInvalidMessage)
		}
		if *env.Level < 0 {
			return nil, fmt.Errorf("%w: level must be >= 0", ErrInvalidMessage)
		}
		reg := &device.ActuatorRegistration{Name: env.Name, Level: *env.Level}
		if len(env.State) > 0 {
			var state int
			if err := json.Unmarshal(env.State, &state); err != nil {
				return nil, fmt.Errorf("%w: actuator state must be an integer", ErrInvalidMessage)
			}
			reg.State = &state
		}
		return &RegisterMessage{Kind: KindActuator, Actuator: reg}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}
}

// updateEnvelope is the wire shape of a state update payload.
type updateEnvelope struct {
	Type  string          `json:"type"`
	Name  string          `json:"name"`
	State json.RawMessage `json:"state"`
}

// DecodeUpdate parses and validates a state update payload.
func DecodeUpdate(payload []byte) (*UpdateMessage, error) {
	var env updateEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if env.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidMessage)
	}
	if len(env.State) == 0 {
		return nil, fmt.Errorf("%w: missing state", ErrInvalidMessage)
	}

	msg := &UpdateMessage{Name: env.Name}
	switch ComponentKind(env.Type) {
	case KindSensor:
		if err := json.Unmarshal(env.State, &msg.SensorState); err != nil {
			return nil, fmt.Errorf("%w: sensor state must be a string", ErrInvalidMessage)
		}
		msg.Kind = KindSensor
	case KindActuator:
		if err := json.Unmarshal(env.State, &msg.ActuatorState); err != nil {
			return nil, fmt.Errorf("%w: actuator state must be an integer", ErrInvalidMessage)
		}
		msg.Kind = KindActuator
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}
	return msg, nil
}
