package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iothome/core/internal/device"
	"github.com/iothome/core/internal/infrastructure/mqtt"
)

// Commander is the outbound half of the MQTT client the gateway needs.
// Satisfied by *mqtt.Client.
type Commander interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// commandQoS is the delivery guarantee for outbound device messages.
// At-least-once: devices must tolerate a duplicated response or action.
const commandQoS byte = 1

// registerResponse acknowledges a processed registration back to the device.
type registerResponse struct {
	Type ComponentKind `json:"type"`
	Name string        `json:"name"`
}

// actuatorAction commands an actuator to a target state.
type actuatorAction struct {
	Name  string `json:"name"`
	State int    `json:"state"`
}

// Publisher sends core-originated messages to devices: registration
// acknowledgements and actuator commands.
type Publisher struct {
	client Commander
	repo   device.Repository
	topics mqtt.Topics
}

// NewPublisher creates a Publisher.
func NewPublisher(client Commander, repo device.Repository) *Publisher {
	return &Publisher{client: client, repo: repo}
}

// SendRegisterResponse publishes a {type,name} acknowledgement on the
// device's response topic.
func (p *Publisher) SendRegisterResponse(deviceCode string, kind ComponentKind, name string) error {
	payload, err := json.Marshal(registerResponse{Type: kind, Name: name})
	if err != nil {
		return fmt.Errorf("encoding register response: %w", err)
	}
	if err := p.client.Publish(p.topics.DeviceResponse(deviceCode), payload, commandQoS, false); err != nil {
		return fmt.Errorf("publishing register response: %w", err)
	}
	return nil
}

// SendActuatorAction resolves the actuator's canonical name from storage and
// publishes a {name,state} command on the device's action topic.
//
// The actuator must belong to deviceCode; otherwise
// device.ErrActuatorNotFound is returned without publishing. Range
// validation against the actuator's level is the HTTP boundary's job.
func (p *Publisher) SendActuatorAction(ctx context.Context, deviceCode string, actuatorID int64, state int) error {
	a, err := p.repo.GetActuatorByID(ctx, actuatorID)
	if err != nil {
		return err
	}
	if a.DeviceCode != deviceCode {
		return device.ErrActuatorNotFound
	}

	payload, err := json.Marshal(actuatorAction{Name: a.Name, State: state})
	if err != nil {
		return fmt.Errorf("encoding actuator action: %w", err)
	}
	if err := p.client.Publish(p.topics.DeviceAction(deviceCode), payload, commandQoS, false); err != nil {
		return fmt.Errorf("publishing actuator action: %w", err)
	}
	return nil
}
