package gateway

import (
	"context"
	"errors"
	"log/slog"

	"github.com/iothome/core/internal/device"
	"github.com/iothome/core/internal/event"
	"github.com/iothome/core/internal/infrastructure/mqtt"
)

// Subscriber is the inbound half of the MQTT client the gateway needs.
// Satisfied by *mqtt.Client.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// subscribeQoS is the delivery guarantee requested for inbound device
// messages. At-least-once pairs with the idempotent registration path.
const subscribeQoS byte = 1

// StatePublisher optionally mirrors numeric state updates into a time
// series store. A nil StatePublisher disables telemetry.
type StatePublisher interface {
	RecordSensorState(deviceCode, name, state string)
	RecordActuatorState(deviceCode, name string, state int)
}

// Listener consumes registration and update messages for all devices and
// drives the persistence and fanout pipeline.
//
// Handlers run on the MQTT client's dispatch goroutine: they do their
// database work inline, hand live events to the hub without blocking, and
// report problems by logging. A malformed or failing message is dropped;
// the subscription stays up.
type Listener struct {
	client    Subscriber
	repo      device.Repository
	hub       *event.Hub
	publisher *Publisher
	telemetry StatePublisher
	logger    *slog.Logger
	topics    mqtt.Topics
}

// NewListener creates a Listener. telemetry may be nil.
func NewListener(client Subscriber, repo device.Repository, hub *event.Hub, publisher *Publisher, telemetry StatePublisher, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		client:    client,
		repo:      repo,
		hub:       hub,
		publisher: publisher,
		telemetry: telemetry,
		logger:    logger,
	}
}

// Start subscribes to the device registration and update wildcards.
func (l *Listener) Start(ctx context.Context) error {
	if err := l.client.Subscribe(l.topics.DeviceRegisterWildcard(), subscribeQoS, func(topic string, payload []byte) error {
		return l.HandleRegister(ctx, topic, payload)
	}); err != nil {
		return err
	}
	if err := l.client.Subscribe(l.topics.DeviceUpdateWildcard(), subscribeQoS, func(topic string, payload []byte) error {
		return l.HandleUpdate(ctx, topic, payload)
	}); err != nil {
		return err
	}

	l.logger.Info("device gateway listening",
		"topics", []string{l.topics.DeviceRegisterWildcard(), l.topics.DeviceUpdateWildcard()})
	return nil
}

// updateEventData is the payload of a live update event.
type updateEventData struct {
	DeviceCode string        `json:"device_code"`
	Type       ComponentKind `json:"type"`
	Name       string        `json:"name"`
	State      any           `json:"state"`
}

// HandleRegister processes one registration message: persist (idempotent),
// acknowledge to the device, push a live event.
//
// The acknowledgement is best-effort: a publish failure is logged but does
// not undo the registration, since the device will simply re-register.
func (l *Listener) HandleRegister(ctx context.Context, topic string, payload []byte) error {
	deviceCode, _, err := ParseTopic(topic)
	if err != nil {
		l.logger.Warn("dropping registration", "topic", topic, "error", err)
		return err
	}

	msg, err := DecodeRegister(payload)
	if err != nil {
		l.logger.Warn("dropping registration",
			"topic", topic, "payload", string(payload), "error", err)
		return err
	}

	var name string
	switch msg.Kind {
	case KindSensor:
		s, err := l.repo.RegisterSensorIfAbsent(ctx, deviceCode, *msg.Sensor)
		if err != nil {
			l.logger.Error("sensor registration failed",
				"device_code", deviceCode, "name", msg.Sensor.Name, "error", err)
			return err
		}
		name = s.Name
	case KindActuator:
		a, err := l.repo.RegisterActuatorIfAbsent(ctx, deviceCode, *msg.Actuator)
		if err != nil {
			l.logger.Error("actuator registration failed",
				"device_code", deviceCode, "name", msg.Actuator.Name, "error", err)
			return err
		}
		name = a.Name
	}

	// The device's acknowledgement and the live event carry the same
	// {type,name} payload.
	resp := registerResponse{Type: msg.Kind, Name: name}

	if err := l.publisher.SendRegisterResponse(deviceCode, resp.Type, resp.Name); err != nil {
		l.logger.Warn("register response not delivered",
			"device_code", deviceCode, "name", name, "error", err)
	}

	l.hub.Publish(deviceCode, event.Event{Event: event.TypeRegister, Data: resp})

	l.logger.Info("component registered",
		"device_code", deviceCode, "type", string(msg.Kind), "name", name)
	return nil
}

// HandleUpdate processes one state update: persist, push a live event,
// optionally mirror into telemetry. Updates for components that never
// registered are logged and dropped.
func (l *Listener) HandleUpdate(ctx context.Context, topic string, payload []byte) error {
	deviceCode, _, err := ParseTopic(topic)
	if err != nil {
		l.logger.Warn("dropping update", "topic", topic, "error", err)
		return err
	}

	msg, err := DecodeUpdate(payload)
	if err != nil {
		l.logger.Warn("dropping update",
			"topic", topic, "payload", string(payload), "error", err)
		return err
	}

	data := updateEventData{DeviceCode: deviceCode, Type: msg.Kind, Name: msg.Name}
	switch msg.Kind {
	case KindSensor:
		err = l.repo.UpdateSensorState(ctx, deviceCode, msg.Name, msg.SensorState)
		data.State = msg.SensorState
	case KindActuator:
		err = l.repo.UpdateActuatorState(ctx, deviceCode, msg.Name, msg.ActuatorState)
		data.State = msg.ActuatorState
	}
	if err != nil {
		switch {
		case errors.Is(err, device.ErrSensorNotFound), errors.Is(err, device.ErrActuatorNotFound):
			l.logger.Warn("update for unregistered component",
				"device_code", deviceCode, "type", string(msg.Kind), "name", msg.Name)
		case errors.Is(err, device.ErrStateOutOfRange):
			l.logger.Warn("update rejected",
				"device_code", deviceCode, "name", msg.Name, "error", err)
		default:
			l.logger.Error("state update failed",
				"device_code", deviceCode, "name", msg.Name, "error", err)
		}
		return err
	}

	l.hub.Publish(deviceCode, event.Event{Event: event.TypeUpdate, Data: data})

	if l.telemetry != nil {
		switch msg.Kind {
		case KindSensor:
			l.telemetry.RecordSensorState(deviceCode, msg.Name, msg.SensorState)
		case KindActuator:
			l.telemetry.RecordActuatorState(deviceCode, msg.Name, msg.ActuatorState)
		}
	}

	return nil
}
