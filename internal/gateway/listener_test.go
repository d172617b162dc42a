package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/iothome/core/internal/device"
	"github.com/iothome/core/internal/event"
	"github.com/iothome/core/internal/gateway"
	"github.com/iothome/core/internal/infrastructure/database"
	_ "github.com/iothome/core/migrations"
)

// fakeCommander records outbound publishes instead of talking to a broker.
type fakeCommander struct {
	mu       sync.Mutex
	messages []publishedMessage
	fail     bool
}

type publishedMessage struct {
	topic   string
	payload []byte
	qos     byte
}

func (f *fakeCommander) Publish(topic string, payload []byte, qos byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broker unavailable")
	}
	f.messages = append(f.messages, publishedMessage{topic: topic, payload: payload, qos: qos})
	return nil
}

func (f *fakeCommander) published() []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishedMessage(nil), f.messages...)
}

type fixture struct {
	listener  *gateway.Listener
	publisher *gateway.Publisher
	repo      *device.SQLiteRepository
	hub       *event.Hub
	broker    *fakeCommander
}

func setupListener(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating database: %v", err)
	}

	repo := device.NewSQLiteRepository(db.DB)
	hub := event.NewHub(16, slog.Default())
	broker := &fakeCommander{}
	publisher := gateway.NewPublisher(broker, repo)
	listener := gateway.NewListener(nil, repo, hub, publisher, nil, slog.Default())

	return &fixture{listener: listener, publisher: publisher, repo: repo, hub: hub, broker: broker}
}

func TestHandleRegisterSensor(t *testing.T) {
	f := setupListener(t)
	ctx := context.Background()

	q := f.hub.Subscribe("kitchen-01")
	defer f.hub.Unsubscribe(q)

	payload := []byte(`{"type":"sensor","name":"temp","sensor_type":"temperature","state":"21.5"}`)
	if err := f.listener.HandleRegister(ctx, "devices/kitchen-01/register", payload); err != nil {
		t.Fatalf("handling registration: %v", err)
	}

	// Persisted.
	sensors, err := f.repo.ListSensors(ctx, "kitchen-01")
	if err != nil {
		t.Fatalf("listing sensors: %v", err)
	}
	if len(sensors) != 1 || sensors[0].Name != "temp" {
		t.Fatalf("sensors = %+v, want single temp sensor", sensors)
	}

	// Acknowledged on the response topic.
	msgs := f.broker.published()
	if len(msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(msgs))
	}
	if msgs[0].topic != "devices/kitchen-01/response" {
		t.Errorf("response topic = %q", msgs[0].topic)
	}
	if msgs[0].qos != 1 {
		t.Errorf("response qos = %d, want 1", msgs[0].qos)
	}
	var resp struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(msgs[0].payload, &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Type != "sensor" || resp.Name != "temp" {
		t.Errorf("response = %+v", resp)
	}

	// Live event pushed, carrying the same {type,name} payload as the ack.
	select {
	case evt := <-q.C:
		if evt.Event != event.TypeRegister {
			t.Errorf("event = %q, want register", evt.Event)
		}
		assertEventData(t, evt, map[string]any{"type": "sensor", "name": "temp"})
	default:
		t.Error("no live event delivered")
	}
}

// assertEventData compares an event's data payload field-for-field after a
// JSON round trip, so extra or missing fields fail loudly.
func assertEventData(t *testing.T, evt event.Event, want map[string]any) {
	t.Helper()

	raw, err := json.Marshal(evt.Data)
	if err != nil {
		t.Fatalf("encoding event data: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decoding event data: %v", err)
	}

	if len(got) != len(want) {
		t.Errorf("event data has %d fields %v, want %d %v", len(got), got, len(want), want)
	}
	for key, wantVal := range want {
		if got[key] != wantVal {
			t.Errorf("event data[%q] = %v, want %v", key, got[key], wantVal)
		}
	}
}

func TestHandleRegisterActuatorEventFrame(t *testing.T) {
	f := setupListener(t)
	ctx := context.Background()

	q := f.hub.Subscribe("dev42")
	defer f.hub.Unsubscribe(q)

	payload := []byte(`{"type":"actuator","name":"lamp1","level":5,"state":0}`)
	if err := f.listener.HandleRegister(ctx, "devices/dev42/register", payload); err != nil {
		t.Fatalf("handling registration: %v", err)
	}

	select {
	case evt := <-q.C:
		if evt.Event != event.TypeRegister {
			t.Errorf("event = %q, want register", evt.Event)
		}
		// Stream subscribers get exactly the acknowledgement payload,
		// not the stored record.
		assertEventData(t, evt, map[string]any{"type": "actuator", "name": "lamp1"})
	default:
		t.Fatal("no live event delivered")
	}
}

func TestHandleRegisterResponseFailureKeepsRecord(t *testing.T) {
	f := setupListener(t)
	ctx := context.Background()
	f.broker.fail = true

	payload := []byte(`{"type":"actuator","name":"dimmer","level":100}`)
	if err := f.listener.HandleRegister(ctx, "devices/living-01/register", payload); err != nil {
		t.Fatalf("handling registration: %v", err)
	}

	// Ack failed but the registration stands; the device will retry.
	actuators, err := f.repo.ListActuators(ctx, "living-01")
	if err != nil {
		t.Fatalf("listing actuators: %v", err)
	}
	if len(actuators) != 1 {
		t.Errorf("actuator count = %d, want 1", len(actuators))
	}
}

func TestHandleRegisterDuplicate(t *testing.T) {
	f := setupListener(t)
	ctx := context.Background()

	payload := []byte(`{"type":"sensor","name":"temp","sensor_type":"temperature"}`)
	for i := 0; i < 2; i++ {
		if err := f.listener.HandleRegister(ctx, "devices/kitchen-01/register", payload); err != nil {
			t.Fatalf("registration %d: %v", i, err)
		}
	}

	sensors, err := f.repo.ListSensors(ctx, "kitchen-01")
	if err != nil {
		t.Fatalf("listing sensors: %v", err)
	}
	if len(sensors) != 1 {
		t.Errorf("sensor count = %d, want 1", len(sensors))
	}

	// Both registrations are acknowledged.
	if got := len(f.broker.published()); got != 2 {
		t.Errorf("published %d responses, want 2", got)
	}
}

func TestHandleRegisterMalformed(t *testing.T) {
	f := setupListener(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		topic   string
		payload string
		want    error
	}{
		{"bad topic", "devices//register", `{}`, gateway.ErrMalformedTopic},
		{"bad payload", "devices/dev-01/register", `nope`, gateway.ErrMalformedPayload},
		{"unknown type", "devices/dev-01/register", `{"type":"relay","name":"x"}`, gateway.ErrUnknownMessageType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.listener.HandleRegister(ctx, tt.topic, []byte(tt.payload))
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if got := len(f.broker.published()); got != 0 {
		t.Errorf("published %d messages for bad input, want 0", got)
	}
}

func TestHandleUpdate(t *testing.T) {
	f := setupListener(t)
	ctx := context.Background()

	if err := f.listener.HandleRegister(ctx, "devices/kitchen-01/register",
		[]byte(`{"type":"sensor","name":"temp","sensor_type":"temperature"}`)); err != nil {
		t.Fatalf("registration: %v", err)
	}

	q := f.hub.Subscribe("kitchen-01")
	defer f.hub.Unsubscribe(q)

	if err := f.listener.HandleUpdate(ctx, "devices/kitchen-01/update",
		[]byte(`{"type":"sensor","name":"temp","state":"23.4"}`)); err != nil {
		t.Fatalf("update: %v", err)
	}

	sensors, err := f.repo.ListSensors(ctx, "kitchen-01")
	if err != nil {
		t.Fatalf("listing sensors: %v", err)
	}
	if sensors[0].State == nil || *sensors[0].State != "23.4" {
		t.Errorf("state = %v, want 23.4", sensors[0].State)
	}

	select {
	case evt := <-q.C:
		if evt.Event != event.TypeUpdate {
			t.Errorf("event = %q, want update", evt.Event)
		}
		assertEventData(t, evt, map[string]any{
			"device_code": "kitchen-01",
			"type":        "sensor",
			"name":        "temp",
			"state":       "23.4",
		})
	default:
		t.Error("no live event delivered")
	}
}

func TestHandleUpdateUnregistered(t *testing.T) {
	f := setupListener(t)

	err := f.listener.HandleUpdate(context.Background(), "devices/ghost/update",
		[]byte(`{"type":"sensor","name":"temp","state":"1"}`))
	if !errors.Is(err, device.ErrSensorNotFound) {
		t.Errorf("error = %v, want ErrSensorNotFound", err)
	}
}

func TestHandleUpdateActuatorOutOfRange(t *testing.T) {
	f := setupListener(t)
	ctx := context.Background()

	if err := f.listener.HandleRegister(ctx, "devices/living-01/register",
		[]byte(`{"type":"actuator","name":"dimmer","level":10}`)); err != nil {
		t.Fatalf("registration: %v", err)
	}

	q := f.hub.Subscribe("living-01")
	defer f.hub.Unsubscribe(q)

	err := f.listener.HandleUpdate(ctx, "devices/living-01/update",
		[]byte(`{"type":"actuator","name":"dimmer","state":11}`))
	if !errors.Is(err, device.ErrStateOutOfRange) {
		t.Errorf("error = %v, want ErrStateOutOfRange", err)
	}

	// Rejected update must not fan out.
	select {
	case evt := <-q.C:
		t.Errorf("unexpected event: %+v", evt)
	default:
	}
}
