package event

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Default queue capacity when the hub is constructed with a non-positive value.
const defaultQueueCapacity = 100

// Type identifies what happened to a device component.
type Type string

// Event types pushed to live subscribers.
const (
	TypeRegister Type = "register"
	TypeUpdate   Type = "update"
)

// Event is one live notification for a device. Data carries the full
// sensor or actuator record, already shaped for the wire.
type Event struct {
	Event Type `json:"event"`
	Data  any  `json:"data"`
}

// MarshalData returns the event serialized as JSON.
func (e Event) MarshalData() ([]byte, error) {
	return json.Marshal(e)
}

// Queue is one subscriber's bounded event buffer. Consumers range over C;
// the hub closes it on Unsubscribe.
type Queue struct {
	C          chan Event
	deviceCode string
}

// Hub fans device events out to per-device subscriber queues.
//
// Publish never blocks: a subscriber whose queue is full loses that event
// (logged at WARN) while other subscribers are unaffected. This keeps the
// message pipeline immune to slow or stalled stream clients.
type Hub struct {
	mu       sync.Mutex
	subs     map[string]map[*Queue]struct{}
	capacity int
	logger   *slog.Logger
}

// NewHub creates a hub whose subscriber queues buffer up to capacity events.
func NewHub(capacity int, logger *slog.Logger) *Hub {
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:     make(map[string]map[*Queue]struct{}),
		capacity: capacity,
		logger:   logger,
	}
}

// Subscribe registers a new queue for events about one device.
// Multiple subscribers per device each receive every event independently.
func (h *Hub) Subscribe(deviceCode string) *Queue {
	q := &Queue{
		C:          make(chan Event, h.capacity),
		deviceCode: deviceCode,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[deviceCode] == nil {
		h.subs[deviceCode] = make(map[*Queue]struct{})
	}
	h.subs[deviceCode][q] = struct{}{}

	return q
}

// Unsubscribe removes a queue and closes its channel. Safe to call more
// than once; repeat calls are no-ops.
func (h *Hub) Unsubscribe(q *Queue) {
	if q == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	queues, ok := h.subs[q.deviceCode]
	if !ok {
		return
	}
	if _, ok := queues[q]; !ok {
		return
	}
	delete(queues, q)
	if len(queues) == 0 {
		delete(h.subs, q.deviceCode)
	}
	close(q.C)
}

// Publish delivers an event to every subscriber of the device.
// Devices with no subscribers drop the event silently.
func (h *Hub) Publish(deviceCode string, evt Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for q := range h.subs[deviceCode] {
		select {
		case q.C <- evt:
		default:
			h.logger.Warn("dropping event for slow subscriber",
				"device_code", deviceCode,
				"event", string(evt.Event))
		}
	}
}

// SubscriberCount returns the number of active subscribers for a device.
func (h *Hub) SubscriberCount(deviceCode string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[deviceCode])
}
