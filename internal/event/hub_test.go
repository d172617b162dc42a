package event

import (
	"log/slog"
	"testing"
)

func newTestHub(capacity int) *Hub {
	return NewHub(capacity, slog.Default())
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	hub := newTestHub(4)

	q1 := hub.Subscribe("kitchen-01")
	q2 := hub.Subscribe("kitchen-01")
	other := hub.Subscribe("living-01")

	hub.Publish("kitchen-01", Event{Event: TypeUpdate, Data: "payload"})

	for i, q := range []*Queue{q1, q2} {
		select {
		case evt := <-q.C:
			if evt.Event != TypeUpdate {
				t.Errorf("subscriber %d: event = %q, want update", i, evt.Event)
			}
		default:
			t.Errorf("subscriber %d: no event delivered", i)
		}
	}

	select {
	case evt := <-other.C:
		t.Errorf("wrong device received event: %+v", evt)
	default:
	}
}

func TestPublishDropsWhenQueueFull(t *testing.T) {
	hub := newTestHub(2)

	slow := hub.Subscribe("dev-01")
	fast := hub.Subscribe("dev-01")

	// Fill the slow queue, then drain fast so only it has room.
	for i := 0; i < 3; i++ {
		hub.Publish("dev-01", Event{Event: TypeUpdate, Data: i})
		if i < 2 {
			<-fast.C
		}
	}

	if got := len(slow.C); got != 2 {
		t.Errorf("slow queue length = %d, want 2 (third event dropped)", got)
	}
	if got := len(fast.C); got != 1 {
		t.Errorf("fast queue length = %d, want 1", got)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	hub := newTestHub(2)
	// Must not panic or block.
	hub.Publish("nobody-listening", Event{Event: TypeRegister})
}

func TestUnsubscribeIdempotent(t *testing.T) {
	hub := newTestHub(2)

	q := hub.Subscribe("dev-01")
	hub.Unsubscribe(q)
	hub.Unsubscribe(q) // repeat must not panic on double close

	if _, open := <-q.C; open {
		t.Error("queue channel still open after unsubscribe")
	}
	if got := hub.SubscriberCount("dev-01"); got != 0 {
		t.Errorf("subscriber count = %d, want 0", got)
	}

	// Publishing after unsubscribe must not reach the closed channel.
	hub.Publish("dev-01", Event{Event: TypeUpdate})
}

func TestSubscriberCount(t *testing.T) {
	hub := newTestHub(2)

	q1 := hub.Subscribe("dev-01")
	q2 := hub.Subscribe("dev-01")
	if got := hub.SubscriberCount("dev-01"); got != 2 {
		t.Errorf("count = %d, want 2", got)
	}

	hub.Unsubscribe(q1)
	hub.Unsubscribe(q2)
	if got := hub.SubscriberCount("dev-01"); got != 0 {
		t.Errorf("count after unsubscribe = %d, want 0", got)
	}
}
