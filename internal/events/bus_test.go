package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []Event
}

func (h *recordingHandler) handle(ev Event) {
	h.mu.Lock()
	h.events = append(h.events, ev)
	h.mu.Unlock()
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()
	first, second := &recordingHandler{}, &recordingHandler{}
	bus.Subscribe(EventPreempted, first.handle)
	bus.Subscribe(EventPreempted, second.handle)

	bus.Publish(Event{Type: EventPreempted, RoomID: "301", Detail: "被房间 304 抢占"})

	assert.Eventually(t, func() bool {
		return first.count() == 1 && second.count() == 1
	}, time.Second, 5*time.Millisecond)

	first.mu.Lock()
	defer first.mu.Unlock()
	assert.Equal(t, "301", first.events[0].RoomID)
}

func TestPublishSkipsOtherEventTypes(t *testing.T) {
	bus := NewBus()
	handler := &recordingHandler{}
	bus.Subscribe(EventRotated, handler.handle)

	bus.Publish(Event{Type: EventTargetReached, RoomID: "302"})

	assert.Never(t, func() bool { return handler.count() > 0 },
		50*time.Millisecond, 10*time.Millisecond)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()
	handler := &recordingHandler{}
	sub := bus.Subscribe(EventServiceStart, handler.handle)

	bus.Publish(Event{Type: EventServiceStart, RoomID: "303"})
	assert.Eventually(t, func() bool { return handler.count() == 1 },
		time.Second, 5*time.Millisecond)

	bus.Unsubscribe(sub)
	bus.Publish(Event{Type: EventServiceStart, RoomID: "303"})
	assert.Never(t, func() bool { return handler.count() > 1 },
		50*time.Millisecond, 10*time.Millisecond)
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "Preempted", EventPreempted.String())
	assert.Equal(t, "DriftRestart", EventDriftRestart.String())
	assert.Equal(t, "Unknown", EventType(99).String())
}
