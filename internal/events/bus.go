// Package events provides the in-process pub/sub bus behind the live
// debug stream. It carries system notifications (event appended, consent
// changed, layout composed), not the behavioral events themselves.
package events

import (
	"sync"
	"time"
)

// EventType identifies a system notification kind.
type EventType string

const (
	TrackedEventAppended EventType = "tracked_event_appended"
	EventsCleared        EventType = "events_cleared"
	ConsentChanged       EventType = "consent_changed"
	PreferencesChanged   EventType = "preferences_changed"
	LayoutComposed       EventType = "layout_composed"
	ProfileReset         EventType = "profile_reset"
)

// Event is one bus notification.
type Event struct {
	Type      EventType      `json:"type"`
	Module    string         `json:"module"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Handler receives published events. Handlers must not block; slow
// consumers buffer on their own channel.
type Handler func(*Event)

// Bus is a minimal synchronous fan-out bus. Subscriptions last for the
// process lifetime; there is no unsubscribe because the only consumers are
// per-connection stream handlers that filter on their own side.
type Bus struct {
	mu   sync.RWMutex
	subs map[EventType][]Handler
	all  []Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[EventType][]Handler)}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(t EventType, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[t] = append(b.subs[t], h)
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

// Publish delivers the event to all matching handlers. Timestamp is filled
// if the caller left it zero.
func (b *Bus) Publish(e *Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[e.Type])+len(b.all))
	handlers = append(handlers, b.subs[e.Type]...)
	handlers = append(handlers, b.all...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
