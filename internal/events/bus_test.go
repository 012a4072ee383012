package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_SubscribeReceivesMatchingType(t *testing.T) {
	bus := NewBus()

	var received []*Event
	bus.Subscribe(ConsentChanged, func(e *Event) {
		received = append(received, e)
	})

	bus.Publish(&Event{Type: ConsentChanged, Module: "profile"})
	bus.Publish(&Event{Type: EventsCleared, Module: "behavior"})

	require.Len(t, received, 1)
	assert.Equal(t, ConsentChanged, received[0].Type)
	assert.Equal(t, "profile", received[0].Module)
}

func TestBus_SubscribeAllReceivesEverything(t *testing.T) {
	bus := NewBus()

	var count int
	bus.SubscribeAll(func(e *Event) { count++ })

	bus.Publish(&Event{Type: ConsentChanged})
	bus.Publish(&Event{Type: LayoutComposed})
	bus.Publish(&Event{Type: ProfileReset})

	assert.Equal(t, 3, count)
}

func TestBus_PublishFillsTimestamp(t *testing.T) {
	bus := NewBus()

	var got *Event
	bus.SubscribeAll(func(e *Event) { got = e })

	bus.Publish(&Event{Type: LayoutComposed})

	require.NotNil(t, got)
	assert.False(t, got.Timestamp.IsZero())
}

func TestBus_MultipleHandlersForSameType(t *testing.T) {
	bus := NewBus()

	var first, second bool
	bus.Subscribe(EventsCleared, func(e *Event) { first = true })
	bus.Subscribe(EventsCleared, func(e *Event) { second = true })

	bus.Publish(&Event{Type: EventsCleared})

	assert.True(t, first)
	assert.True(t, second)
}
