package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
// Usage: bus.Publish(WiFiStateChangedEvent{...})
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case WiFiStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case EthernetStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case HotspotStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case SignalStrengthChangedEvent:
		event.Publish(b.dispatcher, e)
	case IndicatorChangedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function
// The handler type determines which events it receives.
// Returns an unsubscribe function
// Usage: unsub := bus.Subscribe(func(e WiFiStateChangedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(WiFiStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(EthernetStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(HotspotStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(SignalStrengthChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(IndicatorChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// Return a no-op function if handler type is not recognized
		return func() {}
	}
}
