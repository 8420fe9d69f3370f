package sim

// VTimeInCycle is simulated time, counted in cycles of the network clock.
type VTimeInCycle uint64

// An Event is something that a handler does at a given cycle.
type Event interface {
	Time() VTimeInCycle
	Handler() Handler
}

// A Handler owns the events scheduled for it. An event only changes the state
// of its own handler.
type Handler interface {
	Handle(e Event) error
}

// EventBase carries what every event needs. Concrete events embed it.
type EventBase struct {
	ID      string
	time    VTimeInCycle
	handler Handler
}

// NewEventBase creates an EventBase with a fresh ID.
func NewEventBase(t VTimeInCycle, handler Handler) EventBase {
	return EventBase{
		ID:      GetIDGenerator().Generate(),
		time:    t,
		handler: handler,
	}
}

// Time returns the cycle of the event.
func (e EventBase) Time() VTimeInCycle {
	return e.time
}

// Handler returns the handler of the event.
func (e EventBase) Handler() Handler {
	return e.handler
}
