package sim

import "sync"

// TickEvent wakes a ticking component up.
type TickEvent struct {
	EventBase
}

// MakeTickEvent creates a tick for the handler at the given cycle.
func MakeTickEvent(handler Handler, time VTimeInCycle) TickEvent {
	return TickEvent{EventBase: NewEventBase(time, handler)}
}

// A Ticker updates its state once per tick. Tick reports whether anything
// changed, in which case the ticker is ticked again in the next cycle.
type Ticker interface {
	Tick() bool
}

// A Consumer can be woken up at a given cycle to consume the items that are
// delivered to it.
type Consumer interface {
	TickAt(time VTimeInCycle)
}

// TickScheduler schedules the ticks of one handler. It remembers the cycles
// that already have a tick pending, so that a handler is never woken twice in
// the same cycle.
type TickScheduler struct {
	handler Handler
	engine  Engine
	period  ClockPeriod

	lock    sync.Mutex
	pending map[VTimeInCycle]struct{}
}

// NewTickScheduler creates a scheduler that ticks the handler on the clock
// edges of the period.
func NewTickScheduler(
	handler Handler,
	engine Engine,
	period ClockPeriod,
) *TickScheduler {
	return &TickScheduler{
		handler: handler,
		engine:  engine,
		period:  period,
		pending: make(map[VTimeInCycle]struct{}),
	}
}

// TickAt schedules a tick at the given cycle unless one is pending there.
func (t *TickScheduler) TickAt(time VTimeInCycle) {
	t.lock.Lock()
	_, dup := t.pending[time]
	if !dup {
		t.pending[time] = struct{}{}
	}
	t.lock.Unlock()

	if !dup {
		t.engine.Schedule(MakeTickEvent(t.handler, time))
	}
}

// TickLater schedules a tick on the next clock edge.
func (t *TickScheduler) TickLater() {
	t.TickAt(t.period.NextTick(t.CurrentTime()))
}

// TickAfter schedules a tick n clock edges after the current one.
func (t *TickScheduler) TickAfter(n int) {
	t.TickAt(t.ClockEdge(n))
}

// IsScheduled tells if a tick is pending at the given cycle.
func (t *TickScheduler) IsScheduled(time VTimeInCycle) bool {
	t.lock.Lock()
	defer t.lock.Unlock()

	_, ok := t.pending[time]

	return ok
}

// ClockEdge returns the cycle n clock edges after the current one.
func (t *TickScheduler) ClockEdge(n int) VTimeInCycle {
	return t.period.NCyclesLater(n, t.CurrentTime())
}

// CurrentTime returns the current cycle of the engine.
func (t *TickScheduler) CurrentTime() VTimeInCycle {
	return t.engine.CurrentTime()
}

func (t *TickScheduler) ticked(time VTimeInCycle) {
	t.lock.Lock()
	delete(t.pending, time)
	t.lock.Unlock()
}

// TickingComponent is a component driven by a Ticker. It keeps ticking while
// the ticker makes progress and sleeps otherwise, until something calls
// TickAt or TickLater.
type TickingComponent struct {
	*ComponentBase
	*TickScheduler

	ticker Ticker
}

// NewTickingComponent creates a ticking component.
func NewTickingComponent(
	name string,
	engine Engine,
	period ClockPeriod,
	ticker Ticker,
) *TickingComponent {
	tc := &TickingComponent{
		ComponentBase: NewComponentBase(name),
		ticker:        ticker,
	}
	tc.TickScheduler = NewTickScheduler(tc, engine, period)

	return tc
}

// Handle ticks the ticker.
func (c *TickingComponent) Handle(e Event) error {
	c.ticked(e.Time())

	if c.ticker.Tick() {
		c.TickLater()
	}

	return nil
}
