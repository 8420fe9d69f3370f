package sim

import (
	"fmt"
	"math"
	"reflect"
	"sync"
)

// A SerialEngine handles events one at a time, in cycle order.
type SerialEngine struct {
	HookableBase

	timeLock sync.RWMutex
	now      VTimeInCycle
	queue    *EventQueue

	// runLock is held while an event is handled. Pause holds it between
	// events.
	runLock    sync.Mutex
	pausedLock sync.Mutex
	paused     bool

	running sync.Mutex

	endHandlers []SimulationEndHandler
}

// NewSerialEngine creates a SerialEngine at cycle 0.
func NewSerialEngine() *SerialEngine {
	return &SerialEngine{queue: NewEventQueue()}
}

// Schedule queues an event. It panics if the event is in the past.
func (e *SerialEngine) Schedule(evt Event) {
	if now := e.CurrentTime(); evt.Time() < now {
		panic(fmt.Sprintf("%s scheduled at cycle %d, but it is cycle %d",
			reflect.TypeOf(evt), evt.Time(), now))
	}

	e.queue.Push(evt)
}

// CurrentTime returns the cycle of the event being handled, or of the last
// one handled.
func (e *SerialEngine) CurrentTime() VTimeInCycle {
	e.timeLock.RLock()
	defer e.timeLock.RUnlock()

	return e.now
}

func (e *SerialEngine) setTime(t VTimeInCycle) {
	e.timeLock.Lock()
	e.now = t
	e.timeLock.Unlock()
}

// Run handles events until none is left. It stops at the first handler that
// fails.
func (e *SerialEngine) Run() error {
	_, err := e.RunUntil(math.MaxUint64)
	return err
}

// RunUntil handles the events scheduled no later than the limit. It reports
// whether events remain.
func (e *SerialEngine) RunUntil(limit VTimeInCycle) (pending bool, err error) {
	e.running.Lock()
	defer e.running.Unlock()

	for {
		next, ok := e.queue.Peek()
		if !ok {
			return false, nil
		}

		if next.Time() > limit {
			return true, nil
		}

		if err := e.handleNext(); err != nil {
			return e.queue.Len() > 0, err
		}
	}
}

func (e *SerialEngine) handleNext() error {
	e.runLock.Lock()
	defer e.runLock.Unlock()

	evt := e.queue.Pop()
	e.setTime(evt.Time())

	ctx := HookCtx{Domain: e, Pos: HookPosBeforeEvent, Item: evt}
	e.InvokeHook(ctx)

	if err := evt.Handler().Handle(evt); err != nil {
		return fmt.Errorf("cycle %d, %s: %w",
			evt.Time(), reflect.TypeOf(evt), err)
	}

	ctx.Pos = HookPosAfterEvent
	e.InvokeHook(ctx)

	return nil
}

// Pause stops the engine before its next event. It returns once the event
// in progress, if any, is handled.
func (e *SerialEngine) Pause() {
	e.pausedLock.Lock()
	defer e.pausedLock.Unlock()

	if !e.paused {
		e.runLock.Lock()
		e.paused = true
	}
}

// Continue resumes a paused engine.
func (e *SerialEngine) Continue() {
	e.pausedLock.Lock()
	defer e.pausedLock.Unlock()

	if e.paused {
		e.paused = false
		e.runLock.Unlock()
	}
}

// RegisterSimulationEndHandler adds a handler that Finished calls.
func (e *SerialEngine) RegisterSimulationEndHandler(h SimulationEndHandler) {
	e.endHandlers = append(e.endHandlers, h)
}

// Finished tells the end handlers that the simulation is over.
func (e *SerialEngine) Finished() {
	now := e.CurrentTime()
	for _, h := range e.endHandlers {
		h.Handle(now)
	}
}
