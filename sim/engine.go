package sim

// TimeTeller reports the current cycle.
type TimeTeller interface {
	CurrentTime() VTimeInCycle
}

// EventScheduler accepts events for future cycles.
type EventScheduler interface {
	TimeTeller

	Schedule(e Event)
}

// A SimulationEndHandler is told the final cycle when the simulation ends.
type SimulationEndHandler interface {
	Handle(now VTimeInCycle)
}

// An Engine drives a discrete event simulation. Hooks attached to it see
// every event before and after it is handled.
type Engine interface {
	Hookable
	EventScheduler

	// Run handles events until none is left or a handler fails.
	Run() error

	// Pause blocks the engine before its next event until Continue.
	Pause()
	Continue()

	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished calls the end handlers with the current cycle.
	Finished()
}
