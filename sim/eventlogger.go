package sim

import (
	"log/slog"
	"reflect"
)

// EventLogger is a hook that writes a record for every event the engine is
// about to handle.
type EventLogger struct {
	logger *slog.Logger
}

// NewEventLogger returns a new EventLogger that writes into the given logger.
func NewEventLogger(logger *slog.Logger) *EventLogger {
	h := new(EventLogger)
	h.logger = logger

	return h
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	args := []any{
		"time", uint64(evt.Time()),
		"event", reflect.TypeOf(evt).String(),
	}

	if comp, ok := evt.Handler().(Named); ok {
		args = append(args, "handler", comp.Name())
	}

	h.logger.Debug("event", args...)
}
