package tracing

import (
	"fmt"
	"slices"

	"github.com/hansikaweerasena/gem5-multi/sim"
)

// HookedDomain is a domain whose hooks can be listed.
type HookedDomain interface {
	NamedHookable
	HookList() []sim.Hook
}

// CollectTrace attaches a tracer to a domain. A tracer can only be attached
// to a domain once.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	if slices.Contains(Tracers(domain), tracer) {
		panic(fmt.Sprintf("%s is already traced by %T", domain.Name(), tracer))
	}

	domain.AcceptHook(tracerHook{tracer: tracer})
}

// Tracers lists the tracers attached to a domain. It returns nil if the domain
// does not expose its hooks.
func Tracers(domain NamedHookable) []Tracer {
	hd, ok := domain.(HookedDomain)
	if !ok {
		return nil
	}

	var tracers []Tracer
	for _, h := range hd.HookList() {
		if th, ok := h.(tracerHook); ok {
			tracers = append(tracers, th.tracer)
		}
	}

	return tracers
}

type tracerHook struct {
	tracer Tracer
}

func (h tracerHook) Func(ctx sim.HookCtx) {
	task, ok := ctx.Item.(Task)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosTaskStart:
		h.tracer.StartTask(task)
	case HookPosTaskStep:
		h.tracer.StepTask(task)
	case HookPosTaskEnd:
		h.tracer.EndTask(task)
	}
}
