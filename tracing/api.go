// Package tracing lets components report the tasks they work on and lets
// tracers measure them. The network traces every packet copy as a task that
// starts when a network interface queues it and ends at delivery. Routers
// add a step for every packet copy they forward.
package tracing

import (
	"fmt"

	"github.com/hansikaweerasena/gem5-multi/sim"
)

// NamedHookable is a domain that tasks can be reported on.
type NamedHookable interface {
	sim.Named
	sim.Hookable
	InvokeHook(sim.HookCtx)
}

// Hook positions of the task events.
var (
	HookPosTaskStart = &sim.HookPos{Name: "TaskStart"}
	HookPosTaskStep  = &sim.HookPos{Name: "TaskStep"}
	HookPosTaskEnd   = &sim.HookPos{Name: "TaskEnd"}
)

// PacketTaskID names the task of the copy of a packet that goes to one
// network interface.
func PacketTaskID(packetID, destNI int) string {
	return fmt.Sprintf("packet_%d_ni_%d", packetID, destNI)
}

// StartTask reports that a task starts in the domain. The task needs an ID,
// a Kind and a What. An empty Where is filled with the name of the domain.
// Nothing is checked when the domain has no hooks.
func StartTask(domain NamedHookable, task Task) {
	if domain == nil {
		panic("tracing a task without a domain")
	}

	if domain.NumHooks() == 0 {
		return
	}

	if err := validate(task); err != nil {
		panic(fmt.Sprintf("task %q: %v", task.ID, err))
	}

	if task.Where == "" {
		task.Where = domain.Name()
	}

	if task.Where == "" {
		panic(fmt.Sprintf("task %q starts in an unnamed domain", task.ID))
	}

	notify(domain, HookPosTaskStart, task)
}

func validate(task Task) error {
	for field, v := range map[string]string{
		"id":   task.ID,
		"kind": task.Kind,
		"what": task.What,
	} {
		if v == "" {
			return fmt.Errorf("%s is empty", field)
		}
	}

	return nil
}

// AddTaskStep reports that a task passed a milestone, such as a router.
func AddTaskStep(id string, domain NamedHookable, what string) {
	if domain.NumHooks() == 0 {
		return
	}

	notify(domain, HookPosTaskStep, Task{ID: id, Steps: []TaskStep{{What: what}}})
}

// EndTask reports that a task is done.
func EndTask(id string, domain NamedHookable) {
	if domain.NumHooks() == 0 {
		return
	}

	notify(domain, HookPosTaskEnd, Task{ID: id})
}

func notify(domain NamedHookable, pos *sim.HookPos, task Task) {
	domain.InvokeHook(sim.HookCtx{Domain: domain, Pos: pos, Item: task})
}
