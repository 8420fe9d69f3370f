// Package link models the physical wires between network interfaces and
// routers. A link carries flits or credits and wakes up the receiving side
// when an item arrives.
package link

import (
	"log"

	"github.com/hansikaweerasena/gem5-multi/sim"
)

type inFlight[T any] struct {
	item  T
	ready sim.VTimeInCycle
}

// Link is a unidirectional, pipelined wire.
type Link[T any] struct {
	sim.HookableBase

	name       string
	latency    sim.VTimeInCycle
	width      int
	vcsPerVNet int
	consumer   sim.Consumer

	items       []inFlight[T]
	utilization uint64
}

// NewLink creates a link. Items take latency cycles to cross the link. The
// width is the number of bytes the link carries in one cycle.
func NewLink[T any](
	name string,
	latency sim.VTimeInCycle,
	width int,
) *Link[T] {
	sim.NameMustBeValid(name)

	if latency == 0 {
		log.Panicf("link %s must have a latency of at least 1 cycle", name)
	}

	return &Link[T]{
		name:    name,
		latency: latency,
		width:   width,
	}
}

// Name returns the name of the link.
func (l *Link[T]) Name() string {
	return l.name
}

// SetConsumer sets the component that receives the items.
func (l *Link[T]) SetConsumer(c sim.Consumer) {
	l.consumer = c
}

// Latency returns the number of cycles an item spends on the link.
func (l *Link[T]) Latency() sim.VTimeInCycle {
	return l.latency
}

// Width returns the number of bytes the link carries in one cycle.
func (l *Link[T]) Width() int {
	return l.width
}

// SetVCsPerVNet sets the number of virtual channels per virtual network the
// receiving side provides.
func (l *Link[T]) SetVCsPerVNet(n int) {
	l.vcsPerVNet = n
}

// VCsPerVNet returns the number of virtual channels per virtual network.
func (l *Link[T]) VCsPerVNet() int {
	return l.vcsPerVNet
}

// Send puts an item on the link at time t. The item arrives latency cycles
// later.
func (l *Link[T]) Send(item T, t sim.VTimeInCycle) {
	ready := t + l.latency

	n := len(l.items)
	if n > 0 && l.items[n-1].ready > ready {
		log.Panicf("link %s items overtake each other", l.name)
	}

	l.items = append(l.items, inFlight[T]{item: item, ready: ready})
	l.utilization++

	if l.NumHooks() > 0 {
		l.InvokeHook(sim.HookCtx{
			Domain: l,
			Pos:    sim.HookPosBufPush,
			Item:   item,
		})
	}

	if l.consumer != nil {
		l.consumer.TickAt(ready)
	}
}

// IsReady tells if an item has arrived by time t.
func (l *Link[T]) IsReady(t sim.VTimeInCycle) bool {
	return len(l.items) > 0 && l.items[0].ready <= t
}

// Consume removes the item that has arrived first.
func (l *Link[T]) Consume(t sim.VTimeInCycle) T {
	if !l.IsReady(t) {
		log.Panicf("link %s has nothing to consume at %d", l.name, t)
	}

	item := l.items[0].item
	l.items[0] = inFlight[T]{}
	l.items = l.items[1:]

	if l.NumHooks() > 0 {
		l.InvokeHook(sim.HookCtx{
			Domain: l,
			Pos:    sim.HookPosBufPop,
			Item:   item,
		})
	}

	return item
}

// InFlight returns the number of items on the link.
func (l *Link[T]) InFlight() int {
	return len(l.items)
}

// Utilization returns the number of items ever sent.
func (l *Link[T]) Utilization() uint64 {
	return l.utilization
}
