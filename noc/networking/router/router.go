// Package router provides the routers of a network-on-chip. A router buffers
// incoming flits per virtual channel, allocates its crossbar with a separable
// switch allocator and branches multicast flits on the way.
package router

import (
	"errors"
	"log/slog"

	"github.com/hansikaweerasena/gem5-multi/noc/messaging"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/link"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/routing"
	"github.com/hansikaweerasena/gem5-multi/sim"
)

// ErrOrderedMulticast is the panic value cause when a flit of an ordered
// virtual network needs more than one output port.
var ErrOrderedMulticast = errors.New(
	"ordered vnets cannot carry multicast flits")

// FlitLink is a link that carries flits.
type FlitLink = link.Link[*messaging.Flit]

// CreditLink is a link that carries credits.
type CreditLink = link.Link[*messaging.Credit]

// Network provides the services that are shared by all the routers of a
// network.
type Network interface {
	IsVNetOrdered(vnet int) bool
}

// Router is a network-on-chip router.
type Router struct {
	*sim.TickingComponent

	id      int
	network Network
	table   routing.Table
	logger  *slog.Logger

	numVNets     int
	vcsPerVNet   int
	buffersPerVC int
	pipeStages   int

	inputUnits  []*InputUnit
	outputUnits []*OutputUnit
	allocator   *SwitchAllocator
	crossbar    *Crossbar
	initialized bool
}

// ID returns the router id.
func (r *Router) ID() int {
	return r.id
}

// InputUnit returns the input unit of a port.
func (r *Router) InputUnit(port int) *InputUnit {
	return r.inputUnits[port]
}

// OutputUnit returns the output unit of a port.
func (r *Router) OutputUnit(port int) *OutputUnit {
	return r.outputUnits[port]
}

// NumInPorts returns the number of input ports.
func (r *Router) NumInPorts() int {
	return len(r.inputUnits)
}

// NumOutPorts returns the number of output ports.
func (r *Router) NumOutPorts() int {
	return len(r.outputUnits)
}

// SwitchAllocator returns the switch allocator of the router.
func (r *Router) SwitchAllocator() *SwitchAllocator {
	return r.allocator
}

// Crossbar returns the crossbar of the router.
func (r *Router) Crossbar() *Crossbar {
	return r.crossbar
}

// Buffers returns the virtual channel buffers and the switch buffers.
func (r *Router) Buffers() []sim.BufferStatus {
	var bufs []sim.BufferStatus
	for _, u := range r.inputUnits {
		for _, vc := range u.vcs {
			bufs = append(bufs, vc.buffer)
		}
	}

	for _, b := range r.crossbar.buffers {
		bufs = append(bufs, b)
	}

	return bufs
}

// AddInPort connects a link that brings flits into the router. Credits of
// the port's virtual channels go back through the credit link. It returns
// the port number.
func (r *Router) AddInPort(in *FlitLink, credit *CreditLink) int {
	r.mustNotBeInitialized()

	id := len(r.inputUnits)
	in.SetConsumer(r)
	r.inputUnits = append(r.inputUnits, newInputUnit(r, id, in, credit))
	r.crossbar.addInPort(id)

	return id
}

// AddOutPort connects a link that carries flits out of the router. Credits
// come back through the credit link. It returns the port number, which is
// what the routing table refers to.
func (r *Router) AddOutPort(out *FlitLink, credit *CreditLink) int {
	r.mustNotBeInitialized()

	id := len(r.outputUnits)
	out.SetVCsPerVNet(r.vcsPerVNet)
	credit.SetConsumer(r)
	r.outputUnits = append(r.outputUnits, newOutputUnit(r, id, out, credit))

	return id
}

func (r *Router) mustNotBeInitialized() {
	if r.initialized {
		panic("cannot add ports to a router that has started")
	}
}

// Tick runs one cycle of the router.
func (r *Router) Tick() bool {
	r.Lock()
	defer r.Unlock()

	if !r.initialized {
		r.allocator.init()
		r.initialized = true
	}

	madeProgress := false

	for _, u := range r.inputUnits {
		madeProgress = u.wakeup() || madeProgress
	}

	for _, u := range r.outputUnits {
		madeProgress = u.wakeup() || madeProgress
	}

	madeProgress = r.allocator.wakeup() || madeProgress
	madeProgress = r.crossbar.wakeup() || madeProgress

	return madeProgress
}
