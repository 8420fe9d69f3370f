package router

import (
	"github.com/hansikaweerasena/gem5-multi/noc/messaging"
	"github.com/hansikaweerasena/gem5-multi/sim"
)

// Crossbar moves the flits that won switch allocation to their output links.
// Branches of a multicast flit leave through different ports in the same
// cycle.
type Crossbar struct {
	router   *Router
	buffers  []*messaging.FlitBuffer
	activity uint64
}

func newCrossbar(r *Router) *Crossbar {
	return &Crossbar{router: r}
}

func (x *Crossbar) addInPort(id int) {
	x.buffers = append(x.buffers, messaging.NewFlitBuffer(
		sim.BuildNameWithIndex(x.router.Name(), "SwitchBuffer", id), 0))
}

// grant puts a flit that won switch allocation into the buffer of its input
// port.
func (x *Crossbar) grant(inport int, f *messaging.Flit) {
	x.buffers[inport].Insert(f)
}

// Activity returns the number of flits that traversed the crossbar.
func (x *Crossbar) Activity() uint64 {
	return x.activity
}

func (x *Crossbar) wakeup() bool {
	r := x.router
	now := r.CurrentTime()
	madeProgress := false

	for _, b := range x.buffers {
		for b.IsReady(now) && b.Peek().IsStage(messaging.StageST, now) {
			f := b.Pop()
			next := r.ClockEdge(1)

			f.AdvanceStage(messaging.StageLT, next)
			f.Time = next

			r.outputUnits[f.OutPort].outLink.Send(f, next)
			x.activity++
			madeProgress = true
		}
	}

	return madeProgress
}
