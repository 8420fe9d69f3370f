package router

import (
	"log"

	"github.com/hansikaweerasena/gem5-multi/noc/messaging"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/flowcontrol"
	"github.com/hansikaweerasena/gem5-multi/sim"
)

// OutInfo is what a buffered flit needs from one output port: the routes and
// the messages that leave through the port, and the output virtual channel
// they use. An OutInfo without routes makes no request.
type OutInfo struct {
	OutVC  int
	Routes []messaging.RouteInfo
	Msgs   []messaging.Msg
}

func emptyOutInfo() OutInfo {
	return OutInfo{OutVC: -1}
}

type inputVC struct {
	state  flowcontrol.VCState
	since  sim.VTimeInCycle
	buffer *messaging.FlitBuffer

	// outInfos holds the per-port requests of every buffered flit, in buffer
	// order.
	outInfos [][]OutInfo

	// outVC remembers, per output port, the virtual channel the current
	// packet was given.
	outVC []int
}

func (vc *inputVC) resetOutVCs() {
	for i := range vc.outVC {
		vc.outVC[i] = -1
	}
}

// InputUnit buffers the flits that arrive through one input port of a router.
type InputUnit struct {
	router        *Router
	id            int
	inLink        *FlitLink
	outCreditLink *CreditLink
	vcs           []*inputVC
}

func newInputUnit(
	r *Router,
	id int,
	in *FlitLink,
	credit *CreditLink,
) *InputUnit {
	u := &InputUnit{
		router:        r,
		id:            id,
		inLink:        in,
		outCreditLink: credit,
	}

	numVCs := r.numVNets * r.vcsPerVNet
	for i := 0; i < numVCs; i++ {
		u.vcs = append(u.vcs, &inputVC{
			state: flowcontrol.VCIdle,
			buffer: messaging.NewFlitBuffer(
				sim.BuildNameWithIndex(r.Name(), "InVC", id, i),
				r.buffersPerVC),
		})
	}

	return u
}

// ID returns the input port number.
func (u *InputUnit) ID() int {
	return u.id
}

// NumFlits returns the number of flits buffered in a virtual channel.
func (u *InputUnit) NumFlits(vc int) int {
	return u.vcs[vc].buffer.Size()
}

// IsVCIdle tells if a virtual channel holds no packet.
func (u *InputUnit) IsVCIdle(vc int) bool {
	return u.vcs[vc].state == flowcontrol.VCIdle
}

func (u *InputUnit) wakeup() bool {
	r := u.router
	now := r.CurrentTime()

	if !u.inLink.IsReady(now) {
		return false
	}

	f := u.inLink.Consume(now)
	f.Time = now
	vc := u.vcs[f.VC]

	if f.IsHead() {
		if vc.state != flowcontrol.VCIdle {
			log.Panicf("%s: head flit %s arrives at busy vc %d",
				r.Name(), f, f.VC)
		}

		u.setVCActive(f.VC, now)
	} else if vc.state != flowcontrol.VCActive {
		log.Panicf("%s: flit %s arrives at idle vc %d", r.Name(), f, f.VC)
	}

	vc.buffer.Insert(f)
	vc.outInfos = append(vc.outInfos, u.routeCompute(f))

	if r.pipeStages == 1 {
		f.AdvanceStage(messaging.StageSA, now)
	} else {
		wait := r.pipeStages - 1
		f.AdvanceStage(messaging.StageSA, r.ClockEdge(wait))
		r.TickAt(r.ClockEdge(wait))
	}

	if u.inLink.IsReady(now) {
		r.TickLater()
	}

	return true
}

// routeCompute groups the routes of a flit by the output port they take.
func (u *InputUnit) routeCompute(f *messaging.Flit) []OutInfo {
	r := u.router
	outInfos := make([]OutInfo, len(r.outputUnits))

	for i := range outInfos {
		outInfos[i] = emptyOutInfo()
	}

	for i := range f.Routes {
		f.Routes[i].HopsTraversed++

		port := r.table.FindPort(f.Routes[i])
		if port < 0 || port >= len(outInfos) {
			log.Panicf("%s: route to ni %d uses missing port %d",
				r.Name(), f.Routes[i].DestNI, port)
		}

		outInfos[port].Routes = append(outInfos[port].Routes, f.Routes[i])
		outInfos[port].Msgs = append(outInfos[port].Msgs, f.Msgs[i])
	}

	return outInfos
}

func (u *InputUnit) setVCActive(vc int, t sim.VTimeInCycle) {
	v := u.vcs[vc]
	v.state = flowcontrol.VCActive
	v.since = t

	if v.outVC == nil {
		v.outVC = make([]int, len(u.router.outputUnits))
	}

	v.resetOutVCs()
}

func (u *InputUnit) setVCIdle(vc int, t sim.VTimeInCycle) {
	v := u.vcs[vc]
	v.state = flowcontrol.VCIdle
	v.since = t
	v.resetOutVCs()
}

func (u *InputUnit) enqueueTime(vc int) sim.VTimeInCycle {
	return u.vcs[vc].since
}

// needStage tells if the head flit of a virtual channel is ready for a
// pipeline stage at time t.
func (u *InputUnit) needStage(
	vc int,
	stage messaging.FlitStage,
	t sim.VTimeInCycle,
) bool {
	v := u.vcs[vc]
	if !v.buffer.IsReady(t) {
		return false
	}

	return v.buffer.Peek().IsStage(stage, t)
}

func (u *InputUnit) isReady(vc int, t sim.VTimeInCycle) bool {
	return u.vcs[vc].buffer.IsReady(t)
}

// outInfo returns the requests of the head flit of a virtual channel.
func (u *InputUnit) outInfo(vc int) []OutInfo {
	v := u.vcs[vc]
	infos := make([]OutInfo, len(v.outInfos[0]))

	for port, info := range v.outInfos[0] {
		info.OutVC = v.outVC[port]
		infos[port] = info
	}

	return infos
}

// requestsPort tells if the head flit of a virtual channel still needs an
// output port.
func (u *InputUnit) requestsPort(vc, port int) bool {
	v := u.vcs[vc]
	if len(v.outInfos) == 0 {
		return false
	}

	return len(v.outInfos[0][port].Routes) > 0
}

func (u *InputUnit) setOutVC(vc, port, outVC int) {
	u.vcs[vc].outVC[port] = outVC
}

// clearOutInfo drops the request of the head flit for an output port.
func (u *InputUnit) clearOutInfo(vc, port int) {
	u.vcs[vc].outInfos[0][port] = emptyOutInfo()
}

func (u *InputUnit) peekTopFlit(vc int) *messaging.Flit {
	return u.vcs[vc].buffer.Peek()
}

func (u *InputUnit) getTopFlit(vc int) *messaging.Flit {
	v := u.vcs[vc]
	v.outInfos[0] = nil
	v.outInfos = v.outInfos[1:]

	return v.buffer.Pop()
}

// sendCredit returns a buffer slot of a virtual channel to the upstream
// router.
func (u *InputUnit) sendCredit(vc int, free bool) {
	credit := &messaging.Credit{VC: vc, IsFreeSignal: free}
	u.outCreditLink.Send(credit, u.router.ClockEdge(1))
}
