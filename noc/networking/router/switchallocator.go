package router

import (
	"fmt"
	"log"

	"github.com/hansikaweerasena/gem5-multi/noc/messaging"
	"github.com/hansikaweerasena/gem5-multi/tracing"
)

// SwitchAllocator grants output ports to input virtual channels in two
// stages. The first stage picks one virtual channel per input port. The second
// stage picks one input port per output port. A flit that goes to several
// output ports may win several of them in the same cycle. Every win but the
// last one branches a copy of the flit off.
type SwitchAllocator struct {
	router *Router

	roundRobinInPort []int
	roundRobinInVC   []int
	portRequests     [][]OutInfo
	vcWinners        []int

	inputArbiterActivity  uint64
	outputArbiterActivity uint64
}

func newSwitchAllocator(r *Router) *SwitchAllocator {
	return &SwitchAllocator{router: r}
}

// init sizes the arbiters once all the ports are connected.
func (a *SwitchAllocator) init() {
	numIn := len(a.router.inputUnits)
	numOut := len(a.router.outputUnits)

	a.roundRobinInPort = make([]int, numOut)
	a.roundRobinInVC = make([]int, numIn)
	a.portRequests = make([][]OutInfo, numIn)
	a.vcWinners = make([]int, numIn)

	for i := range a.vcWinners {
		a.vcWinners[i] = -1
	}
}

// InputArbiterActivity returns the number of first stage wins.
func (a *SwitchAllocator) InputArbiterActivity() uint64 {
	return a.inputArbiterActivity
}

// OutputArbiterActivity returns the number of grants.
func (a *SwitchAllocator) OutputArbiterActivity() uint64 {
	return a.outputArbiterActivity
}

func (a *SwitchAllocator) numVCs() int {
	return a.router.numVNets * a.router.vcsPerVNet
}

func (a *SwitchAllocator) vnetOf(vc int) int {
	vnet := vc / a.router.vcsPerVNet
	if vnet >= a.router.numVNets {
		log.Panicf("%s: vc %d is beyond the last vnet", a.router.Name(), vc)
	}

	return vnet
}

func (a *SwitchAllocator) wakeup() bool {
	a.arbitrateInPorts()
	granted := a.arbitrateOutPorts()

	a.clearRequestVector()
	a.checkForWakeup()

	return granted
}

func (a *SwitchAllocator) arbitrateInPorts() {
	r := a.router
	now := r.CurrentTime()
	numVCs := a.numVCs()

	for inport, iu := range r.inputUnits {
		invc := a.roundRobinInVC[inport]

		for i := 0; i < numVCs; i++ {
			if iu.needStage(invc, messaging.StageSA, now) {
				if a.makeRequest(inport, invc) {
					break
				}
			}

			invc++
			if invc >= numVCs {
				invc = 0
			}
		}
	}
}

func (a *SwitchAllocator) makeRequest(inport, invc int) bool {
	r := a.router
	outInfo := r.inputUnits[inport].outInfo(invc)

	fanOut := 0
	for _, info := range outInfo {
		if len(info.Routes) > 0 {
			fanOut++
		}
	}

	request := make([]OutInfo, len(outInfo))
	made := false

	for outport, info := range outInfo {
		request[outport] = emptyOutInfo()

		if len(info.Routes) == 0 {
			continue
		}

		if a.sendAllowed(inport, invc, outport, info.OutVC, fanOut) {
			request[outport] = info
			made = true
		}
	}

	if !made {
		return false
	}

	a.inputArbiterActivity++
	a.portRequests[inport] = request
	a.vcWinners[inport] = invc

	return true
}

func (a *SwitchAllocator) isOutPortRequested(inport, outport int) bool {
	request := a.portRequests[inport]

	return len(request) != 0 && len(request[outport].Routes) != 0
}

func (a *SwitchAllocator) arbitrateOutPorts() bool {
	r := a.router
	numIn := len(r.inputUnits)
	granted := false

	for outport := range r.outputUnits {
		inport := a.roundRobinInPort[outport]

		for i := 0; i < numIn; i++ {
			if a.isOutPortRequested(inport, outport) {
				a.grant(inport, outport)
				granted = true

				break
			}

			inport++
			if inport >= numIn {
				inport = 0
			}
		}
	}

	return granted
}

func (a *SwitchAllocator) grant(inport, outport int) {
	r := a.router
	now := r.CurrentTime()
	iu := r.inputUnits[inport]
	ou := r.outputUnits[outport]
	invc := a.vcWinners[inport]

	info := iu.outInfo(invc)[outport]
	if info.OutVC == -1 {
		info = a.vcAllocate(info, outport, inport, invc)
	}

	peek := iu.peekTopFlit(invc)
	isLast := peek.EffDest == len(info.Routes)

	var f *messaging.Flit
	if isLast {
		f = iu.getTopFlit(invc)
		f.Msgs = info.Msgs
		f.Routes = info.Routes
	} else {
		peek.EffDest -= len(info.Routes)
		f = peek.Branch(info.Routes, info.Msgs, info.OutVC, now)
	}

	f.OutPort = outport
	f.VC = info.OutVC
	ou.decrementCredit(info.OutVC)

	f.AdvanceStage(messaging.StageST, now)
	r.crossbar.grant(inport, f)
	a.outputArbiterActivity++
	a.traceHop(f)

	r.logger.Debug("grant",
		"router", r.Name(), "inport", inport, "invc", invc,
		"outport", outport, "outvc", info.OutVC, "last", isLast,
		"flit", f.String())

	if isLast {
		if f.IsTail() {
			if iu.isReady(invc, now) {
				log.Panicf("%s: vc %d of inport %d is not empty after tail",
					r.Name(), invc, inport)
			}

			iu.setVCIdle(invc, now)
			iu.sendCredit(invc, true)
		} else {
			iu.sendCredit(invc, false)
		}
	} else {
		iu.clearOutInfo(invc, outport)
	}

	a.portRequests[inport][outport] = emptyOutInfo()

	a.roundRobinInPort[outport] = inport + 1
	if a.roundRobinInPort[outport] >= len(r.inputUnits) {
		a.roundRobinInPort[outport] = 0
	}

	a.roundRobinInVC[inport] = invc + 1
	if a.roundRobinInVC[inport] >= a.numVCs() {
		a.roundRobinInVC[inport] = 0
	}
}

// traceHop adds a router step to the packet task of every destination a head
// flit carries on.
func (a *SwitchAllocator) traceHop(f *messaging.Flit) {
	r := a.router
	if !f.IsHead() || r.NumHooks() == 0 {
		return
	}

	for _, route := range f.Routes {
		tracing.AddTaskStep(
			tracing.PacketTaskID(f.PacketID, route.DestNI), r, "router")
	}
}

// sendAllowed tells if the head flit of an input virtual channel can go to an
// output port. The flit needs an output virtual channel and a credit on it.
func (a *SwitchAllocator) sendAllowed(
	inport, invc, outport, outvc, fanOut int,
) bool {
	r := a.router
	vnet := a.vnetOf(invc)
	ou := r.outputUnits[outport]

	hasOutVC := outvc != -1
	hasCredit := false

	if !hasOutVC {
		if ou.hasFreeVC(vnet) {
			hasOutVC = true

			// Every vc has at least one buffer.
			hasCredit = true
		}
	} else {
		hasCredit = ou.hasCredit(outvc)
	}

	if !hasOutVC || !hasCredit {
		return false
	}

	if !r.network.IsVNetOrdered(vnet) {
		return true
	}

	if fanOut > 1 {
		panic(fmt.Errorf("%s: vnet %d: %w", r.Name(), vnet, ErrOrderedMulticast))
	}

	return a.isOldestForPort(inport, invc, outport, vnet)
}

func (a *SwitchAllocator) isOldestForPort(inport, invc, outport, vnet int) bool {
	r := a.router
	now := r.CurrentTime()
	iu := r.inputUnits[inport]
	enqueueTime := iu.enqueueTime(invc)
	base := vnet * r.vcsPerVNet

	for vc := base; vc < base+r.vcsPerVNet; vc++ {
		if iu.needStage(vc, messaging.StageSA, now) &&
			iu.requestsPort(vc, outport) &&
			iu.enqueueTime(vc) < enqueueTime {
			return false
		}
	}

	return true
}

// vcAllocate gives the winner of an output port a free virtual channel of the
// port.
func (a *SwitchAllocator) vcAllocate(
	info OutInfo,
	outport, inport, invc int,
) OutInfo {
	r := a.router

	outvc := r.outputUnits[outport].selectFreeVC(a.vnetOf(invc))
	if outvc == -1 {
		log.Panicf("%s: no free vc at outport %d after it was checked",
			r.Name(), outport)
	}

	info.OutVC = outvc
	r.inputUnits[inport].setOutVC(invc, outport, outvc)

	return info
}

func (a *SwitchAllocator) clearRequestVector() {
	for i := range a.portRequests {
		a.portRequests[i] = nil
	}
}

// checkForWakeup ticks the router in the next cycle if a flit will need
// switch allocation then.
func (a *SwitchAllocator) checkForWakeup() {
	r := a.router
	next := r.ClockEdge(1)

	if r.IsScheduled(next) {
		return
	}

	for _, iu := range r.inputUnits {
		for vc := 0; vc < a.numVCs(); vc++ {
			if iu.needStage(vc, messaging.StageSA, next) {
				r.TickAt(next)
				return
			}
		}
	}
}
