package router

import (
	"github.com/hansikaweerasena/gem5-multi/noc/networking/flowcontrol"
)

// OutputUnit tracks the virtual channels of the input port at the other end
// of an output link.
type OutputUnit struct {
	router       *Router
	id           int
	outLink      *FlitLink
	inCreditLink *CreditLink
	vcState      []*flowcontrol.OutVCState
}

func newOutputUnit(
	r *Router,
	id int,
	out *FlitLink,
	credit *CreditLink,
) *OutputUnit {
	u := &OutputUnit{
		router:       r,
		id:           id,
		outLink:      out,
		inCreditLink: credit,
	}

	numVCs := r.numVNets * r.vcsPerVNet
	for vc := 0; vc < numVCs; vc++ {
		u.vcState = append(u.vcState,
			flowcontrol.NewOutVCState(vc, r.buffersPerVC))
	}

	return u
}

// ID returns the output port number.
func (u *OutputUnit) ID() int {
	return u.id
}

// VCState returns the state of a downstream virtual channel.
func (u *OutputUnit) VCState(vc int) *flowcontrol.OutVCState {
	return u.vcState[vc]
}

func (u *OutputUnit) wakeup() bool {
	r := u.router
	now := r.CurrentTime()

	if !u.inCreditLink.IsReady(now) {
		return false
	}

	credit := u.inCreditLink.Consume(now)
	u.vcState[credit.VC].IncrementCredit()

	if credit.IsFreeSignal {
		u.vcState[credit.VC].SetState(flowcontrol.VCIdle, now)
	}

	if u.inCreditLink.IsReady(now) {
		r.TickLater()
	}

	return true
}

func (u *OutputUnit) hasFreeVC(vnet int) bool {
	now := u.router.CurrentTime()
	base := vnet * u.router.vcsPerVNet

	for vc := base; vc < base+u.router.vcsPerVNet; vc++ {
		if u.vcState[vc].IsInState(flowcontrol.VCIdle, now) {
			return true
		}
	}

	return false
}

// selectFreeVC activates the first idle virtual channel of a virtual network.
// It returns -1 if there is none.
func (u *OutputUnit) selectFreeVC(vnet int) int {
	now := u.router.CurrentTime()
	base := vnet * u.router.vcsPerVNet

	for vc := base; vc < base+u.router.vcsPerVNet; vc++ {
		if u.vcState[vc].IsInState(flowcontrol.VCIdle, now) {
			u.vcState[vc].SetState(flowcontrol.VCActive, now)
			return vc
		}
	}

	return -1
}

func (u *OutputUnit) hasCredit(vc int) bool {
	return u.vcState[vc].HasCredit()
}

func (u *OutputUnit) decrementCredit(vc int) {
	u.vcState[vc].DecrementCredit()
}
