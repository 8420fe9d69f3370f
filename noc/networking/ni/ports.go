package ni

import (
	"slices"

	"github.com/hansikaweerasena/gem5-multi/noc/messaging"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/link"
)

// FlitLink is a link that carries flits.
type FlitLink = link.Link[*messaging.Flit]

// CreditLink is a link that carries credits.
type CreditLink = link.Link[*messaging.Credit]

// An InputPort receives flits from a router and returns credits to it.
type InputPort struct {
	inLink        *FlitLink
	outCreditLink *CreditLink
	vnets         []int

	stallQueue               []*messaging.Flit
	messageEnqueuedThisCycle bool
}

// InLink returns the link that flits arrive on.
func (p *InputPort) InLink() *FlitLink {
	return p.inLink
}

// OutCreditLink returns the link that credits leave on.
func (p *InputPort) OutCreditLink() *CreditLink {
	return p.outCreditLink
}

// NumStalled returns the number of tail flits waiting for space in the
// protocol buffers.
func (p *InputPort) NumStalled() int {
	return len(p.stallQueue)
}

// SupportsVNet tells if the port carries a virtual network. A port created
// without a virtual network list carries all of them.
func (p *InputPort) SupportsVNet(vnet int) bool {
	return len(p.vnets) == 0 || slices.Contains(p.vnets, vnet)
}

// An OutputPort sends flits to a router and receives credits from it.
type OutputPort struct {
	outLink      *FlitLink
	inCreditLink *CreditLink
	routerID     int
	vnets        []int

	vcRoundRobin int
}

// OutLink returns the link that flits leave on.
func (p *OutputPort) OutLink() *FlitLink {
	return p.outLink
}

// InCreditLink returns the link that credits arrive on.
func (p *OutputPort) InCreditLink() *CreditLink {
	return p.inCreditLink
}

// RouterID returns the router the port connects to.
func (p *OutputPort) RouterID() int {
	return p.routerID
}

// SupportsVNet tells if the port carries a virtual network. A port created
// without a virtual network list carries all of them.
func (p *OutputPort) SupportsVNet(vnet int) bool {
	return len(p.vnets) == 0 || slices.Contains(p.vnets, vnet)
}
