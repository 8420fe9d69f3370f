// Package network assembles routers, network interfaces and links into a
// complete network-on-chip.
package network

import (
	"github.com/hansikaweerasena/gem5-multi/noc/messaging"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/ni"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/router"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/stats"
	"github.com/hansikaweerasena/gem5-multi/sim"
)

// Network is a network-on-chip. It hands out packet ids and knows which
// router each network interface is attached to.
type Network struct {
	name         string
	layout       messaging.MachineLayout
	ordered      []bool
	nextPacketID int
	routerOf     []int
	stats        *stats.Stats

	nis         []*ni.Comp
	routers     []*router.Router
	flitLinks   []*router.FlitLink
	creditLinks []*router.CreditLink
}

// Name returns the name of the network.
func (n *Network) Name() string {
	return n.name
}

// NextPacketID returns a network-wide unique packet id.
func (n *Network) NextPacketID() int {
	id := n.nextPacketID
	n.nextPacketID++

	return id
}

// RouterOf returns the router that a node is attached to. All the virtual
// networks of a node share its router.
func (n *Network) RouterOf(node, _ int) int {
	return n.routerOf[node]
}

// IsVNetOrdered tells if a virtual network delivers messages in order.
func (n *Network) IsVNetOrdered(vnet int) bool {
	return n.ordered[vnet]
}

// Stats returns the counters of the network.
func (n *Network) Stats() *stats.Stats {
	return n.stats
}

// Layout returns how node ids map to machines.
func (n *Network) Layout() messaging.MachineLayout {
	return n.layout
}

// NumVNets returns the number of virtual networks.
func (n *Network) NumVNets() int {
	return len(n.ordered)
}

// NI returns the network interface of a node.
func (n *Network) NI(node int) *ni.Comp {
	return n.nis[node]
}

// NIs returns all the network interfaces, ordered by node id.
func (n *Network) NIs() []*ni.Comp {
	return n.nis
}

// Routers returns all the routers, ordered by router id.
func (n *Network) Routers() []*router.Router {
	return n.routers
}

// Components returns every ticking component of the network.
func (n *Network) Components() []sim.Component {
	comps := make([]sim.Component, 0, len(n.nis)+len(n.routers))
	for _, c := range n.nis {
		comps = append(comps, c)
	}

	for _, r := range n.routers {
		comps = append(comps, r)
	}

	return comps
}

// LinkUtilization returns the number of flits carried by all the flit links.
func (n *Network) LinkUtilization() uint64 {
	var total uint64
	for _, l := range n.flitLinks {
		total += l.Utilization()
	}

	return total
}

// InFlight returns the number of flits and credits on the links.
func (n *Network) InFlight() int {
	total := 0
	for _, l := range n.flitLinks {
		total += l.InFlight()
	}

	for _, l := range n.creditLinks {
		total += l.InFlight()
	}

	return total
}
