// Package routing decides the output port a flit takes at a router.
package routing

import (
	"log"

	"github.com/hansikaweerasena/gem5-multi/noc/messaging"
)

// Table is a routing table that can find the next-hop port according to the
// final destination of a route.
type Table interface {
	FindPort(route messaging.RouteInfo) int
}

// NewTable creates a table that routes by destination router. Destinations
// attached to the router itself are routed by destination network interface.
func NewTable(routerID int) *StaticTable {
	return &StaticTable{
		routerID:    routerID,
		routes:      make(map[int]int),
		local:       make(map[int]int),
		defaultPort: -1,
	}
}

// StaticTable is a table with explicitly defined routes.
type StaticTable struct {
	routerID    int
	routes      map[int]int
	local       map[int]int
	defaultPort int
}

// FindPort returns the output port toward the destination of the route.
func (t *StaticTable) FindPort(route messaging.RouteInfo) int {
	if route.DestRouter == t.routerID {
		out, found := t.local[route.DestNI]
		if !found {
			log.Panicf("router %d has no port to network interface %d",
				t.routerID, route.DestNI)
		}

		return out
	}

	out, found := t.routes[route.DestRouter]
	if found {
		return out
	}

	if t.defaultPort < 0 {
		log.Panicf("router %d has no route to router %d",
			t.routerID, route.DestRouter)
	}

	return t.defaultPort
}

// DefineRoute routes all the traffic to a router through an output port.
func (t *StaticTable) DefineRoute(destRouter, outPort int) {
	t.routes[destRouter] = outPort
}

// DefineLocalRoute routes the traffic to an attached network interface.
func (t *StaticTable) DefineLocalRoute(destNI, outPort int) {
	t.local[destNI] = outPort
}

// DefineDefaultRoute sets the port used when no route matches.
func (t *StaticTable) DefineDefaultRoute(outPort int) {
	t.defaultPort = outPort
}
