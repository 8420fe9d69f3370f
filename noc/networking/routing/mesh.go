package routing

import (
	"log"

	"github.com/hansikaweerasena/gem5-multi/noc/messaging"
)

// Direction names a neighbor in a 2D mesh.
type Direction int

// Directions in a mesh. Rows grow toward the south.
const (
	East Direction = iota
	West
	North
	South
	numDirections
)

func (d Direction) String() string {
	return [...]string{"East", "West", "North", "South"}[d]
}

// MeshTable routes with dimension-order (X first, then Y) routing. Routers are
// numbered row by row.
type MeshTable struct {
	*StaticTable

	cols       int
	x, y       int
	directions [numDirections]int
}

// NewMeshTable creates a table for the router with the given id in a mesh of
// the given number of columns. All direction ports start undefined.
func NewMeshTable(routerID, cols int) *MeshTable {
	t := &MeshTable{
		StaticTable: NewTable(routerID),
		cols:        cols,
		x:           routerID % cols,
		y:           routerID / cols,
	}

	for i := range t.directions {
		t.directions[i] = -1
	}

	return t
}

// DefineDirection sets the output port toward a neighbor.
func (t *MeshTable) DefineDirection(d Direction, outPort int) {
	t.directions[d] = outPort
}

// FindPort routes along X until the column matches, then along Y.
func (t *MeshTable) FindPort(route messaging.RouteInfo) int {
	if route.DestRouter == t.routerID {
		return t.StaticTable.FindPort(route)
	}

	dx := route.DestRouter % t.cols
	dy := route.DestRouter / t.cols

	var d Direction

	switch {
	case dx > t.x:
		d = East
	case dx < t.x:
		d = West
	case dy < t.y:
		d = North
	default:
		d = South
	}

	out := t.directions[d]
	if out < 0 {
		log.Panicf("router %d has no %s port", t.routerID, d)
	}

	return out
}
