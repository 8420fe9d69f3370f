package routing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// Edge is a unidirectional router-to-router connection.
type Edge struct {
	From, To int
	Weight   float64

	// OutPort is the output port at From that the edge leaves through.
	OutPort int
}

// BuildShortestPathTables creates one table per router that routes along
// shortest paths. When several next hops are equally short, the one with the
// lowest output port is taken, so the tables never depend on map order.
func BuildShortestPathTables(numRouters int, edges []Edge) []*StaticTable {
	g := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	for r := 0; r < numRouters; r++ {
		g.AddNode(simple.Node(r))
	}

	outEdges := make([][]Edge, numRouters)
	for _, e := range edges {
		g.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(e.From),
			T: simple.Node(e.To),
			W: e.Weight,
		})
		outEdges[e.From] = append(outEdges[e.From], e)
	}

	for r := range outEdges {
		sort.Slice(outEdges[r], func(i, j int) bool {
			return outEdges[r][i].OutPort < outEdges[r][j].OutPort
		})
	}

	paths, _ := path.FloydWarshall(g)

	tables := make([]*StaticTable, numRouters)
	for src := 0; src < numRouters; src++ {
		tables[src] = NewTable(src)

		for dst := 0; dst < numRouters; dst++ {
			if dst == src {
				continue
			}

			if port, ok := nextHop(paths, outEdges[src], dst); ok {
				tables[src].DefineRoute(dst, port)
			}
		}
	}

	return tables
}

func nextHop(
	paths path.AllShortest,
	candidates []Edge,
	dst int,
) (int, bool) {
	best := math.Inf(1)
	port := -1

	for _, e := range candidates {
		w := e.Weight + paths.Weight(int64(e.To), int64(dst))
		if w < best {
			best = w
			port = e.OutPort
		}
	}

	return port, port >= 0 && !math.IsInf(best, 1)
}
