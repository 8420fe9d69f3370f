package network

import (
	"fmt"
	"log"
	"log/slog"

	"github.com/hansikaweerasena/gem5-multi/config"
	"github.com/hansikaweerasena/gem5-multi/noc/messaging"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/link"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/ni"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/router"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/routing"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/stats"
	"github.com/hansikaweerasena/gem5-multi/sim"
	"github.com/hansikaweerasena/gem5-multi/tracing"
)

type localTable interface {
	routing.Table
	DefineLocalRoute(destNI, outPort int)
}

// Builder can build networks from configurations.
type Builder struct {
	engine  sim.Engine
	logger  *slog.Logger
	tracers []tracing.Tracer
}

// MakeBuilder creates a builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithEngine sets the engine that the network runs on.
func (b Builder) WithEngine(e sim.Engine) Builder {
	b.engine = e
	return b
}

// WithLogger sets the logger of the routers and the network interfaces.
func (b Builder) WithLogger(l *slog.Logger) Builder {
	b.logger = l
	return b
}

// WithTracer attaches a tracer to all the network interfaces, where packets
// are traced from injection to delivery, and to all the routers, which add a
// hop step per packet copy.
func (b Builder) WithTracer(t tracing.Tracer) Builder {
	b.tracers = append(b.tracers, t)
	return b
}

type builder struct {
	Builder

	cfg    config.Config
	n      *Network
	tables []localTable
	edges  []routing.Edge
	ports  []int
}

// Build creates a network with the given name.
func (b Builder) Build(name string, cfg config.Config) (*Network, error) {
	if b.engine == nil {
		return nil, fmt.Errorf("engine is not given")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bb := &builder{
		Builder: b,
		cfg:     cfg,
		n: &Network{
			name:   name,
			layout: cfg.MachineLayout(),
			stats:  stats.New(cfg.Network.VNets),
		},
	}

	if bb.logger == nil {
		bb.logger = slog.Default()
	}

	bb.setOrdering()
	bb.planRouting()
	bb.buildRouters()
	bb.buildNIs()
	bb.connectRouters()

	return bb.n, nil
}

func (b *builder) setOrdering() {
	b.n.ordered = make([]bool, b.cfg.Network.VNets)
	for _, v := range b.cfg.Network.OrderedVNets {
		b.n.ordered[v] = true
	}
}

// planRouting numbers the output ports before any router exists. Every
// router first gets one port per attached node, then one port per
// router-to-router edge, in edge order.
func (b *builder) planRouting() {
	numRouters := b.cfg.NumRouters()
	numNodes := b.cfg.NumNodes()

	b.n.routerOf = make([]int, numNodes)
	b.ports = make([]int, numRouters)

	for node := 0; node < numNodes; node++ {
		r := node % numRouters
		b.n.routerOf[node] = r
		b.ports[r]++
	}

	switch b.cfg.Topology.Kind {
	case config.TopologyMesh:
		b.planMesh()
	case config.TopologyCustom:
		b.planCustom()
	}
}

func (b *builder) planMesh() {
	t := b.cfg.Topology

	for r := 0; r < t.Rows*t.Cols; r++ {
		table := routing.NewMeshTable(r, t.Cols)
		b.tables = append(b.tables, table)

		for d := routing.East; d <= routing.South; d++ {
			nbr, ok := meshNeighbor(r, d, t.Rows, t.Cols)
			if !ok {
				continue
			}

			table.DefineDirection(d, b.ports[r])
			b.edges = append(b.edges, routing.Edge{
				From:    r,
				To:      nbr,
				Weight:  1,
				OutPort: b.ports[r],
			})
			b.ports[r]++
		}
	}
}

func meshNeighbor(r int, d routing.Direction, rows, cols int) (int, bool) {
	x, y := r%cols, r/cols

	switch d {
	case routing.East:
		x++
	case routing.West:
		x--
	case routing.North:
		y--
	case routing.South:
		y++
	}

	if x < 0 || x >= cols || y < 0 || y >= rows {
		return 0, false
	}

	return y*cols + x, true
}

func (b *builder) planCustom() {
	t := b.cfg.Topology

	for _, e := range t.Edges {
		w := e.Weight
		if w == 0 {
			w = 1
		}

		for _, dir := range [][2]int{{e.A, e.B}, {e.B, e.A}} {
			b.edges = append(b.edges, routing.Edge{
				From:    dir[0],
				To:      dir[1],
				Weight:  w,
				OutPort: b.ports[dir[0]],
			})
			b.ports[dir[0]]++
		}
	}

	for _, table := range routing.BuildShortestPathTables(t.Routers, b.edges) {
		b.tables = append(b.tables, table)
	}
}

func (b *builder) buildRouters() {
	net := b.cfg.Network

	rb := router.MakeBuilder().
		WithEngine(b.engine).
		WithNetwork(b.n).
		WithLogger(b.logger).
		WithNumVNets(net.VNets).
		WithVCsPerVNet(net.VCsPerVNet).
		WithBuffersPerVC(net.BuffersPerVC).
		WithPipeStages(net.RouterPipelineStages)

	for id, table := range b.tables {
		r := rb.Build(sim.BuildNameWithIndex(b.n.name, "Router", id), id, table)

		for _, t := range b.tracers {
			tracing.CollectTrace(r, t)
		}

		b.n.routers = append(b.n.routers, r)
	}
}

func (b *builder) niBuilder() ni.Builder {
	net := b.cfg.Network
	mc := b.cfg.Multicast
	syn := b.cfg.Synthetic

	return ni.MakeBuilder().
		WithEngine(b.engine).
		WithNetwork(b.n).
		WithMachineLayout(b.n.layout).
		WithLogger(b.logger).
		WithNumVNets(net.VNets).
		WithVCsPerVNet(net.VCsPerVNet).
		WithBuffersPerVC(net.BuffersPerVC).
		WithDeadlockThreshold(net.DeadlockThreshold).
		WithMessageBufferCapacity(net.MessageBufferSize, net.MessageBufferSize).
		WithMulticast(mc.Enabled).
		WithAuth(ni.AuthConfig{
			MACCycles:       mc.MACCycles,
			VerifyCycles:    mc.VerifyCycles,
			P2PAuthCycles:   mc.P2PAuthCycles,
			P2PVerifyCycles: mc.P2PVerifyCycles,
			TagBytes:        mc.TagBytes,
		}).
		WithSynthetic(ni.SyntheticConfig{
			Enabled: syn.Enabled,
			VNet:    syn.VNet,
			FanOut:  syn.FanOut,
		})
}

func (b *builder) buildNIs() {
	nb := b.niBuilder()

	for node := range b.n.routerOf {
		name := sim.BuildNameWithIndex(b.n.name, "NI", node)
		c := nb.
			WithRandSource(ni.NewStreamRand(
				fmt.Sprintf("%s.%s", b.cfg.RandomStream, name))).
			Build(name, node)

		for _, t := range b.tracers {
			tracing.CollectTrace(c, t)
		}

		b.n.nis = append(b.n.nis, c)
		b.attach(c, node)
	}
}

func (b *builder) newLinks(name string) (*router.FlitLink, *router.CreditLink) {
	net := b.cfg.Network
	latency := sim.VTimeInCycle(net.LinkLatency)

	flits := link.NewLink[*messaging.Flit](name, latency, net.LinkWidth)
	credits := link.NewLink[*messaging.Credit](
		sim.BuildName(name, "Credit"), latency, 1)

	b.n.flitLinks = append(b.n.flitLinks, flits)
	b.n.creditLinks = append(b.n.creditLinks, credits)

	return flits, credits
}

func (b *builder) attach(c *ni.Comp, node int) {
	rID := b.n.routerOf[node]
	r := b.n.routers[rID]

	toRouter, toRouterCredit := b.newLinks(sim.BuildName(c.Name(), "ToRouter"))
	c.AddOutPort(toRouter, toRouterCredit, rID)
	r.AddInPort(toRouter, toRouterCredit)

	fromRouter, fromRouterCredit := b.newLinks(
		sim.BuildName(c.Name(), "FromRouter"))
	out := r.AddOutPort(fromRouter, fromRouterCredit)
	c.AddInPort(fromRouter, fromRouterCredit)

	b.tables[rID].DefineLocalRoute(node, out)
}

func (b *builder) connectRouters() {
	for _, e := range b.edges {
		l, credit := b.newLinks(
			sim.BuildNameWithIndex(b.n.name, "Link", e.From, e.To))

		out := b.n.routers[e.From].AddOutPort(l, credit)
		if out != e.OutPort {
			log.Panicf("router %d: link to router %d got port %d, "+
				"planned %d", e.From, e.To, out, e.OutPort)
		}

		b.n.routers[e.To].AddInPort(l, credit)
	}
}
