package router

import (
	"log/slog"

	"github.com/hansikaweerasena/gem5-multi/noc/networking/routing"
	"github.com/hansikaweerasena/gem5-multi/sim"
)

// Builder can build routers.
type Builder struct {
	engine       sim.Engine
	period       sim.ClockPeriod
	network      Network
	logger       *slog.Logger
	numVNets     int
	vcsPerVNet   int
	buffersPerVC int
	pipeStages   int
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		period:       1,
		numVNets:     3,
		vcsPerVNet:   4,
		buffersPerVC: 4,
		pipeStages:   1,
	}
}

// WithEngine sets the engine that the router uses.
func (b Builder) WithEngine(e sim.Engine) Builder {
	b.engine = e
	return b
}

// WithClockPeriod sets the number of cycles between two ticks.
func (b Builder) WithClockPeriod(p sim.ClockPeriod) Builder {
	b.period = p
	return b
}

// WithNetwork sets the network that the router belongs to.
func (b Builder) WithNetwork(n Network) Builder {
	b.network = n
	return b
}

// WithLogger sets the logger for debug records.
func (b Builder) WithLogger(l *slog.Logger) Builder {
	b.logger = l
	return b
}

// WithNumVNets sets the number of virtual networks.
func (b Builder) WithNumVNets(n int) Builder {
	b.numVNets = n
	return b
}

// WithVCsPerVNet sets the number of virtual channels per virtual network.
func (b Builder) WithVCsPerVNet(n int) Builder {
	b.vcsPerVNet = n
	return b
}

// WithBuffersPerVC sets the number of flits a virtual channel buffers.
func (b Builder) WithBuffersPerVC(n int) Builder {
	b.buffersPerVC = n
	return b
}

// WithPipeStages sets the number of cycles a flit spends in the router before
// it can leave.
func (b Builder) WithPipeStages(n int) Builder {
	b.pipeStages = n
	return b
}

// Build creates a router.
func (b Builder) Build(name string, id int, table routing.Table) *Router {
	b.mustBeValid()

	r := &Router{
		id:           id,
		network:      b.network,
		table:        table,
		logger:       b.logger,
		numVNets:     b.numVNets,
		vcsPerVNet:   b.vcsPerVNet,
		buffersPerVC: b.buffersPerVC,
		pipeStages:   b.pipeStages,
	}
	r.TickingComponent = sim.NewTickingComponent(name, b.engine, b.period, r)

	if r.logger == nil {
		r.logger = slog.Default()
	}

	r.allocator = newSwitchAllocator(r)
	r.crossbar = newCrossbar(r)

	return r
}

func (b Builder) mustBeValid() {
	if b.engine == nil {
		panic("engine is not given")
	}

	if b.network == nil {
		panic("network is not given")
	}

	if b.pipeStages < 1 {
		panic("a router needs at least one pipeline stage")
	}

	if b.numVNets <= 0 || b.vcsPerVNet <= 0 || b.buffersPerVC <= 0 {
		panic("vnets, vcs per vnet and buffers per vc must be positive")
	}
}
