package ni

import (
	"fmt"
	"log/slog"

	"github.com/hansikaweerasena/gem5-multi/noc/messaging"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/flowcontrol"
	"github.com/hansikaweerasena/gem5-multi/sim"
)

// DefaultLookAhead is the number of cycles a network interface looks ahead
// for flits that become ready before it stops ticking.
const DefaultLookAhead = 100

// Builder can build network interfaces.
type Builder struct {
	engine            sim.Engine
	period            sim.ClockPeriod
	network           Network
	layout            messaging.MachineLayout
	rand              RandSource
	logger            *slog.Logger
	numVNets          int
	vcsPerVNet        int
	buffersPerVC      int
	deadlockThreshold int
	multicast         bool
	auth              AuthConfig
	synthetic         SyntheticConfig
	inNodeCapacity    int
	outNodeCapacity   int
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		period:            1,
		numVNets:          3,
		vcsPerVNet:        4,
		buffersPerVC:      4,
		deadlockThreshold: 50000,
		multicast:         true,
		auth: AuthConfig{
			MACCycles:       20,
			VerifyCycles:    20,
			P2PAuthCycles:   10,
			P2PVerifyCycles: 10,
		},
		synthetic: SyntheticConfig{
			VNet:   0,
			FanOut: 8,
		},
	}
}

// WithEngine sets the engine that the network interface uses.
func (b Builder) WithEngine(e sim.Engine) Builder {
	b.engine = e
	return b
}

// WithClockPeriod sets the number of cycles between two ticks.
func (b Builder) WithClockPeriod(p sim.ClockPeriod) Builder {
	b.period = p
	return b
}

// WithNetwork sets the network that the network interface belongs to.
func (b Builder) WithNetwork(n Network) Builder {
	b.network = n
	return b
}

// WithMachineLayout sets how node ids map to machines.
func (b Builder) WithMachineLayout(l messaging.MachineLayout) Builder {
	b.layout = l
	return b
}

// WithRandSource sets the source of the synthetic destinations.
func (b Builder) WithRandSource(r RandSource) Builder {
	b.rand = r
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

// WithBuffersPerVC sets the number of flits a router buffers per virtual
// channel, which is the number of credits of an outgoing virtual channel.
func (b Builder) WithBuffersPerVC(n int) Builder {
	b.buffersPerVC = n
	return b
}

// WithDeadlockThreshold sets the number of failed virtual channel allocations
// that are tolerated before a deadlock is declared.
func (b Builder) WithDeadlockThreshold(n int) Builder {
	b.deadlockThreshold = n
	return b
}

// WithMulticast selects whether a message to several destinations is sent as
// one multicast packet or as one packet per destination.
func (b Builder) WithMulticast(enabled bool) Builder {
	b.multicast = enabled
	return b
}

// WithAuth sets the authentication costs.
func (b Builder) WithAuth(a AuthConfig) Builder {
	b.auth = a
	return b
}

// WithSynthetic sets the synthetic multicast expansion.
func (b Builder) WithSynthetic(s SyntheticConfig) Builder {
	b.synthetic = s
	return b
}

// WithMessageBufferCapacity sets the capacities of the protocol buffers. Non
// positive values make the buffers unbounded.
func (b Builder) WithMessageBufferCapacity(in, out int) Builder {
	b.inNodeCapacity = in
	b.outNodeCapacity = out

	return b
}

// Build creates a network interface with the given node id.
func (b Builder) Build(name string, id int) *Comp {
	b.mustBeValid()

	c := &Comp{
		id:                id,
		network:           b.network,
		layout:            b.layout,
		rand:              b.rand,
		logger:            b.logger,
		numVNets:          b.numVNets,
		vcsPerVNet:        b.vcsPerVNet,
		deadlockThreshold: b.deadlockThreshold,
		multicast:         b.multicast,
		auth:              b.auth,
		synthetic:         b.synthetic,
		lookAhead:         b.lookAhead(),
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.period, c)

	if c.logger == nil {
		c.logger = slog.Default()
	}

	for vnet := 0; vnet < b.numVNets; vnet++ {
		in := messaging.NewMessageBuffer(
			sim.BuildNameWithIndex(name, "InNode", vnet), b.inNodeCapacity)
		in.SetConsumer(c)
		c.inNodes = append(c.inNodes, in)

		out := messaging.NewMessageBuffer(
			sim.BuildNameWithIndex(name, "OutNode", vnet), b.outNodeCapacity)
		c.outNodes = append(c.outNodes, out)
	}

	numVCs := b.numVNets * b.vcsPerVNet
	for vc := 0; vc < numVCs; vc++ {
		c.outVCs = append(c.outVCs, messaging.NewFlitBuffer(
			sim.BuildNameWithIndex(name, "OutVC", vc), 0))
		c.outVCState = append(c.outVCState,
			flowcontrol.NewOutVCState(vc, b.buffersPerVC))
		c.outVCEnqueueTime = append(c.outVCEnqueueTime, notEnqueued)
	}

	c.vcAllocator = make([]int, b.numVNets)
	c.vcBusyCounter = make([]int, b.numVNets)
	c.stallCount = make([]int, b.numVNets)

	return c
}

// lookAhead covers the longest authentication so that a network interface
// never sleeps through its own authentication completion.
func (b Builder) lookAhead() int {
	longest := max(b.auth.MACCycles, b.auth.P2PAuthCycles)
	if !b.multicast {
		longest = b.auth.P2PAuthCycles * b.vcsPerVNet
	}

	return max(DefaultLookAhead, longest+1)
}

func (b Builder) mustBeValid() {
	if b.engine == nil {
		panic("engine is not given")
	}

	if b.network == nil {
		panic("network is not given")
	}

	if b.numVNets <= 0 || b.vcsPerVNet <= 0 {
		panic(fmt.Sprintf("need at least one vnet and one vc per vnet, "+
			"have %d and %d", b.numVNets, b.vcsPerVNet))
	}

	if b.synthetic.Enabled {
		if b.rand == nil {
			panic("synthetic multicast needs a random source")
		}

		if b.synthetic.VNet >= b.numVNets {
			panic(fmt.Sprintf("synthetic vnet %d does not exist",
				b.synthetic.VNet))
		}
	}
}
