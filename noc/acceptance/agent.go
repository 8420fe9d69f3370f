package acceptance

import (
	"github.com/hansikaweerasena/gem5-multi/noc/messaging"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/network"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/ni"
	"github.com/hansikaweerasena/gem5-multi/sim"
)

type pendingMsg struct {
	msg  messaging.Msg
	vnet int
}

// Agent plays the protocol of one node. It puts messages into the network
// interface when they are due and takes delivered messages out.
type Agent struct {
	*sim.TickingComponent

	node       int
	ni         *ni.Comp
	test       *Test
	MsgsToSend []pendingMsg
	sendBytes  uint64
	recvBytes  uint64
}

// NewAgent creates an agent for the node behind a network interface.
func NewAgent(
	engine sim.Engine,
	name string,
	node int,
	c *ni.Comp,
	test *Test,
) *Agent {
	a := &Agent{
		node: node,
		ni:   c,
		test: test,
	}
	a.TickingComponent = sim.NewTickingComponent(name, engine, 1, a)

	for vnet := 0; vnet < c.NumVNets(); vnet++ {
		c.OutNode(vnet).SetConsumer(a)
	}

	return a
}

// Node returns the node id of the agent.
func (a *Agent) Node() int {
	return a.node
}

// Tick tries to receive messages and send messages out.
func (a *Agent) Tick() bool {
	madeProgress := false
	madeProgress = a.send() || madeProgress
	madeProgress = a.recv() || madeProgress

	a.scheduleNextSend()

	return madeProgress
}

func (a *Agent) send() bool {
	now := a.CurrentTime()
	madeProgress := false

	for len(a.MsgsToSend) > 0 {
		p := a.MsgsToSend[0]
		if p.msg.Meta().Time > now {
			break
		}

		in := a.ni.InNode(p.vnet)
		if !in.AreNSlotsAvailable(1, now) {
			in.SubscribeDequeue(a.Name(), func() { a.TickAt(a.ClockEdge(1)) })
			break
		}

		in.Enqueue(p.msg, now, a.ClockEdge(1)-now)
		a.MsgsToSend = a.MsgsToSend[1:]
		a.sendBytes += uint64(p.msg.Meta().SizeBytes)
		madeProgress = true
	}

	return madeProgress
}

func (a *Agent) scheduleNextSend() {
	if len(a.MsgsToSend) == 0 {
		return
	}

	due := a.MsgsToSend[0].msg.Meta().Time
	if due > a.CurrentTime() {
		a.TickAt(due)
	}
}

func (a *Agent) recv() bool {
	now := a.CurrentTime()
	madeProgress := false

	for vnet := 0; vnet < a.ni.NumVNets(); vnet++ {
		out := a.ni.OutNode(vnet)

		for out.IsReady(now) {
			msg := out.Dequeue(now)
			a.test.receiveMsg(msg, a.node)
			a.recvBytes += uint64(msg.Meta().SizeBytes)
			madeProgress = true
		}
	}

	return madeProgress
}

// Connect creates a test with one agent per node of the network.
func Connect(engine sim.Engine, n *network.Network) *Test {
	t := NewTest(n.Layout())

	for node, c := range n.NIs() {
		name := sim.BuildNameWithIndex(n.Name(), "Agent", node)
		t.RegisterAgent(NewAgent(engine, name, node, c, t))
	}

	return t
}
