// Package acceptance drives a network with synthetic protocol traffic and
// checks that every message reaches every destination exactly once.
package acceptance

import (
	"fmt"
	"log"
	"sort"

	"github.com/hansikaweerasena/gem5-multi/config"
	"github.com/hansikaweerasena/gem5-multi/noc/messaging"
	"github.com/hansikaweerasena/gem5-multi/sim"
)

// Rand draws the random numbers of the traffic generator.
type Rand interface {
	RandU01() float64

	// RandInt returns an integer in [lo, hi].
	RandInt(lo, hi int) int
}

type delivery struct {
	msgID string
	node  int
}

// Test is a test case.
type Test struct {
	layout messaging.MachineLayout
	agents []*Agent

	expected  map[delivery]bool
	received  map[delivery]bool
	numMsgs   int
	numExtras int
}

// NewTest creates a new test.
func NewTest(layout messaging.MachineLayout) *Test {
	return &Test{
		layout:   layout,
		expected: make(map[delivery]bool),
		received: make(map[delivery]bool),
	}
}

// RegisterAgent adds an agent to the test. Agents must be registered in node
// order.
func (t *Test) RegisterAgent(agent *Agent) {
	if agent.Node() != len(t.agents) {
		log.Panicf("agent of node %d registered at position %d",
			agent.Node(), len(t.agents))
	}

	t.agents = append(t.agents, agent)
}

// NumMsgs returns the number of generated messages.
func (t *Test) NumMsgs() int {
	return t.numMsgs
}

// NumDeliveries returns the number of messages handed to destinations.
func (t *Test) NumDeliveries() int {
	return len(t.received)
}

// GenerateMsgs creates the messages of the traffic description. In each
// cycle, each node injects a message with the injection rate. A share of the
// messages go to several random nodes.
func (t *Test) GenerateMsgs(traffic config.Traffic, rand Rand) {
	numNodes := len(t.agents)
	if numNodes < 2 {
		log.Panic("need at least two agents")
	}

	for cycle := 0; cycle < traffic.Cycles; cycle++ {
		for src := 0; src < numNodes; src++ {
			if rand.RandU01() >= traffic.InjectionRate {
				continue
			}

			fanOut := 1
			if rand.RandU01() < traffic.MulticastRatio {
				fanOut = min(traffic.MulticastFanOut, numNodes-1)
			}

			dsts := t.pickDestinations(rand, src, fanOut)
			t.AddMsg(src, traffic.VNet, sim.VTimeInCycle(cycle),
				traffic.MessageBytes, dsts...)
		}
	}
}

func (t *Test) pickDestinations(rand Rand, src, n int) []int {
	picked := map[int]bool{}
	dsts := make([]int, 0, n)

	for len(dsts) < n {
		d := rand.RandInt(0, len(t.agents)-1)
		if d == src || picked[d] {
			continue
		}

		picked[d] = true
		dsts = append(dsts, d)
	}

	return dsts
}

// AddMsg queues a message from a node to a set of nodes at a given cycle.
// Messages of a node must be added in time order.
func (t *Test) AddMsg(
	src, vnet int,
	at sim.VTimeInCycle,
	sizeBytes int,
	dsts ...int,
) messaging.Msg {
	b := messaging.GeneralMsgBuilder{}.
		WithSizeBytes(sizeBytes).
		WithTime(at)
	for _, d := range dsts {
		b = b.WithDst(t.layout.MachineOf(d))
	}

	msg := b.Build()

	agent := t.agents[src]
	agent.MsgsToSend = append(agent.MsgsToSend, pendingMsg{msg: msg, vnet: vnet})
	if len(agent.MsgsToSend) == 1 {
		agent.TickAt(at)
	}

	for _, d := range dsts {
		t.expected[delivery{msg.ID, d}] = true
	}

	t.numMsgs++

	return msg
}

// receiveMsg marks that a message is received.
func (t *Test) receiveMsg(msg messaging.Msg, node int) {
	t.msgMustBeReceivedAtItsDestination(msg, node)
	t.msgMustNotBeReceivedBefore(msg, node)

	if !t.expected[delivery{msg.Meta().ID, node}] {
		t.numExtras++
	}
}

func (t *Test) msgMustBeReceivedAtItsDestination(msg messaging.Msg, node int) {
	dst := msg.Meta().Destination
	if dst.Count() != 1 || !dst.Contains(t.layout.MachineOf(node)) {
		panic(fmt.Sprintf("msg %s for %s delivered to node %d",
			msg.Meta().ID, dst, node))
	}
}

func (t *Test) msgMustNotBeReceivedBefore(msg messaging.Msg, node int) {
	d := delivery{msg.Meta().ID, node}
	if t.received[d] {
		panic(fmt.Sprintf("msg %s is double delivered to node %d",
			msg.Meta().ID, node))
	}

	t.received[d] = true
}

// Missing returns the deliveries that have not happened, sorted by message
// and node.
func (t *Test) Missing() []string {
	var missing []string

	for d := range t.expected {
		if !t.received[d] {
			missing = append(missing,
				fmt.Sprintf("msg %s to node %d", d.msgID, d.node))
		}
	}

	sort.Strings(missing)

	return missing
}

// MustHaveReceivedAllMsgs asserts that all the messages sent are received by
// all their destinations.
func (t *Test) MustHaveReceivedAllMsgs() {
	missing := t.Missing()
	if len(missing) == 0 {
		return
	}

	for _, m := range missing {
		log.Printf("%s expected, but not received\n", m)
	}

	panic("some messages are dropped")
}

// ReportBandwidthAchieved dumps the bandwidth observed by each agent.
func (t *Test) ReportBandwidthAchieved(now sim.VTimeInCycle) {
	if now == 0 {
		return
	}

	for _, a := range t.agents {
		log.Printf(
			"agent %s, send bandwidth %.2f B/cycle, recv bandwidth %.2f B/cycle",
			a.Name(),
			float64(a.sendBytes)/float64(now),
			float64(a.recvBytes)/float64(now),
		)
	}

	if t.numExtras > 0 {
		log.Printf("%d deliveries to synthetic destinations", t.numExtras)
	}
}
