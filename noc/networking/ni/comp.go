// Package ni provides the network interface that connects a node's protocol
// message buffers with the network. The network interface breaks messages
// into flits, charges the time needed to authenticate them and keeps track of
// the credits of the virtual channels of the router it injects into.
package ni

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"math"
	"slices"

	"github.com/hansikaweerasena/gem5-multi/noc/messaging"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/flowcontrol"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/stats"
	"github.com/hansikaweerasena/gem5-multi/sim"
	"github.com/hansikaweerasena/gem5-multi/tracing"
)

// ErrDeadlock is the panic value cause when a virtual network has not found a
// free virtual channel for longer than the deadlock threshold.
var ErrDeadlock = errors.New("possible network deadlock")

const notEnqueued = sim.VTimeInCycle(math.MaxUint64)

// Network provides the services that are shared by all the network
// interfaces of a network.
type Network interface {
	NextPacketID() int
	RouterOf(node, vnet int) int
	IsVNetOrdered(vnet int) bool
	Stats() *stats.Stats
}

// AuthConfig holds the cycles spent on authentication.
type AuthConfig struct {
	// MACCycles is the time to compute a tag that several recipients can
	// verify.
	MACCycles int

	// VerifyCycles is the time a recipient spends on verifying such a tag.
	VerifyCycles int

	// P2PAuthCycles and P2PVerifyCycles are the costs of a tag that only one
	// recipient verifies.
	P2PAuthCycles   int
	P2PVerifyCycles int

	// TagBytes adds the size of the tag to the message.
	TagBytes bool
}

// SyntheticConfig controls the expansion of messages into synthetic multicast
// messages.
type SyntheticConfig struct {
	Enabled bool
	VNet    int
	FanOut  int
}

// Comp is a network interface.
type Comp struct {
	*sim.TickingComponent

	id      int
	network Network
	layout  messaging.MachineLayout
	rand    RandSource
	logger  *slog.Logger

	numVNets          int
	vcsPerVNet        int
	deadlockThreshold int
	multicast         bool
	auth              AuthConfig
	synthetic         SyntheticConfig
	lookAhead         int

	inNodes  []*messaging.MessageBuffer
	outNodes []*messaging.MessageBuffer
	inPorts  []*InputPort
	outPorts []*OutputPort

	outVCs           []*messaging.FlitBuffer
	outVCState       []*flowcontrol.OutVCState
	outVCEnqueueTime []sim.VTimeInCycle
	vcAllocator      []int
	vcBusyCounter    []int
	stallCount       []int

	authDelay sim.VTimeInCycle
}

// ID returns the node id of the network interface.
func (c *Comp) ID() int {
	return c.id
}

// NumVNets returns the number of virtual networks.
func (c *Comp) NumVNets() int {
	return c.numVNets
}

// InNode returns the buffer that the protocol puts messages of a virtual
// network in.
func (c *Comp) InNode(vnet int) *messaging.MessageBuffer {
	return c.inNodes[vnet]
}

// OutNode returns the buffer that the network interface delivers messages of
// a virtual network to.
func (c *Comp) OutNode(vnet int) *messaging.MessageBuffer {
	return c.outNodes[vnet]
}

// OutVCState returns the state of an outgoing virtual channel.
func (c *Comp) OutVCState(vc int) *flowcontrol.OutVCState {
	return c.outVCState[vc]
}

// OutVC returns the flit queue of an outgoing virtual channel.
func (c *Comp) OutVC(vc int) *messaging.FlitBuffer {
	return c.outVCs[vc]
}

// Buffers returns the message buffers and the outgoing virtual channels.
func (c *Comp) Buffers() []sim.BufferStatus {
	bufs := make([]sim.BufferStatus, 0,
		len(c.inNodes)+len(c.outNodes)+len(c.outVCs))
	for _, b := range c.inNodes {
		bufs = append(bufs, b)
	}

	for _, b := range c.outNodes {
		bufs = append(bufs, b)
	}

	for _, b := range c.outVCs {
		bufs = append(bufs, b)
	}

	return bufs
}

// InPorts returns the ports that receive flits from routers.
func (c *Comp) InPorts() []*InputPort {
	return c.inPorts
}

// OutPorts returns the ports that send flits to routers.
func (c *Comp) OutPorts() []*OutputPort {
	return c.outPorts
}

// StallCount returns the number of tail flits of a virtual network waiting
// for space in the protocol buffer.
func (c *Comp) StallCount(vnet int) int {
	return c.stallCount[vnet]
}

// AddInPort connects a link that brings flits from a router. Credits are sent
// back through the credit link. No vnets means all of them.
func (c *Comp) AddInPort(
	in *FlitLink,
	credit *CreditLink,
	vnets ...int,
) *InputPort {
	p := &InputPort{
		inLink:        in,
		outCreditLink: credit,
		vnets:         vnets,
	}
	in.SetConsumer(c)
	c.inPorts = append(c.inPorts, p)

	return p
}

// AddOutPort connects a link that carries flits to a router. Credits of the
// router's virtual channels come back through the credit link.
func (c *Comp) AddOutPort(
	out *FlitLink,
	credit *CreditLink,
	routerID int,
	vnets ...int,
) *OutputPort {
	if out.VCsPerVNet() != 0 && out.VCsPerVNet() != c.vcsPerVNet {
		log.Panicf("%s: link %s has %d vcs per vnet, %d expected",
			c.Name(), out.Name(), out.VCsPerVNet(), c.vcsPerVNet)
	}

	out.SetVCsPerVNet(c.vcsPerVNet)
	credit.SetConsumer(c)

	p := &OutputPort{
		outLink:      out,
		inCreditLink: credit,
		routerID:     routerID,
		vnets:        vnets,
		vcRoundRobin: 0,
	}
	c.outPorts = append(c.outPorts, p)

	return p
}

// Tick runs one cycle of the network interface.
func (c *Comp) Tick() bool {
	c.Lock()
	defer c.Unlock()

	madeProgress := false

	madeProgress = c.injectMessages() || madeProgress
	madeProgress = c.scheduleOutputLink() || madeProgress
	madeProgress = c.checkStallQueue() || madeProgress

	for _, p := range c.inPorts {
		madeProgress = c.receiveFlit(p) || madeProgress
	}

	for _, p := range c.outPorts {
		madeProgress = c.receiveCredit(p) || madeProgress
	}

	c.checkReschedule()

	return madeProgress
}

func (c *Comp) now() sim.VTimeInCycle {
	return c.CurrentTime()
}

func (c *Comp) injectMessages() bool {
	now := c.now()
	madeProgress := false

	for vnet, b := range c.inNodes {
		if !b.IsReady(now) {
			continue
		}

		if c.FlitisizeMessage(b.Peek(), vnet) {
			b.Dequeue(now)
			madeProgress = true
		}
	}

	return madeProgress
}

// FlitisizeMessage breaks a message into flits and queues them on output
// virtual channels. It returns false if the message cannot be taken in this
// cycle. The message then stays where it is and keeps the destinations that
// still need to be served.
func (c *Comp) FlitisizeMessage(msg messaging.Msg, vnet int) bool {
	now := c.now()
	if now < c.authDelay {
		return false
	}

	meta := msg.Meta()
	if meta.Destination.IsEmpty() {
		log.Panicf("%s: message %s has no destination", c.Name(), meta.ID)
	}

	if c.synthetic.Enabled &&
		vnet == c.synthetic.VNet &&
		!meta.Destination.IsUsed() {
		c.addSyntheticDestinations(meta)
	}

	oPort := c.outportForVNet(vnet)

	if c.multicast {
		return c.flitisizeMulticast(msg, vnet, oPort)
	}

	return c.flitisizeUnicast(msg, vnet, oPort)
}

func (c *Comp) addSyntheticDestinations(meta *messaging.MsgMeta) {
	t, ok := meta.Destination.MachineType()
	if ok {
		count := c.layout.Count(t)
		for i := 0; i < c.synthetic.FanOut-1; i++ {
			meta.Destination.Add(messaging.MachineID{
				Type: t,
				Num:  c.rand.RandInt(0, count-1),
			})
		}
	}

	meta.Destination.SetUsed()
}

func (c *Comp) numFlits(msg messaging.Msg, numDest int, multiAuth bool,
	width int,
) (msgSize, numFlits int) {
	msgSize = msg.Meta().SizeBytes
	if c.auth.TagBytes {
		msgSize += tagBytes(numDest, multiAuth)
	}

	numFlits = (msgSize + width - 1) / width
	if numFlits == 0 {
		numFlits = 1
	}

	return msgSize, numFlits
}

// narrow creates the copy of a message that only goes to one machine and
// removes the machine from the original message.
func narrow(msg messaging.Msg, m messaging.MachineID) messaging.Msg {
	clone := msg.Clone()
	clone.Meta().Destination = messaging.NewNetDest(m)
	clone.Meta().Destination.SetUsed()

	msg.Meta().Destination.Remove(m)

	return clone
}

func (c *Comp) route(
	vnet int,
	dest messaging.NetDest,
	destNI int,
	oPort *OutputPort,
) messaging.RouteInfo {
	return messaging.RouteInfo{
		VNet:          vnet,
		NetDest:       dest,
		SrcNI:         c.id,
		SrcRouter:     oPort.routerID,
		DestNI:        destNI,
		DestRouter:    c.network.RouterOf(destNI, vnet),
		HopsTraversed: -1,
	}
}

func (c *Comp) flitisizeMulticast(
	msg messaging.Msg,
	vnet int,
	oPort *OutputPort,
) bool {
	vc := c.calculateVC(vnet)
	if vc == -1 {
		return false
	}

	now := c.now()
	meta := msg.Meta()
	machines := meta.Destination.Machines()
	numDest := len(machines)
	multiAuth := numDest > 1

	delay := c.auth.P2PAuthCycles
	if multiAuth {
		delay = c.auth.MACCycles
	}

	authDone := c.ClockEdge(delay)
	c.authDelay = authDone

	routes := make([]messaging.RouteInfo, 0, numDest)
	msgs := make([]messaging.Msg, 0, numDest)

	for _, m := range machines {
		var clone messaging.Msg
		if numDest > 1 {
			clone = narrow(msg, m)
		} else {
			clone = msg.Clone()
		}

		r := c.route(vnet, clone.Meta().Destination, c.layout.NodeID(m), oPort)
		routes = append(routes, r)
		msgs = append(msgs, clone)

		c.network.Stats().UpdateTrafficDistribution(r)
	}

	c.network.Stats().IncrementInjectedPackets(vnet)

	packetID := c.network.NextPacketID()
	c.queuePacket(packetQueueing{
		packetID:  packetID,
		vc:        vc,
		vnet:      vnet,
		routes:    routes,
		msgs:      msgs,
		multiAuth: multiAuth,
		authDone:  authDone,
		msgTime:   meta.Time,
		oPort:     oPort,
		msg:       msg,
		numDest:   numDest,
	})

	c.logger.Debug("flitisize",
		"ni", c.Name(), "packet", packetID, "vnet", vnet, "vc", vc,
		"dest", numDest, "auth_done", authDone, "time", now)

	return true
}

func (c *Comp) flitisizeUnicast(
	msg messaging.Msg,
	vnet int,
	oPort *OutputPort,
) bool {
	meta := msg.Meta()
	machines := meta.Destination.Machines()
	numDest := len(machines)

	for k, m := range machines {
		vc := c.calculateVC(vnet)
		if vc == -1 {
			meta.Destination.SetUsed()
			return false
		}

		var clone messaging.Msg
		if numDest > 1 {
			clone = narrow(msg, m)
		} else {
			clone = msg.Clone()
		}

		authDone := c.ClockEdge(c.auth.P2PAuthCycles * (k + 1))
		c.authDelay = authDone

		r := c.route(vnet, clone.Meta().Destination, c.layout.NodeID(m), oPort)

		c.network.Stats().IncrementInjectedPackets(vnet)
		c.network.Stats().UpdateTrafficDistribution(r)

		packetID := c.network.NextPacketID()
		c.queuePacket(packetQueueing{
			packetID: packetID,
			vc:       vc,
			vnet:     vnet,
			routes:   []messaging.RouteInfo{r},
			msgs:     []messaging.Msg{clone},
			authDone: authDone,
			msgTime:  meta.Time,
			oPort:    oPort,
			msg:      msg,
			numDest:  1,
		})

		c.logger.Debug("flitisize",
			"ni", c.Name(), "packet", packetID, "vnet", vnet, "vc", vc,
			"dest", r.DestNI, "auth_done", authDone, "time", c.now())
	}

	return true
}

type packetQueueing struct {
	packetID  int
	vc, vnet  int
	routes    []messaging.RouteInfo
	msgs      []messaging.Msg
	multiAuth bool
	authDone  sim.VTimeInCycle
	msgTime   sim.VTimeInCycle
	oPort     *OutputPort
	msg       messaging.Msg
	numDest   int
}

func (c *Comp) queuePacket(p packetQueueing) {
	width := p.oPort.outLink.Width()
	msgSize, numFlits := c.numFlits(p.msg, p.numDest, p.multiAuth, width)

	var srcDelay sim.VTimeInCycle
	if p.authDone > p.msgTime {
		srcDelay = p.authDone - p.msgTime
	}

	for i := 0; i < numFlits; i++ {
		c.network.Stats().IncrementInjectedFlits(p.vnet)

		f := messaging.FlitBuilder{}.
			WithPacketID(p.packetID).
			WithID(i).
			WithSize(numFlits).
			WithVC(p.vc).
			WithVNet(p.vnet).
			WithRoutes(p.routes).
			WithEffDest(len(p.routes)).
			WithMsgs(p.msgs).
			WithMsgSize(msgSize).
			WithWidth(width).
			WithTime(p.authDone).
			Build()
		f.MultiAuth = p.multiAuth
		f.SrcDelay = srcDelay

		c.outVCs[p.vc].Insert(f)
	}

	c.outVCEnqueueTime[p.vc] = p.authDone
	c.outVCState[p.vc].SetState(flowcontrol.VCActive, p.authDone)

	c.traceInjection(p)
}

func (c *Comp) traceInjection(p packetQueueing) {
	if c.NumHooks() == 0 {
		return
	}

	what := "unicast"
	if p.multiAuth {
		what = "multicast"
	}

	for _, r := range p.routes {
		tracing.StartTask(c, tracing.Task{
			ID:       tracing.PacketTaskID(p.packetID, r.DestNI),
			ParentID: p.msg.Meta().ID,
			Kind:     "packet",
			What:     what,
			Where:    fmt.Sprintf("NI[%d]", r.DestNI),
			Detail:   r,
		})
	}
}

func (c *Comp) outportForVNet(vnet int) *OutputPort {
	for _, p := range c.outPorts {
		if p.SupportsVNet(vnet) {
			return p
		}
	}

	log.Panicf("%s: no output port for vnet %d", c.Name(), vnet)

	return nil
}

// calculateVC finds an idle virtual channel of a virtual network. It returns
// -1 if all of them are busy.
func (c *Comp) calculateVC(vnet int) int {
	now := c.now()

	for i := 0; i < c.vcsPerVNet; i++ {
		delta := c.vcAllocator[vnet]

		c.vcAllocator[vnet]++
		if c.vcAllocator[vnet] == c.vcsPerVNet {
			c.vcAllocator[vnet] = 0
		}

		vc := vnet*c.vcsPerVNet + delta
		if c.outVCState[vc].IsInState(flowcontrol.VCIdle, now) {
			c.vcBusyCounter[vnet] = 0
			return vc
		}
	}

	c.vcBusyCounter[vnet]++
	if c.vcBusyCounter[vnet] > c.deadlockThreshold {
		panic(fmt.Errorf("%s: vnet %d at cycle %d: %w",
			c.Name(), vnet, now, ErrDeadlock))
	}

	return -1
}

func (c *Comp) scheduleOutputLink() bool {
	madeProgress := false
	for _, p := range c.outPorts {
		madeProgress = c.scheduleOutputPort(p) || madeProgress
	}

	return madeProgress
}

func (c *Comp) scheduleOutputPort(p *OutputPort) bool {
	now := c.now()
	vc := p.vcRoundRobin
	numVCs := len(c.outVCs)

	for i := 0; i < numVCs; i++ {
		vc++
		if vc == numVCs {
			vc = 0
		}

		vnet := vc / c.vcsPerVNet
		if !p.SupportsVNet(vnet) {
			continue
		}

		if !c.outVCs[vc].IsReady(now) || !c.outVCState[vc].HasCredit() {
			continue
		}

		if c.network.IsVNetOrdered(vnet) && !c.isOldestReady(vc, vnet) {
			continue
		}

		p.vcRoundRobin = vc
		c.outVCState[vc].DecrementCredit()

		f := c.outVCs[vc].Pop()
		f.Time = c.ClockEdge(1)
		p.outLink.Send(f, f.Time)

		if f.IsTail() {
			c.outVCEnqueueTime[vc] = notEnqueued
		}

		c.logger.Log(context.Background(), sim.LevelTrace, "ni send flit",
			"ni", c.Name(), "flit", f.String())

		return true
	}

	return false
}

func (c *Comp) isOldestReady(vc, vnet int) bool {
	now := c.now()
	base := vnet * c.vcsPerVNet

	for offset := 0; offset < c.vcsPerVNet; offset++ {
		other := base + offset
		if !c.outVCs[other].IsReady(now) {
			continue
		}

		if c.outVCEnqueueTime[other] < c.outVCEnqueueTime[vc] {
			return false
		}
	}

	return true
}

// checkStallQueue ejects at most one stalled tail flit per input port. Flits
// whose protocol buffer is still full are skipped, so a full virtual network
// does not hold back the others.
func (c *Comp) checkStallQueue() bool {
	now := c.now()
	madeProgress := false

	for _, p := range c.inPorts {
		p.messageEnqueuedThisCycle = false

		for i, f := range p.stallQueue {
			vnet := f.VNet
			if !c.outNodes[vnet].AreNSlotsAvailable(1, now) {
				c.outNodes[vnet].SubscribeDequeue(c.Name(), c.dequeueCallback)
				continue
			}

			c.deliver(p, f)

			p.stallQueue = slices.Delete(p.stallQueue, i, i+1)
			c.stallCount[vnet]--
			if c.stallCount[vnet] == 0 {
				c.outNodes[vnet].UnsubscribeDequeue(c.Name())
			}

			p.messageEnqueuedThisCycle = true
			madeProgress = true

			break
		}
	}

	return madeProgress
}

func (c *Comp) dequeueCallback() {
	for _, n := range c.stallCount {
		if n > 0 {
			c.TickAt(c.ClockEdge(1))
			return
		}
	}
}

func (c *Comp) receiveFlit(p *InputPort) bool {
	now := c.now()
	if !p.inLink.IsReady(now) {
		return false
	}

	f := p.inLink.Consume(now)
	f.DequeueTime = now
	vnet := f.VNet

	if !f.IsTail() {
		c.sendCredit(p, f.VC, false)
		c.incrementStats(f)

		return true
	}

	if !p.messageEnqueuedThisCycle &&
		c.outNodes[vnet].AreNSlotsAvailable(1, now) {
		c.deliver(p, f)
		return true
	}

	p.stallQueue = append(p.stallQueue, f)
	c.stallCount[vnet]++
	c.outNodes[vnet].SubscribeDequeue(c.Name(), c.dequeueCallback)

	c.logger.Debug("stall",
		"ni", c.Name(), "packet", f.PacketID, "vnet", vnet, "time", now)

	return true
}

// deliver hands the message of a tail flit to the protocol and frees the
// upstream virtual channel.
func (c *Comp) deliver(p *InputPort, f *messaging.Flit) {
	if len(f.Routes) != 1 || len(f.Msgs) != 1 {
		log.Panicf("%s: flit %s arrives with %d routes",
			c.Name(), f, len(f.Routes))
	}

	now := c.now()
	c.outNodes[f.VNet].Enqueue(f.Msgs[0], now, c.ClockEdge(1)-now)
	c.sendCredit(p, f.VC, true)
	c.incrementStats(f)

	if c.NumHooks() > 0 {
		tracing.EndTask(tracing.PacketTaskID(f.PacketID, f.Routes[0].DestNI), c)
	}
}

func (c *Comp) sendCredit(p *InputPort, vc int, free bool) {
	credit := &messaging.Credit{VC: vc, IsFreeSignal: free}
	p.outCreditLink.Send(credit, c.ClockEdge(1))
}

func (c *Comp) incrementStats(f *messaging.Flit) {
	now := c.now()
	s := c.network.Stats()
	vnet := f.VNet

	s.IncrementReceivedFlits(vnet)

	var networkDelay sim.VTimeInCycle
	if f.DequeueTime > f.EnqueueTime+1 {
		networkDelay = f.DequeueTime - f.EnqueueTime - 1
	}

	queueingDelay := f.SrcDelay + (now - f.DequeueTime)
	if f.IsTail() {
		queueingDelay += sim.VTimeInCycle(c.verifyCycles(f))
	}

	s.IncrementFlitNetworkLatency(networkDelay, vnet)
	s.IncrementFlitQueueingLatency(queueingDelay, vnet)

	if f.IsTail() {
		s.IncrementReceivedPackets(vnet)
		s.IncrementPacketNetworkLatency(networkDelay, vnet)
		s.IncrementPacketQueueingLatency(queueingDelay, vnet)

		r := f.Routes[0]
		s.RecordPacket(stats.PacketEntry{
			PacketID:        f.PacketID,
			VNet:            vnet,
			SrcNI:           r.SrcNI,
			DestNI:          r.DestNI,
			Hops:            r.HopsTraversed,
			MultiAuth:       f.MultiAuth,
			NetworkLatency:  uint64(networkDelay),
			QueueingLatency: uint64(queueingDelay),
			DeliveredAt:     uint64(now),
		})
	}

	s.IncrementTotalHops(f.Routes[0].HopsTraversed)
}

func (c *Comp) verifyCycles(f *messaging.Flit) int {
	if f.MultiAuth {
		return c.auth.VerifyCycles
	}

	return c.auth.P2PVerifyCycles
}

func (c *Comp) receiveCredit(p *OutputPort) bool {
	now := c.now()
	if !p.inCreditLink.IsReady(now) {
		return false
	}

	credit := p.inCreditLink.Consume(now)
	c.outVCState[credit.VC].IncrementCredit()

	if credit.IsFreeSignal {
		c.outVCState[credit.VC].SetState(flowcontrol.VCIdle, now)
	}

	return true
}

func (c *Comp) checkReschedule() {
	now := c.now()

	for _, b := range c.inNodes {
		if b.IsReady(now) {
			c.TickLater()
			return
		}
	}

	// A virtual channel without credit waits for the credit link to wake the
	// network interface up.
	window := c.ClockEdge(c.lookAhead)
	for i, vc := range c.outVCs {
		if vc.IsReady(window) && c.outVCState[i].HasCredit() {
			c.TickLater()
			return
		}
	}

	for _, p := range c.inPorts {
		if p.inLink.IsReady(now) {
			c.TickLater()
			return
		}
	}

	for _, p := range c.outPorts {
		if p.inCreditLink.IsReady(now) {
			c.TickLater()
			return
		}
	}
}
