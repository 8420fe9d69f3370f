package messaging

import (
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/hansikaweerasena/gem5-multi/sim"
)

// FlitType tells the position of a flit in its packet.
type FlitType int

// The types of flits.
const (
	FlitHead FlitType = iota
	FlitBody
	FlitTail
	FlitHeadTail
)

func (t FlitType) String() string {
	switch t {
	case FlitHead:
		return "HEAD"
	case FlitBody:
		return "BODY"
	case FlitTail:
		return "TAIL"
	case FlitHeadTail:
		return "HEAD_TAIL"
	}

	return fmt.Sprintf("FlitType(%d)", int(t))
}

// FlitStage is the router pipeline stage a flit is in.
type FlitStage int

// Pipeline stages.
const (
	StageI FlitStage = iota
	StageVA
	StageSA
	StageST
	StageLT
)

func (s FlitStage) String() string {
	return [...]string{"I", "VA", "SA", "ST", "LT"}[s]
}

// RouteInfo describes where one destination of a packet is going.
type RouteInfo struct {
	VNet       int
	NetDest    NetDest
	SrcNI      int
	SrcRouter  int
	DestNI     int
	DestRouter int

	// HopsTraversed starts at -1 so that the first router makes it 0.
	HopsTraversed int
}

// Flit is the smallest transferring unit on a network. A flit can represent
// several destinations at once. EffDest counts how many of them this copy
// still carries.
type Flit struct {
	PacketID int
	ID       int
	Type     FlitType
	Size     int
	VC       int
	VNet     int
	Routes   []RouteInfo
	EffDest  int
	Msgs     []Msg
	MsgSize  int
	Width    int

	EnqueueTime sim.VTimeInCycle
	DequeueTime sim.VTimeInCycle
	Time        sim.VTimeInCycle

	Stage     FlitStage
	StageTime sim.VTimeInCycle
	OutPort   int

	MultiAuth bool
	SrcDelay  sim.VTimeInCycle
}

func flitTypeOf(id, size int) FlitType {
	switch {
	case size == 1:
		return FlitHeadTail
	case id == 0:
		return FlitHead
	case id == size-1:
		return FlitTail
	default:
		return FlitBody
	}
}

// IsHead returns true if the flit opens a packet.
func (f *Flit) IsHead() bool {
	return f.Type == FlitHead || f.Type == FlitHeadTail
}

// IsTail returns true if the flit closes a packet.
func (f *Flit) IsTail() bool {
	return f.Type == FlitTail || f.Type == FlitHeadTail
}

// Msg returns the first message carried by the flit.
func (f *Flit) Msg() Msg {
	return f.Msgs[0]
}

// Route returns the i-th route of the flit.
func (f *Flit) Route(i int) RouteInfo {
	return f.Routes[i]
}

// AdvanceStage moves the flit to a pipeline stage at the given time.
func (f *Flit) AdvanceStage(stage FlitStage, t sim.VTimeInCycle) {
	f.Stage = stage
	f.StageTime = t
}

// IsStage returns true if the flit is in the stage and can act on it at t.
func (f *Flit) IsStage(stage FlitStage, t sim.VTimeInCycle) bool {
	return f.Stage == stage && f.StageTime <= t
}

// Serialize creates the serID-th narrower flit out of this flit, for a link
// that is bw bytes wide.
func (f *Flit) Serialize(serID int, bw int) *Flit {
	if f.Width <= bw {
		log.Panicf("cannot serialize a %d-byte flit onto a %d-byte link",
			f.Width, bw)
	}

	ratio := divCeil(f.Width, bw)
	newID := f.ID*ratio + serID

	return f.resized(newID, bw)
}

// Deserialize creates the flit that this flit merges into on a link that is
// bw bytes wide.
func (f *Flit) Deserialize(bw int) *Flit {
	ratio := divCeil(bw, f.Width)
	newID := divCeil(f.ID+1, ratio) - 1

	return f.resized(newID, bw)
}

func (f *Flit) resized(newID, bw int) *Flit {
	newSize := divCeil(f.MsgSize, bw)
	if newID >= newSize {
		log.Panicf("flit id %d out of a %d-flit packet", newID, newSize)
	}

	fl := FlitBuilder{}.
		WithPacketID(f.PacketID).
		WithID(newID).
		WithVC(f.VC).
		WithVNet(f.VNet).
		WithRoutes(f.Routes).
		WithSize(newSize).
		WithEffDest(f.EffDest).
		WithMsgs(f.Msgs).
		WithMsgSize(f.MsgSize).
		WithWidth(bw).
		WithTime(f.Time).
		Build()
	fl.EnqueueTime = f.EnqueueTime
	fl.SrcDelay = f.SrcDelay
	fl.MultiAuth = f.MultiAuth

	return fl
}

// Branch creates a copy of the flit that only carries the given routes and
// messages. The copy is the one that leaves through a single output port
// while the original stays for the other ports.
func (f *Flit) Branch(
	routes []RouteInfo,
	msgs []Msg,
	vc int,
	now sim.VTimeInCycle,
) *Flit {
	fl := FlitBuilder{}.
		WithPacketID(f.PacketID).
		WithID(f.ID).
		WithVC(vc).
		WithVNet(f.VNet).
		WithRoutes(routes).
		WithSize(f.Size).
		WithEffDest(len(routes)).
		WithMsgs(msgs).
		WithMsgSize(f.MsgSize).
		WithWidth(f.Width).
		WithTime(now).
		Build()
	fl.MultiAuth = f.MultiAuth

	return fl
}

func (f *Flit) String() string {
	var dst strings.Builder

	for i, r := range f.Routes {
		if i > 0 {
			dst.WriteString(",")
		}

		fmt.Fprintf(&dst, "ni%d@r%d", r.DestNI, r.DestRouter)
	}

	src := "none"
	if len(f.Routes) > 0 {
		src = fmt.Sprintf("ni%d@r%d", f.Routes[0].SrcNI, f.Routes[0].SrcRouter)
	}

	return fmt.Sprintf(
		"flit[packet=%d id=%d type=%s size=%d vnet=%d vc=%d src=%s "+
			"dst=%s eff_dest=%d time=%d width=%d]",
		f.PacketID, f.ID, f.Type, f.Size, f.VNet, f.VC, src,
		dst.String(), f.EffDest, f.Time, f.Width)
}

func divCeil(a, b int) int {
	return (a + b - 1) / b
}

// FlitBuilder can build flits
type FlitBuilder struct {
	packetID, id, size int
	vc, vnet           int
	routes             []RouteInfo
	effDest            int
	msgs               []Msg
	msgSize, width     int
	time               sim.VTimeInCycle
}

// WithPacketID sets the packet that the flit belongs to.
func (b FlitBuilder) WithPacketID(id int) FlitBuilder {
	b.packetID = id
	return b
}

// WithID sets the sequence id of the flit in its packet.
func (b FlitBuilder) WithID(id int) FlitBuilder {
	b.id = id
	return b
}

// WithSize sets the number of flits in the packet.
func (b FlitBuilder) WithSize(size int) FlitBuilder {
	b.size = size
	return b
}

// WithVC sets the virtual channel of the flit.
func (b FlitBuilder) WithVC(vc int) FlitBuilder {
	b.vc = vc
	return b
}

// WithVNet sets the virtual network of the flit.
func (b FlitBuilder) WithVNet(vnet int) FlitBuilder {
	b.vnet = vnet
	return b
}

// WithRoutes sets the routes carried by the flit.
func (b FlitBuilder) WithRoutes(routes []RouteInfo) FlitBuilder {
	b.routes = routes
	return b
}

// WithEffDest sets the number of destinations the flit represents.
func (b FlitBuilder) WithEffDest(n int) FlitBuilder {
	b.effDest = n
	return b
}

// WithMsgs sets the messages carried by the flit.
func (b FlitBuilder) WithMsgs(msgs []Msg) FlitBuilder {
	b.msgs = msgs
	return b
}

// WithMsgSize sets the size of the message in bytes.
func (b FlitBuilder) WithMsgSize(bytes int) FlitBuilder {
	b.msgSize = bytes
	return b
}

// WithWidth sets the width of the flit in bytes.
func (b FlitBuilder) WithWidth(bytes int) FlitBuilder {
	b.width = bytes
	return b
}

// WithTime sets the time that the flit is created at. The flit is not ready
// before this time.
func (b FlitBuilder) WithTime(t sim.VTimeInCycle) FlitBuilder {
	b.time = t
	return b
}

// Build creates a new flit.
func (b FlitBuilder) Build() *Flit {
	if b.size <= 0 {
		log.Panicf("flit must belong to a packet of at least 1 flit")
	}

	f := &Flit{
		PacketID:    b.packetID,
		ID:          b.id,
		Type:        flitTypeOf(b.id, b.size),
		Size:        b.size,
		VC:          b.vc,
		VNet:        b.vnet,
		Routes:      slices.Clone(b.routes),
		EffDest:     b.effDest,
		Msgs:        slices.Clone(b.msgs),
		MsgSize:     b.msgSize,
		Width:       b.width,
		EnqueueTime: b.time,
		DequeueTime: b.time,
		Time:        b.time,
		Stage:       StageI,
		StageTime:   b.time,
		OutPort:     -1,
	}

	return f
}
