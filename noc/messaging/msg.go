package messaging

import (
	"github.com/hansikaweerasena/gem5-multi/sim"
)

// MsgMeta contains the meta data that is attached to every protocol message.
type MsgMeta struct {
	ID          string
	Destination NetDest
	SizeBytes   int

	// Time is when the message is created by the protocol.
	Time sim.VTimeInCycle
}

// A Msg is a protocol level message carried by the network.
type Msg interface {
	Meta() *MsgMeta

	// Clone returns a copy of the message. The copy keeps the ID and an
	// independent destination set.
	Clone() Msg
}

// GeneralMsg is a protocol message with an opaque payload.
type GeneralMsg struct {
	MsgMeta

	Payload any
}

// Meta returns the meta data of the message.
func (m *GeneralMsg) Meta() *MsgMeta {
	return &m.MsgMeta
}

// Clone returns a copy of the message.
func (m *GeneralMsg) Clone() Msg {
	c := *m
	c.Destination = m.Destination.Clone()

	return &c
}

// GeneralMsgBuilder can build general messages.
type GeneralMsgBuilder struct {
	dst     NetDest
	size    int
	time    sim.VTimeInCycle
	payload any
}

// WithDst adds a destination.
func (b GeneralMsgBuilder) WithDst(m ...MachineID) GeneralMsgBuilder {
	b.dst = b.dst.Clone()
	for _, d := range m {
		b.dst.Add(d)
	}

	return b
}

// WithSizeBytes sets the size of the message.
func (b GeneralMsgBuilder) WithSizeBytes(n int) GeneralMsgBuilder {
	b.size = n
	return b
}

// WithTime sets the creation time of the message.
func (b GeneralMsgBuilder) WithTime(t sim.VTimeInCycle) GeneralMsgBuilder {
	b.time = t
	return b
}

// WithPayload sets the payload of the message.
func (b GeneralMsgBuilder) WithPayload(p any) GeneralMsgBuilder {
	b.payload = p
	return b
}

// Build creates the message.
func (b GeneralMsgBuilder) Build() *GeneralMsg {
	m := &GeneralMsg{Payload: b.payload}
	m.ID = sim.GetIDGenerator().Generate()
	m.Destination = b.dst.Clone()
	m.SizeBytes = b.size
	m.Time = b.time

	return m
}
