package messaging

import (
	"github.com/hansikaweerasena/gem5-multi/sim"
)

// FlitBuffer is a FIFO of flits. The head flit can only leave the buffer once
// the current time reaches the flit's time.
type FlitBuffer struct {
	buf sim.Buffer[*Flit]
}

// NewFlitBuffer creates a flit buffer. A capacity that is not positive makes
// the buffer unbounded.
func NewFlitBuffer(name string, capacity int) *FlitBuffer {
	return &FlitBuffer{buf: sim.NewBuffer[*Flit](name, capacity)}
}

// Name returns the name of the buffer.
func (b *FlitBuffer) Name() string {
	return b.buf.Name()
}

// AcceptHook registers a hook that observes the flits that enter and leave.
func (b *FlitBuffer) AcceptHook(hook sim.Hook) {
	b.buf.AcceptHook(hook)
}

// Insert appends a flit.
func (b *FlitBuffer) Insert(f *Flit) {
	b.buf.Push(f)
}

// IsReady tells if the head flit can leave at time t.
func (b *FlitBuffer) IsReady(t sim.VTimeInCycle) bool {
	f, ok := b.buf.Peek()
	return ok && f.Time <= t
}

// Peek returns the head flit, or nil if the buffer is empty.
func (b *FlitBuffer) Peek() *Flit {
	f, _ := b.buf.Peek()
	return f
}

// Pop removes and returns the head flit, or nil if the buffer is empty.
func (b *FlitBuffer) Pop() *Flit {
	f, _ := b.buf.Pop()
	return f
}

// IsEmpty tells if the buffer has no flit.
func (b *FlitBuffer) IsEmpty() bool {
	return b.buf.Size() == 0
}

// Size returns the number of flits in the buffer.
func (b *FlitBuffer) Size() int {
	return b.buf.Size()
}

// Capacity returns the number of flits the buffer can hold.
func (b *FlitBuffer) Capacity() int {
	return b.buf.Capacity()
}

// CanInsert tells if another flit fits in the buffer.
func (b *FlitBuffer) CanInsert() bool {
	return b.buf.CanPush()
}
