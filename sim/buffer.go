package sim

import "log"

// HookPosBufPush marks when an element is pushed into the buffer.
var HookPosBufPush = &HookPos{Name: "Buffer Push"}

// HookPosBufPop marks when an element is popped from the buffer.
var HookPosBufPop = &HookPos{Name: "Buffer Pop"}

// BufferStatus reports the occupancy of a queue. A capacity that is not
// positive means unbounded.
type BufferStatus interface {
	Named
	Size() int
	Capacity() int
}

// A Buffer is a fifo queue of elements of type T.
type Buffer[T any] interface {
	Named
	Hookable

	CanPush() bool
	Push(e T)
	Pop() (T, bool)
	Peek() (T, bool)
	Capacity() int
	Size() int

	// Remove all elements in the buffer
	Clear()
}

// NewBuffer creates a default buffer object. A capacity that is not positive
// makes the buffer unbounded.
func NewBuffer[T any](name string, capacity int) Buffer[T] {
	NameMustBeValid(name)

	return &bufferImpl[T]{
		name:     name,
		capacity: capacity,
	}
}

type bufferImpl[T any] struct {
	HookableBase

	name     string
	capacity int
	elements []T
}

// Name returns the name of the buffer.
func (b *bufferImpl[T]) Name() string {
	return b.name
}

func (b *bufferImpl[T]) CanPush() bool {
	return b.capacity <= 0 || len(b.elements) < b.capacity
}

func (b *bufferImpl[T]) Push(e T) {
	if !b.CanPush() {
		log.Panicf("buffer %s overflow", b.name)
	}

	b.elements = append(b.elements, e)

	b.invoke(HookPosBufPush, e)
}

func (b *bufferImpl[T]) Pop() (T, bool) {
	var zero T

	if len(b.elements) == 0 {
		return zero, false
	}

	e := b.elements[0]
	b.elements[0] = zero
	b.elements = b.elements[1:]

	b.invoke(HookPosBufPop, e)

	return e, true
}

func (b *bufferImpl[T]) invoke(pos *HookPos, e T) {
	if b.NumHooks() == 0 {
		return
	}

	b.InvokeHook(HookCtx{
		Domain: b,
		Pos:    pos,
		Item:   e,
	})
}

func (b *bufferImpl[T]) Peek() (T, bool) {
	if len(b.elements) == 0 {
		var zero T
		return zero, false
	}

	return b.elements[0], true
}

func (b *bufferImpl[T]) Capacity() int {
	return b.capacity
}

func (b *bufferImpl[T]) Size() int {
	return len(b.elements)
}

func (b *bufferImpl[T]) Clear() {
	b.elements = nil
}
