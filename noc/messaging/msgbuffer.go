package messaging

import (
	"log"
	"slices"

	"github.com/hansikaweerasena/gem5-multi/sim"
)

type msgEntry struct {
	msg   Msg
	ready sim.VTimeInCycle
}

// MessageBuffer connects protocol controllers with network interfaces. A
// message becomes visible at the ready time given when it is enqueued.
type MessageBuffer struct {
	sim.HookableBase

	name     string
	capacity int
	entries  []msgEntry
	consumer sim.Consumer

	dequeueSubscribers map[string]func()
	subscriberOrder    []string
}

// NewMessageBuffer creates a message buffer. A capacity that is not positive
// makes the buffer unbounded.
func NewMessageBuffer(name string, capacity int) *MessageBuffer {
	sim.NameMustBeValid(name)

	return &MessageBuffer{
		name:               name,
		capacity:           capacity,
		dequeueSubscribers: make(map[string]func()),
	}
}

// Name returns the name of the buffer.
func (b *MessageBuffer) Name() string {
	return b.name
}

// SetConsumer sets the component that is woken up when messages arrive.
func (b *MessageBuffer) SetConsumer(c sim.Consumer) {
	b.consumer = c
}

// Capacity returns the number of slots. Non-positive means unbounded.
func (b *MessageBuffer) Capacity() int {
	return b.capacity
}

// Size returns the number of messages in the buffer, ready or not.
func (b *MessageBuffer) Size() int {
	return len(b.entries)
}

// AreNSlotsAvailable tells if n more messages can be enqueued.
func (b *MessageBuffer) AreNSlotsAvailable(
	n int,
	_ sim.VTimeInCycle,
) bool {
	return b.capacity <= 0 || len(b.entries)+n <= b.capacity
}

// IsReady tells if the head message can be dequeued at now.
func (b *MessageBuffer) IsReady(now sim.VTimeInCycle) bool {
	return len(b.entries) > 0 && b.entries[0].ready <= now
}

// Peek returns the head message without removing it.
func (b *MessageBuffer) Peek() Msg {
	if len(b.entries) == 0 {
		return nil
	}

	return b.entries[0].msg
}

// Enqueue puts a message into the buffer. The message becomes ready delay
// cycles after now.
func (b *MessageBuffer) Enqueue(
	msg Msg,
	now sim.VTimeInCycle,
	delay sim.VTimeInCycle,
) {
	if !b.AreNSlotsAvailable(1, now) {
		log.Panicf("message buffer %s overflow", b.name)
	}

	ready := now + delay
	i := len(b.entries)
	for i > 0 && b.entries[i-1].ready > ready {
		i--
	}

	b.entries = slices.Insert(b.entries, i, msgEntry{msg: msg, ready: ready})

	if b.NumHooks() > 0 {
		b.InvokeHook(sim.HookCtx{
			Domain: b,
			Pos:    sim.HookPosBufPush,
			Item:   msg,
		})
	}

	if b.consumer != nil {
		b.consumer.TickAt(ready)
	}
}

// Dequeue removes the head message. Dequeue subscribers are notified and
// dropped, as each subscription only lasts for one dequeue.
func (b *MessageBuffer) Dequeue(now sim.VTimeInCycle) Msg {
	if !b.IsReady(now) {
		log.Panicf("dequeuing from %s while no message is ready", b.name)
	}

	msg := b.entries[0].msg
	b.entries[0] = msgEntry{}
	b.entries = b.entries[1:]

	if b.NumHooks() > 0 {
		b.InvokeHook(sim.HookCtx{
			Domain: b,
			Pos:    sim.HookPosBufPop,
			Item:   msg,
		})
	}

	b.notifyDequeue()

	return msg
}

// SubscribeDequeue registers a callback under a key. The callback is called
// once, at the next dequeue. Subscribing twice with the same key keeps a
// single subscription.
func (b *MessageBuffer) SubscribeDequeue(key string, cb func()) {
	if _, found := b.dequeueSubscribers[key]; !found {
		b.subscriberOrder = append(b.subscriberOrder, key)
	}

	b.dequeueSubscribers[key] = cb
}

// UnsubscribeDequeue removes the subscription under the key.
func (b *MessageBuffer) UnsubscribeDequeue(key string) {
	if _, found := b.dequeueSubscribers[key]; !found {
		return
	}

	delete(b.dequeueSubscribers, key)
	b.subscriberOrder = slices.DeleteFunc(b.subscriberOrder,
		func(k string) bool { return k == key })
}

// IsSubscribed tells if a dequeue subscription exists under the key.
func (b *MessageBuffer) IsSubscribed(key string) bool {
	_, found := b.dequeueSubscribers[key]
	return found
}

func (b *MessageBuffer) notifyDequeue() {
	if len(b.subscriberOrder) == 0 {
		return
	}

	order := b.subscriberOrder
	subscribers := b.dequeueSubscribers
	b.subscriberOrder = nil
	b.dequeueSubscribers = make(map[string]func())

	for _, key := range order {
		subscribers[key]()
	}
}
