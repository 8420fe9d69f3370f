package sim

import (
	"container/heap"
	"sync"
)

// EventQueue orders events by cycle. Events of the same cycle leave in the
// order they arrived, which keeps replays of a schedule identical. It is safe
// for concurrent use.
type EventQueue struct {
	lock    sync.Mutex
	events  eventHeap
	arrived uint64
}

// NewEventQueue creates an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	q.lock.Lock()
	defer q.lock.Unlock()

	heap.Push(&q.events, queuedEvent{evt: evt, seq: q.arrived})
	q.arrived++
}

// Pop removes and returns the earliest event. It panics on an empty queue.
func (q *EventQueue) Pop() Event {
	q.lock.Lock()
	defer q.lock.Unlock()

	return heap.Pop(&q.events).(queuedEvent).evt
}

// Peek returns the earliest event without removing it. The second result is
// false if the queue is empty.
func (q *EventQueue) Peek() (Event, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()

	if len(q.events) == 0 {
		return nil, false
	}

	return q.events[0].evt, true
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()

	return len(q.events)
}

type queuedEvent struct {
	evt  Event
	time VTimeInCycle
	seq  uint64
}

// eventHeap implements heap.Interface. The time is read once on push so that
// events never move in the heap.
type eventHeap []queuedEvent

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}

	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	e := x.(queuedEvent)
	e.time = e.evt.Time()
	*h = append(*h, e)
}

func (h *eventHeap) Pop() any {
	old := *h
	last := old[len(old)-1]
	old[len(old)-1] = queuedEvent{}
	*h = old[:len(old)-1]

	return last
}
