package sim

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("EventQueue", func() {
	var (
		mockCtrl *gomock.Controller
		queue    *EventQueue
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		queue = NewEventQueue()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should pop in order", func() {
		numEvents := 100
		for i := 0; i < numEvents; i++ {
			event := NewMockEvent(mockCtrl)
			event.EXPECT().
				Time().
				Return(VTimeInCycle(rand.Uint64() % 1000)).
				AnyTimes()
			queue.Push(event)
		}

		now := VTimeInCycle(0)
		for i := 0; i < numEvents; i++ {
			event := queue.Pop()
			Expect(event.Time() >= now).To(BeTrue())
			now = event.Time()
		}
	})

	It("should pop same-time events in push order", func() {
		events := make([]*MockEvent, 0)
		for i := 0; i < 10; i++ {
			event := NewMockEvent(mockCtrl)
			event.EXPECT().Time().Return(VTimeInCycle(5)).AnyTimes()
			events = append(events, event)
			queue.Push(event)
		}

		early := NewMockEvent(mockCtrl)
		early.EXPECT().Time().Return(VTimeInCycle(1)).AnyTimes()
		queue.Push(early)

		next, ok := queue.Peek()
		Expect(ok).To(BeTrue())
		Expect(next).To(BeIdenticalTo(early))
		Expect(queue.Pop()).To(BeIdenticalTo(early))
		for _, e := range events {
			Expect(queue.Pop()).To(BeIdenticalTo(e))
		}
		Expect(queue.Len()).To(Equal(0))

		_, ok = queue.Peek()
		Expect(ok).To(BeFalse())
	})
})
