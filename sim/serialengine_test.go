package sim

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

type endRecorder struct {
	now []VTimeInCycle
}

func (r *endRecorder) Handle(now VTimeInCycle) {
	r.now = append(r.now, now)
}

var _ = Describe("SerialEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	mockEvent := func(t VTimeInCycle, handler Handler) *MockEvent {
		evt := NewMockEvent(mockCtrl)
		evt.EXPECT().Time().Return(t).AnyTimes()
		evt.EXPECT().Handler().Return(handler).AnyTimes()

		return evt
	}

	It("should schedule events", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		evt1 := mockEvent(4, handler1)
		evt2 := mockEvent(2, handler2)
		evt3 := mockEvent(3, handler1)
		evt4 := mockEvent(5, handler1)

		handleEvt2 := handler2.EXPECT().Handle(evt2).Do(func(e Event) {
			engine.Schedule(evt3)
			engine.Schedule(evt4)
		})
		handleEvt3 := handler1.EXPECT().
			Handle(evt3).After(handleEvt2)
		handleEvt1 := handler1.EXPECT().
			Handle(evt1).After(handleEvt3)
		handler1.EXPECT().
			Handle(evt4).After(handleEvt1)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.Run()).To(Succeed())
		Expect(engine.CurrentTime()).To(Equal(VTimeInCycle(5)))
	})

	It("should hold events while paused", func() {
		handler := NewMockHandler(mockCtrl)
		evt := mockEvent(2, handler)
		handled := make(chan struct{})
		handler.EXPECT().Handle(evt).Do(func(Event) { close(handled) })

		engine.Schedule(evt)
		engine.Pause()

		done := make(chan error)
		go func() { done <- engine.Run() }()

		Consistently(handled, "50ms").ShouldNot(BeClosed())

		engine.Continue()

		Eventually(done).Should(Receive(BeNil()))
		Expect(handled).To(BeClosed())
	})

	It("should handle same-time events in schedule order", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := mockEvent(3, handler)
		evt2 := mockEvent(3, handler)
		evt3 := mockEvent(3, handler)

		gomock.InOrder(
			handler.EXPECT().Handle(evt2),
			handler.EXPECT().Handle(evt3),
			handler.EXPECT().Handle(evt1),
		)

		engine.Schedule(evt2)
		engine.Schedule(evt3)
		engine.Schedule(evt1)

		Expect(engine.Run()).To(Succeed())
	})

	It("should panic when scheduling into the past", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := mockEvent(10, handler)
		evt2 := mockEvent(4, handler)

		handler.EXPECT().Handle(evt1).Do(func(e Event) {
			engine.Schedule(evt2)
		})

		engine.Schedule(evt1)

		Expect(func() { _ = engine.Run() }).To(Panic())
	})

	It("should invoke hooks around events", func() {
		handler := NewMockHandler(mockCtrl)
		evt := mockEvent(1, handler)
		handler.EXPECT().Handle(evt)

		hook := &recordingHook{}
		engine.AcceptHook(hook)
		engine.Schedule(evt)

		Expect(engine.Run()).To(Succeed())
		Expect(hook.positions).To(Equal(
			[]*HookPos{HookPosBeforeEvent, HookPosAfterEvent}))
	})

	It("should call simulation end handlers", func() {
		handler := NewMockHandler(mockCtrl)
		evt := mockEvent(7, handler)
		handler.EXPECT().Handle(evt)

		recorder := &endRecorder{}
		engine.RegisterSimulationEndHandler(recorder)
		engine.Schedule(evt)

		Expect(engine.Run()).To(Succeed())
		engine.Finished()

		Expect(recorder.now).To(Equal([]VTimeInCycle{7}))
	})

	It("should stop at the cycle limit", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := mockEvent(3, handler)
		evt2 := mockEvent(8, handler)

		handler.EXPECT().Handle(evt1)
		engine.Schedule(evt1)
		engine.Schedule(evt2)

		pending, err := engine.RunUntil(5)

		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(BeTrue())
		Expect(engine.CurrentTime()).To(Equal(VTimeInCycle(3)))

		handler.EXPECT().Handle(evt2)
		pending, err = engine.RunUntil(8)

		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(BeFalse())
	})

	It("should stop at a failing handler", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := mockEvent(1, handler)
		evt2 := mockEvent(2, handler)
		failure := errors.New("broken link")

		handler.EXPECT().Handle(evt1).Return(failure)
		engine.Schedule(evt1)
		engine.Schedule(evt2)

		err := engine.Run()

		Expect(err).To(MatchError(failure))
		Expect(engine.CurrentTime()).To(Equal(VTimeInCycle(1)))
	})
})
