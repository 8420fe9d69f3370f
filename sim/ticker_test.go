package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Ticking Component", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *MockEngine
		ticker   *MockTicker
		tc       *TickingComponent
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewMockEngine(mockCtrl)
		ticker = NewMockTicker(mockCtrl)
		tc = NewTickingComponent("TC", engine, 1, ticker)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should tick later", func() {
		engine.EXPECT().CurrentTime().Return(VTimeInCycle(10)).AnyTimes()
		engine.EXPECT().Schedule(gomock.Any()).
			Do(func(e Event) {
				Expect(e.Time()).To(Equal(VTimeInCycle(11)))
				Expect(e.Handler()).To(BeIdenticalTo(tc))
			})

		tc.TickLater()

		Expect(tc.IsScheduled(11)).To(BeTrue())
	})

	It("should not schedule two ticks at the same time", func() {
		engine.EXPECT().CurrentTime().Return(VTimeInCycle(10)).AnyTimes()
		engine.EXPECT().Schedule(gomock.Any()).Times(2)

		tc.TickAt(15)
		tc.TickAt(15)
		tc.TickAfter(5)
		tc.TickLater()

		Expect(tc.IsScheduled(15)).To(BeTrue())
		Expect(tc.IsScheduled(11)).To(BeTrue())
	})

	It("should compute clock edges", func() {
		engine.EXPECT().CurrentTime().Return(VTimeInCycle(10)).AnyTimes()

		Expect(tc.ClockEdge(0)).To(Equal(VTimeInCycle(10)))
		Expect(tc.ClockEdge(3)).To(Equal(VTimeInCycle(13)))
	})

	It("should tick again when the ticker make progress in a tick", func() {
		engine.EXPECT().CurrentTime().Return(VTimeInCycle(10)).AnyTimes()
		engine.EXPECT().Schedule(gomock.Any()).
			Do(func(e Event) {
				Expect(e.Time()).To(Equal(VTimeInCycle(11)))
			})
		ticker.EXPECT().Tick().Return(true)

		Expect(tc.Handle(MakeTickEvent(tc, 10))).To(Succeed())
	})

	It("should forget a tick once it is handled", func() {
		engine.EXPECT().CurrentTime().Return(VTimeInCycle(9)).AnyTimes()
		engine.EXPECT().Schedule(gomock.Any()).Times(2)
		ticker.EXPECT().Tick().Return(false)

		tc.TickLater()
		Expect(tc.IsScheduled(10)).To(BeTrue())

		Expect(tc.Handle(MakeTickEvent(tc, 10))).To(Succeed())
		Expect(tc.IsScheduled(10)).To(BeFalse())

		tc.TickLater()
		Expect(tc.IsScheduled(10)).To(BeTrue())
	})

	It("should stop ticking if no progress is made", func() {
		ticker.EXPECT().Tick().Return(false)

		Expect(tc.Handle(MakeTickEvent(tc, 10))).To(Succeed())
	})
})
