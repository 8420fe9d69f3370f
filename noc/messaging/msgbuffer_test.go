package messaging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/hansikaweerasena/gem5-multi/sim"
)

var _ = Describe("MessageBuffer", func() {
	var (
		mockCtrl *gomock.Controller
		consumer *MockConsumer
		buf      *MessageBuffer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		consumer = NewMockConsumer(mockCtrl)
		buf = NewMessageBuffer("Buf", 2)
		buf.SetConsumer(consumer)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should make messages ready after the delay", func() {
		msg := GeneralMsgBuilder{}.Build()
		consumer.EXPECT().TickAt(sim.VTimeInCycle(11))

		buf.Enqueue(msg, 10, 1)

		Expect(buf.IsReady(10)).To(BeFalse())
		Expect(buf.IsReady(11)).To(BeTrue())
		Expect(buf.Peek()).To(BeIdenticalTo(msg))
		Expect(buf.Dequeue(11)).To(BeIdenticalTo(msg))
		Expect(buf.Size()).To(Equal(0))
	})

	It("should order messages by ready time", func() {
		msg1 := GeneralMsgBuilder{}.Build()
		msg2 := GeneralMsgBuilder{}.Build()
		consumer.EXPECT().TickAt(gomock.Any()).Times(2)

		buf.Enqueue(msg1, 10, 5)
		buf.Enqueue(msg2, 10, 1)

		Expect(buf.Peek()).To(BeIdenticalTo(msg2))
	})

	It("should count slots", func() {
		consumer.EXPECT().TickAt(gomock.Any()).Times(2)

		Expect(buf.AreNSlotsAvailable(2, 0)).To(BeTrue())
		buf.Enqueue(GeneralMsgBuilder{}.Build(), 0, 1)
		Expect(buf.AreNSlotsAvailable(2, 0)).To(BeFalse())
		Expect(buf.AreNSlotsAvailable(1, 0)).To(BeTrue())
		buf.Enqueue(GeneralMsgBuilder{}.Build(), 0, 1)

		Expect(func() {
			buf.Enqueue(GeneralMsgBuilder{}.Build(), 0, 1)
		}).To(Panic())
	})

	It("should panic when dequeuing before a message is ready", func() {
		consumer.EXPECT().TickAt(sim.VTimeInCycle(3))
		buf.Enqueue(GeneralMsgBuilder{}.Build(), 2, 1)

		Expect(func() { buf.Dequeue(2) }).To(Panic())
	})

	It("should notify dequeue subscribers once", func() {
		consumer.EXPECT().TickAt(gomock.Any()).Times(2)
		buf.Enqueue(GeneralMsgBuilder{}.Build(), 0, 1)
		buf.Enqueue(GeneralMsgBuilder{}.Build(), 0, 1)

		calls := 0
		buf.SubscribeDequeue("NI", func() { calls++ })
		buf.SubscribeDequeue("NI", func() { calls++ })
		Expect(buf.IsSubscribed("NI")).To(BeTrue())

		buf.Dequeue(1)
		buf.Dequeue(1)

		Expect(calls).To(Equal(1))
		Expect(buf.IsSubscribed("NI")).To(BeFalse())
	})

	It("should not notify removed subscribers", func() {
		consumer.EXPECT().TickAt(gomock.Any())
		buf.Enqueue(GeneralMsgBuilder{}.Build(), 0, 1)

		called := false
		buf.SubscribeDequeue("NI", func() { called = true })
		buf.UnsubscribeDequeue("NI")

		buf.Dequeue(1)

		Expect(called).To(BeFalse())
	})

	It("should let a subscriber subscribe again from its callback", func() {
		consumer.EXPECT().TickAt(gomock.Any()).Times(2)
		buf.Enqueue(GeneralMsgBuilder{}.Build(), 0, 1)
		buf.Enqueue(GeneralMsgBuilder{}.Build(), 0, 1)

		calls := 0
		var cb func()
		cb = func() {
			calls++
			buf.SubscribeDequeue("NI", cb)
		}
		buf.SubscribeDequeue("NI", cb)

		buf.Dequeue(1)
		buf.Dequeue(1)

		Expect(calls).To(Equal(2))
	})
})

var _ = Describe("FlitBuffer", func() {
	It("should only release flits whose time has come", func() {
		buf := NewFlitBuffer("VC", 0)
		f := FlitBuilder{}.WithSize(1).WithTime(5).Build()

		Expect(buf.IsEmpty()).To(BeTrue())
		Expect(buf.IsReady(5)).To(BeFalse())

		buf.Insert(f)

		Expect(buf.IsReady(4)).To(BeFalse())
		Expect(buf.IsReady(5)).To(BeTrue())
		Expect(buf.Peek()).To(BeIdenticalTo(f))
		Expect(buf.Pop()).To(BeIdenticalTo(f))
		Expect(buf.Pop()).To(BeNil())
	})

	It("should respect capacity", func() {
		buf := NewFlitBuffer("VC", 1)
		buf.Insert(FlitBuilder{}.WithSize(1).Build())

		Expect(buf.CanInsert()).To(BeFalse())
		Expect(buf.Size()).To(Equal(1))
		Expect(func() { buf.Insert(FlitBuilder{}.WithSize(1).Build()) }).
			To(Panic())
	})
})

var _ = Describe("GeneralMsg", func() {
	It("should clone with an independent destination", func() {
		msg := GeneralMsgBuilder{}.
			WithDst(MachineID{Type: 0, Num: 1}, MachineID{Type: 0, Num: 2}).
			WithSizeBytes(72).
			WithTime(4).
			Build()

		c := msg.Clone()
		c.Meta().Destination.Remove(MachineID{Type: 0, Num: 1})

		Expect(c.Meta().ID).To(Equal(msg.ID))
		Expect(c.Meta().SizeBytes).To(Equal(72))
		Expect(c.Meta().Destination.Count()).To(Equal(1))
		Expect(msg.Destination.Count()).To(Equal(2))
	})
})
