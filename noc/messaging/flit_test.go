package messaging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hansikaweerasena/gem5-multi/sim"
)

var _ = Describe("Flit", func() {
	var (
		routes []RouteInfo
		msg    *GeneralMsg
	)

	BeforeEach(func() {
		routes = []RouteInfo{
			{VNet: 0, SrcNI: 1, SrcRouter: 1, DestNI: 5, DestRouter: 5,
				HopsTraversed: -1},
			{VNet: 0, SrcNI: 1, SrcRouter: 1, DestNI: 6, DestRouter: 6,
				HopsTraversed: -1},
		}
		msg = GeneralMsgBuilder{}.WithSizeBytes(64).Build()
	})

	build := func(id, size int) *Flit {
		return FlitBuilder{}.
			WithPacketID(42).
			WithID(id).
			WithSize(size).
			WithVC(3).
			WithVNet(1).
			WithRoutes(routes).
			WithEffDest(len(routes)).
			WithMsgs([]Msg{msg, msg}).
			WithMsgSize(64).
			WithWidth(16).
			WithTime(7).
			Build()
	}

	DescribeTable("flit type",
		func(id, size int, expected FlitType) {
			Expect(build(id, size).Type).To(Equal(expected))
		},
		Entry("single flit packet", 0, 1, FlitHeadTail),
		Entry("first flit", 0, 4, FlitHead),
		Entry("middle flit", 2, 4, FlitBody),
		Entry("last flit", 3, 4, FlitTail),
	)

	It("should keep the packet id apart from the flit id", func() {
		f := build(2, 4)

		Expect(f.PacketID).To(Equal(42))
		Expect(f.ID).To(Equal(2))
		Expect(f.EnqueueTime).To(Equal(sim.VTimeInCycle(7)))
		Expect(f.Stage).To(Equal(StageI))
		Expect(f.OutPort).To(Equal(-1))
	})

	It("should tell head and tail", func() {
		Expect(build(0, 1).IsHead()).To(BeTrue())
		Expect(build(0, 1).IsTail()).To(BeTrue())
		Expect(build(0, 4).IsTail()).To(BeFalse())
		Expect(build(3, 4).IsTail()).To(BeTrue())
		Expect(build(3, 4).IsHead()).To(BeFalse())
	})

	It("should track the pipeline stage", func() {
		f := build(0, 4)
		f.AdvanceStage(StageSA, 9)

		Expect(f.IsStage(StageSA, 8)).To(BeFalse())
		Expect(f.IsStage(StageSA, 9)).To(BeTrue())
		Expect(f.IsStage(StageST, 9)).To(BeFalse())
	})

	It("should serialize onto a narrower link", func() {
		f := build(1, 4)
		f.SrcDelay = 5
		f.EnqueueTime = 3
		f.MultiAuth = true

		s := f.Serialize(1, 8)

		Expect(s.PacketID).To(Equal(42))
		Expect(s.ID).To(Equal(3))
		Expect(s.Size).To(Equal(8))
		Expect(s.Width).To(Equal(8))
		Expect(s.Type).To(Equal(FlitBody))
		Expect(s.EnqueueTime).To(Equal(sim.VTimeInCycle(3)))
		Expect(s.SrcDelay).To(Equal(sim.VTimeInCycle(5)))
		Expect(s.EffDest).To(Equal(2))
		Expect(s.MultiAuth).To(BeTrue())
	})

	It("should refuse to serialize onto a wider link", func() {
		Expect(func() { build(0, 4).Serialize(0, 32) }).To(Panic())
	})

	It("should deserialize onto a wider link", func() {
		f := build(3, 4)

		d := f.Deserialize(32)

		Expect(d.ID).To(Equal(1))
		Expect(d.Size).To(Equal(2))
		Expect(d.Type).To(Equal(FlitTail))
		Expect(d.Width).To(Equal(32))
	})

	It("should merge the first flits into the head", func() {
		Expect(build(0, 4).Deserialize(32).ID).To(Equal(0))
		Expect(build(1, 4).Deserialize(32).ID).To(Equal(0))
		Expect(build(2, 4).Deserialize(32).ID).To(Equal(1))
	})

	It("should branch", func() {
		f := build(0, 4)
		f.MultiAuth = true
		f.SrcDelay = 12

		b := f.Branch(routes[1:], []Msg{msg}, 2, 20)

		Expect(b.PacketID).To(Equal(42))
		Expect(b.ID).To(Equal(0))
		Expect(b.VC).To(Equal(2))
		Expect(b.EffDest).To(Equal(1))
		Expect(b.Routes).To(HaveLen(1))
		Expect(b.Routes[0].DestNI).To(Equal(6))
		Expect(b.MultiAuth).To(BeTrue())
		Expect(b.SrcDelay).To(Equal(sim.VTimeInCycle(0)))
		Expect(b.EnqueueTime).To(Equal(sim.VTimeInCycle(20)))
		Expect(f.EffDest).To(Equal(2))
	})

	It("should print", func() {
		s := build(0, 4).String()

		Expect(s).To(ContainSubstring("packet=42"))
		Expect(s).To(ContainSubstring("type=HEAD"))
		Expect(s).To(ContainSubstring("src=ni1@r1"))
		Expect(s).To(ContainSubstring("dst=ni5@r5,ni6@r6"))
	})
})
