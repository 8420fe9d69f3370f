package stats

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/hansikaweerasena/gem5-multi/noc/messaging"
)

var _ = Describe("Stats", func() {
	var (
		mockCtrl *gomock.Controller
		s        *Stats
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		s = New(2)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should count per virtual network", func() {
		s.IncrementInjectedPackets(1)
		s.IncrementInjectedFlits(1)
		s.IncrementInjectedFlits(1)
		s.IncrementReceivedFlits(1)
		s.IncrementReceivedPackets(1)
		s.IncrementFlitNetworkLatency(4, 1)
		s.IncrementFlitQueueingLatency(6, 1)
		s.IncrementPacketNetworkLatency(5, 1)
		s.IncrementPacketQueueingLatency(7, 1)
		s.IncrementReceivedFlits(0)

		Expect(s.NumVNets()).To(Equal(2))
		Expect(s.VNet(1)).To(Equal(VNetStats{
			PacketsInjected:       1,
			PacketsReceived:       1,
			FlitsInjected:         2,
			FlitsReceived:         1,
			PacketNetworkLatency:  5,
			PacketQueueingLatency: 7,
			FlitNetworkLatency:    4,
			FlitQueueingLatency:   6,
		}))
		Expect(s.Total().FlitsReceived).To(Equal(uint64(2)))
	})

	It("should count hops", func() {
		s.IncrementTotalHops(3)
		s.IncrementTotalHops(0)

		Expect(s.TotalHops()).To(Equal(uint64(3)))
	})

	It("should sort the traffic distribution", func() {
		s.UpdateTrafficDistribution(messaging.RouteInfo{SrcRouter: 2, DestRouter: 1})
		s.UpdateTrafficDistribution(messaging.RouteInfo{SrcRouter: 0, DestRouter: 3})
		s.UpdateTrafficDistribution(messaging.RouteInfo{SrcRouter: 2, DestRouter: 1})

		pairs, counts := s.TrafficDistribution()

		Expect(pairs).To(Equal([]RouterPair{{0, 3}, {2, 1}}))
		Expect(counts).To(Equal([]uint64{1, 2}))
	})

	It("should summarize packet latencies", func() {
		for _, lat := range []uint64{10, 20, 30, 40} {
			s.RecordPacket(PacketEntry{NetworkLatency: lat})
		}

		summary := s.PacketLatencySummary()

		Expect(summary.Count).To(Equal(4))
		Expect(summary.Mean).To(BeNumerically("~", 25))
		Expect(summary.P50).To(BeNumerically("~", 20))
		Expect(summary.Max).To(BeNumerically("~", 40))
		Expect(summary.StdDev).To(BeNumerically(">", 0))
	})

	It("should summarize nothing when no packet arrived", func() {
		Expect(s.PacketLatencySummary()).To(Equal(LatencySummary{}))
	})

	It("should record packets", func() {
		recorder := NewMockDataRecorder(mockCtrl)
		entry := PacketEntry{PacketID: 3, DestNI: 2}

		recorder.EXPECT().CreateTable(PacketTable, PacketEntry{})
		recorder.EXPECT().InsertData(PacketTable, entry)

		s.RecordPacketsTo(recorder)
		s.RecordPacket(entry)
	})

	It("should rebuild delivery counters from recorded packets", func() {
		r := FromPackets(2, []PacketEntry{
			{VNet: 0, NetworkLatency: 4, QueueingLatency: 6},
			{VNet: 1, NetworkLatency: 2, QueueingLatency: 0},
			{VNet: 1, NetworkLatency: 8, QueueingLatency: 2},
		})

		Expect(r.VNet(0).PacketsReceived).To(Equal(uint64(1)))
		Expect(r.VNet(1).PacketsReceived).To(Equal(uint64(2)))
		Expect(r.VNet(1).PacketNetworkLatency).To(Equal(uint64(10)))
		Expect(r.Total().PacketQueueingLatency).To(Equal(uint64(8)))
		Expect(r.PacketLatencySummary().Count).To(Equal(3))
		Expect(r.PacketLatencySummary().Max).To(BeNumerically("~", 10))
	})

	It("should write a report", func() {
		s.IncrementInjectedPackets(0)
		s.UpdateTrafficDistribution(messaging.RouteInfo{SrcRouter: 0, DestRouter: 1})
		s.RecordPacket(PacketEntry{NetworkLatency: 3})

		buf := new(bytes.Buffer)
		s.Report(buf)

		out := strings.ToUpper(buf.String())
		Expect(out).To(ContainSubstring("NETWORK STATISTICS"))
		Expect(out).To(ContainSubstring("TRAFFIC DISTRIBUTION"))
	})
})
