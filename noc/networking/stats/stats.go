// Package stats collects the network-wide counters of the network interfaces
// and the routers.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/hansikaweerasena/gem5-multi/datarecording"
	"github.com/hansikaweerasena/gem5-multi/noc/messaging"
	"github.com/hansikaweerasena/gem5-multi/sim"
)

// PacketTable is the table that delivered packets are recorded into.
const PacketTable = "noc_packet"

// PacketEntry is one delivered packet copy.
type PacketEntry struct {
	PacketID        int
	VNet            int
	SrcNI           int
	DestNI          int
	Hops            int
	MultiAuth       bool
	NetworkLatency  uint64
	QueueingLatency uint64
	DeliveredAt     uint64
}

// RouterPair is a source and a destination router.
type RouterPair struct {
	Src, Dst int
}

// VNetStats holds the counters of one virtual network. Latencies are sums in
// cycles.
type VNetStats struct {
	PacketsInjected       uint64
	PacketsReceived       uint64
	FlitsInjected         uint64
	FlitsReceived         uint64
	PacketNetworkLatency  uint64
	PacketQueueingLatency uint64
	FlitNetworkLatency    uint64
	FlitQueueingLatency   uint64
}

// Stats are the counters of the whole network.
type Stats struct {
	vnets               []VNetStats
	totalHops           uint64
	trafficDistribution map[RouterPair]uint64
	packetLatencies     []float64

	recorder datarecording.DataRecorder
}

// New creates the counters for a network with the given number of virtual
// networks.
func New(numVNets int) *Stats {
	return &Stats{
		vnets:               make([]VNetStats, numVNets),
		trafficDistribution: make(map[RouterPair]uint64),
	}
}

// RecordPacketsTo makes every delivered packet copy be written into the
// recorder.
func (s *Stats) RecordPacketsTo(r datarecording.DataRecorder) {
	s.recorder = r
	r.CreateTable(PacketTable, PacketEntry{})
}

// NumVNets returns the number of virtual networks.
func (s *Stats) NumVNets() int {
	return len(s.vnets)
}

// VNet returns a copy of the counters of a virtual network.
func (s *Stats) VNet(vnet int) VNetStats {
	return s.vnets[vnet]
}

// IncrementInjectedPackets counts a packet leaving a network interface.
func (s *Stats) IncrementInjectedPackets(vnet int) {
	s.vnets[vnet].PacketsInjected++
}

// IncrementInjectedFlits counts a flit leaving a network interface.
func (s *Stats) IncrementInjectedFlits(vnet int) {
	s.vnets[vnet].FlitsInjected++
}

// IncrementReceivedFlits counts a flit arriving at a network interface.
func (s *Stats) IncrementReceivedFlits(vnet int) {
	s.vnets[vnet].FlitsReceived++
}

// IncrementReceivedPackets counts a packet arriving at a network interface.
func (s *Stats) IncrementReceivedPackets(vnet int) {
	s.vnets[vnet].PacketsReceived++
}

// IncrementFlitNetworkLatency adds the time a flit spent in the network.
func (s *Stats) IncrementFlitNetworkLatency(lat sim.VTimeInCycle, vnet int) {
	s.vnets[vnet].FlitNetworkLatency += uint64(lat)
}

// IncrementFlitQueueingLatency adds the time a flit spent queueing.
func (s *Stats) IncrementFlitQueueingLatency(lat sim.VTimeInCycle, vnet int) {
	s.vnets[vnet].FlitQueueingLatency += uint64(lat)
}

// IncrementPacketNetworkLatency adds the time a packet spent in the network.
func (s *Stats) IncrementPacketNetworkLatency(
	lat sim.VTimeInCycle,
	vnet int,
) {
	s.vnets[vnet].PacketNetworkLatency += uint64(lat)
}

// IncrementPacketQueueingLatency adds the time a packet spent queueing.
func (s *Stats) IncrementPacketQueueingLatency(
	lat sim.VTimeInCycle,
	vnet int,
) {
	s.vnets[vnet].PacketQueueingLatency += uint64(lat)
}

// IncrementTotalHops adds the number of routers a flit traversed.
func (s *Stats) IncrementTotalHops(hops int) {
	s.totalHops += uint64(hops)
}

// TotalHops returns the number of router traversals.
func (s *Stats) TotalHops() uint64 {
	return s.totalHops
}

// UpdateTrafficDistribution counts a packet between two routers.
func (s *Stats) UpdateTrafficDistribution(route messaging.RouteInfo) {
	s.trafficDistribution[RouterPair{route.SrcRouter, route.DestRouter}]++
}

// TrafficDistribution returns the packet counts of all the router pairs,
// sorted by source and then destination.
func (s *Stats) TrafficDistribution() ([]RouterPair, []uint64) {
	pairs := make([]RouterPair, 0, len(s.trafficDistribution))
	for p := range s.trafficDistribution {
		pairs = append(pairs, p)
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Src != pairs[j].Src {
			return pairs[i].Src < pairs[j].Src
		}

		return pairs[i].Dst < pairs[j].Dst
	})

	counts := make([]uint64, len(pairs))
	for i, p := range pairs {
		counts[i] = s.trafficDistribution[p]
	}

	return pairs, counts
}

// RecordPacket keeps the total latency of a delivered packet copy for the
// latency distribution.
func (s *Stats) RecordPacket(entry PacketEntry) {
	s.packetLatencies = append(s.packetLatencies,
		float64(entry.NetworkLatency+entry.QueueingLatency))

	if s.recorder != nil {
		s.recorder.InsertData(PacketTable, entry)
	}
}

// LatencySummary describes the distribution of packet latencies.
type LatencySummary struct {
	Count  int
	Mean   float64
	StdDev float64
	P50    float64
	P99    float64
	Max    float64
}

// PacketLatencySummary summarizes the latencies of all delivered packets.
func (s *Stats) PacketLatencySummary() LatencySummary {
	if len(s.packetLatencies) == 0 {
		return LatencySummary{}
	}

	sorted := make([]float64, len(s.packetLatencies))
	copy(sorted, s.packetLatencies)
	sort.Float64s(sorted)

	summary := LatencySummary{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		P50:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P99:   stat.Quantile(0.99, stat.Empirical, sorted, nil),
		Max:   sorted[len(sorted)-1],
	}

	if len(sorted) > 1 {
		summary.StdDev = stat.StdDev(sorted, nil)
	}

	return summary
}

// Total returns the sum of the counters of all virtual networks.
func (s *Stats) Total() VNetStats {
	t := VNetStats{}

	for _, v := range s.vnets {
		t.PacketsInjected += v.PacketsInjected
		t.PacketsReceived += v.PacketsReceived
		t.FlitsInjected += v.FlitsInjected
		t.FlitsReceived += v.FlitsReceived
		t.PacketNetworkLatency += v.PacketNetworkLatency
		t.PacketQueueingLatency += v.PacketQueueingLatency
		t.FlitNetworkLatency += v.FlitNetworkLatency
		t.FlitQueueingLatency += v.FlitQueueingLatency
	}

	return t
}

// FromPackets rebuilds the delivery counters from recorded packet copies.
// Injection and flit counters are not recorded and stay zero.
func FromPackets(numVNets int, entries []PacketEntry) *Stats {
	s := New(numVNets)

	for _, e := range entries {
		s.IncrementReceivedPackets(e.VNet)
		s.IncrementPacketNetworkLatency(
			sim.VTimeInCycle(e.NetworkLatency), e.VNet)
		s.IncrementPacketQueueingLatency(
			sim.VTimeInCycle(e.QueueingLatency), e.VNet)
		s.RecordPacket(e)
	}

	return s
}
