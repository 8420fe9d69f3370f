package stats

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

func average(sum, count uint64) string {
	if count == 0 {
		return "-"
	}

	return fmt.Sprintf("%.2f", float64(sum)/float64(count))
}

// Report writes the counters as tables.
func (s *Stats) Report(w io.Writer) {
	s.reportVNets(w)
	s.reportLatency(w)
	s.reportTraffic(w)
}

func (s *Stats) reportVNets(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Network Statistics")
	t.AppendHeader(table.Row{
		"VNet",
		"Pkts Injected", "Pkts Received",
		"Flits Injected", "Flits Received",
		"Avg Pkt Net Lat", "Avg Pkt Queue Lat",
		"Avg Flit Net Lat", "Avg Flit Queue Lat",
	})

	row := func(name any, v VNetStats) table.Row {
		return table.Row{
			name,
			v.PacketsInjected, v.PacketsReceived,
			v.FlitsInjected, v.FlitsReceived,
			average(v.PacketNetworkLatency, v.PacketsReceived),
			average(v.PacketQueueingLatency, v.PacketsReceived),
			average(v.FlitNetworkLatency, v.FlitsReceived),
			average(v.FlitQueueingLatency, v.FlitsReceived),
		}
	}

	for i, v := range s.vnets {
		t.AppendRow(row(i, v))
	}

	total := s.Total()
	t.AppendFooter(row("Total", total))
	t.AppendFooter(table.Row{
		"Avg Hops", average(s.totalHops, total.FlitsReceived),
	})

	t.Render()
}

func (s *Stats) reportLatency(w io.Writer) {
	summary := s.PacketLatencySummary()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Packet Latency (cycles)")
	t.AppendHeader(table.Row{"Count", "Mean", "StdDev", "P50", "P99", "Max"})
	t.AppendRow(table.Row{
		summary.Count,
		fmt.Sprintf("%.2f", summary.Mean),
		fmt.Sprintf("%.2f", summary.StdDev),
		summary.P50,
		summary.P99,
		summary.Max,
	})
	t.Render()
}

func (s *Stats) reportTraffic(w io.Writer) {
	pairs, counts := s.TrafficDistribution()
	if len(pairs) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Traffic Distribution")
	t.AppendHeader(table.Row{"Src Router", "Dst Router", "Packets"})

	for i, p := range pairs {
		t.AppendRow(table.Row{p.Src, p.Dst, counts[i]})
	}

	t.Render()
}
