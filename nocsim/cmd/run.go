package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/hansikaweerasena/gem5-multi/config"
	"github.com/hansikaweerasena/gem5-multi/datarecording"
	"github.com/hansikaweerasena/gem5-multi/monitoring"
	"github.com/hansikaweerasena/gem5-multi/noc/acceptance"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/network"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/ni"
	"github.com/hansikaweerasena/gem5-multi/sim"
	"github.com/hansikaweerasena/gem5-multi/tracing"
)

var (
	configFile  string
	openMonitor bool
	logEvents   bool
	unicastOnly bool
	maxCycles   uint64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation.",
	Long: "Build the network described by the configuration, inject the " +
		"configured traffic until every message is delivered and print the " +
		"network statistics.",
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}

		if unicastOnly {
			cfg.Multicast.Enabled = false
		}

		return run(cfg)
	},
}

func init() {
	runCmd.Flags().StringVarP(&configFile, "config", "c", "",
		"YAML configuration file, the defaults are used when empty")
	runCmd.Flags().BoolVar(&openMonitor, "open-monitor", false,
		"open the web monitor in a browser, needs a monitor port")
	runCmd.Flags().BoolVar(&logEvents, "log-events", false,
		"write a debug record for every event")
	runCmd.Flags().BoolVar(&unicastOnly, "unicast", false,
		"send multicast messages as one packet per destination")
	runCmd.Flags().Uint64Var(&maxCycles, "max-cycles", 0,
		"fail when the network has not drained by this cycle, 0 for no limit")

	rootCmd.AddCommand(runCmd)
}

func run(cfg config.Config) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "simulation failed: %v\n", r)
			atexit.Exit(1)
		}
	}()

	engine := sim.NewSerialEngine()
	if logEvents {
		engine.AcceptHook(sim.NewEventLogger(slog.Default()))
	}

	latency := tracing.NewLatencyTracer(engine, tracing.KindFilter("packet"))
	routers := tracing.NewStepCountTracer(tracing.KindFilter("packet"))

	builder := network.MakeBuilder().
		WithEngine(engine).
		WithLogger(slog.Default()).
		WithTracer(latency).
		WithTracer(routers)

	var m *monitoring.Monitor
	if cfg.MonitorPort != 0 {
		m = monitoring.NewMonitor().WithPortNumber(cfg.MonitorPort)
		packets := m.CreateProgressBar("Packets", 0)
		builder = builder.WithTracer(
			monitoring.NewTaskProgress(packets, tracing.KindFilter("packet")))
	}

	n, err := builder.Build("NoC", cfg)
	if err != nil {
		return err
	}

	if cfg.Recorder != "" {
		recordRun(cfg, engine, n)
	}

	if m != nil {
		startMonitor(cfg, m, engine, n)
	}

	test := acceptance.Connect(engine, n)
	test.GenerateMsgs(cfg.Traffic,
		ni.NewStreamRand(cfg.RandomStream+".Traffic"))

	if err := runEngine(engine, n); err != nil {
		return err
	}

	engine.Finished()

	if missing := test.Missing(); len(missing) > 0 {
		return fmt.Errorf("%d deliveries missing: %s",
			len(missing), strings.Join(missing, ", "))
	}

	n.Stats().Report(os.Stdout)
	fmt.Printf("Average packet latency: %.2f cycles over %d packets, "+
		"p99 %.0f\n",
		latency.AverageTime(), latency.TotalCount(), latency.Quantile("", 0.99))
	for _, kind := range latency.Kinds() {
		fmt.Printf("  %s: %.2f cycles\n", kind, latency.AverageTimeOf(kind))
	}
	fmt.Printf("Average routers per packet: %.2f\n", routers.AverageSteps())
	test.ReportBandwidthAchieved(engine.CurrentTime())

	return nil
}

func runEngine(engine *sim.SerialEngine, n *network.Network) error {
	if maxCycles == 0 {
		return engine.Run()
	}

	pending, err := engine.RunUntil(sim.VTimeInCycle(maxCycles))
	if err != nil {
		return err
	}

	if pending {
		return fmt.Errorf("network has not drained by cycle %d, "+
			"%d flits and credits in flight", maxCycles, n.InFlight())
	}

	return nil
}

// cycleRecorder notes the final cycle of the run.
type cycleRecorder struct {
	run *datarecording.RunRecorder
}

func (r cycleRecorder) Handle(now sim.VTimeInCycle) {
	r.run.Set("simulated_cycles", strconv.FormatUint(uint64(now), 10))
}

func recordRun(cfg config.Config, engine sim.Engine, n *network.Network) {
	recorder := datarecording.New(cfg.Recorder)
	n.Stats().RecordPacketsTo(recorder)

	runInfo := datarecording.NewRunRecorder(recorder)
	runInfo.Start()
	runInfo.Set("topology", cfg.Topology.Kind)
	runInfo.Set("multicast", fmt.Sprint(cfg.Multicast.Enabled))
	runInfo.Set("random_stream", cfg.RandomStream)

	engine.RegisterSimulationEndHandler(cycleRecorder{runInfo})
	atexit.Register(runInfo.End)
}

func startMonitor(
	cfg config.Config,
	m *monitoring.Monitor,
	engine sim.Engine,
	n *network.Network,
) {
	m.RegisterEngine(engine)
	m.RegisterStats(n.Stats())

	for _, c := range n.Components() {
		m.RegisterComponent(c)
	}

	bar := m.CreateProgressBar("Traffic", uint64(cfg.Traffic.Cycles))
	engine.AcceptHook(monitoring.NewCycleProgressHook(bar, engine))

	url, err := m.StartServer()
	if err != nil {
		slog.Warn("monitor not started", "err", err)
		return
	}

	if openMonitor {
		if err := browser.OpenURL(url); err != nil {
			slog.Warn("cannot open the monitor", "url", url, "err", err)
		}
	}
}
