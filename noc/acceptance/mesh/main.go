package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/hansikaweerasena/gem5-multi/config"
	"github.com/hansikaweerasena/gem5-multi/noc/acceptance"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/network"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/ni"
	"github.com/hansikaweerasena/gem5-multi/sim"
)

var (
	meshWidth  = flag.Int("width", 5, "number of mesh columns")
	meshHeight = flag.Int("height", 5, "number of mesh rows")
	cycles     = flag.Int("cycles", 2000, "cycles to inject traffic for")
	unicast    = flag.Bool("unicast", false, "send multicasts as unicasts")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	cfg.Topology = config.Topology{
		Kind: config.TopologyMesh,
		Rows: *meshHeight,
		Cols: *meshWidth,
	}
	cfg.Machines = []config.Machine{
		{Name: "L1Cache", Count: *meshWidth * *meshHeight},
	}
	cfg.Multicast.Enabled = !*unicast
	cfg.Traffic.Cycles = *cycles

	engine := sim.NewSerialEngine()

	n, err := network.MakeBuilder().
		WithEngine(engine).
		Build("Mesh", cfg)
	if err != nil {
		log.Fatal(err)
	}

	test := acceptance.Connect(engine, n)
	test.GenerateMsgs(cfg.Traffic, ni.NewStreamRand("Mesh.Traffic"))

	err = engine.Run()
	if err != nil {
		panic(err)
	}

	test.MustHaveReceivedAllMsgs()
	test.ReportBandwidthAchieved(engine.CurrentTime())
	fmt.Println("passed!")
}
