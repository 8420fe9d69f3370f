// Package config describes a network-on-chip simulation. Configurations are
// written in YAML and can be overridden with NOC_ environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/hansikaweerasena/gem5-multi/noc/messaging"
)

// Topology kinds.
const (
	TopologyMesh   = "mesh"
	TopologyCustom = "custom"
)

// Edge is a bidirectional link between two routers.
type Edge struct {
	A      int     `yaml:"a"`
	B      int     `yaml:"b"`
	Weight float64 `yaml:"weight,omitempty"`
}

// Topology tells how the routers are connected.
type Topology struct {
	Kind string `yaml:"kind"`

	// Rows and Cols size a mesh.
	Rows int `yaml:"rows,omitempty"`
	Cols int `yaml:"cols,omitempty"`

	// Routers and Edges describe a custom topology.
	Routers int    `yaml:"routers,omitempty"`
	Edges   []Edge `yaml:"edges,omitempty"`
}

// Machine is a kind of node attached to the network.
type Machine struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// Network holds the parameters shared by routers and network interfaces.
type Network struct {
	VNets                int   `yaml:"vnets"`
	VCsPerVNet           int   `yaml:"vcs_per_vnet"`
	BuffersPerVC         int   `yaml:"buffers_per_vc"`
	OrderedVNets         []int `yaml:"ordered_vnets,omitempty"`
	LinkLatency          int   `yaml:"link_latency"`
	LinkWidth            int   `yaml:"link_width"`
	RouterPipelineStages int   `yaml:"router_pipeline_stages"`
	DeadlockThreshold    int   `yaml:"deadlock_threshold"`

	// MessageBufferSize bounds the protocol buffers. Zero means unbounded.
	MessageBufferSize int `yaml:"message_buffer_size"`
}

// Multicast holds the authenticated multicast parameters.
type Multicast struct {
	Enabled         bool `yaml:"enabled"`
	MACCycles       int  `yaml:"mac_cycles"`
	VerifyCycles    int  `yaml:"verify_cycles"`
	P2PAuthCycles   int  `yaml:"p2p_auth_cycles"`
	P2PVerifyCycles int  `yaml:"p2p_verify_cycles"`
	TagBytes        bool `yaml:"tag_bytes"`
}

// Synthetic turns every message of a virtual network into a multicast
// message with random destinations.
type Synthetic struct {
	Enabled bool `yaml:"enabled"`
	VNet    int  `yaml:"vnet"`
	FanOut  int  `yaml:"fan_out"`
}

// Traffic describes the messages the nodes inject.
type Traffic struct {
	// InjectionRate is the probability that a node injects a message in a
	// cycle.
	InjectionRate float64 `yaml:"injection_rate"`
	MessageBytes  int     `yaml:"message_bytes"`

	// MulticastRatio is the share of messages that go to several nodes.
	MulticastRatio  float64 `yaml:"multicast_ratio"`
	MulticastFanOut int     `yaml:"multicast_fan_out"`
	VNet            int     `yaml:"vnet"`
	Cycles          int     `yaml:"cycles"`
}

// Config is a complete simulation description.
type Config struct {
	Topology  Topology  `yaml:"topology"`
	Machines  []Machine `yaml:"machines"`
	Network   Network   `yaml:"network"`
	Multicast Multicast `yaml:"multicast"`
	Synthetic Synthetic `yaml:"synthetic"`
	Traffic   Traffic   `yaml:"traffic"`

	// RandomStream names the random streams, which makes a run repeatable.
	RandomStream string `yaml:"random_stream"`

	// Recorder is the SQLite file delivered packets are written to. Empty
	// disables recording.
	Recorder string `yaml:"recorder,omitempty"`

	// MonitorPort is the port of the web monitor. Zero disables it.
	MonitorPort int `yaml:"monitor_port,omitempty"`
}

// Default returns a 4x4 mesh with one L1 cache per router.
func Default() Config {
	return Config{
		Topology: Topology{Kind: TopologyMesh, Rows: 4, Cols: 4},
		Machines: []Machine{{Name: "L1Cache", Count: 16}},
		Network: Network{
			VNets:                3,
			VCsPerVNet:           4,
			BuffersPerVC:         4,
			LinkLatency:          1,
			LinkWidth:            16,
			RouterPipelineStages: 1,
			DeadlockThreshold:    50000,
		},
		Multicast: Multicast{
			Enabled:         true,
			MACCycles:       20,
			VerifyCycles:    20,
			P2PAuthCycles:   10,
			P2PVerifyCycles: 10,
		},
		Synthetic: Synthetic{VNet: 0, FanOut: 8},
		Traffic: Traffic{
			InjectionRate:   0.02,
			MessageBytes:    64,
			MulticastRatio:  0.25,
			MulticastFanOut: 4,
			VNet:            0,
			Cycles:          10000,
		},
		RandomStream: "noc",
	}
}

// Parse reads a YAML configuration. Fields that are not given keep their
// default values.
func Parse(data []byte) (Config, error) {
	c := Default()

	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	return c, nil
}

// Load reads the configuration file, applies the environment overrides and
// validates the result. An empty path starts from the defaults.
func Load(path string) (Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}

		c, err = Parse(data)
		if err != nil {
			return Config{}, err
		}
	}

	env, err := LoadEnv()
	if err != nil {
		return Config{}, err
	}

	if err := c.ApplyEnv(env); err != nil {
		return Config{}, err
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Write encodes the configuration as YAML.
func (c Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return enc.Close()
}

// NumRouters returns the number of routers of the topology.
func (c Config) NumRouters() int {
	if c.Topology.Kind == TopologyMesh {
		return c.Topology.Rows * c.Topology.Cols
	}

	return c.Topology.Routers
}

// MachineLayout numbers the machines.
func (c Config) MachineLayout() messaging.MachineLayout {
	kinds := make([]messaging.MachineKind, len(c.Machines))
	for i, m := range c.Machines {
		kinds[i] = messaging.MachineKind{Name: m.Name, Count: m.Count}
	}

	return messaging.NewMachineLayout(kinds...)
}

// NumNodes returns the number of network interfaces.
func (c Config) NumNodes() int {
	n := 0
	for _, m := range c.Machines {
		n += m.Count
	}

	return n
}

// IsVNetOrdered tells if a virtual network delivers in order.
func (c Config) IsVNetOrdered(vnet int) bool {
	return slices.Contains(c.Network.OrderedVNets, vnet)
}

// Validate reports all the problems of the configuration.
func (c Config) Validate() error {
	var errs []error

	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	errs = append(errs, c.validateTopology()...)

	check(len(c.Machines) > 0, "no machines")
	names := map[string]bool{}
	for _, m := range c.Machines {
		check(m.Name != "", "machine without name")
		check(!names[m.Name], "duplicate machine %q", m.Name)
		check(m.Count > 0, "machine %q count must be positive", m.Name)
		names[m.Name] = true
	}

	n := c.Network
	check(n.VNets > 0, "vnets must be positive")
	check(n.VCsPerVNet > 0, "vcs_per_vnet must be positive")
	check(n.BuffersPerVC > 0, "buffers_per_vc must be positive")
	check(n.LinkLatency > 0, "link_latency must be positive")
	check(n.LinkWidth > 0, "link_width must be positive")
	check(n.RouterPipelineStages > 0,
		"router_pipeline_stages must be positive")
	check(n.DeadlockThreshold > 0, "deadlock_threshold must be positive")
	check(n.MessageBufferSize >= 0, "message_buffer_size must not be negative")

	for _, v := range n.OrderedVNets {
		check(v >= 0 && v < n.VNets, "ordered vnet %d does not exist", v)
	}

	m := c.Multicast
	check(m.MACCycles >= 0 && m.VerifyCycles >= 0 &&
		m.P2PAuthCycles >= 0 && m.P2PVerifyCycles >= 0,
		"authentication cycles must not be negative")

	s := c.Synthetic
	if s.Enabled {
		check(s.VNet >= 0 && s.VNet < n.VNets,
			"synthetic vnet %d does not exist", s.VNet)
		check(s.FanOut > 0, "synthetic fan_out must be positive")
		check(!c.IsVNetOrdered(s.VNet) || s.FanOut == 1,
			"synthetic multicast on ordered vnet %d", s.VNet)
	}

	t := c.Traffic
	check(t.InjectionRate >= 0 && t.InjectionRate <= 1,
		"injection_rate must be in [0, 1]")
	check(t.MulticastRatio >= 0 && t.MulticastRatio <= 1,
		"multicast_ratio must be in [0, 1]")
	check(t.MessageBytes > 0, "message_bytes must be positive")
	check(t.MulticastFanOut > 0, "multicast_fan_out must be positive")
	check(t.VNet >= 0 && t.VNet < n.VNets, "traffic vnet %d does not exist",
		t.VNet)
	check(t.Cycles >= 0, "traffic cycles must not be negative")
	check(!c.IsVNetOrdered(t.VNet) || t.MulticastRatio == 0 ||
		t.MulticastFanOut == 1 || !m.Enabled,
		"multicast traffic on ordered vnet %d", t.VNet)

	check(c.RandomStream != "", "random_stream must be named")
	check(c.MonitorPort >= 0 && c.MonitorPort <= 65535,
		"monitor_port %d out of range", c.MonitorPort)

	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("invalid config: %w", errors.Join(errs...))
}

func (c Config) validateTopology() []error {
	var errs []error

	t := c.Topology
	switch t.Kind {
	case TopologyMesh:
		if t.Rows <= 0 || t.Cols <= 0 {
			errs = append(errs, fmt.Errorf("mesh needs positive rows and cols"))
		}
	case TopologyCustom:
		if t.Routers <= 0 {
			errs = append(errs, fmt.Errorf("custom topology needs routers"))
		}

		for _, e := range t.Edges {
			if e.A < 0 || e.A >= t.Routers || e.B < 0 || e.B >= t.Routers ||
				e.A == e.B {
				errs = append(errs, fmt.Errorf("bad edge %d-%d", e.A, e.B))
			}

			if e.Weight < 0 {
				errs = append(errs,
					fmt.Errorf("edge %d-%d has negative weight", e.A, e.B))
			}
		}
	default:
		errs = append(errs, fmt.Errorf("unknown topology %q", t.Kind))
	}

	return errs
}
