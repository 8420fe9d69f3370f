package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix starts the names of the environment variables that override the
// configuration.
const EnvPrefix = "NOC_"

// LoadEnv collects the NOC_ variables from the given dotenv files (".env" if
// none is given) and the process environment. The process environment wins.
// Missing files are skipped.
func LoadEnv(files ...string) (map[string]string, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	env := map[string]string{}

	for _, f := range files {
		vars, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}

		for k, v := range vars {
			if strings.HasPrefix(k, EnvPrefix) {
				env[k] = v
			}
		}
	}

	for _, kv := range os.Environ() {
		k, v, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}

	return env, nil
}

type override func(c *Config, value string) error

func intOverride(field func(c *Config) *int) override {
	return func(c *Config, value string) error {
		v, err := strconv.Atoi(value)
		if err != nil {
			return err
		}

		*field(c) = v

		return nil
	}
}

func floatOverride(field func(c *Config) *float64) override {
	return func(c *Config, value string) error {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}

		*field(c) = v

		return nil
	}
}

func boolOverride(field func(c *Config) *bool) override {
	return func(c *Config, value string) error {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}

		*field(c) = v

		return nil
	}
}

func stringOverride(field func(c *Config) *string) override {
	return func(c *Config, value string) error {
		*field(c) = value
		return nil
	}
}

var overrides = map[string]override{
	"VNETS": intOverride(func(c *Config) *int { return &c.Network.VNets }),
	"VCS_PER_VNET": intOverride(
		func(c *Config) *int { return &c.Network.VCsPerVNet }),
	"BUFFERS_PER_VC": intOverride(
		func(c *Config) *int { return &c.Network.BuffersPerVC }),
	"LINK_LATENCY": intOverride(
		func(c *Config) *int { return &c.Network.LinkLatency }),
	"LINK_WIDTH": intOverride(
		func(c *Config) *int { return &c.Network.LinkWidth }),
	"ROUTER_PIPELINE_STAGES": intOverride(
		func(c *Config) *int { return &c.Network.RouterPipelineStages }),
	"DEADLOCK_THRESHOLD": intOverride(
		func(c *Config) *int { return &c.Network.DeadlockThreshold }),
	"MULTICAST": boolOverride(
		func(c *Config) *bool { return &c.Multicast.Enabled }),
	"MAC_CYCLES": intOverride(
		func(c *Config) *int { return &c.Multicast.MACCycles }),
	"VERIFY_CYCLES": intOverride(
		func(c *Config) *int { return &c.Multicast.VerifyCycles }),
	"P2P_AUTH_CYCLES": intOverride(
		func(c *Config) *int { return &c.Multicast.P2PAuthCycles }),
	"P2P_VERIFY_CYCLES": intOverride(
		func(c *Config) *int { return &c.Multicast.P2PVerifyCycles }),
	"SYNTHETIC": boolOverride(
		func(c *Config) *bool { return &c.Synthetic.Enabled }),
	"SYNTHETIC_FAN_OUT": intOverride(
		func(c *Config) *int { return &c.Synthetic.FanOut }),
	"INJECTION_RATE": floatOverride(
		func(c *Config) *float64 { return &c.Traffic.InjectionRate }),
	"MULTICAST_RATIO": floatOverride(
		func(c *Config) *float64 { return &c.Traffic.MulticastRatio }),
	"TRAFFIC_CYCLES": intOverride(
		func(c *Config) *int { return &c.Traffic.Cycles }),
	"RANDOM_STREAM": stringOverride(
		func(c *Config) *string { return &c.RandomStream }),
	"RECORDER": stringOverride(
		func(c *Config) *string { return &c.Recorder }),
	"MONITOR_PORT": intOverride(
		func(c *Config) *int { return &c.MonitorPort }),
}

// ApplyEnv overrides fields with NOC_ variables. Unknown variables are an
// error so that typos do not go unnoticed.
func (c *Config) ApplyEnv(env map[string]string) error {
	for k, v := range env {
		name, found := strings.CutPrefix(k, EnvPrefix)
		if !found {
			continue
		}

		o, known := overrides[name]
		if !known {
			return fmt.Errorf("unknown variable %s", k)
		}

		if err := o(c, v); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}

	return nil
}
