// Package cmd provides the command-line interface of nocsim.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/hansikaweerasena/gem5-multi/sim"
)

var logLevel string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nocsim",
	Short: "Nocsim simulates authenticated multicast on a network-on-chip.",
	Long: `Nocsim builds a network of routers and network interfaces from a ` +
		`configuration, injects synthetic unicast and multicast traffic and ` +
		`reports the latency and hop statistics of the delivered packets.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		level, err := parseLevel(logLevel)
		if err != nil {
			return err
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: level})))

		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"debug, trace, info, warn or error")
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return sim.LevelTrace, nil
	case "debug", "info", "warn", "error":
		var l slog.Level
		err := l.UnmarshalText([]byte(s))

		return l, err
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
