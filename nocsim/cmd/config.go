package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hansikaweerasena/gem5-multi/config"
)

var configCmd = &cobra.Command{
	Use:   "config [file]",
	Short: "Print a configuration.",
	Long: "Print the default configuration, or the given file after the " +
		"defaults and the NOC_ environment variables are applied.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}

		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		return cfg.Write(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
