package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hansikaweerasena/gem5-multi/datarecording"
	"github.com/hansikaweerasena/gem5-multi/noc/networking/stats"
)

var reportCmd = &cobra.Command{
	Use:   "report <recording>",
	Short: "Summarize the packets of a recorded run.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader, err := datarecording.OpenReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		entries, err := datarecording.Query[stats.PacketEntry](
			cmd.Context(), reader, stats.PacketTable,
			datarecording.QueryParams{OrderBy: "DeliveredAt"})
		if err != nil {
			return fmt.Errorf("reading packets: %w", err)
		}

		numVNets := 0
		for _, e := range entries {
			numVNets = max(numVNets, e.VNet+1)
		}

		stats.FromPackets(numVNets, entries).Report(os.Stdout)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
