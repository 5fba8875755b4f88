package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/pixeliter/internal/scan"
)

var statsCmd = &cobra.Command{
	Use:   "stats <input|->",
	Short: "Print per-band statistics of a raw raster",
	Long: `Compute count, min, max, sum, mean and standard deviation of every band,
or of the bands chosen with --select, inside the iteration area.

The area is split into horizontal strips that are processed concurrently.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: bindFlags,
	RunE:    runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	addLayoutFlags(statsCmd)
	statsCmd.Flags().String("select", "", "bands to report, in order, e.g. '2,0' (default: all)")
	statsCmd.Flags().Int("workers", 0, "number of concurrent strips (default: GOMAXPROCS)")
	statsCmd.Flags().Bool("json", false, "print the report as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	opts, err := scanOptions(args)
	if err != nil {
		return err
	}
	if opts.Bands, err = scan.ParseBands(viper.GetString("select")); err != nil {
		return err
	}
	opts.Workers = viper.GetInt("workers")
	opts.JSON = viper.GetBool("json")

	s := scan.NewWithIO(log, cmd.InOrStdin(), cmd.OutOrStdout())
	return s.Stats(cmd.Context(), opts)
}
