package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/pixeliter/internal/scan"
)

var rescaleCmd = &cobra.Command{
	Use:   "rescale <input|->",
	Short: "Apply a linear transform to every sample of a raw raster",
	Long: `Write v*scale+offset for every sample v inside the iteration area.

Integer sample types are rounded and clamped to their range. The output is
either raw samples in the input layout or, for byte rasters with 1, 3 or 4
bands, a PNG image of the iteration area.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: bindFlags,
	RunE:    runRescale,
}

func init() {
	rootCmd.AddCommand(rescaleCmd)

	addLayoutFlags(rescaleCmd)
	rescaleCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	rescaleCmd.Flags().StringP("format", "f", "raw", "output format (raw|png)")
	rescaleCmd.Flags().Float64("scale", 1, "multiplier applied to each sample")
	rescaleCmd.Flags().Float64("offset", 0, "value added after scaling")
}

func runRescale(cmd *cobra.Command, args []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	opts, err := scanOptions(args)
	if err != nil {
		return err
	}
	if opts.Format, err = scan.ParseFormat(viper.GetString("format")); err != nil {
		return err
	}
	opts.Output = viper.GetString("output")
	opts.Scale = viper.GetFloat64("scale")
	opts.Offset = viper.GetFloat64("offset")

	s := scan.NewWithIO(log, cmd.InOrStdin(), cmd.OutOrStdout())
	return s.Rescale(cmd.Context(), opts)
}
