package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kiesman99/pixeliter/internal/logger"
	"github.com/kiesman99/pixeliter/internal/rawio"
	"github.com/kiesman99/pixeliter/internal/scan"
	"github.com/kiesman99/pixeliter/pkg/raster"
)

const version = "1.0.0"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pixeliter",
	Short: "Iterate, summarise and transform raw raster samples",
	Long: `pixeliter walks headerless raster sample streams pixel by pixel.

Input is raw samples, row by row, with the bands of each pixel interleaved.
The layout is given with --width, --height, --bands and --type, and the data
is held as a tiled image whose tile size is set with --tile-width and
--tile-height.

Examples:
  # Statistics for every band of a 512x512 RGB image
  pixeliter stats --width 512 --height 512 --bands 3 image.raw

  # Statistics for bands 2 and 0 inside a sub-area, as JSON, from stdin
  cat image.raw | pixeliter stats --width 512 --height 512 --bands 3 --area 100,100,64,64 --select 2,0 --json -

  # Stretch 16 bit samples and write them back out
  pixeliter rescale --width 1024 --height 768 --bands 1 --type short --byte-order big --scale 4 -o out.raw in.raw

  # Brighten an RGB image and save it as PNG
  pixeliter rescale --width 512 --height 512 --bands 3 --scale 1.2 --offset 10 -f png -o out.png image.raw

  # Start HTTP server
  pixeliter serve --port 8080`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pixeliter.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug|info|error)")

	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".pixeliter" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pixeliter")
	}

	// PIXELITER_TILE_WIDTH overrides tile-width, PIXELITER_SERVER_PORT overrides server.port
	viper.SetEnvPrefix("pixeliter")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlags binds the flags of the running command to viper. Commands share flag
// names, so binding happens when a command runs rather than in init.
func bindFlags(cmd *cobra.Command, _ []string) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || err != nil {
			return
		}
		err = viper.BindPFlag(f.Name, f)
	})
	return err
}

func newLogger(cmd *cobra.Command) (*logger.StdErrLogger, error) {
	level, err := logger.ParseLogLevel(viper.GetString("log-level"))
	if err != nil {
		return nil, err
	}
	return logger.NewWriterLogger(cmd.ErrOrStderr(), level), nil
}

func addLayoutFlags(cmd *cobra.Command) {
	cmd.Flags().Int("width", 0, "raster width in pixels (required)")
	cmd.Flags().Int("height", 0, "raster height in pixels (required)")
	cmd.Flags().Int("bands", 1, "number of bands per pixel")
	cmd.Flags().String("type", "byte", "sample type (byte|short|int|float|double)")
	cmd.Flags().Int("tile-width", 256, "tile width (0 for one tile across)")
	cmd.Flags().Int("tile-height", 256, "tile height (0 for one tile down)")
	cmd.Flags().String("byte-order", "little", "byte order of multi-byte samples (little|big)")
	cmd.Flags().String("area", "", "iteration area as 'x,y,width,height' (default: whole raster)")
}

func layoutFromConfig() (rawio.Layout, error) {
	width := viper.GetInt("width")
	height := viper.GetInt("height")
	if width == 0 || height == 0 {
		return rawio.Layout{}, fmt.Errorf("raster size is required (use --width and --height)")
	}

	dt, err := raster.ParseDataType(viper.GetString("type"))
	if err != nil {
		return rawio.Layout{}, err
	}
	order, err := rawio.ParseByteOrder(viper.GetString("byte-order"))
	if err != nil {
		return rawio.Layout{}, err
	}

	l := rawio.Layout{
		DataType:   dt,
		Width:      width,
		Height:     height,
		Bands:      viper.GetInt("bands"),
		TileWidth:  viper.GetInt("tile-width"),
		TileHeight: viper.GetInt("tile-height"),
		ByteOrder:  order,
	}
	// tiles larger than the raster collapse to one tile
	if l.TileWidth > l.Width {
		l.TileWidth = 0
	}
	if l.TileHeight > l.Height {
		l.TileHeight = 0
	}
	return l, l.Validate()
}

// scanOptions collects the options shared by stats and rescale
func scanOptions(args []string) (*scan.Options, error) {
	layout, err := layoutFromConfig()
	if err != nil {
		return nil, err
	}
	area, err := scan.ParseArea(viper.GetString("area"))
	if err != nil {
		return nil, err
	}
	return &scan.Options{
		Input:  args[0],
		Layout: layout,
		Area:   area,
	}, nil
}
