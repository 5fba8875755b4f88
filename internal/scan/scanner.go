// Package scan drives the command line: it loads raw inputs, runs the analysis
// and writes reports and outputs.
package scan

import (
	"context"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/kiesman99/pixeliter/internal/analysis"
	"github.com/kiesman99/pixeliter/internal/logger"
	"github.com/kiesman99/pixeliter/internal/rawio"
	"github.com/kiesman99/pixeliter/pkg/pixel"
	"github.com/kiesman99/pixeliter/pkg/raster"
)

// Output format constants
const (
	FormatRaw = iota
	FormatPNG
)

// ParseFormat maps raw or png to a Format constant
func ParseFormat(s string) (int, error) {
	switch s {
	case "", "raw":
		return FormatRaw, nil
	case "png":
		return FormatPNG, nil
	}
	return 0, errors.Errorf("unknown format: %s", s)
}

// Options contains everything a scan run needs
type Options struct {
	// Input is a file path, or "-" for standard input
	Input  string
	Layout rawio.Layout

	Area    *image.Rectangle
	Bands   []int
	Workers int
	JSON    bool

	// Output is a file path. Empty means standard output.
	Output string
	Format int
	Scale  float64
	Offset float64
}

// Scanner runs stats and rescale jobs
type Scanner struct {
	log    logger.ILogger
	stdin  io.Reader
	stdout io.Writer
}

// NewWithIO creates a scanner that uses stdin and stdout for the standard streams
func NewWithIO(log logger.ILogger, stdin io.Reader, stdout io.Writer) *Scanner {
	if log == nil {
		log = logger.NullLogger{}
	}
	return &Scanner{log: log, stdin: stdin, stdout: stdout}
}

// Load reads the input described by opts
func (s *Scanner) Load(opts *Options) (*raster.Mosaic, error) {
	if opts.Input == "" {
		return nil, errors.New("no input specified")
	}

	var r io.Reader = s.stdin
	if opts.Input != "-" {
		f, err := os.Open(opts.Input)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open input")
		}
		defer f.Close()

		if st, err := f.Stat(); err == nil && st.Size() != opts.Layout.Size() {
			s.log.Infof("%s is %d bytes, layout describes %d", opts.Input, st.Size(), opts.Layout.Size())
		}
		r = f
	}

	l := opts.Layout
	s.log.Debugf("==Input: %s", opts.Input)
	s.log.Debugf("==Raster Size: %dx%d, %d bands of %v", l.Width, l.Height, l.Bands, l.DataType)
	if l.TileWidth > 0 || l.TileHeight > 0 {
		s.log.Debugf("==Tile Size: %dx%d", l.TileWidth, l.TileHeight)
	}

	img, err := rawio.Read(r, l)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", opts.Input)
	}
	g := img.Grid()
	s.log.Debugf("==Tiles: %dx%d starting at (%d,%d)", g.NumXTiles, g.NumYTiles, g.MinTileX, g.MinTileY)
	return img, nil
}

// Stats computes statistics and prints them as text or JSON
func (s *Scanner) Stats(ctx context.Context, opts *Options) error {
	img, err := s.Load(opts)
	if err != nil {
		return err
	}

	res, err := analysis.Stats(ctx, img, analysis.Options{Area: opts.Area, Bands: opts.Bands, Workers: opts.Workers})
	if err != nil {
		return err
	}
	s.log.Debugf("==Area: %v", res.Area)

	rep := NewReport(res)
	if opts.JSON {
		return rep.WriteJSON(s.stdout)
	}
	return rep.WriteText(s.stdout)
}

// Rescale applies v*scale+offset to the input and writes the result
func (s *Scanner) Rescale(ctx context.Context, opts *Options) error {
	if opts.Output == "" && isTerminal(s.stdout) {
		return errors.New("didn't specify output file and standard output is a terminal")
	}
	if opts.Format == FormatPNG && opts.Layout.DataType != raster.TypeByte {
		return errors.Errorf("png output needs byte samples, got %v", opts.Layout.DataType)
	}

	src, err := s.Load(opts)
	if err != nil {
		return err
	}
	dst, err := raster.NewMosaic(src.Bounds(), src.SampleModel(), image.Pt(src.Grid().XOffset, src.Grid().YOffset))
	if err != nil {
		return err
	}

	n, err := analysis.Rescale(ctx, src, dst, opts.Area, opts.Scale, opts.Offset)
	if err != nil {
		return err
	}
	s.log.Infof("Rescaled %d samples", n)

	w := s.stdout
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return errors.Wrap(err, "failed to create output")
		}
		defer f.Close()
		w = f
	}

	switch opts.Format {
	case FormatPNG:
		if err := writePNG(w, dst, opts.Area); err != nil {
			return errors.Wrap(err, "failed to write PNG")
		}
	default:
		if err := rawio.Write(w, dst, opts.Area, opts.Layout.ByteOrder); err != nil {
			return errors.Wrap(err, "failed to write raw samples")
		}
	}

	if f, ok := w.(*os.File); ok && opts.Output != "" {
		return f.Close()
	}
	return nil
}

// flatten copies the part of img inside area into a single interleaved raster
func flatten(img raster.TiledImage, area *image.Rectangle) (*raster.Buffer, error) {
	it, err := pixel.NewRowMajorImage(img, area)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	out, err := raster.NewInterleaved(img.SampleModel().DataType, it.Bounds(), it.NumBands())
	if err != nil {
		return nil, err
	}
	for it.Next() {
		out.SetSampleDouble(it.X(), it.Y(), it.Band(), it.SampleDouble())
	}
	return out, nil
}

func writePNG(w io.Writer, img raster.TiledImage, area *image.Rectangle) error {
	buf, err := flatten(img, area)
	if err != nil {
		return err
	}
	out, err := buf.Image()
	if err != nil {
		return err
	}
	return png.Encode(w, out)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	return err == nil && (stat.Mode()&os.ModeCharDevice) != 0
}
