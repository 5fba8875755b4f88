// Package analysis computes results over tiled images through the pixel iterators.
package analysis

import (
	"context"
	"fmt"
	"image"
	"math"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/kiesman99/pixeliter/pkg/pixel"
	"github.com/kiesman99/pixeliter/pkg/raster"
)

// Options contains the statistics parameters
type Options struct {
	// Area restricts the statistics to part of the image. Nil means all of it.
	Area *image.Rectangle
	// Bands selects and orders the bands to report. Nil means every band.
	Bands []int
	// Workers is the number of strips processed concurrently. Zero or less means GOMAXPROCS.
	Workers int
}

// BandStats summarises one selected band. NaN samples are counted in NaNs and
// left out of everything else.
type BandStats struct {
	Band   int     `json:"band"`
	Count  int64   `json:"count"`
	NaNs   int64   `json:"nans,omitempty"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// Result contains the statistics of every selected band, in selection order
type Result struct {
	Area  image.Rectangle `json:"-"`
	Bands []BandStats     `json:"bands"`
}

// StripError reports which strip of the image failed
type StripError struct {
	Strip image.Rectangle
	Err   error
}

func (e *StripError) Error() string {
	return fmt.Sprintf("strip %v: %v", e.Strip, e.Err)
}

func (e *StripError) Unwrap() error {
	return e.Err
}

// Stats computes per-band statistics over img. The area is cut into horizontal
// strips, each walked by its own row-major iterator, and the partial results merged.
func Stats(ctx context.Context, img raster.TiledImage, opts Options) (*Result, error) {
	probe, err := pixel.NewRowMajorImage(img, opts.Area)
	if err != nil {
		return nil, err
	}
	area := probe.Bounds()
	bands := opts.Bands
	if bands == nil {
		bands = make([]int, probe.NumBands())
		for i := range bands {
			bands[i] = i
		}
	} else if _, err := pixel.NewBandExtractor(probe, bands); err != nil {
		return nil, err
	}
	probe.Close()

	strips := splitRows(area, opts.Workers)
	partials := make([][]accumulator, len(strips))

	g, ctx := errgroup.WithContext(ctx)
	for i, strip := range strips {
		g.Go(func() error {
			acc, err := statsStrip(ctx, img, strip, opts.Bands, len(bands))
			if err != nil {
				return &StripError{Strip: strip, Err: err}
			}
			partials[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := make([]accumulator, len(bands))
	for _, p := range partials {
		for b := range total {
			total[b].merge(p[b])
		}
	}

	res := &Result{Area: area, Bands: make([]BandStats, len(bands))}
	for i, acc := range total {
		res.Bands[i] = acc.stats(bands[i])
	}
	return res, nil
}

func statsStrip(ctx context.Context, img raster.TiledImage, strip image.Rectangle, roi []int, numBands int) ([]accumulator, error) {
	inner, err := pixel.NewRowMajorImage(img, &strip)
	if err != nil {
		return nil, err
	}
	defer inner.Close()

	var it pixel.Iterator = inner
	var ex *pixel.BandExtractor
	if roi != nil {
		if ex, err = pixel.NewBandExtractor(inner, roi); err != nil {
			return nil, err
		}
		it = ex
	}

	acc := make([]accumulator, numBands)
	row := strip.Min.Y - 1
	for it.Next() {
		if it.Y() != row {
			row = it.Y()
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		b := it.Band()
		if b >= numBands {
			return nil, errors.Wrapf(pixel.ErrOutOfBounds,
				"pixel (%d,%d) has band %d, only %d bands are summarised", it.X(), it.Y(), b, numBands)
		}
		acc[b].add(it.SampleDouble())
	}
	if ex != nil && ex.Err() != nil {
		return nil, ex.Err()
	}
	return acc, nil
}

// splitRows cuts area into at most workers strips of near-equal height
func splitRows(area image.Rectangle, workers int) []image.Rectangle {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	rows := area.Dy()
	if workers > rows {
		workers = rows
	}

	strips := make([]image.Rectangle, 0, workers)
	y := area.Min.Y
	for i := 0; i < workers; i++ {
		h := rows / workers
		if i < rows%workers {
			h++
		}
		strips = append(strips, image.Rect(area.Min.X, y, area.Max.X, y+h))
		y += h
	}
	return strips
}

// accumulator keeps running moments with Welford's update
type accumulator struct {
	n, nans  int64
	min, max float64
	sum      float64
	mean, m2 float64
}

func (a *accumulator) add(v float64) {
	if math.IsNaN(v) {
		a.nans++
		return
	}
	if a.n == 0 || v < a.min {
		a.min = v
	}
	if a.n == 0 || v > a.max {
		a.max = v
	}
	a.n++
	a.sum += v
	d := v - a.mean
	a.mean += d / float64(a.n)
	a.m2 += d * (v - a.mean)
}

func (a *accumulator) merge(b accumulator) {
	a.nans += b.nans
	if b.n == 0 {
		return
	}
	if a.n == 0 {
		b.nans = a.nans
		*a = b
		return
	}
	n := a.n + b.n
	d := b.mean - a.mean
	a.mean += d * float64(b.n) / float64(n)
	a.m2 += b.m2 + d*d*float64(a.n)*float64(b.n)/float64(n)
	a.min = math.Min(a.min, b.min)
	a.max = math.Max(a.max, b.max)
	a.sum += b.sum
	a.n = n
}

func (a accumulator) stats(band int) BandStats {
	s := BandStats{Band: band, Count: a.n, NaNs: a.nans}
	if a.n == 0 {
		return s
	}
	s.Min, s.Max, s.Sum, s.Mean = a.min, a.max, a.sum, a.mean
	s.StdDev = math.Sqrt(a.m2 / float64(a.n))
	return s
}
