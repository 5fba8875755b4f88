// Package pixel iterates over the samples of rasters and tiled images.
//
// Iterators visit every (x, y, band) sample of an iteration area once. Row-major
// iterators go left to right, top to bottom across the whole area; default
// iterators finish one tile before moving to the next. In both orders all bands
// of a pixel are visited consecutively.
//
// An iterator holds a mutable cursor and must only be used by one goroutine.
// Traverse disjoint sub-areas with separate iterators to work in parallel.
package pixel

import (
	"image"

	"github.com/pkg/errors"
)

// Direction describes the order in which an iterator visits pixels
type Direction int

const (
	// Linear visits pixels row by row across the whole iteration area
	Linear Direction = iota
	// Tiled visits pixels row by row within a tile, one tile at a time
	Tiled
)

func (d Direction) String() string {
	switch d {
	case Linear:
		return "linear"
	case Tiled:
		return "tiled"
	}
	return "unknown"
}

// Iterator walks the samples of an iteration area.
//
// X, Y, Band and the sample getters are only meaningful after Next returned
// true or MoveTo succeeded.
type Iterator interface {
	// Next advances to the next sample, returning false once the area is exhausted.
	// Further calls keep returning false until Rewind.
	Next() bool
	X() int
	Y() int
	Band() int
	// NumBands returns the number of bands visited per pixel
	NumBands() int
	// Bounds returns the iteration area
	Bounds() image.Rectangle
	Sample() int
	SampleFloat() float32
	SampleDouble() float64
	SetSample(v int) error
	SetSampleFloat(v float32) error
	SetSampleDouble(v float64) error
	// MoveTo places the cursor on (x, y, band) so that it can be read straight away.
	// The following Next moves to the sample after it.
	MoveTo(x, y, band int) error
	// Rewind puts the iterator back before the first sample
	Rewind()
	// Close releases any tile held for writing. It is safe to call more than once.
	Close() error
	Direction() Direction
}

// iterationArea intersects the requested sub-area with the raster bounds.
// A nil area means the whole raster.
func iterationArea(bounds image.Rectangle, area *image.Rectangle) (image.Rectangle, error) {
	if area == nil {
		if bounds.Empty() {
			return image.Rectangle{}, errors.Wrapf(ErrInvalidIterationArea, "raster bounds %v are empty", bounds)
		}
		return bounds, nil
	}
	out := area.Intersect(bounds)
	if out.Empty() {
		return image.Rectangle{}, errors.Wrapf(ErrInvalidIterationArea, "area %v vs bounds %v", *area, bounds)
	}
	return out, nil
}
