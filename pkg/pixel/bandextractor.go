package pixel

import (
	"image"

	"github.com/pkg/errors"
)

// BandExtractor restricts an iterator to a chosen, possibly reordered, list of bands.
// Logical band i of the extractor is band roi[i] of the wrapped iterator.
type BandExtractor struct {
	it    Iterator
	roi   []int
	pos   int
	x, y  int
	state cursorState
	err   error
}

// NewBandExtractor wraps it so that each pixel yields the bands listed in roi, in that order
func NewBandExtractor(it Iterator, roi []int) (*BandExtractor, error) {
	if it == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "nil iterator")
	}
	if len(roi) == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "empty band selection")
	}
	numBands := it.NumBands()
	for i, b := range roi {
		if b < 0 || b >= numBands {
			return nil, errors.Wrapf(ErrInvalidArgument, "selected band %d (entry %d) is not in [0,%d)", b, i, numBands)
		}
	}
	return &BandExtractor{it: it, roi: append([]int(nil), roi...)}, nil
}

func (e *BandExtractor) Next() bool {
	switch e.state {
	case exhausted:
		return false
	case beforeStart:
		if !e.it.Next() {
			e.state = exhausted
			return false
		}
		e.state = active
		e.x, e.y = e.it.X(), e.it.Y()
		return e.seek(0)
	}

	if e.pos+1 < len(e.roi) {
		return e.seek(e.pos + 1)
	}

	// let the wrapped iterator run through the rest of this pixel
	for e.it.X() == e.x && e.it.Y() == e.y {
		if !e.it.Next() {
			e.state = exhausted
			return false
		}
	}
	e.x, e.y = e.it.X(), e.it.Y()
	return e.seek(0)
}

func (e *BandExtractor) seek(pos int) bool {
	if err := e.it.MoveTo(e.x, e.y, e.roi[pos]); err != nil {
		e.err = err
		e.state = exhausted
		return false
	}
	e.pos = pos
	return true
}

// Err returns the error that stopped traversal early, typically a tile lacking
// one of the selected bands. It is nil after a normal end of iteration.
func (e *BandExtractor) Err() error {
	return e.err
}

func (e *BandExtractor) X() int {
	return e.x
}

func (e *BandExtractor) Y() int {
	return e.y
}

// Band returns the logical band, an index into the selection
func (e *BandExtractor) Band() int {
	return e.pos
}

// NumBands returns the size of the selection
func (e *BandExtractor) NumBands() int {
	return len(e.roi)
}

func (e *BandExtractor) Bounds() image.Rectangle {
	return e.it.Bounds()
}

func (e *BandExtractor) Direction() Direction {
	return e.it.Direction()
}

func (e *BandExtractor) Sample() int {
	return e.it.Sample()
}

func (e *BandExtractor) SampleFloat() float32 {
	return e.it.SampleFloat()
}

func (e *BandExtractor) SampleDouble() float64 {
	return e.it.SampleDouble()
}

func (e *BandExtractor) SetSample(v int) error {
	return e.it.SetSample(v)
}

func (e *BandExtractor) SetSampleFloat(v float32) error {
	return e.it.SetSampleFloat(v)
}

func (e *BandExtractor) SetSampleDouble(v float64) error {
	return e.it.SetSampleDouble(v)
}

// MoveTo moves to logical band b of pixel (x, y)
func (e *BandExtractor) MoveTo(x, y, b int) error {
	if b < 0 || b >= len(e.roi) {
		return errors.Wrapf(ErrOutOfBounds, "band %d is not in [0,%d)", b, len(e.roi))
	}
	if err := e.it.MoveTo(x, y, e.roi[b]); err != nil {
		return err
	}
	e.x, e.y, e.pos = x, y, b
	e.state = active
	e.err = nil
	return nil
}

func (e *BandExtractor) Rewind() {
	e.it.Rewind()
	e.state = beforeStart
	e.pos = 0
	e.err = nil
}

func (e *BandExtractor) Close() error {
	return e.it.Close()
}
