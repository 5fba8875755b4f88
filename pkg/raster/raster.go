package raster

import (
	"image"

	"github.com/pkg/errors"
)

// Raster is a read-only rectangle of multi-banded samples. Coordinates are absolute.
type Raster interface {
	Bounds() image.Rectangle
	NumBands() int
	SampleModel() SampleModel
	Sample(x, y, b int) int
	SampleFloat(x, y, b int) float32
	SampleDouble(x, y, b int) float64
}

// WritableRaster is a Raster whose samples can be replaced
type WritableRaster interface {
	Raster
	SetSample(x, y, b, v int)
	SetSampleFloat(x, y, b int, v float32)
	SetSampleDouble(x, y, b int, v float64)
}

// Direct is implemented by rasters that expose their backing banks
type Direct interface {
	DataBuffer() *DataBuffer
}

// Buffer is an in-memory raster
type Buffer struct {
	origin image.Point
	model  SampleModel
	data   *DataBuffer
}

// NewBuffer allocates a raster with the given layout, placed at origin
func NewBuffer(model SampleModel, origin image.Point) (*Buffer, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}

	size := 0
	for bank := 0; bank < model.NumBanks(); bank++ {
		if s := model.BankSize(bank); s > size {
			size = s
		}
	}

	return &Buffer{
		origin: origin,
		model:  model,
		data:   NewDataBuffer(model.DataType, model.NumBanks(), size),
	}, nil
}

// NewBufferWithData wraps existing banks. The buffer must be large enough for the model.
func NewBufferWithData(model SampleModel, origin image.Point, data *DataBuffer) (*Buffer, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if data.Type() != model.DataType {
		return nil, errors.Errorf("data buffer holds %v, model wants %v", data.Type(), model.DataType)
	}
	if data.NumBanks() < model.NumBanks() {
		return nil, errors.Errorf("data buffer has %d banks, model wants %d", data.NumBanks(), model.NumBanks())
	}
	return &Buffer{origin: origin, model: model, data: data}, nil
}

// NewInterleaved allocates a pixel-interleaved raster covering rect
func NewInterleaved(dt DataType, rect image.Rectangle, bands int) (*Buffer, error) {
	return NewBuffer(NewInterleavedModel(dt, rect.Dx(), rect.Dy(), bands), rect.Min)
}

// NewBanded allocates a raster with one bank per band covering rect
func NewBanded(dt DataType, rect image.Rectangle, bands int) (*Buffer, error) {
	return NewBuffer(NewBandedModel(dt, rect.Dx(), rect.Dy(), bands), rect.Min)
}

func (r *Buffer) Bounds() image.Rectangle {
	return image.Rect(r.origin.X, r.origin.Y, r.origin.X+r.model.Width, r.origin.Y+r.model.Height)
}

func (r *Buffer) NumBands() int {
	return r.model.NumBands
}

func (r *Buffer) SampleModel() SampleModel {
	return r.model
}

func (r *Buffer) DataBuffer() *DataBuffer {
	return r.data
}

func (r *Buffer) index(x, y, b int) (int, int) {
	return r.model.BankIndices[b], r.model.Offset(x-r.origin.X, y-r.origin.Y, b)
}

func (r *Buffer) Sample(x, y, b int) int {
	bank, i := r.index(x, y, b)
	return r.data.Elem(bank, i)
}

func (r *Buffer) SampleFloat(x, y, b int) float32 {
	bank, i := r.index(x, y, b)
	return r.data.ElemFloat(bank, i)
}

func (r *Buffer) SampleDouble(x, y, b int) float64 {
	bank, i := r.index(x, y, b)
	return r.data.ElemDouble(bank, i)
}

func (r *Buffer) SetSample(x, y, b, v int) {
	bank, i := r.index(x, y, b)
	r.data.SetElem(bank, i, v)
}

func (r *Buffer) SetSampleFloat(x, y, b int, v float32) {
	bank, i := r.index(x, y, b)
	r.data.SetElemFloat(bank, i, v)
}

func (r *Buffer) SetSampleDouble(x, y, b int, v float64) {
	bank, i := r.index(x, y, b)
	r.data.SetElemDouble(bank, i, v)
}
