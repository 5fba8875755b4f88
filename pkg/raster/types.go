package raster

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// DataType identifies the storage type of one sample
type DataType int

// Sample data types
const (
	TypeByte DataType = iota
	TypeShort
	TypeInt
	TypeFloat
	TypeDouble
)

var dataTypeNames = map[DataType]string{
	TypeByte:   "byte",
	TypeShort:  "short",
	TypeInt:    "int",
	TypeFloat:  "float",
	TypeDouble: "double",
}

func (t DataType) String() string {
	if name, ok := dataTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", int(t))
}

// Size returns the number of bytes used by one sample of this type
func (t DataType) Size() int {
	switch t {
	case TypeByte:
		return 1
	case TypeShort:
		return 2
	case TypeInt, TypeFloat:
		return 4
	case TypeDouble:
		return 8
	}
	return 0
}

// ParseDataType parses one of byte, short, int, float or double
func ParseDataType(s string) (DataType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for t, n := range dataTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, errors.Errorf("unknown data type: %q", s)
}

// SampleModel describes how the samples of a tile map onto its data banks.
//
// A sample (x, y, b), relative to the tile origin, lives in bank BankIndices[b]
// at offset y*ScanlineStride + x*PixelStride + BandOffsets[b].
type SampleModel struct {
	DataType       DataType
	Width          int
	Height         int
	NumBands       int
	PixelStride    int
	ScanlineStride int
	BankIndices    []int
	BandOffsets    []int
}

// NewInterleavedModel creates a single-bank, pixel-interleaved model with band offsets 0..bands-1
func NewInterleavedModel(dt DataType, width, height, bands int) SampleModel {
	sm := SampleModel{
		DataType:       dt,
		Width:          width,
		Height:         height,
		NumBands:       bands,
		PixelStride:    bands,
		ScanlineStride: width * bands,
		BankIndices:    make([]int, bands),
		BandOffsets:    make([]int, bands),
	}
	for b := 0; b < bands; b++ {
		sm.BandOffsets[b] = b
	}
	return sm
}

// NewBandedModel creates a model with one bank per band
func NewBandedModel(dt DataType, width, height, bands int) SampleModel {
	sm := SampleModel{
		DataType:       dt,
		Width:          width,
		Height:         height,
		NumBands:       bands,
		PixelStride:    1,
		ScanlineStride: width,
		BankIndices:    make([]int, bands),
		BandOffsets:    make([]int, bands),
	}
	for b := 0; b < bands; b++ {
		sm.BankIndices[b] = b
	}
	return sm
}

// NumBanks returns the number of data banks the model addresses
func (sm SampleModel) NumBanks() int {
	n := 0
	for _, bank := range sm.BankIndices {
		if bank+1 > n {
			n = bank + 1
		}
	}
	return n
}

// NumDataElements returns the number of data elements stored per pixel
func (sm SampleModel) NumDataElements() int {
	return sm.NumBands
}

// Offset returns the element offset of sample (x, y, b) relative to the tile origin
func (sm SampleModel) Offset(x, y, b int) int {
	return y*sm.ScanlineStride + x*sm.PixelStride + sm.BandOffsets[b]
}

// BankSize returns the number of elements a bank needs to hold every sample mapped to it
func (sm SampleModel) BankSize(bank int) int {
	if sm.Width == 0 || sm.Height == 0 {
		return 0
	}
	size := 0
	for b := 0; b < sm.NumBands; b++ {
		if sm.BankIndices[b] != bank {
			continue
		}
		last := sm.Offset(sm.Width-1, sm.Height-1, b) + 1
		if last > size {
			size = last
		}
	}
	return size
}

// IsContiguous reports whether the model stores all bands of a pixel next to each other
// in a single bank, in band order, with no padding between pixels.
func (sm SampleModel) IsContiguous() bool {
	if sm.NumBanks() != 1 || sm.NumDataElements() != sm.NumBands || sm.PixelStride != sm.NumBands {
		return false
	}
	for b, off := range sm.BandOffsets {
		if off != b {
			return false
		}
	}
	return true
}

// Validate checks the model is self-consistent
func (sm SampleModel) Validate() error {
	if sm.Width < 0 || sm.Height < 0 {
		return errors.Errorf("negative model size %dx%d", sm.Width, sm.Height)
	}
	if sm.NumBands <= 0 {
		return errors.Errorf("model needs at least one band, got %d", sm.NumBands)
	}
	if len(sm.BankIndices) != sm.NumBands || len(sm.BandOffsets) != sm.NumBands {
		return errors.Errorf("model has %d bands but %d bank indices and %d band offsets",
			sm.NumBands, len(sm.BankIndices), len(sm.BandOffsets))
	}
	if _, ok := dataTypeNames[sm.DataType]; !ok {
		return errors.Errorf("unsupported data type %v", sm.DataType)
	}
	if sm.PixelStride <= 0 || sm.ScanlineStride < sm.Width*sm.PixelStride {
		return errors.Errorf("invalid strides: pixel %d, scanline %d for width %d",
			sm.PixelStride, sm.ScanlineStride, sm.Width)
	}
	for b := 0; b < sm.NumBands; b++ {
		if sm.BankIndices[b] < 0 || sm.BandOffsets[b] < 0 {
			return errors.Errorf("band %d has negative bank index or offset", b)
		}
	}
	return nil
}

// Resized returns a copy of the model with the given tile size, keeping the band layout
func (sm SampleModel) Resized(width, height int) SampleModel {
	out := sm
	out.Width = width
	out.Height = height
	out.BankIndices = append([]int(nil), sm.BankIndices...)
	out.BandOffsets = append([]int(nil), sm.BandOffsets...)
	if sm.ScanlineStride == sm.Width*sm.PixelStride {
		out.ScanlineStride = width * sm.PixelStride
	} else {
		// keep any row padding
		out.ScanlineStride = width*sm.PixelStride + (sm.ScanlineStride - sm.Width*sm.PixelStride)
	}
	return out
}
