package raster

import (
	"golang.org/x/exp/constraints"
)

type element interface {
	constraints.Integer | constraints.Float
}

// DataBuffer holds the typed banks backing a raster. Only the slice matching
// the buffer's data type is populated.
type DataBuffer struct {
	dataType DataType
	u8       [][]uint8
	i16      [][]int16
	i32      [][]int32
	f32      [][]float32
	f64      [][]float64
}

func makeBanks[T element](banks, size int) [][]T {
	out := make([][]T, banks)
	for i := range out {
		out[i] = make([]T, size)
	}
	return out
}

// NewDataBuffer allocates a buffer of the given type with banks of equal size
func NewDataBuffer(dt DataType, banks, size int) *DataBuffer {
	d := &DataBuffer{dataType: dt}
	switch dt {
	case TypeByte:
		d.u8 = makeBanks[uint8](banks, size)
	case TypeShort:
		d.i16 = makeBanks[int16](banks, size)
	case TypeInt:
		d.i32 = makeBanks[int32](banks, size)
	case TypeFloat:
		d.f32 = makeBanks[float32](banks, size)
	case TypeDouble:
		d.f64 = makeBanks[float64](banks, size)
	}
	return d
}

// Type returns the element type of the buffer
func (d *DataBuffer) Type() DataType {
	return d.dataType
}

// NumBanks returns the number of banks
func (d *DataBuffer) NumBanks() int {
	switch d.dataType {
	case TypeByte:
		return len(d.u8)
	case TypeShort:
		return len(d.i16)
	case TypeInt:
		return len(d.i32)
	case TypeFloat:
		return len(d.f32)
	case TypeDouble:
		return len(d.f64)
	}
	return 0
}

// Bytes returns bank as a byte slice, or nil if the buffer does not hold bytes
func (d *DataBuffer) Bytes(bank int) []uint8 {
	if d.dataType != TypeByte {
		return nil
	}
	return d.u8[bank]
}

// Shorts returns bank as an int16 slice, or nil if the buffer does not hold shorts
func (d *DataBuffer) Shorts(bank int) []int16 {
	if d.dataType != TypeShort {
		return nil
	}
	return d.i16[bank]
}

// Ints returns bank as an int32 slice, or nil if the buffer does not hold ints
func (d *DataBuffer) Ints(bank int) []int32 {
	if d.dataType != TypeInt {
		return nil
	}
	return d.i32[bank]
}

// Floats returns bank as a float32 slice, or nil if the buffer does not hold floats
func (d *DataBuffer) Floats(bank int) []float32 {
	if d.dataType != TypeFloat {
		return nil
	}
	return d.f32[bank]
}

// Doubles returns bank as a float64 slice, or nil if the buffer does not hold doubles
func (d *DataBuffer) Doubles(bank int) []float64 {
	if d.dataType != TypeDouble {
		return nil
	}
	return d.f64[bank]
}

// Elem returns the element widened to int. Bytes are unsigned.
func (d *DataBuffer) Elem(bank, i int) int {
	switch d.dataType {
	case TypeByte:
		return int(d.u8[bank][i])
	case TypeShort:
		return int(d.i16[bank][i])
	case TypeInt:
		return int(d.i32[bank][i])
	case TypeFloat:
		return int(d.f32[bank][i])
	case TypeDouble:
		return int(d.f64[bank][i])
	}
	return 0
}

// ElemFloat returns the element as float32
func (d *DataBuffer) ElemFloat(bank, i int) float32 {
	switch d.dataType {
	case TypeFloat:
		return d.f32[bank][i]
	case TypeDouble:
		return float32(d.f64[bank][i])
	}
	return float32(d.Elem(bank, i))
}

// ElemDouble returns the element as float64
func (d *DataBuffer) ElemDouble(bank, i int) float64 {
	switch d.dataType {
	case TypeFloat:
		return float64(d.f32[bank][i])
	case TypeDouble:
		return d.f64[bank][i]
	}
	return float64(d.Elem(bank, i))
}

// setInt narrows v to T, keeping its low bits
func setInt[T constraints.Integer](bank []T, i int, v int) {
	bank[i] = T(v)
}

// SetElem stores v, narrowing it to the buffer type
func (d *DataBuffer) SetElem(bank, i, v int) {
	switch d.dataType {
	case TypeByte:
		setInt(d.u8[bank], i, v)
	case TypeShort:
		setInt(d.i16[bank], i, v)
	case TypeInt:
		setInt(d.i32[bank], i, v)
	case TypeFloat:
		d.f32[bank][i] = float32(v)
	case TypeDouble:
		d.f64[bank][i] = float64(v)
	}
}

// SetElemFloat stores v, narrowing it to the buffer type
func (d *DataBuffer) SetElemFloat(bank, i int, v float32) {
	switch d.dataType {
	case TypeFloat:
		d.f32[bank][i] = v
	case TypeDouble:
		d.f64[bank][i] = float64(v)
	default:
		d.SetElem(bank, i, int(v))
	}
}

// SetElemDouble stores v, narrowing it to the buffer type
func (d *DataBuffer) SetElemDouble(bank, i int, v float64) {
	switch d.dataType {
	case TypeFloat:
		d.f32[bank][i] = float32(v)
	case TypeDouble:
		d.f64[bank][i] = v
	default:
		d.SetElem(bank, i, int(v))
	}
}
