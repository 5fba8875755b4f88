package rawio

import (
	"encoding/binary"
	"image"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/kiesman99/pixeliter/pkg/raster"
)

// Layout describes a headerless sample stream: rows top to bottom, pixels left
// to right, bands interleaved inside each pixel.
type Layout struct {
	DataType raster.DataType
	Width    int
	Height   int
	Bands    int

	// Tile size of the image built by Read. Zero means one tile spanning the image.
	TileWidth  int
	TileHeight int

	// Nil means little endian
	ByteOrder binary.ByteOrder
}

// Bounds on what a single Layout may describe. Read allocates every tile up
// front, so the tile count is capped independently of the sample count.
const (
	maxSamples = 1 << 31
	maxTiles   = 1 << 16
)

func (l Layout) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return errors.Errorf("width and height must be positive, got %dx%d", l.Width, l.Height)
	}
	if l.Bands <= 0 {
		return errors.Errorf("band count must be positive, got %d", l.Bands)
	}
	if l.DataType.Size() == 0 {
		return errors.Errorf("unsupported data type %v", l.DataType)
	}
	if l.TileWidth < 0 || l.TileHeight < 0 {
		return errors.Errorf("tile size must not be negative, got %dx%d", l.TileWidth, l.TileHeight)
	}
	if float64(l.Width)*float64(l.Height)*float64(l.Bands) > maxSamples {
		return errors.Errorf("%dx%dx%d samples is too large", l.Width, l.Height, l.Bands)
	}
	if n := l.Tiles(); n > maxTiles {
		tw, th := l.tileSize()
		return errors.Errorf("%dx%d tiles split the image into %d tiles, at most %d are allowed", tw, th, n, maxTiles)
	}
	return nil
}

func (l Layout) Bounds() image.Rectangle {
	return image.Rect(0, 0, l.Width, l.Height)
}

// Samples is the number of samples in the stream
func (l Layout) Samples() int64 {
	return int64(l.Width) * int64(l.Height) * int64(l.Bands)
}

// Size is the stream length in bytes
func (l Layout) Size() int64 {
	return l.Samples() * int64(l.DataType.Size())
}

// Tiles is the number of tiles Read splits the image into
func (l Layout) Tiles() int64 {
	tw, th := l.tileSize()
	if tw <= 0 || th <= 0 {
		return 0
	}
	return int64((l.Width+tw-1)/tw) * int64((l.Height+th-1)/th)
}

func (l Layout) order() binary.ByteOrder {
	if l.ByteOrder == nil {
		return binary.LittleEndian
	}
	return l.ByteOrder
}

func (l Layout) tileSize() (int, int) {
	tw, th := l.TileWidth, l.TileHeight
	if tw == 0 {
		tw = l.Width
	}
	if th == 0 {
		th = l.Height
	}
	return tw, th
}

// ParseByteOrder accepts little/le or big/be
func ParseByteOrder(s string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "little", "le":
		return binary.LittleEndian, nil
	case "big", "be":
		return binary.BigEndian, nil
	}
	return nil, errors.Errorf("unknown byte order %q (want little or big)", s)
}

// decode converts one encoded sample and stores it at the iterator position
func decode(buf []byte, dt raster.DataType, order binary.ByteOrder, set setter) error {
	switch dt {
	case raster.TypeByte:
		return set.SetSample(int(buf[0]))
	case raster.TypeShort:
		return set.SetSample(int(int16(order.Uint16(buf))))
	case raster.TypeInt:
		return set.SetSample(int(int32(order.Uint32(buf))))
	case raster.TypeFloat:
		return set.SetSampleFloat(math.Float32frombits(order.Uint32(buf)))
	case raster.TypeDouble:
		return set.SetSampleDouble(math.Float64frombits(order.Uint64(buf)))
	}
	return errors.Errorf("unsupported data type %v", dt)
}

// encode writes the sample at the iterator position into buf
func encode(buf []byte, dt raster.DataType, order binary.ByteOrder, get getter) {
	switch dt {
	case raster.TypeByte:
		buf[0] = uint8(get.Sample())
	case raster.TypeShort:
		order.PutUint16(buf, uint16(int16(get.Sample())))
	case raster.TypeInt:
		order.PutUint32(buf, uint32(int32(get.Sample())))
	case raster.TypeFloat:
		order.PutUint32(buf, math.Float32bits(get.SampleFloat()))
	case raster.TypeDouble:
		order.PutUint64(buf, math.Float64bits(get.SampleDouble()))
	}
}

type setter interface {
	SetSample(int) error
	SetSampleFloat(float32) error
	SetSampleDouble(float64) error
}

type getter interface {
	Sample() int
	SampleFloat() float32
	SampleDouble() float64
}
