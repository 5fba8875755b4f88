package analysis

import (
	"context"
	"image"
	"math"

	"github.com/kiesman99/pixeliter/pkg/pixel"
	"github.com/kiesman99/pixeliter/pkg/raster"
)

// Rescale writes v*scale+offset for every sample v of src inside area into the same
// position of dst, and returns the number of samples written. Integer destinations
// receive the result rounded and clamped to the range of their data type.
func Rescale(ctx context.Context, src raster.TiledImage, dst raster.WritableTiledImage, area *image.Rectangle, scale, offset float64) (int, error) {
	it, err := pixel.NewRowMajorReadWriteImage(src, dst, area)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	lo, hi, integer := sampleRange(dst.SampleModel().DataType)
	n := 0
	row := it.Bounds().Min.Y - 1
	for it.Next() {
		if it.Y() != row {
			row = it.Y()
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}

		v := it.SampleDouble()*scale + offset
		if integer {
			if math.IsNaN(v) {
				v = 0
			}
			v = math.Max(lo, math.Min(hi, math.Round(v)))
		}
		if err := it.SetSampleDouble(v); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func sampleRange(dt raster.DataType) (lo, hi float64, integer bool) {
	switch dt {
	case raster.TypeByte:
		return 0, math.MaxUint8, true
	case raster.TypeShort:
		return math.MinInt16, math.MaxInt16, true
	case raster.TypeInt:
		return math.MinInt32, math.MaxInt32, true
	}
	return 0, 0, false
}
