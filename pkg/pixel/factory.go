package pixel

import (
	"image"

	"github.com/kiesman99/pixeliter/pkg/raster"
	"github.com/pkg/errors"
)

// layoutOf classifies a raster's sample storage. Only contiguous single-bank
// byte and float layouts that expose their banks qualify for direct access.
func layoutOf(r raster.Raster) accessor {
	if r == nil {
		return accessGeneric
	}
	d, ok := r.(raster.Direct)
	if !ok {
		return accessGeneric
	}
	sm := r.SampleModel()
	if !sm.IsContiguous() {
		return accessGeneric
	}
	data := d.DataBuffer()
	switch sm.DataType {
	case raster.TypeByte:
		if data.Bytes(0) != nil {
			return accessByte
		}
	case raster.TypeFloat:
		if data.Floats(0) != nil {
			return accessFloat
		}
	}
	return accessGeneric
}

// chooseAccessor picks the direct path only when source and destination share
// the same direct layout, stride and origin, since both are addressed by one cursor
func chooseAccessor(src, dst raster.Raster) accessor {
	access := layoutOf(src)
	if access == accessGeneric || dst == nil {
		return access
	}
	if layoutOf(dst) != access ||
		dst.SampleModel().ScanlineStride != src.SampleModel().ScanlineStride ||
		dst.Bounds().Min != src.Bounds().Min {
		return accessGeneric
	}
	return access
}

func rasterSource(r raster.Raster, w raster.WritableRaster) tileSource {
	b := r.Bounds()
	src := tileSource{
		grid:     raster.GridCovering(b, b.Dx(), b.Dy(), b.Min),
		numBands: r.NumBands(),
		read:     func(int, int) raster.Raster { return r },
	}
	if w != nil {
		src.write = func(int, int) raster.WritableRaster { return w }
	}
	return src
}

func newRasterIterator(r raster.Raster, w raster.WritableRaster, area *image.Rectangle, order Direction) (Iterator, error) {
	if r == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "nil raster")
	}
	a, err := iterationArea(r.Bounds(), area)
	if err != nil {
		return nil, err
	}
	var dst raster.Raster
	if w != nil {
		dst = w
	}
	return newEngine(rasterSource(r, w), a, order, chooseAccessor(r, dst)), nil
}

func newImageIterator(img raster.TiledImage, w raster.WritableTiledImage, area *image.Rectangle, order Direction) (Iterator, error) {
	if img == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "nil image")
	}
	a, err := iterationArea(img.Bounds(), area)
	if err != nil {
		return nil, err
	}

	g := img.Grid()
	first := img.Tile(g.MinTileX, g.MinTileY)
	var firstDst raster.Raster
	if w != nil {
		firstDst = w.Tile(g.MinTileX, g.MinTileY)
	}
	access := chooseAccessor(first, firstDst)

	if g.NumXTiles == 1 && g.NumYTiles == 1 {
		// one tile: iterate it as a plain raster
		src := rasterSource(first, nil)
		src.numBands = img.NumBands()
		if w != nil {
			tx, ty := g.MinTileX, g.MinTileY
			src.write = func(int, int) raster.WritableRaster { return w.WritableTile(tx, ty) }
			src.release = func(int, int) { w.ReleaseWritableTile(tx, ty) }
		}
		return newEngine(src, a, order, access), nil
	}

	src := tileSource{
		grid:     g,
		numBands: img.NumBands(),
		read:     img.Tile,
	}
	if w != nil {
		src.write = w.WritableTile
		src.release = w.ReleaseWritableTile
	}
	return newEngine(src, a, order, access), nil
}

// NewReadOnly returns a default iterator over r. A nil area iterates the whole raster.
func NewReadOnly(r raster.Raster, area *image.Rectangle) (Iterator, error) {
	return newRasterIterator(r, nil, area, Tiled)
}

// NewRowMajor returns a row-major iterator over r
func NewRowMajor(r raster.Raster, area *image.Rectangle) (Iterator, error) {
	return newRasterIterator(r, nil, area, Linear)
}

// NewReadOnlyImage returns a default iterator over img, visiting one tile at a time
func NewReadOnlyImage(img raster.TiledImage, area *image.Rectangle) (Iterator, error) {
	return newImageIterator(img, nil, area, Tiled)
}

// NewRowMajorImage returns a row-major iterator over img
func NewRowMajorImage(img raster.TiledImage, area *image.Rectangle) (Iterator, error) {
	return newImageIterator(img, nil, area, Linear)
}

// NewReadWrite returns a default iterator that reads from src and writes to dst.
// Both rasters must have the same bounds, band count and data type.
func NewReadWrite(src raster.Raster, dst raster.WritableRaster, area *image.Rectangle) (Iterator, error) {
	if err := checkRasters(src, dst); err != nil {
		return nil, err
	}
	return newRasterIterator(src, dst, area, Tiled)
}

// NewRowMajorReadWrite is the row-major counterpart of NewReadWrite
func NewRowMajorReadWrite(src raster.Raster, dst raster.WritableRaster, area *image.Rectangle) (Iterator, error) {
	if err := checkRasters(src, dst); err != nil {
		return nil, err
	}
	return newRasterIterator(src, dst, area, Linear)
}

// NewReadWriteImage returns a default iterator that reads from src and writes to dst.
// Both images must also share the same tile grid.
func NewReadWriteImage(src raster.TiledImage, dst raster.WritableTiledImage, area *image.Rectangle) (Iterator, error) {
	if err := checkImages(src, dst); err != nil {
		return nil, err
	}
	return newImageIterator(src, dst, area, Tiled)
}

// NewRowMajorReadWriteImage is the row-major counterpart of NewReadWriteImage
func NewRowMajorReadWriteImage(src raster.TiledImage, dst raster.WritableTiledImage, area *image.Rectangle) (Iterator, error) {
	if err := checkImages(src, dst); err != nil {
		return nil, err
	}
	return newImageIterator(src, dst, area, Linear)
}
