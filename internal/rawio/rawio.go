// Package rawio moves headerless sample streams in and out of tiled images
// using the pixel iterators.
package rawio

import (
	"bufio"
	"encoding/binary"
	"image"
	"io"

	"github.com/pkg/errors"

	"github.com/kiesman99/pixeliter/pkg/pixel"
	"github.com/kiesman99/pixeliter/pkg/raster"
)

// Read loads a stream described by l into a new pixel-interleaved Mosaic anchored at (0,0).
// A stream shorter than l.Size() fails with an error wrapping io.ErrUnexpectedEOF.
// Trailing bytes are not consumed.
func Read(r io.Reader, l Layout) (*raster.Mosaic, error) {
	if err := l.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid layout")
	}

	tw, th := l.tileSize()
	img, err := raster.NewMosaic(l.Bounds(), raster.NewInterleavedModel(l.DataType, tw, th, l.Bands), image.Point{})
	if err != nil {
		return nil, err
	}

	it, err := pixel.NewRowMajorReadWriteImage(img, img, nil)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	br := bufio.NewReader(r)
	order := l.order()
	buf := make([]byte, l.DataType.Size())

	var n int64
	for it.Next() {
		if _, err := io.ReadFull(br, buf); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, errors.Wrapf(err, "reading sample %d of %d", n, l.Samples())
		}
		if err := decode(buf, l.DataType, order, it); err != nil {
			return nil, err
		}
		n++
	}
	return img, nil
}

// Write streams the samples of img inside area (nil for all of it) to w in row-major,
// band-interleaved order, encoded as the image's data type.
func Write(w io.Writer, img raster.TiledImage, area *image.Rectangle, order binary.ByteOrder) error {
	it, err := pixel.NewRowMajorImage(img, area)
	if err != nil {
		return err
	}
	defer it.Close()

	if order == nil {
		order = binary.LittleEndian
	}
	dt := img.SampleModel().DataType
	buf := make([]byte, dt.Size())
	bw := bufio.NewWriter(w)

	for it.Next() {
		encode(buf, dt, order, it)
		if _, err := bw.Write(buf); err != nil {
			return errors.Wrap(err, "writing samples")
		}
	}
	return errors.Wrap(bw.Flush(), "writing samples")
}
