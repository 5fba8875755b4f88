package raster

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// FromImage copies an already decoded image into a byte raster.
// Gray images give one band, everything else gives four RGBA bands.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if gray, ok := img.(*image.Gray); ok {
		buf, _ := NewInterleaved(TypeByte, bounds, 1)
		pix := buf.data.Bytes(0)
		for y := 0; y < height; y++ {
			src := gray.Pix[y*gray.Stride : y*gray.Stride+width]
			copy(pix[y*width:], src)
		}
		return buf
	}

	buf, _ := NewInterleaved(TypeByte, bounds, 4)
	pix := buf.data.Bytes(0)

	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < height; y++ {
			src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+width*4]
			copy(pix[y*width*4:], src)
		}
		return buf
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			idx := (y*width + x) * 4
			pix[idx] = byte(r >> 8)
			pix[idx+1] = byte(g >> 8)
			pix[idx+2] = byte(b >> 8)
			pix[idx+3] = byte(a >> 8)
		}
	}
	return buf
}

// Image converts a byte raster with 1 (gray), 3 (RGB) or 4 (RGBA) bands into a Go image
func (r *Buffer) Image() (image.Image, error) {
	if r.model.DataType != TypeByte {
		return nil, errors.Errorf("only byte rasters convert to images, got %v", r.model.DataType)
	}

	bounds := r.Bounds()
	switch r.model.NumBands {
	case 1:
		img := image.NewGray(bounds)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				img.SetGray(x, y, color.Gray{Y: uint8(r.Sample(x, y, 0))})
			}
		}
		return img, nil
	case 3, 4:
		img := image.NewRGBA(bounds)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := color.RGBA{
					R: uint8(r.Sample(x, y, 0)),
					G: uint8(r.Sample(x, y, 1)),
					B: uint8(r.Sample(x, y, 2)),
					A: 255,
				}
				if r.model.NumBands == 4 {
					c.A = uint8(r.Sample(x, y, 3))
				}
				img.SetRGBA(x, y, c)
			}
		}
		return img, nil
	}
	return nil, errors.Errorf("can't convert a %d band raster to an image", r.model.NumBands)
}
