package server

import (
	"image"
	"net/url"

	"github.com/oapi-codegen/runtime"

	"github.com/kiesman99/pixeliter/internal/rawio"
	"github.com/kiesman99/pixeliter/internal/scan"
	"github.com/kiesman99/pixeliter/pkg/raster"
)

// RasterParams are the query parameters describing the raw request body
type RasterParams struct {
	Width      int
	Height     int
	Bands      int
	Type       string
	TileWidth  int
	TileHeight int
	ByteOrder  string
	Area       string
	Select     []int
	Workers    int
}

// RescaleParams adds the linear transform to RasterParams
type RescaleParams struct {
	RasterParams
	Scale  float64
	Offset float64
}

// paramError marks a query parameter that could not be bound
type paramError struct {
	name string
	err  error
}

func (e *paramError) Error() string {
	return "invalid query parameter " + e.name + ": " + e.err.Error()
}

func (e *paramError) Unwrap() error {
	return e.err
}

// bind reads one form style query parameter. Lists are comma separated, so
// only they are bound unexploded.
func bind(q url.Values, name string, required bool, dest interface{}) error {
	_, list := dest.(*[]int)
	if err := runtime.BindQueryParameter("form", !list, required, name, q, dest); err != nil {
		return &paramError{name: name, err: err}
	}
	return nil
}

func bindRasterParams(q url.Values) (*RasterParams, error) {
	p := &RasterParams{Type: "byte", ByteOrder: "little"}

	for _, b := range []struct {
		name     string
		required bool
		dest     interface{}
	}{
		{"width", true, &p.Width},
		{"height", true, &p.Height},
		{"bands", true, &p.Bands},
		{"type", false, &p.Type},
		{"tile_width", false, &p.TileWidth},
		{"tile_height", false, &p.TileHeight},
		{"byte_order", false, &p.ByteOrder},
		{"area", false, &p.Area},
		{"select", false, &p.Select},
		{"workers", false, &p.Workers},
	} {
		if err := bind(q, b.name, b.required, b.dest); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func bindRescaleParams(q url.Values) (*RescaleParams, error) {
	rp, err := bindRasterParams(q)
	if err != nil {
		return nil, err
	}
	p := &RescaleParams{RasterParams: *rp, Scale: 1}
	if err := bind(q, "scale", true, &p.Scale); err != nil {
		return nil, err
	}
	if err := bind(q, "offset", false, &p.Offset); err != nil {
		return nil, err
	}
	return p, nil
}

// Layout converts the parameters into a raw stream layout
func (p *RasterParams) Layout() (rawio.Layout, error) {
	dt, err := raster.ParseDataType(p.Type)
	if err != nil {
		return rawio.Layout{}, &paramError{name: "type", err: err}
	}
	order, err := rawio.ParseByteOrder(p.ByteOrder)
	if err != nil {
		return rawio.Layout{}, &paramError{name: "byte_order", err: err}
	}
	l := rawio.Layout{
		DataType:   dt,
		Width:      p.Width,
		Height:     p.Height,
		Bands:      p.Bands,
		TileWidth:  p.TileWidth,
		TileHeight: p.TileHeight,
		ByteOrder:  order,
	}
	if err := l.Validate(); err != nil {
		return rawio.Layout{}, &paramError{name: "layout", err: err}
	}
	return l, nil
}

func (p *RasterParams) IterationArea() (*image.Rectangle, error) {
	area, err := scan.ParseArea(p.Area)
	if err != nil {
		return nil, &paramError{name: "area", err: err}
	}
	return area, nil
}
