package pixel

import (
	"image"

	"github.com/kiesman99/pixeliter/pkg/raster"
	"github.com/pkg/errors"
)

// accessor selects how samples are read and written. The factory fixes one per
// iterator; a tile that does not qualify for it is read through accessGeneric.
type accessor int

const (
	// accessGeneric goes through the raster's per-sample methods and works for any layout
	accessGeneric accessor = iota
	// accessByte indexes the byte bank of a contiguous single-bank tile directly
	accessByte
	// accessFloat indexes the float32 bank of a contiguous single-bank tile directly
	accessFloat
)

func (a accessor) String() string {
	switch a {
	case accessByte:
		return "byte-direct"
	case accessFloat:
		return "float-direct"
	}
	return "generic"
}

type cursorState int

const (
	beforeStart cursorState = iota
	active
	exhausted
)

// tileSource hands out the tiles an engine traverses
type tileSource struct {
	grid     raster.TileGrid
	numBands int
	read     func(tx, ty int) raster.Raster
	// write and release are nil for read-only iteration; release may be nil on its own
	write   func(tx, ty int) raster.WritableRaster
	release func(tx, ty int)
}

// engine is the single traversal state machine behind every row-major and
// default iterator. Wrap-around logic lives in Next; per-tile state is only
// ever changed by bind.
type engine struct {
	src    tileSource
	area   image.Rectangle
	order  Direction
	access accessor

	// inclusive tile range covering area
	tMinX, tMinY, tMaxX, tMaxY int

	state      cursorState
	bound      bool
	tX, tY     int
	x, y, band int

	// active tile intersected with the area, max exclusive
	minX, minY, maxX, maxY int
	numBands               int
	cur                    raster.Raster
	dst                    raster.WritableRaster

	// direct access, tileAccess is access or accessGeneric
	tileAccess accessor
	origin     image.Point
	stride     int
	cursor     int
	bytes      []uint8
	floats     []float32
	wbytes     []uint8
	wfloats    []float32
}

func newEngine(src tileSource, area image.Rectangle, order Direction, access accessor) *engine {
	min := src.grid.TileIndex(area.Min.X, area.Min.Y)
	max := src.grid.TileIndex(area.Max.X-1, area.Max.Y-1)
	return &engine{
		src:    src,
		area:   area,
		order:  order,
		access: access,
		tMinX:  min.X,
		tMinY:  min.Y,
		tMaxX:  max.X,
		tMaxY:  max.Y,
	}
}

// bind makes tile (tx, ty) the active tile and recomputes the local bounds
func (e *engine) bind(tx, ty int) {
	if e.bound && tx == e.tX && ty == e.tY {
		return
	}
	e.releaseTile()

	r := e.src.read(tx, ty)
	e.tX, e.tY, e.cur, e.bound = tx, ty, r, true
	e.numBands = r.NumBands()

	span := e.src.grid.TileRect(tx, ty).Intersect(r.Bounds()).Intersect(e.area)
	e.minX, e.minY, e.maxX, e.maxY = span.Min.X, span.Min.Y, span.Max.X, span.Max.Y

	if e.src.write != nil {
		e.dst = e.src.write(tx, ty)
	}

	e.tileAccess = accessGeneric
	if e.access != accessGeneric {
		var dst raster.Raster
		if e.dst != nil {
			dst = e.dst
		}
		if chooseAccessor(r, dst) == e.access {
			e.tileAccess = e.access
		}
	}

	switch e.tileAccess {
	case accessByte:
		e.origin = r.Bounds().Min
		e.stride = r.SampleModel().ScanlineStride
		e.bytes = r.(raster.Direct).DataBuffer().Bytes(0)
		if e.dst != nil {
			e.wbytes = e.dst.(raster.Direct).DataBuffer().Bytes(0)
		}
	case accessFloat:
		e.origin = r.Bounds().Min
		e.stride = r.SampleModel().ScanlineStride
		e.floats = r.(raster.Direct).DataBuffer().Floats(0)
		if e.dst != nil {
			e.wfloats = e.dst.(raster.Direct).DataBuffer().Floats(0)
		}
	}
}

func (e *engine) releaseTile() {
	if e.dst != nil && e.src.release != nil {
		e.src.release(e.tX, e.tY)
	}
	e.dst = nil
	e.wbytes = nil
	e.wfloats = nil
}

// seek recomputes the flat data cursor from (x, y, band)
func (e *engine) seek() {
	if e.tileAccess == accessGeneric {
		return
	}
	e.cursor = (e.y-e.origin.Y)*e.stride + (e.x-e.origin.X)*e.numBands + e.band
}

func (e *engine) Next() bool {
	switch e.state {
	case exhausted:
		return false
	case beforeStart:
		e.state = active
		e.bind(e.tMinX, e.tMinY)
		e.x, e.y, e.band = e.minX, e.minY, 0
		e.seek()
		return true
	}

	// bands are contiguous in direct layouts, so stepping to the next band,
	// or to band 0 of the next pixel, is one element forward
	e.band++
	if e.band < e.numBands {
		e.cursor++
		return true
	}
	e.band = 0
	e.x++
	if e.x < e.maxX {
		e.cursor++
		return true
	}

	if e.order == Linear {
		return e.nextLinear()
	}
	return e.nextTiled()
}

// nextLinear handles the end of a tile's share of a row in row-major order
func (e *engine) nextLinear() bool {
	switch {
	case e.tX < e.tMaxX:
		e.bind(e.tX+1, e.tY)
	case e.y+1 < e.maxY:
		e.y++
		e.bind(e.tMinX, e.tY)
	case e.tY < e.tMaxY:
		e.bind(e.tMinX, e.tY+1)
		e.y = e.minY
	default:
		e.state = exhausted
		return false
	}
	e.x = e.minX
	e.seek()
	return true
}

// nextTiled handles the end of a row inside a tile in tile order
func (e *engine) nextTiled() bool {
	if e.y+1 < e.maxY {
		e.y++
		e.x = e.minX
		e.seek()
		return true
	}
	switch {
	case e.tX < e.tMaxX:
		e.bind(e.tX+1, e.tY)
	case e.tY < e.tMaxY:
		e.bind(e.tMinX, e.tY+1)
	default:
		e.state = exhausted
		return false
	}
	e.x, e.y = e.minX, e.minY
	e.seek()
	return true
}

func (e *engine) X() int {
	return e.x
}

func (e *engine) Y() int {
	return e.y
}

func (e *engine) Band() int {
	return e.band
}

func (e *engine) NumBands() int {
	return e.src.numBands
}

func (e *engine) Bounds() image.Rectangle {
	return e.area
}

func (e *engine) Direction() Direction {
	if e.tMinX == e.tMaxX {
		return Linear
	}
	return e.order
}

func (e *engine) Sample() int {
	switch e.tileAccess {
	case accessByte:
		return int(e.bytes[e.cursor])
	case accessFloat:
		return int(e.floats[e.cursor])
	}
	return e.cur.Sample(e.x, e.y, e.band)
}

func (e *engine) SampleFloat() float32 {
	switch e.tileAccess {
	case accessByte:
		return float32(e.bytes[e.cursor])
	case accessFloat:
		return e.floats[e.cursor]
	}
	return e.cur.SampleFloat(e.x, e.y, e.band)
}

func (e *engine) SampleDouble() float64 {
	switch e.tileAccess {
	case accessByte:
		return float64(e.bytes[e.cursor])
	case accessFloat:
		return float64(e.floats[e.cursor])
	}
	return e.cur.SampleDouble(e.x, e.y, e.band)
}

func (e *engine) checkWritable() error {
	if e.src.write == nil {
		return errors.Wrap(ErrUnsupportedOperation, "iterator is read-only")
	}
	if e.dst == nil {
		return errors.Wrap(ErrUnsupportedOperation, "no tile is held for writing")
	}
	return nil
}

func (e *engine) SetSample(v int) error {
	if err := e.checkWritable(); err != nil {
		return err
	}
	switch e.tileAccess {
	case accessByte:
		e.wbytes[e.cursor] = uint8(v)
	case accessFloat:
		e.wfloats[e.cursor] = float32(v)
	default:
		e.dst.SetSample(e.x, e.y, e.band, v)
	}
	return nil
}

func (e *engine) SetSampleFloat(v float32) error {
	if err := e.checkWritable(); err != nil {
		return err
	}
	switch e.tileAccess {
	case accessByte:
		e.wbytes[e.cursor] = uint8(int(v))
	case accessFloat:
		e.wfloats[e.cursor] = v
	default:
		e.dst.SetSampleFloat(e.x, e.y, e.band, v)
	}
	return nil
}

func (e *engine) SetSampleDouble(v float64) error {
	if err := e.checkWritable(); err != nil {
		return err
	}
	switch e.tileAccess {
	case accessByte:
		e.wbytes[e.cursor] = uint8(int(v))
	case accessFloat:
		e.wfloats[e.cursor] = float32(v)
	default:
		e.dst.SetSampleDouble(e.x, e.y, e.band, v)
	}
	return nil
}

// MoveTo leaves the cursor untouched when it fails
func (e *engine) MoveTo(x, y, band int) error {
	if !image.Pt(x, y).In(e.area) {
		return errors.Wrapf(ErrOutOfBounds, "pixel (%d,%d) is outside the iteration area %v", x, y, e.area)
	}

	t := e.src.grid.TileIndex(x, y)
	numBands := e.numBands
	if !e.bound || t.X != e.tX || t.Y != e.tY {
		numBands = e.src.read(t.X, t.Y).NumBands()
	}
	if band < 0 || band >= numBands {
		return errors.Wrapf(ErrOutOfBounds, "band %d is not in [0,%d)", band, numBands)
	}

	e.bind(t.X, t.Y)
	e.x, e.y, e.band = x, y, band
	e.state = active
	e.seek()
	return nil
}

func (e *engine) Rewind() {
	e.releaseTile()
	e.bound = false
	e.cur = nil
	e.state = beforeStart
}

func (e *engine) Close() error {
	e.releaseTile()
	return nil
}
