package raster

import (
	"image"
	"sync"

	"github.com/pkg/errors"
)

// TileGrid describes how an image is cut into tiles. Tile (tx, ty) covers
// [XOffset+tx*TileWidth, XOffset+(tx+1)*TileWidth) horizontally, and likewise vertically.
type TileGrid struct {
	TileWidth  int
	TileHeight int
	MinTileX   int
	MinTileY   int
	NumXTiles  int
	NumYTiles  int
	XOffset    int
	YOffset    int
}

// FloorDiv divides rounding towards negative infinity
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// GridCovering returns the grid of tileWidth x tileHeight tiles anchored at offset that covers bounds
func GridCovering(bounds image.Rectangle, tileWidth, tileHeight int, offset image.Point) TileGrid {
	g := TileGrid{
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
		XOffset:    offset.X,
		YOffset:    offset.Y,
	}
	if bounds.Empty() {
		return g
	}
	min := g.TileIndex(bounds.Min.X, bounds.Min.Y)
	max := g.TileIndex(bounds.Max.X-1, bounds.Max.Y-1)
	g.MinTileX, g.MinTileY = min.X, min.Y
	g.NumXTiles = max.X - min.X + 1
	g.NumYTiles = max.Y - min.Y + 1
	return g
}

// MaxTileX returns the last tile column, inclusive
func (g TileGrid) MaxTileX() int {
	return g.MinTileX + g.NumXTiles - 1
}

// MaxTileY returns the last tile row, inclusive
func (g TileGrid) MaxTileY() int {
	return g.MinTileY + g.NumYTiles - 1
}

// TileIndex returns the indices of the tile containing pixel (x, y)
func (g TileGrid) TileIndex(x, y int) image.Point {
	return image.Pt(FloorDiv(x-g.XOffset, g.TileWidth), FloorDiv(y-g.YOffset, g.TileHeight))
}

// TileRect returns the full rectangle of tile (tx, ty)
func (g TileGrid) TileRect(tx, ty int) image.Rectangle {
	x := g.XOffset + tx*g.TileWidth
	y := g.YOffset + ty*g.TileHeight
	return image.Rect(x, y, x+g.TileWidth, y+g.TileHeight)
}

// Contains reports whether (tx, ty) is a tile of the grid
func (g TileGrid) Contains(tx, ty int) bool {
	return tx >= g.MinTileX && tx <= g.MaxTileX() && ty >= g.MinTileY && ty <= g.MaxTileY()
}

// TiledImage is an image stored as a grid of rasters
type TiledImage interface {
	Bounds() image.Rectangle
	NumBands() int
	SampleModel() SampleModel
	Grid() TileGrid
	Tile(tx, ty int) Raster
}

// WritableTiledImage is a TiledImage whose tiles can be checked out for writing.
// Every WritableTile call must be paired with a ReleaseWritableTile call.
type WritableTiledImage interface {
	TiledImage
	WritableTile(tx, ty int) WritableRaster
	ReleaseWritableTile(tx, ty int)
}

// Mosaic is an in-memory tiled image
type Mosaic struct {
	bounds image.Rectangle
	model  SampleModel
	grid   TileGrid
	tiles  []WritableRaster

	mu        sync.Mutex
	checkouts map[image.Point]int
}

// NewMosaic allocates every tile of an image covering bounds. The tile size and
// band layout come from model; offset anchors the tile grid.
func NewMosaic(bounds image.Rectangle, model SampleModel, offset image.Point) (*Mosaic, error) {
	if bounds.Empty() {
		return nil, errors.Errorf("empty image bounds %v", bounds)
	}
	if model.Width <= 0 || model.Height <= 0 {
		return nil, errors.Errorf("invalid tile size %dx%d", model.Width, model.Height)
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}

	m := &Mosaic{
		bounds:    bounds,
		model:     model,
		grid:      GridCovering(bounds, model.Width, model.Height, offset),
		checkouts: map[image.Point]int{},
	}
	m.tiles = make([]WritableRaster, m.grid.NumXTiles*m.grid.NumYTiles)

	for ty := m.grid.MinTileY; ty <= m.grid.MaxTileY(); ty++ {
		for tx := m.grid.MinTileX; tx <= m.grid.MaxTileX(); tx++ {
			tile, err := NewBuffer(model, m.grid.TileRect(tx, ty).Min)
			if err != nil {
				return nil, err
			}
			m.tiles[m.slot(tx, ty)] = tile
		}
	}
	return m, nil
}

// NewMosaicFromRaster wraps a single raster as a one-tile image
func NewMosaicFromRaster(r WritableRaster) *Mosaic {
	bounds := r.Bounds()
	return &Mosaic{
		bounds:    bounds,
		model:     r.SampleModel(),
		grid:      GridCovering(bounds, bounds.Dx(), bounds.Dy(), bounds.Min),
		tiles:     []WritableRaster{r},
		checkouts: map[image.Point]int{},
	}
}

func (m *Mosaic) slot(tx, ty int) int {
	return (ty-m.grid.MinTileY)*m.grid.NumXTiles + (tx - m.grid.MinTileX)
}

func (m *Mosaic) Bounds() image.Rectangle {
	return m.bounds
}

func (m *Mosaic) NumBands() int {
	return m.model.NumBands
}

func (m *Mosaic) SampleModel() SampleModel {
	return m.model
}

func (m *Mosaic) Grid() TileGrid {
	return m.grid
}

// Tile returns tile (tx, ty), or nil when it is not part of the grid
func (m *Mosaic) Tile(tx, ty int) Raster {
	if !m.grid.Contains(tx, ty) {
		return nil
	}
	return m.tiles[m.slot(tx, ty)]
}

// SetTile replaces tile (tx, ty). The raster must cover exactly the tile rectangle.
func (m *Mosaic) SetTile(tx, ty int, r WritableRaster) error {
	if !m.grid.Contains(tx, ty) {
		return errors.Errorf("tile (%d,%d) is outside the grid", tx, ty)
	}
	if want := m.grid.TileRect(tx, ty); r.Bounds() != want {
		return errors.Errorf("tile (%d,%d) must cover %v, got %v", tx, ty, want, r.Bounds())
	}
	m.tiles[m.slot(tx, ty)] = r
	return nil
}

func (m *Mosaic) WritableTile(tx, ty int) WritableRaster {
	if !m.grid.Contains(tx, ty) {
		return nil
	}
	m.mu.Lock()
	m.checkouts[image.Pt(tx, ty)]++
	m.mu.Unlock()
	return m.tiles[m.slot(tx, ty)]
}

func (m *Mosaic) ReleaseWritableTile(tx, ty int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := image.Pt(tx, ty)
	if m.checkouts[p] <= 1 {
		delete(m.checkouts, p)
		return
	}
	m.checkouts[p]--
}

// Checkouts returns the number of writable tiles not yet released
func (m *Mosaic) Checkouts() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.checkouts {
		n += c
	}
	return n
}
