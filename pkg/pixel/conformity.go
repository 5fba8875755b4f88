package pixel

import (
	"fmt"
	"strings"

	"github.com/kiesman99/pixeliter/pkg/raster"
	"github.com/pkg/errors"
)

type mismatches []string

func (m *mismatches) check(ok bool, format string, a ...interface{}) {
	if !ok {
		*m = append(*m, fmt.Sprintf(format, a...))
	}
}

func (m mismatches) err(what string) error {
	if len(m) == 0 {
		return nil
	}
	return errors.Wrapf(ErrInvalidArgument, "incompatible %s: %s", what, strings.Join(m, ", "))
}

// checkRasters fails unless src and dst agree on origin, size, band count and data type.
// Every dimension is checked on its own and all disagreements are reported.
func checkRasters(src raster.Raster, dst raster.WritableRaster) error {
	if src == nil || dst == nil {
		return errors.Wrap(ErrInvalidArgument, "read-write iteration needs both a source and a destination")
	}

	var m mismatches
	sb, db := src.Bounds(), dst.Bounds()
	m.check(sb.Min == db.Min, "origin %v != %v", sb.Min, db.Min)
	m.check(sb.Dx() == db.Dx(), "width %d != %d", sb.Dx(), db.Dx())
	m.check(sb.Dy() == db.Dy(), "height %d != %d", sb.Dy(), db.Dy())
	m.check(src.NumBands() == dst.NumBands(), "band count %d != %d", src.NumBands(), dst.NumBands())
	st, dt := src.SampleModel().DataType, dst.SampleModel().DataType
	m.check(st == dt, "data type %v != %v", st, dt)
	return m.err("rasters")
}

// checkImages is checkRasters for tiled images, additionally requiring identical tile grids
func checkImages(src raster.TiledImage, dst raster.WritableTiledImage) error {
	if src == nil || dst == nil {
		return errors.Wrap(ErrInvalidArgument, "read-write iteration needs both a source and a destination")
	}

	var m mismatches
	sb, db := src.Bounds(), dst.Bounds()
	m.check(sb.Min == db.Min, "origin %v != %v", sb.Min, db.Min)
	m.check(sb.Dx() == db.Dx(), "width %d != %d", sb.Dx(), db.Dx())
	m.check(sb.Dy() == db.Dy(), "height %d != %d", sb.Dy(), db.Dy())
	m.check(src.NumBands() == dst.NumBands(), "band count %d != %d", src.NumBands(), dst.NumBands())
	st, dt := src.SampleModel().DataType, dst.SampleModel().DataType
	m.check(st == dt, "data type %v != %v", st, dt)

	sg, dg := src.Grid(), dst.Grid()
	m.check(sg.TileWidth == dg.TileWidth, "tile width %d != %d", sg.TileWidth, dg.TileWidth)
	m.check(sg.TileHeight == dg.TileHeight, "tile height %d != %d", sg.TileHeight, dg.TileHeight)
	m.check(sg.XOffset == dg.XOffset && sg.YOffset == dg.YOffset,
		"tile grid offset (%d,%d) != (%d,%d)", sg.XOffset, sg.YOffset, dg.XOffset, dg.YOffset)
	m.check(sg.MinTileX == dg.MinTileX && sg.MinTileY == dg.MinTileY,
		"min tile (%d,%d) != (%d,%d)", sg.MinTileX, sg.MinTileY, dg.MinTileX, dg.MinTileY)
	m.check(sg.NumXTiles == dg.NumXTiles && sg.NumYTiles == dg.NumYTiles,
		"tile count %dx%d != %dx%d", sg.NumXTiles, sg.NumYTiles, dg.NumXTiles, dg.NumYTiles)
	return m.err("images")
}
