package pixel

import (
	"errors"
	"image"
	"testing"

	"github.com/kiesman99/pixeliter/pkg/raster"
)

var (
	_ Iterator = (*engine)(nil)
	_ Iterator = (*BandExtractor)(nil)
)

// testBounds is cut by testOffset into a 4x4 grid of 6x5 tiles, the outer ones partially used
var (
	testBounds = image.Rect(-3, 2, 17, 15)
	testOffset = image.Pt(1, -1)
)

func value(x, y, b int) int {
	return ((x*7+y*13+b*31)%251 + 251) % 251
}

type visit struct {
	x, y, b int
	v       float64
}

func fill(t *testing.T, m *raster.Mosaic, f func(x, y, b int) float64) {
	t.Helper()
	g := m.Grid()
	for ty := g.MinTileY; ty <= g.MaxTileY(); ty++ {
		for tx := g.MinTileX; tx <= g.MaxTileX(); tx++ {
			tile := m.WritableTile(tx, ty)
			rb := tile.Bounds()
			for y := rb.Min.Y; y < rb.Max.Y; y++ {
				for x := rb.Min.X; x < rb.Max.X; x++ {
					for b := 0; b < tile.NumBands(); b++ {
						tile.SetSampleDouble(x, y, b, f(x, y, b))
					}
				}
			}
			m.ReleaseWritableTile(tx, ty)
		}
	}
}

func intValues(x, y, b int) float64 {
	return float64(value(x, y, b))
}

func newTestMosaic(t *testing.T, model raster.SampleModel) *raster.Mosaic {
	t.Helper()
	m, err := raster.NewMosaic(testBounds, model, testOffset)
	if err != nil {
		t.Fatalf("Failed to create mosaic: %v", err)
	}
	fill(t, m, intValues)
	return m
}

func collect(it Iterator) []visit {
	var out []visit
	for it.Next() {
		out = append(out, visit{it.X(), it.Y(), it.Band(), it.SampleDouble()})
	}
	return out
}

type layoutCase struct {
	name   string
	model  raster.SampleModel
	access accessor
}

func layoutCases() []layoutCase {
	return []layoutCase{
		{"byte interleaved", raster.NewInterleavedModel(raster.TypeByte, 6, 5, 3), accessByte},
		{"float interleaved", raster.NewInterleavedModel(raster.TypeFloat, 6, 5, 2), accessFloat},
		{"short interleaved", raster.NewInterleavedModel(raster.TypeShort, 6, 5, 3), accessGeneric},
		{"byte banded", raster.NewBandedModel(raster.TypeByte, 6, 5, 3), accessGeneric},
		{"double banded", raster.NewBandedModel(raster.TypeDouble, 6, 5, 1), accessGeneric},
	}
}

func areaCases() []struct {
	name string
	area *image.Rectangle
	want image.Rectangle
} {
	crossing := image.Rect(0, 3, 11, 12)
	single := image.Rect(5, 5, 6, 6)
	clipped := image.Rect(-10, -10, 0, 4)
	return []struct {
		name string
		area *image.Rectangle
		want image.Rectangle
	}{
		{"whole image", nil, testBounds},
		{"crossing tiles", &crossing, crossing},
		{"single pixel", &single, single},
		{"clipped", &clipped, image.Rect(-3, 2, 0, 4)},
	}
}

type constructor struct {
	name  string
	build func(img raster.TiledImage, area *image.Rectangle) (Iterator, error)
	order Direction
}

func constructors() []constructor {
	return []constructor{
		{"row-major", NewRowMajorImage, Linear},
		{"default", NewReadOnlyImage, Tiled},
	}
}

func TestFullCoverage(t *testing.T) {
	for _, lc := range layoutCases() {
		m := newTestMosaic(t, lc.model)
		for _, ac := range areaCases() {
			for _, cc := range constructors() {
				t.Run(lc.name+"/"+ac.name+"/"+cc.name, func(t *testing.T) {
					it, err := cc.build(m, ac.area)
					if err != nil {
						t.Fatalf("Failed to create iterator: %v", err)
					}
					defer it.Close()

					if it.Bounds() != ac.want {
						t.Errorf("Expected iteration area %v, got %v", ac.want, it.Bounds())
					}

					visits := collect(it)
					want := ac.want.Dx() * ac.want.Dy() * lc.model.NumBands
					if len(visits) != want {
						t.Fatalf("Expected %d samples, got %d", want, len(visits))
					}

					seen := map[[3]int]bool{}
					for _, v := range visits {
						key := [3]int{v.x, v.y, v.b}
						if seen[key] {
							t.Fatalf("Sample %v visited twice", key)
						}
						seen[key] = true
						if !image.Pt(v.x, v.y).In(ac.want) || v.b < 0 || v.b >= lc.model.NumBands {
							t.Fatalf("Sample %v outside the iteration area", key)
						}
						if v.v != intValues(v.x, v.y, v.b) {
							t.Fatalf("Sample %v: expected %v, got %v", key, intValues(v.x, v.y, v.b), v.v)
						}
					}
				})
			}
		}
	}
}

func TestRowMajorOrder(t *testing.T) {
	m := newTestMosaic(t, raster.NewInterleavedModel(raster.TypeByte, 6, 5, 3))
	it, err := NewRowMajorImage(m, nil)
	if err != nil {
		t.Fatalf("Failed to create iterator: %v", err)
	}

	visits := collect(it)
	for i := 1; i < len(visits); i++ {
		prev, cur := visits[i-1], visits[i]
		samePixel := prev.x == cur.x && prev.y == cur.y
		switch {
		case samePixel:
			if cur.b != prev.b+1 {
				t.Fatalf("Bands of (%d,%d) not consecutive: %d then %d", cur.x, cur.y, prev.b, cur.b)
			}
		case cur.y == prev.y:
			if cur.x != prev.x+1 || cur.b != 0 || prev.b != 2 {
				t.Fatalf("Bad step within row: %+v then %+v", prev, cur)
			}
		default:
			if cur.y != prev.y+1 || cur.x != testBounds.Min.X || prev.x != testBounds.Max.X-1 {
				t.Fatalf("Bad row change: %+v then %+v", prev, cur)
			}
		}
	}
	if it.Direction() != Linear {
		t.Errorf("Expected linear direction, got %v", it.Direction())
	}
}

func TestDefaultOrderVisitsTilesOneAtATime(t *testing.T) {
	m := newTestMosaic(t, raster.NewInterleavedModel(raster.TypeFloat, 6, 5, 1))
	it, err := NewReadOnlyImage(m, nil)
	if err != nil {
		t.Fatalf("Failed to create iterator: %v", err)
	}
	if it.Direction() != Tiled {
		t.Errorf("Expected tiled direction, got %v", it.Direction())
	}

	g := m.Grid()
	finished := map[image.Point]bool{}
	var current image.Point
	first := true
	for _, v := range collect(it) {
		tile := g.TileIndex(v.x, v.y)
		if first || tile != current {
			if finished[tile] {
				t.Fatalf("Tile %v visited again after leaving it", tile)
			}
			if !first {
				finished[current] = true
				if tile.Y < current.Y || (tile.Y == current.Y && tile.X < current.X) {
					t.Fatalf("Tile %v visited after %v", tile, current)
				}
			}
			current = tile
			first = false
		}
	}
	finished[current] = true
	if len(finished) != g.NumXTiles*g.NumYTiles {
		t.Errorf("Expected %d tiles, visited %d", g.NumXTiles*g.NumYTiles, len(finished))
	}
}

func TestDirectMatchesGeneric(t *testing.T) {
	crossing := image.Rect(0, 3, 11, 12)
	for _, lc := range layoutCases() {
		t.Run(lc.name, func(t *testing.T) {
			m, err := raster.NewMosaic(testBounds, lc.model, testOffset)
			if err != nil {
				t.Fatalf("Failed to create mosaic: %v", err)
			}
			fill(t, m, func(x, y, b int) float64 { return float64(value(x, y, b)) + 0.5 })

			for _, area := range []*image.Rectangle{nil, &crossing} {
				it, err := NewRowMajorImage(m, area)
				if err != nil {
					t.Fatalf("Failed to create iterator: %v", err)
				}
				e := it.(*engine)
				if e.access != lc.access {
					t.Fatalf("Expected %v access, factory chose %v", lc.access, e.access)
				}

				a, _ := iterationArea(m.Bounds(), area)
				generic := newEngine(tileSource{grid: m.Grid(), numBands: m.NumBands(), read: m.Tile}, a, Linear, accessGeneric)

				direct := collect(it)
				reference := collect(generic)
				if len(direct) != len(reference) {
					t.Fatalf("Expected %d samples, got %d", len(reference), len(direct))
				}
				for i := range direct {
					if direct[i] != reference[i] {
						t.Fatalf("Sample %d: direct %+v, generic %+v", i, direct[i], reference[i])
					}
				}
			}
		})
	}
}

func TestByteSamplesAreUnsigned(t *testing.T) {
	r, err := raster.NewInterleaved(raster.TypeByte, image.Rect(0, 0, 2, 1), 1)
	if err != nil {
		t.Fatalf("Failed to create raster: %v", err)
	}
	r.DataBuffer().Bytes(0)[0] = 0xC8
	r.DataBuffer().Bytes(0)[1] = 0xFF

	it, err := NewRowMajor(r, nil)
	if err != nil {
		t.Fatalf("Failed to create iterator: %v", err)
	}
	want := []int{200, 255}
	for i := 0; it.Next(); i++ {
		if it.Sample() != want[i] {
			t.Errorf("Sample %d: expected %d, got %d", i, want[i], it.Sample())
		}
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		model raster.SampleModel
		write func(it Iterator, v int) error
		want  func(v int) float64
	}{
		{
			name:  "byte direct truncates",
			model: raster.NewInterleavedModel(raster.TypeByte, 6, 5, 3),
			write: func(it Iterator, v int) error { return it.SetSample(v + 200) },
			want:  func(v int) float64 { return float64((v + 200) & 0xff) },
		},
		{
			name:  "byte generic truncates",
			model: raster.NewBandedModel(raster.TypeByte, 6, 5, 3),
			write: func(it Iterator, v int) error { return it.SetSample(v + 200) },
			want:  func(v int) float64 { return float64((v + 200) & 0xff) },
		},
		{
			name:  "float direct",
			model: raster.NewInterleavedModel(raster.TypeFloat, 6, 5, 2),
			write: func(it Iterator, v int) error { return it.SetSampleFloat(float32(v) / 4) },
			want:  func(v int) float64 { return float64(float32(v) / 4) },
		},
		{
			name:  "double generic",
			model: raster.NewBandedModel(raster.TypeDouble, 6, 5, 2),
			write: func(it Iterator, v int) error { return it.SetSampleDouble(float64(v) * 1.5) },
			want:  func(v int) float64 { return float64(v) * 1.5 },
		},
	}

	for _, tc := range cases {
		for _, cc := range constructors() {
			t.Run(tc.name+"/"+cc.name, func(t *testing.T) {
				src := newTestMosaic(t, tc.model)
				dst, err := raster.NewMosaic(testBounds, tc.model, testOffset)
				if err != nil {
					t.Fatalf("Failed to create mosaic: %v", err)
				}

				build := NewRowMajorReadWriteImage
				if cc.order == Tiled {
					build = NewReadWriteImage
				}
				rw, err := build(src, dst, nil)
				if err != nil {
					t.Fatalf("Failed to create read-write iterator: %v", err)
				}
				for rw.Next() {
					if err := tc.write(rw, rw.Sample()); err != nil {
						t.Fatalf("Write failed: %v", err)
					}
				}
				if err := rw.Close(); err != nil {
					t.Fatalf("Close failed: %v", err)
				}
				if dst.Checkouts() != 0 {
					t.Errorf("Expected all tiles released, %d still checked out", dst.Checkouts())
				}

				it, err := NewRowMajorImage(dst, nil)
				if err != nil {
					t.Fatalf("Failed to create iterator: %v", err)
				}
				for it.Next() {
					want := tc.want(value(it.X(), it.Y(), it.Band()))
					if it.SampleDouble() != want {
						t.Fatalf("(%d,%d,%d): expected %v, got %v", it.X(), it.Y(), it.Band(), want, it.SampleDouble())
					}
				}
			})
		}
	}
}

func TestReadWriteInPlace(t *testing.T) {
	r, err := raster.NewInterleaved(raster.TypeByte, image.Rect(0, 0, 4, 3), 2)
	if err != nil {
		t.Fatalf("Failed to create raster: %v", err)
	}
	rw, err := NewReadWrite(r, r, nil)
	if err != nil {
		t.Fatalf("Failed to create iterator: %v", err)
	}
	defer rw.Close()

	for rw.Next() {
		rw.SetSample(rw.X() + 10*rw.Y() + 100*rw.Band())
	}
	if got := r.Sample(3, 2, 1); got != 123 {
		t.Errorf("Expected 123, got %d", got)
	}
}

func TestMoveToMatchesNext(t *testing.T) {
	crossing := image.Rect(0, 3, 11, 12)
	targets := [][3]int{{0, 3, 0}, {5, 4, 2}, {6, 4, 1}, {10, 11, 2}, {4, 9, 0}, {7, 8, 1}}

	for _, lc := range layoutCases() {
		if lc.model.NumBands < 3 {
			continue
		}
		for _, cc := range constructors() {
			t.Run(lc.name+"/"+cc.name, func(t *testing.T) {
				m := newTestMosaic(t, lc.model)
				for _, target := range targets {
					walker, _ := cc.build(m, &crossing)
					var want float64
					found := false
					for walker.Next() {
						if walker.X() == target[0] && walker.Y() == target[1] && walker.Band() == target[2] {
							want = walker.SampleDouble()
							found = true
							break
						}
					}
					if !found {
						t.Fatalf("Target %v never reached by Next", target)
					}

					it, _ := cc.build(m, &crossing)
					if err := it.MoveTo(target[0], target[1], target[2]); err != nil {
						t.Fatalf("MoveTo %v failed: %v", target, err)
					}
					if it.SampleDouble() != want {
						t.Errorf("MoveTo %v: expected %v, got %v", target, want, it.SampleDouble())
					}

					// the next sample agrees with the walker's next sample
					walkerMore := walker.Next()
					itMore := it.Next()
					if walkerMore != itMore {
						t.Fatalf("After %v: walker Next=%v, moved Next=%v", target, walkerMore, itMore)
					}
					if itMore && (it.X() != walker.X() || it.Y() != walker.Y() || it.Band() != walker.Band() ||
						it.SampleDouble() != walker.SampleDouble()) {
						t.Errorf("After %v: expected (%d,%d,%d), got (%d,%d,%d)", target,
							walker.X(), walker.Y(), walker.Band(), it.X(), it.Y(), it.Band())
					}
				}
			})
		}
	}
}

func TestMoveToOutOfBounds(t *testing.T) {
	m := newTestMosaic(t, raster.NewInterleavedModel(raster.TypeByte, 6, 5, 3))
	area := image.Rect(0, 3, 11, 12)
	it, err := NewRowMajorImage(m, &area)
	if err != nil {
		t.Fatalf("Failed to create iterator: %v", err)
	}
	it.Next()
	it.Next()
	x, y, b, v := it.X(), it.Y(), it.Band(), it.Sample()

	for _, target := range [][3]int{{-1, 3, 0}, {11, 3, 0}, {0, 12, 0}, {0, 3, 3}, {0, 3, -1}} {
		err := it.MoveTo(target[0], target[1], target[2])
		if !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("MoveTo %v: expected ErrOutOfBounds, got %v", target, err)
		}
		if it.X() != x || it.Y() != y || it.Band() != b || it.Sample() != v {
			t.Errorf("MoveTo %v changed the cursor", target)
		}
	}
}

func TestEmptyIntersection(t *testing.T) {
	m := newTestMosaic(t, raster.NewInterleavedModel(raster.TypeByte, 6, 5, 1))
	r, _ := raster.NewInterleaved(raster.TypeFloat, image.Rect(0, 0, 4, 4), 1)
	outside := image.Rect(100, 100, 110, 110)
	touching := image.Rect(4, 0, 8, 4)
	zero := image.Rect(1, 1, 1, 3)

	cases := []struct {
		name  string
		build func() (Iterator, error)
	}{
		{"image outside", func() (Iterator, error) { return NewReadOnlyImage(m, &outside) }},
		{"image row-major outside", func() (Iterator, error) { return NewRowMajorImage(m, &outside) }},
		{"raster touching edge", func() (Iterator, error) { return NewReadOnly(r, &touching) }},
		{"raster zero width", func() (Iterator, error) { return NewRowMajor(r, &zero) }},
		{"read-write outside", func() (Iterator, error) { return NewReadWrite(r, r, &outside) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			it, err := tc.build()
			if !errors.Is(err, ErrInvalidIterationArea) {
				t.Errorf("Expected ErrInvalidIterationArea, got %v", err)
			}
			if it != nil {
				t.Errorf("Expected no iterator, got %T", it)
			}
		})
	}
}

func TestRewindReplaysSequence(t *testing.T) {
	for _, lc := range layoutCases() {
		for _, cc := range constructors() {
			t.Run(lc.name+"/"+cc.name, func(t *testing.T) {
				m := newTestMosaic(t, lc.model)
				it, _ := cc.build(m, nil)
				first := collect(it)

				it.Rewind()
				second := collect(it)
				if len(first) != len(second) {
					t.Fatalf("Expected %d samples after rewind, got %d", len(first), len(second))
				}
				for i := range first {
					if first[i] != second[i] {
						t.Fatalf("Sample %d differs after rewind: %+v vs %+v", i, first[i], second[i])
					}
				}

				// rewinding after MoveTo starts from the beginning too
				it.Rewind()
				it.MoveTo(5, 5, 0)
				it.Rewind()
				if !it.Next() || it.X() != first[0].x || it.Y() != first[0].y {
					t.Errorf("Expected first sample at (%d,%d), got (%d,%d)", first[0].x, first[0].y, it.X(), it.Y())
				}
			})
		}
	}
}

func TestNextAfterExhaustion(t *testing.T) {
	r, _ := raster.NewInterleaved(raster.TypeByte, image.Rect(0, 0, 2, 2), 1)
	it, _ := NewRowMajor(r, nil)
	n := 0
	for it.Next() {
		n++
	}
	if n != 4 {
		t.Errorf("Expected 4 samples, got %d", n)
	}
	for i := 0; i < 3; i++ {
		if it.Next() {
			t.Fatalf("Next returned true after exhaustion")
		}
	}
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	m := newTestMosaic(t, raster.NewInterleavedModel(raster.TypeFloat, 6, 5, 2))
	it, _ := NewReadOnlyImage(m, nil)
	it.Next()

	if err := it.SetSample(1); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("SetSample: expected ErrUnsupportedOperation, got %v", err)
	}
	if err := it.SetSampleFloat(1); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("SetSampleFloat: expected ErrUnsupportedOperation, got %v", err)
	}
	if err := it.SetSampleDouble(1); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("SetSampleDouble: expected ErrUnsupportedOperation, got %v", err)
	}
	if err := it.Close(); err != nil {
		t.Errorf("Close on a read-only iterator failed: %v", err)
	}
}

func TestCloseReleasesWritableTile(t *testing.T) {
	model := raster.NewInterleavedModel(raster.TypeByte, 6, 5, 1)
	src := newTestMosaic(t, model)
	dst, _ := raster.NewMosaic(testBounds, model, testOffset)

	rw, err := NewRowMajorReadWriteImage(src, dst, nil)
	if err != nil {
		t.Fatalf("Failed to create iterator: %v", err)
	}
	for i := 0; i < 40 && rw.Next(); i++ {
		rw.SetSample(1)
	}
	if dst.Checkouts() != 1 {
		t.Errorf("Expected exactly one tile held while iterating, got %d", dst.Checkouts())
	}

	rw.Close()
	rw.Close()
	if dst.Checkouts() != 0 {
		t.Errorf("Expected no tiles held after Close, got %d", dst.Checkouts())
	}
	if err := rw.SetSample(2); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("Expected ErrUnsupportedOperation after Close, got %v", err)
	}
}

func TestVaryingBandCount(t *testing.T) {
	m := newTestMosaic(t, raster.NewBandedModel(raster.TypeShort, 6, 5, 3))
	g := m.Grid()

	narrow, err := raster.NewBanded(raster.TypeShort, g.TileRect(1, 1), 1)
	if err != nil {
		t.Fatalf("Failed to create raster: %v", err)
	}
	if err := m.SetTile(1, 1, narrow); err != nil {
		t.Fatalf("SetTile failed: %v", err)
	}
	narrowRect := g.TileRect(1, 1).Intersect(testBounds)

	for _, cc := range constructors() {
		t.Run(cc.name, func(t *testing.T) {
			it, _ := cc.build(m, nil)
			perPixel := map[image.Point]int{}
			for it.Next() {
				perPixel[image.Pt(it.X(), it.Y())]++
			}
			for p, n := range perPixel {
				want := 3
				if p.In(narrowRect) {
					want = 1
				}
				if n != want {
					t.Fatalf("Pixel %v: expected %d bands, got %d", p, want, n)
				}
			}
			if len(perPixel) != testBounds.Dx()*testBounds.Dy() {
				t.Errorf("Expected %d pixels, got %d", testBounds.Dx()*testBounds.Dy(), len(perPixel))
			}

			inside := narrowRect.Min
			if err := it.MoveTo(inside.X, inside.Y, 2); !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("Expected ErrOutOfBounds for band 2 of a one-band tile, got %v", err)
			}
		})
	}
}

// opaqueTile hides the data buffer so the tile only offers per-sample access
type opaqueTile struct {
	raster.WritableRaster
}

func TestMixedTileLayouts(t *testing.T) {
	rect := func(tx, ty int) image.Rectangle {
		return raster.GridCovering(testBounds, 6, 5, testOffset).TileRect(tx, ty)
	}
	banded := func(dt raster.DataType, tx, ty, bands int) raster.WritableRaster {
		r, err := raster.NewBanded(dt, rect(tx, ty), bands)
		if err != nil {
			t.Fatalf("Failed to create raster: %v", err)
		}
		return r
	}
	interleaved := func(dt raster.DataType, tx, ty, bands int) raster.WritableRaster {
		r, err := raster.NewInterleaved(dt, rect(tx, ty), bands)
		if err != nil {
			t.Fatalf("Failed to create raster: %v", err)
		}
		return r
	}

	tests := []struct {
		name   string
		model  raster.SampleModel
		tx, ty int
		tile   raster.WritableRaster
		access accessor
	}{
		{"banded tile in byte mosaic", raster.NewInterleavedModel(raster.TypeByte, 6, 5, 3), 1, 1, banded(raster.TypeByte, 1, 1, 3), accessByte},
		{"float tile in byte mosaic", raster.NewInterleavedModel(raster.TypeByte, 6, 5, 3), 0, 1, interleaved(raster.TypeFloat, 0, 1, 3), accessByte},
		{"byte tile in float mosaic", raster.NewInterleavedModel(raster.TypeFloat, 6, 5, 2), 2, 0, interleaved(raster.TypeByte, 2, 0, 2), accessFloat},
		{"banded tile in float mosaic", raster.NewInterleavedModel(raster.TypeFloat, 6, 5, 2), 0, 0, banded(raster.TypeFloat, 0, 0, 2), accessFloat},
		{"opaque tile in byte mosaic", raster.NewInterleavedModel(raster.TypeByte, 6, 5, 3), 1, 2, opaqueTile{interleaved(raster.TypeByte, 1, 2, 3)}, accessByte},
		{"first tile banded", raster.NewInterleavedModel(raster.TypeByte, 6, 5, 3), -1, 0, banded(raster.TypeByte, -1, 0, 3), accessGeneric},
	}
	crossing := image.Rect(0, 3, 11, 12)
	for _, tt := range tests {
		m := newTestMosaic(t, tt.model)
		if err := m.SetTile(tt.tx, tt.ty, tt.tile); err != nil {
			t.Fatalf("SetTile failed: %v", err)
		}
		fill(t, m, intValues)

		for _, area := range []*image.Rectangle{nil, &crossing} {
			want, _ := iterationArea(m.Bounds(), area)
			for _, cc := range constructors() {
				t.Run(tt.name+"/"+cc.name, func(t *testing.T) {
					it, err := cc.build(m, area)
					if err != nil {
						t.Fatalf("Failed to create iterator: %v", err)
					}
					if e := it.(*engine); e.access != tt.access {
						t.Errorf("Expected %v access, factory chose %v", tt.access, e.access)
					}
					visits := collect(it)
					if n := want.Dx() * want.Dy() * m.NumBands(); len(visits) != n {
						t.Fatalf("Expected %d samples, got %d", n, len(visits))
					}
					for _, v := range visits {
						if v.v != intValues(v.x, v.y, v.b) {
							t.Fatalf("Sample (%d,%d,%d): expected %v, got %v", v.x, v.y, v.b, intValues(v.x, v.y, v.b), v.v)
						}
					}
				})
			}
		}

		t.Run(tt.name+"/read-write", func(t *testing.T) {
			dst := newTestMosaic(t, tt.model)
			fill(t, dst, func(int, int, int) float64 { return 0 })
			rw, err := NewRowMajorReadWriteImage(m, dst, nil)
			if err != nil {
				t.Fatalf("Failed to create iterator: %v", err)
			}
			for rw.Next() {
				if err := rw.SetSample(rw.Sample() + 1); err != nil {
					t.Fatalf("SetSample failed: %v", err)
				}
			}
			rw.Close()

			check, _ := NewReadOnlyImage(dst, nil)
			for _, v := range collect(check) {
				if v.v != intValues(v.x, v.y, v.b)+1 {
					t.Fatalf("Sample (%d,%d,%d): expected %v, got %v", v.x, v.y, v.b, intValues(v.x, v.y, v.b)+1, v.v)
				}
			}

			inPlace, _ := NewReadWriteImage(m, m, nil)
			for inPlace.Next() {
				inPlace.SetSampleDouble(255 - inPlace.SampleDouble())
			}
			inPlace.Close()
			again, _ := NewRowMajorImage(m, nil)
			for _, v := range collect(again) {
				if v.v != 255-intValues(v.x, v.y, v.b) {
					t.Fatalf("Sample (%d,%d,%d): expected %v, got %v", v.x, v.y, v.b, 255-intValues(v.x, v.y, v.b), v.v)
				}
			}
			if m.Checkouts() != 0 || dst.Checkouts() != 0 {
				t.Errorf("Expected no checkouts, got %d and %d", m.Checkouts(), dst.Checkouts())
			}
		})
	}
}

func TestSingleTileImage(t *testing.T) {
	r, _ := raster.NewInterleaved(raster.TypeFloat, image.Rect(2, 3, 7, 6), 2)
	m := raster.NewMosaicFromRaster(r)
	fill(t, m, intValues)

	it, err := NewReadOnlyImage(m, nil)
	if err != nil {
		t.Fatalf("Failed to create iterator: %v", err)
	}
	if it.Direction() != Linear {
		t.Errorf("Expected linear direction for one tile, got %v", it.Direction())
	}
	if e := it.(*engine); e.access != accessFloat {
		t.Errorf("Expected float-direct access, got %v", e.access)
	}
	if n := len(collect(it)); n != 5*3*2 {
		t.Errorf("Expected 30 samples, got %d", n)
	}

	rw, err := NewReadWriteImage(m, m, nil)
	if err != nil {
		t.Fatalf("Failed to create read-write iterator: %v", err)
	}
	rw.Next()
	rw.SetSampleFloat(42)
	if m.Checkouts() != 1 {
		t.Errorf("Expected one checkout, got %d", m.Checkouts())
	}
	rw.Close()
	if m.Checkouts() != 0 {
		t.Errorf("Expected no checkouts after Close, got %d", m.Checkouts())
	}
	if r.SampleFloat(2, 3, 0) != 42 {
		t.Errorf("Expected 42 at (2,3,0), got %v", r.SampleFloat(2, 3, 0))
	}
}
