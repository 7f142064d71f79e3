// Package gridmap is the memory-map core: raster layout, tile
// classification, hit testing, and selection reconciliation. Everything
// here is a pure function over a snapshot and a selection; the package
// performs no I/O and owns no mutable state.
package gridmap

// Layout is the derived raster geometry for one paint. It is recomputed
// every paint from the snapshot length and viewport width and never cached
// across snapshot changes.
type Layout struct {
	TileSize      int
	Columns       int
	Rows          int
	SurfaceWidth  int
	SurfaceHeight int
}

// ComputeLayout derives the raster geometry for n blocks rendered at
// tileSize into a surface occupying half of viewportWidth. n = 0 yields an
// empty layout (zero rows) rather than an error.
func ComputeLayout(n, viewportWidth, tileSize int) Layout {
	if tileSize <= 0 {
		return Layout{TileSize: tileSize}
	}
	surface := viewportWidth / 2
	if surface < tileSize {
		return Layout{TileSize: tileSize}
	}
	l := Layout{
		TileSize:     tileSize,
		Columns:      surface / tileSize,
		SurfaceWidth: surface,
	}
	if n > 0 {
		l.Rows = (n*tileSize + surface - 1) / surface
	}
	l.SurfaceHeight = l.Rows * tileSize
	return l
}

// HitTest maps a pointer coordinate, relative to the drawing surface, to a
// block index. Clicks that resolve outside [0, n) are ignored: ok is false
// and no state changes.
func (l Layout) HitTest(x, y, n int) (index int, ok bool) {
	if l.TileSize <= 0 || l.Columns <= 0 || x < 0 || y < 0 {
		return 0, false
	}
	col := x / l.TileSize
	row := y / l.TileSize
	if col >= l.Columns {
		return 0, false
	}
	index = row*l.Columns + col
	if index < 0 || index >= n {
		return 0, false
	}
	return index, true
}
