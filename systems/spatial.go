// Package systems provides the spatial index, temperature system and
// energy helpers used by the simulation pipeline.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/astras/components"
)

// Entry is one indexed entity with the state captured at insert time.
// The grid is rebuilt from scratch every tick after movement, so the
// captured position is valid for the whole tick.
type Entry struct {
	E    ecs.Entity
	Kind components.Kind
	ID   uint32
	X, Y float64
}

// Neighbor holds a query hit with its precomputed squared distance.
type Neighbor struct {
	Entry
	DistSq float64
}

// SpatialGrid answers radius queries using a uniform cell grid over the
// bounded arena. It is a broad phase that exact-filters by distance, so
// it never omits a true neighbor and never returns a false positive.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	width    float64
	height   float64
	cells    [][]Entry
}

// NewSpatialGrid creates a grid covering the given arena. cellSize must
// be at least the largest interaction radius used by any caller.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]Entry, cols*rows)
	for i := range cells {
		cells[i] = make([]Entry, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		width:    width,
		height:   height,
		cells:    cells,
	}
}

// Clear removes all entries. Called at the start of every rebuild.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entry to the cell containing its position.
func (g *SpatialGrid) Insert(e Entry) {
	idx := g.cellIndex(e.X, e.Y)
	g.cells[idx] = append(g.cells[idx], e)
}

// QueryInto appends all entries of the masked kinds within radius of
// (x, y) to dst and returns the updated slice. Reuse dst across calls to
// avoid allocations. Results follow insertion order; callers that need a
// resolution order sort by Entry.ID.
func (g *SpatialGrid) QueryInto(dst []Neighbor, x, y, radius float64, mask components.KindMask) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1

	centerCol := int(x / g.cellSize)
	centerRow := int(y / g.cellSize)

	minCol := clampInt(centerCol-cellRadius, 0, g.cols-1)
	maxCol := clampInt(centerCol+cellRadius, 0, g.cols-1)
	minRow := clampInt(centerRow-cellRadius, 0, g.rows-1)
	maxRow := clampInt(centerRow+cellRadius, 0, g.rows-1)

	radiusSq := radius * radius

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			idx := row*g.cols + col
			for _, e := range g.cells[idx] {
				if !mask.Has(e.Kind) {
					continue
				}
				dx := e.X - x
				dy := e.Y - y
				distSq := dx*dx + dy*dy
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{Entry: e, DistSq: distSq})
				}
			}
		}
	}

	return dst
}

// cellIndex returns the flat index for a world position, clamped to the
// arena. Positions nudged outside the bounds by a processor bug still
// land in a valid edge cell.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	col := clampInt(int(x/g.cellSize), 0, g.cols-1)
	row := clampInt(int(y/g.cellSize), 0, g.rows-1)
	return row*g.cols + col
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
