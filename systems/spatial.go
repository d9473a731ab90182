// Package systems provides the landscape, movement, resource and spatial
// indexing building blocks used by the animal lifecycle.
package systems

import (
	"math"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/einp/components"
)

// Neighbor holds a nearby entity with its precomputed distance.
type Neighbor struct {
	E    ecs.Entity
	Dist float64
}

// SpatialGrid provides cell-bucketed neighbor lookups over a bounded plane.
// It is rebuilt between ticks and only read while animals tick.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]ecs.Entity
}

// NewSpatialGrid creates a spatial grid covering the given world size.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, pos components.Position) {
	idx := g.cellIndex(pos.X, pos.Y)
	g.cells[idx] = append(g.cells[idx], e)
}

// QueryRadiusInto appends the entities within radius of pos to dst, nearest first.
// A negative radius scans the whole grid. Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, pos components.Position, radius float64, posMap *ecs.Map1[components.Position]) []Neighbor {
	start := len(dst)
	c0, c1, r0, r1 := 0, g.cols-1, 0, g.rows-1
	if radius >= 0 {
		cellRadius := int(radius/g.cellSize) + 1
		cc, cr := g.cellCoords(pos.X, pos.Y)
		c0, c1 = max(cc-cellRadius, 0), min(cc+cellRadius, g.cols-1)
		r0, r1 = max(cr-cellRadius, 0), min(cr+cellRadius, g.rows-1)
	}

	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			for _, e := range g.cells[row*g.cols+col] {
				p := posMap.Get(e)
				if p == nil {
					continue
				}
				d := math.Hypot(p.X-pos.X, p.Y-pos.Y)
				if radius < 0 || d <= radius {
					dst = append(dst, Neighbor{E: e, Dist: d})
				}
			}
		}
	}

	found := dst[start:]
	sort.SliceStable(found, func(i, j int) bool { return found[i].Dist < found[j].Dist })
	return dst
}

// Nearest returns the closest entity accepted by the predicate, searching
// rings of cells outward from pos until a ring can no longer hold anything closer.
func (g *SpatialGrid) Nearest(pos components.Position, posMap *ecs.Map1[components.Position], accept func(ecs.Entity) bool) (ecs.Entity, bool) {
	cc, cr := g.cellCoords(pos.X, pos.Y)
	maxRing := max(g.cols, g.rows)

	var best ecs.Entity
	bestDist := math.Inf(1)
	found := false

	for ring := 0; ring <= maxRing; ring++ {
		// Everything in this ring is at least (ring-1)*cellSize away.
		if found && float64(ring-1)*g.cellSize > bestDist {
			break
		}
		for row := cr - ring; row <= cr+ring; row++ {
			if row < 0 || row >= g.rows {
				continue
			}
			for col := cc - ring; col <= cc+ring; col++ {
				if col < 0 || col >= g.cols {
					continue
				}
				if ring > 0 && row != cr-ring && row != cr+ring && col != cc-ring && col != cc+ring {
					continue // interior, already scanned
				}
				for _, e := range g.cells[row*g.cols+col] {
					p := posMap.Get(e)
					if p == nil {
						continue
					}
					d := math.Hypot(p.X-pos.X, p.Y-pos.Y)
					if d < bestDist && accept(e) {
						best, bestDist, found = e, d, true
					}
				}
			}
		}
	}
	return best, found
}

func (g *SpatialGrid) cellCoords(x, y float64) (int, int) {
	col := int(math.Floor(x / g.cellSize))
	row := int(math.Floor(y / g.cellSize))

	// Clamp to valid range
	col = min(max(col, 0), g.cols-1)
	row = min(max(row, 0), g.rows-1)
	return col, row
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	col, row := g.cellCoords(x, y)
	return row*g.cols + col
}
