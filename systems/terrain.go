package systems

import (
	"math"
	"math/rand"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/einp/components"
	"github.com/pthm-cable/einp/config"
)

// TerrainCell represents the type of terrain in a raster cell.
type TerrainCell uint8

const (
	TerrainOutside TerrainCell = iota // beyond the park perimeter
	TerrainLand
	TerrainWater
)

// Landscape holds the permitted-area polygon and the water and vegetation
// rasters. It is immutable after construction and safe for concurrent reads.
type Landscape struct {
	grid       [][]TerrainCell
	vegetation [][]float64
	shore      [][]bool // land cells bordering water
	perimeter  []components.Position
	cellSize   float64
	width      float64
	height     float64
	gridWidth  int
	gridHeight int
}

// NewLandscape generates the rasters for a world description.
func NewLandscape(cfg config.WorldConfig) *Landscape {
	gridWidth := int(math.Ceil(cfg.Width / cfg.RasterCellSize))
	gridHeight := int(math.Ceil(cfg.Height / cfg.RasterCellSize))

	l := &Landscape{
		grid:       make([][]TerrainCell, gridHeight),
		vegetation: make([][]float64, gridHeight),
		shore:      make([][]bool, gridHeight),
		cellSize:   cfg.RasterCellSize,
		width:      cfg.Width,
		height:     cfg.Height,
		gridWidth:  gridWidth,
		gridHeight: gridHeight,
	}
	for y := range l.grid {
		l.grid[y] = make([]TerrainCell, gridWidth)
		l.vegetation[y] = make([]float64, gridWidth)
		l.shore[y] = make([]bool, gridWidth)
	}

	if len(cfg.Perimeter) >= 3 {
		l.perimeter = make([]components.Position, len(cfg.Perimeter))
		for i, v := range cfg.Perimeter {
			l.perimeter[i] = components.Position{X: v[0], Y: v[1]}
		}
	}

	l.generate(cfg)
	return l
}

// generate classifies every cell and fills the vegetation raster.
func (l *Landscape) generate(cfg config.WorldConfig) {
	n := cfg.Noise
	waterNoise := opensimplex.NewNormalized(n.Seed)
	vegNoise := opensimplex.NewNormalized(n.Seed + 1)

	for y := 0; y < l.gridHeight; y++ {
		for x := 0; x < l.gridWidth; x++ {
			c := l.cellCenter(x, y)
			if !l.insidePolygon(c) {
				l.grid[y][x] = TerrainOutside
				continue
			}

			water := n.WaterThreshold > 0 && fbm(waterNoise, c.X*n.WaterScale, c.Y*n.WaterScale, n.Octaves) < n.WaterThreshold
			for _, lake := range cfg.Lakes {
				if math.Hypot(c.X-lake.X, c.Y-lake.Y) <= lake.Radius {
					water = true
					break
				}
			}
			if water {
				l.grid[y][x] = TerrainWater
				continue
			}

			l.grid[y][x] = TerrainLand
			l.vegetation[y][x] = fbm(vegNoise, c.X*n.VegetationScale, c.Y*n.VegetationScale, n.Octaves)
		}
	}

	// Shore cells are land with a 4-neighbour of water.
	for y := 0; y < l.gridHeight; y++ {
		for x := 0; x < l.gridWidth; x++ {
			if l.grid[y][x] != TerrainLand {
				continue
			}
			l.shore[y][x] = l.cellIs(x-1, y, TerrainWater) || l.cellIs(x+1, y, TerrainWater) ||
				l.cellIs(x, y-1, TerrainWater) || l.cellIs(x, y+1, TerrainWater)
		}
	}
}

// fbm sums octaves of normalized noise and rescales to [0, 1).
func fbm(noise opensimplex.Noise, x, y float64, octaves int) float64 {
	if octaves < 1 {
		octaves = 1
	}
	var sum, norm float64
	amp, freq := 1.0, 1.0
	for i := 0; i < octaves; i++ {
		sum += amp * noise.Eval2(x*freq, y*freq)
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	return sum / norm
}

// IsInsidePermittedArea reports whether pos lies within the world bounds and
// the park perimeter.
func (l *Landscape) IsInsidePermittedArea(pos components.Position) bool {
	if pos.X < 0 || pos.Y < 0 || pos.X >= l.width || pos.Y >= l.height {
		return false
	}
	return l.insidePolygon(pos)
}

// IsInsideWater reports whether the raster cell under pos is water.
func (l *Landscape) IsInsideWater(pos components.Position) bool {
	x, y, ok := l.cellOf(pos)
	return ok && l.grid[y][x] == TerrainWater
}

// RasterValueAt returns the vegetation density under pos, 0 outside the raster.
func (l *Landscape) RasterValueAt(pos components.Position) float64 {
	x, y, ok := l.cellOf(pos)
	if !ok {
		return 0
	}
	return l.vegetation[y][x]
}

// BestGrazingSpot returns the centre of the richest valid vegetation cell
// within radius of pos whose density is at least minValue.
func (l *Landscape) BestGrazingSpot(pos components.Position, radius, minValue float64) (components.Position, bool) {
	var best components.Position
	bestValue := -1.0
	l.scan(pos, radius, func(x, y int, c components.Position) {
		v := l.vegetation[y][x]
		if v < minValue || v <= bestValue || l.grid[y][x] != TerrainLand {
			return
		}
		if Distance(pos, c) > radius && !l.containsCell(pos, x, y) {
			return
		}
		if !l.IsInsidePermittedArea(c) {
			return
		}
		best, bestValue = c, v
	})
	return best, bestValue >= 0
}

// NearestShore returns the closest valid land cell centre bordering water
// within radius of pos.
func (l *Landscape) NearestShore(pos components.Position, radius float64) (components.Position, bool) {
	var best components.Position
	bestDist := math.Inf(1)
	l.scan(pos, radius, func(x, y int, c components.Position) {
		if !l.shore[y][x] {
			return
		}
		d := Distance(pos, c)
		if d > radius || d >= bestDist || !l.IsInsidePermittedArea(c) {
			return
		}
		best, bestDist = c, d
	})
	return best, !math.IsInf(bestDist, 1)
}

// Scatter draws a valid position around center, uniformly within spread
// metres. It returns false when attempts are exhausted.
func (l *Landscape) Scatter(rng *rand.Rand, center components.Position, spread float64, attempts int) (components.Position, bool) {
	for i := 0; i < attempts; i++ {
		r := spread * math.Sqrt(rng.Float64())
		cand := Offset(center, rng.Float64()*360, r)
		if l.IsInsidePermittedArea(cand) && !l.IsInsideWater(cand) {
			return cand, true
		}
	}
	return components.Position{}, false
}

// WaterCoverage returns the fraction of in-park cells that are water.
func (l *Landscape) WaterCoverage() float64 {
	var inside, water int
	for y := range l.grid {
		for _, c := range l.grid[y] {
			if c == TerrainOutside {
				continue
			}
			inside++
			if c == TerrainWater {
				water++
			}
		}
	}
	if inside == 0 {
		return 0
	}
	return float64(water) / float64(inside)
}

// scan visits every cell whose centre lies in the bounding box of the circle.
func (l *Landscape) scan(pos components.Position, radius float64, visit func(x, y int, centre components.Position)) {
	x0 := max(int(math.Floor((pos.X-radius)/l.cellSize)), 0)
	x1 := min(int(math.Floor((pos.X+radius)/l.cellSize)), l.gridWidth-1)
	y0 := max(int(math.Floor((pos.Y-radius)/l.cellSize)), 0)
	y1 := min(int(math.Floor((pos.Y+radius)/l.cellSize)), l.gridHeight-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			visit(x, y, l.cellCenter(x, y))
		}
	}
}

func (l *Landscape) cellOf(pos components.Position) (int, int, bool) {
	if pos.X < 0 || pos.Y < 0 {
		return 0, 0, false
	}
	x := int(pos.X / l.cellSize)
	y := int(pos.Y / l.cellSize)
	if x >= l.gridWidth || y >= l.gridHeight {
		return 0, 0, false
	}
	return x, y, true
}

// containsCell reports whether pos lies in cell (x, y). A grazing radius
// smaller than the raster still sees the cell the animal stands in.
func (l *Landscape) containsCell(pos components.Position, x, y int) bool {
	cx, cy, ok := l.cellOf(pos)
	return ok && cx == x && cy == y
}

func (l *Landscape) cellIs(x, y int, kind TerrainCell) bool {
	if x < 0 || y < 0 || x >= l.gridWidth || y >= l.gridHeight {
		return false
	}
	return l.grid[y][x] == kind
}

func (l *Landscape) cellCenter(x, y int) components.Position {
	return components.Position{
		X: (float64(x) + 0.5) * l.cellSize,
		Y: (float64(y) + 0.5) * l.cellSize,
	}
}

// insidePolygon is an even-odd ray cast against the perimeter. No perimeter
// means the whole rectangle is permitted.
func (l *Landscape) insidePolygon(p components.Position) bool {
	n := len(l.perimeter)
	if n == 0 {
		return true
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := l.perimeter[i], l.perimeter[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
