package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/kkingfung/ecosim/eco"
)

// SpatialGrid provides cell-based neighbor lookups over tracked
// creatures. Rebuilt once per full pass; queries clamp to world bounds.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	width    float64
	height   float64
	cells    [][]ecs.Entity
}

// NewSpatialGrid creates a grid covering the given world size.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 50
	}
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
		width:    width,
		height:   height,
		cells:    cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity at the given position. Out-of-bounds positions
// are dropped silently.
func (g *SpatialGrid) Insert(e ecs.Entity, x, y float64) {
	idx := g.cellIndex(x, y)
	if idx >= 0 && idx < len(g.cells) {
		g.cells[idx] = append(g.cells[idx], e)
	}
}

// CountRadius returns the number of entities within radius of (x, y).
func (g *SpatialGrid) CountRadius(x, y, radius float64, posMap *ecs.Map1[eco.Position]) int {
	cellRadius := int(radius/g.cellSize) + 1
	centerCol := int(x / g.cellSize)
	centerRow := int(y / g.cellSize)
	radiusSq := radius * radius

	count := 0
	for dc := -cellRadius; dc <= cellRadius; dc++ {
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			col := centerCol + dc
			row := centerRow + dr
			if col < 0 || col >= g.cols || row < 0 || row >= g.rows {
				continue
			}
			for _, e := range g.cells[row*g.cols+col] {
				pos := posMap.Get(e)
				if pos == nil {
					continue
				}
				dx := pos.X - x
				dy := pos.Y - y
				if dx*dx+dy*dy <= radiusSq {
					count++
				}
			}
		}
	}
	return count
}

// cellIndex maps a position to its flat cell index, or -1 when outside
// the world.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return -1
	}
	col := int(x / g.cellSize)
	row := int(y / g.cellSize)
	return row*g.cols + col
}
