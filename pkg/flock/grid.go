package flock

import (
	"math"

	"github.com/lao-tseu-is-alive/go-boids-target/pkg/geometry"
)

// Cell is an integer grid coordinate.
type Cell struct {
	X, Y int
}

// Grid is a uniform-cell index over agent positions. Cells hold indices
// into the agent slice the grid was built from.
type Grid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int // row-major, len = cols*rows
	count    int
}

// NewGrid allocates an empty grid covering width x height.
func NewGrid(width, height, cellSize float64) *Grid {
	cols := max(1, int(math.Ceil(width/cellSize)))
	rows := max(1, int(math.Ceil(height/cellSize)))
	return &Grid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    make([][]int, cols*rows),
	}
}

// BuildGrid indexes agents on a fresh grid sized from s.
func BuildGrid(agents []Agent, s Settings) *Grid {
	g := NewGrid(s.Width, s.Height, s.CellSize())
	g.Rebuild(agents)
	return g
}

// Rebuild drops the previous content and indexes agents again.
// Cells are truncated rather than reallocated so steady-state frames
// do not allocate.
func (g *Grid) Rebuild(agents []Agent) {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	for i := range agents {
		c := g.CellOf(agents[i].Pos)
		k := g.index(c)
		g.cells[k] = append(g.cells[k], i)
	}
	g.count = len(agents)
}

// CellOf maps a position to its cell, clamping both axes to the grid so
// positions on or past the canvas edge still land in a valid cell.
func (g *Grid) CellOf(p geometry.Vector2D) Cell {
	return Cell{
		X: clampAxis(p.X/g.cellSize, g.cols),
		Y: clampAxis(p.Y/g.cellSize, g.rows),
	}
}

func clampAxis(v float64, n int) int {
	f := math.Floor(v)
	if !(f >= 0) { // also catches NaN
		return 0
	}
	if f > float64(n-1) {
		return n - 1
	}
	return int(f)
}

// NeighborCells returns the 3x3 block centered on c, cut at the grid
// edges. There is no wraparound even though positions wrap.
func (g *Grid) NeighborCells(c Cell) []Cell {
	return g.appendNeighborCells(make([]Cell, 0, 9), c)
}

// appendNeighborCells is NeighborCells appending to dst.
func (g *Grid) appendNeighborCells(dst []Cell, c Cell) []Cell {
	c = g.clamp(c)
	for y := max(0, c.Y-1); y <= min(g.rows-1, c.Y+1); y++ {
		for x := max(0, c.X-1); x <= min(g.cols-1, c.X+1); x++ {
			dst = append(dst, Cell{X: x, Y: y})
		}
	}
	return dst
}

// Query returns the indices of all agents in the neighbor cells of c.
func (g *Grid) Query(c Cell) []int {
	return g.QueryInto(nil, c)
}

// QueryInto is Query appending to dst, letting hot loops reuse a buffer.
func (g *Grid) QueryInto(dst []int, c Cell) []int {
	var block [9]Cell
	for _, n := range g.appendNeighborCells(block[:0], c) {
		dst = append(dst, g.cells[g.index(n)]...)
	}
	return dst
}

// At returns the agent indices stored in a single cell.
func (g *Grid) At(c Cell) []int {
	return g.cells[g.index(g.clamp(c))]
}

// Occupied lists the non-empty cells in row-major order.
func (g *Grid) Occupied() []Cell {
	var out []Cell
	for k, members := range g.cells {
		if len(members) > 0 {
			out = append(out, Cell{X: k % g.cols, Y: k / g.cols})
		}
	}
	return out
}

// Len is the number of agents indexed by the last Rebuild.
func (g *Grid) Len() int { return g.count }

// Cols is the number of cells along x.
func (g *Grid) Cols() int { return g.cols }

// Rows is the number of cells along y.
func (g *Grid) Rows() int { return g.rows }

// CellSize is the side of a cell in canvas units.
func (g *Grid) CellSize() float64 { return g.cellSize }

func (g *Grid) index(c Cell) int { return c.Y*g.cols + c.X }

func (g *Grid) clamp(c Cell) Cell {
	return Cell{
		X: min(max(c.X, 0), g.cols-1),
		Y: min(max(c.Y, 0), g.rows-1),
	}
}
