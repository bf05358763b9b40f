package core

import "fmt"

// CellState is the occupancy of a grid cell.
type CellState uint8

const (
	Free CellState = iota
	Blocked
)

// BlockedValue is the raw map value marking walls and target tables.
const BlockedValue = 0

// Grid is a fixed-size occupancy map with designated target cells.
// Targets are free cells that cannot be entered; agents service them from
// an adjacent helper cell.
type Grid struct {
	Width, Height int
	cells         []CellState // row-major
	targets       map[Cell]bool
}

// NewGrid builds a grid from raw rows (rows[y][x]) and target cells.
// A raw value equal to BlockedValue marks a blocked cell unless the cell
// is also a target.
func NewGrid(rows [][]int, targets []Cell) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, &InvalidGridError{Reason: "grid is empty"}
	}
	width := len(rows[0])
	for y, row := range rows {
		if len(row) != width {
			return nil, &InvalidGridError{Reason: fmt.Sprintf("row %d has %d cells, want %d", y, len(row), width)}
		}
	}

	g := &Grid{
		Width:   width,
		Height:  len(rows),
		cells:   make([]CellState, width*len(rows)),
		targets: make(map[Cell]bool, len(targets)),
	}
	for _, t := range targets {
		if !g.InBounds(t) {
			return nil, &InvalidGridError{Reason: fmt.Sprintf("target %v is outside the grid", t)}
		}
		g.targets[t] = true
	}
	for y, row := range rows {
		for x, v := range row {
			if v == BlockedValue && !g.targets[Cell{X: x, Y: y}] {
				g.cells[y*width+x] = Blocked
			}
		}
	}
	return g, nil
}

// NewOpenGrid creates a width x height grid with no obstacles.
func NewOpenGrid(width, height int, targets []Cell) (*Grid, error) {
	rows := make([][]int, height)
	for y := range rows {
		rows[y] = make([]int, width)
		for x := range rows[y] {
			rows[y][x] = 1
		}
	}
	for _, t := range targets {
		if t.Y >= 0 && t.Y < height && t.X >= 0 && t.X < width {
			rows[t.Y][t.X] = BlockedValue
		}
	}
	return NewGrid(rows, targets)
}

// InBounds reports whether c lies inside the grid.
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

// IsBlocked reports whether c is an obstacle. Out-of-bounds cells are blocked.
func (g *Grid) IsBlocked(c Cell) bool {
	if !g.InBounds(c) {
		return true
	}
	return g.cells[c.Y*g.Width+c.X] == Blocked
}

// IsTarget reports whether c is a designated target.
func (g *Grid) IsTarget(c Cell) bool {
	return g.targets[c]
}

// Passable reports whether an agent may stand on c.
func (g *Grid) Passable(c Cell) bool {
	return g.InBounds(c) && !g.IsBlocked(c) && !g.targets[c]
}

// Obstacles returns the obstacle set in row-major order.
func (g *Grid) Obstacles() []Cell {
	var out []Cell
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.cells[y*g.Width+x] == Blocked {
				out = append(out, Cell{X: x, Y: y})
			}
		}
	}
	return out
}

// Targets returns the target set in row-major order.
func (g *Grid) Targets() []Cell {
	var out []Cell
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if c := (Cell{X: x, Y: y}); g.targets[c] {
				out = append(out, c)
			}
		}
	}
	return out
}

// PassableNeighbors returns the passable 4-neighbours of c in Directions order.
func (g *Grid) PassableNeighbors(c Cell) []Cell {
	out := make([]Cell, 0, 4)
	for _, n := range c.Neighbors4() {
		if g.Passable(n) {
			out = append(out, n)
		}
	}
	return out
}

// Helpers returns the cells from which target t can be serviced: its
// passable 4-neighbours.
func (g *Grid) Helpers(t Cell) []Cell {
	return g.PassableNeighbors(t)
}

// Rows returns the raw map encoding of the grid (targets encoded as
// BlockedValue, like walls).
func (g *Grid) Rows() [][]int {
	rows := make([][]int, g.Height)
	for y := range rows {
		rows[y] = make([]int, g.Width)
		for x := range rows[y] {
			c := Cell{X: x, Y: y}
			if g.IsBlocked(c) || g.targets[c] {
				rows[y][x] = BlockedValue
			} else {
				rows[y][x] = 1
			}
		}
	}
	return rows
}
