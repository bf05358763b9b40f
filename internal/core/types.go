// Package core defines the grid, path and plan models shared by the planners.
package core

import (
	"fmt"
	"math"
)

// Cell is a grid coordinate. X is the column, Y is the row.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add returns c shifted by d.
func (c Cell) Add(d Cell) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}

// Manhattan returns the L1 distance between two cells.
func (c Cell) Manhattan(o Cell) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

// Dist returns the Euclidean distance between two cells.
func (c Cell) Dist(o Cell) float64 {
	dx := float64(c.X - o.X)
	dy := float64(c.Y - o.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Adjacent reports whether o is one of the 4-neighbours of c.
func (c Cell) Adjacent(o Cell) bool {
	return c.Manhattan(o) == 1
}

// Point returns the cell centre as a continuous point.
func (c Cell) Point() Point {
	return Point{X: float64(c.X), Y: float64(c.Y)}
}

// Directions lists the 4-neighbour offsets in the order used for
// neighbour scans: up, down, right, left.
var Directions = [4]Cell{
	{X: 0, Y: 1},
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: -1, Y: 0},
}

// Neighbors4 returns the four orthogonal neighbours of c (unchecked).
func (c Cell) Neighbors4() [4]Cell {
	var out [4]Cell
	for i, d := range Directions {
		out[i] = c.Add(d)
	}
	return out
}

// Point is a continuous 2D position used by clustering and assignment.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between two points.
func (p Point) Dist(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Add returns p + o.
func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }

// Sub returns p - o.
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

// Scale returns p * s.
func (p Point) Scale(s float64) Point { return Point{X: p.X * s, Y: p.Y * s} }

// Points converts cells to points.
func Points(cells []Cell) []Point {
	out := make([]Point, len(cells))
	for i, c := range cells {
		out[i] = c.Point()
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
