package algo

import (
	"math"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

// CoverageReward is subtracted from the fitness for every visited target.
const CoverageReward = 100.0

// objective scores candidate paths against a fixed target set.
type objective struct {
	grid     *core.Grid
	targets  []core.Cell
	helperOf map[core.Cell][]int // helper cell -> target indices
}

func newObjective(g *core.Grid, targets []core.Cell) *objective {
	o := &objective{
		grid:     g,
		targets:  targets,
		helperOf: make(map[core.Cell][]int),
	}
	for i, t := range targets {
		for _, h := range g.Helpers(t) {
			o.helperOf[h] = append(o.helperOf[h], i)
		}
	}
	return o
}

// visited reports, per target, whether some path cell is one of its helpers.
func (o *objective) visited(path []core.Cell) []bool {
	seen := make([]bool, len(o.targets))
	for _, c := range path {
		for _, ti := range o.helperOf[c] {
			seen[ti] = true
		}
	}
	return seen
}

// fitness returns coverage distance + obstacle penalty + coverage reward.
// Lower is better. Paths touching a blocked cell or a target, or breaking
// 4-adjacency, score +Inf.
func (o *objective) fitness(path []core.Cell) float64 {
	for i, c := range path {
		if !o.grid.Passable(c) {
			return math.Inf(1)
		}
		if i > 0 && !path[i-1].Adjacent(c) {
			return math.Inf(1)
		}
	}

	seen := o.visited(path)
	distance := 0.0
	count := 0
	for i, t := range o.targets {
		if seen[i] {
			count++
			continue
		}
		nearest := math.Inf(1)
		for _, c := range path {
			if d := c.Dist(t); d < nearest {
				nearest = d
			}
		}
		distance += nearest
	}
	return distance - CoverageReward*float64(count)
}

// unvisited returns the targets not covered by path.
func (o *objective) unvisited(path []core.Cell) []core.Cell {
	var out []core.Cell
	for i, ok := range o.visited(path) {
		if !ok {
			out = append(out, o.targets[i])
		}
	}
	return out
}

// trim cuts path after its last helper cell.
func (o *objective) trim(path []core.Cell) core.Path {
	last := -1
	for i, c := range path {
		if len(o.helperOf[c]) > 0 {
			last = i
		}
	}
	out := make(core.Path, last+1)
	copy(out, path[:last+1])
	return out
}

// Fitness scores path for the given targets.
func Fitness(g *core.Grid, path []core.Cell, targets []core.Cell) float64 {
	return newObjective(g, targets).fitness(path)
}

// Unvisited returns the targets whose helper cells path never touches.
func Unvisited(g *core.Grid, path []core.Cell, targets []core.Cell) []core.Cell {
	return newObjective(g, targets).unvisited(path)
}
