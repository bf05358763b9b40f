package algo

import "github.com/luvdamuzik/MotionPlanningRobots/internal/core"

// BFS is a breadth-first grid finder. Paths are shortest in steps.
type BFS struct{}

// NewBFS creates a breadth-first finder.
func NewBFS() *BFS { return &BFS{} }

func (b *BFS) Name() string { return "BFS" }

// FindPath implements Finder.
func (b *BFS) FindPath(g *core.Grid, start, goal core.Cell) (core.Path, bool) {
	if !g.Passable(start) || !g.Passable(goal) {
		return nil, false
	}
	parent := map[core.Cell]core.Cell{start: start}
	queue := []core.Cell{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == goal {
			var path core.Path
			for c := goal; c != start; c = parent[c] {
				path = append(path, c)
			}
			path = append(path, start)
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path, true
		}
		for _, n := range g.PassableNeighbors(cur) {
			if _, seen := parent[n]; seen {
				continue
			}
			parent[n] = cur
			queue = append(queue, n)
		}
	}
	return nil, false
}

// Reachable returns the set of passable cells connected to start.
func Reachable(g *core.Grid, start core.Cell) map[core.Cell]bool {
	seen := make(map[core.Cell]bool)
	if !g.Passable(start) {
		return seen
	}
	seen[start] = true
	stack := []core.Cell{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range g.PassableNeighbors(cur) {
			if !seen[n] {
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}
	return seen
}
