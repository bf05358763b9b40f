// Package algo implements the grid search, swarm path search, clustering,
// assignment and conflict repair used by the fleet coordinator.
package algo

import (
	"container/heap"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

// Finder finds a single-pair path on a grid.
type Finder interface {
	// FindPath returns a 4-connected path from start to goal, or false if
	// goal cannot be reached. Both ends must be passable.
	FindPath(g *core.Grid, start, goal core.Cell) (core.Path, bool)

	// Name returns the algorithm name.
	Name() string
}

// astarNode for priority queue.
type astarNode struct {
	cell   core.Cell
	g      int // Cost so far
	f      int // g + h
	seq    int // insertion order, breaks f ties deterministically
	parent *astarNode
	index  int // heap index
}

// astarHeap implements heap.Interface.
type astarHeap []*astarNode

func (h astarHeap) Len() int { return len(h) }
func (h astarHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}
func (h astarHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *astarHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *astarHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// AStar is a 4-connected grid A* with a Manhattan heuristic.
type AStar struct{}

// NewAStar creates an A* finder.
func NewAStar() *AStar { return &AStar{} }

func (a *AStar) Name() string { return "A*" }

// FindPath implements Finder.
func (a *AStar) FindPath(g *core.Grid, start, goal core.Cell) (core.Path, bool) {
	if !g.Passable(start) || !g.Passable(goal) {
		return nil, false
	}

	open := &astarHeap{}
	heap.Init(open)
	seq := 0
	heap.Push(open, &astarNode{cell: start, f: start.Manhattan(goal)})

	best := map[core.Cell]int{start: 0}
	closed := make(map[core.Cell]bool)

	for open.Len() > 0 {
		current := heap.Pop(open).(*astarNode)

		if current.cell == goal {
			return reconstructPath(current), true
		}
		if closed[current.cell] {
			continue
		}
		closed[current.cell] = true

		for _, n := range g.PassableNeighbors(current.cell) {
			if closed[n] {
				continue
			}
			ng := current.g + 1
			if old, ok := best[n]; ok && ng >= old {
				continue
			}
			best[n] = ng
			seq++
			heap.Push(open, &astarNode{
				cell:   n,
				g:      ng,
				f:      ng + n.Manhattan(goal),
				seq:    seq,
				parent: current,
			})
		}
	}

	return nil, false // No path found
}

func reconstructPath(node *astarNode) core.Path {
	var path core.Path
	for n := node; n != nil; n = n.parent {
		path = append(path, n.cell)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
