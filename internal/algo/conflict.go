package algo

import "github.com/luvdamuzik/MotionPlanningRobots/internal/core"

// positionAt returns the cell of path at step t. Agents whose path has
// ended are gone from the grid.
func positionAt(path []core.Cell, t int) (core.Cell, bool) {
	if t < 0 || t >= len(path) {
		return core.Cell{}, false
	}
	return path[t], true
}

func horizon(paths [][]core.Cell) int {
	n := 0
	for _, p := range paths {
		n = max(n, len(p))
	}
	return n
}

// FindFirstConflict returns the earliest conflict in paths, or nil.
// Vertex conflicts win over swaps at the same step.
func FindFirstConflict(paths [][]core.Cell) *core.Conflict {
	for t := 0; t < horizon(paths); t++ {
		if c := vertexConflictsAt(paths, t, true); len(c) > 0 {
			return &c[0]
		}
		if c := swapConflictsAt(paths, t, true); len(c) > 0 {
			return &c[0]
		}
	}
	return nil
}

// FindConflicts returns every vertex and swap conflict in paths, ordered by
// step. A swap at step t means two agents exchange cells between t and t+1.
func FindConflicts(paths [][]core.Cell) []core.Conflict {
	var conflicts []core.Conflict
	for t := 0; t < horizon(paths); t++ {
		conflicts = append(conflicts, vertexConflictsAt(paths, t, false)...)
		conflicts = append(conflicts, swapConflictsAt(paths, t, false)...)
	}
	return conflicts
}

// CountVertexConflicts returns the number of vertex conflicts in paths.
func CountVertexConflicts(paths [][]core.Cell) int {
	n := 0
	for t := 0; t < horizon(paths); t++ {
		n += len(vertexConflictsAt(paths, t, false))
	}
	return n
}

func vertexConflictsAt(paths [][]core.Cell, t int, first bool) []core.Conflict {
	var out []core.Conflict
	for i := 0; i < len(paths); i++ {
		pos1, ok1 := positionAt(paths[i], t)
		if !ok1 {
			continue
		}
		for j := i + 1; j < len(paths); j++ {
			pos2, ok2 := positionAt(paths[j], t)
			if ok2 && pos1 == pos2 {
				out = append(out, core.Conflict{
					Kind:   core.VertexConflict,
					Agent1: i,
					Agent2: j,
					Cell:   pos1,
					Step:   t,
				})
				if first {
					return out
				}
			}
		}
	}
	return out
}

func swapConflictsAt(paths [][]core.Cell, t int, first bool) []core.Conflict {
	var out []core.Conflict
	for i := 0; i < len(paths); i++ {
		from1, ok1 := positionAt(paths[i], t)
		to1, ok2 := positionAt(paths[i], t+1)
		if !ok1 || !ok2 || from1 == to1 {
			continue
		}
		for j := i + 1; j < len(paths); j++ {
			from2, ok3 := positionAt(paths[j], t)
			to2, ok4 := positionAt(paths[j], t+1)
			if ok3 && ok4 && from1 == to2 && to1 == from2 {
				out = append(out, core.Conflict{
					Kind:   core.SwapConflict,
					Agent1: i,
					Agent2: j,
					Cell:   from1,
					Step:   t,
				})
				if first {
					return out
				}
			}
		}
	}
	return out
}
