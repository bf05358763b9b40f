package algo

import (
	"fmt"
	"strings"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

// RepairMode selects how conflict repair is run.
type RepairMode int

const (
	// RepairSinglePass scans time once. Waits inserted late in the scan
	// may leave conflicts behind.
	RepairSinglePass RepairMode = iota
	// RepairUntilStable repeats the scan until no vertex conflict is left
	// or the pass budget runs out.
	RepairUntilStable
)

// DefaultRepairPasses bounds RepairUntilStable.
const DefaultRepairPasses = 16

func (m RepairMode) String() string {
	switch m {
	case RepairSinglePass:
		return "single"
	case RepairUntilStable:
		return "stable"
	}
	return fmt.Sprintf("RepairMode(%d)", int(m))
}

// ParseRepairMode parses "single" or "stable".
func ParseRepairMode(s string) (RepairMode, error) {
	switch strings.ToLower(s) {
	case "", "single":
		return RepairSinglePass, nil
	case "stable":
		return RepairUntilStable, nil
	}
	return 0, fmt.Errorf("%w: unknown repair mode %q", core.ErrInvalidRequest, s)
}

// Desynchronize delays agents so that no two share a cell at the same step,
// in a single forward scan over t. At each step the occupancy is taken from
// the current paths; of the agents sharing a cell, the one with the longest
// path keeps moving (ties go to the lowest index) and every other one waits
// in its previous cell. Collisions at t = 0 cannot be delayed and are left
// as they are.
//
// The input is not modified.
func Desynchronize(paths [][]core.Cell) [][]core.Cell {
	out := make([][]core.Cell, len(paths))
	for i, p := range paths {
		out[i] = clonePath(p)
	}

	for t := 1; t < horizon(out); t++ {
		var cells []core.Cell
		occupants := make(map[core.Cell][]int)
		for a, p := range out {
			c, ok := positionAt(p, t)
			if !ok {
				continue
			}
			if _, seen := occupants[c]; !seen {
				cells = append(cells, c)
			}
			occupants[c] = append(occupants[c], a)
		}

		for _, c := range cells {
			agents := occupants[c]
			if len(agents) < 2 {
				continue
			}
			keep := agents[0]
			for _, a := range agents[1:] {
				if len(out[a]) > len(out[keep]) {
					keep = a
				}
			}
			for _, a := range agents {
				if a != keep {
					out[a] = insertWait(out[a], t)
				}
			}
		}
	}
	return out
}

// DesynchronizeUntilStable repeats Desynchronize until no vertex conflict
// remains or maxPasses passes have run. It returns the repaired paths and
// the number of passes used.
func DesynchronizeUntilStable(paths [][]core.Cell, maxPasses int) ([][]core.Cell, int) {
	out := paths
	passes := 0
	for passes < maxPasses {
		out = Desynchronize(out)
		passes++
		if CountVertexConflicts(out) == 0 {
			break
		}
	}
	return out, passes
}

// Repair runs Desynchronize in the given mode.
func Repair(paths [][]core.Cell, mode RepairMode) [][]core.Cell {
	if mode == RepairUntilStable {
		out, _ := DesynchronizeUntilStable(paths, DefaultRepairPasses)
		return out
	}
	return Desynchronize(paths)
}

// insertWait duplicates the cell at t-1 so the agent reaches path[t] one
// step later.
func insertWait(path []core.Cell, t int) []core.Cell {
	out := make([]core.Cell, 0, len(path)+1)
	out = append(out, path[:t]...)
	out = append(out, path[t-1])
	return append(out, path[t:]...)
}
