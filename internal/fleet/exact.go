package fleet

import (
	"github.com/luvdamuzik/MotionPlanningRobots/internal/algo"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

// routeToNearestHelper returns the shortest finder path from start to any
// helper cell of target. Ties go to the first helper in neighbour order.
func routeToNearestHelper(g *core.Grid, f algo.Finder, start, target core.Cell) (core.Path, error) {
	var best core.Path
	for _, h := range g.Helpers(target) {
		path, ok := f.FindPath(g, start, h)
		if ok && (best == nil || len(path) < len(best)) {
			best = path
		}
	}
	if best == nil {
		return nil, &core.UnreachableTargetError{Target: target, Start: start, Reason: f.Name() + " found no route to a free neighbour"}
	}
	return best, nil
}

// chainTargets visits targets greedily: from the current cell it routes to
// the closest helper of any remaining target, drops every target serviced
// along the way and repeats.
func chainTargets(g *core.Grid, f algo.Finder, start core.Cell, targets []core.Cell) (core.Path, error) {
	remaining := make(map[core.Cell]bool, len(targets))
	for _, t := range targets {
		remaining[t] = true
	}
	path := core.Path{start}
	drop := func(cells core.Path) {
		for _, c := range cells {
			for _, t := range targets {
				if remaining[t] && c.Adjacent(t) {
					delete(remaining, t)
				}
			}
		}
	}
	drop(path)

	for len(remaining) > 0 {
		cur := path.Last()
		var leg core.Path
		var legTarget core.Cell
		for _, t := range targets {
			if !remaining[t] {
				continue
			}
			p, err := routeToNearestHelper(g, f, cur, t)
			if err != nil {
				return nil, err
			}
			if leg == nil || len(p) < len(leg) {
				leg, legTarget = p, t
			}
		}
		path = append(path, leg[1:]...)
		drop(leg)
		delete(remaining, legTarget)
	}
	return path, nil
}
