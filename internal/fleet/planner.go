// Package fleet coordinates the planning modes: single-agent routing and
// many-to-many clustering, assignment, search and conflict repair.
package fleet

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/algo"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

// Planner runs planning requests. The zero value is not usable; use New.
type Planner struct {
	log *log.Logger
}

// New creates a planner logging to l (a "[fleet] " stderr logger if nil).
func New(l *log.Logger) *Planner {
	if l == nil {
		l = log.New(os.Stderr, "[fleet] ", log.LstdFlags)
	}
	return &Planner{log: l}
}

var defaultPlanner = New(nil)

// PlanSingle plans with the default planner.
func PlanSingle(ctx context.Context, g *core.Grid, start core.Cell, targets []core.Cell, mode SingleMode) (core.Path, error) {
	return defaultPlanner.PlanSingle(ctx, g, start, targets, mode)
}

// PlanFleet plans with the default planner.
func PlanFleet(ctx context.Context, g *core.Grid, starts, targets []core.Cell, agentCount int, mode ManyToMany) (*core.FleetPlan, error) {
	return defaultPlanner.PlanFleet(ctx, g, starts, targets, agentCount, mode)
}

// Plan runs any mode on an instance. Single-agent modes use the first
// start cell and return a one-agent fleet plan.
func (p *Planner) Plan(ctx context.Context, inst *core.Instance, mode Mode) (*core.FleetPlan, error) {
	switch m := mode.(type) {
	case OneToOne:
		return p.planOne(ctx, inst, m)
	case OneToMany:
		return p.planOne(ctx, inst, m)
	case ManyToMany:
		return p.PlanFleet(ctx, inst.Grid, inst.Starts, inst.Targets, len(inst.Starts), m)
	}
	return nil, fmt.Errorf("%w: unsupported mode %T", core.ErrInvalidRequest, mode)
}

func (p *Planner) planOne(ctx context.Context, inst *core.Instance, mode SingleMode) (*core.FleetPlan, error) {
	if len(inst.Starts) != 1 {
		return nil, fmt.Errorf("%w: %s needs exactly one agent, got %d", core.ErrInvalidRequest, mode.Name(), len(inst.Starts))
	}
	path, err := p.PlanSingle(ctx, inst.Grid, inst.Starts[0], inst.Targets, mode)
	if err != nil {
		return nil, err
	}
	fp := core.NewFleetPlan(1)
	fp.Plans[0] = core.AgentPlan{Agent: 0, Start: inst.Starts[0], Targets: inst.Targets, Cells: path}
	fp.Clusters = []core.Cluster{{Centroid: centroid(inst.Targets), Targets: inst.Targets}}
	fp.ComputeMakespan()
	return fp, nil
}

// PlanSingle routes one agent from start past every target.
//
// OneToOne needs exactly one target and returns the shortest route to one
// of its helper cells. OneToMany runs either the swarm search or the exact
// nearest-helper chain. Targets that cannot be serviced from start fail
// with UnreachableTargetError before any search runs.
func (p *Planner) PlanSingle(ctx context.Context, g *core.Grid, start core.Cell, targets []core.Cell, mode SingleMode) (core.Path, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no targets", core.ErrInvalidRequest)
	}
	if err := core.CheckStart(g, start); err != nil {
		return nil, err
	}
	if err := checkReachable(g, start, targets); err != nil {
		return nil, err
	}

	switch m := mode.(type) {
	case OneToOne:
		if len(targets) != 1 {
			return nil, fmt.Errorf("%w: one-to-one needs exactly one target, got %d", core.ErrInvalidRequest, len(targets))
		}
		return routeToNearestHelper(g, finderOrDefault(m.Finder), start, targets[0])
	case OneToMany:
		if m.Strategy == Exact {
			return chainTargets(g, finderOrDefault(m.Finder), start, targets)
		}
		cfg := searchOrDefault(m.Search)
		path, err := algo.SearchWaypoints(ctx, g, start, targets, cfg, rand.New(rand.NewSource(m.Seed)))
		if err != nil {
			return nil, errors.Wrap(err, "waypoint search")
		}
		return path, nil
	}
	return nil, fmt.Errorf("%w: unsupported mode %T", core.ErrInvalidRequest, mode)
}

// PlanFleet splits targets among agentCount agents and plans all of them.
//
// Targets are clustered into agentCount groups, each agent gets the group
// whose centroid is cheapest to reach overall, agents are planned in
// parallel and the timed routes are repaired in one pass afterwards.
// Conflicts that survive the repair are reported in FleetPlan.Residual.
// Nothing is returned on failure.
func (p *Planner) PlanFleet(ctx context.Context, g *core.Grid, starts, targets []core.Cell, agentCount int, mode ManyToMany) (*core.FleetPlan, error) {
	if agentCount < 1 {
		return nil, fmt.Errorf("%w: agent count %d < 1", core.ErrInvalidRequest, agentCount)
	}
	if len(starts) != agentCount {
		return nil, fmt.Errorf("%w: %d start cells for %d agents", core.ErrInvalidRequest, len(starts), agentCount)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no targets", core.ErrInvalidRequest)
	}
	for _, s := range starts {
		if err := core.CheckStart(g, s); err != nil {
			return nil, err
		}
	}
	for _, t := range targets {
		if len(g.Helpers(t)) == 0 {
			return nil, &core.UnreachableTargetError{Target: t, Start: starts[0], Reason: "target has no free neighbour"}
		}
	}

	ccfg := clusterOrDefault(mode.Cluster, agentCount)
	if ccfg.Observer == nil {
		ccfg.Observer = mode.Observer
	}
	clusters, err := algo.ClusterTargets(ctx, core.Points(targets), ccfg, rand.New(rand.NewSource(mode.Seed)))
	if err != nil {
		return nil, errors.Wrap(err, "clustering targets")
	}
	assignment, err := algo.AssignClusters(core.Points(starts), clusters.Centroids)
	if err != nil {
		return nil, errors.Wrap(err, "assigning clusters")
	}
	p.log.Printf("clustered %d targets for %d agents, cost %.2f", len(targets), agentCount, clusters.Fitness)

	fp := core.NewFleetPlan(agentCount)
	fp.Clusters = make([]core.Cluster, len(clusters.Centroids))
	for c, centre := range clusters.Centroids {
		fp.Clusters[c].Centroid = centre
		for _, idx := range clusters.Members[c] {
			fp.Clusters[c].Targets = append(fp.Clusters[c].Targets, targets[idx])
		}
	}
	copy(fp.Assignment, assignment)

	for i, c := range assignment {
		fp.Plans[i] = core.AgentPlan{Agent: i, Start: starts[i], Targets: fp.Clusters[c].Targets}
		if err := checkReachable(g, starts[i], fp.Plans[i].Targets); err != nil {
			return nil, errors.Wrapf(err, "agent %d", i)
		}
	}

	limit := mode.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	paths := make([][]core.Cell, agentCount)
	for i := range fp.Plans {
		i := i
		plan := fp.Plans[i]
		eg.Go(func() error {
			path, err := p.planAgent(egctx, g, i, plan, mode)
			if err != nil {
				return errors.Wrapf(err, "agent %d", i)
			}
			paths[i] = path
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	repaired := algo.Repair(paths, mode.Repair)
	for i := range fp.Plans {
		fp.Plans[i].Cells = repaired[i]
	}
	fp.Residual = algo.FindConflicts(repaired)
	fp.ComputeMakespan()
	if len(fp.Residual) > 0 {
		p.log.Printf("%d conflicts left after %s repair", len(fp.Residual), mode.Repair)
	}
	p.log.Printf("planned %d agents: makespan %d, sum of costs %d", agentCount, fp.Makespan, fp.SumOfCosts())
	return fp, nil
}

// planAgent routes one agent over its cluster. An agent with an empty
// cluster stays at its start.
func (p *Planner) planAgent(ctx context.Context, g *core.Grid, agent int, plan core.AgentPlan, mode ManyToMany) (core.Path, error) {
	if len(plan.Targets) == 0 {
		return core.Path{plan.Start}, nil
	}
	if mode.Strategy == Exact {
		return chainTargets(g, finderOrDefault(mode.Finder), plan.Start, plan.Targets)
	}
	cfg := searchOrDefault(mode.Search)
	cfg.Agent = agent
	if cfg.Observer == nil {
		cfg.Observer = mode.Observer
	}
	rng := rand.New(rand.NewSource(mode.Seed + int64(agent) + 1))
	return algo.SearchWaypoints(ctx, g, plan.Start, plan.Targets, cfg, rng)
}

// checkReachable verifies that every target has a helper cell connected to
// start.
func checkReachable(g *core.Grid, start core.Cell, targets []core.Cell) error {
	reach := algo.Reachable(g, start)
	for _, t := range targets {
		helpers := g.Helpers(t)
		if len(helpers) == 0 {
			return &core.UnreachableTargetError{Target: t, Start: start, Reason: "target has no free neighbour"}
		}
		ok := false
		for _, h := range helpers {
			if reach[h] {
				ok = true
				break
			}
		}
		if !ok {
			return &core.UnreachableTargetError{Target: t, Start: start, Reason: "no free neighbour is connected to the start"}
		}
	}
	return nil
}

func centroid(cells []core.Cell) core.Point {
	var c core.Point
	for _, p := range cells {
		c = c.Add(p.Point())
	}
	return c.Scale(1 / float64(len(cells)))
}
