package algo

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

// SearchConfig parameterizes the swarm waypoint search.
type SearchConfig struct {
	MinWaypoints int
	MaxWaypoints int
	SwarmSize    int
	Iterations   int

	// ScaleSwarm makes SwarmSize a per-waypoint count, so an attempt with
	// n waypoints runs SwarmSize*n particles.
	ScaleSwarm bool

	Inertia   float64 // w
	Cognitive float64 // c1
	Social    float64 // c2

	Agent    int // reported to the observer
	Observer Observer
}

// DefaultSearchConfig returns the standard swarm parameters.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		MinWaypoints: 2,
		MaxWaypoints: 5,
		SwarmSize:    50,
		Iterations:   100,
		Inertia:      0.5,
		Cognitive:    2.0,
		Social:       2.0,
	}
}

// Validate checks the budgets.
func (c SearchConfig) Validate() error {
	switch {
	case c.MinWaypoints < 1:
		return fmt.Errorf("%w: min waypoints %d < 1", core.ErrInvalidRequest, c.MinWaypoints)
	case c.MaxWaypoints < c.MinWaypoints:
		return fmt.Errorf("%w: max waypoints %d < min waypoints %d", core.ErrInvalidRequest, c.MaxWaypoints, c.MinWaypoints)
	case c.SwarmSize < 1:
		return fmt.Errorf("%w: swarm size %d < 1", core.ErrInvalidRequest, c.SwarmSize)
	case c.Iterations < 0:
		return fmt.Errorf("%w: negative iteration count", core.ErrInvalidRequest)
	}
	return nil
}

// particles returns the population size for an attempt.
func (c SearchConfig) particles(waypoints int) int {
	if c.ScaleSwarm {
		return c.SwarmSize * waypoints
	}
	return c.SwarmSize
}

// Swarm is the particle population of one search attempt.
type Swarm struct {
	Particles   []*Particle
	Best        []core.Cell
	BestFitness float64

	grid  *core.Grid
	start core.Cell
	obj   *objective
	cfg   SearchConfig
}

func newSwarm(g *core.Grid, start core.Cell, waypoints int, obj *objective, cfg SearchConfig, rng *rand.Rand) *Swarm {
	s := &Swarm{
		Particles:   make([]*Particle, cfg.particles(waypoints)),
		BestFitness: math.Inf(1),
		grid:        g,
		start:       start,
		obj:         obj,
		cfg:         cfg,
	}
	for i := range s.Particles {
		p := newParticle(g, start, waypoints, rand.New(rand.NewSource(rng.Int63())))
		p.BestFitness = obj.fitness(p.Position)
		s.Particles[i] = p
		if s.Best == nil || p.BestFitness < s.BestFitness {
			s.Best = clonePath(p.Position)
			s.BestFitness = p.BestFitness
		}
	}
	return s
}

// Step moves every particle once. The global best is updated as soon as a
// particle improves on it, so later particles in the same step follow it.
func (s *Swarm) Step() {
	for _, p := range s.Particles {
		p.move(s.grid, s.start, s.Best, s.cfg)
		f := s.obj.fitness(p.Position)
		if f < p.BestFitness {
			p.Best = clonePath(p.Position)
			p.BestFitness = f
		}
		if p.BestFitness < s.BestFitness {
			s.Best = clonePath(p.Best)
			s.BestFitness = p.BestFitness
		}
	}
}

// SearchWaypoints runs the swarm search for a path from start that passes
// a helper cell of every target. Waypoint counts are tried from
// cfg.MinWaypoints up to cfg.MaxWaypoints; the first count whose global
// best covers all targets wins and is trimmed after its last helper cell.
//
// Returns NoPathFoundError when every count fails, and
// UnreachableTargetError when the start cell has no passable neighbour.
func SearchWaypoints(ctx context.Context, g *core.Grid, start core.Cell, targets []core.Cell, cfg SearchConfig, rng *rand.Rand) (core.Path, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no targets", core.ErrInvalidRequest)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := core.CheckStart(g, start); err != nil {
		return nil, err
	}
	if len(g.PassableNeighbors(start)) == 0 {
		return nil, &core.UnreachableTargetError{Target: targets[0], Start: start, Reason: "start cell has no free neighbour"}
	}
	obs := observerOrNop(cfg.Observer)
	obj := newObjective(g, targets)

	var enclosed []core.Cell
	for _, t := range targets {
		if len(g.Helpers(t)) == 0 {
			enclosed = append(enclosed, t)
		}
	}
	if len(enclosed) > 0 {
		// No waypoint count can cover these.
		return nil, &core.NoPathFoundError{
			Start:        start,
			MaxWaypoints: cfg.MaxWaypoints,
			Unvisited:    enclosed,
			Enclosed:     enclosed,
		}
	}

	var unvisited []core.Cell
	for n := cfg.MinWaypoints; n <= cfg.MaxWaypoints; n++ {
		obs.OnAttempt(cfg.Agent, n)
		s := newSwarm(g, start, n, obj, cfg, rng)
		for it := 0; it < cfg.Iterations; it++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			s.Step()
		}

		unvisited = obj.unvisited(s.Best)
		covered := len(unvisited) == 0 && !math.IsInf(s.BestFitness, 1)
		obs.OnAttemptDone(cfg.Agent, n, covered, s.BestFitness)
		if covered {
			return obj.trim(s.Best), nil
		}
	}

	return nil, &core.NoPathFoundError{
		Start:        start,
		MaxWaypoints: cfg.MaxWaypoints,
		Unvisited:    unvisited,
	}
}
