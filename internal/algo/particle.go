package algo

import (
	"math"
	"math/rand"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

// velocity is a continuous 2D displacement for one waypoint.
type velocity [2]float64

// Particle is one candidate path in a swarm.
type Particle struct {
	Position    []core.Cell
	Velocity    []velocity
	Best        []core.Cell
	BestFitness float64

	rng *rand.Rand
}

// newParticle seeds a particle with a random walk of waypoints steps from
// start. Only passable cells are entered; a step is redrawn until one is
// found. The start must have at least one passable neighbour.
func newParticle(g *core.Grid, start core.Cell, waypoints int, rng *rand.Rand) *Particle {
	p := &Particle{
		Position:    make([]core.Cell, waypoints+1),
		Velocity:    make([]velocity, waypoints+1),
		BestFitness: math.Inf(1),
		rng:         rng,
	}
	p.Position[0] = start
	for i := 1; i <= waypoints; i++ {
		for {
			next := p.Position[i-1].Add(core.Directions[rng.Intn(len(core.Directions))])
			if g.Passable(next) {
				p.Position[i] = next
				break
			}
		}
	}
	for i := range p.Velocity {
		p.Velocity[i] = velocity{rng.Float64()*2 - 1, rng.Float64()*2 - 1}
	}
	p.Best = clonePath(p.Position)
	return p
}

// move applies the inertia-weighted velocity update toward the personal
// and global bests, then rounds and repairs the new position.
func (p *Particle) move(g *core.Grid, start core.Cell, global []core.Cell, cfg SearchConfig) {
	r1, r2 := p.rng.Float64(), p.rng.Float64()
	raw := make([]core.Cell, len(p.Position))
	for i, x := range p.Position {
		pb, gb := p.Best[i], global[i]
		v := &p.Velocity[i]
		v[0] = cfg.Inertia*v[0] + cfg.Cognitive*r1*float64(pb.X-x.X) + cfg.Social*r2*float64(gb.X-x.X)
		v[1] = cfg.Inertia*v[1] + cfg.Cognitive*r1*float64(pb.Y-x.Y) + cfg.Social*r2*float64(gb.Y-x.Y)
		raw[i] = core.Cell{
			X: int(math.Round(float64(x.X) + v[0])),
			Y: int(math.Round(float64(x.Y) + v[1])),
		}
	}
	p.Position = repairPath(g, start, raw)
}

// repairPath pins the first waypoint, clips the rest into the grid and
// restores 4-adjacency left to right.
func repairPath(g *core.Grid, start core.Cell, raw []core.Cell) []core.Cell {
	out := make([]core.Cell, len(raw))
	out[0] = start
	for i := 1; i < len(raw); i++ {
		raw[i] = clip(raw[i], g)
		out[i] = raw[i]
	}
	for i := 1; i < len(out); i++ {
		prev := out[i-1]
		if prev.Adjacent(out[i]) {
			continue
		}
		best, bestDist := out[i], math.Inf(1)
		for _, n := range g.PassableNeighbors(prev) {
			if d := n.Dist(raw[i]); d < bestDist {
				best, bestDist = n, d
			}
		}
		out[i] = best
	}
	return out
}

func clip(c core.Cell, g *core.Grid) core.Cell {
	c.X = min(max(c.X, 0), g.Width-1)
	c.Y = min(max(c.Y, 0), g.Height-1)
	return c
}

func clonePath(p []core.Cell) []core.Cell {
	out := make([]core.Cell, len(p))
	copy(out, p)
	return out
}
