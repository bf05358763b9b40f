package algo

import (
	"context"
	"math"
	"math/rand"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

// ClusterConfig parameterizes the bat-algorithm clustering.
type ClusterConfig struct {
	K          int // number of clusters
	Bats       int
	Iterations int

	FMin, FMax float64 // frequency range
	Jitter     float64 // local search sigma, as a fraction of the point spread
	Gamma      float64 // pulse rate growth
	Alpha      float64 // loudness decay

	Observer Observer
}

// DefaultClusterConfig returns the standard bat parameters for k clusters.
func DefaultClusterConfig(k int) ClusterConfig {
	return ClusterConfig{
		K:          k,
		Bats:       20,
		Iterations: 100,
		FMin:       0,
		FMax:       2,
		Jitter:     0.01,
		Gamma:      0.1,
		Alpha:      0.9,
	}
}

// Bat is one candidate centroid set.
type Bat struct {
	Position  []core.Point
	Velocity  []core.Point
	Frequency float64
	PulseRate float64
	Loudness  float64
	Fitness   float64

	rng *rand.Rand
}

// ClusterResult is the outcome of ClusterTargets.
type ClusterResult struct {
	Centroids []core.Point
	Labels    []int   // centroid index per input point
	Members   [][]int // input point indices per centroid
	Fitness   float64
	History   []float64 // global best fitness after each iteration
}

type bounds struct {
	min, max core.Point
}

func boundsOf(points []core.Point) bounds {
	b := bounds{min: points[0], max: points[0]}
	for _, p := range points[1:] {
		b.min.X = math.Min(b.min.X, p.X)
		b.min.Y = math.Min(b.min.Y, p.Y)
		b.max.X = math.Max(b.max.X, p.X)
		b.max.Y = math.Max(b.max.Y, p.Y)
	}
	return b
}

func (b bounds) clip(p core.Point) core.Point {
	return core.Point{
		X: math.Min(math.Max(p.X, b.min.X), b.max.X),
		Y: math.Min(math.Max(p.Y, b.min.Y), b.max.Y),
	}
}

func (b bounds) extent() float64 {
	return math.Max(b.max.X-b.min.X, b.max.Y-b.min.Y)
}

// Nearest returns the index of the centroid closest to p. Ties go to the
// lower index.
func Nearest(p core.Point, centroids []core.Point) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range centroids {
		if d := p.Dist(c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// PartitionCost sums each point's distance to its nearest centroid.
func PartitionCost(points, centroids []core.Point) float64 {
	total := 0.0
	for _, p := range points {
		total += p.Dist(centroids[Nearest(p, centroids)])
	}
	return total
}

// ClusterTargets partitions points into cfg.K clusters with the bat
// algorithm. The swarm minimizes PartitionCost; the returned partition
// assigns every point to its nearest final centroid, so a cluster may be
// empty.
func ClusterTargets(ctx context.Context, points []core.Point, cfg ClusterConfig, rng *rand.Rand) (*ClusterResult, error) {
	if cfg.K <= 0 || cfg.K > len(points) {
		return nil, &core.InvalidClusterRequestError{K: cfg.K, Points: len(points)}
	}
	if cfg.Bats < 1 {
		cfg.Bats = 1
	}
	obs := observerOrNop(cfg.Observer)
	box := boundsOf(points)
	sigma := cfg.Jitter * math.Max(box.extent(), 1)

	bats := make([]*Bat, cfg.Bats)
	var best []core.Point
	bestFitness := math.Inf(1)
	for i := range bats {
		b := newBat(points, cfg.K, rand.New(rand.NewSource(rng.Int63())))
		if b.Fitness < bestFitness {
			best, bestFitness = clonePoints(b.Position), b.Fitness
		}
		bats[i] = b
	}

	history := make([]float64, 0, cfg.Iterations)
	candidate := make([]core.Point, cfg.K)
	for it := 0; it < cfg.Iterations; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, b := range bats {
			b.Frequency = cfg.FMin + (cfg.FMax-cfg.FMin)*b.rng.Float64()
			for j := range b.Position {
				b.Velocity[j] = b.Velocity[j].Add(b.Position[j].Sub(best[j]).Scale(b.Frequency))
				candidate[j] = b.Position[j].Add(b.Velocity[j])
			}
			if b.rng.Float64() > b.PulseRate {
				for j := range candidate {
					candidate[j].X += b.rng.NormFloat64() * sigma
					candidate[j].Y += b.rng.NormFloat64() * sigma
				}
			}
			for j := range candidate {
				candidate[j] = box.clip(candidate[j])
			}

			f := PartitionCost(points, candidate)
			if f < b.Fitness && b.rng.Float64() < b.Loudness {
				copy(b.Position, candidate)
				b.Fitness = f
				b.Loudness *= cfg.Alpha
				b.PulseRate += (1 - b.PulseRate) * (1 - math.Exp(-cfg.Gamma))
			}
			if b.Fitness < bestFitness {
				best, bestFitness = clonePoints(b.Position), b.Fitness
			}
		}
		history = append(history, bestFitness)
		obs.OnClusterIteration(it, bestFitness)
	}

	res := &ClusterResult{
		Centroids: best,
		Labels:    make([]int, len(points)),
		Members:   make([][]int, cfg.K),
		Fitness:   bestFitness,
		History:   history,
	}
	for i, p := range points {
		l := Nearest(p, best)
		res.Labels[i] = l
		res.Members[l] = append(res.Members[l], i)
	}
	return res, nil
}

// newBat places k centroids on distinct input points. Pulse rate and
// loudness start as uniform draws in [0, 1).
func newBat(points []core.Point, k int, rng *rand.Rand) *Bat {
	b := &Bat{
		Position: make([]core.Point, k),
		Velocity: make([]core.Point, k),
		rng:      rng,
	}
	b.PulseRate = rng.Float64()
	b.Loudness = rng.Float64()
	for j, idx := range rng.Perm(len(points))[:k] {
		b.Position[j] = points[idx]
	}
	b.Fitness = PartitionCost(points, b.Position)
	return b
}

func clonePoints(p []core.Point) []core.Point {
	out := make([]core.Point, len(p))
	copy(out, p)
	return out
}
