package algo

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

var twoGroups = []core.Point{
	{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1},
	{X: 9, Y: 9}, {X: 8, Y: 9}, {X: 9, Y: 8},
}

func TestClusterTargets_SeparatedGroups(t *testing.T) {
	res, err := ClusterTargets(context.Background(), twoGroups, DefaultClusterConfig(2), rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("ClusterTargets: %v", err)
	}
	if len(res.Centroids) != 2 || len(res.Members) != 2 {
		t.Fatalf("got %d centroids, %d clusters, want 2 each", len(res.Centroids), len(res.Members))
	}

	got := [][]int{res.Members[0], res.Members[1]}
	sort.Slice(got, func(i, j int) bool { return got[i][0] < got[j][0] })
	want := [][]int{{0, 1, 2}, {3, 4, 5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("clusters (-want +got):\n%s", diff)
	}
	for i, l := range res.Labels {
		if l != Nearest(twoGroups[i], res.Centroids) {
			t.Errorf("point %d labelled %d, not its nearest centroid", i, l)
		}
	}
}

func TestClusterTargets_HistoryNonIncreasing(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	points := make([]core.Point, 30)
	for i := range points {
		points[i] = core.Point{X: float64(rng.Intn(40)), Y: float64(rng.Intn(40))}
	}
	cfg := DefaultClusterConfig(4)
	cfg.Iterations = 60

	res, err := ClusterTargets(context.Background(), points, cfg, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("ClusterTargets: %v", err)
	}
	if len(res.History) != cfg.Iterations {
		t.Fatalf("history length = %d, want %d", len(res.History), cfg.Iterations)
	}
	for i := 1; i < len(res.History); i++ {
		if res.History[i] > res.History[i-1] {
			t.Errorf("history rose at %d: %v -> %v", i, res.History[i-1], res.History[i])
		}
	}
	if got := PartitionCost(points, res.Centroids); math.Abs(got-res.Fitness) > 1e-9 {
		t.Errorf("Fitness = %v, recomputed %v", res.Fitness, got)
	}

	total := 0
	for _, m := range res.Members {
		total += len(m)
	}
	if total != len(points) {
		t.Errorf("clusters hold %d points, want %d", total, len(points))
	}
}

func TestClusterTargets_InvalidK(t *testing.T) {
	for _, k := range []int{0, -1, len(twoGroups) + 1} {
		_, err := ClusterTargets(context.Background(), twoGroups, DefaultClusterConfig(k), rand.New(rand.NewSource(1)))
		var cerr *core.InvalidClusterRequestError
		if !errors.As(err, &cerr) {
			t.Errorf("k=%d: error = %v, want InvalidClusterRequestError", k, err)
		}
	}
}

func TestNearest_TieGoesToLowerIndex(t *testing.T) {
	centroids := []core.Point{{X: 0, Y: 0}, {X: 2, Y: 0}}
	if got := Nearest(core.Point{X: 1, Y: 0}, centroids); got != 0 {
		t.Errorf("Nearest = %d, want 0", got)
	}
}

func TestNewBat_RandomRates(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	loudness := make(map[float64]bool)
	for i := 0; i < 20; i++ {
		b := newBat(twoGroups, 3, rand.New(rand.NewSource(rng.Int63())))
		if b.PulseRate < 0 || b.PulseRate >= 1 {
			t.Errorf("bat %d: pulse rate %v outside [0, 1)", i, b.PulseRate)
		}
		if b.Loudness < 0 || b.Loudness >= 1 {
			t.Errorf("bat %d: loudness %v outside [0, 1)", i, b.Loudness)
		}
		loudness[b.Loudness] = true

		seen := make(map[core.Point]bool)
		for _, p := range b.Position {
			if seen[p] {
				t.Errorf("bat %d: centroid %v sampled twice", i, p)
			}
			seen[p] = true
		}
		if got := PartitionCost(twoGroups, b.Position); got != b.Fitness {
			t.Errorf("bat %d: Fitness = %v, want %v", i, b.Fitness, got)
		}
	}
	if len(loudness) < 2 {
		t.Errorf("all bats start with the same loudness")
	}
}
