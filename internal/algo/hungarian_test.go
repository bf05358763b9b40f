package algo

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

// bruteForce returns the minimum total cost over all permutations.
func bruteForce(cost [][]float64) float64 {
	n := len(cost)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	best := math.Inf(1)
	var rec func(k int)
	rec = func(k int) {
		if k == n {
			total := 0.0
			for i, j := range perm {
				total += cost[i][j]
			}
			best = math.Min(best, total)
			return
		}
		for i := k; i < n; i++ {
			perm[k], perm[i] = perm[i], perm[k]
			rec(k + 1)
			perm[k], perm[i] = perm[i], perm[k]
		}
	}
	rec(0)
	return best
}

func TestAssignClusters_OptimalAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for n := 1; n <= 5; n++ {
		for trial := 0; trial < 20; trial++ {
			agents := make([]core.Point, n)
			centroids := make([]core.Point, n)
			for i := 0; i < n; i++ {
				agents[i] = core.Point{X: rng.Float64() * 20, Y: rng.Float64() * 20}
				centroids[i] = core.Point{X: rng.Float64() * 20, Y: rng.Float64() * 20}
			}

			a, err := AssignClusters(agents, centroids)
			if err != nil {
				t.Fatalf("AssignClusters: %v", err)
			}

			seen := make(map[int]bool)
			for _, j := range a {
				if seen[j] {
					t.Fatalf("n=%d: assignment %v is not a bijection", n, a)
				}
				seen[j] = true
			}

			cost := make([][]float64, n)
			for i := range cost {
				cost[i] = make([]float64, n)
				for j := range cost[i] {
					cost[i][j] = agents[i].Dist(centroids[j])
				}
			}
			got, want := AssignmentCost(agents, centroids, a), bruteForce(cost)
			if got > want+1e-9 {
				t.Errorf("n=%d trial=%d: cost = %v, optimum %v", n, trial, got, want)
			}
		}
	}
}

func TestAssignClusters_Simple(t *testing.T) {
	agents := []core.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}
	centroids := []core.Point{{X: 10, Y: 1}, {X: 0, Y: 1}}

	a, err := AssignClusters(agents, centroids)
	if err != nil {
		t.Fatalf("AssignClusters: %v", err)
	}
	if diff := cmp.Diff(core.Assignment{1, 0}, a); diff != "" {
		t.Errorf("assignment (-want +got):\n%s", diff)
	}
}

func TestAssignClusters_SizeMismatch(t *testing.T) {
	_, err := AssignClusters([]core.Point{{}, {}}, []core.Point{{}})
	var merr *core.AssignmentSizeMismatchError
	if !errors.As(err, &merr) {
		t.Fatalf("error = %v, want AssignmentSizeMismatchError", err)
	}
	if merr.Agents != 2 || merr.Clusters != 1 {
		t.Errorf("mismatch = %d/%d, want 2/1", merr.Agents, merr.Clusters)
	}
}

func TestHungarian_Empty(t *testing.T) {
	if got := Hungarian(nil); got != nil {
		t.Errorf("Hungarian(nil) = %v, want nil", got)
	}
}
