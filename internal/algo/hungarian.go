package algo

import (
	"math"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

// Hungarian solves the square assignment problem for cost, returning the
// column assigned to each row. Runs in O(n^3) using row and column
// potentials.
func Hungarian(cost [][]float64) []int {
	n := len(cost)
	if n == 0 {
		return nil
	}
	inf := math.Inf(1)

	// 1-indexed; row 0 and column 0 are sentinels.
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	p := make([]int, n+1)   // p[j]: row matched to column j
	way := make([]int, n+1) // previous column on the augmenting path

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, n+1)
		used := make([]bool, n+1)
		for j := range minv {
			minv[j] = inf
		}
		for {
			used[j0] = true
			i0, delta, j1 := p[j0], inf, 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	rows := make([]int, n)
	for j := 1; j <= n; j++ {
		rows[p[j]-1] = j - 1
	}
	return rows
}

// AssignClusters pairs every agent with one centroid, minimizing the total
// Euclidean distance from agent start to centroid.
func AssignClusters(agents, centroids []core.Point) (core.Assignment, error) {
	if len(agents) != len(centroids) {
		return nil, &core.AssignmentSizeMismatchError{Agents: len(agents), Clusters: len(centroids)}
	}
	cost := make([][]float64, len(agents))
	for i, a := range agents {
		cost[i] = make([]float64, len(centroids))
		for j, c := range centroids {
			cost[i][j] = a.Dist(c)
		}
	}
	return core.Assignment(Hungarian(cost)), nil
}

// AssignmentCost returns the total agent-to-centroid distance of a.
func AssignmentCost(agents, centroids []core.Point, a core.Assignment) float64 {
	total := 0.0
	for i, j := range a {
		total += agents[i].Dist(centroids[j])
	}
	return total
}
