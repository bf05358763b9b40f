package algo

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

func TestFindFirstConflict_NoConflict(t *testing.T) {
	paths := [][]core.Cell{
		{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
		{{X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2}},
	}
	if c := FindFirstConflict(paths); c != nil {
		t.Errorf("Expected no conflict, got %+v", *c)
	}
}

func TestFindFirstConflict_VertexConflict(t *testing.T) {
	paths := [][]core.Cell{
		{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}},
		{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2}},
	}
	c := FindFirstConflict(paths)
	if c == nil {
		t.Fatal("Expected a conflict")
	}
	want := core.Conflict{Kind: core.VertexConflict, Agent1: 0, Agent2: 1, Cell: core.Cell{X: 1, Y: 1}, Step: 1}
	if diff := cmp.Diff(want, *c); diff != "" {
		t.Errorf("conflict (-want +got):\n%s", diff)
	}
}

func TestFindFirstConflict_SwapConflict(t *testing.T) {
	paths := [][]core.Cell{
		{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
		{{X: 3, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 0}},
	}
	c := FindFirstConflict(paths)
	if c == nil {
		t.Fatal("Expected a swap conflict")
	}
	if c.Kind != core.SwapConflict || c.Step != 1 {
		t.Errorf("conflict = %+v, want swap at step 1", *c)
	}
}

func TestFindConflicts_FinishedAgentLeaves(t *testing.T) {
	paths := [][]core.Cell{
		{{X: 0, Y: 0}, {X: 1, Y: 0}},
		{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 0}, {X: 1, Y: 0}},
	}
	if got := FindConflicts(paths); len(got) != 0 {
		t.Errorf("FindConflicts = %v, want none", got)
	}
}

func TestDesynchronize_Crossing(t *testing.T) {
	paths := [][]core.Cell{
		{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}},
		{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2}},
	}
	got := Desynchronize(paths)
	want := [][]core.Cell{
		{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}},
		{{X: 1, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Desynchronize (-want +got):\n%s", diff)
	}
	if c := FindConflicts(got); len(c) != 0 {
		t.Errorf("residual conflicts: %v", c)
	}
}

func TestDesynchronize_LongerPathKeepsMoving(t *testing.T) {
	paths := [][]core.Cell{
		{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2}},
		{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}, {X: 4, Y: 1}},
	}
	got := Desynchronize(paths)
	if len(got[1]) != len(paths[1]) {
		t.Errorf("longer agent delayed: %v", got[1])
	}
	if want := []core.Cell{{X: 1, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2}}; !cmp.Equal(want, got[0]) {
		t.Errorf("shorter agent = %v, want %v", got[0], want)
	}
}

func TestDesynchronize_StartCollisionLeft(t *testing.T) {
	paths := [][]core.Cell{
		{{X: 0, Y: 0}, {X: 1, Y: 0}},
		{{X: 0, Y: 0}, {X: 0, Y: 1}},
	}
	got := Desynchronize(paths)
	if diff := cmp.Diff(paths, got); diff != "" {
		t.Errorf("start collision changed paths (-want +got):\n%s", diff)
	}
	c := FindConflicts(got)
	if len(c) != 1 || c[0].Step != 0 {
		t.Errorf("conflicts = %v, want one at step 0", c)
	}
}

func TestDesynchronize_DoesNotMutateInput(t *testing.T) {
	paths := [][]core.Cell{
		{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}},
		{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2}},
	}
	before := [][]core.Cell{
		{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}},
		{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2}},
	}
	Desynchronize(paths)
	if diff := cmp.Diff(before, paths); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}

// stripWaits removes adjacent duplicates.
func stripWaits(p []core.Cell) []core.Cell {
	var out []core.Cell
	for i, c := range p {
		if i == 0 || c != p[i-1] {
			out = append(out, c)
		}
	}
	return out
}

// randomWalk returns a wait-free walk of n moves on an open w x h grid.
func randomWalk(rng *rand.Rand, start core.Cell, n, w, h int) []core.Cell {
	path := []core.Cell{start}
	for len(path) <= n {
		next := path[len(path)-1].Add(core.Directions[rng.Intn(4)])
		if next.X >= 0 && next.X < w && next.Y >= 0 && next.Y < h {
			path = append(path, next)
		}
	}
	return path
}

func TestDesynchronize_OnlyInsertsWaits(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	for trial := 0; trial < 50; trial++ {
		agents := 2 + rng.Intn(4)
		paths := make([][]core.Cell, agents)
		for a := range paths {
			start := core.Cell{X: a, Y: 0}
			paths[a] = randomWalk(rng, start, 2+rng.Intn(8), 5, 5)
		}

		for _, mode := range []RepairMode{RepairSinglePass, RepairUntilStable} {
			got := Repair(paths, mode)
			for a := range paths {
				if !cmp.Equal(stripWaits(paths[a]), stripWaits(got[a])) {
					t.Fatalf("trial %d %v: agent %d route changed: %v -> %v", trial, mode, a, paths[a], got[a])
				}
				if got[a][0] != paths[a][0] {
					t.Fatalf("trial %d %v: agent %d start moved", trial, mode, a)
				}
			}
		}
	}
}

func TestDesynchronizeUntilStable_ReportsPasses(t *testing.T) {
	paths := [][]core.Cell{
		{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}},
		{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2}},
	}
	got, passes := DesynchronizeUntilStable(paths, DefaultRepairPasses)
	if passes != 1 {
		t.Errorf("passes = %d, want 1", passes)
	}
	if n := CountVertexConflicts(got); n != 0 {
		t.Errorf("vertex conflicts = %d, want 0", n)
	}
}

func TestParseRepairMode(t *testing.T) {
	tests := []struct {
		in      string
		want    RepairMode
		wantErr bool
	}{
		{"", RepairSinglePass, false},
		{"single", RepairSinglePass, false},
		{"Stable", RepairUntilStable, false},
		{"forever", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseRepairMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRepairMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRepairMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
