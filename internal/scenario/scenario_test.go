package scenario

import (
	"bytes"
	"errors"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

func TestDecode(t *testing.T) {
	in := `{"name":"tiny","grid":[[1,1,1],[1,0,1]],"starts":[[0,0]],"targets":[[2,1]]}`
	s, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s.Agents != 1 {
		t.Errorf("Agents = %d, want 1", s.Agents)
	}
	inst, err := s.Instance()
	if err != nil {
		t.Fatalf("Instance: %v", err)
	}
	if diff := cmp.Diff([]core.Cell{{X: 1, Y: 1}}, inst.Grid.Obstacles()); diff != "" {
		t.Errorf("Obstacles (-want +got):\n%s", diff)
	}
	if !inst.Grid.IsTarget(core.Cell{X: 2, Y: 1}) {
		t.Error("target not registered")
	}
}

func TestDecode_EditorSave(t *testing.T) {
	// "end" pairs are [row, col].
	in := `{"grid":[[1,1,1],[1,1,0]],"start":[[0,0]],"end":[[1,2]]}`
	s, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff([]core.Cell{{X: 2, Y: 1}}, s.TargetCells()); diff != "" {
		t.Errorf("targets (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]core.Cell{{X: 0, Y: 0}}, s.StartCells()); diff != "" {
		t.Errorf("starts (-want +got):\n%s", diff)
	}
}

func TestInstance_Missing(t *testing.T) {
	tests := []struct {
		name string
		s    Scenario
	}{
		{"nothing", Scenario{Grid: [][]int{{1}}}},
		{"no agents", Scenario{Grid: [][]int{{1, 1}}, Targets: []Pair{{1, 0}}}},
		{"no targets", Scenario{Grid: [][]int{{1, 1}}, Starts: []Pair{{0, 0}}, Agents: 1}},
		{"agent count", Scenario{Grid: [][]int{{1, 1}}, Starts: []Pair{{0, 0}}, Targets: []Pair{{1, 0}}, Agents: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.s.Instance(); !errors.Is(err, core.ErrInvalidRequest) {
				t.Errorf("error = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, err := Builtin("wall")
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	path := filepath.Join(t.TempDir(), "wall.json")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(s, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestBuiltins(t *testing.T) {
	for _, name := range BuiltinNames() {
		s, err := Builtin(name)
		if err != nil {
			t.Fatalf("Builtin(%q): %v", name, err)
		}
		if _, err := s.Instance(); err != nil {
			t.Errorf("%s: Instance: %v", name, err)
		}
	}
	if _, err := Builtin("nope"); !errors.Is(err, core.ErrInvalidRequest) {
		t.Errorf("unknown builtin: error = %v", err)
	}
}

func TestGenerate(t *testing.T) {
	cfg := GenerateConfig{Width: 12, Height: 9, Agents: 3, Targets: 8, ObstacleRatio: 0.2}
	s, err := Generate("gen", cfg, rand.New(rand.NewSource(4)))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	inst, err := s.Instance()
	if err != nil {
		t.Fatalf("Instance: %v", err)
	}
	if len(inst.Starts) != 3 || len(inst.Targets) != 8 {
		t.Errorf("got %d starts, %d targets", len(inst.Starts), len(inst.Targets))
	}

	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	again, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(s, again); diff != "" {
		t.Errorf("encode/decode (-want +got):\n%s", diff)
	}

	if _, err := Generate("tiny", GenerateConfig{Width: 1, Height: 1, Agents: 1, Targets: 1}, rand.New(rand.NewSource(1))); !errors.Is(err, core.ErrInvalidRequest) {
		t.Errorf("overfull: error = %v, want ErrInvalidRequest", err)
	}
}
