// Package scenario reads and writes planning scenarios as JSON.
//
// A scenario file looks like
//
//	{"name": "demo", "grid": [[1,1,0],[1,1,1]], "starts": [[0,0]], "targets": [[2,0]], "agents": 1}
//
// with cells as [x, y] pairs and grid rows indexed by y. Files saved by the
// map editor use "start" ([x, y]) and "end" ([row, col]) instead and are
// accepted as well.
package scenario

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

// Pair is a cell encoded as [x, y].
type Pair [2]int

// Cell converts the pair to a cell.
func (p Pair) Cell() core.Cell { return core.Cell{X: p[0], Y: p[1]} }

// PairOf converts a cell to a pair.
func PairOf(c core.Cell) Pair { return Pair{c.X, c.Y} }

// Scenario is a planning problem on disk.
type Scenario struct {
	Name    string  `json:"name,omitempty"`
	Grid    [][]int `json:"grid"`
	Starts  []Pair  `json:"starts"`
	Targets []Pair  `json:"targets"`
	Agents  int     `json:"agents,omitempty"` // defaults to len(Starts)

	// Editor save format.
	LegacyStart []Pair `json:"start,omitempty"`
	LegacyEnd   []Pair `json:"end,omitempty"` // [row, col]
}

// Decode reads a scenario from r.
func Decode(r io.Reader) (*Scenario, error) {
	var s Scenario
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decoding scenario")
	}
	s.normalize()
	return &s, nil
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return s, nil
}

// Encode writes s as indented JSON.
func (s *Scenario) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// Save writes s to path.
func (s *Scenario) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *Scenario) normalize() {
	if len(s.Starts) == 0 && len(s.LegacyStart) > 0 {
		s.Starts = s.LegacyStart
	}
	if len(s.Targets) == 0 && len(s.LegacyEnd) > 0 {
		for _, rc := range s.LegacyEnd {
			s.Targets = append(s.Targets, Pair{rc[1], rc[0]})
		}
	}
	s.LegacyStart, s.LegacyEnd = nil, nil
	if s.Agents == 0 {
		s.Agents = len(s.Starts)
	}
}

// StartCells returns the start cells.
func (s *Scenario) StartCells() []core.Cell { return cells(s.Starts) }

// TargetCells returns the target cells.
func (s *Scenario) TargetCells() []core.Cell { return cells(s.Targets) }

// Instance validates the scenario and builds a planning instance.
func (s *Scenario) Instance() (*core.Instance, error) {
	switch {
	case len(s.Starts) == 0 && len(s.Targets) == 0:
		return nil, fmt.Errorf("%w: no agents or targets found", core.ErrInvalidRequest)
	case len(s.Starts) == 0:
		return nil, fmt.Errorf("%w: no agents found", core.ErrInvalidRequest)
	case len(s.Targets) == 0:
		return nil, fmt.Errorf("%w: no targets found", core.ErrInvalidRequest)
	case s.Agents != len(s.Starts):
		return nil, fmt.Errorf("%w: %d agents but %d start cells", core.ErrInvalidRequest, s.Agents, len(s.Starts))
	}
	rows := make([][]int, len(s.Grid))
	for y, r := range s.Grid {
		rows[y] = append([]int(nil), r...)
	}
	for _, t := range s.Targets {
		if t[1] >= 0 && t[1] < len(rows) && t[0] >= 0 && t[0] < len(rows[t[1]]) {
			rows[t[1]][t[0]] = core.BlockedValue
		}
	}
	return core.NewInstance(rows, s.StartCells(), s.TargetCells())
}

// FromInstance converts an instance back to a scenario.
func FromInstance(name string, inst *core.Instance) *Scenario {
	s := &Scenario{
		Name:   name,
		Grid:   inst.Grid.Rows(),
		Agents: len(inst.Starts),
	}
	for _, c := range inst.Starts {
		s.Starts = append(s.Starts, PairOf(c))
	}
	for _, c := range inst.Targets {
		s.Targets = append(s.Targets, PairOf(c))
	}
	return s
}

func cells(ps []Pair) []core.Cell {
	out := make([]core.Cell, len(ps))
	for i, p := range ps {
		out[i] = p.Cell()
	}
	return out
}
