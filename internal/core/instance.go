package core

import "fmt"

// Instance is one planning problem: a grid, agent start cells and the
// targets to service.
type Instance struct {
	Grid    *Grid
	Starts  []Cell
	Targets []Cell
}

// NewInstance builds an instance from raw rows, validating the grid.
func NewInstance(rows [][]int, starts, targets []Cell) (*Instance, error) {
	g, err := NewGrid(rows, targets)
	if err != nil {
		return nil, err
	}
	inst := &Instance{Grid: g, Starts: starts, Targets: targets}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

// Validate checks instance consistency.
func (inst *Instance) Validate() error {
	if inst.Grid == nil {
		return &InvalidGridError{Reason: "no grid"}
	}
	if len(inst.Starts) == 0 {
		return fmt.Errorf("%w: no agent start cells", ErrInvalidRequest)
	}
	if len(inst.Targets) == 0 {
		return fmt.Errorf("%w: no targets", ErrInvalidRequest)
	}
	for _, s := range inst.Starts {
		if err := CheckStart(inst.Grid, s); err != nil {
			return err
		}
	}
	for _, t := range inst.Targets {
		if !inst.Grid.IsTarget(t) {
			return &InvalidGridError{Reason: fmt.Sprintf("cell %v is not a designated target", t)}
		}
	}
	return nil
}

// CheckStart verifies that an agent can stand on s.
func CheckStart(g *Grid, s Cell) error {
	if !g.InBounds(s) {
		return &InvalidGridError{Reason: fmt.Sprintf("start %v is outside the grid", s)}
	}
	if !g.Passable(s) {
		return &InvalidGridError{Reason: fmt.Sprintf("start %v is not a free cell", s)}
	}
	return nil
}
