package core

// Path is a sequence of cells starting at the agent's start cell.
// Consecutive cells are 4-adjacent.
type Path []Cell

// Last returns the final cell of the path.
func (p Path) Last() Cell {
	return p[len(p)-1]
}

// Valid reports whether p is non-empty, in-bounds, passable and 4-connected.
// Repeated consecutive cells (waits) are accepted when allowWaits is set.
func (p Path) Valid(g *Grid, allowWaits bool) bool {
	if len(p) == 0 {
		return false
	}
	for i, c := range p {
		if !g.Passable(c) {
			return false
		}
		if i == 0 {
			continue
		}
		if p[i-1] == c && allowWaits {
			continue
		}
		if !p[i-1].Adjacent(c) {
			return false
		}
	}
	return true
}

// Clone returns a copy of the path.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// AgentPlan is the timed route of one agent: index i is the cell occupied
// at step i. Adjacent duplicates are waits.
type AgentPlan struct {
	Agent   int    `json:"agent"`
	Start   Cell   `json:"start"`
	Targets []Cell `json:"targets"`
	Cells   Path   `json:"cells"`
}

// Waits counts the inserted wait steps.
func (a AgentPlan) Waits() int {
	n := 0
	for i := 1; i < len(a.Cells); i++ {
		if a.Cells[i] == a.Cells[i-1] {
			n++
		}
	}
	return n
}

// Assignment maps agent index to cluster index.
type Assignment []int

// Cluster is a group of targets served by one agent.
type Cluster struct {
	Centroid Point  `json:"centroid"`
	Targets  []Cell `json:"targets"`
}

// ConflictKind distinguishes vertex and swap conflicts.
type ConflictKind int

const (
	VertexConflict ConflictKind = iota
	SwapConflict
)

func (k ConflictKind) String() string {
	return [...]string{"vertex", "swap"}[k]
}

// Conflict is a collision between two agents at a step.
type Conflict struct {
	Kind   ConflictKind `json:"kind"`
	Agent1 int          `json:"agent1"`
	Agent2 int          `json:"agent2"`
	Cell   Cell         `json:"cell"`
	Step   int          `json:"step"`
}

// FleetPlan is the outcome of a many-to-many planning run.
type FleetPlan struct {
	Plans      []AgentPlan `json:"plans"`
	Clusters   []Cluster   `json:"clusters"`
	Assignment Assignment  `json:"assignment"`
	Residual   []Conflict  `json:"residual"` // conflicts left after repair
	Makespan   int         `json:"makespan"`
}

// NewFleetPlan creates an empty plan for n agents.
func NewFleetPlan(n int) *FleetPlan {
	return &FleetPlan{
		Plans:      make([]AgentPlan, n),
		Assignment: make(Assignment, n),
	}
}

// Paths returns the cell sequences of every agent, indexed by agent.
func (f *FleetPlan) Paths() [][]Cell {
	out := make([][]Cell, len(f.Plans))
	for i, p := range f.Plans {
		out[i] = p.Cells
	}
	return out
}

// ComputeMakespan sets Makespan to the number of moves of the longest plan.
func (f *FleetPlan) ComputeMakespan() int {
	m := 0
	for _, p := range f.Plans {
		if n := len(p.Cells) - 1; n > m {
			m = n
		}
	}
	f.Makespan = m
	return m
}

// SumOfCosts returns the total number of steps across agents.
func (f *FleetPlan) SumOfCosts() int {
	total := 0
	for _, p := range f.Plans {
		if len(p.Cells) > 0 {
			total += len(p.Cells) - 1
		}
	}
	return total
}
