package fleet

import (
	"fmt"
	"strings"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/algo"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

// Mode is a planning mode: OneToOne, OneToMany or ManyToMany.
// The set is closed.
type Mode interface {
	Name() string
	mode()
}

// SingleMode is a Mode that plans for one agent.
type SingleMode interface {
	Mode
	single()
}

// Strategy selects how a single agent's route is built.
type Strategy int

const (
	// Swarm runs the particle swarm waypoint search.
	Swarm Strategy = iota
	// Exact chains single-pair grid searches, nearest helper first.
	Exact
)

func (s Strategy) String() string {
	switch s {
	case Swarm:
		return "swarm"
	case Exact:
		return "exact"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy parses "swarm" or "exact".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "", "swarm", "pso":
		return Swarm, nil
	case "exact", "astar":
		return Exact, nil
	}
	return 0, fmt.Errorf("%w: unknown strategy %q", core.ErrInvalidRequest, s)
}

// OneToOne routes one agent to one target with an exact grid search.
type OneToOne struct {
	Finder algo.Finder // nil means A*
}

// OneToMany routes one agent past several targets.
type OneToMany struct {
	Strategy Strategy
	Search   algo.SearchConfig // Swarm only; zero value means defaults
	Seed     int64
	Finder   algo.Finder // Exact only; nil means A*
}

// ManyToMany clusters the targets, assigns one cluster per agent, plans
// every agent and repairs the timing conflicts.
type ManyToMany struct {
	Strategy    Strategy
	Cluster     algo.ClusterConfig // K is set to the agent count
	Search      algo.SearchConfig
	Seed        int64
	Parallelism int // concurrent agent searches; <= 0 means GOMAXPROCS
	Repair      algo.RepairMode
	Finder      algo.Finder
	Observer    algo.Observer
}

func (OneToOne) Name() string   { return "one-to-one" }
func (OneToMany) Name() string  { return "one-to-many" }
func (ManyToMany) Name() string { return "many-to-many" }

func (OneToOne) mode()   {}
func (OneToMany) mode()  {}
func (ManyToMany) mode() {}

func (OneToOne) single()  {}
func (OneToMany) single() {}

// ParseMode maps a mode name to a Mode with default parameters.
func ParseMode(name string, strategy Strategy) (Mode, error) {
	switch strings.ToLower(name) {
	case "one-to-one", "single":
		return OneToOne{}, nil
	case "one-to-many", "multi":
		return OneToMany{Strategy: strategy}, nil
	case "many-to-many", "fleet":
		return ManyToMany{Strategy: strategy}, nil
	}
	return nil, fmt.Errorf("%w: unknown mode %q", core.ErrInvalidRequest, name)
}

func finderOrDefault(f algo.Finder) algo.Finder {
	if f == nil {
		return algo.NewAStar()
	}
	return f
}

func searchOrDefault(c algo.SearchConfig) algo.SearchConfig {
	if c.SwarmSize == 0 && c.MaxWaypoints == 0 {
		obs, agent := c.Observer, c.Agent
		c = algo.DefaultSearchConfig()
		c.Observer, c.Agent = obs, agent
	}
	return c
}

func clusterOrDefault(c algo.ClusterConfig, k int) algo.ClusterConfig {
	if c.Bats == 0 && c.Iterations == 0 {
		obs := c.Observer
		c = algo.DefaultClusterConfig(k)
		c.Observer = obs
	}
	c.K = k
	return c
}
