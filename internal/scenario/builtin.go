package scenario

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

func openGrid(w, h int) [][]int {
	rows := make([][]int, h)
	for y := range rows {
		rows[y] = make([]int, w)
		for x := range rows[y] {
			rows[y][x] = 1
		}
	}
	return rows
}

var builtins = map[string]func() *Scenario{
	// One agent, one table in an empty room.
	"open": func() *Scenario {
		return &Scenario{
			Name:    "open",
			Grid:    openGrid(10, 10),
			Starts:  []Pair{{0, 0}},
			Targets: []Pair{{5, 5}},
		}
	},
	// Three tables behind a wall with one gap.
	"wall": func() *Scenario {
		g := openGrid(7, 5)
		for y := range g {
			if y != 2 {
				g[y][3] = 0
			}
		}
		return &Scenario{
			Name:    "wall",
			Grid:    g,
			Starts:  []Pair{{0, 0}},
			Targets: []Pair{{5, 0}, {5, 4}, {6, 2}},
		}
	},
	// Two agents in opposite corners, six tables in two groups.
	"fleet": func() *Scenario {
		return &Scenario{
			Name:    "fleet",
			Grid:    openGrid(10, 10),
			Starts:  []Pair{{0, 0}, {9, 9}},
			Targets: []Pair{{2, 2}, {2, 4}, {4, 2}, {7, 7}, {7, 9}, {9, 7}},
		}
	},
	// Two agents whose routes cross in the middle of a corridor.
	"cross": func() *Scenario {
		g := openGrid(5, 5)
		for y := range g {
			for x := range g[y] {
				if x != 2 && y != 2 {
					g[y][x] = 0
				}
			}
		}
		return &Scenario{
			Name:    "cross",
			Grid:    g,
			Starts:  []Pair{{0, 2}, {2, 0}},
			Targets: []Pair{{4, 2}, {2, 4}},
		}
	},
}

// Builtin returns a named demo scenario.
func Builtin(name string) (*Scenario, error) {
	f, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown scenario %q", core.ErrInvalidRequest, name)
	}
	s := f()
	s.normalize()
	return s, nil
}

// BuiltinNames lists the demo scenarios.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GenerateConfig parameterizes Generate.
type GenerateConfig struct {
	Width, Height int
	Agents        int
	Targets       int
	ObstacleRatio float64 // fraction of cells turned into walls
}

// Generate builds a random scenario. Starts and targets are placed on
// distinct free cells, and every target keeps at least one free neighbour.
func Generate(name string, cfg GenerateConfig, rng *rand.Rand) (*Scenario, error) {
	total := cfg.Width * cfg.Height
	if cfg.Width < 1 || cfg.Height < 1 || cfg.Agents < 1 || cfg.Targets < 1 {
		return nil, fmt.Errorf("%w: bad generator size", core.ErrInvalidRequest)
	}
	if cfg.Agents+cfg.Targets > total {
		return nil, fmt.Errorf("%w: %d agents and %d targets do not fit %dx%d", core.ErrInvalidRequest, cfg.Agents, cfg.Targets, cfg.Width, cfg.Height)
	}

	g := openGrid(cfg.Width, cfg.Height)
	cells := rng.Perm(total)
	at := func(i int) core.Cell { return core.Cell{X: cells[i] % cfg.Width, Y: cells[i] / cfg.Width} }

	s := &Scenario{Name: name, Grid: g, Agents: cfg.Agents}
	used := make(map[core.Cell]bool)
	i := 0
	for ; i < cfg.Agents; i++ {
		c := at(i)
		s.Starts = append(s.Starts, PairOf(c))
		used[c] = true
	}
	for ; len(s.Targets) < cfg.Targets && i < total; i++ {
		c := at(i)
		s.Targets = append(s.Targets, PairOf(c))
		used[c] = true
	}

	walls := int(float64(total) * cfg.ObstacleRatio)
	for ; walls > 0 && i < total; i++ {
		c := at(i)
		g[c.Y][c.X] = 0
		if !s.keepsHelpers(c, used) {
			g[c.Y][c.X] = 1
			continue
		}
		walls--
	}
	s.normalize()
	return s, nil
}

// keepsHelpers reports whether every target next to a new wall at c still
// has a free, non-target neighbour.
func (s *Scenario) keepsHelpers(c core.Cell, used map[core.Cell]bool) bool {
	targets := make(map[core.Cell]bool, len(s.Targets))
	for _, t := range s.Targets {
		targets[t.Cell()] = true
	}
	for _, n := range c.Neighbors4() {
		if !targets[n] {
			continue
		}
		free := 0
		for _, h := range n.Neighbors4() {
			if h.Y < 0 || h.Y >= len(s.Grid) || h.X < 0 || h.X >= len(s.Grid[0]) {
				continue
			}
			if s.Grid[h.Y][h.X] != 0 && !targets[h] {
				free++
			}
		}
		if free == 0 {
			return false
		}
	}
	return !used[c]
}
