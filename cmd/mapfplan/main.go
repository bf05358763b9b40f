// Command mapfplan plans a scenario from the command line and prints the
// routes, optionally playing them back on the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/algo"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/config"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/fleet"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/scenario"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/sim"
)

func main() {
	scenarioFile := flag.String("scenario", "", "Scenario JSON file (overrides -builtin)")
	builtin := flag.String("builtin", "fleet", "Built-in scenario: "+strings.Join(scenario.BuiltinNames(), ", "))
	modeName := flag.String("mode", "", "one-to-one, one-to-many or many-to-many (default: by agent and target count)")
	strategyName := flag.String("strategy", "swarm", "Route strategy: swarm or exact")
	seed := flag.Int64("seed", 0, "Random seed (0 = PLANNER_SEED)")
	repair := flag.String("repair", "", "Conflict repair: single or stable (default: PLANNER_REPAIR)")
	timeout := flag.Duration("timeout", time.Minute, "Planning timeout")
	verbose := flag.Bool("v", false, "Log search progress")
	play := flag.Duration("play", 0, "Play the plan back with this delay per step")
	metricsFile := flag.String("metrics", "", "Write playback metrics to this JSON file")
	envFile := flag.String("env", ".env", "Settings file")
	flag.Parse()

	log.SetFlags(0)
	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal(err)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *repair != "" {
		if cfg.Repair, err = algo.ParseRepairMode(*repair); err != nil {
			log.Fatal(err)
		}
	}

	sc, err := loadScenario(*scenarioFile, *builtin)
	if err != nil {
		log.Fatal(err)
	}
	inst, err := sc.Instance()
	if err != nil {
		log.Fatal(err)
	}

	strategy, err := fleet.ParseStrategy(*strategyName)
	if err != nil {
		log.Fatal(err)
	}
	if *modeName == "" {
		*modeName = defaultMode(inst)
	}
	mode, err := cfg.Mode(*modeName, strategy)
	if err != nil {
		log.Fatal(err)
	}
	if *verbose {
		mode = withObserver(mode, algo.NewLogObserver(log.New(os.Stderr, "[search] ", 0)))
	}

	fmt.Printf("=== %s: %dx%d grid, %d agents, %d targets ===\n",
		sc.Name, inst.Grid.Width, inst.Grid.Height, len(inst.Starts), len(inst.Targets))
	fmt.Printf("Mode: %s (%s), seed %d\n", mode.Name(), strategy, cfg.Seed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	var plannerLog *log.Logger
	if !*verbose {
		plannerLog = log.New(io.Discard, "", 0)
	}
	start := time.Now()
	fp, err := fleet.New(plannerLog).Plan(ctx, inst, mode)
	elapsed := time.Since(start)
	if err != nil {
		log.Fatalf("planning failed after %v: %v", elapsed.Round(time.Millisecond), err)
	}

	printPlan(fp)
	m := sim.Summarize(fp)
	fmt.Printf("\nMakespan=%d SumOfCosts=%d Waits=%d Residual=%d Time=%v\n",
		m.Makespan, m.SumOfCosts, m.WaitSteps, m.ResidualConflicts, elapsed.Round(time.Microsecond))

	if *play > 0 || *metricsFile != "" {
		sm := sim.NewSimulator(sim.Config{Plan: fp, StepDuration: *play})
		var onFrame func(sim.Frame)
		if *play > 0 {
			onFrame = func(f sim.Frame) {
				fmt.Printf("\nstep %d/%d\n%s", f.Step, fp.Makespan, sim.Render(inst.Grid, f))
			}
		}
		pm, err := sm.Run(ctx, onFrame)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\nPlayed %d steps, %d shared-cell observations\n", pm.StepsPlayed, pm.ObservedCollisions)
		if *metricsFile != "" {
			if err := sm.ExportMetrics(*metricsFile); err != nil {
				log.Fatal(err)
			}
			fmt.Printf("Metrics written to: %s\n", *metricsFile)
		}
	}
}

func loadScenario(file, builtin string) (*scenario.Scenario, error) {
	if file != "" {
		sc, err := scenario.Load(file)
		if err != nil {
			return nil, err
		}
		if sc.Name == "" {
			sc.Name = file
		}
		return sc, nil
	}
	return scenario.Builtin(builtin)
}

// defaultMode picks the mode matching the instance shape.
func defaultMode(inst *core.Instance) string {
	switch {
	case len(inst.Starts) > 1:
		return "many-to-many"
	case len(inst.Targets) > 1:
		return "one-to-many"
	}
	return "one-to-one"
}

func withObserver(mode fleet.Mode, o algo.Observer) fleet.Mode {
	switch m := mode.(type) {
	case fleet.OneToMany:
		m.Search.Observer = o
		return m
	case fleet.ManyToMany:
		m.Observer = o
		return m
	}
	return mode
}

func printPlan(fp *core.FleetPlan) {
	for i, p := range fp.Plans {
		fmt.Printf("\n  Agent %d: start %v, %d targets, %d steps (%d waits)\n",
			i, p.Start, len(p.Targets), len(p.Cells)-1, p.Waits())
		fmt.Printf("    targets: %v\n", p.Targets)
		fmt.Printf("    path:    %v\n", p.Cells)
	}
	for _, c := range fp.Residual {
		fmt.Printf("  residual %s conflict: agents %d/%d at %v, step %d\n", c.Kind, c.Agent1, c.Agent2, c.Cell, c.Step)
	}
}
