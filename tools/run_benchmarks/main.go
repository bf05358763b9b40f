// Package main runs the planning modes over scenario files and collects
// metrics.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/config"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/fleet"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/scenario"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/sim"
)

// BenchmarkResult stores results from a single planning run.
type BenchmarkResult struct {
	Timestamp  string
	CommitHash string
	GoVersion  string
	OS         string
	Arch       string
	Instance   string
	NumAgents  int
	NumTargets int
	GridSize   string
	Planner    string
	RuntimeMs  float64
	Success    bool
	Error      string
	Makespan   int
	SumOfCosts int
	WaitSteps  int
	Residual   int
}

// PlannerMetrics holds per-planner aggregated metrics.
type PlannerMetrics struct {
	Name           string
	TotalRuns      int
	Successes      int
	TotalRuntimeMs float64
	TotalMakespan  float64
	TotalResidual  int
}

// planners are "strategy" names; the mode follows from the scenario.
var planners = []string{"swarm", "exact"}

func getGitCommit() string {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(output))
}

// modeFor picks the planning mode for a scenario's shape.
func modeFor(cfg config.Config, inst *core.Instance, strategy fleet.Strategy) (fleet.Mode, error) {
	name := "one-to-many"
	if len(inst.Starts) > 1 {
		name = "many-to-many"
	} else if len(inst.Targets) == 1 {
		name = "one-to-one"
	}
	return cfg.Mode(name, strategy)
}

func plan(p *fleet.Planner, cfg config.Config, sc *scenario.Scenario, strategyName string, timeout time.Duration) (*core.FleetPlan, string, time.Duration, error) {
	inst, err := sc.Instance()
	if err != nil {
		return nil, "", 0, err
	}
	strategy, err := fleet.ParseStrategy(strategyName)
	if err != nil {
		return nil, "", 0, err
	}
	mode, err := modeFor(cfg, inst, strategy)
	if err != nil {
		return nil, "", 0, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	fp, err := p.Plan(ctx, inst, mode)
	return fp, mode.Name() + "/" + strategy.String(), time.Since(start), err
}

// runPlanner plans one scenario with one strategy.
func runPlanner(p *fleet.Planner, cfg config.Config, sc *scenario.Scenario, strategyName string, timeout time.Duration) *BenchmarkResult {
	result := &BenchmarkResult{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		CommitHash: getGitCommit(),
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		Instance:   sc.Name,
		NumAgents:  len(sc.Starts),
		NumTargets: len(sc.Targets),
		Planner:    strategyName,
	}
	if len(sc.Grid) > 0 {
		result.GridSize = fmt.Sprintf("%dx%d", len(sc.Grid[0]), len(sc.Grid))
	}

	fp, planner, took, err := plan(p, cfg, sc, strategyName, timeout)
	result.RuntimeMs = float64(took.Microseconds()) / 1000.0
	if planner != "" {
		result.Planner = planner
	}
	if err != nil {
		result.Error = err.Error()
		return result
	}
	m := sim.Summarize(fp)
	result.Success = true
	result.Makespan = m.Makespan
	result.SumOfCosts = m.SumOfCosts
	result.WaitSteps = m.WaitSteps
	result.Residual = m.ResidualConflicts
	return result
}

func writeCSV(results []*BenchmarkResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"timestamp", "commit_hash", "go_version", "os", "arch",
		"instance", "num_agents", "num_targets", "grid_size", "planner",
		"runtime_ms", "success", "makespan", "sum_of_costs", "wait_steps",
		"residual_conflicts", "error",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			r.Timestamp, r.CommitHash, r.GoVersion, r.OS, r.Arch,
			r.Instance, fmt.Sprintf("%d", r.NumAgents), fmt.Sprintf("%d", r.NumTargets),
			r.GridSize, r.Planner,
			fmt.Sprintf("%.3f", r.RuntimeMs), fmt.Sprintf("%t", r.Success),
			fmt.Sprintf("%d", r.Makespan), fmt.Sprintf("%d", r.SumOfCosts),
			fmt.Sprintf("%d", r.WaitSteps), fmt.Sprintf("%d", r.Residual), r.Error,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(results []*BenchmarkResult) {
	metrics := make(map[string]*PlannerMetrics)
	for _, r := range results {
		m, ok := metrics[r.Planner]
		if !ok {
			m = &PlannerMetrics{Name: r.Planner}
			metrics[r.Planner] = m
		}
		m.TotalRuns++
		if r.Success {
			m.Successes++
			m.TotalRuntimeMs += r.RuntimeMs
			m.TotalMakespan += float64(r.Makespan)
			m.TotalResidual += r.Residual
		}
	}

	fmt.Println("\n=== BENCHMARK SUMMARY ===")
	fmt.Printf("%-26s %6s %8s %12s %11s %9s\n",
		"Planner", "Runs", "Success", "Avg Time(ms)", "AvgMakespan", "Residual")
	fmt.Println(strings.Repeat("-", 77))

	var names []string
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := metrics[name]
		avgTime := 0.0
		avgMakespan := 0.0
		if m.Successes > 0 {
			avgTime = m.TotalRuntimeMs / float64(m.Successes)
			avgMakespan = m.TotalMakespan / float64(m.Successes)
		}
		fmt.Printf("%-26s %6d %8d %12.2f %11.2f %9d\n",
			m.Name, m.TotalRuns, m.Successes, avgTime, avgMakespan, m.TotalResidual)
	}
}

func main() {
	inputDir := flag.String("input", "testdata", "Directory containing scenario JSON files")
	outputFile := flag.String("output", "evidence/benchmark_results.csv", "Output CSV file")
	timeout := flag.Duration("timeout", 2*time.Minute, "Timeout per planning run")
	plannerFilter := flag.String("planner", "", "Run only these strategies (comma-separated)")
	agentFilter := flag.Int("agents", 0, "Run only scenarios with this many agents (0 = all)")
	seed := flag.Int64("seed", 0, "Random seed (0 = PLANNER_SEED)")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading settings: %v\n", err)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	outputDir := filepath.Dir(*outputFile)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	files, err := filepath.Glob(filepath.Join(*inputDir, "*.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding scenario files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No scenario files found in %s\n", *inputDir)
		fmt.Fprintf(os.Stderr, "Run gen_instances first: go run ./tools/gen_instances -scaling -output %s\n", *inputDir)
		os.Exit(1)
	}

	active := planners
	if *plannerFilter != "" {
		active = strings.Split(*plannerFilter, ",")
	}

	p := fleet.New(log.New(io.Discard, "", 0))
	var results []*BenchmarkResult
	totalRuns := len(files) * len(active)
	currentRun := 0

	fmt.Printf("Running benchmarks: %d scenarios x %d planners = %d runs\n", len(files), len(active), totalRuns)
	fmt.Printf("Timeout per run: %v\n\n", *timeout)

	for _, file := range files {
		sc, err := scenario.Load(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", file, err)
			continue
		}
		if sc.Name == "" {
			sc.Name = strings.TrimSuffix(filepath.Base(file), ".json")
		}
		if *agentFilter > 0 && len(sc.Starts) != *agentFilter {
			continue
		}

		for _, name := range active {
			currentRun++
			if *verbose {
				fmt.Printf("[%d/%d] %s / %s ... ", currentRun, totalRuns, sc.Name, name)
			} else {
				fmt.Printf("\r[%d/%d] Running...", currentRun, totalRuns)
			}

			result := runPlanner(p, cfg, sc, name, *timeout)
			results = append(results, result)

			if *verbose {
				if result.Success {
					fmt.Printf("OK (%.2fms, makespan=%d)\n", result.RuntimeMs, result.Makespan)
				} else {
					fmt.Printf("FAILED: %s\n", result.Error)
				}
			}
		}
	}
	fmt.Println()

	if err := writeCSV(results, *outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Results written to: %s\n", *outputFile)

	printSummary(results)
}
