// Package main generates random planning scenarios for benchmarks.
// The same seed and parameters always produce the same scenario.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/scenario"
)

// InstanceParams defines parameters for scenario generation.
type InstanceParams struct {
	Seed          int64
	NumAgents     int
	GridWidth     int
	GridHeight    int
	TargetCount   int
	ObstacleRatio float64
}

func (p InstanceParams) name() string {
	return fmt.Sprintf("grid_%d_%dx%d_%d_%d", p.NumAgents, p.GridWidth, p.GridHeight, p.TargetCount, p.Seed)
}

func generateInstance(params InstanceParams) (*scenario.Scenario, error) {
	rng := rand.New(rand.NewSource(params.Seed))
	return scenario.Generate(params.name(), scenario.GenerateConfig{
		Width:         params.GridWidth,
		Height:        params.GridHeight,
		Agents:        params.NumAgents,
		Targets:       params.TargetCount,
		ObstacleRatio: params.ObstacleRatio,
	}, rng)
}

func main() {
	seed := flag.Int64("seed", 42, "Random seed for deterministic generation")
	numAgents := flag.Int("agents", 3, "Number of agents")
	gridWidth := flag.Int("width", 10, "Grid width")
	gridHeight := flag.Int("height", 10, "Grid height")
	targetCount := flag.Int("targets", 6, "Number of targets")
	obstacles := flag.Float64("obstacles", 0.15, "Fraction of cells turned into walls (0-1)")
	outputDir := flag.String("output", "testdata", "Output directory")
	scalingMode := flag.Bool("scaling", false, "Generate scaling scenarios (1, 2, 4, 8, 16 agents)")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	var params []InstanceParams
	if *scalingMode {
		for _, size := range []int{1, 2, 4, 8, 16} {
			// Grid side grows with the square root of the agent count
			gridSize := int(math.Ceil(math.Sqrt(float64(size)) * 6))
			if gridSize < 8 {
				gridSize = 8
			}
			params = append(params, InstanceParams{
				Seed:          *seed,
				NumAgents:     size,
				GridWidth:     gridSize,
				GridHeight:    gridSize,
				TargetCount:   size * 3,
				ObstacleRatio: *obstacles,
			})
		}
	} else {
		params = append(params, InstanceParams{
			Seed:          *seed,
			NumAgents:     *numAgents,
			GridWidth:     *gridWidth,
			GridHeight:    *gridHeight,
			TargetCount:   *targetCount,
			ObstacleRatio: *obstacles,
		})
	}

	for _, p := range params {
		sc, err := generateInstance(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating %s: %v\n", p.name(), err)
			continue
		}
		filename := filepath.Join(*outputDir, sc.Name+".json")
		if err := sc.Save(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", filename, err)
			continue
		}
		fmt.Printf("Generated: %s (%d agents, %d targets, %dx%d grid)\n",
			filename, p.NumAgents, p.TargetCount, p.GridWidth, p.GridHeight)
	}
}
