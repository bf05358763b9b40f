// Package sim plays back timed fleet plans step by step for the movement
// and rendering side, and collects plan metrics.
package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

// Config configures a playback run.
type Config struct {
	Plan *core.FleetPlan

	// StepDuration is the wall-clock time per step; zero runs as fast as
	// possible.
	StepDuration time.Duration

	Verbose bool
}

// Frame is the fleet state at one step.
type Frame struct {
	Step       int         `json:"step"`
	Positions  []core.Cell `json:"positions"`
	Arrived    []bool      `json:"arrived"`
	Collisions int         `json:"collisions"` // agent pairs sharing a cell
}

// Metrics summarizes a plan and its playback.
type Metrics struct {
	Agents            int `json:"agents"`
	Makespan          int `json:"makespan"`
	SumOfCosts        int `json:"sum_of_costs"`
	WaitSteps         int `json:"wait_steps"`
	ResidualConflicts int `json:"residual_conflicts"`

	// Pairs of agents seen on the same cell during playback. Agents that
	// finished stay parked on their last cell, so this can exceed the
	// residual count.
	ObservedCollisions int `json:"observed_collisions"`

	StepsPlayed int       `json:"steps_played"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// Summarize computes the static metrics of a plan.
func Summarize(fp *core.FleetPlan) Metrics {
	m := Metrics{
		Agents:            len(fp.Plans),
		Makespan:          fp.ComputeMakespan(),
		SumOfCosts:        fp.SumOfCosts(),
		ResidualConflicts: len(fp.Residual),
	}
	for _, p := range fp.Plans {
		m.WaitSteps += p.Waits()
	}
	return m
}

// FrameAt returns the fleet state at step t. Agents whose plan has ended
// stay on their last cell.
func FrameAt(fp *core.FleetPlan, t int) Frame {
	f := Frame{
		Step:      t,
		Positions: make([]core.Cell, len(fp.Plans)),
		Arrived:   make([]bool, len(fp.Plans)),
	}
	seen := make(map[core.Cell]int)
	for i, p := range fp.Plans {
		if len(p.Cells) == 0 {
			f.Positions[i] = p.Start
			f.Arrived[i] = true
		} else if t >= len(p.Cells)-1 {
			f.Positions[i] = p.Cells.Last()
			f.Arrived[i] = true
		} else {
			f.Positions[i] = p.Cells[max(t, 0)]
		}
		f.Collisions += seen[f.Positions[i]]
		seen[f.Positions[i]]++
	}
	return f
}

// Simulator steps through a fleet plan.
type Simulator struct {
	mu sync.Mutex

	config   Config
	playback *Playback
	frame    Frame
	metrics  Metrics
}

// NewSimulator creates a simulator positioned at step 0.
func NewSimulator(config Config) *Simulator {
	s := &Simulator{
		config:  config,
		metrics: Summarize(config.Plan),
	}
	s.playback = NewPlayback(s.metrics.Makespan)
	s.frame = FrameAt(config.Plan, 0)
	return s
}

// Run plays the plan from step 0 to the makespan, calling onFrame (if not
// nil) for every step including the first.
func (s *Simulator) Run(ctx context.Context, onFrame func(Frame)) (*Metrics, error) {
	s.mu.Lock()
	s.playback.Reset()
	s.playback.Play()
	s.metrics.StartTime = time.Now()
	s.metrics.ObservedCollisions = 0
	s.metrics.StepsPlayed = 0
	s.mu.Unlock()

	var tick <-chan time.Time
	if s.config.StepDuration > 0 {
		ticker := time.NewTicker(s.config.StepDuration)
		defer ticker.Stop()
		tick = ticker.C
	}

	s.emit(onFrame)
	for !s.done() {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.step()
		s.emit(onFrame)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.EndTime = time.Now()
	m := s.metrics
	return &m, nil
}

func (s *Simulator) done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playback.Done()
}

func (s *Simulator) step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playback.Advance()
	s.frame = FrameAt(s.config.Plan, s.playback.Step)
}

func (s *Simulator) emit(onFrame func(Frame)) {
	s.mu.Lock()
	f := s.frame
	s.metrics.StepsPlayed++
	s.metrics.ObservedCollisions += f.Collisions
	s.mu.Unlock()

	if s.config.Verbose && f.Collisions > 0 {
		fmt.Printf("step %d: %d agents share a cell\n", f.Step, f.Collisions)
	}
	if onFrame != nil {
		onFrame(f)
	}
}

// Frame returns the current frame.
func (s *Simulator) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Metrics returns current metrics.
func (s *Simulator) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// ExportMetrics writes metrics to a JSON file.
func (s *Simulator) ExportMetrics(path string) error {
	data, err := json.MarshalIndent(s.Metrics(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
