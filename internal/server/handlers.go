package server

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/fleet"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/scenario"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/sim"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/store"
)

// replayStep paces replayed frames.
const replayStep = 20 * time.Millisecond

func newRunID() string { return uuid.NewString() }

// PlanRequest is the body of both planning endpoints. Cells are [x, y]
// pairs and grid rows are indexed by y; 0 marks a wall.
type PlanRequest struct {
	Name     string          `json:"name,omitempty"`
	Grid     [][]int         `json:"grid"`
	Starts   []scenario.Pair `json:"starts"`
	Targets  []scenario.Pair `json:"targets"`
	Mode     string          `json:"mode,omitempty"`     // single endpoint: "one-to-one" (default) or "one-to-many"
	Strategy string          `json:"strategy,omitempty"` // "swarm" (default) or "exact"
	Seed     *int64          `json:"seed,omitempty"`
}

func (r *PlanRequest) instance() (*core.Instance, error) {
	sc := &scenario.Scenario{
		Name:    r.Name,
		Grid:    r.Grid,
		Starts:  r.Starts,
		Targets: r.Targets,
		Agents:  len(r.Starts),
	}
	return sc.Instance()
}

// PlanResponse is returned by both planning endpoints on success.
type PlanResponse struct {
	Success bool            `json:"success"`
	ID      string          `json:"id"`
	Mode    string          `json:"mode"`
	Plan    *core.FleetPlan `json:"plan"`
	Metrics sim.Metrics     `json:"metrics"`
}

func (s *Server) handlePlanSingle(c *fiber.Ctx) error {
	var req PlanRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}
	if req.Mode == "" {
		req.Mode = "one-to-one"
	}
	strategy, err := fleet.ParseStrategy(req.Strategy)
	if err != nil {
		return err
	}
	mode, err := s.cfg.SingleMode(req.Mode, strategy)
	if err != nil {
		return err
	}
	if m, ok := mode.(fleet.OneToMany); ok && req.Seed != nil {
		m.Seed = *req.Seed
		mode = m
	}
	if len(req.Starts) != 1 {
		return fmt.Errorf("%w: %s needs exactly one start, got %d", core.ErrInvalidRequest, mode.Name(), len(req.Starts))
	}
	return s.plan(c, &req, mode, strategy, "")
}

func (s *Server) handlePlanFleet(c *fiber.Ctx) error {
	var req PlanRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}
	strategy, err := fleet.ParseStrategy(req.Strategy)
	if err != nil {
		return err
	}
	mode := s.cfg.FleetMode(strategy)
	if req.Seed != nil {
		mode.Seed = *req.Seed
	}
	runID := newRunID()
	mode.Observer = newProgressObserver(s.hub, runID)
	return s.plan(c, &req, mode, strategy, runID)
}

// plan runs mode on the request, records the run and broadcasts the result.
func (s *Server) plan(c *fiber.Ctx, req *PlanRequest, mode fleet.Mode, strategy fleet.Strategy, runID string) error {
	inst, err := req.instance()
	if err != nil {
		return err
	}

	started := time.Now()
	fp, err := s.planner.Plan(c.UserContext(), inst, mode)
	run := store.NewRun(mode.Name(), strategy.String(), len(inst.Starts), len(inst.Targets), fp, err, time.Since(started))
	if runID != "" {
		run.ID = runID
	}
	run.Scenario = req.Name
	s.rec.Add(run)

	if err != nil {
		s.log.Printf("run %s (%s) failed: %v", run.ID, mode.Name(), err)
		s.hub.Broadcast(NewMessage(MessageTypeError, run.ID, err.Error()))
		return c.Status(statusOf(err)).JSON(fiber.Map{
			"success": false,
			"id":      run.ID,
			"error":   err.Error(),
		})
	}

	s.hub.Broadcast(NewMessage(MessageTypePlan, run.ID, fp))
	return c.JSON(PlanResponse{
		Success: true,
		ID:      run.ID,
		Mode:    mode.Name(),
		Plan:    fp,
		Metrics: sim.Summarize(fp),
	})
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func (s *Server) handleRecentRuns(c *fiber.Ctx) error {
	limit := queryInt(c, "limit", 50)

	var (
		runs []store.PlanRun
		err  error
	)
	if mode := c.Query("mode"); mode != "" {
		runs, err = s.store.ByMode(mode, limit)
	} else {
		runs, err = s.store.Recent(limit)
	}
	if err != nil {
		return errors.Wrap(err, "fetching runs")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(runs),
		"runs":    runs,
	})
}

func (s *Server) handleRunStats(c *fiber.Ctx) error {
	hours := queryInt(c, "hours", 24)
	st, err := s.store.Stats(time.Now().Add(-time.Duration(hours) * time.Hour))
	if err != nil {
		return errors.Wrap(err, "computing run stats")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"hours":   hours,
		"stats":   st,
	})
}

func (s *Server) handleGetRun(c *fiber.Ctx) error {
	run, err := s.store.Get(c.Params("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "run not found")
	}
	if err != nil {
		return errors.Wrap(err, "fetching run")
	}
	fp, err := run.Plan()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"run":     run,
		"plan":    fp,
	})
}

// handleStream registers a websocket listener. Listeners receive every
// plan, progress and error message, and may ask for a stored run to be
// replayed frame by frame.
func (s *Server) handleStream(conn *websocket.Conn) {
	client := NewClient(conn)
	s.hub.Register(client)
	defer s.hub.Unregister(client)

	client.enqueue(NewMessage(MessageTypeSystem, "", fiber.Map{
		"message":      "connected",
		"connected_at": time.Now().Format(time.RFC3339),
	}))

	go s.readCommands(client)
	client.writeLoop()
}

func (s *Server) readCommands(client *Client) {
	defer s.hub.Unregister(client)
	for {
		var msg Message
		if err := client.conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type == MessageTypeReplay {
			s.replay(client, msg.ID)
		}
	}
}

// replay queues every frame of a stored run for one client.
func (s *Server) replay(client *Client, id string) {
	run, err := s.store.Get(id)
	if err != nil {
		client.enqueue(NewMessage(MessageTypeError, id, "run not found"))
		return
	}
	fp, err := run.Plan()
	if err != nil || fp == nil {
		client.enqueue(NewMessage(MessageTypeError, id, "run has no plan"))
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sm := sim.NewSimulator(sim.Config{Plan: fp, StepDuration: replayStep})
	_, err = sm.Run(ctx, func(f sim.Frame) {
		if !client.enqueue(NewMessage(MessageTypeFrame, id, f)) {
			cancel()
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.Printf("replay of %s stopped: %v", id, err)
	}
}
