// Package store keeps a history of planning runs in a SQL database.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

// PlanRun is one planning request and its outcome.
type PlanRun struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	Mode      string    `gorm:"size:32;index" json:"mode"`
	Strategy  string    `gorm:"size:16" json:"strategy"`
	Scenario  string    `gorm:"size:128" json:"scenario,omitempty"`

	Agents  int `json:"agents"`
	Targets int `json:"targets"`

	Success    bool    `json:"success"`
	Error      string  `gorm:"type:text" json:"error,omitempty"`
	Makespan   int     `json:"makespan"`
	SumOfCosts int     `json:"sum_of_costs"`
	WaitSteps  int     `json:"wait_steps"`
	Residual   int     `json:"residual"`
	DurationMs float64 `json:"duration_ms"`

	PlanJSON string `gorm:"type:text" json:"-"` // marshalled core.FleetPlan
}

// NewRun records the outcome of a planning call. plan may be nil when err
// is set.
func NewRun(mode, strategy string, agents, targets int, plan *core.FleetPlan, err error, took time.Duration) PlanRun {
	run := PlanRun{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		Mode:       mode,
		Strategy:   strategy,
		Agents:     agents,
		Targets:    targets,
		Success:    err == nil && plan != nil,
		DurationMs: float64(took.Microseconds()) / 1000,
	}
	if err != nil {
		run.Error = err.Error()
	}
	if plan != nil {
		run.Makespan = plan.ComputeMakespan()
		run.SumOfCosts = plan.SumOfCosts()
		run.Residual = len(plan.Residual)
		for _, p := range plan.Plans {
			run.WaitSteps += p.Waits()
		}
		if data, jerr := json.Marshal(plan); jerr == nil {
			run.PlanJSON = string(data)
		}
	}
	return run
}

// Plan decodes the stored plan, or returns nil for failed runs.
func (r *PlanRun) Plan() (*core.FleetPlan, error) {
	if r.PlanJSON == "" {
		return nil, nil
	}
	var fp core.FleetPlan
	if err := json.Unmarshal([]byte(r.PlanJSON), &fp); err != nil {
		return nil, errors.Wrapf(err, "decoding plan of run %s", r.ID)
	}
	return &fp, nil
}

// Store wraps the database.
type Store struct {
	db *gorm.DB
}

// Open connects to a "sqlite" or "mysql" database and migrates the schema.
func Open(dialect, dsn string) (*Store, error) {
	var d gorm.Dialector
	switch dialect {
	case "sqlite", "":
		d = sqlite.Open(dsn)
	case "mysql":
		d = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", dialect)
	}

	db, err := gorm.Open(d, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s database", dialect)
	}
	if dialect != "mysql" {
		// sqlite allows one writer at a time
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	if err := db.AutoMigrate(&PlanRun{}); err != nil {
		return nil, errors.Wrap(err, "migrating plan_runs")
	}
	return &Store{db: db}, nil
}

// DB returns the gorm handle.
func (s *Store) DB() *gorm.DB { return s.db }

// Close closes the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save inserts runs in batches.
func (s *Store) Save(runs ...PlanRun) error {
	if len(runs) == 0 {
		return nil
	}
	return errors.Wrap(s.db.CreateInBatches(runs, 100).Error, "saving plan runs")
}

// Get returns one run by ID.
func (s *Store) Get(id string) (*PlanRun, error) {
	var run PlanRun
	if err := s.db.First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// Recent returns the latest runs, newest first.
func (s *Store) Recent(limit int) ([]PlanRun, error) {
	var runs []PlanRun
	err := s.db.Order("created_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// ByMode returns the latest runs of one mode, newest first.
func (s *Store) ByMode(mode string, limit int) ([]PlanRun, error) {
	var runs []PlanRun
	err := s.db.Where("mode = ?", mode).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

// Stats aggregates runs since a point in time.
type Stats struct {
	Total         int64            `json:"total"`
	Succeeded     int64            `json:"succeeded"`
	ByMode        map[string]int64 `json:"by_mode"`
	AvgMakespan   float64          `json:"avg_makespan"`
	AvgDurationMs float64          `json:"avg_duration_ms"`
	AvgResidual   float64          `json:"avg_residual"`
}

// Stats returns aggregates over runs created at or after since.
func (s *Store) Stats(since time.Time) (*Stats, error) {
	st := &Stats{ByMode: make(map[string]int64)}
	q := func() *gorm.DB { return s.db.Model(&PlanRun{}).Where("created_at >= ?", since) }

	if err := q().Count(&st.Total).Error; err != nil {
		return nil, err
	}
	if err := q().Where("success = ?", true).Count(&st.Succeeded).Error; err != nil {
		return nil, err
	}

	var modeCounts []struct {
		Mode  string
		Count int64
	}
	if err := q().Select("mode, COUNT(*) as count").Group("mode").Scan(&modeCounts).Error; err != nil {
		return nil, err
	}
	for _, mc := range modeCounts {
		st.ByMode[mc.Mode] = mc.Count
	}

	var avg struct {
		AvgMakespan   float64
		AvgDurationMs float64
		AvgResidual   float64
	}
	err := q().Where("success = ?", true).
		Select("COALESCE(AVG(makespan), 0) as avg_makespan, COALESCE(AVG(duration_ms), 0) as avg_duration_ms, COALESCE(AVG(residual), 0) as avg_residual").
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	st.AvgMakespan, st.AvgDurationMs, st.AvgResidual = avg.AvgMakespan, avg.AvgDurationMs, avg.AvgResidual
	return st, nil
}
