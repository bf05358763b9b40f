// Package config loads planner service settings from the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/algo"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/fleet"
)

// Config holds the service settings.
type Config struct {
	Addr        string
	DBDialect   string // "sqlite" or "mysql"
	DBDSN       string
	CORSOrigins string

	Seed           int64
	MinWaypoints   int
	MaxWaypoints   int
	SwarmSize      int
	ScaleSwarm     bool
	Iterations     int
	Bats           int
	BatIterations  int
	Parallelism    int
	Repair         algo.RepairMode
	LogFlushSize   int
	LogFlushPeriod time.Duration
}

// Default returns the built-in settings.
func Default() Config {
	s := algo.DefaultSearchConfig()
	c := algo.DefaultClusterConfig(1)
	return Config{
		Addr:           ":3000",
		DBDialect:      "sqlite",
		DBDSN:          "planner.db",
		CORSOrigins:    "http://localhost:5173, http://localhost:3000",
		Seed:           1,
		MinWaypoints:   s.MinWaypoints,
		MaxWaypoints:   s.MaxWaypoints,
		SwarmSize:      s.SwarmSize,
		Iterations:     s.Iterations,
		Bats:           c.Bats,
		BatIterations:  c.Iterations,
		Repair:         algo.RepairSinglePass,
		LogFlushSize:   50,
		LogFlushPeriod: 10 * time.Second,
	}
}

// Load reads .env files (missing files are fine) and then the
// environment, falling back to Default for unset variables.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Printf(".env not loaded: %v", err)
	}
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() (Config, error) {
	c := Default()
	var errs []string
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s=%q is not an integer", key, v))
				return
			}
			*dst = n
		}
	}

	str("PLANNER_ADDR", &c.Addr)
	str("PLANNER_DB_DIALECT", &c.DBDialect)
	str("PLANNER_DB_DSN", &c.DBDSN)
	str("PLANNER_CORS_ORIGINS", &c.CORSOrigins)
	num("PLANNER_MIN_WAYPOINTS", &c.MinWaypoints)
	num("PLANNER_MAX_WAYPOINTS", &c.MaxWaypoints)
	num("PLANNER_SWARM_SIZE", &c.SwarmSize)
	num("PLANNER_ITERATIONS", &c.Iterations)
	num("PLANNER_BATS", &c.Bats)
	num("PLANNER_BAT_ITERATIONS", &c.BatIterations)
	num("PLANNER_PARALLELISM", &c.Parallelism)
	num("PLANNER_LOG_FLUSH_SIZE", &c.LogFlushSize)

	if v := os.Getenv("PLANNER_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("PLANNER_SEED=%q is not an integer", v))
		} else {
			c.Seed = n
		}
	}
	if v := os.Getenv("PLANNER_SCALE_SWARM"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("PLANNER_SCALE_SWARM=%q is not a boolean", v))
		} else {
			c.ScaleSwarm = b
		}
	}
	if v := os.Getenv("PLANNER_REPAIR"); v != "" {
		m, err := algo.ParseRepairMode(v)
		if err != nil {
			errs = append(errs, err.Error())
		} else {
			c.Repair = m
		}
	}
	if v := os.Getenv("PLANNER_LOG_FLUSH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("PLANNER_LOG_FLUSH_INTERVAL=%q is not a duration", v))
		} else {
			c.LogFlushPeriod = d
		}
	}

	c.DBDialect = strings.ToLower(c.DBDialect)
	if c.DBDialect != "sqlite" && c.DBDialect != "mysql" {
		errs = append(errs, fmt.Sprintf("PLANNER_DB_DIALECT=%q must be sqlite or mysql", c.DBDialect))
	}
	if err := c.Search().Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return c, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return c, nil
}

// Search returns the swarm search settings.
func (c Config) Search() algo.SearchConfig {
	s := algo.DefaultSearchConfig()
	s.MinWaypoints = c.MinWaypoints
	s.MaxWaypoints = c.MaxWaypoints
	s.SwarmSize = c.SwarmSize
	s.ScaleSwarm = c.ScaleSwarm
	s.Iterations = c.Iterations
	return s
}

// Cluster returns the clustering settings for k agents.
func (c Config) Cluster(k int) algo.ClusterConfig {
	cc := algo.DefaultClusterConfig(k)
	cc.Bats = c.Bats
	cc.Iterations = c.BatIterations
	return cc
}

// FleetMode returns the many-to-many mode built from the settings.
func (c Config) FleetMode(strategy fleet.Strategy) fleet.ManyToMany {
	return fleet.ManyToMany{
		Strategy:    strategy,
		Cluster:     c.Cluster(0),
		Search:      c.Search(),
		Seed:        c.Seed,
		Parallelism: c.Parallelism,
		Repair:      c.Repair,
	}
}

// SingleMode returns the one-agent mode for name ("one-to-one" or
// "one-to-many").
func (c Config) SingleMode(name string, strategy fleet.Strategy) (fleet.SingleMode, error) {
	m, err := fleet.ParseMode(name, strategy)
	if err != nil {
		return nil, err
	}
	switch m := m.(type) {
	case fleet.OneToOne:
		return m, nil
	case fleet.OneToMany:
		m.Search = c.Search()
		m.Seed = c.Seed
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s is not a single-agent mode", core.ErrInvalidRequest, name)
}

// Mode returns any planning mode built from the settings.
func (c Config) Mode(name string, strategy fleet.Strategy) (fleet.Mode, error) {
	m, err := fleet.ParseMode(name, strategy)
	if err != nil {
		return nil, err
	}
	if _, ok := m.(fleet.ManyToMany); ok {
		return c.FleetMode(strategy), nil
	}
	return c.SingleMode(name, strategy)
}
