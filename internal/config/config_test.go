package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/algo"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/fleet"
)

func TestFromEnv_Defaults(t *testing.T) {
	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, algo.DefaultSearchConfig().MaxWaypoints, c.Search().MaxWaypoints)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PLANNER_ADDR", ":8080")
	t.Setenv("PLANNER_DB_DIALECT", "MySQL")
	t.Setenv("PLANNER_SEED", "99")
	t.Setenv("PLANNER_MAX_WAYPOINTS", "9")
	t.Setenv("PLANNER_REPAIR", "stable")
	t.Setenv("PLANNER_LOG_FLUSH_INTERVAL", "3s")
	t.Setenv("PLANNER_PARALLELISM", "4")
	t.Setenv("PLANNER_SCALE_SWARM", "true")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "mysql", c.DBDialect)
	assert.Equal(t, int64(99), c.Seed)
	assert.Equal(t, 9, c.Search().MaxWaypoints)
	assert.Equal(t, algo.RepairUntilStable, c.Repair)
	assert.Equal(t, 3*time.Second, c.LogFlushPeriod)
	assert.True(t, c.Search().ScaleSwarm)

	m := c.FleetMode(fleet.Exact)
	assert.Equal(t, 4, m.Parallelism)
	assert.Equal(t, int64(99), m.Seed)
	assert.Equal(t, algo.RepairUntilStable, m.Repair)
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Setenv("PLANNER_SWARM_SIZE", "many")
	t.Setenv("PLANNER_DB_DIALECT", "postgres")
	t.Setenv("PLANNER_REPAIR", "sometimes")
	t.Setenv("PLANNER_SCALE_SWARM", "maybe")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PLANNER_SWARM_SIZE")
	assert.Contains(t, err.Error(), "PLANNER_DB_DIALECT")
	assert.Contains(t, err.Error(), "sometimes")
	assert.Contains(t, err.Error(), "PLANNER_SCALE_SWARM")
}

func TestFromEnv_WaypointRange(t *testing.T) {
	t.Setenv("PLANNER_MIN_WAYPOINTS", "6")
	t.Setenv("PLANNER_MAX_WAYPOINTS", "3")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PLANNER_BATS=7\n"), 0o644))
	t.Setenv("PLANNER_BATS", "")
	os.Unsetenv("PLANNER_BATS")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Bats)
	assert.Equal(t, 7, c.Cluster(3).Bats)
	assert.Equal(t, 3, c.Cluster(3).K)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestMode(t *testing.T) {
	c := Default()

	m, err := c.Mode("one-to-many", fleet.Swarm)
	require.NoError(t, err)
	otm, ok := m.(fleet.OneToMany)
	require.True(t, ok)
	assert.Equal(t, c.Seed, otm.Seed)
	assert.Equal(t, c.SwarmSize, otm.Search.SwarmSize)

	m, err = c.Mode("many-to-many", fleet.Swarm)
	require.NoError(t, err)
	assert.IsType(t, fleet.ManyToMany{}, m)

	_, err = c.SingleMode("many-to-many", fleet.Swarm)
	assert.Error(t, err)
}
