package store

import (
	"errors"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite", filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePlan() *core.FleetPlan {
	fp := core.NewFleetPlan(2)
	fp.Plans[0] = core.AgentPlan{Agent: 0, Cells: core.Path{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}}}
	fp.Plans[1] = core.AgentPlan{Agent: 1, Cells: core.Path{{X: 1, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}}
	fp.ComputeMakespan()
	return fp
}

func TestNewRun(t *testing.T) {
	run := NewRun("many-to-many", "swarm", 2, 4, samplePlan(), nil, 1500*time.Microsecond)
	assert.Len(t, run.ID, 36)
	assert.True(t, run.Success)
	assert.Equal(t, 2, run.Makespan)
	assert.Equal(t, 4, run.SumOfCosts)
	assert.Equal(t, 1, run.WaitSteps)
	assert.InDelta(t, 1.5, run.DurationMs, 1e-9)

	fp, err := run.Plan()
	require.NoError(t, err)
	assert.Equal(t, samplePlan().Plans[1].Cells, fp.Plans[1].Cells)

	failed := NewRun("one-to-one", "exact", 1, 1, nil, errors.New("boom"), time.Millisecond)
	assert.False(t, failed.Success)
	assert.Equal(t, "boom", failed.Error)
	fp, err = failed.Plan()
	assert.NoError(t, err)
	assert.Nil(t, fp)
}

func TestStore_SaveAndQuery(t *testing.T) {
	s := openTest(t)
	base := time.Now().Add(-time.Hour)

	runs := []PlanRun{
		NewRun("one-to-one", "exact", 1, 1, samplePlan(), nil, time.Millisecond),
		NewRun("many-to-many", "swarm", 2, 6, samplePlan(), nil, 3*time.Millisecond),
		NewRun("many-to-many", "swarm", 2, 6, nil, errors.New("no path"), 2*time.Millisecond),
	}
	for i := range runs {
		runs[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
	}
	require.NoError(t, s.Save(runs...))

	recent, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, runs[2].ID, recent[0].ID)
	assert.Equal(t, runs[1].ID, recent[1].ID)

	fleetRuns, err := s.ByMode("many-to-many", 10)
	require.NoError(t, err)
	assert.Len(t, fleetRuns, 2)

	got, err := s.Get(runs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "one-to-one", got.Mode)
	assert.Equal(t, runs[0].PlanJSON, got.PlanJSON)

	st, err := s.Stats(base.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.Total)
	assert.Equal(t, int64(2), st.Succeeded)
	assert.Equal(t, map[string]int64{"one-to-one": 1, "many-to-many": 2}, st.ByMode)
	assert.InDelta(t, 2.0, st.AvgMakespan, 1e-9)
	assert.InDelta(t, 2.0, st.AvgDurationMs, 1e-9)

	later, err := s.Stats(base.Add(90 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), later.Total)
}

func TestOpen_UnknownDialect(t *testing.T) {
	_, err := Open("oracle", "")
	assert.Error(t, err)
}

func TestRecorder_FlushOnSize(t *testing.T) {
	s := openTest(t)
	r := NewRecorder(s, 2, time.Hour, log.New(io.Discard, "", 0))

	r.Add(NewRun("one-to-one", "exact", 1, 1, samplePlan(), nil, time.Millisecond))
	r.Add(NewRun("one-to-one", "exact", 1, 1, samplePlan(), nil, time.Millisecond))
	r.Add(NewRun("one-to-many", "swarm", 1, 3, nil, errors.New("no path"), time.Millisecond))
	r.Close()

	assert.Equal(t, 0, r.Pending())
	runs, err := s.Recent(10)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestRecorder_FlushOnInterval(t *testing.T) {
	s := openTest(t)
	r := NewRecorder(s, 100, 10*time.Millisecond, log.New(io.Discard, "", 0))
	defer r.Close()

	r.Add(NewRun("one-to-one", "exact", 1, 1, samplePlan(), nil, time.Millisecond))
	assert.Eventually(t, func() bool {
		runs, err := s.Recent(10)
		return err == nil && len(runs) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRecorder_KeepsBatchOnFailure(t *testing.T) {
	s := openTest(t)
	r := NewRecorder(s, 100, 0, log.New(io.Discard, "", 0))
	defer r.Close()

	r.Add(NewRun("one-to-one", "exact", 1, 1, samplePlan(), nil, time.Millisecond))
	r.Add(NewRun("one-to-many", "exact", 1, 2, samplePlan(), nil, time.Millisecond))
	require.NoError(t, s.Close())

	assert.Error(t, r.Flush())
	assert.Equal(t, 2, r.Pending())
}
