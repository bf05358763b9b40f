package core

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest reports arguments that do not fit the selected planning mode.
var ErrInvalidRequest = errors.New("invalid planning request")

// InvalidGridError reports a malformed grid or an out-of-grid cell.
type InvalidGridError struct {
	Reason string
}

func (e *InvalidGridError) Error() string {
	return "invalid grid: " + e.Reason
}

// UnreachableTargetError reports a target that no agent can service from Start.
type UnreachableTargetError struct {
	Target Cell
	Start  Cell
	Reason string
}

func (e *UnreachableTargetError) Error() string {
	return fmt.Sprintf("target %v unreachable from %v: %s", e.Target, e.Start, e.Reason)
}

// NoPathFoundError reports a search that exhausted its waypoint budget
// without covering every target.
type NoPathFoundError struct {
	Start        Cell
	MaxWaypoints int
	Unvisited    []Cell // targets missed by the last attempt's best path
	Enclosed     []Cell // targets without any helper cell
}

func (e *NoPathFoundError) Error() string {
	msg := fmt.Sprintf("no path from %v covering all targets within %d waypoints (%d unvisited)",
		e.Start, e.MaxWaypoints, len(e.Unvisited))
	if len(e.Enclosed) > 0 {
		msg += fmt.Sprintf(", enclosed targets %v", e.Enclosed)
	}
	return msg
}

// InvalidClusterRequestError reports a cluster count outside 1..len(points).
type InvalidClusterRequestError struct {
	K      int
	Points int
}

func (e *InvalidClusterRequestError) Error() string {
	return fmt.Sprintf("cannot form %d clusters from %d points", e.K, e.Points)
}

// AssignmentSizeMismatchError reports differing agent and cluster counts.
type AssignmentSizeMismatchError struct {
	Agents   int
	Clusters int
}

func (e *AssignmentSizeMismatchError) Error() string {
	return fmt.Sprintf("cannot assign %d agents to %d clusters", e.Agents, e.Clusters)
}
