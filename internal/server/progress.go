package server

import "math"

// Progress is the payload of a progress message.
type Progress struct {
	Stage     string   `json:"stage"` // "attempt", "attempt_done" or "cluster"
	Agent     int      `json:"agent"`
	Waypoints int      `json:"waypoints,omitempty"`
	Iteration int      `json:"iteration,omitempty"`
	Covered   bool     `json:"covered,omitempty"`
	Best      *float64 `json:"best,omitempty"` // nil while no finite fitness is known
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// progressObserver forwards search callbacks of one run to the hub.
type progressObserver struct {
	hub   *Hub
	runID string
	every int // cluster iterations between messages
}

func newProgressObserver(h *Hub, runID string) *progressObserver {
	return &progressObserver{hub: h, runID: runID, every: 10}
}

func (o *progressObserver) OnAttempt(agent, waypoints int) {
	o.hub.Broadcast(NewMessage(MessageTypeProgress, o.runID, Progress{
		Stage: "attempt", Agent: agent, Waypoints: waypoints,
	}))
}

func (o *progressObserver) OnAttemptDone(agent, waypoints int, covered bool, best float64) {
	o.hub.Broadcast(NewMessage(MessageTypeProgress, o.runID, Progress{
		Stage: "attempt_done", Agent: agent, Waypoints: waypoints, Covered: covered, Best: finite(best),
	}))
}

func (o *progressObserver) OnClusterIteration(iter int, best float64) {
	if iter%o.every != 0 {
		return
	}
	o.hub.Broadcast(NewMessage(MessageTypeProgress, o.runID, Progress{
		Stage: "cluster", Agent: -1, Iteration: iter, Best: finite(best),
	}))
}
