package algo

import "log"

// Observer receives progress callbacks from the swarm searches.
// Callbacks run on the searching goroutine; implementations used by
// parallel fleet searches must be safe for concurrent use.
type Observer interface {
	// OnAttempt is called when a path search starts a waypoint count.
	OnAttempt(agent, waypoints int)

	// OnAttemptDone is called when an attempt's iteration budget is spent.
	OnAttemptDone(agent, waypoints int, covered bool, best float64)

	// OnClusterIteration is called after every clustering iteration with
	// the global best partition cost.
	OnClusterIteration(iter int, best float64)
}

// NopObserver ignores all callbacks.
type NopObserver struct{}

func (NopObserver) OnAttempt(int, int)                    {}
func (NopObserver) OnAttemptDone(int, int, bool, float64) {}
func (NopObserver) OnClusterIteration(int, float64)       {}

// LogObserver writes progress to a logger.
type LogObserver struct {
	Logger *log.Logger
}

// NewLogObserver creates an observer backed by l (log.Default() if nil).
func NewLogObserver(l *log.Logger) *LogObserver {
	if l == nil {
		l = log.Default()
	}
	return &LogObserver{Logger: l}
}

func (o *LogObserver) OnAttempt(agent, waypoints int) {
	o.Logger.Printf("agent %d: searching with %d waypoints", agent, waypoints)
}

func (o *LogObserver) OnAttemptDone(agent, waypoints int, covered bool, best float64) {
	o.Logger.Printf("agent %d: %d waypoints done, covered=%v fitness=%.2f", agent, waypoints, covered, best)
}

func (o *LogObserver) OnClusterIteration(iter int, best float64) {
	if iter%25 == 0 {
		o.Logger.Printf("clustering iteration %d: cost=%.3f", iter, best)
	}
}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return NopObserver{}
	}
	return o
}
