package store

import (
	"log"
	"os"
	"sync"
	"time"
)

// Recorder buffers runs and writes them in batches: when flushSize runs
// are pending, and every interval.
type Recorder struct {
	store     *Store
	log       *log.Logger
	flushSize int
	interval  time.Duration

	mu      sync.Mutex
	pending []PlanRun

	inflight sync.WaitGroup
	stop     chan struct{}
	done     chan struct{}
}

// NewRecorder starts a recorder writing to s.
func NewRecorder(s *Store, flushSize int, interval time.Duration, l *log.Logger) *Recorder {
	if flushSize < 1 {
		flushSize = 1
	}
	if l == nil {
		l = log.New(os.Stderr, "[store] ", log.LstdFlags)
	}
	r := &Recorder{
		store:     s,
		log:       l,
		flushSize: flushSize,
		interval:  interval,
		pending:   make([]PlanRun, 0, flushSize*2),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go r.autoFlush()
	return r
}

func (r *Recorder) autoFlush() {
	defer close(r.done)
	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-tick:
			r.Flush()
		case <-r.stop:
			r.Flush()
			return
		}
	}
}

// Add queues a run. A full buffer is flushed in the background.
func (r *Recorder) Add(run PlanRun) {
	r.mu.Lock()
	r.pending = append(r.pending, run)
	full := len(r.pending) >= r.flushSize
	if full {
		r.inflight.Add(1)
	}
	r.mu.Unlock()

	if full {
		go func() {
			defer r.inflight.Done()
			r.Flush()
		}()
	}
}

// Pending returns the number of buffered runs.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Flush writes all buffered runs. A batch that fails to save is put back
// in front of the buffer and retried by the next flush.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	if len(r.pending) == 0 {
		r.mu.Unlock()
		return nil
	}
	batch := make([]PlanRun, len(r.pending))
	copy(batch, r.pending)
	r.pending = r.pending[:0]
	r.mu.Unlock()

	if err := r.store.Save(batch...); err != nil {
		r.log.Printf("saving %d runs failed: %v", len(batch), err)
		r.mu.Lock()
		r.pending = append(batch, r.pending...)
		r.mu.Unlock()
		return err
	}
	r.log.Printf("saved %d runs", len(batch))
	return nil
}

// Close flushes what is left and stops the background writer.
func (r *Recorder) Close() {
	close(r.stop)
	<-r.done
	r.inflight.Wait()
}
