package grouping

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultRegroupWindow is the debounce window for result bursts
const DefaultRegroupWindow = 100 * time.Millisecond

// Dispatcher runs fn on the goroutine that owns the tree
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatchFunc adapts a function to Dispatcher
type DispatchFunc func(fn func())

func (f DispatchFunc) Dispatch(fn func()) { f(fn) }

// Scheduler batches result arrivals and applies them on the owner goroutine
// once no new arrival has been seen for the configured window.
type Scheduler struct {
	window     time.Duration
	dispatcher Dispatcher
	apply      func(ids []string)
	logger     *slog.Logger

	mu      sync.Mutex
	pending []string
	queued  map[string]struct{}
	timer   *time.Timer
	stopped bool
}

// NewScheduler creates a Scheduler. apply is always invoked on the owner
// goroutine, either through the dispatcher or from Flush.
func NewScheduler(window time.Duration, dispatcher Dispatcher, apply func(ids []string), logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		window:     window,
		dispatcher: dispatcher,
		apply:      apply,
		logger:     logger,
		queued:     make(map[string]struct{}),
	}
}

// Enqueue records that a test has a new result and restarts the window.
// Safe to call from any goroutine.
func (s *Scheduler) Enqueue(id string) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if _, ok := s.queued[id]; !ok {
		s.queued[id] = struct{}{}
		s.pending = append(s.pending, id)
	}

	if s.window <= 0 {
		s.mu.Unlock()
		s.dispatcher.Dispatch(s.drain)
		return
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.window, s.fire)
	} else {
		s.timer.Stop()
		s.timer.Reset(s.window)
	}
	s.mu.Unlock()
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if !stopped {
		s.dispatcher.Dispatch(s.drain)
	}
}

// take removes and returns the pending batch
func (s *Scheduler) take() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.pending
	s.pending = nil
	s.queued = make(map[string]struct{})
	return batch
}

// drain runs on the owner goroutine. A batch already taken by Flush leaves
// nothing to do.
func (s *Scheduler) drain() {
	batch := s.take()
	if len(batch) == 0 {
		return
	}
	s.logger.Debug("regroup batch", "size", len(batch))
	s.apply(batch)
}

// Flush applies any pending batch synchronously and returns its size.
// It must be called on the owner goroutine.
func (s *Scheduler) Flush() int {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	batch := s.take()
	if len(batch) > 0 {
		s.logger.Debug("regroup flush", "size", len(batch))
		s.apply(batch)
	}
	return len(batch)
}

// Pending returns the number of queued tests
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels the timer and drops future arrivals. Pending ids are kept
// until Flush.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
}
