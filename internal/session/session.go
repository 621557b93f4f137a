package session

import (
	"log/slog"
	"time"

	"gtr/internal/domain"
	"gtr/internal/grouping"
	"gtr/internal/results"
)

// Options configures the grouping shown by a Session
type Options struct {
	Strategy         grouping.Strategy
	IncludeAncestors bool
	Window           time.Duration
}

// Change describes one update of the displayed tree
type Change struct {
	Tree    *grouping.Tree
	Rebuilt bool // the forest was replaced; cached widgets must be dropped
	Applied int  // results applied in this pass
	Moved   int  // leaves that changed group

	// Changes lists the nodes this pass touched; empty when Rebuilt
	Changes grouping.Changes
}

// Session connects the load and run lifecycle to the grouping engine.
// Lifecycle methods must be called on the owner goroutine; Deliver may be
// called from anywhere.
type Session struct {
	opts       Options
	store      *results.Store
	dispatcher grouping.Dispatcher
	scheduler  *grouping.Scheduler
	logger     *slog.Logger

	root      *domain.TestNode
	tree      *grouping.Tree
	listeners []func(Change)
}

// New creates a Session. dispatcher marshals work onto the owner goroutine.
func New(opts Options, store *results.Store, dispatcher grouping.Dispatcher, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if store == nil {
		store = results.NewStore()
	}
	s := &Session{
		opts:       opts,
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
	}
	s.scheduler = grouping.NewScheduler(opts.Window, dispatcher, s.apply, logger)
	return s
}

// Subscribe registers fn for every change notification
func (s *Session) Subscribe(fn func(Change)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Session) Tree() *grouping.Tree { return s.tree }

func (s *Session) Root() *domain.TestNode { return s.root }

func (s *Session) Store() *results.Store { return s.store }

func (s *Session) Strategy() grouping.Strategy { return s.opts.Strategy }

// Pending returns the number of results waiting for the next regroup pass
func (s *Session) Pending() int { return s.scheduler.Pending() }

// OnTestsLoaded builds the grouped tree for a freshly loaded definition tree
func (s *Session) OnTestsLoaded(root *domain.TestNode) {
	s.root = root
	s.rebuild("loaded")
}

// OnTestsReloaded discards the current forest and builds a new one
func (s *Session) OnTestsReloaded(root *domain.TestNode) {
	s.scheduler.Flush()
	s.root = root
	s.rebuild("reloaded")
}

// SetStrategy switches the grouping. Nothing is shared with the old forest.
func (s *Session) SetStrategy(strategy grouping.Strategy) {
	if s.opts.Strategy == strategy && s.tree != nil {
		return
	}
	s.opts.Strategy = strategy
	s.rebuild("strategy")
}

func (s *Session) rebuild(reason string) {
	s.tree = grouping.Build(s.root, s.opts.Strategy, s.store, grouping.WithAncestorCategories(s.opts.IncludeAncestors))
	s.logger.Debug("grouped tree built",
		"reason", reason,
		"strategy", s.opts.Strategy.String(),
		"tests", s.tree.LeafCount(),
		"groups", len(s.tree.Groups()),
	)
	s.notify(Change{Tree: s.tree, Rebuilt: true})
}

// OnTestFinished records a test result and queues it for regrouping
func (s *Session) OnTestFinished(r domain.TestResult) {
	s.store.Put(r)
	s.scheduler.Enqueue(r.ID)
}

// OnSuiteFinished queues a suite result. Suites have no leaf of their own,
// so the tree treats the id as unknown unless a test shares it.
func (s *Session) OnSuiteFinished(r domain.TestResult) {
	s.scheduler.Enqueue(r.ID)
}

// OnRunCancelled applies every queued result before the final state is shown
func (s *Session) OnRunCancelled() {
	n := s.scheduler.Flush()
	s.logger.Info("run cancelled", "flushed", n)
}

// OnRunFinished applies every queued result at the end of a run
func (s *Session) OnRunFinished() {
	n := s.scheduler.Flush()
	s.logger.Debug("run finished", "flushed", n)
}

// Deliver marshals a test result onto the owner goroutine
func (s *Session) Deliver(r domain.TestResult) {
	s.dispatcher.Dispatch(func() { s.OnTestFinished(r) })
}

// DeliverSuite marshals a suite result onto the owner goroutine
func (s *Session) DeliverSuite(r domain.TestResult) {
	s.dispatcher.Dispatch(func() { s.OnSuiteFinished(r) })
}

// Close stops the regroup timer
func (s *Session) Close() {
	s.scheduler.Stop()
}

func (s *Session) apply(ids []string) {
	if s.tree == nil {
		return
	}
	moved := 0
	for _, id := range ids {
		if s.tree.OnResultArrived(id) {
			moved++
		}
	}
	s.notify(Change{Tree: s.tree, Applied: len(ids), Moved: moved, Changes: s.tree.TakeChanges()})
}

func (s *Session) notify(c Change) {
	for _, fn := range s.listeners {
		fn(c)
	}
}
