package grouping

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type batchRecorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *batchRecorder) apply(ids []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, append([]string(nil), ids...))
}

func (r *batchRecorder) get() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches
}

func TestScheduler_DebouncesIntoOneBatch(t *testing.T) {
	owner := make(chan func(), 4)
	rec := &batchRecorder{}
	s := NewScheduler(20*time.Millisecond, DispatchFunc(func(fn func()) { owner <- fn }), rec.apply, nil)

	s.Enqueue("a")
	s.Enqueue("b")
	s.Enqueue("a")
	assert.Equal(t, 2, s.Pending())

	select {
	case fn := <-owner:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("batch was never dispatched")
	}
	assert.Equal(t, [][]string{{"a", "b"}}, rec.get())
	assert.Zero(t, s.Pending())
}

func TestScheduler_ArrivalRestartsWindow(t *testing.T) {
	const window = 100 * time.Millisecond
	type dispatch struct {
		fn func()
		at time.Time
	}
	owner := make(chan dispatch, 8)
	rec := &batchRecorder{}
	s := NewScheduler(window, DispatchFunc(func(fn func()) { owner <- dispatch{fn, time.Now()} }), rec.apply, nil)

	var last time.Time
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		if i > 0 {
			time.Sleep(window / 4)
		}
		last = time.Now()
		s.Enqueue(id)
	}
	// the whole burst spans longer than one window
	assert.Empty(t, owner, "a batch fired while arrivals kept coming")

	select {
	case d := <-owner:
		assert.GreaterOrEqual(t, d.at.Sub(last), window, "batch fired before the window after the last arrival")
		d.fn()
	case <-time.After(2 * time.Second):
		t.Fatal("batch was never dispatched")
	}
	assert.Equal(t, [][]string{{"a", "b", "c", "d", "e"}}, rec.get())

	select {
	case <-owner:
		t.Fatal("a second batch was dispatched")
	case <-time.After(2 * window):
	}
}

func TestScheduler_FlushAppliesSynchronously(t *testing.T) {
	rec := &batchRecorder{}
	owner := make(chan func(), 4)
	s := NewScheduler(time.Hour, DispatchFunc(func(fn func()) { owner <- fn }), rec.apply, nil)

	s.Enqueue("a")
	s.Enqueue("b")
	assert.Equal(t, 2, s.Pending())
	assert.Equal(t, 2, s.Flush())
	assert.Equal(t, [][]string{{"a", "b"}}, rec.get())
	assert.Zero(t, s.Flush())
	assert.Empty(t, owner, "flush must not go through the dispatcher")
}

func TestScheduler_LateDrainAfterFlushIsNoop(t *testing.T) {
	rec := &batchRecorder{}
	owner := make(chan func(), 4)
	s := NewScheduler(5*time.Millisecond, DispatchFunc(func(fn func()) { owner <- fn }), rec.apply, nil)

	s.Enqueue("a")
	var late func()
	select {
	case late = <-owner:
	case <-time.After(2 * time.Second):
		t.Fatal("batch was never dispatched")
	}
	require.Equal(t, 1, s.Flush())
	late()
	assert.Len(t, rec.get(), 1)
}

func TestScheduler_ZeroWindowAppliesEachArrival(t *testing.T) {
	rec := &batchRecorder{}
	s := NewScheduler(0, DispatchFunc(func(fn func()) { fn() }), rec.apply, nil)

	s.Enqueue("a")
	s.Enqueue("b")
	assert.Equal(t, [][]string{{"a"}, {"b"}}, rec.get())
}

func TestScheduler_StopDropsArrivals(t *testing.T) {
	rec := &batchRecorder{}
	s := NewScheduler(time.Hour, DispatchFunc(func(fn func()) { fn() }), rec.apply, nil)

	s.Enqueue("a")
	s.Stop()
	s.Enqueue("b")
	assert.Equal(t, 1, s.Flush())
	assert.Equal(t, [][]string{{"a"}}, rec.get())
}

func TestScheduler_DrivesRegroup(t *testing.T) {
	results := stubResults{}
	tree := Build(twoFixtures(), ByOutcome, results)
	var moved int
	s := NewScheduler(time.Hour, DispatchFunc(func(fn func()) { fn() }), func(ids []string) {
		for _, id := range ids {
			if tree.OnResultArrived(id) {
				moved++
			}
		}
	}, nil)

	results["FirstTest::testA"] = failed(time.Millisecond)
	results["SecondTest::testB"] = passed(time.Millisecond)
	s.Enqueue("FirstTest::testA")
	s.Enqueue("SecondTest::testB")
	assert.Equal(t, 4, tree.Group(GroupNotRun).Count(), "nothing applied before the window closes")

	s.Flush()
	require.NoError(t, tree.Check())
	assert.Equal(t, 2, moved)
	assert.Equal(t, 2, tree.Group(GroupNotRun).Count())
	assert.Equal(t, 1, tree.Group(GroupFailed).Count())
	assert.Equal(t, 1, tree.Group(GroupPassed).Count())
}
