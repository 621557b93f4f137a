package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtr/internal/domain"
	"gtr/internal/grouping"
)

func TestTreeRenderer_SyncCreatesWidgetPerNode(t *testing.T) {
	store := newStore()
	tree := grouping.Build(sampleRoot(), grouping.ByDuration, store)
	r := NewTreeRenderer("tests")

	created, removed := r.Sync(tree, true)

	assert.Equal(t, countNodes(tree), created)
	assert.Zero(t, removed)
	assert.Equal(t, created, r.Len())
	require.Len(t, r.Root().GetChildren(), len(tree.Groups()))

	notRun := r.Widget(tree.Group(grouping.GroupNotRun).ID())
	require.NotNil(t, notRun)
	assert.Contains(t, notRun.GetText(), "Not Run (4)")
	assert.True(t, r.Owns(notRun))
}

func TestTreeRenderer_ReusesMovedLeafWidget(t *testing.T) {
	store := newStore()
	tree := grouping.Build(sampleRoot(), grouping.ByDuration, store)
	r := NewTreeRenderer("tests")
	r.Sync(tree, true)

	leaf := tree.NodesFor("FirstTest::testA")[0]
	widget := r.Widget(leaf.ID())
	require.NotNil(t, widget)
	assert.False(t, widget.IsExpanded())

	store.Put(passedIn("FirstTest::testA", 20*time.Millisecond))
	require.True(t, tree.OnResultArrived("FirstTest::testA"))
	_, removed := r.Update(tree, tree.TakeChanges())

	assert.Zero(t, removed)
	assert.Same(t, widget, r.Widget(leaf.ID()))
	assert.Contains(t, widget.GetText(), "✓ testA")
	assert.Contains(t, widget.GetText(), "20ms")
	assert.Equal(t, countNodes(tree), r.Len())
	assertMirrors(t, r, tree)
}

func TestTreeRenderer_DropsWidgetsOfPrunedBranches(t *testing.T) {
	store := newStore()
	tree := grouping.Build(sampleRoot(), grouping.ByDuration, store)
	r := NewTreeRenderer("tests")
	r.Sync(tree, true)

	branch := tree.NodesFor("FirstTest::testA")[0].Parent()
	stale := r.Widget(branch.ID())
	require.NotNil(t, stale)

	for _, id := range []string{"FirstTest::testA", "FirstTest::testB"} {
		store.Put(passedIn(id, time.Millisecond))
		tree.OnResultArrived(id)
	}
	_, removed := r.Update(tree, tree.TakeChanges())

	assert.Positive(t, removed)
	assert.False(t, r.Owns(stale))
	assert.Equal(t, countNodes(tree), r.Len())
	assertMirrors(t, r, tree)
}

func TestTreeRenderer_UpdateLeavesUntouchedWidgetsAlone(t *testing.T) {
	store := newStore()
	tree := grouping.Build(sampleRoot(), grouping.ByDuration, store)
	r := NewTreeRenderer("tests")
	r.Sync(tree, true)

	other := r.Widget(tree.NodesFor("SecondTest::testA")[0].Parent().ID())
	require.NotNil(t, other)
	other.SetText("marker")

	store.Put(passedIn("FirstTest::testA", 20*time.Millisecond))
	require.True(t, tree.OnResultArrived("FirstTest::testA"))
	changes := tree.TakeChanges()
	created, _ := r.Update(tree, changes)

	assert.Equal(t, "marker", other.GetText())
	assert.Less(t, len(changes.Touched), countNodes(tree))
	assert.Positive(t, created)
	assert.True(t, tree.TakeChanges().Empty())
}

func TestTreeRenderer_UpdateMatchesFullSync(t *testing.T) {
	store := newStore()
	tree := grouping.Build(sampleRoot(), grouping.ByOutcome, store)
	r := NewTreeRenderer("tests")
	r.Sync(tree, true)

	steps := []domain.TestResult{
		passedIn("FirstTest::testA", time.Millisecond),
		{ID: "SecondTest::testB", Status: domain.StatusFailed},
		passedIn("FirstTest::testB", time.Millisecond),
		passedIn("SecondTest::testA", time.Millisecond),
		passedIn("SecondTest::testB", time.Millisecond),
	}
	for _, res := range steps {
		store.Put(res)
		tree.OnResultArrived(res.ID)
		r.Update(tree, tree.TakeChanges())

		assert.Equal(t, countNodes(tree), r.Len(), res.ID)
		assertMirrors(t, r, tree)
	}
}

func TestTreeRenderer_RebuildRecreatesEverything(t *testing.T) {
	store := newStore()
	r := NewTreeRenderer("tests")
	r.Sync(grouping.Build(sampleRoot(), grouping.ByDuration, store), true)
	before := r.Len()

	tree := grouping.Build(sampleRoot(), grouping.ByCategory, store)
	created, removed := r.Sync(tree, true)

	assert.Equal(t, before, removed)
	assert.Equal(t, countNodes(tree), created)
	assert.Len(t, r.Root().GetChildren(), len(tree.Groups()))
}

func TestTreeRenderer_NilTreeClears(t *testing.T) {
	r := NewTreeRenderer("tests")
	r.Sync(grouping.Build(sampleRoot(), grouping.ByOutcome, newStore()), true)

	_, removed := r.Sync(nil, true)

	assert.Positive(t, removed)
	assert.Zero(t, r.Len())
	assert.Empty(t, r.Root().GetChildren())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{1500 * time.Millisecond, "1.50s"},
		{42 * time.Millisecond, "42ms"},
		{350 * time.Microsecond, "350µs"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.in))
		})
	}
}
