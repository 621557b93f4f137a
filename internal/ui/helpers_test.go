package ui

import (
	"testing"
	"time"

	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtr/internal/domain"
	"gtr/internal/grouping"
	"gtr/internal/results"
)

func testCase(class, name string, categories ...string) *domain.TestNode {
	id := class + "::" + name
	return &domain.TestNode{ID: id, Name: name, FullName: id, Kind: domain.KindTestCase, Categories: categories, FilePath: "/app/tests/" + class + ".php"}
}

func fixture(name string, categories []string, cases ...string) *domain.TestNode {
	f := &domain.TestNode{ID: name, Name: name, FullName: name, Kind: domain.KindFixture, Categories: categories, FilePath: "/app/tests/" + name + ".php"}
	for _, c := range cases {
		f.Children = append(f.Children, testCase(name, c))
	}
	return f
}

// sampleRoot has two fixtures of two tests each under one suite
func sampleRoot() *domain.TestNode {
	return &domain.TestNode{
		ID: "suite:.", Name: "tests", FullName: "tests", Kind: domain.KindSuite,
		Children: []*domain.TestNode{
			fixture("FirstTest", []string{"unit"}, "testA", "testB"),
			fixture("SecondTest", nil, "testA", "testB"),
		},
	}
}

func countNodes(tree *grouping.Tree) int {
	n := 0
	tree.Walk(func(*grouping.Node) bool {
		n++
		return true
	})
	return n
}

func passedIn(id string, d time.Duration) domain.TestResult {
	return domain.TestResult{ID: id, Status: domain.StatusPassed, Duration: d}
}

func newStore(rs ...domain.TestResult) *results.Store {
	s := results.NewStore()
	for _, r := range rs {
		s.Put(r)
	}
	return s
}

// assertMirrors checks that the widget forest matches tree node for node
func assertMirrors(t *testing.T, r *TreeRenderer, tree *grouping.Tree) {
	t.Helper()
	var check func(w *tview.TreeNode, n *grouping.Node)
	check = func(w *tview.TreeNode, n *grouping.Node) {
		require.NotNil(t, w, n.Name())
		assert.Same(t, n, w.GetReference())
		assert.Equal(t, nodeText(n), w.GetText())
		children := w.GetChildren()
		require.Len(t, children, len(n.Children()), n.Name())
		for i, c := range n.Children() {
			assert.Same(t, r.Widget(c.ID()), children[i])
			check(children[i], c)
		}
	}

	groups := r.Root().GetChildren()
	require.Len(t, groups, len(tree.Groups()))
	for i, g := range tree.Groups() {
		check(groups[i], g)
	}
}
