package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"gtr/internal/grouping"
)

// TreeRenderer mirrors a grouped tree into tview nodes. Widgets are keyed
// by grouping node id and reused across regroups, so expansion state and
// the selection survive a result moving a test between groups.
type TreeRenderer struct {
	root  *tview.TreeNode
	nodes map[uint64]*tview.TreeNode
}

// NewTreeRenderer creates a renderer with a root labelled title
func NewTreeRenderer(title string) *TreeRenderer {
	return &TreeRenderer{
		root:  tview.NewTreeNode(title).SetSelectable(false),
		nodes: make(map[uint64]*tview.TreeNode),
	}
}

// Root returns the widget to hand to a tview.TreeView
func (r *TreeRenderer) Root() *tview.TreeNode { return r.root }

// Widget returns the widget of a grouping node, or nil
func (r *TreeRenderer) Widget(id uint64) *tview.TreeNode { return r.nodes[id] }

// Owns reports whether w is a live widget of this renderer
func (r *TreeRenderer) Owns(w *tview.TreeNode) bool {
	if w == nil {
		return false
	}
	if w == r.root {
		return true
	}
	n, ok := w.GetReference().(*grouping.Node)
	return ok && r.nodes[n.ID()] == w
}

// Len returns the number of live widgets
func (r *TreeRenderer) Len() int { return len(r.nodes) }

// Sync brings the widgets in line with tree. A rebuilt tree shares no
// nodes with the previous one, so every widget is recreated.
func (r *TreeRenderer) Sync(tree *grouping.Tree, rebuilt bool) (created, removed int) {
	if rebuilt {
		removed = len(r.nodes)
		r.nodes = make(map[uint64]*tview.TreeNode)
	}
	if tree == nil {
		r.root.ClearChildren()
		return 0, removed
	}

	seen := make(map[uint64]bool, len(r.nodes))
	groups := make([]*tview.TreeNode, 0, len(tree.Groups()))
	for _, g := range tree.Groups() {
		groups = append(groups, r.sync(g, seen, &created))
	}
	r.root.SetChildren(groups)

	for id := range r.nodes {
		if !seen[id] {
			delete(r.nodes, id)
			removed++
		}
	}
	return created, removed
}

// Update applies the changes of incremental regroups. Only touched nodes
// have their widget refreshed; widgets of dropped nodes are released.
func (r *TreeRenderer) Update(tree *grouping.Tree, changes grouping.Changes) (created, removed int) {
	if tree == nil {
		return r.Sync(nil, false)
	}
	for _, n := range changes.Dropped {
		if _, ok := r.nodes[n.ID()]; ok {
			delete(r.nodes, n.ID())
			removed++
		}
	}
	for _, n := range changes.Touched {
		r.refresh(n, &created)
	}
	if changes.Groups {
		groups := make([]*tview.TreeNode, 0, len(tree.Groups()))
		for _, g := range tree.Groups() {
			groups = append(groups, r.widget(g, &created))
		}
		r.root.SetChildren(groups)
	}
	return created, removed
}

// widget returns the widget of n, building it and any missing widgets
// below it when n has none yet
func (r *TreeRenderer) widget(n *grouping.Node, created *int) *tview.TreeNode {
	if w, ok := r.nodes[n.ID()]; ok {
		return w
	}
	return r.refresh(n, created)
}

// refresh updates the widget of n and relinks its direct children
func (r *TreeRenderer) refresh(n *grouping.Node, created *int) *tview.TreeNode {
	w, ok := r.nodes[n.ID()]
	if !ok {
		w = tview.NewTreeNode("").SetSelectable(true).SetExpanded(n.Kind() != grouping.LeafNode)
		r.nodes[n.ID()] = w
		*created++
	}
	w.SetReference(n).SetText(nodeText(n)).SetColor(styleFor(n.Image()).cell)

	if n.IsLeaf() {
		return w
	}
	children := make([]*tview.TreeNode, 0, len(n.Children()))
	for _, c := range n.Children() {
		children = append(children, r.widget(c, created))
	}
	w.SetChildren(children)
	return w
}

func (r *TreeRenderer) sync(n *grouping.Node, seen map[uint64]bool, created *int) *tview.TreeNode {
	seen[n.ID()] = true
	w, ok := r.nodes[n.ID()]
	if !ok {
		w = tview.NewTreeNode("").SetSelectable(true).SetExpanded(n.Kind() != grouping.LeafNode)
		r.nodes[n.ID()] = w
		*created++
	}
	st := styleFor(n.Image())
	w.SetReference(n).SetText(nodeText(n)).SetColor(st.cell)

	if n.IsLeaf() {
		return w
	}
	children := make([]*tview.TreeNode, 0, len(n.Children()))
	for _, c := range n.Children() {
		children = append(children, r.sync(c, seen, created))
	}
	w.SetChildren(children)
	return w
}

// nodeText is the single line shown for a node
func nodeText(n *grouping.Node) string {
	text := styleFor(n.Image()).glyph + " " + n.Label()
	if d, known := n.Duration(); known && d > 0 {
		text += " " + formatDuration(d)
	}
	return text
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
}
