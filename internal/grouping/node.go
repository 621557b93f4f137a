package grouping

import (
	"fmt"
	"strings"
	"time"
)

// NodeKind tags a display node
type NodeKind int

const (
	// GroupNode is a top-level group such as a category or outcome bucket
	GroupNode NodeKind = iota
	// SuiteNode is a structural branch; it may be folded with a single structural child
	SuiteNode
	// FixtureNode is a test class branch and is never folded
	FixtureNode
	// LeafNode wraps one test case
	LeafNode
)

func (k NodeKind) String() string {
	switch k {
	case GroupNode:
		return "group"
	case SuiteNode:
		return "suite"
	case FixtureNode:
		return "fixture"
	case LeafNode:
		return "leaf"
	}
	return "unknown"
}

// Node is one entry of the grouped display forest. Nodes are relocated rather
// than recreated while results arrive, so a renderer may key its widgets on ID.
type Node struct {
	id       uint64
	kind     NodeKind
	name     string
	parent   *Node
	children []*Node
	segments []Segment // ancestry segments this branch stands for; several when folded
	leaf     int       // index into the tree's leaf table, leaves only
	order    int

	count    int
	duration time.Duration
	known    bool
	image    Image
}

// ID returns an identifier that is stable for the lifetime of the tree
func (n *Node) ID() uint64 { return n.id }

func (n *Node) Kind() NodeKind { return n.kind }

func (n *Node) Name() string { return n.name }

// Label is the rendered text: "name (count)" for branches, the raw name for leaves
func (n *Node) Label() string {
	if n.kind == LeafNode {
		return n.name
	}
	return fmt.Sprintf("%s (%d)", n.name, n.count)
}

func (n *Node) Parent() *Node { return n.parent }

// Children returns the ordered children. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

func (n *Node) Count() int { return n.count }

// Duration returns the summed duration and whether every descendant has one
func (n *Node) Duration() (time.Duration, bool) { return n.duration, n.known }

func (n *Node) Image() Image { return n.image }

func (n *Node) IsLeaf() bool { return n.kind == LeafNode }

// Group returns the top-level group holding n
func (n *Node) Group() *Node {
	g := n
	for g.parent != nil {
		g = g.parent
	}
	return g
}

// Depth is 0 for top-level groups
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Path returns the nodes from the top-level group down to n
func (n *Node) Path() []*Node {
	var path []*Node
	for m := n; m != nil; m = m.parent {
		path = append(path, m)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func joinSegments(segments []Segment) string {
	names := make([]string, len(segments))
	for i, s := range segments {
		names[i] = s.Name
	}
	return strings.Join(names, ".")
}

func (n *Node) setSegments(segments []Segment) {
	n.segments = segments
	n.name = joinSegments(segments)
	n.order = segments[0].Order
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) removeChild(child *Node) {
	if i := n.indexOf(child); i >= 0 {
		n.children = append(n.children[:i], n.children[i+1:]...)
	}
	child.parent = nil
}

func (n *Node) replaceChild(old, repl *Node) {
	if i := n.indexOf(old); i >= 0 {
		n.children[i] = repl
	}
	repl.parent = n
	old.parent = nil
}

// insertOrdered places child among its siblings by document order
func (n *Node) insertOrdered(child *Node) {
	i := len(n.children)
	for j, c := range n.children {
		if c.order > child.order {
			i = j
			break
		}
	}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	child.parent = n
}

// branchStartingWith finds the child branch whose first segment is id
func (n *Node) branchStartingWith(id string) *Node {
	for _, c := range n.children {
		if c.kind != LeafNode && len(c.segments) > 0 && c.segments[0].ID == id {
			return c
		}
	}
	return nil
}
