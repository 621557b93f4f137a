package grouping

import (
	"sort"
	"strings"

	"gtr/internal/domain"
)

// ResultProvider supplies the current result of a test on demand
type ResultProvider interface {
	ResultFor(id string) (domain.TestResult, bool)
}

// Tree is a grouped display forest for one strategy. It is not safe for
// concurrent use; all calls must happen on the owner goroutine.
type Tree struct {
	strategy Strategy
	selector KeySelector
	provider ResultProvider

	leaves   []LeafTest
	leafByID map[string]int

	groups []*Node
	byName map[string]*Node
	seeded map[string]bool

	// index maps a test id to every leaf node displaying it
	index  map[string][]*Node
	nextID uint64

	// what incremental regroups changed since the last TakeChanges
	tracking bool
	touched  map[*Node]bool
	changes  Changes
}

// Changes lists the nodes affected by incremental regroups. Nodes outside
// it kept their label, aggregates and children.
type Changes struct {
	Touched []*Node // still attached; label, aggregates or children may differ
	Dropped []*Node // no longer part of the tree
	Groups  bool    // a top-level group was added or removed
}

// Empty reports whether nothing changed
func (c Changes) Empty() bool {
	return len(c.Touched) == 0 && len(c.Dropped) == 0 && !c.Groups
}

// TakeChanges returns what changed since the previous call and resets the
// record. A freshly built tree reports no changes.
func (t *Tree) TakeChanges() Changes {
	c := t.changes
	t.changes = Changes{}
	clear(t.touched)
	if len(c.Dropped) == 0 {
		return c
	}

	gone := make(map[*Node]bool, len(c.Dropped))
	for _, n := range c.Dropped {
		gone[n] = true
	}
	kept := c.Touched[:0]
	for _, n := range c.Touched {
		if !gone[n] {
			kept = append(kept, n)
		}
	}
	c.Touched = kept
	return c
}

func (t *Tree) touch(n *Node) {
	if !t.tracking || t.touched[n] {
		return
	}
	t.touched[n] = true
	t.changes.Touched = append(t.changes.Touched, n)
}

func (t *Tree) drop(n *Node) {
	if t.tracking {
		t.changes.Dropped = append(t.changes.Dropped, n)
	}
}

func (t *Tree) Strategy() Strategy { return t.strategy }

// Groups returns the ordered top-level groups. The slice must not be modified.
func (t *Tree) Groups() []*Node { return t.groups }

// Group returns the top-level group with the given name, or nil
func (t *Tree) Group(name string) *Node { return t.byName[name] }

// Leaf returns the test behind a leaf node
func (t *Tree) Leaf(n *Node) *LeafTest {
	if n == nil || n.kind != LeafNode {
		return nil
	}
	return &t.leaves[n.leaf]
}

// LeafByID returns the test with the given id
func (t *Tree) LeafByID(id string) (*LeafTest, bool) {
	i, ok := t.leafByID[id]
	if !ok {
		return nil, false
	}
	return &t.leaves[i], true
}

// NodesFor returns the leaf nodes currently displaying a test
func (t *Tree) NodesFor(id string) []*Node { return t.index[id] }

// LeafCount is the number of distinct tests in the tree
func (t *Tree) LeafCount() int { return len(t.leaves) }

// Walk visits every node in display order. Returning false skips the children.
func (t *Tree) Walk(fn func(n *Node) bool) {
	var visit func(n *Node)
	visit = func(n *Node) {
		if !fn(n) {
			return
		}
		for _, c := range n.children {
			visit(c)
		}
	}
	for _, g := range t.groups {
		visit(g)
	}
}

func (t *Tree) newNode(kind NodeKind) *Node {
	t.nextID++
	return &Node{id: t.nextID, kind: kind, leaf: -1}
}

func (t *Tree) newBranch(segments []Segment) *Node {
	kind := SuiteNode
	if len(segments) == 1 && segments[0].Fixture {
		kind = FixtureNode
	}
	n := t.newNode(kind)
	n.setSegments(append([]Segment(nil), segments...))
	return n
}

func (t *Tree) newLeaf(index int) *Node {
	leaf := &t.leaves[index]
	n := t.newNode(LeafNode)
	n.name = leaf.Name
	n.leaf = index
	n.order = leaf.Order
	t.index[leaf.ID] = append(t.index[leaf.ID], n)
	return n
}

func (t *Tree) resultFor(id string) *domain.TestResult {
	if t.provider == nil {
		return nil
	}
	r, ok := t.provider.ResultFor(id)
	if !ok {
		return nil
	}
	return &r
}

// groupLess orders top-level groups alphabetically with sentinels last
func groupLess(a, b string) bool {
	sa, sb := IsSentinel(a), IsSentinel(b)
	if sa != sb {
		return sb
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

func (t *Tree) appendGroup(name string) *Node {
	g := t.newNode(GroupNode)
	g.name = name
	t.groups = append(t.groups, g)
	t.byName[name] = g
	return g
}

func (t *Tree) sortGroups() {
	sort.SliceStable(t.groups, func(i, j int) bool {
		return groupLess(t.groups[i].name, t.groups[j].name)
	})
}

// insertGroup creates a group at its sorted position
func (t *Tree) insertGroup(name string) *Node {
	g := t.newNode(GroupNode)
	g.name = name
	i := sort.Search(len(t.groups), func(i int) bool {
		return groupLess(name, t.groups[i].name)
	})
	t.groups = append(t.groups, nil)
	copy(t.groups[i+1:], t.groups[i:])
	t.groups[i] = g
	t.byName[name] = g
	if t.tracking {
		t.changes.Groups = true
	}
	return g
}

func (t *Tree) removeGroup(g *Node) {
	for i, c := range t.groups {
		if c == g {
			t.groups = append(t.groups[:i], t.groups[i+1:]...)
			break
		}
	}
	delete(t.byName, g.name)
	t.drop(g)
	if t.tracking {
		t.changes.Groups = true
	}
}
