package domain

// NodeKind distinguishes the levels of the test definition tree
type NodeKind int

const (
	// KindSuite is a structural container such as the project or a folder
	KindSuite NodeKind = iota
	// KindFixture is a test class
	KindFixture
	// KindTestCase is a single test method
	KindTestCase
)

func (k NodeKind) String() string {
	switch k {
	case KindSuite:
		return "suite"
	case KindFixture:
		return "fixture"
	case KindTestCase:
		return "case"
	}
	return "unknown"
}

// TestNode is one node of the discovered test definition tree.
// The tree is owned by discovery and treated as read-only by everything else.
type TestNode struct {
	ID         string      // Unique identifier (FQCN for fixtures, FQCN::method for cases)
	Name       string      // Display name
	FullName   string      // Fully qualified name
	Kind       NodeKind    // Suite, fixture or test case
	Categories []string    // Declared @group names
	FilePath   string      // Source file (fixtures and cases only)
	Children   []*TestNode // Ordered children in source order
}

// IsLeaf reports whether the node is a test case
func (n *TestNode) IsLeaf() bool {
	return n.Kind == KindTestCase
}

// CountLeaves returns the number of test cases under n
func (n *TestNode) CountLeaves() int {
	if n == nil {
		return 0
	}
	if n.IsLeaf() {
		return 1
	}
	total := 0
	for _, child := range n.Children {
		total += child.CountLeaves()
	}
	return total
}

// Walk visits n and its descendants in document order. Returning false from fn
// skips the children of the visited node.
func (n *TestNode) Walk(fn func(node *TestNode, ancestors []*TestNode) bool) {
	if n == nil {
		return
	}
	n.walk(nil, fn)
}

func (n *TestNode) walk(ancestors []*TestNode, fn func(*TestNode, []*TestNode) bool) {
	if !fn(n, ancestors) {
		return
	}
	path := append(ancestors[:len(ancestors):len(ancestors)], n)
	for _, child := range n.Children {
		child.walk(path, fn)
	}
}

// Find returns the node with the given id, or nil
func (n *TestNode) Find(id string) *TestNode {
	var found *TestNode
	n.Walk(func(node *TestNode, _ []*TestNode) bool {
		if found != nil {
			return false
		}
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// Fixtures returns every fixture under n in document order
func (n *TestNode) Fixtures() []*TestNode {
	var fixtures []*TestNode
	n.Walk(func(node *TestNode, _ []*TestNode) bool {
		if node.Kind == KindFixture {
			fixtures = append(fixtures, node)
			return false
		}
		return true
	})
	return fixtures
}
