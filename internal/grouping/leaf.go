package grouping

import "gtr/internal/domain"

// Segment describes one ancestor suite or fixture of a leaf test
type Segment struct {
	ID         string
	Name       string
	Fixture    bool
	Categories []string
	Order      int // preorder position in the definition tree
}

// LeafTest is an immutable view of one test case and its ancestry
type LeafTest struct {
	ID         string
	Name       string
	FullName   string
	Categories []string
	Ancestry   []Segment // outermost first
	Order      int
}

// CollectLeaves enumerates every test case under root in document order.
// Order values are assigned in preorder so that leaves and ancestors share
// one comparable sequence.
func CollectLeaves(root *domain.TestNode) []LeafTest {
	c := &collector{}
	if root != nil {
		c.visit(root, root.Name, nil)
	}
	return c.leaves
}

type collector struct {
	order  int
	leaves []LeafTest
}

func (c *collector) visit(n *domain.TestNode, name string, path []Segment) {
	c.order++
	if n.IsLeaf() {
		c.leaves = append(c.leaves, LeafTest{
			ID:         n.ID,
			Name:       name,
			FullName:   n.FullName,
			Categories: n.Categories,
			Ancestry:   path,
			Order:      c.order,
		})
		return
	}

	next := make([]Segment, len(path)+1)
	copy(next, path)
	next[len(path)] = Segment{
		ID:         n.ID,
		Name:       name,
		Fixture:    n.Kind == domain.KindFixture,
		Categories: n.Categories,
		Order:      c.order,
	}
	names := siblingNames(n.Children)
	for i, child := range n.Children {
		c.visit(child, names[i], next)
	}
}

// siblingNames returns the display names of children. Distinct children that
// share a short name, such as same-named classes from different namespaces,
// are shown by their full name instead.
func siblingNames(children []*domain.TestNode) []string {
	counts := make(map[string]int, len(children))
	ids := make(map[string]bool, len(children))
	for _, c := range children {
		if ids[c.ID] {
			continue
		}
		ids[c.ID] = true
		counts[c.Name]++
	}

	names := make([]string, len(children))
	for i, c := range children {
		names[i] = c.Name
		if counts[c.Name] < 2 {
			continue
		}
		switch {
		case c.FullName != "" && c.FullName != c.Name:
			names[i] = c.FullName
		case c.ID != "":
			names[i] = c.ID
		}
	}
	return names
}
