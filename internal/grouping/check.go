package grouping

import "fmt"

// Check verifies the structural invariants of the tree and returns the first
// violation found. A non-nil error always indicates a bug in this package.
func (t *Tree) Check() error {
	for i, g := range t.groups {
		if g.parent != nil {
			return fmt.Errorf("group %q has a parent", g.name)
		}
		if t.byName[g.name] != g {
			return fmt.Errorf("group %q missing from name index", g.name)
		}
		if i > 0 && !groupLess(t.groups[i-1].name, g.name) {
			return fmt.Errorf("groups %q and %q out of order", t.groups[i-1].name, g.name)
		}
		if _, err := t.checkNode(g); err != nil {
			return err
		}
	}
	if len(t.byName) != len(t.groups) {
		return fmt.Errorf("name index holds %d groups, tree holds %d", len(t.byName), len(t.groups))
	}

	for id, nodes := range t.index {
		for _, n := range nodes {
			if n.kind != LeafNode || t.leaves[n.leaf].ID != id {
				return fmt.Errorf("index entry %q points at %s %q", id, n.kind, n.name)
			}
			if n.parent == nil || n.parent.indexOf(n) < 0 {
				return fmt.Errorf("indexed leaf %q is not attached", id)
			}
			if g := n.Group(); t.byName[g.name] != g {
				return fmt.Errorf("indexed leaf %q hangs under a detached group", id)
			}
		}
	}
	return nil
}

// checkNode validates n's subtree and returns its leaf count
func (t *Tree) checkNode(n *Node) (int, error) {
	if n.kind == LeafNode {
		if len(n.children) != 0 {
			return 0, fmt.Errorf("leaf %q has children", n.name)
		}
		if n.count != 1 {
			return 0, fmt.Errorf("leaf %q has count %d", n.name, n.count)
		}
		return 1, nil
	}

	if canFold(n) {
		return 0, fmt.Errorf("branch %q should be folded with %q", n.name, n.children[0].name)
	}
	if n.kind != GroupNode && len(n.children) == 0 {
		return 0, fmt.Errorf("branch %q is empty", n.name)
	}

	names := make(map[string]bool, len(n.children))
	total := 0
	for i, c := range n.children {
		if c.parent != n {
			return 0, fmt.Errorf("%q has wrong parent link", c.name)
		}
		if names[c.name] {
			return 0, fmt.Errorf("duplicate sibling %q under %q", c.name, n.name)
		}
		names[c.name] = true
		if i > 0 && n.children[i-1].order >= c.order {
			return 0, fmt.Errorf("%q and %q under %q out of source order", n.children[i-1].name, c.name, n.name)
		}
		leaves, err := t.checkNode(c)
		if err != nil {
			return 0, err
		}
		total += leaves
	}
	if n.count != total {
		return 0, fmt.Errorf("branch %q count %d, has %d leaves", n.name, n.count, total)
	}
	return total, nil
}
