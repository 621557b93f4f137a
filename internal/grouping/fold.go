package grouping

// canFold reports whether n must be merged with its only child: both have to
// be structural branches. Fixtures never fold and are never folded away.
func canFold(n *Node) bool {
	return n.kind == SuiteNode && len(n.children) == 1 && n.children[0].kind == SuiteNode
}

// merge folds n into its only child, which takes n's place under the same
// parent with the dotted name "<n>.<child>". The child's subtree is untouched.
func (t *Tree) merge(n *Node) *Node {
	child := n.children[0]
	segments := make([]Segment, 0, len(n.segments)+len(child.segments))
	segments = append(segments, n.segments...)
	segments = append(segments, child.segments...)
	child.setSegments(segments)

	n.parent.replaceChild(n, child)
	n.children = nil
	t.drop(n)
	t.touch(child)
	return child
}

// foldSubtree applies the fold rule to n and everything below it
func (t *Tree) foldSubtree(n *Node) {
	if n.kind == LeafNode {
		return
	}
	for canFold(n) {
		n = t.merge(n)
	}
	for i := 0; i < len(n.children); i++ {
		t.foldSubtree(n.children[i])
	}
}

// refold re-evaluates the fold rule for n and every ancestor up to the
// top-level group. It returns the node now standing where n stood.
func (t *Tree) refold(n *Node) *Node {
	bottom := n
	for m := n; m != nil && m.kind != GroupNode; {
		if canFold(m) {
			merged := t.merge(m)
			if m == bottom {
				bottom = merged
			}
			m = merged
			continue
		}
		m = m.parent
	}
	return bottom
}

// split cuts a folded branch after its first k segments. A new branch holding
// the prefix takes n's place and n keeps the remaining segments and children.
func (t *Tree) split(n *Node, k int) *Node {
	prefix := t.newBranch(n.segments[:k])
	n.setSegments(append([]Segment(nil), n.segments[k:]...))

	n.parent.replaceChild(n, prefix)
	prefix.children = []*Node{n}
	n.parent = prefix
	t.touch(n)
	return prefix
}

// extend creates the folded chain of branches for path under parent and
// returns the deepest one. Consecutive structural segments share one branch;
// each fixture gets its own.
func (t *Tree) extend(parent *Node, path []Segment) *Node {
	cur := parent
	for i := 0; i < len(path); {
		j := i + 1
		if !path[i].Fixture {
			for j < len(path) && !path[j].Fixture {
				j++
			}
		}
		b := t.newBranch(path[i:j])
		cur.insertOrdered(b)
		cur = b
		i = j
	}
	return cur
}

func commonPrefix(a, b []Segment) int {
	n := 0
	for n < len(a) && n < len(b) && a[n].ID == b[n].ID {
		n++
	}
	return n
}
