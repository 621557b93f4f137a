package grouping

// OnResultArrived re-evaluates the group of a test after its result changed
// and relocates its leaf node when the group differs. Only the branches on
// the vacated and destination paths are touched. It reports whether the leaf
// moved; unknown ids are ignored.
//
// Category membership does not depend on results, so for that strategy only
// the aggregates along each displaying path are refreshed.
func (t *Tree) OnResultArrived(id string) bool {
	nodes := t.index[id]
	if len(nodes) == 0 {
		return false
	}
	if !t.selector.Dynamic() {
		for _, n := range nodes {
			t.refreshChain(n)
		}
		return false
	}

	n := nodes[0]
	dest := t.selector.Keys(&t.leaves[n.leaf], t.resultFor(id))[0]
	if n.Group().name == dest {
		t.refreshChain(n)
		return false
	}

	t.refreshChain(t.detach(n))

	group := t.byName[dest]
	if group == nil {
		group = t.insertGroup(dest)
	}
	t.place(group, n)
	t.refreshChain(n)
	return true
}

// detach unlinks a leaf node, prunes branches left empty and re-folds the
// remaining path. It returns the deepest surviving node of that path.
func (t *Tree) detach(n *Node) *Node {
	cur := n.parent
	cur.removeChild(n)
	for cur.kind != GroupNode && len(cur.children) == 0 {
		up := cur.parent
		up.removeChild(cur)
		t.drop(cur)
		cur = up
	}

	if cur.kind == GroupNode {
		if len(cur.children) == 0 && !t.seeded[cur.name] {
			t.removeGroup(cur)
		}
		return cur
	}
	return t.refold(cur)
}

// place attaches a leaf node under group, reusing branches that match its
// ancestry, splitting a folded branch where the path diverges inside it and
// creating whatever is missing.
func (t *Tree) place(group *Node, n *Node) {
	path := t.leaves[n.leaf].Ancestry
	cur := group
	for len(path) > 0 {
		next := cur.branchStartingWith(path[0].ID)
		if next == nil {
			cur = t.extend(cur, path)
			break
		}
		k := commonPrefix(next.segments, path)
		if k < len(next.segments) {
			next = t.split(next, k)
		}
		cur = next
		path = path[k:]
	}
	cur.insertOrdered(n)
}
