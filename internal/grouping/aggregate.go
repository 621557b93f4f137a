package grouping

import "time"

// aggregate recomputes Count, Duration and Image of n from its children,
// or from the result provider for leaves.
func (t *Tree) aggregate(n *Node) {
	t.touch(n)
	if n.kind == LeafNode {
		r := t.resultFor(t.leaves[n.leaf].ID)
		n.count = 1
		n.image = ImageFor(r)
		if r != nil {
			n.duration, n.known = r.Duration, true
		} else {
			n.duration, n.known = 0, false
		}
		return
	}

	var (
		count    int
		duration time.Duration
		known    = true
		image    = ImageInit
	)
	for _, c := range n.children {
		count += c.count
		if c.known {
			duration += c.duration
		} else {
			known = false
		}
		image = Worst(image, c.image)
	}
	n.count = count
	n.known = known
	if known {
		n.duration = duration
	} else {
		n.duration = 0
	}
	n.image = image
}

// aggregateSubtree recomputes every node under n, children first
func (t *Tree) aggregateSubtree(n *Node) {
	for _, c := range n.children {
		t.aggregateSubtree(c)
	}
	t.aggregate(n)
}

// refreshChain recomputes n and each of its ancestors
func (t *Tree) refreshChain(n *Node) {
	for m := n; m != nil; m = m.parent {
		t.aggregate(m)
	}
}
