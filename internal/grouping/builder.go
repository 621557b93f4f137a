package grouping

import "gtr/internal/domain"

type buildOptions struct {
	includeAncestors bool
}

// Option configures Build
type Option func(*buildOptions)

// WithAncestorCategories controls whether categories declared on ancestor
// fixtures and suites apply to the tests they contain. Enabled by default.
func WithAncestorCategories(include bool) Option {
	return func(o *buildOptions) {
		o.includeAncestors = include
	}
}

// Build creates the grouped display tree of root for a strategy.
// It never fails; an empty root yields only the strategy's seeded groups.
// A test whose id repeats an earlier one is left out of the tree, since a
// result can only ever be attributed to the first.
func Build(root *domain.TestNode, strategy Strategy, provider ResultProvider, opts ...Option) *Tree {
	o := buildOptions{includeAncestors: true}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Tree{
		strategy: strategy,
		selector: NewSelector(strategy, o.includeAncestors),
		provider: provider,
		leafByID: make(map[string]int),
		byName:   make(map[string]*Node),
		seeded:   make(map[string]bool),
		index:    make(map[string][]*Node),
		touched:  make(map[*Node]bool),
	}

	for _, name := range t.selector.Seeds() {
		t.appendGroup(name)
		t.seeded[name] = true
	}

	for _, leaf := range CollectLeaves(root) {
		if _, dup := t.leafByID[leaf.ID]; dup {
			continue
		}
		t.leafByID[leaf.ID] = len(t.leaves)
		t.leaves = append(t.leaves, leaf)
	}
	for i := range t.leaves {
		leaf := &t.leaves[i]
		for _, key := range t.selector.Keys(leaf, t.resultFor(leaf.ID)) {
			group := t.byName[key]
			if group == nil {
				group = t.appendGroup(key)
			}
			t.graft(group, i)
		}
	}

	for _, g := range t.groups {
		for i := 0; i < len(g.children); i++ {
			t.foldSubtree(g.children[i])
		}
	}
	t.sortGroups()
	for _, g := range t.groups {
		t.aggregateSubtree(g)
	}
	t.tracking = true
	return t
}

// graft adds a leaf under group, reusing or creating one unfolded branch per
// ancestor segment. Leaves arrive in document order, so appending keeps
// siblings in source order.
func (t *Tree) graft(group *Node, index int) {
	cur := group
	for _, seg := range t.leaves[index].Ancestry {
		next := cur.branchStartingWith(seg.ID)
		if next == nil {
			next = t.newBranch([]Segment{seg})
			cur.insertOrdered(next)
		}
		cur = next
	}
	cur.insertOrdered(t.newLeaf(index))
}
