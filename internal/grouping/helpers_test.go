package grouping

import (
	"fmt"
	"strings"
	"time"

	"gtr/internal/domain"
)

type stubResults map[string]domain.TestResult

func (s stubResults) ResultFor(id string) (domain.TestResult, bool) {
	r, ok := s[id]
	return r, ok
}

func suite(name string, children ...*domain.TestNode) *domain.TestNode {
	return &domain.TestNode{ID: "suite:" + name, Name: name, FullName: name, Kind: domain.KindSuite, Children: children}
}

func fixture(name string, categories []string, children ...*domain.TestNode) *domain.TestNode {
	for _, c := range children {
		c.ID = name + "::" + c.Name
		c.FullName = c.ID
	}
	return &domain.TestNode{ID: name, Name: name, FullName: name, Kind: domain.KindFixture, Categories: categories, Children: children}
}

func testCase(name string, categories ...string) *domain.TestNode {
	return &domain.TestNode{Name: name, Kind: domain.KindTestCase, Categories: categories}
}

func passed(d time.Duration) domain.TestResult {
	return domain.TestResult{Status: domain.StatusPassed, Duration: d}
}

func failed(d time.Duration) domain.TestResult {
	return domain.TestResult{Status: domain.StatusFailed, Duration: d}
}

// shape renders the tree with labels, images and durations for comparisons
func shape(t *Tree) string {
	var b strings.Builder
	t.Walk(func(n *Node) bool {
		d, known := n.Duration()
		dur := "?"
		if known {
			dur = d.String()
		}
		fmt.Fprintf(&b, "%s%s [%s %s %s]\n", strings.Repeat("  ", n.Depth()), n.Label(), n.Kind(), n.Image(), dur)
		return true
	})
	return b.String()
}

func groupNames(t *Tree) []string {
	var names []string
	for _, g := range t.Groups() {
		names = append(names, g.Name())
	}
	return names
}

func childNames(n *Node) []string {
	var names []string
	for _, c := range n.Children() {
		names = append(names, c.Name())
	}
	return names
}

// twoFixtures is an assembly with two fixtures of two test cases each
func twoFixtures() *domain.TestNode {
	return suite("Assembly",
		fixture("FirstTest", nil, testCase("testA"), testCase("testB")),
		fixture("SecondTest", nil, testCase("testA"), testCase("testB")),
	)
}

// layered has nested folder suites that fold into dotted names
func layered() *domain.TestNode {
	return suite("app",
		suite("tests",
			suite("Unit",
				fixture("UserTest", nil, testCase("testCreate"), testCase("testDelete")),
			),
			suite("Feature",
				suite("Api",
					fixture("LoginTest", nil, testCase("testLogin")),
				),
				fixture("HomeTest", nil, testCase("testIndex")),
			),
		),
	)
}
