package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"gtr/internal/config"
	"gtr/internal/domain"
	"gtr/internal/grouping"
)

// Formatter formats and displays console output
type Formatter struct {
	config *config.Config
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to color.Output
func NewFormatter(cfg *config.Config) *Formatter {
	return &Formatter{config: cfg, out: color.Output}
}

// NewFormatterWithWriter creates a Formatter writing to out
func NewFormatterWithWriter(cfg *config.Config, out io.Writer) *Formatter {
	return &Formatter{config: cfg, out: out}
}

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	white  = color.New(color.FgWhite)
)

// PrintMetaStats prints the statistics table of a stored run
func (f *Formatter) PrintMetaStats(output *domain.TestResultsOutput) {
	meta := output.Meta

	fmt.Fprint(f.out, "\n")
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.out, "║                    Test Execution Statistics                  ║")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(f.out)

	rows := []struct {
		label string
		value string
		c     *color.Color
	}{
		{"Run", meta.RunID, white},
		{"Total Test Files", fmt.Sprint(meta.TotalTestFiles), white},
		{"Passed Test Files", fmt.Sprint(meta.PassedTestFiles), green},
		{"Failed Test Files", fmt.Sprint(meta.FailedTestFiles), red},
		{"Total Test Cases", fmt.Sprint(meta.TotalTestCases), white},
		{"Failed Test Cases", fmt.Sprint(meta.FailedTestCases), red},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), white},
		{"Workers", fmt.Sprint(meta.Workers), white},
		{"Timestamp", meta.Timestamp, white},
	}

	fmt.Fprintln(f.out, "┌─────────────────────────────────┬──────────────────────────────────────┐")
	for i, row := range rows {
		fmt.Fprintf(f.out, "│ %-31s │ ", row.label)
		row.c.Fprintf(f.out, "%-36s", row.value)
		fmt.Fprintln(f.out, " │")
		if i < len(rows)-1 {
			fmt.Fprintln(f.out, "├─────────────────────────────────┼──────────────────────────────────────┤")
		}
	}
	fmt.Fprintln(f.out, "└─────────────────────────────────┴──────────────────────────────────────┘")

	fmt.Fprintln(f.out)
	switch {
	case meta.Cancelled:
		yellow.Fprintln(f.out, "! Run was cancelled before all tests finished")
	case meta.FailedTestCases == 0 && meta.FailedTestFiles == 0:
		green.Fprintln(f.out, "✓ All tests passed!")
	default:
		red.Fprintf(f.out, "✗ %d test file(s) failed with %d test case failure(s)\n", meta.FailedTestFiles, meta.FailedTestCases)
	}
	if len(output.Details) > 0 {
		fmt.Fprintln(f.out)
		f.printFailures(output.Details)
	}
}

// printFailures lists each failure with the first line of its message
func (f *Formatter) printFailures(failures []domain.TestFailure) {
	for _, failure := range failures {
		name := failure.TestID
		if name == "" {
			name = failure.TestName
		}
		red.Fprintf(f.out, "  ✗ %s\n", name)
		if msg := firstLine(failure.Message); msg != "" {
			fmt.Fprintf(f.out, "      %s\n", msg)
		}
		if failure.File != "" && failure.Line > 0 {
			yellow.Fprintf(f.out, "      %s:%d\n", f.relative(failure.File), failure.Line)
		}
	}
}

// PrintGroupedTree prints the grouped tree with box drawing connectors.
// Leaves are printed only when showLeaves is set.
func (f *Formatter) PrintGroupedTree(tree *grouping.Tree, showLeaves bool) {
	cyan.Fprintf(f.out, "Grouped by %s: %d test(s)\n\n", tree.Strategy(), tree.LeafCount())
	for _, g := range tree.Groups() {
		f.printNode(g, "", showLeaves)
	}
}

func (f *Formatter) printNode(n *grouping.Node, prefix string, showLeaves bool) {
	st := styleFor(n.Image())
	st.term.Fprint(f.out, st.glyph)
	fmt.Fprint(f.out, " ")
	if n.Kind() == grouping.GroupNode {
		cyan.Fprint(f.out, n.Label())
	} else {
		fmt.Fprint(f.out, n.Label())
	}
	if d, known := n.Duration(); known && d > 0 {
		white.Fprintf(f.out, " %s", formatDuration(d))
	}
	fmt.Fprintln(f.out)

	var children []*grouping.Node
	for _, c := range n.Children() {
		if c.IsLeaf() && !showLeaves {
			continue
		}
		children = append(children, c)
	}
	for i, c := range children {
		last := i == len(children)-1
		connector, next := "├── ", "│   "
		if last {
			connector, next = "└── ", "    "
		}
		fmt.Fprint(f.out, prefix+connector)
		f.printNode(c, prefix+next, showLeaves)
	}
}

// PrintTestList prints the discovered test files, optionally with their
// test cases. Tests in failed are marked with [F] (from the last run).
func (f *Formatter) PrintTestList(root *domain.TestNode, showTestCases bool, failed map[string]bool) {
	fixtures := root.Fixtures()
	if showTestCases {
		green.Fprintf(f.out, "Found %d test file(s) with %d test case(s):\n\n", len(fixtures), root.CountLeaves())
	} else {
		green.Fprintf(f.out, "Found %d test file(s):\n\n", len(fixtures))
	}

	for i, fixture := range fixtures {
		isLastFile := i == len(fixtures)-1
		marker := ""
		for _, c := range fixture.Children {
			if failed[c.ID] {
				marker = " " + red.Sprint("[F]")
				break
			}
		}

		connector := "├── "
		if isLastFile {
			connector = "└── "
		}
		fmt.Fprintf(f.out, "%s%s%s\n", connector, cyan.Sprint(f.relative(fixture.FilePath)), marker)

		if !showTestCases {
			continue
		}
		indent := "│   "
		if isLastFile {
			indent = "    "
		}
		for j, c := range fixture.Children {
			caseConnector := "├── "
			if j == len(fixture.Children)-1 {
				caseConnector = "└── "
			}
			name := yellow.Sprint(c.Name)
			if failed[c.ID] {
				name = red.Sprint(c.Name)
			}
			if len(c.Categories) > 0 {
				name += white.Sprintf(" [%s]", strings.Join(c.Categories, ", "))
			}
			fmt.Fprintf(f.out, "%s%s%s\n", indent, caseConnector, name)
		}
		if i < len(fixtures)-1 {
			fmt.Fprintln(f.out, strings.TrimRight(indent, " "))
		}
	}
}

func (f *Formatter) relative(path string) string {
	if f.config == nil {
		return path
	}
	if rel, err := filepath.Rel(f.config.ProjectPath, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
