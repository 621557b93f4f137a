package ui

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"gtr/internal/domain"
	"gtr/internal/grouping"
)

// ResultLookup returns the latest result of a test
type ResultLookup interface {
	ResultFor(id string) (domain.TestResult, bool)
}

// formatNodeDetails describes the selected node using tview colour tags
func formatNodeDetails(tree *grouping.Tree, n *grouping.Node, results ResultLookup, failures map[string]domain.TestFailure) string {
	if n == nil || tree == nil {
		return ""
	}
	if !n.IsLeaf() {
		return formatBranchDetails(n)
	}

	leaf := tree.Leaf(n)
	if leaf == nil {
		return ""
	}
	var b strings.Builder
	st := styleFor(n.Image())
	fmt.Fprintf(&b, "[%s]%s %s[white]\n", st.tag, st.glyph, leaf.FullName)
	if len(leaf.Categories) > 0 {
		fmt.Fprintf(&b, "[cyan]Groups:[white] %s\n", strings.Join(leaf.Categories, ", "))
	}

	var result *domain.TestResult
	if results != nil {
		if r, ok := results.ResultFor(leaf.ID); ok {
			result = &r
		}
	}
	if result == nil {
		b.WriteString("[gray]Not run yet[white]\n")
		return b.String()
	}

	status := string(result.Status)
	if result.Label != "" {
		status += " (" + result.Label + ")"
	}
	fmt.Fprintf(&b, "[cyan]Status:[white] %s\n", status)
	fmt.Fprintf(&b, "[cyan]Duration:[white] %s\n\n", formatDuration(result.Duration))

	if failure, ok := failures[leaf.ID]; ok {
		b.WriteString(formatFailureDetails(failure))
	} else if result.Message != "" {
		fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n", result.Message)
	}
	return b.String()
}

func formatBranchDetails(n *grouping.Node) string {
	var b strings.Builder
	st := styleFor(n.Image())
	fmt.Fprintf(&b, "[%s]%s %s[white]\n", st.tag, st.glyph, n.Name())

	var path []string
	for _, p := range n.Path() {
		path = append(path, p.Name())
	}
	fmt.Fprintf(&b, "[cyan]Path:[white] %s\n", strings.Join(path, " / "))
	fmt.Fprintf(&b, "[cyan]Kind:[white] %s\n", n.Kind())
	fmt.Fprintf(&b, "[cyan]Tests:[white] %d\n", n.Count())
	if d, known := n.Duration(); known {
		fmt.Fprintf(&b, "[cyan]Duration:[white] %s\n", formatDuration(d))
	} else {
		b.WriteString("[cyan]Duration:[white] [gray]not all tests have run[white]\n")
	}
	fmt.Fprintf(&b, "[cyan]Outcome:[white] %s\n", n.Image())
	return b.String()
}

// formatFailureDetails formats a test failure for display using tview color tags ([red], [cyan], etc.)
func formatFailureDetails(failure domain.TestFailure) string {
	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "[red]✗ Test: %s[white]\n\n", failure.TestName)

	if failure.FilePath != "" {
		fmt.Fprintf(w, "[cyan]File: %s[white]\n", failure.FilePath)
	}
	if failure.File != "" && failure.Line > 0 {
		fmt.Fprintf(w, "[yellow]Location: %s:%d[white]\n", failure.File, failure.Line)
	}
	fmt.Fprintf(w, "\n")

	if failure.Message != "" {
		fmt.Fprintf(w, "[yellow]Message:[white]\n%s\n\n", failure.Message)
	}
	if failure.ErrorDetails != "" {
		fmt.Fprintf(w, "[yellow]Error Details:[white]\n%s\n\n", failure.ErrorDetails)
	}

	if len(failure.StackTrace) > 0 {
		fmt.Fprintf(w, "[yellow]Stack Trace:[white]\n")
		for i, trace := range failure.StackTrace {
			if i < 10 {
				fmt.Fprintf(w, "  %s\n", trace)
			}
		}
		if len(failure.StackTrace) > 10 {
			fmt.Fprintf(w, "  [gray]... and %d more lines[white]\n", len(failure.StackTrace)-10)
		}
	}

	w.Flush()
	return builder.String()
}
