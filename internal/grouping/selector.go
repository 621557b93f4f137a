package grouping

import (
	"strings"
	"time"

	"gtr/internal/domain"
)

// Top-level group names
const (
	GroupNone         = "None"
	GroupNotRun       = "Not Run"
	GroupFailed       = "Failed"
	GroupPassed       = "Passed"
	GroupIgnored      = "Ignored"
	GroupSkipped      = "Skipped"
	GroupInconclusive = "Inconclusive"
	GroupFast         = "Fast"
	GroupMedium       = "Medium"
	GroupSlow         = "Slow"
)

const (
	slowThreshold   = time.Second
	mediumThreshold = 100 * time.Millisecond
)

// IsSentinel reports whether name is a fallback bucket that sorts last
func IsSentinel(name string) bool {
	return name == GroupNone || name == GroupNotRun
}

// KeySelector maps a leaf and its current result to top-level group names
type KeySelector interface {
	// Keys returns the ordered set of groups the leaf belongs to. result is nil
	// when the test has not run.
	Keys(leaf *LeafTest, result *domain.TestResult) []string
	// Seeds returns the groups created up front, even when empty
	Seeds() []string
	// Dynamic reports whether keys depend on results
	Dynamic() bool
}

// NewSelector returns the selector for a strategy
func NewSelector(strategy Strategy, includeAncestors bool) KeySelector {
	switch strategy {
	case ByOutcome:
		return OutcomeSelector{}
	case ByDuration:
		return DurationSelector{}
	default:
		return CategorySelector{IncludeAncestors: includeAncestors}
	}
}

// CategorySelector groups by declared categories. A leaf may land in several groups.
type CategorySelector struct {
	IncludeAncestors bool
}

func (s CategorySelector) Keys(leaf *LeafTest, _ *domain.TestResult) []string {
	seen := make(map[string]bool)
	var keys []string
	add := func(categories []string) {
		for _, c := range categories {
			c = strings.TrimSpace(c)
			if c == "" || seen[c] {
				continue
			}
			seen[c] = true
			keys = append(keys, c)
		}
	}

	add(leaf.Categories)
	if s.IncludeAncestors {
		for i := len(leaf.Ancestry) - 1; i >= 0; i-- {
			add(leaf.Ancestry[i].Categories)
		}
	}
	if len(keys) == 0 {
		return []string{GroupNone}
	}
	return keys
}

func (CategorySelector) Seeds() []string { return nil }

func (CategorySelector) Dynamic() bool { return false }

// OutcomeSelector groups by the status of the latest result
type OutcomeSelector struct{}

func (OutcomeSelector) Keys(_ *LeafTest, result *domain.TestResult) []string {
	return []string{outcomeKey(result)}
}

func outcomeKey(result *domain.TestResult) string {
	if result == nil {
		return GroupNotRun
	}
	switch result.Status {
	case domain.StatusFailed:
		return GroupFailed
	case domain.StatusPassed, domain.StatusWarning:
		return GroupPassed
	case domain.StatusSkipped:
		if result.IsIgnored() {
			return GroupIgnored
		}
		return GroupSkipped
	case domain.StatusInconclusive:
		return GroupInconclusive
	}
	return GroupNotRun
}

func (OutcomeSelector) Seeds() []string {
	return []string{GroupFailed, GroupPassed, GroupIgnored, GroupSkipped, GroupInconclusive, GroupNotRun}
}

func (OutcomeSelector) Dynamic() bool { return true }

// DurationSelector buckets by execution time
type DurationSelector struct{}

func (DurationSelector) Keys(_ *LeafTest, result *domain.TestResult) []string {
	return []string{durationKey(result)}
}

func durationKey(result *domain.TestResult) string {
	switch {
	case result == nil:
		return GroupNotRun
	case result.Duration > slowThreshold:
		return GroupSlow
	case result.Duration > mediumThreshold:
		return GroupMedium
	default:
		return GroupFast
	}
}

func (DurationSelector) Seeds() []string {
	return []string{GroupFast, GroupMedium, GroupSlow, GroupNotRun}
}

func (DurationSelector) Dynamic() bool { return true }
