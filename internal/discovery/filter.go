package discovery

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter filters test files by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName filters test files by name pattern.
// Patterns like "*UserTest.php" or "*Payment*" are matched against the file
// name; patterns containing a slash such as "Feature/**/*Test.php" are
// matched against the whole path. A pattern without wildcards matches any
// file name containing it.
func (f *Filter) FilterByName(tests []string, pattern string) []string {
	if pattern == "" {
		return tests
	}

	var filtered []string
	for _, test := range tests {
		if f.Matches(test, pattern) {
			filtered = append(filtered, test)
		}
	}
	return filtered
}

// Matches reports whether a single test file matches pattern
func (f *Filter) Matches(test, pattern string) bool {
	if pattern == "" {
		return true
	}
	testName := filepath.Base(test)
	hasWildcard := strings.ContainsAny(pattern, "*?")

	if strings.Contains(pattern, "/") {
		p := pattern
		if !strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "**/") {
			p = "**/" + p
		}
		matched, err := doublestar.Match(p, filepath.ToSlash(test))
		return err == nil && matched
	}

	if matched, err := doublestar.Match(pattern, testName); err == nil && matched {
		return true
	}

	if !hasWildcard {
		return strings.Contains(testName, pattern)
	}

	// Loose match: every literal part of the pattern appears in the name
	hasPart := false
	for _, part := range strings.FieldsFunc(pattern, func(r rune) bool { return r == '*' || r == '?' }) {
		if !strings.Contains(testName, part) {
			return false
		}
		hasPart = true
	}
	return hasPart
}
