package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Scanner scans for test files in a directory
type Scanner struct {
	skipDirs map[string]bool
	exclude  []string
}

// NewScanner creates a new Scanner with the given directories to skip.
// Entries containing a glob character are matched as doublestar patterns
// against the path relative to the scanned root.
func NewScanner(skipDirs []string) *Scanner {
	s := &Scanner{skipDirs: make(map[string]bool)}
	for _, dir := range skipDirs {
		if strings.ContainsAny(dir, "*?[{") {
			s.exclude = append(s.exclude, dir)
			continue
		}
		s.skipDirs[dir] = true
	}
	return s
}

// Scan finds all test files in the given root directory in lexical order
func (s *Scanner) Scan(root string) ([]string, error) {
	var testfiles []string

	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") || s.skipDirs[name] || s.excluded(root, path) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasSuffix(d.Name(), "Test.php") && !s.excluded(root, path) {
			testfiles = append(testfiles, path)
		}
		return nil
	})

	return testfiles, err
}

func (s *Scanner) excluded(root, path string) bool {
	if len(s.exclude) == 0 {
		return false
	}
	relPath, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range s.exclude {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
	}
	return false
}
