package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"gtr/internal/domain"
)

// SuiteIDPrefix marks structural node ids so they never collide with class names
const SuiteIDPrefix = "suite:"

// Loader discovers test files and builds the test definition tree
type Loader struct {
	scanner *Scanner
	filter  *Filter
	parser  *Parser
	workers int
	logger  *slog.Logger
}

// NewLoader creates a Loader. workers bounds concurrent file parsing.
func NewLoader(scanner *Scanner, filter *Filter, parser *Parser, workers int, logger *slog.Logger) *Loader {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{scanner: scanner, filter: filter, parser: parser, workers: workers, logger: logger}
}

type parsedFile struct {
	path  string
	class *TestClass
}

// Load scans root, keeps files matching pattern and returns the tree
// project -> folder suites -> fixtures -> test cases. Files that cannot be
// parsed are logged and left out.
func (l *Loader) Load(ctx context.Context, root, pattern string) (*domain.TestNode, error) {
	files, err := l.scanner.Scan(root)
	if err != nil {
		return nil, err
	}
	files = l.filter.FilterByName(files, pattern)

	parsed, err := l.parseFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	tree := l.build(filepath.Clean(root), parsed)
	l.logger.Debug("tests discovered", "root", root, "files", len(files), "fixtures", len(tree.Fixtures()), "tests", tree.CountLeaves())
	return tree, nil
}

func (l *Loader) parseFiles(ctx context.Context, files []string) ([]parsedFile, error) {
	sem := semaphore.NewWeighted(int64(l.workers))
	g, gCtx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	parsed := make([]parsedFile, len(files))

	for i, file := range files {
		i, file := i, file

		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			if err := sem.Acquire(gCtx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			class, err := l.parser.ParseFile(file)
			if err != nil {
				l.logger.Warn("skipping unreadable test file", "file", file, "err", err)
				return nil
			}

			mu.Lock()
			parsed[i] = parsedFile{path: file, class: class}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("test discovery cancelled: %w", err)
	}
	return parsed, nil
}

// build assembles parsed files in scan order, which keeps the tree
// independent of parsing order.
func (l *Loader) build(root string, files []parsedFile) *domain.TestNode {
	project := &domain.TestNode{
		ID:       SuiteIDPrefix + ".",
		Name:     filepath.Base(root),
		FullName: filepath.Base(root),
		Kind:     domain.KindSuite,
	}
	suites := map[string]*domain.TestNode{".": project}
	seen := make(map[string]string)

	for _, f := range files {
		class := f.class
		if class == nil || class.Abstract || len(class.Cases) == 0 {
			continue
		}
		fullName := class.FullName()
		if other, ok := seen[fullName]; ok {
			l.logger.Warn("duplicate test class", "class", fullName, "file", f.path, "first", other)
			continue
		}
		seen[fullName] = f.path

		parent := suiteFor(suites, root, filepath.Dir(f.path))
		fixture := &domain.TestNode{
			ID:         fullName,
			Name:       class.Name,
			FullName:   fullName,
			Kind:       domain.KindFixture,
			Categories: class.Groups,
			FilePath:   f.path,
		}
		for _, c := range class.Cases {
			id := CaseID(fullName, c.Name)
			fixture.Children = append(fixture.Children, &domain.TestNode{
				ID:         id,
				Name:       c.Name,
				FullName:   id,
				Kind:       domain.KindTestCase,
				Categories: c.Groups,
				FilePath:   f.path,
			})
		}
		parent.Children = append(parent.Children, fixture)
	}

	return project
}

// suiteFor returns the folder suite for dir, creating missing ancestors
func suiteFor(suites map[string]*domain.TestNode, root, dir string) *domain.TestNode {
	rel, err := filepath.Rel(root, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = "."
	}
	rel = filepath.ToSlash(rel)
	if s, ok := suites[rel]; ok {
		return s
	}

	parentRel := "."
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		parentRel = rel[:i]
	}
	parent := suiteFor(suites, root, filepath.Join(root, filepath.FromSlash(parentRel)))

	name := rel[strings.LastIndex(rel, "/")+1:]
	s := &domain.TestNode{
		ID:       SuiteIDPrefix + rel,
		Name:     name,
		FullName: rel,
		Kind:     domain.KindSuite,
	}
	parent.Children = append(parent.Children, s)
	suites[rel] = s
	return s
}

// CaseID returns the id of a test method
func CaseID(class, method string) string {
	return class + "::" + method
}
