package results

import (
	"sort"

	"gtr/internal/domain"
)

// Store holds the latest result of every test. It implements
// grouping.ResultProvider and, like the tree, is only used from the owner
// goroutine.
type Store struct {
	results map[string]domain.TestResult
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{results: make(map[string]domain.TestResult)}
}

// FromOutput creates a Store holding the results of a stored run
func FromOutput(output *domain.TestResultsOutput) *Store {
	s := NewStore()
	if output != nil {
		for _, r := range output.Results {
			s.Put(r)
		}
	}
	return s
}

// Put records r, replacing any previous result for the same test
func (s *Store) Put(r domain.TestResult) {
	s.results[r.ID] = r
}

// ResultFor returns the latest result of a test
func (s *Store) ResultFor(id string) (domain.TestResult, bool) {
	r, ok := s.results[id]
	return r, ok
}

func (s *Store) Len() int { return len(s.results) }

// All returns every result ordered by test id
func (s *Store) All() []domain.TestResult {
	all := make([]domain.TestResult, 0, len(s.results))
	for _, r := range s.results {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// Counts returns the number of results per status
func (s *Store) Counts() map[domain.TestStatus]int {
	counts := make(map[domain.TestStatus]int)
	for _, r := range s.results {
		counts[r.Status]++
	}
	return counts
}
