package execution

import (
	"context"
	"time"

	"gtr/internal/domain"
)

// FileJob is one PHPUnit invocation: a test file and the tests it holds
type FileJob struct {
	Path      string
	FixtureID string
	CaseIDs   []string // tests expected to run
	Ignored   []string // tests excluded by group, reported without running
}

// Report is the outcome of executing a set of jobs
type Report struct {
	Runs      []domain.FileRun
	Failures  []domain.TestFailure
	Duration  time.Duration
	Cancelled bool // the caller cancelled the run
	Stopped   bool // fail-fast stopped the run after a failure
}

// Observer receives results while a run is in progress. Methods are called
// from worker goroutines.
type Observer interface {
	OnTestFinished(result domain.TestResult)
	OnFileFinished(run domain.FileRun, fixtureID string)
}

// Progress reports completed files
type Progress interface {
	Update(completed, passed, failed int)
	Finish()
}

// Executor executes test files and reports per test results
type Executor interface {
	Execute(ctx context.Context, jobs []FileJob, observer Observer) (*Report, error)
}

// NopObserver ignores every notification
type NopObserver struct{}

func (NopObserver) OnTestFinished(domain.TestResult)      {}
func (NopObserver) OnFileFinished(domain.FileRun, string) {}

// JobsFor builds one job per fixture of root. Tests whose own or class
// categories contain an excluded group are marked ignored.
func JobsFor(root *domain.TestNode, excludeGroups []string) []FileJob {
	excluded := make(map[string]bool, len(excludeGroups))
	for _, g := range excludeGroups {
		excluded[g] = true
	}
	hasExcluded := func(groups []string) bool {
		for _, g := range groups {
			if excluded[g] {
				return true
			}
		}
		return false
	}

	var jobs []FileJob
	for _, fixture := range root.Fixtures() {
		job := FileJob{Path: fixture.FilePath, FixtureID: fixture.ID}
		fixtureExcluded := hasExcluded(fixture.Categories)
		for _, c := range fixture.Children {
			if !c.IsLeaf() {
				continue
			}
			if fixtureExcluded || hasExcluded(c.Categories) {
				job.Ignored = append(job.Ignored, c.ID)
				continue
			}
			job.CaseIDs = append(job.CaseIDs, c.ID)
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// ignoredResults reports excluded tests as skipped with the Ignored label
func ignoredResults(job FileJob) []domain.TestResult {
	results := make([]domain.TestResult, 0, len(job.Ignored))
	for _, id := range job.Ignored {
		results = append(results, domain.TestResult{
			ID:      id,
			Status:  domain.StatusSkipped,
			Label:   domain.LabelIgnored,
			Message: "excluded by group",
		})
	}
	return results
}
