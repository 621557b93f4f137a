package domain

import "time"

// TestStatus is the outcome status of a single test case
type TestStatus string

const (
	StatusPassed       TestStatus = "passed"
	StatusFailed       TestStatus = "failed"
	StatusWarning      TestStatus = "warning"
	StatusInconclusive TestStatus = "inconclusive"
	StatusSkipped      TestStatus = "skipped"
)

// LabelIgnored marks a skipped test that was excluded on purpose
const LabelIgnored = "Ignored"

// TestResult is the result of one test case
type TestResult struct {
	ID       string        `json:"id"`
	Status   TestStatus    `json:"status"`
	Label    string        `json:"label,omitempty"`
	Duration time.Duration `json:"duration"`
	Message  string        `json:"message,omitempty"`
}

// IsIgnored reports whether the result is a skip labelled Ignored
func (r TestResult) IsIgnored() bool {
	return r.Status == StatusSkipped && r.Label == LabelIgnored
}

// FileRun represents the result of executing one test file
type FileRun struct {
	TestPath string        // Path to the test file that was executed
	Success  bool          // Whether the process exited cleanly
	Output   string        // Raw output from PHPUnit
	Error    error         // Error if execution failed
	Duration time.Duration // Time taken to execute
	Cases    []TestResult  // Per test case results
	Failures []TestFailure // Failure details of the failed cases
}

// Failed reports whether any case of the file failed or the process crashed
func (r FileRun) Failed() bool {
	if !r.Success && len(r.Cases) == 0 {
		return true
	}
	for _, c := range r.Cases {
		if c.Status == StatusFailed {
			return true
		}
	}
	return false
}

// TestResultsMeta contains metadata about a test run
type TestResultsMeta struct {
	RunID           string  `json:"run_id"`
	TotalTestFiles  int     `json:"total_test_files"`
	FailedTestFiles int     `json:"failed_test_files"`
	PassedTestFiles int     `json:"passed_test_files"`
	TotalTestCases  int     `json:"total_test_cases"`
	FailedTestCases int     `json:"failed_test_cases"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Workers         int     `json:"workers"`
	Cancelled       bool    `json:"cancelled,omitempty"`
	Timestamp       string  `json:"timestamp"`
}

// TestResultsOutput is the complete output structure for test results
type TestResultsOutput struct {
	Meta    TestResultsMeta `json:"meta"`
	Results []TestResult    `json:"results"`
	Details []TestFailure   `json:"details"`
}
