package parser

import "gtr/internal/domain"

// Parser reads test results from PHPUnit console output
type Parser interface {
	ParseFailure(run domain.FileRun) []domain.TestFailure
	ParseTestCounts(run domain.FileRun) (passed, failed int)
	Results(run domain.FileRun, ids []string) ([]domain.TestResult, []domain.TestFailure)
}

// ReportParser turns a JUnit report file into per test results
type ReportParser interface {
	ParseFile(path string) ([]domain.TestResult, []domain.TestFailure, error)
}
