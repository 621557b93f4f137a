package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gtr/internal/domain"
)

var (
	okPattern       = regexp.MustCompile(`OK\s*\(\s*(\d+)\s+tests?`)
	testsPattern    = regexp.MustCompile(`Tests:\s*(\d+)`)
	failuresPattern = regexp.MustCompile(`Failures:\s*(\d+)`)
	errorsPattern   = regexp.MustCompile(`Errors:\s*(\d+)`)
	failureHeader   = regexp.MustCompile(`^\s*\d+\)\s+([\w\\]+)::(\S+)`)
)

// PHPUnitParser parses PHPUnit console output. It is the fallback when no
// JUnit report was written, for example when PHP dies before PHPUnit can
// finish.
type PHPUnitParser struct{}

// NewPHPUnitParser creates a new PHPUnitParser
func NewPHPUnitParser() *PHPUnitParser {
	return &PHPUnitParser{}
}

// ParseTestCounts extracts passed and failed test case counts from PHPUnit output.
// Returns (passed, failed). If parsing fails, returns (1,0) for success or (0,1) for failure (file-level fallback).
func (p *PHPUnitParser) ParseTestCounts(run domain.FileRun) (passed, failed int) {
	output := run.Output

	if m := okPattern.FindStringSubmatch(output); len(m) >= 2 {
		var total int
		fmt.Sscanf(m[1], "%d", &total)
		return total, 0
	}

	var total, failures, errs int
	if m := testsPattern.FindStringSubmatch(output); len(m) >= 2 {
		fmt.Sscanf(m[1], "%d", &total)
	}
	if m := failuresPattern.FindStringSubmatch(output); len(m) >= 2 {
		fmt.Sscanf(m[1], "%d", &failures)
	}
	if m := errorsPattern.FindStringSubmatch(output); len(m) >= 2 {
		fmt.Sscanf(m[1], "%d", &errs)
	}
	failed = failures + errs
	if total >= failed {
		passed = total - failed
	}
	if passed > 0 || failed > 0 {
		return passed, failed
	}

	if run.Success {
		return 1, 0
	}
	return 0, 1
}

// ParseFailure parses the numbered failure blocks of PHPUnit output
func (p *PHPUnitParser) ParseFailure(run domain.FileRun) []domain.TestFailure {
	var failures []domain.TestFailure
	lines := strings.Split(run.Output, "\n")

	for i, line := range lines {
		if failureHeader.MatchString(line) {
			failure := p.parseTestFailureCase(i, lines)
			failure.FilePath = run.TestPath
			failures = append(failures, *failure)
		}
	}

	return failures
}

// Results derives per test results from console output for the given test
// ids of one file. Tests named in a failure block fail; the others pass when
// PHPUnit reached its summary and fail with the process error otherwise.
func (p *PHPUnitParser) Results(run domain.FileRun, ids []string) ([]domain.TestResult, []domain.TestFailure) {
	failures := p.ParseFailure(run)
	failed := make(map[string]string, len(failures))
	for _, f := range failures {
		failed[f.TestID] = f.Message
	}

	completed := run.Success || len(failures) > 0
	message := ""
	if !completed {
		message = "phpunit did not complete"
		if run.Error != nil {
			message = run.Error.Error()
		}
	}

	var share time.Duration
	if len(ids) > 0 {
		share = run.Duration / time.Duration(len(ids))
	}

	results := make([]domain.TestResult, 0, len(ids))
	for _, id := range ids {
		r := domain.TestResult{ID: id, Status: domain.StatusPassed, Duration: share}
		if msg, ok := failed[id]; ok {
			r.Status = domain.StatusFailed
			r.Message = msg
		} else if !completed {
			r.Status = domain.StatusFailed
			r.Message = message
		}
		results = append(results, r)
	}
	return results, failures
}

func (p *PHPUnitParser) parseTestFailureCase(i int, lines []string) *domain.TestFailure {
	class, name := p.parseTestFailureLine(lines[i])
	testFailure := &domain.TestFailure{
		TestID:     CaseID(class, name),
		TestName:   name,
		StackTrace: []string{},
	}

	var messageLines []string
	var jsonLines []string
	var stackTrace []string
	inJSONBlock := false
	jsonBraceCount := 0
	pastMessage := false

	for j := i + 1; j < len(lines); j++ {
		line := lines[j]
		trimmedLine := strings.TrimSpace(line)

		if failureHeader.MatchString(line) || strings.HasPrefix(trimmedLine, "FAILURES!") || strings.HasPrefix(trimmedLine, "ERRORS!") {
			break
		}

		// Laravel prints response bodies as JSON blocks
		if trimmedLine == "{" && !inJSONBlock && !pastMessage {
			inJSONBlock = true
			jsonBraceCount = 1
			jsonLines = append(jsonLines, line)
			continue
		}
		if inJSONBlock {
			jsonLines = append(jsonLines, line)
			jsonBraceCount += strings.Count(line, "{") - strings.Count(line, "}")
			if jsonBraceCount == 0 {
				testFailure.ErrorDetails = strings.Join(jsonLines, "\n")
				inJSONBlock = false
			}
			continue
		}

		if m := traceLine.FindStringSubmatch(trimmedLine); m != nil {
			pastMessage = true
			stackTrace = append(stackTrace, trimmedLine)
			if testFailure.File == "" && !strings.Contains(m[1], "/vendor/") {
				testFailure.File = m[1]
				fmt.Sscanf(m[2], "%d", &testFailure.Line)
			}
			continue
		}
		if pastMessage {
			continue
		}

		if len(messageLines) == 0 && trimmedLine == "" {
			continue
		}
		messageLines = append(messageLines, line)
	}

	for len(messageLines) > 0 && strings.TrimSpace(messageLines[len(messageLines)-1]) == "" {
		messageLines = messageLines[:len(messageLines)-1]
	}
	testFailure.Message = strings.Join(messageLines, "\n")
	testFailure.StackTrace = stackTrace

	return testFailure
}

func (p *PHPUnitParser) parseTestFailureLine(line string) (class string, name string) {
	m := failureHeader.FindStringSubmatch(line)
	if m == nil {
		return "", ""
	}
	return m[1], m[2]
}
