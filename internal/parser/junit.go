package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gtr/internal/domain"
)

type junitSuites struct {
	Suites []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name   string       `xml:"name,attr"`
	Suites []junitSuite `xml:"testsuite"`
	Cases  []junitCase  `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	Class     string        `xml:"class,attr"`
	ClassName string        `xml:"classname,attr"`
	File      string        `xml:"file,attr"`
	Line      int           `xml:"line,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitMessage `xml:"failure"`
	Error     *junitMessage `xml:"error"`
	Warning   *junitMessage `xml:"warning"`
	Skipped   *junitMessage `xml:"skipped"`
}

type junitMessage struct {
	Type    string `xml:"type,attr"`
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

var (
	dataSetSuffix = regexp.MustCompile(`\s+with data set\s+.*$`)
	traceLine     = regexp.MustCompile(`^(.+\.php):(\d+)$`)
)

// JUnitParser reads the report written by phpunit --log-junit
type JUnitParser struct{}

// NewJUnitParser creates a new JUnitParser
func NewJUnitParser() *JUnitParser {
	return &JUnitParser{}
}

// ParseFile parses a JUnit report on disk
func (p *JUnitParser) ParseFile(path string) ([]domain.TestResult, []domain.TestFailure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open junit report: %w", err)
	}
	defer f.Close()
	return p.Parse(f)
}

// Parse returns one result per test method. Data provider rows of the same
// method are merged: durations add up and the worst status wins.
func (p *JUnitParser) Parse(r io.Reader) ([]domain.TestResult, []domain.TestFailure, error) {
	var doc junitSuites
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse junit report: %w", err)
	}

	var (
		results  []domain.TestResult
		failures []domain.TestFailure
		index    = make(map[string]int)
	)
	var visit func(s junitSuite)
	visit = func(s junitSuite) {
		for _, c := range s.Cases {
			result, failure := convertCase(c)
			if i, ok := index[result.ID]; ok {
				results[i] = mergeResults(results[i], result)
			} else {
				index[result.ID] = len(results)
				results = append(results, result)
			}
			if failure != nil {
				failures = append(failures, *failure)
			}
		}
		for _, child := range s.Suites {
			visit(child)
		}
	}
	for _, s := range doc.Suites {
		visit(s)
	}

	return results, failures, nil
}

// CaseID returns the test id for a JUnit case, dropping data set suffixes
func CaseID(class, name string) string {
	return class + "::" + dataSetSuffix.ReplaceAllString(name, "")
}

func convertCase(c junitCase) (domain.TestResult, *domain.TestFailure) {
	class := c.Class
	if class == "" {
		class = strings.ReplaceAll(c.ClassName, ".", `\`)
	}
	result := domain.TestResult{
		ID:       CaseID(class, c.Name),
		Status:   domain.StatusPassed,
		Duration: parseSeconds(c.Time),
	}

	var detail *junitMessage
	switch {
	case c.Failure != nil:
		result.Status = domain.StatusFailed
		detail = c.Failure
	case c.Error != nil:
		result.Status = errorStatus(c.Error.Type)
		detail = c.Error
	case c.Warning != nil:
		result.Status = domain.StatusWarning
		detail = c.Warning
	case c.Skipped != nil:
		result.Status = domain.StatusSkipped
		detail = c.Skipped
	}
	if detail == nil {
		return result, nil
	}

	body := strings.TrimSpace(detail.Body)
	result.Message = firstMessage(detail.Message, body, result.ID)
	if result.Status != domain.StatusFailed {
		return result, nil
	}

	failure := &domain.TestFailure{
		TestID:       result.ID,
		TestName:     c.Name,
		FilePath:     c.File,
		ErrorDetails: detail.Type,
		StackTrace:   []string{},
		File:         c.File,
		Line:         c.Line,
		Message:      result.Message,
	}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if traceLine.MatchString(line) {
			failure.StackTrace = append(failure.StackTrace, line)
		}
	}
	return result, failure
}

// errorStatus maps PHPUnit error types that are not real errors
func errorStatus(errType string) domain.TestStatus {
	switch {
	case strings.Contains(errType, "Incomplete"):
		return domain.StatusInconclusive
	case strings.Contains(errType, "Skipped"):
		return domain.StatusSkipped
	case strings.Contains(errType, "Risky"), strings.Contains(errType, "Warning"):
		return domain.StatusWarning
	}
	return domain.StatusFailed
}

// firstMessage picks the assertion text, dropping the leading test name line
func firstMessage(attr, body, id string) string {
	if attr != "" {
		return attr
	}
	lines := strings.Split(body, "\n")
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), strings.SplitN(id, "::", 2)[0]) {
		lines = lines[1:]
	}
	var kept []string
	for _, line := range lines {
		if traceLine.MatchString(strings.TrimSpace(line)) {
			break
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

var statusRank = map[domain.TestStatus]int{
	domain.StatusPassed:       0,
	domain.StatusSkipped:      1,
	domain.StatusInconclusive: 2,
	domain.StatusWarning:      3,
	domain.StatusFailed:       4,
}

func mergeResults(a, b domain.TestResult) domain.TestResult {
	merged := a
	merged.Duration = a.Duration + b.Duration
	if statusRank[b.Status] > statusRank[a.Status] {
		merged.Status = b.Status
		merged.Message = b.Message
	}
	return merged
}

func parseSeconds(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
