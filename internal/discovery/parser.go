package discovery

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// TestClass is a PHPUnit test class found in a source file
type TestClass struct {
	Namespace string
	Name      string
	Abstract  bool
	Groups    []string // class level @group / #[Group]
	Cases     []TestMethod
}

// TestMethod is one test method in source order
type TestMethod struct {
	Name   string
	Groups []string
}

// FullName returns the fully qualified class name
func (c *TestClass) FullName() string {
	if c.Namespace == "" {
		return c.Name
	}
	return c.Namespace + `\` + c.Name
}

var (
	namespacePattern = regexp.MustCompile(`^\s*namespace\s+([\w\\]+)\s*;`)
	classPattern     = regexp.MustCompile(`^\s*((?:(?:abstract|final|readonly)\s+)*)class\s+(\w+)`)
	functionPattern  = regexp.MustCompile(`^\s*(?:(?:public|protected|private|static|final|abstract)\s+)*function\s+(\w+)\s*\(`)
	groupTagPattern  = regexp.MustCompile(`@group\s+([^\s*]+)`)
	groupAttrPattern = regexp.MustCompile(`#\[\s*(?:\\?PHPUnit\\Framework\\Attributes\\)?Group\(\s*(?:name:\s*)?['"]([^'"]+)['"]\s*\)`)
	testTagPattern   = regexp.MustCompile(`@test\b`)
	testAttrPattern  = regexp.MustCompile(`#\[\s*(?:\\?PHPUnit\\Framework\\Attributes\\)?Test\s*[\]\(,]`)
)

// Parser parses test files to extract test cases
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// pending collects docblock tags and attributes until the declaration they
// belong to is reached
type pending struct {
	groups []string
	isTest bool
}

func (p *pending) reset() {
	p.groups = nil
	p.isTest = false
}

// ParseFile reads a test file and returns its class. A file without a
// class returns a nil class and no error.
func (p *Parser) ParseFile(filePath string) (*TestClass, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}
	return p.Parse(content)
}

// Parse extracts the first test class from PHP source
func (p *Parser) Parse(content []byte) (*TestClass, error) {
	var (
		class     *TestClass
		namespace string
		tags      pending
		seen      = make(map[string]bool)
	)

	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()

		if m := namespacePattern.FindStringSubmatch(line); m != nil {
			namespace = m[1]
			continue
		}

		for _, m := range groupTagPattern.FindAllStringSubmatch(line, -1) {
			tags.groups = appendUnique(tags.groups, m[1])
		}
		for _, m := range groupAttrPattern.FindAllStringSubmatch(line, -1) {
			tags.groups = appendUnique(tags.groups, m[1])
		}
		if testTagPattern.MatchString(line) || testAttrPattern.MatchString(line) {
			tags.isTest = true
		}

		if m := classPattern.FindStringSubmatch(line); m != nil {
			if class != nil {
				// one test class per file
				break
			}
			class = &TestClass{
				Namespace: namespace,
				Name:      m[2],
				Abstract:  strings.Contains(m[1], "abstract"),
				Groups:    tags.groups,
			}
			tags.reset()
			continue
		}

		if m := functionPattern.FindStringSubmatch(line); m != nil {
			name := m[1]
			if class != nil && (strings.HasPrefix(name, "test") || tags.isTest) && !seen[name] {
				seen[name] = true
				class.Cases = append(class.Cases, TestMethod{Name: name, Groups: tags.groups})
			}
			tags.reset()
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("error scanning source: %w", err)
	}

	return class, nil
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
