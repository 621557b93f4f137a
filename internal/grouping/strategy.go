package grouping

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStrategy is returned when a grouping name cannot be parsed
var ErrUnknownStrategy = errors.New("unknown grouping strategy")

// Strategy selects how tests are re-grouped at the top level
type Strategy int

const (
	// ByCategory groups tests by their declared @group categories
	ByCategory Strategy = iota
	// ByOutcome groups tests by the outcome of their latest result
	ByOutcome
	// ByDuration groups tests into Fast, Medium and Slow buckets
	ByDuration
)

// Strategies lists every strategy in menu order
var Strategies = []Strategy{ByCategory, ByOutcome, ByDuration}

func (s Strategy) String() string {
	switch s {
	case ByCategory:
		return "category"
	case ByOutcome:
		return "outcome"
	case ByDuration:
		return "duration"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy converts a name such as "outcome" into a Strategy
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "category", "categories", "group":
		return ByCategory, nil
	case "outcome", "result", "status":
		return ByOutcome, nil
	case "duration", "time":
		return ByDuration, nil
	}
	return ByCategory, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}
