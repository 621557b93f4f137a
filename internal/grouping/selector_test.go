package grouping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gtr/internal/domain"
)

func TestOutcomeSelector_Keys(t *testing.T) {
	tests := []struct {
		name   string
		result *domain.TestResult
		want   string
	}{
		{"no result", nil, GroupNotRun},
		{"failed", &domain.TestResult{Status: domain.StatusFailed}, GroupFailed},
		{"passed", &domain.TestResult{Status: domain.StatusPassed}, GroupPassed},
		{"warning counts as passed", &domain.TestResult{Status: domain.StatusWarning}, GroupPassed},
		{"ignored", &domain.TestResult{Status: domain.StatusSkipped, Label: domain.LabelIgnored}, GroupIgnored},
		{"skipped", &domain.TestResult{Status: domain.StatusSkipped, Label: "Explicit"}, GroupSkipped},
		{"inconclusive", &domain.TestResult{Status: domain.StatusInconclusive}, GroupInconclusive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []string{tt.want}, OutcomeSelector{}.Keys(&LeafTest{}, tt.result))
		})
	}
}

func TestDurationSelector_Keys(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{0, GroupFast},
		{100 * time.Millisecond, GroupFast},
		{101 * time.Millisecond, GroupMedium},
		{time.Second, GroupMedium},
		{time.Second + time.Millisecond, GroupSlow},
	}
	for _, tt := range tests {
		t.Run(tt.duration.String(), func(t *testing.T) {
			r := &domain.TestResult{Status: domain.StatusPassed, Duration: tt.duration}
			assert.Equal(t, []string{tt.want}, DurationSelector{}.Keys(&LeafTest{}, r))
		})
	}
	assert.Equal(t, []string{GroupNotRun}, DurationSelector{}.Keys(&LeafTest{}, nil))
}

func TestCategorySelector_Keys(t *testing.T) {
	leaf := &LeafTest{
		Categories: []string{"api", " ", "db"},
		Ancestry: []Segment{
			{Name: "tests", Categories: []string{"all"}},
			{Name: "UserTest", Fixture: true, Categories: []string{"db", "users"}},
		},
	}

	assert.Equal(t, []string{"api", "db", "users", "all"}, CategorySelector{IncludeAncestors: true}.Keys(leaf, nil))
	assert.Equal(t, []string{"api", "db"}, CategorySelector{}.Keys(leaf, nil))
	assert.Equal(t, []string{GroupNone}, CategorySelector{IncludeAncestors: true}.Keys(&LeafTest{}, nil))
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("Outcome")
	assert.NoError(t, err)
	assert.Equal(t, ByOutcome, s)

	s, err = ParseStrategy("duration")
	assert.NoError(t, err)
	assert.Equal(t, ByDuration, s)

	_, err = ParseStrategy("alphabet")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestWorst(t *testing.T) {
	order := []Image{ImageInit, ImageSuccess, ImageInconclusive, ImageIgnored, ImageWarning, ImageFailure}
	for i := range order {
		for j := range order {
			want := order[i]
			if j > i {
				want = order[j]
			}
			assert.Equal(t, want, Worst(order[i], order[j]), "%s vs %s", order[i], order[j])
		}
	}
}
