package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtr/internal/domain"
)

const report = `<?xml version="1.0" encoding="UTF-8"?>
<testsuites>
  <testsuite name="Tests\Unit\UserTest" file="/app/tests/Unit/UserTest.php" tests="6">
    <testcase name="testCreate" file="/app/tests/Unit/UserTest.php" line="12" class="Tests\Unit\UserTest" classname="Tests.Unit.UserTest" assertions="1" time="0.250000"/>
    <testcase name="testDelete" file="/app/tests/Unit/UserTest.php" line="20" class="Tests\Unit\UserTest" classname="Tests.Unit.UserTest" assertions="1" time="0.010000">
      <failure type="PHPUnit\Framework\ExpectationFailedException">Tests\Unit\UserTest::testDelete
Failed asserting that false is true.

/app/tests/Unit/UserTest.php:24</failure>
    </testcase>
    <testcase name="testSkipped" class="Tests\Unit\UserTest" classname="Tests.Unit.UserTest" time="0.000100">
      <skipped/>
    </testcase>
    <testcase name="testIncomplete" class="Tests\Unit\UserTest" classname="Tests.Unit.UserTest" time="0.000100">
      <error type="PHPUnit\Framework\IncompleteTestError">Tests\Unit\UserTest::testIncomplete
Not finished</error>
    </testcase>
    <testsuite name="Tests\Unit\UserTest::testAdd" tests="2">
      <testcase name="testAdd with data set #0" classname="Tests.Unit.UserTest" time="0.100000"/>
      <testcase name="testAdd with data set #1" classname="Tests.Unit.UserTest" time="0.200000">
        <error type="TypeError">Tests\Unit\UserTest::testAdd with data set #1
TypeError: bad argument

/app/tests/Unit/UserTest.php:40</error>
      </testcase>
    </testsuite>
  </testsuite>
</testsuites>
`

func TestJUnitParser_Parse(t *testing.T) {
	results, failures, err := NewJUnitParser().Parse(strings.NewReader(report))
	require.NoError(t, err)
	require.Len(t, results, 5)

	byID := make(map[string]domain.TestResult)
	for _, r := range results {
		byID[r.ID] = r
	}

	tests := []struct {
		id       string
		status   domain.TestStatus
		duration time.Duration
	}{
		{`Tests\Unit\UserTest::testCreate`, domain.StatusPassed, 250 * time.Millisecond},
		{`Tests\Unit\UserTest::testDelete`, domain.StatusFailed, 10 * time.Millisecond},
		{`Tests\Unit\UserTest::testSkipped`, domain.StatusSkipped, 100 * time.Microsecond},
		{`Tests\Unit\UserTest::testIncomplete`, domain.StatusInconclusive, 100 * time.Microsecond},
		{`Tests\Unit\UserTest::testAdd`, domain.StatusFailed, 300 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r, ok := byID[tt.id]
			require.True(t, ok)
			assert.Equal(t, tt.status, r.Status)
			assert.InDelta(t, float64(tt.duration), float64(r.Duration), float64(time.Microsecond))
		})
	}

	assert.Equal(t, "Failed asserting that false is true.", byID[`Tests\Unit\UserTest::testDelete`].Message)

	require.Len(t, failures, 2)
	assert.Equal(t, `Tests\Unit\UserTest::testDelete`, failures[0].TestID)
	assert.Equal(t, 20, failures[0].Line)
	assert.Equal(t, []string{"/app/tests/Unit/UserTest.php:24"}, failures[0].StackTrace)
	assert.Equal(t, `Tests\Unit\UserTest::testAdd`, failures[1].TestID)
	assert.Equal(t, "TypeError", failures[1].ErrorDetails)
}

func TestJUnitParser_ParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junit.xml")
	require.NoError(t, os.WriteFile(path, []byte(report), 0644))

	results, _, err := NewJUnitParser().ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, results, 5)

	_, _, err = NewJUnitParser().ParseFile(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}

func TestJUnitParser_Malformed(t *testing.T) {
	_, _, err := NewJUnitParser().Parse(strings.NewReader("<testsuites><testsuite>"))
	assert.Error(t, err)
}

func TestCaseID(t *testing.T) {
	assert.Equal(t, `A\B::testX`, CaseID(`A\B`, "testX"))
	assert.Equal(t, `A\B::testX`, CaseID(`A\B`, `testX with data set "named"`))
}
