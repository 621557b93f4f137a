package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtr/internal/cli"
	"gtr/internal/config"
	"gtr/internal/domain"
	"gtr/internal/execution"
	"gtr/internal/grouping"
	"gtr/internal/logging"
	"gtr/internal/results"
	"gtr/internal/session"
)

func sampleRoot() *domain.TestNode {
	return &domain.TestNode{
		ID: "suite:.", Name: "tests", Kind: domain.KindSuite,
		Children: []*domain.TestNode{{
			ID: "App\\UserTest", Name: "UserTest", FullName: "App\\UserTest", Kind: domain.KindFixture,
			Children: []*domain.TestNode{
				{ID: "App\\UserTest::testCreate", Name: "testCreate", FullName: "App\\UserTest::testCreate", Kind: domain.KindTestCase},
				{ID: "App\\UserTest::testDelete", Name: "testDelete", FullName: "App\\UserTest::testDelete", Kind: domain.KindTestCase},
			},
		}},
	}
}

func TestSessionObserver_RegroupsArrivals(t *testing.T) {
	sess := session.New(session.Options{Strategy: grouping.ByOutcome}, results.NewStore(), immediate, logging.Discard())
	defer sess.Close()
	sess.OnTestsLoaded(sampleRoot())

	var observer execution.Observer = sessionObserver{session: sess}
	observer.OnTestFinished(domain.TestResult{ID: "App\\UserTest::testCreate", Status: domain.StatusFailed, Duration: time.Millisecond})
	observer.OnFileFinished(domain.FileRun{TestPath: "UserTest.php", Cases: []domain.TestResult{{Status: domain.StatusFailed}}}, "App\\UserTest")
	sess.OnRunFinished()

	tree := sess.Tree()
	assert.Equal(t, 1, tree.Group(grouping.GroupFailed).Count())
	assert.Equal(t, 1, tree.Group(grouping.GroupNotRun).Count())
	r, ok := sess.Store().ResultFor("App\\UserTest::testCreate")
	require.True(t, ok)
	assert.Equal(t, domain.StatusFailed, r.Status)
}

func TestFailedIDs(t *testing.T) {
	assert.Empty(t, failedIDs(nil))

	got := failedIDs(&domain.TestResultsOutput{Results: []domain.TestResult{
		{ID: "A::a", Status: domain.StatusFailed},
		{ID: "A::b", Status: domain.StatusPassed},
	}})
	assert.Equal(t, map[string]bool{"A::a": true}, got)
}

func TestFinalStatus(t *testing.T) {
	tests := []struct {
		name    string
		outcome runOutcome
		want    string
	}{
		{
			name: "cancelled",
			outcome: runOutcome{
				report: &execution.Report{Cancelled: true},
				output: &domain.TestResultsOutput{Meta: domain.TestResultsMeta{TotalTestFiles: 2, FailedTestCases: 1}},
			},
			want: "[yellow]Cancelled[white] after 2 files",
		},
		{
			name: "failures",
			outcome: runOutcome{
				report: &execution.Report{},
				output: &domain.TestResultsOutput{Meta: domain.TestResultsMeta{FailedTestCases: 3}},
			},
			want: "Finished with 3 failure(s)",
		},
		{
			name: "passed",
			outcome: runOutcome{
				report: &execution.Report{},
				output: &domain.TestResultsOutput{Meta: domain.TestResultsMeta{TotalTestCases: 5}},
			},
			want: "All 5 test cases passed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, finalStatus(tt.outcome), tt.want)
		})
	}
}

func TestUsesTUI(t *testing.T) {
	cfg := config.New()
	assert.True(t, usesTUI(&cobra.Command{Use: "run"}, cfg))
	assert.True(t, usesTUI(&cobra.Command{Use: "view"}, cfg))
	assert.False(t, usesTUI(&cobra.Command{Use: "list"}, cfg))

	cfg.Flags.NoTUI = true
	assert.False(t, usesTUI(&cobra.Command{Use: "run"}, cfg))
}

func TestRegister_ListLoadsConfigFromFlags(t *testing.T) {
	dir := t.TempDir()
	testDir := filepath.Join(dir, "tests", "Unit")
	require.NoError(t, os.MkdirAll(testDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(testDir, "UserTest.php"), []byte(`<?php
namespace Tests\Unit;

/** @group unit */
class UserTest extends TestCase
{
    public function testCreate(): void {}
}
`), 0644))

	var flags cli.Flags
	cmds := NewCommands(&flags)
	root := &cobra.Command{Use: "gtr", SilenceUsage: true}
	cmds.Register(root)
	root.SetArgs([]string{"list", "--project", dir, "--group-by", "outcome", "--processors", "2", "--log-level", "error"})

	require.NoError(t, root.Execute())

	require.NotNil(t, cmds.config)
	assert.Equal(t, "outcome", cmds.config.GroupBy)
	assert.Equal(t, 2, cmds.config.Processors)
	assert.NotNil(t, cmds.Run)
	assert.NotNil(t, cmds.View)
	assert.NotNil(t, cmds.Migrate)
}

func TestRegister_RejectsUnknownStrategy(t *testing.T) {
	var flags cli.Flags
	cmds := NewCommands(&flags)
	root := &cobra.Command{Use: "gtr", SilenceUsage: true, SilenceErrors: true}
	cmds.Register(root)
	root.SetArgs([]string{"list", "--project", t.TempDir(), "--group-by", "colour"})

	err := root.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, grouping.ErrUnknownStrategy)
}
