package execution

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"gtr/internal/config"
	"gtr/internal/domain"
	"gtr/internal/parser"
)

// FileRunner runs one job on behalf of a worker
type FileRunner interface {
	Run(ctx context.Context, job FileJob, workerID int) domain.FileRun
}

// Runner executes PHPUnit for one test file
type Runner struct {
	config   *config.Config
	report   parser.ReportParser
	fallback parser.Parser
	logger   *slog.Logger
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config, report parser.ReportParser, fallback parser.Parser, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{config: cfg, report: report, fallback: fallback, logger: logger}
}

// Args returns the PHPUnit arguments for a job
func (r *Runner) Args(job FileJob, junitPath string) []string {
	args := []string{job.Path, "--log-junit", junitPath}
	if len(r.config.ExcludeGroups) > 0 {
		args = append(args, "--exclude-group", strings.Join(r.config.ExcludeGroups, ","))
	}
	if r.config.FailFast {
		args = append(args, "--stop-on-failure")
	}
	return args
}

// Run executes PHPUnit for a single test file. Results come from the JUnit
// report; when PHPUnit dies before writing it the console output is used.
// A cancelled run reports only the ignored tests.
func (r *Runner) Run(ctx context.Context, job FileJob, workerID int) domain.FileRun {
	run := domain.FileRun{TestPath: job.Path, Success: true}
	if len(job.CaseIDs) == 0 {
		run.Cases = ignoredResults(job)
		return run
	}

	junit, err := os.CreateTemp("", "gtr-junit-*.xml")
	if err != nil {
		run.Success = false
		run.Error = fmt.Errorf("create junit report: %w", err)
		run.Cases = ignoredResults(job)
		return run
	}
	junitPath := junit.Name()
	junit.Close()
	defer os.Remove(junitPath)

	cmd := exec.CommandContext(ctx, r.config.GetPHPUnitPath(), r.Args(job, junitPath)...)
	cmd.Env = append(os.Environ(), fmt.Sprintf("DB_DATABASE=%s", r.config.GetDatabaseName(workerID)))
	cmd.Dir = r.config.ProjectPath

	start := time.Now()
	output, err := cmd.CombinedOutput()
	run.Duration = time.Since(start)
	run.Output = string(output)
	run.Success = err == nil
	run.Error = err

	if ctx.Err() != nil {
		run.Cases = ignoredResults(job)
		return run
	}

	results, failures, perr := r.parseReport(junitPath)
	if perr != nil {
		passed, failed := r.fallback.ParseTestCounts(run)
		r.logger.Debug("junit report unavailable, falling back to console output",
			"file", job.Path,
			"err", perr,
			"passed", passed,
			"failed", failed,
		)
		results, failures = r.fallback.Results(run, job.CaseIDs)
	}
	run.Cases = append(results, ignoredResults(job)...)
	run.Failures = failures
	return run
}

func (r *Runner) parseReport(path string) ([]domain.TestResult, []domain.TestFailure, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	if info.Size() == 0 {
		return nil, nil, fmt.Errorf("empty junit report")
	}
	return r.report.ParseFile(path)
}
