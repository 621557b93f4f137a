package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gtr/internal/config"
	"gtr/internal/discovery"
	"gtr/internal/domain"
	"gtr/internal/execution"
	"gtr/internal/results"
	"gtr/internal/session"
	"gtr/internal/storage"
	"gtr/internal/ui"
	"gtr/internal/workerdb"
)

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	loader    *discovery.Loader
	executor  *execution.WorkerPool
	storage   storage.Storage
	formatter *ui.Formatter
	migrator  workerdb.Migrator
	logger    *slog.Logger
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	loader *discovery.Loader,
	executor *execution.WorkerPool,
	st storage.Storage,
	formatter *ui.Formatter,
	migrator workerdb.Migrator,
	logger *slog.Logger,
) *RunCommand {
	return &RunCommand{
		config:    cfg,
		loader:    loader,
		executor:  executor,
		storage:   st,
		formatter: formatter,
		migrator:  migrator,
		logger:    logger,
	}
}

// runOutcome is what the background run hands back to the command
type runOutcome struct {
	report *execution.Report
	output *domain.TestResultsOutput
	err    error
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Run migrations if flag is set
	if rc.config.Flags.Migrate {
		if err := rc.migrator.Run(ctx, rc.config.Processors, rc.config.Flags.NoFresh); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println()
	}

	root, err := rc.loader.Load(ctx, rc.config.GetTestPath(), rc.config.Flags.NameFilter)
	if err != nil {
		return err
	}
	if root.CountLeaves() == 0 {
		color.Yellow("No tests to execute")
		return nil
	}

	opts, err := sessionOptions(rc.config)
	if err != nil {
		return err
	}
	jobs := execution.JobsFor(root, rc.config.ExcludeGroups)
	rc.logger.Info("starting run",
		"files", len(jobs),
		"tests", root.CountLeaves(),
		"workers", rc.config.Processors,
		"group_by", opts.Strategy.String(),
	)

	if rc.config.Flags.NoTUI {
		return rc.runHeadless(ctx, root, jobs, opts)
	}
	return rc.runInteractive(ctx, root, jobs, opts)
}

// runHeadless drives the session from a Loop on this goroutine while the
// worker pool runs in the background, then prints the grouped tree.
func (rc *RunCommand) runHeadless(ctx context.Context, root *domain.TestNode, jobs []execution.FileJob, opts session.Options) error {
	loop := session.NewLoop(0)
	sess := session.New(opts, results.NewStore(), loop, rc.logger)
	defer sess.Close()
	sess.OnTestsLoaded(root)

	rc.executor.SetProgress(ui.NewProgressBar(len(jobs)))

	var outcome runOutcome
	go func() {
		defer loop.Close()
		outcome = rc.execute(ctx, jobs, sess)
		if outcome.report != nil {
			cancelled := outcome.report.Cancelled
			loop.Dispatch(func() { finishSession(sess, cancelled) })
		}
	}()
	// the loop outlives ctx so the final flush still runs after an interrupt
	if err := loop.Run(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	if outcome.err != nil {
		return outcome.err
	}

	fmt.Println()
	rc.formatter.PrintGroupedTree(sess.Tree(), false)
	rc.formatter.PrintMetaStats(outcome.output)
	if outcome.report.Stopped {
		color.Yellow("Stopped after the first failing file (--fail-fast)")
	}
	return nil
}

// runInteractive shows the browser while the worker pool runs. Quitting the
// browser cancels a run still in progress.
func (rc *RunCommand) runInteractive(ctx context.Context, root *domain.TestNode, jobs []execution.FileJob, opts session.Options) error {
	store := results.NewStore()
	browser := ui.NewBrowser(" gtr run ", store)
	sess := session.New(opts, store, browser, rc.logger)
	defer sess.Close()

	sess.Subscribe(func(c session.Change) { browser.Apply(c.Tree, c.Rebuilt, c.Changes) })
	browser.OnStrategy(sess.SetStrategy)
	sess.OnTestsLoaded(root)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	browser.OnCancel(func() {
		rc.logger.Info("run cancelled from the browser")
		cancel()
	})
	rc.executor.SetProgress(ui.NewStatusProgress(browser, len(jobs)))
	browser.SetStatus(statusLineFor(0, len(jobs)))

	done := make(chan runOutcome, 1)
	go func() {
		outcome := rc.execute(runCtx, jobs, sess)
		browser.Dispatch(func() {
			if outcome.err != nil {
				browser.SetStatus("[red]" + outcome.err.Error())
				return
			}
			finishSession(sess, outcome.report.Cancelled)
			browser.AddFailures(outcome.report.Failures...)
			browser.SetStatus(finalStatus(outcome))
		})
		done <- outcome
	}()

	go func() {
		<-ctx.Done()
		browser.Stop()
	}()

	runErr := browser.Run()
	cancel()
	outcome := <-done
	if runErr != nil {
		return runErr
	}
	if outcome.err != nil {
		return outcome.err
	}
	rc.formatter.PrintMetaStats(outcome.output)
	return nil
}

// execute runs the jobs, delivering results to sess, and stores the run
func (rc *RunCommand) execute(ctx context.Context, jobs []execution.FileJob, sess *session.Session) runOutcome {
	report, err := rc.executor.Execute(ctx, jobs, sessionObserver{session: sess})
	if err != nil {
		return runOutcome{err: err}
	}
	output, err := rc.storage.Save(report.Runs, report.Failures, report.Duration, rc.config.Processors, report.Cancelled)
	if err != nil {
		return runOutcome{report: report, err: fmt.Errorf("failed to save test results: %w", err)}
	}
	rc.logger.Info("run saved",
		"run_id", output.Meta.RunID,
		"files", output.Meta.TotalTestFiles,
		"failed_cases", output.Meta.FailedTestCases,
		"cancelled", report.Cancelled,
	)
	return runOutcome{report: report, output: output}
}

func finishSession(sess *session.Session, cancelled bool) {
	if cancelled {
		sess.OnRunCancelled()
		return
	}
	sess.OnRunFinished()
}

func statusLineFor(completed, total int) string {
	return fmt.Sprintf("[cyan]Running[white] %d/%d files", completed, total)
}

func finalStatus(o runOutcome) string {
	meta := o.output.Meta
	switch {
	case o.report.Cancelled:
		return fmt.Sprintf("[yellow]Cancelled[white] after %d files | [red]failed: %d[white] | q to quit", meta.TotalTestFiles, meta.FailedTestCases)
	case meta.FailedTestCases > 0 || meta.FailedTestFiles > 0:
		return fmt.Sprintf("[red]Finished with %d failure(s)[white] in %.2fs | q to quit", meta.FailedTestCases, meta.DurationSeconds)
	default:
		return fmt.Sprintf("[green]All %d test cases passed[white] in %.2fs | q to quit", meta.TotalTestCases, meta.DurationSeconds)
	}
}

// sessionObserver hands worker results to the session's owner goroutine
type sessionObserver struct {
	session *session.Session
}

func (o sessionObserver) OnTestFinished(result domain.TestResult) {
	o.session.Deliver(result)
}

func (o sessionObserver) OnFileFinished(run domain.FileRun, fixtureID string) {
	status := domain.StatusPassed
	if run.Failed() {
		status = domain.StatusFailed
	}
	o.session.DeliverSuite(domain.TestResult{ID: fixtureID, Status: status, Duration: run.Duration})
}
