package execution

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"gtr/internal/config"
	"gtr/internal/domain"
)

// WorkerPool manages a pool of workers for parallel test execution
type WorkerPool struct {
	config    *config.Config
	runner    FileRunner
	scheduler Scheduler
	progress  Progress
	logger    *slog.Logger
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(cfg *config.Config, runner FileRunner, scheduler Scheduler, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{
		config:    cfg,
		runner:    runner,
		scheduler: scheduler,
		logger:    logger,
	}
}

// SetProgress sets the progress reporter for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// Execute runs the jobs on config.Processors workers. Each worker runs its
// scheduled jobs in order with its own database. Results are handed to
// observer as soon as a file finishes. Cancelling ctx kills running
// processes; with fail-fast the first failing file stops the run.
func (wp *WorkerPool) Execute(ctx context.Context, jobs []FileJob, observer Observer) (*Report, error) {
	report := &Report{}
	if len(jobs) == 0 {
		return report, nil
	}
	if observer == nil {
		observer = NopObserver{}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workerCount := wp.config.Processors
	if workerCount <= 0 {
		workerCount = 1
	}
	batches := wp.scheduler.Schedule(jobs, workerCount)

	var (
		mu             sync.Mutex
		completedFiles int
		passedCases    int
		failedCases    int
		stopped        bool
	)
	startTime := time.Now()

	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Add(1)
		go func(workerID int, batch []FileJob) {
			defer wg.Done()
			for _, job := range batch {
				if runCtx.Err() != nil {
					return
				}
				run := wp.runner.Run(runCtx, job, workerID)

				for _, c := range run.Cases {
					observer.OnTestFinished(c)
				}
				if runCtx.Err() != nil && !run.Success {
					// killed mid-file; its tests stay not run
					wp.logger.Debug("file interrupted", "file", job.Path, "worker", workerID)
					return
				}
				observer.OnFileFinished(run, job.FixtureID)

				mu.Lock()
				report.Runs = append(report.Runs, run)
				report.Failures = append(report.Failures, run.Failures...)
				completedFiles++
				for _, c := range run.Cases {
					switch c.Status {
					case domain.StatusFailed:
						failedCases++
					case domain.StatusPassed, domain.StatusWarning:
						passedCases++
					}
				}
				if wp.progress != nil {
					wp.progress.Update(completedFiles, passedCases, failedCases)
				}
				if wp.config.FailFast && run.Failed() && ctx.Err() == nil && !stopped {
					stopped = true
					wp.logger.Info("fail-fast: stopping run", "file", job.Path)
					cancel()
				}
				mu.Unlock()
			}
		}(i+1, batch)
	}
	wg.Wait()

	sort.Slice(report.Runs, func(i, j int) bool { return report.Runs[i].TestPath < report.Runs[j].TestPath })
	if wp.progress != nil {
		wp.progress.Finish()
	}
	report.Duration = time.Since(startTime)
	report.Cancelled = ctx.Err() != nil
	report.Stopped = stopped
	wp.logger.Debug("run complete",
		"files", completedFiles,
		"passed", passedCases,
		"failed", failedCases,
		"cancelled", report.Cancelled,
		"stopped", stopped,
		"duration", report.Duration,
	)
	return report, nil
}
