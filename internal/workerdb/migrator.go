package workerdb

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"gtr/internal/config"
	"gtr/internal/domain"
)

// Migrator runs database migrations for every worker database
type Migrator interface {
	Run(ctx context.Context, workerCount int, noFresh bool) error
}

// Lines printed by artisan that are not a migration step
var skipPatterns = []string{"Dropping all tables", "Dropped all tables", "Nothing to migrate", "Migration table created", "INFO"}

// LaravelMigrator runs artisan migrations against each worker database
type LaravelMigrator struct {
	config    *config.Config
	databases Ensurer
	php       string
	out       io.Writer
}

// NewLaravelMigrator creates a new LaravelMigrator
func NewLaravelMigrator(cfg *config.Config, databases Ensurer) *LaravelMigrator {
	return &LaravelMigrator{
		config:    cfg,
		databases: databases,
		php:       "php",
		out:       os.Stderr,
	}
}

// Run executes migrations in parallel for all workers
func (lm *LaravelMigrator) Run(ctx context.Context, workerCount int, noFresh bool) error {
	color.Cyan("\n╔════════════════════════════════════════════════════════════╗")
	color.Cyan("║               Running Database Migrations                  ║")
	color.Cyan("╚════════════════════════════════════════════════════════════╝\n")

	workers, err := lm.databases.Ensure(ctx, workerCount)
	if err != nil {
		return fmt.Errorf("failed to check databases: %w", err)
	}
	if len(workers) == 0 {
		return fmt.Errorf("no test databases available")
	}

	migrationFiles, err := lm.findMigrationFiles()
	if err != nil {
		return fmt.Errorf("failed to find migration files: %w", err)
	}
	total := len(workers) * len(migrationFiles)

	color.White("Workers: %d | Migration files: %d | Total progress: %d\n\n", len(workers), len(migrationFiles), total)

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.CyanString("Migrating: ")+color.GreenString("[completed: 0/%d]", total)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(lm.out),
		progressbar.OptionOnCompletion(func() { fmt.Fprint(lm.out, "\n") }),
		progressbar.OptionSetRenderBlankState(true),
	)
	counter := &stepCounter{bar: bar, max: total}

	var wg sync.WaitGroup
	results := make([]domain.MigrationResult, len(workers))
	startTime := time.Now()
	for i, workerID := range workers {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			results[i] = lm.migrateWorker(ctx, id, counter, noFresh)
		}(i, workerID)
	}
	wg.Wait()
	bar.Finish()

	var failed []domain.MigrationResult
	for _, r := range results {
		if !r.Success {
			failed = append(failed, r)
		}
	}

	fmt.Print("\n")
	if len(failed) > 0 {
		color.Red("✗ Migration failed for %d worker(s)\n", len(failed))
		for _, r := range failed {
			color.Red("  Worker %d (DB: %s): %v\n", r.WorkerID, r.Database, r.Error)
		}
		return fmt.Errorf("migration failed for %d worker(s)", len(failed))
	}

	color.Green("✓ Migrations completed successfully for all %d workers\n", len(workers))
	color.White("Duration: %s\n", time.Since(startTime).Round(time.Millisecond))
	return nil
}

// stepCounter advances the shared progress bar from several workers
type stepCounter struct {
	mu    sync.Mutex
	bar   *progressbar.ProgressBar
	count int
	max   int
}

func (c *stepCounter) step() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	if c.count > c.max {
		return
	}
	c.bar.Set(c.count)
	c.bar.Describe(color.CyanString("Migrating: ") + color.GreenString("[completed: %d/%d]", c.count, c.max))
}

// findMigrationFiles discovers all migration files in database/migrations
func (lm *LaravelMigrator) findMigrationFiles() ([]string, error) {
	migrationsPath := filepath.Join(lm.config.ProjectPath, "database", "migrations")
	var migrationFiles []string

	err := filepath.WalkDir(migrationsPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".php") {
			migrationFiles = append(migrationFiles, path)
		}
		return nil
	})

	return migrationFiles, err
}

// migrateWorker runs migrate or migrate:fresh for one worker database and
// counts each reported migration as a progress step
func (lm *LaravelMigrator) migrateWorker(ctx context.Context, workerID int, counter *stepCounter, noFresh bool) domain.MigrationResult {
	result := domain.MigrationResult{WorkerID: workerID, Database: lm.config.GetDatabaseName(workerID)}

	projectAbsPath, err := filepath.Abs(lm.config.ProjectPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to get absolute project path: %w", err)
		return result
	}

	migrateCmd := "migrate:fresh"
	if noFresh {
		migrateCmd = "migrate"
	}
	cmd := exec.CommandContext(ctx, lm.php, filepath.Join(projectAbsPath, "artisan"), migrateCmd, "--env=testing", "--force")
	cmd.Env = append(os.Environ(), fmt.Sprintf("DB_DATABASE=%s", result.Database))
	cmd.Dir = projectAbsPath

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		result.Error = fmt.Errorf("failed to create stdout pipe: %w", err)
		return result
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		result.Error = fmt.Errorf("failed to create stderr pipe: %w", err)
		return result
	}
	if err := cmd.Start(); err != nil {
		result.Error = fmt.Errorf("failed to start command: %w", err)
		return result
	}

	var (
		outputMu sync.Mutex
		output   strings.Builder
		scanWg   sync.WaitGroup
	)
	stream := func(r io.Reader) {
		defer scanWg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := scanner.Text()
			outputMu.Lock()
			output.WriteString(line)
			output.WriteString("\n")
			outputMu.Unlock()
			if isMigrationStep(line) {
				counter.step()
			}
		}
	}
	scanWg.Add(2)
	go stream(stdout)
	go stream(stderr)
	scanWg.Wait()

	err = cmd.Wait()
	result.Success = err == nil
	result.Error = err
	result.Output = output.String()
	return result
}

func isMigrationStep(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	for _, skip := range skipPatterns {
		if strings.Contains(line, skip) {
			return false
		}
	}
	return true
}
