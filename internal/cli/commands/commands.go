package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"gtr/internal/cli"
	"gtr/internal/config"
	"gtr/internal/discovery"
	"gtr/internal/execution"
	"gtr/internal/grouping"
	"gtr/internal/logging"
	"gtr/internal/parser"
	"gtr/internal/session"
	"gtr/internal/storage"
	"gtr/internal/ui"
	"gtr/internal/workerdb"
)

// Commands holds all CLI commands. Dependencies are wired once flags are
// parsed, since the config they need depends on them.
type Commands struct {
	flags    *cli.Flags
	config   *config.Config
	logger   *slog.Logger
	closeLog func() error

	Run     *RunCommand
	List    *ListCommand
	View    *ViewCommand
	Migrate *MigrateCommand
}

// NewCommands creates the command set reading flags
func NewCommands(flags *cli.Flags) *Commands {
	return &Commands{flags: flags}
}

// Setup loads the config, opens the log and creates all commands with
// their dependencies
func (c *Commands) Setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.flags.ToConfigFlags())
	if err != nil {
		return err
	}
	logger, closeLog, err := logging.New(cfg.GetLogPath(usesTUI(cmd, cfg)), cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	c.closeLog = closeLog
	c.Wire(cfg, logger)
	logger.Debug("config loaded",
		"project", cfg.ProjectPath,
		"tests", cfg.GetTestPath(),
		"processors", cfg.Processors,
		"group_by", cfg.GroupBy,
	)
	return nil
}

// Wire creates all commands from a loaded config
func (c *Commands) Wire(cfg *config.Config, logger *slog.Logger) {
	c.config = cfg
	c.logger = logger

	scanner := discovery.NewScanner(cfg.PathsToIgnore)
	loader := discovery.NewLoader(scanner, discovery.NewFilter(), discovery.NewParser(), cfg.Processors, logger)
	phpunitParser := parser.NewPHPUnitParser()
	runner := execution.NewRunner(cfg, parser.NewJUnitParser(), phpunitParser, logger)
	executor := execution.NewWorkerPool(cfg, runner, execution.NewRoundRobinScheduler(), logger)
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter(cfg)
	migrator := workerdb.NewLaravelMigrator(cfg, workerdb.NewProvisioner(cfg, logger))

	c.Run = NewRunCommand(cfg, loader, executor, jsonStorage, formatter, migrator, logger)
	c.List = NewListCommand(cfg, loader, jsonStorage, formatter, logger)
	c.View = NewViewCommand(cfg, loader, jsonStorage, formatter, logger)
	c.Migrate = NewMigrateCommand(cfg, migrator)
}

// Teardown closes the log file
func (c *Commands) Teardown(cmd *cobra.Command, args []string) error {
	if c.closeLog == nil {
		return nil
	}
	return c.closeLog()
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command) {
	flags := c.flags

	rootCmd.PersistentPreRunE = c.Setup
	rootCmd.PersistentPostRunE = c.Teardown
	rootCmd.PersistentFlags().StringVar(&flags.ProjectPath, "project", "", "Path to the PHP project (defaults to the current directory)")
	rootCmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "Path to the config file (defaults to <project>/"+config.FileName+")")
	rootCmd.PersistentFlags().StringVar(&flags.LogFile, "log-file", "", "Write diagnostic logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Log level: debug, info, warn or error")

	// Run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run PHPUnit tests in parallel",
		Long:  "Discover and execute PHPUnit tests using parallel workers while the grouped tree updates live",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run.Execute(cmd, args)
		},
	}
	runCmd.Flags().IntVarP(&flags.Processors, "processors", "p", 0, "Number of processors to use")
	runCmd.Flags().BoolVarP(&flags.Migrate, "migrate", "m", false, "Run migrations before executing tests")
	runCmd.Flags().BoolVar(&flags.NoFresh, "no-fresh", false, "Run migrations without fresh (only pending migrations)")
	runCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test detection should start")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g., '*UserTest.php' or 'Feature/**')")
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop on first test failure")
	runCmd.Flags().StringSliceVar(&flags.ExcludeGroups, "exclude-group", nil, "Do not run tests in these groups; they are reported as ignored")
	runCmd.Flags().BoolVar(&flags.NoTUI, "no-tui", false, "Show a progress bar and print the grouped tree instead of the interactive browser")
	addGroupingFlags(runCmd, flags)
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered tests",
		Long:  "Scan and list all PHPUnit tests without executing them, optionally grouped",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.List.Execute(cmd, args)
		},
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g., '*UserTest.php' or '*Payment*')")
	listCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test detection should start")
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "List test cases instead of test files")
	addGroupingFlags(listCmd, flags)
	rootCmd.AddCommand(listCmd)

	// View command
	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the results of the last run",
		Long:  "Show the stored results of the last run in the grouped tree browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.View.Execute(cmd, args)
		},
	}
	viewCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test detection should start")
	viewCmd.Flags().BoolVar(&flags.NoTUI, "no-tui", false, "Print the grouped tree instead of opening the browser")
	viewCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "Print test cases in the grouped tree (with --no-tui)")
	addGroupingFlags(viewCmd, flags)
	rootCmd.AddCommand(viewCmd)

	// Migrate command
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations for all test databases",
		Long:  "Execute migrations in parallel for all test databases used by workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Migrate.Execute(cmd, args)
		},
	}
	migrateCmd.Flags().IntVarP(&flags.Processors, "processors", "p", 0, "Number of processors/workers to use")
	migrateCmd.Flags().BoolVar(&flags.NoFresh, "no-fresh", false, "Run migrations without fresh (only pending migrations)")
	rootCmd.AddCommand(migrateCmd)
}

// usesTUI reports whether cmd takes over the terminal
func usesTUI(cmd *cobra.Command, cfg *config.Config) bool {
	switch cmd.Name() {
	case "run", "view":
		return !cfg.Flags.NoTUI
	}
	return false
}

func addGroupingFlags(cmd *cobra.Command, flags *cli.Flags) {
	cmd.Flags().StringVarP(&flags.GroupBy, "group-by", "g", "", "Group tests by category, outcome or duration")
	cmd.Flags().BoolVar(&flags.NoAncestorCategories, "no-ancestor-categories", false, "Group by a test's own categories only")
}

// sessionOptions returns the grouping options of the config
func sessionOptions(cfg *config.Config) (session.Options, error) {
	strategy, err := cfg.Strategy()
	if err != nil {
		return session.Options{}, err
	}
	return session.Options{
		Strategy:         strategy,
		IncludeAncestors: cfg.IncludeAncestorCategories,
		Window:           cfg.RegroupWindow,
	}, nil
}

// immediate runs dispatched work on the calling goroutine. Only for
// sessions that never receive results from other goroutines.
var immediate = grouping.DispatchFunc(func(fn func()) { fn() })

func summary(strategy grouping.Strategy, tests int) string {
	return fmt.Sprintf("%d tests grouped by %s", tests, strategy)
}
