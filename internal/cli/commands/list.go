package commands

import (
	"errors"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gtr/internal/config"
	"gtr/internal/discovery"
	"gtr/internal/domain"
	"gtr/internal/results"
	"gtr/internal/session"
	"gtr/internal/storage"
	"gtr/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	loader    *discovery.Loader
	storage   storage.Storage
	formatter *ui.Formatter
	logger    *slog.Logger
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	loader *discovery.Loader,
	st storage.Storage,
	formatter *ui.Formatter,
	logger *slog.Logger,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		loader:    loader,
		storage:   st,
		formatter: formatter,
		logger:    logger,
	}
}

// Execute runs the command. With --group-by the tests are printed as a
// grouped tree using the results of the last run, if any.
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	root, err := lc.loader.Load(cmd.Context(), lc.config.GetTestPath(), lc.config.Flags.NameFilter)
	if err != nil {
		return err
	}
	if root.CountLeaves() == 0 {
		color.Yellow("No tests found")
		return nil
	}

	last, err := lc.lastRun()
	if err != nil {
		return err
	}

	if lc.config.Flags.GroupBy == "" {
		lc.formatter.PrintTestList(root, lc.config.Flags.TestCases, failedIDs(last))
		return nil
	}

	opts, err := sessionOptions(lc.config)
	if err != nil {
		return err
	}
	sess := session.New(opts, results.FromOutput(last), immediate, lc.logger)
	defer sess.Close()
	sess.OnTestsLoaded(root)

	lc.formatter.PrintGroupedTree(sess.Tree(), lc.config.Flags.TestCases)
	return nil
}

// lastRun loads the stored run, or nil when there is none
func (lc *ListCommand) lastRun() (*domain.TestResultsOutput, error) {
	output, err := lc.storage.Load()
	if errors.Is(err, storage.ErrNoResults) {
		return nil, nil
	}
	return output, err
}

func failedIDs(output *domain.TestResultsOutput) map[string]bool {
	failed := make(map[string]bool)
	if output == nil {
		return failed
	}
	for _, r := range output.Results {
		if r.Status == domain.StatusFailed {
			failed[r.ID] = true
		}
	}
	return failed
}
