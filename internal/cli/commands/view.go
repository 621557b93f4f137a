package commands

import (
	"errors"
	"fmt"
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

// ViewCommand handles the view command
type ViewCommand struct {
	config    *config.Config
	loader    *discovery.Loader
	storage   storage.Storage
	formatter *ui.Formatter
	logger    *slog.Logger
}

// NewViewCommand creates a new ViewCommand
func NewViewCommand(
	cfg *config.Config,
	loader *discovery.Loader,
	st storage.Storage,
	formatter *ui.Formatter,
	logger *slog.Logger,
) *ViewCommand {
	return &ViewCommand{
		config:    cfg,
		loader:    loader,
		storage:   st,
		formatter: formatter,
		logger:    logger,
	}
}

// Execute runs the command
func (vc *ViewCommand) Execute(cmd *cobra.Command, args []string) error {
	output, err := vc.storage.Load()
	if errors.Is(err, storage.ErrNoResults) {
		color.Yellow("No stored results found. Run `gtr run` first.")
		return nil
	}
	if err != nil {
		return err
	}

	root, err := vc.loader.Load(cmd.Context(), vc.config.GetTestPath(), "")
	if err != nil {
		return err
	}
	opts, err := sessionOptions(vc.config)
	if err != nil {
		return err
	}
	store := results.FromOutput(output)

	if vc.config.Flags.NoTUI {
		sess := session.New(opts, store, immediate, vc.logger)
		defer sess.Close()
		sess.OnTestsLoaded(root)
		vc.formatter.PrintGroupedTree(sess.Tree(), vc.config.Flags.TestCases)
		vc.formatter.PrintMetaStats(output)
		return nil
	}

	browser := ui.NewBrowser(fmt.Sprintf(" run %s ", output.Meta.RunID), store)
	sess := session.New(opts, store, browser, vc.logger)
	defer sess.Close()
	sess.Subscribe(func(c session.Change) {
		browser.Apply(c.Tree, c.Rebuilt, c.Changes)
		if c.Rebuilt {
			counts := store.Counts()
			browser.SetStatus(fmt.Sprintf("%s | [green]passed: %d[white] | [red]failed: %d[white] | %s | [yellow]r[white] reload",
				summary(c.Tree.Strategy(), c.Tree.LeafCount()),
				counts[domain.StatusPassed], counts[domain.StatusFailed], output.Meta.Timestamp))
		}
	})
	browser.OnStrategy(sess.SetStrategy)
	browser.OnReload(func() {
		// discovery runs off the event loop
		go func() {
			root, err := vc.loader.Load(cmd.Context(), vc.config.GetTestPath(), "")
			if err != nil {
				vc.logger.Warn("reload failed", "err", err)
				browser.Dispatch(func() { browser.SetStatus("[red]reload failed: " + err.Error()) })
				return
			}
			browser.Dispatch(func() { sess.OnTestsReloaded(root) })
		}()
	})
	browser.AddFailures(output.Details...)
	sess.OnTestsLoaded(root)

	return browser.Run()
}
