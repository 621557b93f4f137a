package commands

import (
	"github.com/spf13/cobra"

	"gtr/internal/config"
	"gtr/internal/workerdb"
)

// MigrateCommand handles the migrate command
type MigrateCommand struct {
	config   *config.Config
	migrator workerdb.Migrator
}

// NewMigrateCommand creates a new MigrateCommand
func NewMigrateCommand(cfg *config.Config, migrator workerdb.Migrator) *MigrateCommand {
	return &MigrateCommand{
		config:   cfg,
		migrator: migrator,
	}
}

// Execute runs the command
func (mc *MigrateCommand) Execute(cmd *cobra.Command, args []string) error {
	return mc.migrator.Run(cmd.Context(), mc.config.Processors, mc.config.Flags.NoFresh)
}
