package main

import (
	"fmt"
	"os"

	"gtr/internal/cli"
	"gtr/internal/cli/commands"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "gtr",
		Short: "Grouped parallel PHPUnit test runner",
		Long: `Runs PHPUnit tests in parallel and shows them in a tree grouped by category, outcome or duration.
The tree regroups live as results arrive.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Commands are wired once flags are parsed
	cmds := commands.NewCommands(&flags)
	cmds.Register(rootCmd)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
