package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"iltransform/internal/cli"
	"iltransform/internal/cli/commands"
	"iltransform/internal/config"
	"iltransform/internal/diag"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:     "iltransform",
		Short:   "Test tree rewriter for C# and IL test projects",
		Long:    `Analyzes a tree of .csproj/.ilproj test projects and rewrites them into xunit-compatible form: fact attributes, deduplicated namespaces, process isolation markers and descriptor cleanup.`,
		Version: version,
	}
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	log := diag.NewDefault()

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg, &flags, log)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
