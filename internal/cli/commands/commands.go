package commands

import (
	"github.com/spf13/cobra"

	"iltransform/internal/cli"
	"iltransform/internal/config"
	"iltransform/internal/diag"
	"iltransform/internal/storage"
	"iltransform/internal/ui"
)

// Commands holds all CLI commands
type Commands struct {
	Scan    *ScanCommand
	Stats   *StatsCommand
	Dupes   *DupesCommand
	Rewrite *RewriteCommand
	View    *ViewCommand
	Init    *InitCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config, flags *cli.Flags, log diag.Logger) *Commands {
	jsonStorage := storage.NewJSONStorage(cfg)
	pipeline := NewPipeline(cfg, jsonStorage, log)
	formatter := ui.NewFormatter(nil)

	return &Commands{
		Scan:    NewScanCommand(pipeline, jsonStorage),
		Stats:   NewStatsCommand(pipeline, formatter),
		Dupes:   NewDupesCommand(cfg, pipeline, formatter, log),
		Rewrite: NewRewriteCommand(cfg, flags, pipeline, log),
		View:    NewViewCommand(jsonStorage, ui.NewProjectViewer()),
		Init:    NewInitCommand(flags),
	}
}

// LoadConfig replaces cfg with the merged file, environment and flag values
// and applies the log level flags
func LoadConfig(cfg *config.Config, flags *cli.Flags, log diag.Logger) error {
	loaded, err := config.Load(flags.ToConfigFlags())
	if err != nil {
		return err
	}
	*cfg = *loaded

	switch {
	case flags.Verbose:
		log.SetLevel(diag.LevelDebug)
	case flags.Quiet:
		log.SetLevel(diag.LevelError)
	}
	return nil
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config, log diag.Logger) {
	rootCmd.PersistentFlags().StringVarP(&flags.TestPath, "test-path", "t", "", "Root of the test tree to scan")
	rootCmd.PersistentFlags().StringVarP(&flags.Filter, "filter", "f", "", "Filter projects by descriptor name (supports wildcards, e.g., '*Regression*.ilproj')")
	rootCmd.PersistentFlags().IntVarP(&flags.Processors, "processors", "p", 0, "Number of analysis workers (default from config)")
	rootCmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "Config file (default ./"+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log debug diagnostics")
	rootCmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Only log errors and hide progress")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Update config with flags after parsing
		return LoadConfig(cfg, flags, log)
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "scan",
		Short: "Analyze the test tree and save a snapshot",
		Long:  "Parse every project descriptor, extract the entry-point facts of its sources and save them for the viewer",
		Args:  cobra.NoArgs,
		RunE:  c.Scan.Execute,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show corpus statistics",
		Long:  "Analyze the test tree and report projects by dialect, configuration, output type and isolation needs",
		Args:  cobra.NoArgs,
		RunE:  c.Stats.Execute,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "dupes",
		Short: "List colliding test classes",
		Long:  "Analyze the test tree and list test classes that collide, with the namespace each would be moved to",
		Args:  cobra.NoArgs,
		RunE:  c.Dupes.Execute,
	})

	rewriteCmd := &cobra.Command{
		Use:   "rewrite",
		Short: "Rewrite test sources and descriptors",
		Long:  "Turn standalone test programs into test methods and make their names unique. Options default to the config file's rewrite section",
		Args:  cobra.NoArgs,
		RunE:  c.Rewrite.Execute,
	}
	flags.AddRewriteFlags(rewriteCmd)
	rootCmd.AddCommand(rewriteCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "view",
		Short: "Browse the last snapshot interactively",
		Long:  "Display the projects from the last scan in an interactive viewer",
		Args:  cobra.NoArgs,
		RunE:  c.View.Execute,
	})

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.Init.Execute,
	}
	initCmd.Flags().BoolVar(&flags.Force, "force", false, "Overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}
