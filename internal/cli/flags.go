package cli

import (
	"github.com/spf13/cobra"

	"iltransform/internal/config"
)

// Flags holds command-line flags
type Flags struct {
	Processors int
	Filter     string
	TestPath   string
	ConfigFile string
	Verbose    bool
	Quiet      bool

	// rewrite
	ProcessIsolation   bool
	FactAttributes     bool
	DeduplicateNames   bool
	CleanupModule      bool
	ClassToDeduplicate string
	MatchSource        bool
	DryRun             bool

	// init
	Force bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Processors: f.Processors,
		Filter:     f.Filter,
		TestPath:   f.TestPath,
		ConfigFile: f.ConfigFile,
		Verbose:    f.Verbose,
		Quiet:      f.Quiet,
	}
}

// ApplyRewriteFlags overrides the configured rewrite options with the flags
// explicitly set on cmd
func (f *Flags) ApplyRewriteFlags(cmd *cobra.Command, opts *config.RewriteOptions) {
	set := cmd.Flags().Changed
	if set("process-isolation") {
		opts.AddProcessIsolation = f.ProcessIsolation
	}
	if set("fact") {
		opts.AddFactAttributes = f.FactAttributes
	}
	if set("dedup") {
		opts.DeduplicateClassNames = f.DeduplicateNames
	}
	if set("cleanup-module") {
		opts.CleanupModuleAssembly = f.CleanupModule
	}
	if set("class") {
		opts.ClassToDeduplicate = f.ClassToDeduplicate
	}
	if set("match-source") {
		opts.MatchSourceToProject = f.MatchSource
	}
	if set("dry-run") {
		opts.DryRun = f.DryRun
	}
}

// AddRewriteFlags declares the rewrite option flags on cmd
func (f *Flags) AddRewriteFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.ProcessIsolation, "process-isolation", false, "Mark projects that need it with RequiresProcessIsolation")
	cmd.Flags().BoolVar(&f.FactAttributes, "fact", false, "Turn entry points into [Fact] test methods")
	cmd.Flags().BoolVar(&f.DeduplicateNames, "dedup", false, "Move colliding test classes into unique namespaces")
	cmd.Flags().BoolVar(&f.CleanupModule, "cleanup-module", false, "Name IL assemblies and modules after their source file")
	cmd.Flags().StringVar(&f.ClassToDeduplicate, "class", "", "Also rename the given test class after its source file")
	cmd.Flags().BoolVar(&f.MatchSource, "match-source", false, "Rename entry-point sources after their project")
	cmd.Flags().BoolVarP(&f.DryRun, "dry-run", "n", false, "Print a diff instead of writing files")
}
