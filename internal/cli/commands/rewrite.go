package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"iltransform/internal/cli"
	"iltransform/internal/config"
	"iltransform/internal/diag"
	"iltransform/internal/rewrite"
)

// RewriteCommand handles the rewrite command
type RewriteCommand struct {
	config   *config.Config
	flags    *cli.Flags
	pipeline *Pipeline
	log      diag.Logger
}

// NewRewriteCommand creates a new RewriteCommand
func NewRewriteCommand(cfg *config.Config, flags *cli.Flags, pipeline *Pipeline, log diag.Logger) *RewriteCommand {
	return &RewriteCommand{config: cfg, flags: flags, pipeline: pipeline, log: log}
}

// Execute runs the command. Every project is analyzed and indexed before the
// first file is touched; the rewrite itself is sequential.
func (rc *RewriteCommand) Execute(cmd *cobra.Command, args []string) error {
	opts := rc.config.Rewrite
	rc.flags.ApplyRewriteFlags(cmd, &opts)
	rc.config.Rewrite = opts

	projects, duration, err := rc.pipeline.Scan(cmd.Context())
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		color.Yellow("No projects found")
		return nil
	}
	ix := rc.pipeline.Index(projects, opts.DeduplicateClassNames || opts.ClassToDeduplicate != "")

	ctx := rewrite.NewContext(opts.DryRun, os.Stdout, rc.log)
	summary, err := rewrite.New(opts, ctx, rc.log).Run(projects)
	if err != nil {
		return err
	}

	if !opts.DryRun {
		if err := rc.pipeline.Save(projects, ix, duration); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
	}

	verb := "Rewrote"
	if opts.DryRun {
		verb = "Would rewrite"
	}
	color.Green("✓ %s %d source(s) and %d descriptor(s); %d file(s) renamed, %d project(s) without entry point",
		verb, summary.Sources, summary.Descriptors, summary.Moved, summary.Skipped)
	if summary.Conflicts > 0 {
		color.Yellow("%d conflicting rename(s) skipped", summary.Conflicts)
	}
	if w := rc.log.Warnings(); w > 0 {
		color.Yellow("%d warning(s) logged", w)
	}
	return nil
}
