package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"iltransform/internal/config"
	"iltransform/internal/diag"
	"iltransform/internal/index"
	"iltransform/internal/ui"
)

// DupesCommand handles the dupes command
type DupesCommand struct {
	config    *config.Config
	pipeline  *Pipeline
	formatter *ui.Formatter
	log       diag.Logger
}

// NewDupesCommand creates a new DupesCommand
func NewDupesCommand(cfg *config.Config, pipeline *Pipeline, formatter *ui.Formatter, log diag.Logger) *DupesCommand {
	return &DupesCommand{config: cfg, pipeline: pipeline, formatter: formatter, log: log}
}

// Execute runs the command
func (dc *DupesCommand) Execute(cmd *cobra.Command, args []string) error {
	projects, _, err := dc.pipeline.Scan(cmd.Context())
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		color.Yellow("No projects found")
		return nil
	}

	ix := dc.pipeline.Index(projects, true)
	dc.formatter.PrintDupes(ix, index.NewContentCache(dc.config.ContentCacheSize, dc.log))
	return nil
}
