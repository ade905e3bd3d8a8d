package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"iltransform/internal/ui"
)

// StatsCommand handles the stats command
type StatsCommand struct {
	pipeline  *Pipeline
	formatter *ui.Formatter
}

// NewStatsCommand creates a new StatsCommand
func NewStatsCommand(pipeline *Pipeline, formatter *ui.Formatter) *StatsCommand {
	return &StatsCommand{pipeline: pipeline, formatter: formatter}
}

// Execute runs the command
func (sc *StatsCommand) Execute(cmd *cobra.Command, args []string) error {
	projects, _, err := sc.pipeline.Scan(cmd.Context())
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		color.Yellow("No projects found")
		return nil
	}

	ix := sc.pipeline.Index(projects, false)
	sc.formatter.PrintStats(ui.ComputeStats(projects, ix))
	return nil
}
