package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"iltransform/internal/storage"
)

// ScanCommand handles the scan command
type ScanCommand struct {
	pipeline *Pipeline
	storage  *storage.JSONStorage
}

// NewScanCommand creates a new ScanCommand
func NewScanCommand(pipeline *Pipeline, st *storage.JSONStorage) *ScanCommand {
	return &ScanCommand{pipeline: pipeline, storage: st}
}

// Execute runs the command
func (sc *ScanCommand) Execute(cmd *cobra.Command, args []string) error {
	projects, duration, err := sc.pipeline.Scan(cmd.Context())
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		color.Yellow("No projects found")
		return nil
	}

	ix := sc.pipeline.Index(projects, true)
	if err := sc.pipeline.Save(projects, ix, duration); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	withEntry := 0
	for _, p := range projects {
		if p.Source.HasEntryPoint() {
			withEntry++
		}
	}
	color.Green("✓ Scanned %d project(s) in %.2fs: %d with an entry point, %d group(s) to deduplicate",
		len(projects), duration.Seconds(), withEntry, len(ix.DuplicateGroups()))
	fmt.Printf("Snapshot saved to %s\n", sc.storage.Path())
	return nil
}
