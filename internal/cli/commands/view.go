package commands

import (
	"github.com/spf13/cobra"

	"iltransform/internal/storage"
	"iltransform/internal/ui"
)

// ViewCommand handles the view command
type ViewCommand struct {
	storage storage.Storage
	viewer  ui.Viewer
}

// NewViewCommand creates a new ViewCommand
func NewViewCommand(st storage.Storage, viewer ui.Viewer) *ViewCommand {
	return &ViewCommand{storage: st, viewer: viewer}
}

// Execute runs the command
func (vc *ViewCommand) Execute(cmd *cobra.Command, args []string) error {
	snapshot, err := vc.storage.Load()
	if err != nil {
		return err
	}
	return vc.viewer.View(snapshot)
}
