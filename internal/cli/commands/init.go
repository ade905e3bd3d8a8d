package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"iltransform/internal/cli"
	"iltransform/internal/config"
)

// InitCommand handles the init command
type InitCommand struct {
	flags *cli.Flags
}

// NewInitCommand creates a new InitCommand
func NewInitCommand(flags *cli.Flags) *InitCommand {
	return &InitCommand{flags: flags}
}

// Execute runs the command
func (ic *InitCommand) Execute(cmd *cobra.Command, args []string) error {
	path := config.DefaultConfigFile
	if len(args) > 0 {
		path = args[0]
	}
	if err := config.WriteDefault(path, ic.flags.Force); err != nil {
		return err
	}
	color.Green("✓ Wrote %s", path)
	return nil
}
