package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dsdsmelo/gridnote/internal/scaffold"
)

var (
	forceInit   bool
	initProject string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new gridnote project",
	Long: `Initialize a new gridnote project with default configuration.

Creates:
  • gridnote.yml - Project configuration file (Redis connection, sheet defaults)

Use --force to reinitialize an existing project (WARNING: overwrites existing configuration).`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Force reinitialization (removes existing gridnote.yml)")
	initCmd.Flags().StringVarP(&initProject, "project", "p", "default", "Project name used to namespace Redis keys")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	// Check for existing files (unless --force)
	if !forceInit {
		if err := scaffold.CheckExisting(); err != nil {
			return err
		}
	}

	// Initialize the project
	if err := scaffold.Initialize(forceInit, initProject); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	// Print success message
	scaffold.PrintSuccess()

	return nil
}
