package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dsdsmelo/gridnote/internal/config"
	"github.com/dsdsmelo/gridnote/internal/engine"
	"github.com/dsdsmelo/gridnote/internal/printer"
	"github.com/dsdsmelo/gridnote/internal/refs"
	"github.com/dsdsmelo/gridnote/pkg/sheet"
)

var (
	createName        string
	createDescription string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new spreadsheet",
	Long: `Create a new spreadsheet in the project.

The sheet starts with the default shape from gridnote.yml: a number of
empty text columns and rows ready for input.

Examples:
  # Create a sheet with the default shape
  gridnote create --name "Sprint budget"

  # Add a description
  gridnote create --name "Roadmap" --description "Q4 planning grid"`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createName, "name", "n", "", "Sheet name (required)")
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "Optional sheet description")
	createCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, client, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	eng := newDefaultSheet(cfg, createName, createDescription)

	if err := client.SaveSheet(ctx, eng.Snapshot()); err != nil {
		return fmt.Errorf("failed to save sheet: %w", err)
	}

	meta := eng.Grid().Meta()
	printer.Success("Sheet created: %s\n", meta.ID)
	printer.Info("\nNext steps:\n")
	printer.Info("  • Set a cell:   gridnote set --sheet %.8s A1 \"hello\"\n", meta.ID)
	printer.Info("  • View the grid: gridnote show --sheet %.8s\n", meta.ID)

	return nil
}

// newDefaultSheet builds an engine over a fresh sheet with the default
// shape from the project configuration.
func newDefaultSheet(cfg *config.GridnoteConfig, name, description string) *engine.Engine {
	eng := engine.NewSheet(cfg.Project, name)
	if description != "" {
		eng.Grid().SetDescription(description)
	}

	colType := sheet.ColumnType(cfg.Defaults.ColumnType)
	for i := 0; i < *cfg.Defaults.Columns; i++ {
		eng.AddColumn(refs.ColumnLetters(i), colType, *cfg.Defaults.ColumnWidth, "")
	}
	for i := 0; i < *cfg.Defaults.Rows; i++ {
		eng.AddRow()
	}
	return eng
}
