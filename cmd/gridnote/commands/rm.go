package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dsdsmelo/gridnote/internal/printer"
	"github.com/dsdsmelo/gridnote/internal/resolver"
)

var rmCmd = &cobra.Command{
	Use:   "rm <sheet>",
	Short: "Delete a sheet",
	Long: `Delete a sheet and all its data from the project.

This cannot be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, client, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	sheetID, err := resolver.ResolveSheetID(ctx, client, args[0])
	if err != nil {
		if ambiguous, ok := err.(*resolver.AmbiguousError); ok {
			return fmt.Errorf("%s", resolver.FormatAmbiguousError(ambiguous))
		}
		return err
	}

	if err := client.DeleteSheet(ctx, sheetID); err != nil {
		return err
	}

	printer.Success("Sheet deleted: %s\n", sheetID)
	return nil
}
