package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dsdsmelo/gridnote/internal/printer"
)

var (
	rowSheetRef string
)

var rowCmd = &cobra.Command{
	Use:   "row",
	Short: "Manage sheet rows",
	Long:  `Add, remove, and move rows. Rows are addressed by their 1-based number.`,
}

var rowAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a row at the bottom",
	Long: `Append a row at the bottom of the sheet.

Formula columns with a template get their formula instantiated for the
new row automatically.`,
	RunE: runRowAdd,
}

var rowRmCmd = &cobra.Command{
	Use:   "rm <row>",
	Short: "Remove a row",
	Long: `Remove a row by its 1-based number.

The row's cells are deleted, later rows shift up, merges covering the
row shrink or disappear, and formulas that referenced the deleted cells
recompute to #REF!.`,
	Args: cobra.ExactArgs(1),
	RunE: runRowRm,
}

var rowMvCmd = &cobra.Command{
	Use:   "mv <row> <to>",
	Short: "Move a row to a new position",
	Long: `Move a row to a new 1-based position, shifting the rows in between.

Formulas re-resolve against the new layout and recompute.`,
	Args: cobra.ExactArgs(2),
	RunE: runRowMv,
}

func init() {
	rowCmd.PersistentFlags().StringVarP(&rowSheetRef, "sheet", "s", "", "Sheet ID or short prefix (required)")
	rowCmd.MarkPersistentFlagRequired("sheet")
	rowCmd.AddCommand(rowAddCmd)
	rowCmd.AddCommand(rowRmCmd)
	rowCmd.AddCommand(rowMvCmd)
	rootCmd.AddCommand(rowCmd)
}

func runRowAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, client, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	eng, err := loadEngine(ctx, client, rowSheetRef)
	if err != nil {
		return err
	}

	row, updates, err := eng.AddRow()
	if err != nil {
		return err
	}

	if err := saveAndPublish(ctx, client, eng, updates); err != nil {
		return err
	}

	printer.Success("Row %d added\n", row.OrderIndex+1)
	return nil
}

func runRowRm(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, client, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	eng, err := loadEngine(ctx, client, rowSheetRef)
	if err != nil {
		return err
	}

	rowNum, err := parseRowNumber(args[0], eng.Grid().RowCount())
	if err != nil {
		return err
	}

	rowID := eng.Grid().Rows()[rowNum-1].ID
	updates, err := eng.RemoveRow(rowID)
	if err != nil {
		return err
	}

	if err := saveAndPublish(ctx, client, eng, updates); err != nil {
		return err
	}

	printer.Success("Row %d removed\n", rowNum)
	return nil
}

func runRowMv(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, client, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	eng, err := loadEngine(ctx, client, rowSheetRef)
	if err != nil {
		return err
	}

	count := eng.Grid().RowCount()
	from, err := parseRowNumber(args[0], count)
	if err != nil {
		return err
	}
	to, err := parseRowNumber(args[1], count)
	if err != nil {
		return err
	}

	rowID := eng.Grid().Rows()[from-1].ID
	updates, err := eng.ReorderRow(rowID, to-1)
	if err != nil {
		return err
	}

	if err := saveAndPublish(ctx, client, eng, updates); err != nil {
		return err
	}

	printer.Success("Row %d moved to %d\n", from, to)
	return nil
}

// parseRowNumber parses a 1-based row number and checks it against the
// sheet's row count.
func parseRowNumber(arg string, count int) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, printer.Error(
			fmt.Sprintf("invalid row number: %s", arg),
			"Rows are addressed by their 1-based number.",
			nil,
		)
	}
	if n > count {
		return 0, printer.Error(
			fmt.Sprintf("row %d does not exist", n),
			fmt.Sprintf("Sheet has %d rows.", count),
			nil,
		)
	}
	return n, nil
}
