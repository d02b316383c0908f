package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dsdsmelo/gridnote/internal/printer"
	"github.com/dsdsmelo/gridnote/internal/refs"
	"github.com/dsdsmelo/gridnote/pkg/sheet"
)

var (
	colSheetRef string
	colName     string
	colType     string
	colWidth    int
	colTemplate string
)

var colCmd = &cobra.Command{
	Use:   "col",
	Short: "Manage sheet columns",
	Long:  `Add, remove, and move columns. Columns are addressed by their letters (A, B, ..., AA).`,
}

var colAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a column at the right",
	Long: `Append a column at the rightmost position.

Column types control how raw input is interpreted:
  text, number, date, currency, percentage, formula

Formula columns take a --template whose "{row}" placeholder expands to
the 1-based row number, instantiated for every existing and future row.

Examples:
  gridnote col add --sheet 3f2a61b2 --name "Cost" --type number
  gridnote col add --sheet 3f2a61b2 --name "Total" --type formula --template "=A{row}*B{row}"`,
	RunE: runColAdd,
}

var colRmCmd = &cobra.Command{
	Use:   "rm <col>",
	Short: "Remove a column",
	Long: `Remove a column by its letters.

The column's cells are deleted, later columns shift left, merges covering
the column shrink or disappear, and formulas that referenced the deleted
cells recompute to #REF!.`,
	Args: cobra.ExactArgs(1),
	RunE: runColRm,
}

var colMvCmd = &cobra.Command{
	Use:   "mv <col> <to>",
	Short: "Move a column to a new position",
	Long:  `Move a column to the position of another column's letters, shifting the columns in between.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runColMv,
}

func init() {
	colCmd.PersistentFlags().StringVarP(&colSheetRef, "sheet", "s", "", "Sheet ID or short prefix (required)")
	colCmd.MarkPersistentFlagRequired("sheet")

	colAddCmd.Flags().StringVarP(&colName, "name", "n", "", "Column header label (required)")
	colAddCmd.Flags().StringVarP(&colType, "type", "t", "text", "Column type (text, number, date, currency, percentage, formula)")
	colAddCmd.Flags().IntVarP(&colWidth, "width", "w", 120, "Display width in pixels")
	colAddCmd.Flags().StringVar(&colTemplate, "template", "", "Formula template for formula columns (\"{row}\" expands to the row number)")
	colAddCmd.MarkFlagRequired("name")

	colCmd.AddCommand(colAddCmd)
	colCmd.AddCommand(colRmCmd)
	colCmd.AddCommand(colMvCmd)
	rootCmd.AddCommand(colCmd)
}

func runColAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	colTypeValue := sheet.ColumnType(colType)
	if err := colTypeValue.Validate(); err != nil {
		return printer.Error(
			fmt.Sprintf("invalid column type: %s", colType),
			fmt.Sprintf("Error: %v", err),
			[]string{"Valid types: text, number, date, currency, percentage, formula"},
		)
	}
	if colTemplate != "" && colTypeValue != sheet.ColumnTypeFormula {
		return printer.Error(
			"--template requires --type formula",
			fmt.Sprintf("Column type is %q.", colType),
			nil,
		)
	}

	_, client, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	eng, err := loadEngine(ctx, client, colSheetRef)
	if err != nil {
		return err
	}

	col, updates, err := eng.AddColumn(colName, colTypeValue, colWidth, colTemplate)
	if err != nil {
		return err
	}

	if err := saveAndPublish(ctx, client, eng, updates); err != nil {
		return err
	}

	printer.Success("Column %s (%s) added\n", refs.ColumnLetters(col.OrderIndex), col.Name)
	return nil
}

func runColRm(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, client, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	eng, err := loadEngine(ctx, client, colSheetRef)
	if err != nil {
		return err
	}

	col, err := columnByLetters(eng.Grid().Columns(), args[0])
	if err != nil {
		return err
	}

	updates, err := eng.RemoveColumn(col.ID)
	if err != nil {
		return err
	}

	if err := saveAndPublish(ctx, client, eng, updates); err != nil {
		return err
	}

	printer.Success("Column %s removed\n", strings.ToUpper(args[0]))
	return nil
}

func runColMv(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, client, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	eng, err := loadEngine(ctx, client, colSheetRef)
	if err != nil {
		return err
	}

	columns := eng.Grid().Columns()
	col, err := columnByLetters(columns, args[0])
	if err != nil {
		return err
	}
	target, err := columnByLetters(columns, args[1])
	if err != nil {
		return err
	}

	updates, err := eng.ReorderColumn(col.ID, target.OrderIndex)
	if err != nil {
		return err
	}

	if err := saveAndPublish(ctx, client, eng, updates); err != nil {
		return err
	}

	printer.Success("Column %s moved to %s\n", strings.ToUpper(args[0]), strings.ToUpper(args[1]))
	return nil
}

// columnByLetters resolves column letters (A, B, ..., AA) to the column
// at that position.
func columnByLetters(columns []*sheet.Column, letters string) (*sheet.Column, error) {
	at, err := refs.ParseLabel(strings.ToUpper(letters) + "1")
	if err != nil || at.Col >= len(columns) {
		return nil, printer.Error(
			fmt.Sprintf("no such column: %s", letters),
			fmt.Sprintf("Sheet has %d columns.", len(columns)),
			nil,
		)
	}
	return columns[at.Col], nil
}
