package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dsdsmelo/gridnote/internal/depgraph"
	"github.com/dsdsmelo/gridnote/internal/formula"
	"github.com/dsdsmelo/gridnote/internal/printer"
	"github.com/dsdsmelo/gridnote/internal/refs"
)

var (
	setSheetRef string
)

var setCmd = &cobra.Command{
	Use:   "set <cell> <value>",
	Short: "Set a cell's value",
	Long: `Set the raw value of one cell, addressed by its A1-style label.

Values starting with '=' are formulas and are recomputed automatically,
along with every cell that depends on them. Other values are stored
verbatim and interpreted according to the column type.

Examples:
  # Set a literal
  gridnote set --sheet 3f2a61b2 B2 "150"

  # Set a formula
  gridnote set --sheet 3f2a61b2 B4 "=SUM(B1:B3)"

  # Clear a cell
  gridnote set --sheet 3f2a61b2 B2 ""`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func init() {
	setCmd.Flags().StringVarP(&setSheetRef, "sheet", "s", "", "Sheet ID or short prefix (required)")
	setCmd.MarkFlagRequired("sheet")
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cellLabel, value := args[0], args[1]

	at, err := refs.ParseLabel(cellLabel)
	if err != nil {
		return printer.Error(
			fmt.Sprintf("invalid cell reference: %s", cellLabel),
			fmt.Sprintf("Error: %v", err),
			[]string{"Use A1-style labels: column letters followed by a 1-based row number (A1, B12, AA3)"},
		)
	}

	_, client, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	eng, err := loadEngine(ctx, client, setSheetRef)
	if err != nil {
		return err
	}

	g := eng.Grid()
	if !g.InBounds(at) {
		return printer.Error(
			fmt.Sprintf("cell %s is outside the grid", cellLabel),
			fmt.Sprintf("Sheet has %d columns and %d rows.", g.ColumnCount(), g.RowCount()),
			[]string{"Add rows or columns first:\n  gridnote row add --sheet <id>\n  gridnote col add --sheet <id> --name <name>"},
		)
	}

	rowID := g.Rows()[at.Row].ID
	columnID := g.Columns()[at.Col].ID

	updates, err := eng.SetCell(rowID, columnID, value)
	if formula.IsParseError(err) {
		return printer.Error(
			fmt.Sprintf("invalid formula: %s", value),
			fmt.Sprintf("Error: %v", err),
			[]string{"The cell keeps its previous value. Check the formula syntax:\n  =A1*2\n  =SUM(B1:B10)\n  =IF(C1>100,\"over\",\"ok\")"},
		)
	}
	if err != nil && !depgraph.IsCycleError(err) {
		return err
	}
	cycleErr := err

	if err := saveAndPublish(ctx, client, eng, updates); err != nil {
		return err
	}

	if cycleErr != nil {
		printer.Warning("circular reference: %v\n", cycleErr)
	}

	printer.Success("%s = %q\n", cellLabel, value)
	for _, u := range updates {
		if u.Computed != "" {
			printer.Info("  %s → %s\n", refs.FormatLabel(u.At), u.Computed)
		}
	}

	return nil
}
