package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dsdsmelo/gridnote/internal/condfmt"
	"github.com/dsdsmelo/gridnote/internal/engine"
	"github.com/dsdsmelo/gridnote/internal/printer"
	"github.com/dsdsmelo/gridnote/internal/refs"
)

var (
	showSheetRef string
	showRaw      bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Render a sheet as a grid",
	Long: `Render a sheet in the terminal: column headers, evaluated cell
values, merge regions, and conditional-format styling.

Formula cells show their computed value; pass --raw to see the formulas
and raw input instead. Cells hidden by a merge render empty.

Examples:
  gridnote show --sheet 3f2a61b2
  gridnote show --sheet 3f2a61b2 --raw`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showSheetRef, "sheet", "s", "", "Sheet ID or short prefix (required)")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Show raw values and formulas instead of computed values")
	showCmd.MarkFlagRequired("sheet")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, client, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	eng, err := loadEngine(ctx, client, showSheetRef)
	if err != nil {
		return err
	}

	renderSheet(eng)
	return nil
}

func renderSheet(eng *engine.Engine) {
	g := eng.Grid()
	meta := g.Meta()

	printer.Printf("%s  (%.8s)\n", printer.Header(meta.Name), meta.ID)
	if meta.Description != "" {
		printer.Printf("%s\n", meta.Description)
	}
	printer.Printf("Updated %s\n\n", time.UnixMilli(meta.UpdatedAtMs).Format(time.RFC3339))

	const cellWidth = 14

	// Header row: row-number gutter plus lettered, named columns
	fmt.Printf("%4s ", "")
	for i, col := range g.Columns() {
		label := refs.ColumnLetters(i)
		if col.Name != "" && col.Name != label {
			label = fmt.Sprintf("%s:%s", label, col.Name)
		}
		fmt.Printf("%-*.*s ", cellWidth, cellWidth, printer.Header(label))
	}
	fmt.Println()

	for rowIdx := range g.Rows() {
		fmt.Printf("%4d ", rowIdx+1)
		for colIdx, col := range g.Columns() {
			at := refs.Coord{Row: rowIdx, Col: colIdx}

			if g.Suppressed(at) {
				fmt.Printf("%-*s ", cellWidth, "")
				continue
			}

			value, raw := displayValue(eng, at)
			styled := printer.CellValue(value, false)
			if intent, matched := condfmt.IntentFor(col.Formats, value, raw); matched && !intent.Zero() {
				styled = printer.Paint(value, intent.BackgroundColor, intent.TextColor, intent.Bold)
			}
			fmt.Printf("%-*.*s ", cellWidth, cellWidth, styled)
		}
		fmt.Println()
	}

	if merges := g.Merges(); len(merges) > 0 {
		fmt.Println()
		for _, m := range merges {
			r := refs.Range{
				Start: refs.Coord{Row: m.StartRow, Col: m.StartCol},
				End:   refs.Coord{Row: m.EndRow, Col: m.EndCol},
			}
			printer.Printf("merge %.8s: %s\n", m.ID, refs.FormatRange(r))
		}
	}
}

// displayValue picks what one cell shows (raw input in --raw mode, the
// evaluated value otherwise) along with the raw text behind it, which
// conditional formats need for their emptiness checks.
func displayValue(eng *engine.Engine, at refs.Coord) (value, raw string) {
	cell, _, ok := eng.Grid().CellAt(at)
	if !ok {
		return "", ""
	}
	if showRaw {
		return cell.Raw, cell.Raw
	}
	if cell.IsFormula() {
		return cell.Computed, cell.Raw
	}
	return eng.Value(at).Display(), cell.Raw
}
