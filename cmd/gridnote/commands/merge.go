package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dsdsmelo/gridnote/internal/grid"
	"github.com/dsdsmelo/gridnote/internal/printer"
	"github.com/dsdsmelo/gridnote/internal/refs"
)

var (
	mergeSheetRef string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Manage merge regions",
	Long: `Merge rectangular cell regions for display.

A merged region renders as one cell showing the top-left cell's value.
Merges never affect formulas: every underlying cell keeps its value and
stays addressable.`,
}

var mergeAddCmd = &cobra.Command{
	Use:   "add <range>",
	Short: "Merge a cell range",
	Long: `Merge an A1-style range (for example B2:D3) into one displayed cell.

Fails if the range overlaps an existing merge or reaches outside the grid.`,
	Args: cobra.ExactArgs(1),
	RunE: runMergeAdd,
}

var mergeRmCmd = &cobra.Command{
	Use:   "rm <range>",
	Short: "Unmerge a cell range",
	Long:  `Remove the merge covering the given A1-style range.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runMergeRm,
}

func init() {
	mergeCmd.PersistentFlags().StringVarP(&mergeSheetRef, "sheet", "s", "", "Sheet ID or short prefix (required)")
	mergeCmd.MarkPersistentFlagRequired("sheet")
	mergeCmd.AddCommand(mergeAddCmd)
	mergeCmd.AddCommand(mergeRmCmd)
	rootCmd.AddCommand(mergeCmd)
}

func runMergeAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	r, err := refs.ParseRange(args[0])
	if err != nil {
		return printer.Error(
			fmt.Sprintf("invalid range: %s", args[0]),
			fmt.Sprintf("Error: %v", err),
			[]string{"Use A1-style ranges: B2:D3"},
		)
	}
	r = r.Normalize()

	_, client, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	eng, err := loadEngine(ctx, client, mergeSheetRef)
	if err != nil {
		return err
	}

	m, err := eng.AddMerge(r.Start.Row, r.Start.Col, r.End.Row, r.End.Col)
	if err != nil {
		if overlap, ok := err.(*grid.OverlapError); ok {
			existing := refs.Range{
				Start: refs.Coord{Row: overlap.Existing.StartRow, Col: overlap.Existing.StartCol},
				End:   refs.Coord{Row: overlap.Existing.EndRow, Col: overlap.Existing.EndCol},
			}
			return printer.Error(
				"merge overlaps an existing region",
				fmt.Sprintf("Range %s overlaps merge %s.", args[0], refs.FormatRange(existing)),
				[]string{fmt.Sprintf("Unmerge the existing region first:\n  gridnote merge rm --sheet %s %s", mergeSheetRef, refs.FormatRange(existing))},
			)
		}
		return err
	}

	if err := saveAndPublish(ctx, client, eng, nil); err != nil {
		return err
	}

	printer.Success("Merged %s (%.8s)\n", refs.FormatRange(r), m.ID)
	return nil
}

func runMergeRm(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	r, err := refs.ParseRange(args[0])
	if err != nil {
		return printer.Error(
			fmt.Sprintf("invalid range: %s", args[0]),
			fmt.Sprintf("Error: %v", err),
			[]string{"Use A1-style ranges: B2:D3"},
		)
	}
	r = r.Normalize()

	_, client, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	eng, err := loadEngine(ctx, client, mergeSheetRef)
	if err != nil {
		return err
	}

	m, ok := eng.Grid().MergeAt(r.Start)
	if !ok {
		return printer.Error(
			fmt.Sprintf("no merge found at %s", refs.FormatLabel(r.Start)),
			"The range does not overlap any merge region.",
			[]string{"List merges:\n  gridnote show --sheet " + mergeSheetRef},
		)
	}

	if err := eng.RemoveMerge(m.ID); err != nil {
		return err
	}

	if err := saveAndPublish(ctx, client, eng, nil); err != nil {
		return err
	}

	printer.Success("Unmerged %s\n", args[0])
	return nil
}
