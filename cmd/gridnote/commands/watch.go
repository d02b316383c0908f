package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dsdsmelo/gridnote/internal/printer"
	"github.com/dsdsmelo/gridnote/internal/resolver"
	"github.com/dsdsmelo/gridnote/internal/watch"
)

var (
	watchSheetRef     string
	watchOutputFormat string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor real-time cell activity",
	Long: `Monitor real-time cell changes across the project.

Streams cell edits and recomputed formula values as they occur, from any
terminal editing sheets in the same project.

Output Formats:
  default - Human-readable output with timestamps
  json    - Line-delimited JSON for programmatic processing

Examples:
  # Watch all activity in the project
  gridnote watch

  # Watch one sheet only
  gridnote watch --sheet 3f2a61b2

  # Export events as JSON
  gridnote watch --output=json > events.jsonl`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchSheetRef, "sheet", "s", "", "Only show events for this sheet (ID or short prefix)")
	watchCmd.Flags().StringVarP(&watchOutputFormat, "output", "o", "default", "Output format (default or json)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Validate output format
	var outputFormat watch.OutputFormat
	switch watchOutputFormat {
	case "default":
		outputFormat = watch.OutputFormatDefault
	case "json":
		outputFormat = watch.OutputFormatJSON
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", watchOutputFormat),
			[]string{"Valid formats: default, json"},
		)
	}

	_, client, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	sheetID := ""
	if watchSheetRef != "" {
		sheetID, err = resolver.ResolveSheetID(ctx, client, watchSheetRef)
		if err != nil {
			return err
		}
	}

	return watch.StreamCellEvents(ctx, client, sheetID, outputFormat, os.Stdout)
}
