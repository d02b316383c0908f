// Package watch streams live cell events from a project's Redis channel
// to a terminal or a JSON pipeline.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dsdsmelo/gridnote/internal/store"
)

// OutputFormat selects how streamed events are rendered.
type OutputFormat string

const (
	// OutputFormatDefault renders human-readable lines with timestamps
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSON renders line-delimited JSON for programmatic processing
	OutputFormatJSON OutputFormat = "json"
)

// StreamCellEvents subscribes to the project's cell_events channel and
// writes each event to out until the context is cancelled. When sheetID
// is non-empty, events for other sheets are filtered out. Subscription
// errors are reported inline but do not stop the stream.
func StreamCellEvents(ctx context.Context, client *store.Client, sheetID string, format OutputFormat, out io.Writer) error {
	sub, err := client.SubscribeCellEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to cell events: %w", err)
	}
	defer sub.Close()

	if format == OutputFormatDefault {
		fmt.Fprintln(out, "Watching cell activity (Ctrl+C to stop)...")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-sub.Errors():
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "! stream error: %v\n", err)

		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if sheetID != "" && event.SheetID != sheetID {
				continue
			}
			if err := writeEvent(out, event, format); err != nil {
				return err
			}
		}
	}
}

func writeEvent(out io.Writer, event *store.CellEvent, format OutputFormat) error {
	if format == OutputFormatJSON {
		line, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal cell event: %w", err)
		}
		_, err = fmt.Fprintln(out, string(line))
		return err
	}

	ts := time.UnixMilli(event.UpdatedAtMs).Format("15:04:05")
	value := event.Computed
	if value == "" {
		value = event.Raw
	}
	_, err := fmt.Fprintf(out, "[%s] 📝 sheet %.8s cell %.8s:%.8s = %q\n",
		ts, event.SheetID, event.RowID, event.ColumnID, value)
	return err
}
