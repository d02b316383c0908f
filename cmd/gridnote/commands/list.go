package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dsdsmelo/gridnote/internal/store"
)

var (
	listJSON bool
)

// sheetInfo is the per-sheet row rendered by list.
type sheetInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Columns int    `json:"columns"`
	Rows    int    `json:"rows"`
	Cells   int    `json:"cells"`
	Updated string `json:"updated"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sheets in the project",
	Long: `List all sheets in the project with their shape and last update time.

Use --json for machine-readable output.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, client, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	ids, err := client.ListSheetIDs(ctx)
	if err != nil {
		return err
	}

	var infos []sheetInfo
	for _, id := range ids {
		snap, err := client.LoadSheet(ctx, id)
		if err != nil {
			if store.IsNotFound(err) {
				// Deleted between listing and loading
				continue
			}
			return fmt.Errorf("failed to load sheet %s: %w", id, err)
		}
		infos = append(infos, sheetInfo{
			ID:      snap.Meta.ID,
			Name:    snap.Meta.Name,
			Columns: len(snap.Columns),
			Rows:    len(snap.Rows),
			Cells:   len(snap.Cells),
			Updated: time.UnixMilli(snap.Meta.UpdatedAtMs).Format(time.RFC3339),
		})
	}

	// Output
	if len(infos) == 0 {
		if !listJSON {
			fmt.Println("No sheets found.")
			fmt.Println()
			fmt.Println("Run 'gridnote create --name \"My sheet\"' to create one.")
		} else {
			fmt.Println("[]")
		}
		return nil
	}

	if listJSON {
		outputJSON(infos)
	} else {
		outputTable(infos)
	}

	return nil
}

func outputJSON(infos []sheetInfo) {
	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func outputTable(infos []sheetInfo) {
	// Print header
	fmt.Printf("%-10s %-25s %8s %6s %6s  %s\n", "ID", "NAME", "COLUMNS", "ROWS", "CELLS", "UPDATED")

	// Print rows
	for _, info := range infos {
		name := info.Name
		if len(name) > 25 {
			name = name[:22] + "..."
		}
		fmt.Printf("%-10.8s %-25s %8d %6d %6d  %s\n", info.ID, name, info.Columns, info.Rows, info.Cells, info.Updated)
	}
}
