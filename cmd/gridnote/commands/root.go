package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dsdsmelo/gridnote/internal/config"
	"github.com/dsdsmelo/gridnote/internal/engine"
	"github.com/dsdsmelo/gridnote/internal/printer"
	"github.com/dsdsmelo/gridnote/internal/resolver"
	"github.com/dsdsmelo/gridnote/internal/store"
)

var (
	version string
	commit  string
	date    string

	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gridnote",
	Short: "Gridnote - Project spreadsheets with live formulas",
	Long: `Gridnote manages lightweight spreadsheets attached to a project:
typed columns, A1-style formulas with automatic recomputation, merges,
and conditional formatting.

Sheets are stored in Redis and cell changes are broadcast over Pub/Sub,
so edits from one terminal show up live in another.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "gridnote.yml", "Path to project configuration")
}

// loadConfig reads the project configuration from --config.
func loadConfig() (*config.GridnoteConfig, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, printer.Error(
			"failed to load project configuration",
			fmt.Sprintf("Error: %v", err),
			[]string{"Initialize the project first:\n  gridnote init"},
		)
	}
	return cfg, nil
}

// openStore loads the config and connects to the project's Redis.
// Caller must Close() the returned client.
func openStore(ctx context.Context) (*config.GridnoteConfig, *store.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	client, err := store.NewClient(cfg.RedisOptions(), cfg.Project)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create store client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, nil, printer.ErrorWithContext(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis at %s", cfg.Redis.Addr),
			nil,
			[]string{"Check that Redis is running and the address in gridnote.yml is correct"},
		)
	}

	return cfg, client, nil
}

// loadEngine resolves a sheet reference (full UUID or short prefix) and
// loads it into a recomputing engine.
func loadEngine(ctx context.Context, client *store.Client, sheetRef string) (*engine.Engine, error) {
	sheetID, err := resolver.ResolveSheetID(ctx, client, sheetRef)
	if err != nil {
		if ambiguous, ok := err.(*resolver.AmbiguousError); ok {
			return nil, fmt.Errorf("%s", resolver.FormatAmbiguousError(ambiguous))
		}
		return nil, err
	}

	snap, err := client.LoadSheet(ctx, sheetID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, printer.Error(
				fmt.Sprintf("sheet not found: %s", sheetRef),
				"The sheet may have been deleted.",
				[]string{"List available sheets:\n  gridnote list"},
			)
		}
		return nil, fmt.Errorf("failed to load sheet: %w", err)
	}

	eng, err := engine.FromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to restore sheet: %w", err)
	}
	return eng, nil
}

// saveAndPublish persists the engine state and broadcasts cell updates.
func saveAndPublish(ctx context.Context, client *store.Client, eng *engine.Engine, updates []engine.CellUpdate) error {
	snap := eng.Snapshot()
	if err := client.SaveSheet(ctx, snap); err != nil {
		return fmt.Errorf("failed to save sheet: %w", err)
	}

	for _, u := range updates {
		cell, ok := eng.Grid().Cell(u.RowID, u.ColumnID)
		raw := ""
		if ok {
			raw = cell.Raw
		}
		event := &store.CellEvent{
			SheetID:     snap.Meta.ID,
			RowID:       u.RowID,
			ColumnID:    u.ColumnID,
			Raw:         raw,
			Computed:    u.Computed,
			UpdatedAtMs: snap.Meta.UpdatedAtMs,
		}
		if err := client.PublishCellEvent(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
