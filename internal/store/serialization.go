package store

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dsdsmelo/gridnote/pkg/sheet"
)

// Serialization helpers for converting between Go structs and Redis data.
//
// Redis stores data as string-to-string maps (hashes). Sheet metadata maps
// to individual hash fields for queryability; columns, rows, and merges are
// JSON-encoded lists stored under their own keys; cells are JSON-encoded
// values in a hash keyed by "{row_id}:{column_id}".

// SheetToHash converts sheet metadata to a Redis hash format.
func SheetToHash(s *sheet.Spreadsheet) map[string]interface{} {
	return map[string]interface{}{
		"id":            s.ID,
		"project_id":    s.ProjectID,
		"name":          s.Name,
		"description":   s.Description,
		"created_at_ms": s.CreatedAtMs,
		"updated_at_ms": s.UpdatedAtMs,
	}
}

// HashToSheet converts a Redis hash back to sheet metadata.
func HashToSheet(hash map[string]string) (*sheet.Spreadsheet, error) {
	createdAtMs, err := strconv.ParseInt(hash["created_at_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at_ms field: %w", err)
	}
	updatedAtMs, err := strconv.ParseInt(hash["updated_at_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid updated_at_ms field: %w", err)
	}

	return &sheet.Spreadsheet{
		ID:          hash["id"],
		ProjectID:   hash["project_id"],
		Name:        hash["name"],
		Description: hash["description"],
		CreatedAtMs: createdAtMs,
		UpdatedAtMs: updatedAtMs,
	}, nil
}

// CellsToHash converts the cell map to a Redis hash. Computed values are
// derived state and are not persisted.
func CellsToHash(cells map[string]*sheet.Cell) (map[string]interface{}, error) {
	hash := make(map[string]interface{}, len(cells))
	for key, c := range cells {
		stored := *c
		stored.Computed = ""
		cellJSON, err := json.Marshal(&stored)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal cell %s: %w", key, err)
		}
		hash[key] = string(cellJSON)
	}
	return hash, nil
}

// HashToCells converts a Redis hash back to the cell map.
func HashToCells(hash map[string]string) (map[string]*sheet.Cell, error) {
	cells := make(map[string]*sheet.Cell, len(hash))
	for key, cellJSON := range hash {
		var c sheet.Cell
		if err := json.Unmarshal([]byte(cellJSON), &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cell %s: %w", key, err)
		}
		cells[key] = &c
	}
	return cells, nil
}

// marshalList JSON-encodes a column, row, or merge list for storage.
func marshalList(v interface{}) (string, error) {
	listJSON, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal list: %w", err)
	}
	return string(listJSON), nil
}
