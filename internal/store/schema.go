package store

import "fmt"

// Redis key pattern helpers
//
// All Redis keys and Pub/Sub channels are namespaced by project name so
// multiple gridnote projects can safely share a single Redis server.
//
// Key pattern: gridnote:{project}:{entity}...
// Channel pattern: gridnote:{project}:{event_type}_events

// SheetIndexKey returns the Redis key for the set of sheet IDs in a project.
// Pattern: gridnote:{project}:sheets
func SheetIndexKey(project string) string {
	return fmt.Sprintf("gridnote:%s:sheets", project)
}

// SheetKey returns the Redis key for a sheet's metadata hash.
// Pattern: gridnote:{project}:sheet:{sheet_id}
func SheetKey(project, sheetID string) string {
	return fmt.Sprintf("gridnote:%s:sheet:%s", project, sheetID)
}

// SheetColumnsKey returns the Redis key for a sheet's column list.
// Pattern: gridnote:{project}:sheet:{sheet_id}:columns
func SheetColumnsKey(project, sheetID string) string {
	return fmt.Sprintf("gridnote:%s:sheet:%s:columns", project, sheetID)
}

// SheetRowsKey returns the Redis key for a sheet's row list.
// Pattern: gridnote:{project}:sheet:{sheet_id}:rows
func SheetRowsKey(project, sheetID string) string {
	return fmt.Sprintf("gridnote:%s:sheet:%s:rows", project, sheetID)
}

// SheetMergesKey returns the Redis key for a sheet's merge list.
// Pattern: gridnote:{project}:sheet:{sheet_id}:merges
func SheetMergesKey(project, sheetID string) string {
	return fmt.Sprintf("gridnote:%s:sheet:%s:merges", project, sheetID)
}

// SheetCellsKey returns the Redis key for a sheet's cell hash. Fields are
// keyed "{row_id}:{column_id}", values are JSON-encoded cells.
// Pattern: gridnote:{project}:sheet:{sheet_id}:cells
func SheetCellsKey(project, sheetID string) string {
	return fmt.Sprintf("gridnote:%s:sheet:%s:cells", project, sheetID)
}

// CellEventsChannel returns the Pub/Sub channel name for cell events.
// Pattern: gridnote:{project}:cell_events
func CellEventsChannel(project string) string {
	return fmt.Sprintf("gridnote:%s:cell_events", project)
}
