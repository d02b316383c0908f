package store

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

// TestSheetKey tests sheet key generation
func TestSheetKey(t *testing.T) {
	sheetID := uuid.New().String()

	key := SheetKey("website-redesign", sheetID)

	expected := "gridnote:website-redesign:sheet:" + sheetID
	if key != expected {
		t.Errorf("SheetKey() = %q, expected %q", key, expected)
	}
	if !strings.HasPrefix(key, "gridnote:") {
		t.Error("sheet key should start with 'gridnote:'")
	}
}

// TestSheetSubKeys tests the per-sheet entity keys
func TestSheetSubKeys(t *testing.T) {
	sheetID := uuid.New().String()
	base := "gridnote:p:sheet:" + sheetID

	if got := SheetColumnsKey("p", sheetID); got != base+":columns" {
		t.Errorf("SheetColumnsKey() = %q", got)
	}
	if got := SheetRowsKey("p", sheetID); got != base+":rows" {
		t.Errorf("SheetRowsKey() = %q", got)
	}
	if got := SheetMergesKey("p", sheetID); got != base+":merges" {
		t.Errorf("SheetMergesKey() = %q", got)
	}
	if got := SheetCellsKey("p", sheetID); got != base+":cells" {
		t.Errorf("SheetCellsKey() = %q", got)
	}
}

// TestSheetIndexKey tests the project sheet-index key
func TestSheetIndexKey(t *testing.T) {
	if got := SheetIndexKey("p"); got != "gridnote:p:sheets" {
		t.Errorf("SheetIndexKey() = %q", got)
	}
}

// TestCellEventsChannel tests the Pub/Sub channel name
func TestCellEventsChannel(t *testing.T) {
	if got := CellEventsChannel("p"); got != "gridnote:p:cell_events" {
		t.Errorf("CellEventsChannel() = %q", got)
	}
}
