package sheet

import "fmt"

// Snapshot is the logical persistence form of a spreadsheet: the column
// list, row list, a sparse map of raw cell values keyed by "rowID:colID",
// and the merge list. Computed values are deliberately absent; they are
// rebuilt from raw values on load.
type Snapshot struct {
	Meta    Spreadsheet      `json:"meta"`
	Columns []*Column        `json:"columns"` // Sorted by OrderIndex
	Rows    []*Row           `json:"rows"`    // Sorted by OrderIndex
	Cells   map[string]*Cell `json:"cells"`   // Keyed by CellKey(rowID, colID)
	Merges  []*Merge         `json:"merges"`
}

// CellKey builds the sparse-map key for a cell.
func CellKey(rowID, columnID string) string {
	return rowID + ":" + columnID
}

// Validate checks the snapshot's entities and the uniqueness of order
// indices. It does not validate formula contents; the engine owns that.
func (s *Snapshot) Validate() error {
	if err := s.Meta.Validate(); err != nil {
		return err
	}
	colOrders := make(map[int]struct{}, len(s.Columns))
	for _, c := range s.Columns {
		if err := c.Validate(); err != nil {
			return err
		}
		if _, dup := colOrders[c.OrderIndex]; dup {
			return errDuplicateOrder("column", c.OrderIndex)
		}
		colOrders[c.OrderIndex] = struct{}{}
	}
	rowOrders := make(map[int]struct{}, len(s.Rows))
	for _, r := range s.Rows {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, dup := rowOrders[r.OrderIndex]; dup {
			return errDuplicateOrder("row", r.OrderIndex)
		}
		rowOrders[r.OrderIndex] = struct{}{}
	}
	for _, c := range s.Cells {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	for _, m := range s.Merges {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func errDuplicateOrder(entity string, index int) error {
	return fmt.Errorf("duplicate %s order index: %d", entity, index)
}
