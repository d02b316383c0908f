// Package grid owns the structural state of one spreadsheet: ordered
// columns and rows, the sparse cell map, and merge regions. All mutations
// go through Grid methods, are synchronous, and return the updated entity
// or a typed failure; the grid is never left inconsistent. Recomputation
// of formula values is the engine's job, not the grid's.
package grid

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dsdsmelo/gridnote/internal/eval"
	"github.com/dsdsmelo/gridnote/internal/refs"
	"github.com/dsdsmelo/gridnote/pkg/sheet"
)

// Grid is the mutable grid model for a single spreadsheet.
type Grid struct {
	meta    sheet.Spreadsheet
	columns []*sheet.Column // sorted by OrderIndex, indices dense
	rows    []*sheet.Row    // sorted by OrderIndex, indices dense
	cells   map[string]*sheet.Cell
	merges  []*sheet.Merge
}

// New creates an empty grid for a new spreadsheet.
func New(projectID, name string) *Grid {
	now := time.Now().UnixMilli()
	return &Grid{
		meta: sheet.Spreadsheet{
			ID:          uuid.New().String(),
			ProjectID:   projectID,
			Name:        name,
			CreatedAtMs: now,
			UpdatedAtMs: now,
		},
		cells: make(map[string]*sheet.Cell),
	}
}

// FromSnapshot rebuilds a grid from its persisted form. Order indices are
// renumbered dense in sorted order; computed values in the snapshot are
// ignored (they are rebuilt by the engine).
func FromSnapshot(snap *sheet.Snapshot) (*Grid, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	g := &Grid{
		meta:  snap.Meta,
		cells: make(map[string]*sheet.Cell, len(snap.Cells)),
	}
	g.columns = append(g.columns, snap.Columns...)
	sort.Slice(g.columns, func(i, j int) bool { return g.columns[i].OrderIndex < g.columns[j].OrderIndex })
	g.rows = append(g.rows, snap.Rows...)
	sort.Slice(g.rows, func(i, j int) bool { return g.rows[i].OrderIndex < g.rows[j].OrderIndex })
	g.renumberColumns()
	g.renumberRows()

	for _, c := range snap.Cells {
		cc := *c
		cc.Computed = ""
		g.cells[sheet.CellKey(c.RowID, c.ColumnID)] = &cc
	}
	for _, m := range snap.Merges {
		mm := *m
		g.merges = append(g.merges, &mm)
	}
	return g, nil
}

// Snapshot captures the grid's persistent state. Computed values are not
// included; they are always rebuilt from raw values on load.
func (g *Grid) Snapshot() *sheet.Snapshot {
	snap := &sheet.Snapshot{
		Meta:  g.meta,
		Cells: make(map[string]*sheet.Cell, len(g.cells)),
	}
	for _, c := range g.columns {
		cc := *c
		snap.Columns = append(snap.Columns, &cc)
	}
	for _, r := range g.rows {
		rr := *r
		snap.Rows = append(snap.Rows, &rr)
	}
	for k, c := range g.cells {
		cc := *c
		cc.Computed = ""
		snap.Cells[k] = &cc
	}
	for _, m := range g.merges {
		mm := *m
		snap.Merges = append(snap.Merges, &mm)
	}
	return snap
}

// Meta returns the spreadsheet's identity and timestamps.
func (g *Grid) Meta() sheet.Spreadsheet { return g.meta }

// Rename changes the sheet's display name.
func (g *Grid) Rename(name string) {
	g.meta.Name = name
	g.touch()
}

// SetDescription changes the sheet's description.
func (g *Grid) SetDescription(description string) {
	g.meta.Description = description
	g.touch()
}

// Columns returns the ordered column list.
func (g *Grid) Columns() []*sheet.Column { return g.columns }

// Rows returns the ordered row list.
func (g *Grid) Rows() []*sheet.Row { return g.rows }

// Merges returns the merge list.
func (g *Grid) Merges() []*sheet.Merge { return g.merges }

// ColumnCount returns the number of columns.
func (g *Grid) ColumnCount() int { return len(g.columns) }

// RowCount returns the number of rows.
func (g *Grid) RowCount() int { return len(g.rows) }

// ColumnByID finds a column.
func (g *Grid) ColumnByID(id string) (*sheet.Column, bool) {
	for _, c := range g.columns {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// RowByID finds a row.
func (g *Grid) RowByID(id string) (*sheet.Row, bool) {
	for _, r := range g.rows {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// Cell returns the cell at (rowID, columnID). Absence means empty.
func (g *Grid) Cell(rowID, columnID string) (*sheet.Cell, bool) {
	c, ok := g.cells[sheet.CellKey(rowID, columnID)]
	return c, ok
}

// CellAt returns the cell and its column at a grid coordinate.
func (g *Grid) CellAt(at refs.Coord) (*sheet.Cell, *sheet.Column, bool) {
	if !g.InBounds(at) {
		return nil, nil, false
	}
	col := g.columns[at.Col]
	c, ok := g.cells[sheet.CellKey(g.rows[at.Row].ID, col.ID)]
	if !ok {
		return nil, col, false
	}
	return c, col, true
}

// CoordOf maps entity IDs back to the current grid coordinate.
func (g *Grid) CoordOf(rowID, columnID string) (refs.Coord, bool) {
	row, okr := g.RowByID(rowID)
	col, okc := g.ColumnByID(columnID)
	if !okr || !okc {
		return refs.Coord{}, false
	}
	return refs.Coord{Row: row.OrderIndex, Col: col.OrderIndex}, true
}

// InBounds reports whether a coordinate lies inside the current extent.
func (g *Grid) InBounds(at refs.Coord) bool {
	return at.Row >= 0 && at.Row < len(g.rows) && at.Col >= 0 && at.Col < len(g.columns)
}

// AddColumn appends a column at the rightmost position.
func (g *Grid) AddColumn(name string, colType sheet.ColumnType, width int) (*sheet.Column, error) {
	if err := colType.Validate(); err != nil {
		return nil, err
	}
	col := &sheet.Column{
		ID:         uuid.New().String(),
		Name:       name,
		Type:       colType,
		Width:      width,
		OrderIndex: len(g.columns),
	}
	g.columns = append(g.columns, col)
	g.touch()
	return col, nil
}

// RemoveColumn deletes a column, cascading to its cells and clipping or
// removing merges that referenced it.
func (g *Grid) RemoveColumn(id string) error {
	col, ok := g.ColumnByID(id)
	if !ok {
		return &NotFoundError{Entity: "column", ID: id}
	}
	idx := col.OrderIndex

	for key, c := range g.cells {
		if c.ColumnID == id {
			delete(g.cells, key)
		}
	}
	g.columns = append(g.columns[:idx], g.columns[idx+1:]...)
	g.renumberColumns()
	g.clipMergesCol(idx)
	g.touch()
	return nil
}

// ReorderColumn moves a column to a new 0-based position, shifting the
// columns in between.
func (g *Grid) ReorderColumn(id string, newIndex int) (*sheet.Column, error) {
	col, ok := g.ColumnByID(id)
	if !ok {
		return nil, &NotFoundError{Entity: "column", ID: id}
	}
	if newIndex < 0 || newIndex >= len(g.columns) {
		return nil, &OutOfBoundsError{Col: newIndex, Rows: len(g.rows), Cols: len(g.columns)}
	}
	old := col.OrderIndex
	g.columns = append(g.columns[:old], g.columns[old+1:]...)
	g.columns = append(g.columns[:newIndex], append([]*sheet.Column{col}, g.columns[newIndex:]...)...)
	g.renumberColumns()
	g.touch()
	return col, nil
}

// AddColumnFormat appends a conditional-format rule to a column. Rules
// apply in the order they were added; the first match wins.
func (g *Grid) AddColumnFormat(columnID string, f sheet.ConditionalFormat) error {
	col, ok := g.ColumnByID(columnID)
	if !ok {
		return &NotFoundError{Entity: "column", ID: columnID}
	}
	if err := f.Validate(); err != nil {
		return err
	}
	col.Formats = append(col.Formats, f)
	g.touch()
	return nil
}

// RemoveColumnFormat deletes one conditional-format rule from a column.
func (g *Grid) RemoveColumnFormat(columnID, ruleID string) error {
	col, ok := g.ColumnByID(columnID)
	if !ok {
		return &NotFoundError{Entity: "column", ID: columnID}
	}
	for i := range col.Formats {
		if col.Formats[i].ID == ruleID {
			col.Formats = append(col.Formats[:i], col.Formats[i+1:]...)
			g.touch()
			return nil
		}
	}
	return &NotFoundError{Entity: "format rule", ID: ruleID}
}

// ReorderColumnFormat moves a conditional-format rule to a new 0-based
// position in the column's rule list, shifting the rules in between.
// Rules match in list order, so this changes which rule wins.
func (g *Grid) ReorderColumnFormat(columnID, ruleID string, newIndex int) error {
	col, ok := g.ColumnByID(columnID)
	if !ok {
		return &NotFoundError{Entity: "column", ID: columnID}
	}
	if newIndex < 0 || newIndex >= len(col.Formats) {
		return &OutOfBoundsError{Row: newIndex, Rows: len(col.Formats)}
	}
	old := -1
	for i := range col.Formats {
		if col.Formats[i].ID == ruleID {
			old = i
			break
		}
	}
	if old < 0 {
		return &NotFoundError{Entity: "format rule", ID: ruleID}
	}
	rule := col.Formats[old]
	col.Formats = append(col.Formats[:old], col.Formats[old+1:]...)
	col.Formats = append(col.Formats[:newIndex], append([]sheet.ConditionalFormat{rule}, col.Formats[newIndex:]...)...)
	g.touch()
	return nil
}

// ClearColumnFormats removes every conditional-format rule from a column.
func (g *Grid) ClearColumnFormats(columnID string) error {
	col, ok := g.ColumnByID(columnID)
	if !ok {
		return &NotFoundError{Entity: "column", ID: columnID}
	}
	col.Formats = nil
	g.touch()
	return nil
}

// AddRow appends a row at the bottom.
func (g *Grid) AddRow() (*sheet.Row, error) {
	row := &sheet.Row{
		ID:         uuid.New().String(),
		OrderIndex: len(g.rows),
	}
	g.rows = append(g.rows, row)
	g.touch()
	return row, nil
}

// RemoveRow deletes a row, cascading to its cells and clipping or removing
// merges that referenced it.
func (g *Grid) RemoveRow(id string) error {
	row, ok := g.RowByID(id)
	if !ok {
		return &NotFoundError{Entity: "row", ID: id}
	}
	idx := row.OrderIndex

	for key, c := range g.cells {
		if c.RowID == id {
			delete(g.cells, key)
		}
	}
	g.rows = append(g.rows[:idx], g.rows[idx+1:]...)
	g.renumberRows()
	g.clipMergesRow(idx)
	g.touch()
	return nil
}

// ReorderRow moves a row to a new 0-based position.
func (g *Grid) ReorderRow(id string, newIndex int) (*sheet.Row, error) {
	row, ok := g.RowByID(id)
	if !ok {
		return nil, &NotFoundError{Entity: "row", ID: id}
	}
	if newIndex < 0 || newIndex >= len(g.rows) {
		return nil, &OutOfBoundsError{Row: newIndex, Rows: len(g.rows), Cols: len(g.columns)}
	}
	old := row.OrderIndex
	g.rows = append(g.rows[:old], g.rows[old+1:]...)
	g.rows = append(g.rows[:newIndex], append([]*sheet.Row{row}, g.rows[newIndex:]...)...)
	g.renumberRows()
	g.touch()
	return row, nil
}

// SetCellValue stores raw user input at (rowID, columnID). Raw input is
// never rejected: coercion failure against the column type stores the text
// as-is and sets the TypeMismatch flag for the UI. An empty raw value
// deletes the cell (absence means empty). Computed values are untouched
// here; the engine owns them.
func (g *Grid) SetCellValue(rowID, columnID, raw string) (*sheet.Cell, error) {
	if _, ok := g.RowByID(rowID); !ok {
		return nil, &NotFoundError{Entity: "row", ID: rowID}
	}
	col, ok := g.ColumnByID(columnID)
	if !ok {
		return nil, &NotFoundError{Entity: "column", ID: columnID}
	}

	key := sheet.CellKey(rowID, columnID)
	if raw == "" {
		if c, existed := g.cells[key]; existed {
			delete(g.cells, key)
			g.touch()
			c.Raw = ""
			c.Computed = ""
			c.TypeMismatch = false
			return c, nil
		}
		return &sheet.Cell{RowID: rowID, ColumnID: columnID}, nil
	}

	c, ok := g.cells[key]
	if !ok {
		c = &sheet.Cell{
			ID:       uuid.New().String(),
			RowID:    rowID,
			ColumnID: columnID,
		}
		g.cells[key] = c
	}
	c.Raw = raw
	c.TypeMismatch = false
	if !c.IsFormula() {
		v := eval.CoerceRaw(raw, col.Type)
		c.TypeMismatch = v.IsError()
	}
	g.touch()
	return c, nil
}

// SetComputed writes the engine-owned computed value of a cell.
func (g *Grid) SetComputed(rowID, columnID, computed string) {
	if c, ok := g.cells[sheet.CellKey(rowID, columnID)]; ok {
		c.Computed = computed
	}
}

// AddMerge creates a merge region. Fails with *OutOfBoundsError if any
// coordinate exceeds the current extent and *OverlapError if the rectangle
// intersects an existing merge; in both cases the merge list is unchanged.
func (g *Grid) AddMerge(startRow, startCol, endRow, endCol int) (*sheet.Merge, error) {
	m := &sheet.Merge{
		ID:       uuid.New().String(),
		StartRow: startRow,
		StartCol: startCol,
		EndRow:   endRow,
		EndCol:   endCol,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if endRow >= len(g.rows) || endCol >= len(g.columns) {
		return nil, &OutOfBoundsError{Row: endRow, Col: endCol, Rows: len(g.rows), Cols: len(g.columns)}
	}
	for _, existing := range g.merges {
		if m.Overlaps(existing) {
			return nil, &OverlapError{Existing: existing}
		}
	}
	g.merges = append(g.merges, m)
	g.touch()
	return m, nil
}

// RemoveMerge deletes a merge region by ID.
func (g *Grid) RemoveMerge(id string) error {
	for i, m := range g.merges {
		if m.ID == id {
			g.merges = append(g.merges[:i], g.merges[i+1:]...)
			g.touch()
			return nil
		}
	}
	return &NotFoundError{Entity: "merge", ID: id}
}

// MergeAt returns the merge containing a coordinate, if any.
func (g *Grid) MergeAt(at refs.Coord) (*sheet.Merge, bool) {
	for _, m := range g.merges {
		if m.Contains(at.Row, at.Col) {
			return m, true
		}
	}
	return nil, false
}

// Suppressed reports whether a coordinate is hidden by a merge: inside a
// merge region but not its top-left cell.
func (g *Grid) Suppressed(at refs.Coord) bool {
	m, ok := g.MergeAt(at)
	return ok && !(m.StartRow == at.Row && m.StartCol == at.Col)
}

// FormulaCells returns every formula cell with its current coordinate,
// sorted by (row, col).
func (g *Grid) FormulaCells() []FormulaCell {
	var out []FormulaCell
	for rowIdx, row := range g.rows {
		for colIdx, col := range g.columns {
			if c, ok := g.cells[sheet.CellKey(row.ID, col.ID)]; ok && c.IsFormula() {
				out = append(out, FormulaCell{Cell: c, At: refs.Coord{Row: rowIdx, Col: colIdx}})
			}
		}
	}
	return out
}

// FormulaCell pairs a formula cell with its current grid coordinate.
type FormulaCell struct {
	Cell *sheet.Cell
	At   refs.Coord
}

func (g *Grid) renumberColumns() {
	for i, c := range g.columns {
		c.OrderIndex = i
	}
}

func (g *Grid) renumberRows() {
	for i, r := range g.rows {
		r.OrderIndex = i
	}
}

// clipMergesRow adjusts merges after the row at idx was removed: merges
// entirely inside the removed strip disappear, the rest shrink or shift.
func (g *Grid) clipMergesRow(idx int) {
	kept := g.merges[:0]
	for _, m := range g.merges {
		if m.StartRow == m.EndRow && m.StartRow == idx {
			continue
		}
		if m.StartRow > idx {
			m.StartRow--
		}
		if m.EndRow >= idx {
			m.EndRow--
		}
		if m.StartRow == m.EndRow && m.StartCol == m.EndCol {
			continue // degenerate single cell
		}
		kept = append(kept, m)
	}
	g.merges = kept
}

// clipMergesCol adjusts merges after the column at idx was removed.
func (g *Grid) clipMergesCol(idx int) {
	kept := g.merges[:0]
	for _, m := range g.merges {
		if m.StartCol == m.EndCol && m.StartCol == idx {
			continue
		}
		if m.StartCol > idx {
			m.StartCol--
		}
		if m.EndCol >= idx {
			m.EndCol--
		}
		if m.StartRow == m.EndRow && m.StartCol == m.EndCol {
			continue
		}
		kept = append(kept, m)
	}
	g.merges = kept
}

func (g *Grid) touch() {
	g.meta.UpdatedAtMs = time.Now().UnixMilli()
}
