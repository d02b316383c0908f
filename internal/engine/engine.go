// Package engine coordinates recomputation for one spreadsheet. It owns
// the dependency graph and the computed-value cache; the grid owns
// structure and raw values. Every mutation goes through the engine so
// that formula cells are never stale: a raw edit recomputes exactly the
// affected cells, a structural change rebuilds the graph and recomputes
// every formula cell.
package engine

import (
	"strings"

	"github.com/dsdsmelo/gridnote/internal/depgraph"
	"github.com/dsdsmelo/gridnote/internal/eval"
	"github.com/dsdsmelo/gridnote/internal/formula"
	"github.com/dsdsmelo/gridnote/internal/grid"
	"github.com/dsdsmelo/gridnote/internal/refs"
	"github.com/dsdsmelo/gridnote/pkg/sheet"
)

// Engine drives recomputation over a single grid.
type Engine struct {
	grid   *grid.Grid
	deps   *depgraph.Graph
	asts   map[string]*formula.Expr // cell ID -> parsed formula, nil on parse failure
	values map[refs.Coord]eval.Value
}

// CellUpdate reports one cell whose computed value changed.
type CellUpdate struct {
	RowID    string
	ColumnID string
	At       refs.Coord
	Computed string
}

// New wraps a grid and computes every formula cell from scratch.
func New(g *grid.Grid) *Engine {
	e := &Engine{
		grid: g,
		deps: depgraph.New(),
		asts: make(map[string]*formula.Expr),
	}
	e.rebuild()
	return e
}

// NewSheet creates an engine over a fresh empty grid.
func NewSheet(projectID, name string) *Engine {
	return New(grid.New(projectID, name))
}

// FromSnapshot restores a grid from its persisted form and recomputes all
// formula cells. Persisted computed values are discarded.
func FromSnapshot(snap *sheet.Snapshot) (*Engine, error) {
	g, err := grid.FromSnapshot(snap)
	if err != nil {
		return nil, err
	}
	return New(g), nil
}

// Grid exposes the underlying grid for read access.
func (e *Engine) Grid() *grid.Grid { return e.grid }

// Snapshot captures the grid's persistent state.
func (e *Engine) Snapshot() *sheet.Snapshot { return e.grid.Snapshot() }

// Value returns the evaluated value at a coordinate. Out-of-bounds
// coordinates yield #REF!, empty cells yield the empty value.
func (e *Engine) Value(at refs.Coord) eval.Value {
	return e.CellValue(at)
}

// Display returns the string a UI should render at a coordinate.
func (e *Engine) Display(at refs.Coord) string {
	return e.CellValue(at).Display()
}

// SetCell writes raw input at (rowID, columnID) and recomputes the
// affected cells. A malformed formula is rejected whole with a
// *formula.ParseError and the prior value is retained. The returned
// updates always include the edited cell and are ordered by (row, col).
// A dependency cycle is reported as an error but the write still lands:
// cycle members compute to #CIRC!.
func (e *Engine) SetCell(rowID, columnID, raw string) ([]CellUpdate, error) {
	var expr *formula.Expr
	if strings.HasPrefix(raw, "=") {
		parsed, err := formula.Parse(raw)
		if err != nil {
			return nil, err
		}
		expr = parsed
	}
	cell, err := e.grid.SetCellValue(rowID, columnID, raw)
	if err != nil {
		return nil, err
	}
	at, ok := e.grid.CoordOf(rowID, columnID)
	if !ok {
		return nil, &grid.NotFoundError{Entity: "cell", ID: sheet.CellKey(rowID, columnID)}
	}
	e.register(cell, at, expr)
	return e.recompute(at)
}

// register swaps a cell's edge set in the dependency graph. A nil
// expression (non-formula or cleared cell) drops the edges.
func (e *Engine) register(cell *sheet.Cell, at refs.Coord, expr *formula.Expr) {
	if expr == nil {
		delete(e.asts, cell.ID)
		e.deps.Remove(at)
		return
	}
	e.asts[cell.ID] = expr
	e.deps.Replace(at, expr.Refs())
}

// recompute re-evaluates the cells affected by a change at the given
// coordinates and returns the updates in deterministic order.
func (e *Engine) recompute(at ...refs.Coord) ([]CellUpdate, error) {
	order, cycleErr := e.deps.Invalidate(at...)

	for _, c := range order.Cycle {
		e.values[c] = eval.Error(eval.ErrCircular)
	}
	for _, c := range order.Ready {
		cell, _, ok := e.grid.CellAt(c)
		if !ok || !cell.IsFormula() {
			delete(e.values, c)
			continue
		}
		e.values[c] = e.evaluateCell(cell)
	}

	var updates []CellUpdate
	emit := func(coords []refs.Coord) {
		for _, c := range coords {
			cell, _, ok := e.grid.CellAt(c)
			if !ok {
				continue
			}
			computed := ""
			if cell.IsFormula() {
				computed = e.values[c].Display()
			}
			e.grid.SetComputed(cell.RowID, cell.ColumnID, computed)
			updates = append(updates, CellUpdate{
				RowID:    cell.RowID,
				ColumnID: cell.ColumnID,
				At:       c,
				Computed: computed,
			})
		}
	}
	emit(order.Cycle)
	emit(order.Ready)

	if cycleErr != nil {
		return updates, cycleErr
	}
	return updates, nil
}

// evaluateCell runs a formula cell against the engine's resolver. A cell
// whose formula failed to parse (possible only for raw values restored
// from an old snapshot; edits reject malformed formulas) evaluates to
// #VALUE!.
func (e *Engine) evaluateCell(cell *sheet.Cell) eval.Value {
	expr := e.asts[cell.ID]
	if expr == nil {
		return eval.Error(eval.ErrEval)
	}
	return eval.Evaluate(expr, e)
}

// CellValue implements eval.Resolver. Formula cells read from the
// computed cache, literal cells coerce their raw value against the column
// type, out-of-bounds references are #REF!.
func (e *Engine) CellValue(at refs.Coord) eval.Value {
	if !e.grid.InBounds(at) {
		return eval.Error(eval.ErrRef)
	}
	cell, col, ok := e.grid.CellAt(at)
	if !ok {
		return eval.Empty()
	}
	if cell.IsFormula() {
		if v, cached := e.values[at]; cached {
			return v
		}
		return eval.Error(eval.ErrEval)
	}
	return eval.CoerceRaw(cell.Raw, col.Type)
}

// RangeValues implements eval.Resolver.
func (e *Engine) RangeValues(r refs.Range) []eval.Value {
	coords := r.Normalize().Coords()
	out := make([]eval.Value, 0, len(coords))
	for _, c := range coords {
		out = append(out, e.CellValue(c))
	}
	return out
}

// rebuild reconstructs the dependency graph and computed cache from the
// current grid contents. Used on load and after structural mutations,
// when coordinates shift under existing formulas.
func (e *Engine) rebuild() {
	e.deps.Clear()
	e.values = make(map[refs.Coord]eval.Value)

	live := make(map[string]struct{})
	formulas := e.grid.FormulaCells()
	coords := make([]refs.Coord, 0, len(formulas))
	for _, fc := range formulas {
		live[fc.Cell.ID] = struct{}{}
		expr, cached := e.asts[fc.Cell.ID]
		if !cached {
			parsed, err := formula.Parse(fc.Cell.Raw)
			if err != nil {
				parsed = nil
			}
			expr = parsed
			e.asts[fc.Cell.ID] = expr
		}
		if expr != nil {
			e.deps.Replace(fc.At, expr.Refs())
		}
		coords = append(coords, fc.At)
	}
	for id := range e.asts {
		if _, ok := live[id]; !ok {
			delete(e.asts, id)
		}
	}
	if len(coords) > 0 {
		_, _ = e.recompute(coords...)
	}
}

// AddColumn appends a column. Formula columns carry a template that is
// instantiated per row, with "{row}" replaced by the 1-based row number.
func (e *Engine) AddColumn(name string, colType sheet.ColumnType, width int, template string) (*sheet.Column, []CellUpdate, error) {
	col, err := e.grid.AddColumn(name, colType, width)
	if err != nil {
		return nil, nil, err
	}
	col.FormulaTemplate = template
	var updates []CellUpdate
	if colType == sheet.ColumnTypeFormula && template != "" {
		for i, row := range e.grid.Rows() {
			if _, err := e.grid.SetCellValue(row.ID, col.ID, sheet.ExpandTemplate(template, i+1)); err != nil {
				return nil, nil, err
			}
		}
	}
	e.rebuild()
	updates = e.allFormulaUpdates()
	return col, updates, nil
}

// RemoveColumn deletes a column and recomputes. Surviving formulas are
// rewritten: references into the removed column become #REF!, references
// right of it shift left so they keep reading the same cells, and ranges
// shrink.
func (e *Engine) RemoveColumn(id string) ([]CellUpdate, error) {
	col, ok := e.grid.ColumnByID(id)
	if !ok {
		return nil, &grid.NotFoundError{Entity: "column", ID: id}
	}
	idx := col.OrderIndex
	if err := e.grid.RemoveColumn(id); err != nil {
		return nil, err
	}
	e.rewriteFormulas(func(raw string) (string, error) {
		return formula.AdjustRemovedColumn(raw, idx)
	})
	e.rebuild()
	return e.allFormulaUpdates(), nil
}

// ReorderColumn moves a column and recomputes.
func (e *Engine) ReorderColumn(id string, newIndex int) ([]CellUpdate, error) {
	if _, err := e.grid.ReorderColumn(id, newIndex); err != nil {
		return nil, err
	}
	e.rebuild()
	return e.allFormulaUpdates(), nil
}

// AddRow appends a row, instantiating formula-column templates for it.
func (e *Engine) AddRow() (*sheet.Row, []CellUpdate, error) {
	row, err := e.grid.AddRow()
	if err != nil {
		return nil, nil, err
	}
	n := e.grid.RowCount()
	for _, col := range e.grid.Columns() {
		if col.Type == sheet.ColumnTypeFormula && col.FormulaTemplate != "" {
			if _, err := e.grid.SetCellValue(row.ID, col.ID, sheet.ExpandTemplate(col.FormulaTemplate, n)); err != nil {
				return nil, nil, err
			}
		}
	}
	e.rebuild()
	return row, e.allFormulaUpdates(), nil
}

// RemoveRow deletes a row and recomputes. Surviving formulas are rewritten
// the same way RemoveColumn rewrites them, along the row axis.
func (e *Engine) RemoveRow(id string) ([]CellUpdate, error) {
	row, ok := e.grid.RowByID(id)
	if !ok {
		return nil, &grid.NotFoundError{Entity: "row", ID: id}
	}
	idx := row.OrderIndex
	if err := e.grid.RemoveRow(id); err != nil {
		return nil, err
	}
	e.rewriteFormulas(func(raw string) (string, error) {
		return formula.AdjustRemovedRow(raw, idx)
	})
	e.rebuild()
	return e.allFormulaUpdates(), nil
}

// ReorderRow moves a row and recomputes.
func (e *Engine) ReorderRow(id string, newIndex int) ([]CellUpdate, error) {
	if _, err := e.grid.ReorderRow(id, newIndex); err != nil {
		return nil, err
	}
	e.rebuild()
	return e.allFormulaUpdates(), nil
}

// AddMerge creates a merge region. Merges affect display only, never
// computation, so no recompute happens.
func (e *Engine) AddMerge(startRow, startCol, endRow, endCol int) (*sheet.Merge, error) {
	return e.grid.AddMerge(startRow, startCol, endRow, endCol)
}

// RemoveMerge deletes a merge region.
func (e *Engine) RemoveMerge(id string) error {
	return e.grid.RemoveMerge(id)
}

// rewriteFormulas applies a raw-text adjustment to every formula cell and
// invalidates the AST cache of the ones that changed. Formulas that no
// longer parse (bad raw values restored from an old snapshot) are left
// alone; they keep evaluating to #VALUE!.
func (e *Engine) rewriteFormulas(adjust func(string) (string, error)) {
	for _, fc := range e.grid.FormulaCells() {
		rewritten, err := adjust(fc.Cell.Raw)
		if err != nil || rewritten == fc.Cell.Raw {
			continue
		}
		delete(e.asts, fc.Cell.ID)
		e.grid.SetCellValue(fc.Cell.RowID, fc.Cell.ColumnID, rewritten)
	}
}

// allFormulaUpdates reports the current computed value of every formula
// cell, in (row, col) order.
func (e *Engine) allFormulaUpdates() []CellUpdate {
	var updates []CellUpdate
	for _, fc := range e.grid.FormulaCells() {
		updates = append(updates, CellUpdate{
			RowID:    fc.Cell.RowID,
			ColumnID: fc.Cell.ColumnID,
			At:       fc.At,
			Computed: fc.Cell.Computed,
		})
	}
	return updates
}
