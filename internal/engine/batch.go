package engine

import (
	"strings"

	"github.com/dsdsmelo/gridnote/internal/formula"
	"github.com/dsdsmelo/gridnote/internal/grid"
	"github.com/dsdsmelo/gridnote/internal/refs"
	"github.com/dsdsmelo/gridnote/pkg/sheet"
)

// Batch queues raw cell writes so that a multi-cell edit (paste, import)
// recomputes each affected formula once instead of once per write. Writes
// land on Commit in insertion order; the last write to a cell wins.
type Batch struct {
	engine *Engine
	writes []batchWrite
}

type batchWrite struct {
	rowID    string
	columnID string
	raw      string
}

// Batch starts an empty batch against the engine.
func (e *Engine) Batch() *Batch {
	return &Batch{engine: e}
}

// Set queues one raw write. Nothing is validated or applied until Commit.
func (b *Batch) Set(rowID, columnID, raw string) *Batch {
	b.writes = append(b.writes, batchWrite{rowID: rowID, columnID: columnID, raw: raw})
	return b
}

// Len returns the number of queued writes.
func (b *Batch) Len() int { return len(b.writes) }

// Commit applies every queued write to the grid, re-registers the touched
// formulas, then runs a single recomputation over the union of touched
// coordinates. Formulas are parsed up front: a malformed one aborts the
// commit with a *formula.ParseError before any write lands, and the queue
// is retained so the caller can fix it. A write to an unknown row or
// column aborts the commit with earlier writes already applied but not
// yet recomputed; callers treat that as needing a reload. A cycle error
// is reported alongside the updates, same as SetCell.
func (b *Batch) Commit() ([]CellUpdate, error) {
	e := b.engine
	exprs := make([]*formula.Expr, len(b.writes))
	for i, w := range b.writes {
		if !strings.HasPrefix(w.raw, "=") {
			continue
		}
		expr, err := formula.Parse(w.raw)
		if err != nil {
			return nil, err
		}
		exprs[i] = expr
	}

	touched := make(map[refs.Coord]struct{}, len(b.writes))
	for i, w := range b.writes {
		cell, err := e.grid.SetCellValue(w.rowID, w.columnID, w.raw)
		if err != nil {
			return nil, err
		}
		at, ok := e.grid.CoordOf(w.rowID, w.columnID)
		if !ok {
			return nil, &grid.NotFoundError{Entity: "cell", ID: sheet.CellKey(w.rowID, w.columnID)}
		}
		e.register(cell, at, exprs[i])
		touched[at] = struct{}{}
	}
	b.writes = b.writes[:0]

	coords := make([]refs.Coord, 0, len(touched))
	for c := range touched {
		coords = append(coords, c)
	}
	return e.recompute(coords...)
}
