package grid

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsdsmelo/gridnote/internal/refs"
	"github.com/dsdsmelo/gridnote/pkg/sheet"
)

// newTestGrid builds a grid with the requested extent, text columns named
// after their letters.
func newTestGrid(t *testing.T, rows, cols int) *Grid {
	t.Helper()
	g := New("", "test sheet")
	for i := 0; i < cols; i++ {
		_, err := g.AddColumn(refs.ColumnLetters(i), sheet.ColumnTypeText, 120)
		require.NoError(t, err)
	}
	for i := 0; i < rows; i++ {
		_, err := g.AddRow()
		require.NoError(t, err)
	}
	return g
}

func TestNewGrid(t *testing.T) {
	g := New("", "budget")

	meta := g.Meta()
	assert.NotEmpty(t, meta.ID)
	assert.Equal(t, "budget", meta.Name)
	assert.Zero(t, g.RowCount())
	assert.Zero(t, g.ColumnCount())
}

func TestAddColumnAndRow(t *testing.T) {
	g := newTestGrid(t, 2, 3)

	assert.Equal(t, 3, g.ColumnCount())
	assert.Equal(t, 2, g.RowCount())
	for i, c := range g.Columns() {
		assert.Equal(t, i, c.OrderIndex)
	}

	t.Run("invalid column type rejected", func(t *testing.T) {
		_, err := g.AddColumn("bad", sheet.ColumnType("blob"), 120)
		assert.Error(t, err)
		assert.Equal(t, 3, g.ColumnCount())
	})
}

func TestSetCellValue(t *testing.T) {
	g := newTestGrid(t, 2, 2)
	rowID := g.Rows()[0].ID
	colID := g.Columns()[0].ID

	c, err := g.SetCellValue(rowID, colID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", c.Raw)
	assert.False(t, c.TypeMismatch)

	got, ok := g.Cell(rowID, colID)
	require.True(t, ok)
	assert.Same(t, c, got)

	t.Run("unknown row", func(t *testing.T) {
		_, err := g.SetCellValue("missing", colID, "x")
		assert.True(t, IsNotFound(err))
	})

	t.Run("empty raw deletes the cell", func(t *testing.T) {
		_, err := g.SetCellValue(rowID, colID, "")
		require.NoError(t, err)
		_, ok := g.Cell(rowID, colID)
		assert.False(t, ok)
	})

	t.Run("clearing an absent cell is a no-op", func(t *testing.T) {
		_, err := g.SetCellValue(rowID, colID, "")
		assert.NoError(t, err)
	})
}

func TestSetCellValueTypeMismatch(t *testing.T) {
	g := newTestGrid(t, 1, 0)
	col, err := g.AddColumn("Budget", sheet.ColumnTypeNumber, 120)
	require.NoError(t, err)
	rowID := g.Rows()[0].ID

	c, err := g.SetCellValue(rowID, col.ID, "a lot")
	require.NoError(t, err)
	assert.Equal(t, "a lot", c.Raw, "raw input is kept even when coercion fails")
	assert.True(t, c.TypeMismatch)

	t.Run("flag clears once the value coerces", func(t *testing.T) {
		c, err := g.SetCellValue(rowID, col.ID, "42")
		require.NoError(t, err)
		assert.False(t, c.TypeMismatch)
	})

	t.Run("formulas bypass coercion", func(t *testing.T) {
		c, err := g.SetCellValue(rowID, col.ID, "=A1+1")
		require.NoError(t, err)
		assert.False(t, c.TypeMismatch)
	})
}

func TestRemoveColumnCascades(t *testing.T) {
	g := newTestGrid(t, 2, 3)
	colB := g.Columns()[1]
	rowID := g.Rows()[0].ID

	_, err := g.SetCellValue(rowID, colB.ID, "doomed")
	require.NoError(t, err)
	_, err = g.SetCellValue(rowID, g.Columns()[2].ID, "survivor")
	require.NoError(t, err)

	require.NoError(t, g.RemoveColumn(colB.ID))

	assert.Equal(t, 2, g.ColumnCount())
	_, ok := g.Cell(rowID, colB.ID)
	assert.False(t, ok, "cells of the removed column are gone")

	// remaining columns renumber densely
	assert.Equal(t, []string{"A", "C"}, []string{g.Columns()[0].Name, g.Columns()[1].Name})
	for i, c := range g.Columns() {
		assert.Equal(t, i, c.OrderIndex)
	}

	t.Run("unknown column", func(t *testing.T) {
		assert.True(t, IsNotFound(g.RemoveColumn("missing")))
	})
}

func TestRemoveRowCascades(t *testing.T) {
	g := newTestGrid(t, 3, 2)
	row2 := g.Rows()[1]
	colID := g.Columns()[0].ID

	_, err := g.SetCellValue(row2.ID, colID, "doomed")
	require.NoError(t, err)

	require.NoError(t, g.RemoveRow(row2.ID))

	assert.Equal(t, 2, g.RowCount())
	_, ok := g.Cell(row2.ID, colID)
	assert.False(t, ok)
	for i, r := range g.Rows() {
		assert.Equal(t, i, r.OrderIndex)
	}
}

func TestReorderColumn(t *testing.T) {
	g := newTestGrid(t, 1, 3)
	colC := g.Columns()[2]

	_, err := g.ReorderColumn(colC.ID, 0)
	require.NoError(t, err)

	names := []string{g.Columns()[0].Name, g.Columns()[1].Name, g.Columns()[2].Name}
	assert.Equal(t, []string{"C", "A", "B"}, names)
	for i, c := range g.Columns() {
		assert.Equal(t, i, c.OrderIndex)
	}

	t.Run("target out of bounds", func(t *testing.T) {
		_, err := g.ReorderColumn(colC.ID, 3)
		assert.True(t, IsOutOfBounds(err))
	})
}

func TestReorderRow(t *testing.T) {
	g := newTestGrid(t, 3, 1)
	first := g.Rows()[0]

	_, err := g.ReorderRow(first.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, first.ID, g.Rows()[2].ID)
	for i, r := range g.Rows() {
		assert.Equal(t, i, r.OrderIndex)
	}
}

func TestCoordOfTracksReorder(t *testing.T) {
	g := newTestGrid(t, 2, 2)
	colB := g.Columns()[1]

	at, ok := g.CoordOf(g.Rows()[0].ID, colB.ID)
	require.True(t, ok)
	assert.Equal(t, refs.Coord{Row: 0, Col: 1}, at)

	_, err := g.ReorderColumn(colB.ID, 0)
	require.NoError(t, err)

	at, ok = g.CoordOf(g.Rows()[0].ID, colB.ID)
	require.True(t, ok)
	assert.Equal(t, refs.Coord{Row: 0, Col: 0}, at)
}

func TestMerges(t *testing.T) {
	g := newTestGrid(t, 4, 4)

	m, err := g.AddMerge(0, 0, 1, 1)
	require.NoError(t, err)

	t.Run("overlap rejected", func(t *testing.T) {
		_, err := g.AddMerge(1, 1, 2, 2)
		require.True(t, IsOverlap(err))
		assert.Equal(t, m.ID, err.(*OverlapError).Existing.ID)
		assert.Len(t, g.Merges(), 1)
	})

	t.Run("out of bounds rejected", func(t *testing.T) {
		_, err := g.AddMerge(2, 2, 4, 3)
		assert.True(t, IsOutOfBounds(err))
	})

	t.Run("suppression", func(t *testing.T) {
		assert.False(t, g.Suppressed(refs.Coord{Row: 0, Col: 0}), "top-left stays visible")
		assert.True(t, g.Suppressed(refs.Coord{Row: 0, Col: 1}))
		assert.True(t, g.Suppressed(refs.Coord{Row: 1, Col: 1}))
		assert.False(t, g.Suppressed(refs.Coord{Row: 2, Col: 2}))
	})

	t.Run("merge lookup", func(t *testing.T) {
		got, ok := g.MergeAt(refs.Coord{Row: 1, Col: 0})
		require.True(t, ok)
		assert.Equal(t, m.ID, got.ID)
		_, ok = g.MergeAt(refs.Coord{Row: 3, Col: 3})
		assert.False(t, ok)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, g.RemoveMerge(m.ID))
		assert.Empty(t, g.Merges())
		assert.True(t, IsNotFound(g.RemoveMerge(m.ID)))
	})
}

func TestMergeClippingOnRowRemoval(t *testing.T) {
	g := newTestGrid(t, 5, 3)

	spanning, err := g.AddMerge(1, 0, 3, 1) // rows 1-3
	require.NoError(t, err)
	below, err := g.AddMerge(4, 0, 4, 2) // row 4 wide merge
	require.NoError(t, err)

	require.NoError(t, g.RemoveRow(g.Rows()[2].ID))

	require.Len(t, g.Merges(), 2)
	assert.Equal(t, spanning.ID, g.Merges()[0].ID)
	assert.Equal(t, 1, g.Merges()[0].StartRow)
	assert.Equal(t, 2, g.Merges()[0].EndRow, "spanning merge shrinks")
	assert.Equal(t, below.ID, g.Merges()[1].ID)
	assert.Equal(t, 3, g.Merges()[1].StartRow, "merge below shifts up")
	assert.Equal(t, 3, g.Merges()[1].EndRow)
}

func TestMergeClippingDropsContainedRegions(t *testing.T) {
	g := newTestGrid(t, 4, 4)

	_, err := g.AddMerge(2, 0, 2, 3) // lives entirely in row 2
	require.NoError(t, err)
	require.NoError(t, g.RemoveRow(g.Rows()[2].ID))
	assert.Empty(t, g.Merges())
}

func TestMergeClippingDropsDegenerateResults(t *testing.T) {
	g := newTestGrid(t, 4, 4)

	// a 2x1 vertical merge collapses to a single cell when one row goes
	_, err := g.AddMerge(1, 0, 2, 0)
	require.NoError(t, err)
	require.NoError(t, g.RemoveRow(g.Rows()[1].ID))
	assert.Empty(t, g.Merges())
}

func TestMergeClippingOnColumnRemoval(t *testing.T) {
	g := newTestGrid(t, 3, 5)

	_, err := g.AddMerge(0, 1, 1, 3) // cols 1-3
	require.NoError(t, err)
	require.NoError(t, g.RemoveColumn(g.Columns()[2].ID))

	require.Len(t, g.Merges(), 1)
	assert.Equal(t, 1, g.Merges()[0].StartCol)
	assert.Equal(t, 2, g.Merges()[0].EndCol)
}

func TestColumnFormats(t *testing.T) {
	g := newTestGrid(t, 1, 1)
	col := g.Columns()[0]

	f := sheet.ConditionalFormat{
		ID:       "0b7f9c3a-93b5-4a6d-9c30-2f8f5a1d2e4b",
		Kind:     sheet.ConditionGreaterThan,
		Operand1: "10",
	}
	require.NoError(t, g.AddColumnFormat(col.ID, f))
	assert.Len(t, col.Formats, 1)

	t.Run("invalid rule rejected", func(t *testing.T) {
		bad := f
		bad.Kind = sheet.ConditionBetween
		bad.Operand2 = ""
		assert.Error(t, g.AddColumnFormat(col.ID, bad))
		assert.Len(t, col.Formats, 1)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, g.ClearColumnFormats(col.ID))
		assert.Empty(t, col.Formats)
	})
}

func TestRemoveColumnFormat(t *testing.T) {
	g := newTestGrid(t, 1, 1)
	col := g.Columns()[0]

	for i, id := range []string{
		"11111111-1111-4111-8111-111111111111",
		"22222222-2222-4222-8222-222222222222",
		"33333333-3333-4333-8333-333333333333",
	} {
		require.NoError(t, g.AddColumnFormat(col.ID, sheet.ConditionalFormat{
			ID:       id,
			Kind:     sheet.ConditionGreaterThan,
			Operand1: strconv.Itoa(i * 10),
		}))
	}

	require.NoError(t, g.RemoveColumnFormat(col.ID, "22222222-2222-4222-8222-222222222222"))
	require.Len(t, col.Formats, 2)
	assert.Equal(t, "0", col.Formats[0].Operand1)
	assert.Equal(t, "20", col.Formats[1].Operand1)

	t.Run("unknown rule", func(t *testing.T) {
		err := g.RemoveColumnFormat(col.ID, "99999999-9999-4999-8999-999999999999")
		assert.True(t, IsNotFound(err))
	})

	t.Run("unknown column", func(t *testing.T) {
		err := g.RemoveColumnFormat("nope", "11111111-1111-4111-8111-111111111111")
		assert.True(t, IsNotFound(err))
	})
}

func TestReorderColumnFormat(t *testing.T) {
	g := newTestGrid(t, 1, 1)
	col := g.Columns()[0]

	for i, id := range []string{
		"11111111-1111-4111-8111-111111111111",
		"22222222-2222-4222-8222-222222222222",
		"33333333-3333-4333-8333-333333333333",
	} {
		require.NoError(t, g.AddColumnFormat(col.ID, sheet.ConditionalFormat{
			ID:       id,
			Kind:     sheet.ConditionGreaterThan,
			Operand1: strconv.Itoa(i * 10),
		}))
	}

	// last rule moves to the front and wins matches from now on
	require.NoError(t, g.ReorderColumnFormat(col.ID, "33333333-3333-4333-8333-333333333333", 0))
	assert.Equal(t, "20", col.Formats[0].Operand1)
	assert.Equal(t, "0", col.Formats[1].Operand1)
	assert.Equal(t, "10", col.Formats[2].Operand1)

	t.Run("position out of range", func(t *testing.T) {
		err := g.ReorderColumnFormat(col.ID, "11111111-1111-4111-8111-111111111111", 3)
		assert.True(t, IsOutOfBounds(err))
	})

	t.Run("unknown rule", func(t *testing.T) {
		err := g.ReorderColumnFormat(col.ID, "99999999-9999-4999-8999-999999999999", 0)
		assert.True(t, IsNotFound(err))
	})
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := newTestGrid(t, 2, 2)
	rowID := g.Rows()[0].ID
	colID := g.Columns()[1].ID
	_, err := g.SetCellValue(rowID, colID, "99")
	require.NoError(t, err)
	g.SetComputed(rowID, colID, "99")
	_, err = g.AddMerge(1, 0, 1, 1)
	require.NoError(t, err)

	snap := g.Snapshot()

	t.Run("computed values are stripped", func(t *testing.T) {
		for _, c := range snap.Cells {
			assert.Empty(t, c.Computed)
		}
	})

	t.Run("snapshot is detached from the live grid", func(t *testing.T) {
		snap.Columns[0].Name = "mutated"
		assert.NotEqual(t, "mutated", g.Columns()[0].Name)
	})

	restored, err := FromSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, g.Meta().ID, restored.Meta().ID)
	assert.Equal(t, g.ColumnCount(), restored.ColumnCount())
	assert.Equal(t, g.RowCount(), restored.RowCount())
	require.Len(t, restored.Merges(), 1)

	c, ok := restored.Cell(rowID, colID)
	require.True(t, ok)
	assert.Equal(t, "99", c.Raw)
	assert.Empty(t, c.Computed)
}

func TestFromSnapshotRejectsInvalid(t *testing.T) {
	g := newTestGrid(t, 1, 2)
	snap := g.Snapshot()
	snap.Columns[1].OrderIndex = 0

	_, err := FromSnapshot(snap)
	assert.ErrorContains(t, err, "duplicate column order index")
}

func TestFormulaCells(t *testing.T) {
	g := newTestGrid(t, 2, 2)
	rows, cols := g.Rows(), g.Columns()

	_, err := g.SetCellValue(rows[1].ID, cols[0].ID, "=A1+1")
	require.NoError(t, err)
	_, err = g.SetCellValue(rows[0].ID, cols[1].ID, "=A1*2")
	require.NoError(t, err)
	_, err = g.SetCellValue(rows[0].ID, cols[0].ID, "plain")
	require.NoError(t, err)

	fcs := g.FormulaCells()
	require.Len(t, fcs, 2)
	assert.Equal(t, refs.Coord{Row: 0, Col: 1}, fcs[0].At, "row-major order")
	assert.Equal(t, refs.Coord{Row: 1, Col: 0}, fcs[1].At)
}
