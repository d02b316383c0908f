package sheet

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCellIsFormula(t *testing.T) {
	assert.True(t, (&Cell{Raw: "=A1+B1"}).IsFormula())
	assert.False(t, (&Cell{Raw: "A1+B1"}).IsFormula())
	assert.False(t, (&Cell{Raw: ""}).IsFormula())
	assert.False(t, (&Cell{Raw: " =A1"}).IsFormula())
}

func TestExpandTemplate(t *testing.T) {
	assert.Equal(t, "=B3*C3", ExpandTemplate("=B{row}*C{row}", 3))
	assert.Equal(t, "=SUM(A1:A10)", ExpandTemplate("=SUM(A1:A10)", 3))
	assert.Equal(t, "", ExpandTemplate("", 1))
}

func TestMergeContains(t *testing.T) {
	m := &Merge{StartRow: 1, StartCol: 1, EndRow: 3, EndCol: 2}

	assert.True(t, m.Contains(1, 1))
	assert.True(t, m.Contains(3, 2))
	assert.True(t, m.Contains(2, 2))
	assert.False(t, m.Contains(0, 1))
	assert.False(t, m.Contains(4, 1))
	assert.False(t, m.Contains(2, 3))
}

func TestMergeOverlaps(t *testing.T) {
	base := &Merge{StartRow: 1, StartCol: 1, EndRow: 3, EndCol: 3}

	tests := []struct {
		name  string
		other *Merge
		want  bool
	}{
		{"identical", &Merge{StartRow: 1, StartCol: 1, EndRow: 3, EndCol: 3}, true},
		{"corner touch", &Merge{StartRow: 3, StartCol: 3, EndRow: 5, EndCol: 5}, true},
		{"contained", &Merge{StartRow: 2, StartCol: 2, EndRow: 2, EndCol: 2}, true},
		{"disjoint below", &Merge{StartRow: 4, StartCol: 1, EndRow: 5, EndCol: 3}, false},
		{"disjoint right", &Merge{StartRow: 1, StartCol: 4, EndRow: 3, EndCol: 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base))
		})
	}
}

func TestMergeValidate(t *testing.T) {
	valid := &Merge{ID: uuid.New().String(), StartRow: 0, StartCol: 0, EndRow: 1, EndCol: 1}
	assert.NoError(t, valid.Validate())

	t.Run("single cell region is allowed", func(t *testing.T) {
		m := &Merge{ID: uuid.New().String(), StartRow: 2, StartCol: 2, EndRow: 2, EndCol: 2}
		assert.NoError(t, m.Validate())
	})

	t.Run("end before start", func(t *testing.T) {
		m := &Merge{ID: uuid.New().String(), StartRow: 2, StartCol: 0, EndRow: 1, EndCol: 1}
		assert.Error(t, m.Validate())
	})

	t.Run("negative coordinates", func(t *testing.T) {
		m := &Merge{ID: uuid.New().String(), StartRow: -1, StartCol: 0, EndRow: 0, EndCol: 0}
		assert.Error(t, m.Validate())
	})

	t.Run("bad ID", func(t *testing.T) {
		m := &Merge{ID: "not-a-uuid", EndRow: 1, EndCol: 1}
		assert.Error(t, m.Validate())
	})
}

func TestColumnTypeValidate(t *testing.T) {
	for _, ct := range []ColumnType{
		ColumnTypeText, ColumnTypeNumber, ColumnTypeDate,
		ColumnTypeCurrency, ColumnTypePercentage, ColumnTypeFormula,
	} {
		assert.NoError(t, ct.Validate(), string(ct))
	}
	assert.Error(t, ColumnType("json").Validate())
	assert.Error(t, ColumnType("").Validate())
}

func TestColumnValidate(t *testing.T) {
	col := Column{
		ID:         uuid.New().String(),
		Name:       "Budget",
		Type:       ColumnTypeCurrency,
		Width:      120,
		OrderIndex: 0,
	}
	assert.NoError(t, col.Validate())

	t.Run("empty name", func(t *testing.T) {
		c := col
		c.Name = ""
		assert.Error(t, c.Validate())
	})

	t.Run("negative order index", func(t *testing.T) {
		c := col
		c.OrderIndex = -1
		assert.Error(t, c.Validate())
	})

	t.Run("invalid format rule", func(t *testing.T) {
		c := col
		c.Formats = []ConditionalFormat{
			{ID: uuid.New().String(), Kind: ConditionBetween, Operand1: "10"},
		}
		assert.ErrorContains(t, c.Validate(), "two operands")
	})
}

func TestConditionalFormatValidate(t *testing.T) {
	cf := ConditionalFormat{
		ID:       uuid.New().String(),
		Kind:     ConditionGreaterThan,
		Operand1: "100",
	}
	assert.NoError(t, cf.Validate())

	t.Run("between requires both operands", func(t *testing.T) {
		c := cf
		c.Kind = ConditionBetween
		c.Operand2 = ""
		assert.Error(t, c.Validate())

		c.Operand2 = "200"
		assert.NoError(t, c.Validate())
	})

	t.Run("unknown kind", func(t *testing.T) {
		c := cf
		c.Kind = "matchesRegex"
		assert.Error(t, c.Validate())
	})
}

func TestSelectionRangeNormalize(t *testing.T) {
	r := SelectionRange{
		Start: CellPosition{RowIndex: 3, ColIndex: 2},
		End:   CellPosition{RowIndex: 1, ColIndex: 4},
	}
	n := r.Normalize()
	assert.Equal(t, CellPosition{RowIndex: 1, ColIndex: 2}, n.Start)
	assert.Equal(t, CellPosition{RowIndex: 3, ColIndex: 4}, n.End)

	already := SelectionRange{
		Start: CellPosition{RowIndex: 0, ColIndex: 0},
		End:   CellPosition{RowIndex: 2, ColIndex: 2},
	}
	assert.Equal(t, already, already.Normalize())
}
