package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsdsmelo/gridnote/internal/formula"
	"github.com/dsdsmelo/gridnote/internal/refs"
	"github.com/dsdsmelo/gridnote/pkg/sheet"
)

// mapResolver serves values from a fixed coordinate map. Missing
// coordinates are empty, which mirrors how the grid treats absent cells.
type mapResolver map[refs.Coord]Value

func (m mapResolver) CellValue(c refs.Coord) Value {
	if v, ok := m[c]; ok {
		return v
	}
	return Empty()
}

func (m mapResolver) RangeValues(r refs.Range) []Value {
	coords := r.Normalize().Coords()
	out := make([]Value, 0, len(coords))
	for _, c := range coords {
		out = append(out, m.CellValue(c))
	}
	return out
}

func eval(t *testing.T, text string, r Resolver) Value {
	t.Helper()
	expr, err := formula.Parse(text)
	require.NoError(t, err, text)
	return Evaluate(expr, r)
}

func TestEvaluateArithmetic(t *testing.T) {
	r := mapResolver{
		{Row: 0, Col: 0}: Number(10), // A1
		{Row: 0, Col: 1}: Number(4),  // B1
		{Row: 0, Col: 2}: Text("2"),  // C1
	}

	tests := []struct {
		formula string
		want    Value
	}{
		{"=A1+B1", Number(14)},
		{"=A1-B1", Number(6)},
		{"=A1*B1", Number(40)},
		{"=A1/B1", Number(2.5)},
		{"=-A1", Number(-10)},
		{"=A1+C1", Number(12)}, // numeric text coerces
		{"=A1/0", Error(ErrDivByZero)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, eval(t, tt.formula, r), tt.formula)
	}
}

func TestEvaluateEmptyCells(t *testing.T) {
	r := mapResolver{}

	// empty cells behave as zero in arithmetic
	assert.Equal(t, Number(1), eval(t, "=A1+1", r))
	assert.Equal(t, Number(0), eval(t, "=A1*5", r))
}

func TestEvaluateTextOperands(t *testing.T) {
	r := mapResolver{
		{Row: 0, Col: 0}: Text("hello"),
	}

	assert.Equal(t, Error(ErrEval), eval(t, "=A1+1", r))
	assert.Equal(t, Error(ErrEval), eval(t, "=-A1", r))
}

func TestEvaluateErrorPropagation(t *testing.T) {
	r := mapResolver{
		{Row: 0, Col: 0}: Error(ErrRef),
		{Row: 0, Col: 1}: Number(5),
	}

	// left error wins, right error surfaces when left is clean
	assert.Equal(t, Error(ErrRef), eval(t, "=A1+B1", r))
	assert.Equal(t, Error(ErrRef), eval(t, "=B1*A1", r))
	assert.Equal(t, Error(ErrRef), eval(t, "=IF(A1>1,1,2)", r))

	t.Run("broken reference literal", func(t *testing.T) {
		// "#REF!" is what deleting a referenced row or column leaves behind
		assert.Equal(t, Error(ErrRef), eval(t, "=#REF!", r))
		assert.Equal(t, Error(ErrRef), eval(t, "=#REF!+B1", r))
	})
}

func TestEvaluateComparisons(t *testing.T) {
	r := mapResolver{
		{Row: 0, Col: 0}: Number(10),
		{Row: 0, Col: 1}: Text("10"),
		{Row: 0, Col: 2}: Text("apple"),
	}

	tests := []struct {
		formula string
		want    bool
	}{
		{"=A1>5", true},
		{"=A1<5", false},
		{"=A1=B1", true}, // numeric text compares numerically
		{"=A1<>B1", false},
		{"=C1=\"apple\"", true},
		{"=C1<\"banana\"", true}, // lexicographic fallback
		{"=A1>=10", true},
		{"=A1<=9", false},
	}
	for _, tt := range tests {
		assert.Equal(t, Bool(tt.want), eval(t, tt.formula, r), tt.formula)
	}
}

func TestEvaluateIf(t *testing.T) {
	r := mapResolver{
		{Row: 0, Col: 0}: Number(15),
	}

	assert.Equal(t, Text("big"), eval(t, `=IF(A1>10,"big","small")`, r))
	assert.Equal(t, Text("small"), eval(t, `=IF(A1>20,"big","small")`, r))

	t.Run("only the selected branch evaluates", func(t *testing.T) {
		// the else branch divides by zero; it must not run
		assert.Equal(t, Number(1), eval(t, "=IF(A1>10,1,1/0)", r))
	})
}

func TestAggregates(t *testing.T) {
	r := mapResolver{
		{Row: 0, Col: 0}: Number(1),     // A1
		{Row: 1, Col: 0}: Number(2),     // A2
		{Row: 2, Col: 0}: Text("3"),     // A3 numeric text counts
		{Row: 3, Col: 0}: Text("n/a"),   // A4 skipped
		{Row: 4, Col: 0}: Error(ErrRef), // A5 skipped
		{Row: 5, Col: 0}: Bool(true),    // A6 skipped
	}
	// A7..A10 empty: skipped

	tests := []struct {
		formula string
		want    Value
	}{
		{"=SUM(A1:A10)", Number(6)},
		{"=COUNT(A1:A10)", Number(3)},
		{"=AVG(A1:A10)", Number(2)},
		{"=MIN(A1:A10)", Number(1)},
		{"=MAX(A1:A10)", Number(3)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, eval(t, tt.formula, r), tt.formula)
	}

	t.Run("mixed scalar and range arguments", func(t *testing.T) {
		assert.Equal(t, Number(13), eval(t, "=SUM(A1:A3,7)", r))
	})

	t.Run("AVG of nothing is a division error", func(t *testing.T) {
		assert.Equal(t, Error(ErrDivByZero), eval(t, "=AVG(A7:A10)", r))
	})

	t.Run("MIN and MAX of nothing are zero", func(t *testing.T) {
		assert.Equal(t, Number(0), eval(t, "=MIN(A7:A10)", r))
		assert.Equal(t, Number(0), eval(t, "=MAX(A7:A10)", r))
	})

	t.Run("bare range outside an aggregate is an error", func(t *testing.T) {
		assert.Equal(t, Error(ErrEval), eval(t, "=A1:A3", r))
	})
}

func TestDisplay(t *testing.T) {
	// runtime addition so the binary float representation surfaces
	tenth, fifth := 0.1, 0.2

	tests := []struct {
		v    Value
		want string
	}{
		{Number(42), "42"},
		{Number(2.5), "2.5"},
		{Number(tenth + fifth), "0.30000000000000004"},
		{Text("hi"), "hi"},
		{Bool(true), "TRUE"},
		{Bool(false), "FALSE"},
		{Empty(), ""},
		{Error(ErrDivByZero), "#DIV/0!"},
		{Error(ErrRef), "#REF!"},
		{Error(ErrCircular), "#CIRC!"},
		{Error(ErrTypeMismatch), "#TYPE!"},
		{Error(ErrEval), "#VALUE!"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.v.Display())
	}
}

func TestCoerceRaw(t *testing.T) {
	t.Run("number column", func(t *testing.T) {
		assert.Equal(t, Number(42.5), CoerceRaw("42.5", sheet.ColumnTypeNumber))
		assert.Equal(t, Error(ErrTypeMismatch), CoerceRaw("abc", sheet.ColumnTypeNumber))
	})

	t.Run("currency strips sign and separators", func(t *testing.T) {
		assert.Equal(t, Number(1234.56), CoerceRaw("$1,234.56", sheet.ColumnTypeCurrency))
		assert.Equal(t, Number(99), CoerceRaw("99", sheet.ColumnTypeCurrency))
		assert.Equal(t, Error(ErrTypeMismatch), CoerceRaw("$abc", sheet.ColumnTypeCurrency))
	})

	t.Run("percentage strips suffix", func(t *testing.T) {
		assert.Equal(t, Number(15), CoerceRaw("15%", sheet.ColumnTypePercentage))
		assert.Equal(t, Number(15), CoerceRaw("15", sheet.ColumnTypePercentage))
	})

	t.Run("date requires ISO-8601", func(t *testing.T) {
		assert.Equal(t, Text("2026-08-30"), CoerceRaw("2026-08-30", sheet.ColumnTypeDate))
		assert.Equal(t, Error(ErrTypeMismatch), CoerceRaw("30/08/2026", sheet.ColumnTypeDate))
	})

	t.Run("text stores verbatim", func(t *testing.T) {
		assert.Equal(t, Text("  padded  "), CoerceRaw("  padded  ", sheet.ColumnTypeText))
	})

	t.Run("blank input is empty regardless of type", func(t *testing.T) {
		assert.Equal(t, Empty(), CoerceRaw("", sheet.ColumnTypeNumber))
		assert.Equal(t, Empty(), CoerceRaw("   ", sheet.ColumnTypeDate))
	})
}

func TestTruthy(t *testing.T) {
	assert.True(t, Number(1).Truthy())
	assert.False(t, Number(0).Truthy())
	assert.True(t, Bool(true).Truthy())
	assert.True(t, Text("0.5").Truthy())
	assert.False(t, Text("0").Truthy())
	assert.True(t, Text("yes").Truthy())
	assert.False(t, Text("  ").Truthy())
	assert.False(t, Empty().Truthy())
	assert.False(t, Error(ErrEval).Truthy())
}
