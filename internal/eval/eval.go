package eval

import (
	"github.com/dsdsmelo/gridnote/internal/formula"
	"github.com/dsdsmelo/gridnote/internal/refs"
)

// Resolver supplies leaf values to the evaluator. The engine implements it
// over the grid and the current recomputation pass: by the time a formula
// is evaluated, every cell it reads has already been resolved, so the walk
// never re-triggers graph analysis.
type Resolver interface {
	// CellValue returns the resolved value at a coordinate. Out-of-range
	// coordinates yield Error(ErrRef); empty cells yield Empty().
	CellValue(c refs.Coord) Value

	// RangeValues returns the resolved values of every cell in the range,
	// row-major: left-to-right, top-to-bottom.
	RangeValues(r refs.Range) []Value
}

// Evaluate walks the expression tree bottom-up and produces a typed
// result. Value errors propagate as data; Evaluate itself is total.
func Evaluate(e *formula.Expr, r Resolver) Value {
	switch e.Kind {
	case formula.KindNumber:
		return Number(e.Num)

	case formula.KindString:
		return Text(e.Str)

	case formula.KindRef:
		return r.CellValue(e.Ref)

	case formula.KindRange:
		// a bare range is not a scalar; only aggregates consume ranges
		return Error(ErrEval)

	case formula.KindRefError:
		// left behind by structural deletion rewriting the formula text
		return Error(ErrRef)

	case formula.KindUnary:
		v := Evaluate(e.Operand, r)
		if v.IsError() {
			return v
		}
		n, ok := v.AsNumber()
		if !ok {
			return Error(ErrEval)
		}
		return Number(-n)

	case formula.KindBinary:
		return evalBinary(e, r)

	case formula.KindCall:
		return evalCall(e, r)
	}
	return Error(ErrEval)
}

// evalBinary applies an arithmetic or comparison operator. Arithmetic on
// non-numeric operands is a value error (operators are strict where
// aggregates are tolerant); an error operand becomes the result.
func evalBinary(e *formula.Expr, r Resolver) Value {
	left := Evaluate(e.Left, r)
	if left.IsError() {
		return left
	}
	right := Evaluate(e.Right, r)
	if right.IsError() {
		return right
	}

	switch e.Op {
	case formula.OpEq:
		return Bool(Compare(left, right) == 0)
	case formula.OpNe:
		return Bool(Compare(left, right) != 0)
	case formula.OpLt:
		return Bool(Compare(left, right) < 0)
	case formula.OpLe:
		return Bool(Compare(left, right) <= 0)
	case formula.OpGt:
		return Bool(Compare(left, right) > 0)
	case formula.OpGe:
		return Bool(Compare(left, right) >= 0)
	}

	ln, lok := left.AsNumber()
	rn, rok := right.AsNumber()
	if !lok || !rok {
		return Error(ErrEval)
	}

	switch e.Op {
	case formula.OpAdd:
		return Number(ln + rn)
	case formula.OpSub:
		return Number(ln - rn)
	case formula.OpMul:
		return Number(ln * rn)
	case formula.OpDiv:
		if rn == 0 {
			return Error(ErrDivByZero)
		}
		return Number(ln / rn)
	}
	return Error(ErrEval)
}
