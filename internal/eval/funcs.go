package eval

import (
	"github.com/dsdsmelo/gridnote/internal/formula"
)

// evalCall dispatches a built-in function. Aggregates are tolerant: empty,
// non-numeric, and error cells are excluded from the computation rather
// than failing the whole call. IF is strict on its condition.
func evalCall(e *formula.Expr, r Resolver) Value {
	switch e.Fn {
	case formula.FuncIf:
		return evalIf(e, r)
	case formula.FuncSum:
		return Number(fold(gatherNumbers(e.Args, r), 0, func(acc, n float64) float64 { return acc + n }))
	case formula.FuncCount:
		return Number(float64(len(gatherNumbers(e.Args, r))))
	case formula.FuncAvg:
		nums := gatherNumbers(e.Args, r)
		if len(nums) == 0 {
			return Error(ErrDivByZero)
		}
		return Number(fold(nums, 0, func(acc, n float64) float64 { return acc + n }) / float64(len(nums)))
	case formula.FuncMin:
		return extremum(gatherNumbers(e.Args, r), func(a, b float64) bool { return a < b })
	case formula.FuncMax:
		return extremum(gatherNumbers(e.Args, r), func(a, b float64) bool { return a > b })
	}
	return Error(ErrEval)
}

// evalIf takes exactly condition, then-branch, else-branch; arity was
// enforced by the parser. Only the selected branch is evaluated.
func evalIf(e *formula.Expr, r Resolver) Value {
	cond := Evaluate(e.Args[0], r)
	if cond.IsError() {
		return cond
	}
	if cond.Truthy() {
		return Evaluate(e.Args[1], r)
	}
	return Evaluate(e.Args[2], r)
}

// gatherNumbers flattens aggregate arguments into their numeric values.
// Range arguments expand row-major; single expressions evaluate to one
// value. Empty, error, and non-numeric values are skipped.
func gatherNumbers(args []*formula.Expr, r Resolver) []float64 {
	var nums []float64
	for _, arg := range args {
		if arg.Kind == formula.KindRange {
			for _, v := range r.RangeValues(arg.Rng) {
				if n, ok := aggregateNumber(v); ok {
					nums = append(nums, n)
				}
			}
			continue
		}
		if n, ok := aggregateNumber(Evaluate(arg, r)); ok {
			nums = append(nums, n)
		}
	}
	return nums
}

// aggregateNumber applies the tolerance policy: only genuinely numeric
// values participate. Text that parses as a number counts; empty cells,
// errors, booleans, and non-numeric text do not.
func aggregateNumber(v Value) (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindText:
		return v.AsNumber()
	default:
		return 0, false
	}
}

func fold(nums []float64, init float64, fn func(acc, n float64) float64) float64 {
	acc := init
	for _, n := range nums {
		acc = fn(acc, n)
	}
	return acc
}

// extremum returns the best element under better, or 0 when no numeric
// values were found.
func extremum(nums []float64, better func(a, b float64) bool) Value {
	if len(nums) == 0 {
		return Number(0)
	}
	best := nums[0]
	for _, n := range nums[1:] {
		if better(n, best) {
			best = n
		}
	}
	return Number(best)
}
