package depgraph

import (
	"strings"

	"github.com/dsdsmelo/gridnote/internal/refs"
)

// CycleError reports a circular reference among formula cells. The edit
// that introduced the cycle is still accepted into storage; every member
// listed here evaluates to a circular-reference error value instead of a
// number.
type CycleError struct {
	Members []refs.Coord
}

func (e *CycleError) Error() string {
	labels := make([]string, len(e.Members))
	for i, c := range e.Members {
		labels[i] = refs.FormatLabel(c)
	}
	return "circular reference: " + strings.Join(labels, " -> ")
}

// IsCycleError checks if an error is a *CycleError.
func IsCycleError(err error) bool {
	_, ok := err.(*CycleError)
	return ok
}
