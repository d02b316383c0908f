package grid

import (
	"fmt"

	"github.com/dsdsmelo/gridnote/pkg/sheet"
)

// OverlapError indicates a new merge rectangle intersects an existing one.
// The grid is unchanged.
type OverlapError struct {
	Existing *sheet.Merge
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("merge overlaps existing merge %s (rows %d-%d, cols %d-%d)",
		e.Existing.ID, e.Existing.StartRow, e.Existing.EndRow, e.Existing.StartCol, e.Existing.EndCol)
}

// OutOfBoundsError indicates a coordinate beyond the current grid extent.
// The grid is unchanged.
type OutOfBoundsError struct {
	Row  int
	Col  int
	Rows int
	Cols int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("position (%d, %d) out of bounds for grid of %d rows x %d columns",
		e.Row, e.Col, e.Rows, e.Cols)
}

// NotFoundError indicates a row, column, cell, or merge ID that does not
// exist in this grid.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// IsOverlap checks if an error is an *OverlapError.
func IsOverlap(err error) bool {
	_, ok := err.(*OverlapError)
	return ok
}

// IsOutOfBounds checks if an error is an *OutOfBoundsError.
func IsOutOfBounds(err error) bool {
	_, ok := err.(*OutOfBoundsError)
	return ok
}

// IsNotFound checks if an error is a *NotFoundError.
func IsNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}
