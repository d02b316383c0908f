// Package sheet provides the type-safe data model for gridnote spreadsheets.
// A spreadsheet is a grid of typed cells attached to a project as a free-form
// annotation surface: columns and rows carry order indices that define the
// visible layout, cells hold raw user input keyed by (rowID, columnID), and
// merges collapse rectangular regions into one visible cell.
//
// Computed values are derived state owned by the engine; only raw values are
// authoritative and only raw values are ever persisted.
package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Spreadsheet is the root entity. One spreadsheet owns many columns and rows.
type Spreadsheet struct {
	ID          string `json:"id"`            // UUID
	ProjectID   string `json:"project_id"`    // Owning project identifier
	Name        string `json:"name"`          // Display name
	Description string `json:"description"`   // Optional free text
	CreatedAtMs int64  `json:"created_at_ms"` // Unix timestamp in milliseconds
	UpdatedAtMs int64  `json:"updated_at_ms"` // Unix timestamp in milliseconds
}

// ColumnType defines how raw cell input in a column is interpreted.
type ColumnType string

const (
	// ColumnTypeText stores raw input verbatim
	ColumnTypeText ColumnType = "text"

	// ColumnTypeNumber coerces input with standard decimal rules
	ColumnTypeNumber ColumnType = "number"

	// ColumnTypeDate coerces input as an ISO-8601 date
	ColumnTypeDate ColumnType = "date"

	// ColumnTypeCurrency coerces like number, rendered with a currency prefix
	ColumnTypeCurrency ColumnType = "currency"

	// ColumnTypePercentage coerces like number, rendered with a percent suffix
	ColumnTypePercentage ColumnType = "percentage"

	// ColumnTypeFormula marks a column whose cells hold formulas
	ColumnTypeFormula ColumnType = "formula"
)

// Column represents a vertical strip of the grid. OrderIndex is unique per
// spreadsheet and defines the left-to-right position.
type Column struct {
	ID              string              `json:"id"`                         // UUID
	Name            string              `json:"name"`                       // Header label
	Type            ColumnType          `json:"type"`                       // Interpretation of raw input
	Width           int                 `json:"width"`                      // Display width in pixels
	OrderIndex      int                 `json:"order_index"`                // 0-based left-to-right position
	FormulaTemplate string              `json:"formula_template,omitempty"` // Seed formula for formula columns; "{row}" expands to the 1-based row number
	Formats         []ConditionalFormat `json:"formats,omitempty"`          // Ordered rule list, first match wins
}

// ExpandTemplate instantiates a formula template for one row, replacing
// every "{row}" placeholder with the 1-based row number.
func ExpandTemplate(template string, rowNum int) string {
	return strings.ReplaceAll(template, "{row}", strconv.Itoa(rowNum))
}

// Row represents a horizontal strip of the grid. OrderIndex is unique per
// spreadsheet and defines the top-to-bottom position.
type Row struct {
	ID         string `json:"id"`          // UUID
	OrderIndex int    `json:"order_index"` // 0-based top-to-bottom position
}

// Cell holds the raw value a user entered at one (row, column) intersection.
// At most one Cell exists per (RowID, ColumnID) pair; absence means empty.
//
// Computed is the cached, engine-owned evaluation result for formula cells
// and type-coerced cells. It is never written by a user edit and never
// persisted.
type Cell struct {
	ID           string `json:"id"`            // UUID
	RowID        string `json:"row_id"`        // Owning row UUID
	ColumnID     string `json:"column_id"`     // Owning column UUID
	Raw          string `json:"raw"`           // Literal user input; formulas begin with "="
	Computed     string `json:"computed"`      // Cached computed value (derived, not persisted)
	TypeMismatch bool   `json:"type_mismatch"` // Raw value failed column-type coercion; consumed by the UI
}

// IsFormula reports whether the cell's raw value is a formula.
func (c *Cell) IsFormula() bool {
	return len(c.Raw) > 0 && c.Raw[0] == '='
}

// Merge describes a rectangular region collapsed into one visible cell.
// Coordinates are grid positions (order indices), inclusive on both ends.
// Only the top-left cell of a merge is editable; the rest are suppressed.
type Merge struct {
	ID       string `json:"id"`        // UUID
	StartRow int    `json:"start_row"` // Inclusive
	StartCol int    `json:"start_col"` // Inclusive
	EndRow   int    `json:"end_row"`   // Inclusive
	EndCol   int    `json:"end_col"`   // Inclusive
}

// Contains reports whether the grid position (row, col) lies inside the merge.
func (m *Merge) Contains(row, col int) bool {
	return row >= m.StartRow && row <= m.EndRow && col >= m.StartCol && col <= m.EndCol
}

// Overlaps reports whether two merge rectangles intersect.
func (m *Merge) Overlaps(other *Merge) bool {
	return m.StartRow <= other.EndRow && other.StartRow <= m.EndRow &&
		m.StartCol <= other.EndCol && other.StartCol <= m.EndCol
}

// ConditionKind identifies the comparison a conditional-format rule applies.
type ConditionKind string

const (
	// ConditionGreaterThan matches values greater than the first operand
	ConditionGreaterThan ConditionKind = "greaterThan"

	// ConditionLessThan matches values less than the first operand
	ConditionLessThan ConditionKind = "lessThan"

	// ConditionEquals matches values equal to the first operand
	ConditionEquals ConditionKind = "equals"

	// ConditionBetween matches numeric values within [operand1, operand2]
	ConditionBetween ConditionKind = "between"

	// ConditionContains matches values containing the operand, case-insensitive
	ConditionContains ConditionKind = "contains"

	// ConditionIsEmpty matches cells with a blank raw value
	ConditionIsEmpty ConditionKind = "isEmpty"

	// ConditionNotEmpty matches cells with a non-blank raw value
	ConditionNotEmpty ConditionKind = "notEmpty"
)

// ConditionalFormat is one display rule attached to a column. Rules are
// evaluated in declaration order against each cell; the first matching rule
// wins and later rules are not applied.
type ConditionalFormat struct {
	ID       string        `json:"id"`                 // UUID
	Kind     ConditionKind `json:"kind"`               // Comparison to apply
	Operand1 string        `json:"operand1,omitempty"` // First comparison operand
	Operand2 string        `json:"operand2,omitempty"` // Second operand (between only)
	Intent   DisplayIntent `json:"intent"`             // Styling applied on match
}

// DisplayIntent is the visual styling derived from conditional-format rules.
// It is presentation state, never stored as part of cell data.
type DisplayIntent struct {
	BackgroundColor string `json:"background_color,omitempty"`
	TextColor       string `json:"text_color,omitempty"`
	Bold            bool   `json:"bold,omitempty"`
}

// Zero reports whether the intent carries no styling at all.
func (d DisplayIntent) Zero() bool {
	return d.BackgroundColor == "" && d.TextColor == "" && !d.Bold
}

// CellPosition is a pure grid coordinate derived from row/column order
// indices. It is not persisted as an entity.
type CellPosition struct {
	RowIndex int `json:"row_index"`
	ColIndex int `json:"col_index"`
}

// SelectionRange is a rectangular block of grid coordinates used for
// selection and merge math.
type SelectionRange struct {
	Start CellPosition `json:"start"`
	End   CellPosition `json:"end"`
}

// Normalize returns the range with Start at the top-left and End at the
// bottom-right regardless of how it was dragged out.
func (r SelectionRange) Normalize() SelectionRange {
	out := r
	if out.Start.RowIndex > out.End.RowIndex {
		out.Start.RowIndex, out.End.RowIndex = out.End.RowIndex, out.Start.RowIndex
	}
	if out.Start.ColIndex > out.End.ColIndex {
		out.Start.ColIndex, out.End.ColIndex = out.End.ColIndex, out.Start.ColIndex
	}
	return out
}

// Validate checks if the Spreadsheet has valid field values.
func (s *Spreadsheet) Validate() error {
	if !isValidUUID(s.ID) {
		return fmt.Errorf("invalid spreadsheet ID: not a valid UUID")
	}
	if s.Name == "" {
		return fmt.Errorf("spreadsheet name cannot be empty")
	}
	return nil
}

// Validate checks if the ColumnType is a valid enum value.
func (ct ColumnType) Validate() error {
	switch ct {
	case ColumnTypeText, ColumnTypeNumber, ColumnTypeDate,
		ColumnTypeCurrency, ColumnTypePercentage, ColumnTypeFormula:
		return nil
	default:
		return fmt.Errorf("unknown column type: %q", ct)
	}
}

// Validate checks if the Column has valid field values.
func (c *Column) Validate() error {
	if !isValidUUID(c.ID) {
		return fmt.Errorf("invalid column ID: not a valid UUID")
	}
	if c.Name == "" {
		return fmt.Errorf("column name cannot be empty")
	}
	if err := c.Type.Validate(); err != nil {
		return fmt.Errorf("invalid column type: %w", err)
	}
	if c.OrderIndex < 0 {
		return fmt.Errorf("invalid order index: must be >= 0, got %d", c.OrderIndex)
	}
	for i := range c.Formats {
		if err := c.Formats[i].Validate(); err != nil {
			return fmt.Errorf("invalid format rule at index %d: %w", i, err)
		}
	}
	return nil
}

// Validate checks if the Row has valid field values.
func (r *Row) Validate() error {
	if !isValidUUID(r.ID) {
		return fmt.Errorf("invalid row ID: not a valid UUID")
	}
	if r.OrderIndex < 0 {
		return fmt.Errorf("invalid order index: must be >= 0, got %d", r.OrderIndex)
	}
	return nil
}

// Validate checks if the Cell has valid field values.
func (c *Cell) Validate() error {
	if !isValidUUID(c.ID) {
		return fmt.Errorf("invalid cell ID: not a valid UUID")
	}
	if !isValidUUID(c.RowID) {
		return fmt.Errorf("invalid row ID: not a valid UUID")
	}
	if !isValidUUID(c.ColumnID) {
		return fmt.Errorf("invalid column ID: not a valid UUID")
	}
	return nil
}

// Validate checks if the Merge has valid field values.
func (m *Merge) Validate() error {
	if !isValidUUID(m.ID) {
		return fmt.Errorf("invalid merge ID: not a valid UUID")
	}
	if m.StartRow < 0 || m.StartCol < 0 {
		return fmt.Errorf("merge coordinates must be >= 0")
	}
	if m.EndRow < m.StartRow || m.EndCol < m.StartCol {
		return fmt.Errorf("merge end must not precede merge start")
	}
	return nil
}

// Validate checks if the ConditionKind is a valid enum value.
func (ck ConditionKind) Validate() error {
	switch ck {
	case ConditionGreaterThan, ConditionLessThan, ConditionEquals,
		ConditionBetween, ConditionContains, ConditionIsEmpty, ConditionNotEmpty:
		return nil
	default:
		return fmt.Errorf("unknown condition kind: %q", ck)
	}
}

// Validate checks if the ConditionalFormat has valid field values.
func (cf *ConditionalFormat) Validate() error {
	if !isValidUUID(cf.ID) {
		return fmt.Errorf("invalid format ID: not a valid UUID")
	}
	if err := cf.Kind.Validate(); err != nil {
		return fmt.Errorf("invalid condition: %w", err)
	}
	if cf.Kind == ConditionBetween && (cf.Operand1 == "" || cf.Operand2 == "") {
		return fmt.Errorf("between condition requires two operands")
	}
	return nil
}

// isValidUUID checks if a string is a valid UUID format.
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
