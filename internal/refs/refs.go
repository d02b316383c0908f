// Package refs maps between A1-style reference labels and grid coordinates.
// Column letters use base-26 positional notation (A=0, Z=25, AA=26) and row
// numbers are 1-indexed in labels, 0-indexed in coordinates.
package refs

import (
	"fmt"
	"strconv"
	"strings"
)

// Coord is a zero-based grid coordinate.
type Coord struct {
	Row int
	Col int
}

// Less orders coords by ascending (row, col). Used to break ties
// deterministically in evaluation order.
func (c Coord) Less(other Coord) bool {
	if c.Row != other.Row {
		return c.Row < other.Row
	}
	return c.Col < other.Col
}

// Range is an inclusive rectangular block of coordinates.
type Range struct {
	Start Coord
	End   Coord
}

// Normalize returns the range with Start at the top-left corner.
func (r Range) Normalize() Range {
	out := r
	if out.Start.Row > out.End.Row {
		out.Start.Row, out.End.Row = out.End.Row, out.Start.Row
	}
	if out.Start.Col > out.End.Col {
		out.Start.Col, out.End.Col = out.End.Col, out.Start.Col
	}
	return out
}

// Coords returns every coordinate contained in the range in row-major
// order: left-to-right, top-to-bottom.
func (r Range) Coords() []Coord {
	n := r.Normalize()
	out := make([]Coord, 0, (n.End.Row-n.Start.Row+1)*(n.End.Col-n.Start.Col+1))
	for row := n.Start.Row; row <= n.End.Row; row++ {
		for col := n.Start.Col; col <= n.End.Col; col++ {
			out = append(out, Coord{Row: row, Col: col})
		}
	}
	return out
}

// Contains reports whether the coordinate lies inside the range.
func (r Range) Contains(c Coord) bool {
	n := r.Normalize()
	return c.Row >= n.Start.Row && c.Row <= n.End.Row &&
		c.Col >= n.Start.Col && c.Col <= n.End.Col
}

// ParseLabel parses an A1-style cell label into a coordinate.
func ParseLabel(label string) (Coord, error) {
	if len(label) < 2 {
		return Coord{}, fmt.Errorf("invalid cell reference: %q", label)
	}

	letterEnd := 0
	for i, ch := range label {
		if (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') {
			letterEnd = i + 1
		} else {
			break
		}
	}
	if letterEnd == 0 || letterEnd == len(label) {
		return Coord{}, fmt.Errorf("invalid cell reference: %q", label)
	}

	col, err := parseColumnLetters(label[:letterEnd])
	if err != nil {
		return Coord{}, err
	}

	rowNum, err := strconv.Atoi(label[letterEnd:])
	if err != nil {
		return Coord{}, fmt.Errorf("invalid row number in %q", label)
	}
	if rowNum < 1 {
		return Coord{}, fmt.Errorf("row number must be positive: %d", rowNum)
	}

	return Coord{Row: rowNum - 1, Col: col}, nil
}

// ParseRange parses an "A1:B3" range label.
func ParseRange(label string) (Range, error) {
	parts := strings.Split(label, ":")
	if len(parts) != 2 {
		return Range{}, fmt.Errorf("invalid range format: %q", label)
	}
	start, err := ParseLabel(parts[0])
	if err != nil {
		return Range{}, fmt.Errorf("invalid start cell in range %q: %w", label, err)
	}
	end, err := ParseLabel(parts[1])
	if err != nil {
		return Range{}, fmt.Errorf("invalid end cell in range %q: %w", label, err)
	}
	return Range{Start: start, End: end}.Normalize(), nil
}

// FormatLabel renders a coordinate as an A1-style label.
func FormatLabel(c Coord) string {
	return ColumnLetters(c.Col) + strconv.Itoa(c.Row+1)
}

// FormatRange renders a range as an "A1:B3" label.
func FormatRange(r Range) string {
	n := r.Normalize()
	return FormatLabel(n.Start) + ":" + FormatLabel(n.End)
}

// ColumnLetters converts a zero-based column index to its letter label
// (0 -> "A", 25 -> "Z", 26 -> "AA").
func ColumnLetters(col int) string {
	var buf [8]byte
	i := len(buf)
	for {
		i--
		buf[i] = byte('A' + col%26)
		col = col/26 - 1
		if col < 0 {
			break
		}
	}
	return string(buf[i:])
}

// parseColumnLetters converts letter labels to a zero-based column index,
// accounting for positional notation (A=0 ... Z=25, AA=26, AB=27).
func parseColumnLetters(letters string) (int, error) {
	col := 0
	upper := strings.ToUpper(letters)
	for i, ch := range upper {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("invalid column letters: %q", letters)
		}
		col = col*26 + int(ch-'A')
		if i < len(upper)-1 {
			col++
		}
	}
	return col, nil
}
