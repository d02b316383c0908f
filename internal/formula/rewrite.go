package formula

import (
	"sort"

	"github.com/dsdsmelo/gridnote/internal/refs"
)

// AdjustRemovedRow rewrites a formula's reference text after the row at
// idx was deleted. References into the removed row become "#REF!",
// references below it shift up one so they keep reading the same cells,
// and ranges shrink. Ranges that lay entirely inside the removed row
// become "#REF!" too. The input must parse; the result always does.
func AdjustRemovedRow(raw string, idx int) (string, error) {
	return adjustRefs(raw,
		func(c refs.Coord) (refs.Coord, bool) {
			if c.Row == idx {
				return refs.Coord{}, false
			}
			if c.Row > idx {
				c.Row--
			}
			return c, true
		},
		func(r refs.Range) (refs.Range, bool) {
			if r.Start.Row == idx && r.End.Row == idx {
				return refs.Range{}, false
			}
			if r.Start.Row > idx {
				r.Start.Row--
			}
			if r.End.Row >= idx {
				r.End.Row--
			}
			return r, true
		})
}

// AdjustRemovedColumn is AdjustRemovedRow for a deleted column.
func AdjustRemovedColumn(raw string, idx int) (string, error) {
	return adjustRefs(raw,
		func(c refs.Coord) (refs.Coord, bool) {
			if c.Col == idx {
				return refs.Coord{}, false
			}
			if c.Col > idx {
				c.Col--
			}
			return c, true
		},
		func(r refs.Range) (refs.Range, bool) {
			if r.Start.Col == idx && r.End.Col == idx {
				return refs.Range{}, false
			}
			if r.Start.Col > idx {
				r.Start.Col--
			}
			if r.End.Col >= idx {
				r.End.Col--
			}
			return r, true
		})
}

// adjustRefs parses the formula, maps every reference node through the
// given functions (ok=false turns the reference into "#REF!"), and splices
// the replacements back into the original text by token position, so the
// rest of the formula keeps its shape. Reference and range tokens carry no
// internal whitespace and keep their byte length under case folding, which
// makes the positional splice exact.
func adjustRefs(raw string, mapRef func(refs.Coord) (refs.Coord, bool), mapRange func(refs.Range) (refs.Range, bool)) (string, error) {
	expr, err := Parse(raw)
	if err != nil {
		return "", err
	}

	type edit struct {
		pos, end int
		text     string
	}
	var edits []edit

	expr.walk(func(n *Expr) {
		switch n.Kind {
		case KindRef:
			oldLen := len(refs.FormatLabel(n.Ref))
			c, ok := mapRef(n.Ref)
			if ok && c == n.Ref {
				return
			}
			text := RefErrorText
			if ok {
				text = refs.FormatLabel(c)
			}
			edits = append(edits, edit{pos: n.Pos, end: n.Pos + oldLen, text: text})
		case KindRange:
			oldLen := len(refs.FormatRange(n.Rng))
			r, ok := mapRange(n.Rng.Normalize())
			if ok && r == n.Rng.Normalize() {
				return
			}
			text := RefErrorText
			if ok {
				text = refs.FormatRange(r)
			}
			edits = append(edits, edit{pos: n.Pos, end: n.Pos + oldLen, text: text})
		}
	})

	if len(edits) == 0 {
		return raw, nil
	}

	sort.Slice(edits, func(i, j int) bool { return edits[i].pos > edits[j].pos })
	out := []byte(raw)
	for _, e := range edits {
		out = append(out[:e.pos], append([]byte(e.text), out[e.end:]...)...)
	}
	return string(out), nil
}
