package grid

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Pos addresses a cell by 0-indexed row and column.
type Pos struct {
	Row int
	Col int
}

// Predicate tests the normalized text of a cell.
type Predicate func(text string) bool

// Normalize trims and lowercases s after NFKC folding, so non-breaking spaces
// and full-width forms compare like their ASCII counterparts.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}

// NormalizedText returns the normalized text of the cell at (row, col).
func (g *Grid) NormalizedText(row, col int) string {
	return Normalize(g.Cell(row, col).String())
}

// Find scans rows top-to-bottom and columns left-to-right and returns the
// first cell whose normalized text satisfies pred.
func Find(g *Grid, pred Predicate) (Pos, bool) {
	return FindFrom(g, 0, pred)
}

// FindFrom is Find starting at row start.
func FindFrom(g *Grid, start int, pred Predicate) (Pos, bool) {
	if g == nil || pred == nil {
		return Pos{}, false
	}
	if start < 0 {
		start = 0
	}
	for r := start; r < g.RowCount(); r++ {
		for c := range g.Row(r) {
			if pred(g.NormalizedText(r, c)) {
				return Pos{Row: r, Col: c}, true
			}
		}
	}
	return Pos{}, false
}

// ContainsAny matches text containing any of the given lowercase keywords.
func ContainsAny(keywords ...string) Predicate {
	return func(text string) bool {
		for _, kw := range keywords {
			if kw != "" && strings.Contains(text, kw) {
				return true
			}
		}
		return false
	}
}

// ContainsAll matches text containing every given lowercase keyword.
func ContainsAll(keywords ...string) Predicate {
	return func(text string) bool {
		for _, kw := range keywords {
			if !strings.Contains(text, kw) {
				return false
			}
		}
		return true
	}
}

// Equals matches text exactly equal to want.
func Equals(want string) Predicate {
	return func(text string) bool {
		return text == want
	}
}

// FindAll returns every cell whose normalized text satisfies pred, in scan
// order.
func FindAll(g *Grid, pred Predicate) []Pos {
	if g == nil || pred == nil {
		return nil
	}
	var out []Pos
	for r := 0; r < g.RowCount(); r++ {
		for c := range g.Row(r) {
			if pred(g.NormalizedText(r, c)) {
				out = append(out, Pos{Row: r, Col: c})
			}
		}
	}
	return out
}
