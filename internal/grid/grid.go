// Package grid provides the read-only cell grid that every extractor scans,
// along with the text scanner used to search it.
package grid

import (
	"math"
	"strconv"
	"strings"
)

// CellKind represents the type of value held by a cell.
type CellKind int

const (
	// Empty indicates a cell with no value.
	Empty CellKind = iota
	// Text indicates a string value.
	Text
	// Number indicates a numeric value.
	Number
)

// String returns the string representation of the cell kind.
func (k CellKind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Text:
		return "text"
	case Number:
		return "number"
	default:
		return "unknown"
	}
}

// Cell is a single grid value.
type Cell struct {
	Kind CellKind
	Text string  // set for Text cells; source text for parsed Number cells
	Num  float64 // set for Number cells
}

// TextCell returns a Text cell, or an Empty cell for "".
func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: Text, Text: s}
}

// NumberCell returns a Number cell.
func NumberCell(v float64) Cell {
	return Cell{Kind: Number, Num: v}
}

// ParseCell classifies a raw spreadsheet value. Values that parse as a finite
// float become Number cells, everything else is Text.
func ParseCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		if raw == "" {
			return Cell{}
		}
		return Cell{Kind: Text, Text: raw}
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return Cell{Kind: Number, Num: v, Text: trimmed}
	}
	return Cell{Kind: Text, Text: raw}
}

// IsEmpty returns true if the cell has no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == Empty
}

// String stringifies the cell. Integral numbers are rendered without a
// fractional part.
func (c Cell) String() string {
	switch c.Kind {
	case Text:
		return c.Text
	case Number:
		if c.Num == math.Trunc(c.Num) && math.Abs(c.Num) < 1e15 {
			return strconv.FormatInt(int64(c.Num), 10)
		}
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// Value returns the cell as it was written in the source: the original text
// for parsed numbers, String() otherwise.
func (c Cell) Value() string {
	if c.Kind == Number && c.Text != "" {
		return c.Text
	}
	return c.String()
}

// Grid is an immutable 2-D array of cells representing one sheet. Rows may
// have different lengths; out-of-range reads return an Empty cell.
type Grid struct {
	Name string
	rows [][]Cell
}

// New creates a grid from rows of cells. The rows are not copied.
func New(name string, rows [][]Cell) *Grid {
	return &Grid{Name: name, rows: rows}
}

// FromStrings builds a grid from raw string rows, classifying each value with
// ParseCell.
func FromStrings(name string, rows [][]string) *Grid {
	cells := make([][]Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]Cell, len(row))
		for j, v := range row {
			cells[i][j] = ParseCell(v)
		}
	}
	return New(name, cells)
}

// RowCount returns the number of rows in the grid.
func (g *Grid) RowCount() int {
	if g == nil {
		return 0
	}
	return len(g.rows)
}

// ColCount returns the length of the widest row.
func (g *Grid) ColCount() int {
	if g == nil {
		return 0
	}
	maxCols := 0
	for _, row := range g.rows {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}
	return maxCols
}

// Row returns the cells of row r, or nil when r is out of range.
func (g *Grid) Row(r int) []Cell {
	if g == nil || r < 0 || r >= len(g.rows) {
		return nil
	}
	return g.rows[r]
}

// Cell returns the cell at (row, col), or an Empty cell when out of range.
func (g *Grid) Cell(row, col int) Cell {
	cells := g.Row(row)
	if col < 0 || col >= len(cells) {
		return Cell{}
	}
	return cells[col]
}

// Text returns the trimmed source value of the cell at (row, col).
func (g *Grid) Text(row, col int) string {
	return strings.TrimSpace(g.Cell(row, col).Value())
}
