package grid

import "strings"

// Workbook is a tabular source addressable by sheet name.
type Workbook interface {
	// SheetNames returns sheet names in workbook order.
	SheetNames() []string
	// Sheet loads the named sheet as a grid.
	Sheet(name string) (*Grid, error)
}

// MatchSheet returns the first sheet whose name contains pattern,
// compared case-insensitively.
func MatchSheet(names []string, pattern string) (string, bool) {
	pattern = Normalize(pattern)
	for _, name := range names {
		if strings.Contains(Normalize(name), pattern) {
			return name, true
		}
	}
	return "", false
}

// Memory is an in-memory Workbook.
type Memory struct {
	names  []string
	sheets map[string]*Grid
}

// NewMemory creates an in-memory workbook from grids; sheet names are taken
// from Grid.Name and order is preserved.
func NewMemory(grids ...*Grid) *Memory {
	m := &Memory{sheets: make(map[string]*Grid, len(grids))}
	for _, g := range grids {
		m.names = append(m.names, g.Name)
		m.sheets[g.Name] = g
	}
	return m
}

// SheetNames returns sheet names in insertion order.
func (m *Memory) SheetNames() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Sheet returns the named grid.
func (m *Memory) Sheet(name string) (*Grid, error) {
	g, ok := m.sheets[name]
	if !ok {
		return nil, &SheetNotFoundError{Name: name}
	}
	return g, nil
}

// SheetNotFoundError is returned when a workbook has no sheet with the
// requested name.
type SheetNotFoundError struct {
	Name string
}

func (e *SheetNotFoundError) Error() string {
	return "sheet not found: " + e.Name
}
