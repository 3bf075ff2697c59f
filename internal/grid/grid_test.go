package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind CellKind
		str  string
	}{
		{"empty", "", Empty, ""},
		{"integer", "1", Number, "1"},
		{"decimal integral", "1.0", Number, "1"},
		{"decimal", "45.67", Number, "45.67"},
		{"text", "Flat No", Text, "Flat No"},
		{"whitespace only", "   ", Text, "   "},
		{"nan stays text", "NaN", Text, "NaN"},
		{"padded number", " 3 ", Number, "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ParseCell(tt.raw)
			assert.Equal(t, tt.kind, c.Kind)
			assert.Equal(t, tt.str, c.String())
		})
	}
}

func TestCellValueKeepsSourceText(t *testing.T) {
	c := ParseCell("0101")
	assert.Equal(t, Number, c.Kind)
	assert.Equal(t, "101", c.String())
	assert.Equal(t, "0101", c.Value())

	assert.Equal(t, "7", NumberCell(7).Value())
	assert.Equal(t, "A", TextCell("A").Value())
}

func TestGridOutOfRange(t *testing.T) {
	g := FromStrings("s", [][]string{{"a", "b"}, {"c"}})

	assert.Equal(t, 2, g.RowCount())
	assert.Equal(t, 2, g.ColCount())
	assert.True(t, g.Cell(1, 1).IsEmpty())
	assert.True(t, g.Cell(-1, 0).IsEmpty())
	assert.True(t, g.Cell(5, 0).IsEmpty())
	assert.Nil(t, g.Row(9))

	var nilGrid *Grid
	assert.Equal(t, 0, nilGrid.RowCount())
	assert.True(t, nilGrid.Cell(0, 0).IsEmpty())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "sr. no", Normalize("  Sr. No  "))
	assert.Equal(t, "flat no", Normalize("FLAT NO"))
	assert.Equal(t, "table a", Normalize("ＴＡＢＬＥ A"))
}

func TestFind(t *testing.T) {
	g := FromStrings("s", [][]string{
		{"", "Intro"},
		{"x", "Sold Units", "Booked"},
		{"Booked"},
	})

	pos, ok := Find(g, ContainsAny("booked"))
	require.True(t, ok)
	assert.Equal(t, Pos{Row: 1, Col: 2}, pos)

	pos, ok = Find(g, ContainsAll("sold", "units"))
	require.True(t, ok)
	assert.Equal(t, Pos{Row: 1, Col: 1}, pos)

	_, ok = Find(g, Equals("missing"))
	assert.False(t, ok)

	pos, ok = FindFrom(g, 2, ContainsAny("booked"))
	require.True(t, ok)
	assert.Equal(t, 2, pos.Row)

	_, ok = Find(nil, Equals("x"))
	assert.False(t, ok)
}

func TestFindAll(t *testing.T) {
	g := FromStrings("s", [][]string{
		{"as on", "x"},
		{"", "AS ON"},
	})

	assert.Equal(t, []Pos{{Row: 0, Col: 0}, {Row: 1, Col: 1}}, FindAll(g, ContainsAny("as on")))
	assert.Empty(t, FindAll(g, Equals("nothing")))
	assert.Nil(t, FindAll(nil, Equals("x")))
}

func TestFindStringifiesNumbers(t *testing.T) {
	g := New("s", [][]Cell{{TextCell("Sr"), NumberCell(1)}})

	pos, ok := Find(g, Equals("1"))
	require.True(t, ok)
	assert.Equal(t, Pos{Row: 0, Col: 1}, pos)
}

func TestMatchSheet(t *testing.T) {
	names := []string{"Cover", "TABLE A - Project", "Table B", "table c units"}

	name, ok := MatchSheet(names, "table a")
	require.True(t, ok)
	assert.Equal(t, "TABLE A - Project", name)

	name, ok = MatchSheet(names, "table c")
	require.True(t, ok)
	assert.Equal(t, "table c units", name)

	_, ok = MatchSheet(names, "table d")
	assert.False(t, ok)
}

func TestMemoryWorkbook(t *testing.T) {
	a := FromStrings("A", nil)
	b := FromStrings("B", nil)
	m := NewMemory(a, b)

	assert.Equal(t, []string{"A", "B"}, m.SheetNames())

	got, err := m.Sheet("B")
	require.NoError(t, err)
	assert.Same(t, b, got)

	_, err = m.Sheet("C")
	var nf *SheetNotFoundError
	assert.ErrorAs(t, err, &nf)
}
