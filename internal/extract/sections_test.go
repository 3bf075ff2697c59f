package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/a3tai/circular29/internal/errors"
	"github.com/a3tai/circular29/internal/grid"
	"github.com/a3tai/circular29/internal/rules"
)

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(nil, nil)
	require.NoError(t, err)
	return e
}

func TestNewRejectsBadPattern(t *testing.T) {
	v := rules.Default()
	v.Metadata.AsOnPattern = "(unclosed"

	_, err := New(v, nil)
	assert.Error(t, err)
}

func TestLocateSection(t *testing.T) {
	e := newExtractor(t)
	g := grid.FromStrings("Table C", [][]string{
		{"Form 3"},
		{"", "Booked Units"},
		{"Tenant details"},
	})

	row, ok := e.LocateSection(g, rules.SectionSold)
	require.True(t, ok)
	assert.Equal(t, 1, row)

	row, ok = e.LocateSection(g, rules.SectionTenant)
	require.True(t, ok)
	assert.Equal(t, 2, row)

	_, ok = e.LocateSection(g, rules.SectionCIDCO)
	assert.False(t, ok)
}

func TestDataStart(t *testing.T) {
	e := newExtractor(t)
	g := grid.New("s", [][]grid.Cell{
		{grid.NumberCell(1)},
		{grid.TextCell("Sold")},
		{grid.TextCell("1.")},
		{grid.TextCell("x"), grid.NumberCell(1)},
	})

	row, ok := e.DataStart(g, 1)
	require.True(t, ok)
	assert.Equal(t, 3, row)

	_, ok = e.DataStart(g, 4)
	assert.False(t, ok)
}

func TestDetectHeaderThreshold(t *testing.T) {
	e := newExtractor(t)

	accepted := grid.FromStrings("s", [][]string{
		{"Sold"},
		{"Sr. No", "Flat No"},
		{"1", "101"},
	})
	row, ok := e.DetectHeader(accepted, 2)
	require.True(t, ok)
	assert.Equal(t, 1, row)

	rejected := grid.FromStrings("s", [][]string{
		{"Sold"},
		{"Sr. No", "Remarks"},
		{"1", "101"},
	})
	_, ok = e.DetectHeader(rejected, 2)
	assert.False(t, ok)
}

func TestDetectHeaderWindow(t *testing.T) {
	e := newExtractor(t)
	g := grid.FromStrings("s", [][]string{
		{"Sr. No", "Flat No"},
		{""},
		{""},
		{""},
		{""},
		{"1", "101"},
	})

	_, ok := e.DetectHeader(g, 5)
	assert.False(t, ok, "header more than three rows above the anchor is ignored")

	row, ok := e.DetectHeader(g, 3)
	require.True(t, ok)
	assert.Equal(t, 0, row)

	_, ok = e.DetectHeader(grid.FromStrings("empty", nil), 0)
	assert.False(t, ok)
}

func TestMapColumns(t *testing.T) {
	e := newExtractor(t)

	tests := []struct {
		name        string
		headers     []string
		want        ColumnMap
		hasBuilding bool
	}{
		{
			name:    "typical",
			headers: []string{"Sr. No", "Flat No", "Carpet Area", "Unit Type"},
			want: ColumnMap{
				rules.FieldSrNo:       0,
				rules.FieldFlatNo:     1,
				rules.FieldCarpetArea: 2,
				rules.FieldUnitType:   3,
			},
		},
		{
			name:    "wing column",
			headers: []string{"Sr No", "Wing", "Shop No", "Carpet Area"},
			want: ColumnMap{
				rules.FieldSrNo:       0,
				rules.FieldBuildingNo: 1,
				rules.FieldFlatNo:     2,
				rules.FieldCarpetArea: 3,
			},
			hasBuilding: true,
		},
		{
			name:    "first match wins",
			headers: []string{"Sr No", "Sr No", "Flat No"},
			want: ColumnMap{
				rules.FieldSrNo:   0,
				rules.FieldFlatNo: 2,
			},
		},
		{
			name:    "flat rule precedes building rule",
			headers: []string{"Sr No", "Building No. / Flat No."},
			want: ColumnMap{
				rules.FieldSrNo:   0,
				rules.FieldFlatNo: 1,
			},
		},
		{
			name:    "apartment excluded",
			headers: []string{"Apartment Unit Type", "Sr No"},
			want: ColumnMap{
				rules.FieldSrNo: 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hasBuilding := e.MapColumns(tt.headers)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.hasBuilding, hasBuilding)
		})
	}
}

func serialGrid(serials ...grid.Cell) *grid.Grid {
	rows := make([][]grid.Cell, len(serials))
	for i, s := range serials {
		rows[i] = []grid.Cell{s, grid.TextCell("A"), grid.TextCell("F" + s.String()), grid.TextCell("50")}
	}
	return grid.New("s", rows)
}

func num(v float64) grid.Cell { return grid.NumberCell(v) }

func TestExtractRecordsArming(t *testing.T) {
	e := newExtractor(t)
	g := serialGrid(num(2), num(3), num(1), num(2), num(3))

	recs := e.ExtractRecords(g, rules.SectionSold, Table{DataStart: 0, Columns: ColumnMap{}})

	require.Len(t, recs, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{recs[0].Sequence, recs[1].Sequence, recs[2].Sequence})
	assert.Equal(t, "F1", recs[0].Flat)
}

func TestExtractRecordsStopsOnInvalidSerial(t *testing.T) {
	e := newExtractor(t)

	tests := []struct {
		name    string
		serials []grid.Cell
		want    int
	}{
		{"text stops", []grid.Cell{num(1), num(2), grid.TextCell("x"), num(4)}, 2},
		{"empty stops", []grid.Cell{num(1), num(2), {}, num(4)}, 2},
		{"end of grid", []grid.Cell{num(1), num(2), num(3)}, 3},
		{"decimal truncated", []grid.Cell{num(1), grid.TextCell("2.7"), num(3)}, 3},
		{"nan text stops", []grid.Cell{num(1), grid.TextCell("NaN")}, 1},
		{"inf text stops", []grid.Cell{num(1), grid.TextCell("inf")}, 1},
		{"never armed", []grid.Cell{num(2), num(3)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := e.ExtractRecords(serialGrid(tt.serials...), rules.SectionUnsold, Table{Columns: ColumnMap{}})
			assert.Len(t, recs, tt.want)
		})
	}
}

func TestExtractRecordsFields(t *testing.T) {
	e := newExtractor(t)
	g := grid.FromStrings("s", [][]string{
		{"Remarks", "Sr. No", "Flat No", "Carpet Area"},
		{"", "1", "0101", " 45.5 "},
		{"", "2", "102", "50"},
		{"", "Total"},
	})

	cmap, hasBuilding := e.MapColumns([]string{"Remarks", "Sr. No", "Flat No", "Carpet Area"})
	assert.False(t, hasBuilding)

	recs := e.ExtractRecords(g, rules.SectionCIDCO, Table{DataStart: 1, Columns: cmap})

	require.Len(t, recs, 2)
	assert.Equal(t, "0101", recs[0].Flat)
	assert.Equal(t, "45.5", recs[0].CarpetArea)
	assert.Equal(t, "1", recs[0].Building, "unmapped building falls back to column 1")
	assert.Equal(t, rules.SectionCIDCO, recs[0].Section)
	assert.Equal(t, "", recs[0].RegistrationDate)
}

func TestExtractSection(t *testing.T) {
	e := newExtractor(t)
	g := grid.FromStrings("Table C", [][]string{
		{"Table C"},
		{"Sold Units"},
		{"Sr. No", "Building No", "Flat No", "Carpet Area"},
		{"1", "A", "101", "45.67"},
		{"2", "A", "102", "50"},
		{""},
		{"Unsold Units"},
		{"Sr. No", "Flat No", "Carpet Area"},
		{"1", "201", "60"},
	})

	sold, miss := e.ExtractSection(g, rules.SectionSold)
	require.Nil(t, miss)
	require.Len(t, sold.Records, 2)
	assert.True(t, sold.BuildingColumn)
	assert.Equal(t, "A", sold.Records[1].Building)

	unsold, miss := e.ExtractSection(g, rules.SectionUnsold)
	require.Nil(t, miss)
	require.Len(t, unsold.Records, 1)
	assert.False(t, unsold.BuildingColumn)
	assert.Equal(t, "201", unsold.Records[0].Flat)

	pap, miss := e.ExtractSection(g, rules.SectionPAP)
	require.NotNil(t, miss)
	assert.Empty(t, pap.Records)
	assert.Equal(t, cerrors.ErrorTypeNotFound, miss.Type)
	assert.Equal(t, "pap", miss.Section)
	assert.Equal(t, "Table C", miss.Sheet)
}

func TestExtractSectionMissingHeader(t *testing.T) {
	e := newExtractor(t)
	g := grid.FromStrings("s", [][]string{
		{"Tenant"},
		{"1", "x"},
	})

	res, miss := e.ExtractSection(g, rules.SectionTenant)
	require.NotNil(t, miss)
	assert.Equal(t, "header row not found", miss.Message)
	assert.Empty(t, res.Records)
}
