package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/circular29/internal/inventory"
	"github.com/a3tai/circular29/internal/rules"
)

func unit(label rules.SectionLabel, seq int, building, flat, area string) inventory.UnitRecord {
	return inventory.UnitRecord{Sequence: seq, Building: building, Flat: flat, CarpetArea: area, Section: label}
}

func sampleState() *inventory.State {
	s := inventory.NewState("form3.xlsx")
	s.Meta = inventory.ProjectMetadata{
		Name:               "Sunrise Heights",
		RegistrationNumber: "P51800012345",
		AsOnDate:           "30th June 2025",
	}
	s.SetSection(rules.SectionSold, inventory.SectionResult{Records: []inventory.UnitRecord{
		unit(rules.SectionSold, 1, "A", "101", "45.67"),
	}})
	s.SetSection(rules.SectionUnsold, inventory.SectionResult{Records: []inventory.UnitRecord{
		unit(rules.SectionUnsold, 1, "B", "201", "50"),
	}})
	s.SetSection(rules.SectionCIDCO, inventory.SectionResult{Records: []inventory.UnitRecord{
		unit(rules.SectionCIDCO, 7, "C", "301", "n/a"),
	}})
	return s
}

func value(t *testing.T, doc *Document, row, col int) interface{} {
	t.Helper()
	c, ok := doc.Cell(row, col)
	require.True(t, ok, "no cell at row %d col %d", row, col)
	return c.Value
}

func TestRenderPreamble(t *testing.T) {
	doc := Render(sampleState())

	assert.Equal(t, "Sheet1", doc.SheetName)
	assert.Equal(t, 15.6, doc.DefaultRowHeight)
	assert.Equal(t, map[int]float64{1: 9, 2: 15, 3: 12, 4: 16, 5: 18}, doc.ColumnWidths)

	assert.Equal(t, "To whomsoever it may concern", value(t, doc, 2, 1))
	assert.Equal(t, "Name of Project: Sunrise Heights", value(t, doc, 4, 1))
	assert.Equal(t, "MahaRERA Project Registration Number: P51800012345", value(t, doc, 5, 1))
	assert.Equal(t, "Information of Sold/ Booked inventory (Building Wise)", value(t, doc, 7, 1))
	assert.Equal(t, "Information as on dated: 30/06/2025", value(t, doc, 9, 1))

	for _, row := range []int{4, 5, 7, 9} {
		assert.Contains(t, doc.Merges, Span{Row: row, FromCol: 1, ToCol: 5})
	}
	c, _ := doc.Cell(2, 1)
	assert.Equal(t, Font{Family: "Aptos", Size: 14, Bold: true}, c.Style.Font)
}

func TestRenderHeaderWithoutBuilding(t *testing.T) {
	doc := Render(sampleState())

	hdr, ok := doc.Row(11)
	require.True(t, ok)
	assert.Equal(t, float64(98), hdr.Height)

	var texts []interface{}
	for _, c := range hdr.Cells {
		texts = append(texts, c.Value)
		assert.True(t, c.Style.Border)
		assert.True(t, c.Style.Wrap)
	}
	assert.Equal(t, []interface{}{
		"Sr.No",
		"Flat No./ Shop No",
		"Carpet Area In Sq.Mtrs ",
		"Sold/ Booked /Unsold Reserved/ Rehab/ Mortgaged/ Not for Sale",
		"Registration Date of Sub Registrar",
	}, texts)
}

func TestRenderBuildingColumnIsDocumentWide(t *testing.T) {
	s := sampleState()
	s.SetSection(rules.SectionPAP, inventory.SectionResult{BuildingColumn: true})

	doc := Render(s)

	assert.True(t, doc.BuildingColumn)
	assert.Equal(t, "Building No", value(t, doc, 11, 2))
	// every data row carries the column, even sections without one
	assert.Equal(t, "A", value(t, doc, 12, 2))
	assert.Equal(t, "B", value(t, doc, 13, 2))
	assert.Equal(t, "Registration Date of Sub Registrar", value(t, doc, 11, 6))
}

func TestRenderOrderingAndRenumbering(t *testing.T) {
	s := inventory.NewState("")
	s.SetSection(rules.SectionCIDCO, inventory.SectionResult{Records: []inventory.UnitRecord{unit(rules.SectionCIDCO, 1, "", "C", "")}})
	s.SetSection(rules.SectionSold, inventory.SectionResult{Records: []inventory.UnitRecord{unit(rules.SectionSold, 1, "", "A", "")}})
	s.SetSection(rules.SectionTenant, inventory.SectionResult{Records: []inventory.UnitRecord{unit(rules.SectionTenant, 1, "", "T", "")}})
	s.SetSection(rules.SectionLandowner, inventory.SectionResult{Records: []inventory.UnitRecord{unit(rules.SectionLandowner, 1, "", "L", "")}})

	doc := Render(s)

	assert.Equal(t, 4, doc.UnitCount)
	want := []struct {
		serial int
		flat   string
		status string
	}{
		{1, "A", "Sold"},
		{2, "L", "Landowner"},
		{3, "T", "Tenant"},
		{4, "C", "CIDCO"},
	}
	for i, w := range want {
		row := 12 + i
		assert.Equal(t, w.serial, value(t, doc, row, 1))
		assert.Equal(t, w.flat, value(t, doc, row, 2))
		assert.Equal(t, w.status, value(t, doc, row, 4))
	}
}

func TestRenderDataCells(t *testing.T) {
	doc := Render(sampleState())

	// sold
	assert.Equal(t, 1, value(t, doc, 12, 1))
	assert.Equal(t, "101", value(t, doc, 12, 2))
	assert.Equal(t, "45.67", value(t, doc, 12, 3))
	assert.Equal(t, "Sold", value(t, doc, 12, 4))
	assert.Equal(t, "", value(t, doc, 12, 5))

	// unsold
	assert.Equal(t, "50.00", value(t, doc, 13, 3))
	assert.Equal(t, "Unsold", value(t, doc, 13, 4))
	assert.Equal(t, "NA", value(t, doc, 13, 5))

	// cidco, renumbered from 7 to 3
	assert.Equal(t, 3, value(t, doc, 14, 1))
	assert.Equal(t, "n/a", value(t, doc, 14, 3))
	assert.Equal(t, "CIDCO", value(t, doc, 14, 4))
	assert.Equal(t, "NA", value(t, doc, 14, 5))

	c, _ := doc.Cell(14, 1)
	assert.Equal(t, Font{Family: "Times New Roman", Size: 11}, c.Style.Font)
	assert.True(t, c.Style.Border)
}

func TestRenderFooter(t *testing.T) {
	doc := Render(sampleState())

	// three data rows end at 14, blank 15, note 16
	note, ok := doc.Row(16)
	require.True(t, ok)
	assert.Equal(t, float64(38), note.Height)
	assert.Equal(t, NoteText, note.Cells[0].Value)
	assert.Contains(t, doc.Merges, Span{Row: 16, FromCol: 1, ToCol: 5})

	_, ok = doc.Row(15)
	assert.False(t, ok)

	assert.Equal(t, "Sign", value(t, doc, 18, 4))
	assert.Contains(t, doc.Merges, Span{Row: 18, FromCol: 4, ToCol: 5})
	assert.Equal(t, "________________", value(t, doc, 19, 5))
	assert.Equal(t, 19, doc.LastRow())
}

func TestRenderEmptyState(t *testing.T) {
	doc := Render(inventory.NewState(""))

	assert.Equal(t, 0, doc.UnitCount)
	assert.Equal(t, "Name of Project: ", value(t, doc, 4, 1))
	assert.Equal(t, "Information as on dated: ", value(t, doc, 9, 1))
	assert.Equal(t, NoteText, value(t, doc, 13, 1))
	assert.Equal(t, 16, doc.LastRow())
}

func TestRegistrationDateColumn(t *testing.T) {
	r := NewRenderer(nil, nil)

	assert.Equal(t, "", r.RegistrationDate(rules.SectionSold))
	for _, label := range []rules.SectionLabel{
		rules.SectionUnsold, rules.SectionLandowner, rules.SectionTenant,
		rules.SectionRehab, rules.SectionCIDCO, rules.SectionPAP,
	} {
		assert.Equal(t, "NA", r.RegistrationDate(label), label)
	}
}

func TestStatusText(t *testing.T) {
	r := NewRenderer(nil, nil)

	assert.Equal(t, "Sold", r.StatusText(rules.SectionSold))
	assert.Equal(t, "Rehab", r.StatusText(rules.SectionRehab))
	assert.Equal(t, "Landowner", r.StatusText(rules.SectionLandowner))
	assert.Equal(t, "PAP", r.StatusText(rules.SectionPAP))
	assert.Equal(t, "CIDCO", r.StatusText(rules.SectionCIDCO))
}

func TestFormatCarpetArea(t *testing.T) {
	assert.Equal(t, "45.67", FormatCarpetArea("45.67"))
	assert.Equal(t, "50.00", FormatCarpetArea("50"))
	assert.Equal(t, "12.50", FormatCarpetArea(" 12.5 "))
	assert.Equal(t, "n/a", FormatCarpetArea("n/a"))
	assert.Equal(t, "", FormatCarpetArea(""))
	assert.Equal(t, "NaN", FormatCarpetArea("NaN"))
}
