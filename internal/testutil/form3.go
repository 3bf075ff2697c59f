// Package testutil writes Form 3 workbooks for tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// InventoryHeader is the column header row used by every fixture section.
var InventoryHeader = []interface{}{"Sr. No", "Building No", "Flat No", "Carpet Area"}

// WriteSheet writes rows into sheet starting at A1.
func WriteSheet(t *testing.T, f *excelize.File, sheet string, rows [][]interface{}) {
	t.Helper()
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
}

// WriteForm3 saves a minimal Form 3 workbook for project to path: two sold
// units and one PAP unit, as on 30th June 2025.
func WriteForm3(t *testing.T, path, project string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Table A"))
	WriteSheet(t, f, "Table A", [][]interface{}{
		{"This certificate is being issued for the project " + project +
			" having MahaRERA registration number P51800012345 being developed by ACME"},
	})

	_, err := f.NewSheet("Table B")
	require.NoError(t, err)
	WriteSheet(t, f, "Table B", [][]interface{}{{"Table B (as on 30th June 2025)"}})

	_, err = f.NewSheet("Table C")
	require.NoError(t, err)
	WriteSheet(t, f, "Table C", [][]interface{}{
		{"Sold"},
		InventoryHeader,
		{1, "A", "101", 45.5},
		{2, "A", "102", 50},
		{"PAP"},
		InventoryHeader,
		{1, "P", "1", 20},
	})

	require.NoError(t, f.SaveAs(path))
}

// WriteBlank saves a workbook with no Form 3 content to path.
func WriteBlank(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	WriteSheet(t, f, "Sheet1", [][]interface{}{{"nothing to see"}})
	require.NoError(t, f.SaveAs(path))
}
