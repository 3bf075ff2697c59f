package convert

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/a3tai/circular29/internal/grid"
	"github.com/a3tai/circular29/internal/rules"
)

const asOnMarker = "as on"

// Validation is a quick structural check of a candidate Form 3 workbook.
type Validation struct {
	IsExcel        bool `json:"is_excel"`
	HasTableA      bool `json:"has_table_a"`
	HasTableB      bool `json:"has_table_b"`
	HasTableC      bool `json:"has_table_c"`
	HasProjectInfo bool `json:"has_project_info"`
	HasDateInfo    bool `json:"has_date_info"`
	HasUnitData    bool `json:"has_unit_data"`
	OverallValid   bool `json:"overall_valid"`
}

// Failed lists the checks that did not pass.
func (v Validation) Failed() []string {
	var out []string
	checks := []struct {
		name string
		ok   bool
	}{
		{"is_excel", v.IsExcel},
		{"has_table_a", v.HasTableA},
		{"has_table_b", v.HasTableB},
		{"has_table_c", v.HasTableC},
		{"has_project_info", v.HasProjectInfo},
		{"has_date_info", v.HasDateInfo},
		{"has_unit_data", v.HasUnitData},
	}
	for _, c := range checks {
		if !c.ok {
			out = append(out, c.name)
		}
	}
	return out
}

// IsExcelName reports whether filename carries an .xlsx or .xls extension.
func IsExcelName(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return true
	}
	return false
}

// Validate inspects src without extracting records. A workbook is valid when
// it is an Excel file, has at least one of the Table A/B/C sheets and at
// least one content signal: the certificate sentence on Table A, an as-on
// mention on Table B, or a section keyword on Table C. src may be nil when
// the file could not be opened.
func (c *Converter) Validate(src grid.Workbook, filename string) Validation {
	var v Validation
	if !IsExcelName(filename) {
		return v
	}
	v.IsExcel = true
	if src == nil {
		return v
	}

	names := src.SheetNames()
	sheets := c.vocab.Sheets
	load := func(pattern string) (*grid.Grid, bool) {
		name, ok := grid.MatchSheet(names, pattern)
		if !ok {
			return nil, false
		}
		g, err := src.Sheet(name)
		if err != nil {
			c.logger.Warn("validation could not read sheet", zap.String("sheet", name), zap.Error(err))
			return nil, true
		}
		return g, true
	}

	var g *grid.Grid
	if g, v.HasTableA = load(sheets.Project); g != nil {
		_, v.HasProjectInfo = grid.Find(g, grid.ContainsAny(c.vocab.Metadata.IdentityTrigger))
	}
	if g, v.HasTableB = load(sheets.AsOn); g != nil {
		_, v.HasDateInfo = grid.Find(g, grid.ContainsAny(asOnMarker))
	}
	if g, v.HasTableC = load(sheets.Inventory); g != nil {
		keywords := make([]string, len(rules.ExtractionOrder))
		for i, label := range rules.ExtractionOrder {
			keywords[i] = string(label)
		}
		_, v.HasUnitData = grid.Find(g, grid.ContainsAny(keywords...))
	}

	v.OverallValid = v.IsExcel &&
		(v.HasTableA || v.HasTableB || v.HasTableC) &&
		(v.HasProjectInfo || v.HasDateInfo || v.HasUnitData)

	c.logger.Debug("validation finished",
		zap.String("file", filename),
		zap.Bool("valid", v.OverallValid),
		zap.Strings("failed", v.Failed()))
	return v
}
