package extract

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	cerrors "github.com/a3tai/circular29/internal/errors"
	"github.com/a3tai/circular29/internal/grid"
	"github.com/a3tai/circular29/internal/inventory"
	"github.com/a3tai/circular29/internal/rules"
)

// ColumnMap assigns header columns to fields. At most one column per field.
type ColumnMap map[rules.FieldKind]int

// Col returns the mapped column for field, or fallback when unmapped.
func (m ColumnMap) Col(field rules.FieldKind, fallback int) int {
	if c, ok := m[field]; ok {
		return c
	}
	return fallback
}

// Table describes where one section's unit table sits in a sheet.
type Table struct {
	SectionRow  int
	DataStart   int
	HeaderRow   int
	Columns     ColumnMap
	HasBuilding bool
}

// LocateSection returns the first row containing a cell that mentions any
// synonym of label.
func (e *Extractor) LocateSection(g *grid.Grid, label rules.SectionLabel) (int, bool) {
	pos, ok := grid.Find(g, grid.ContainsAny(e.vocab.Synonyms(label)...))
	if !ok {
		return -1, false
	}
	return pos.Row, true
}

// DataStart returns the first row at or after from in which any cell reads
// exactly "1".
func (e *Extractor) DataStart(g *grid.Grid, from int) (int, bool) {
	pos, ok := grid.FindFrom(g, from, grid.Equals("1"))
	if !ok {
		return -1, false
	}
	return pos.Row, true
}

// DetectHeader scans the window [anchor-lookback, anchor] for the first row
// with at least Threshold cells containing a header token.
func (e *Extractor) DetectHeader(g *grid.Grid, anchor int) (int, bool) {
	h := e.vocab.Header
	if anchor >= g.RowCount() {
		anchor = g.RowCount() - 1
	}
	start := anchor - h.Lookback
	if start < 0 {
		start = 0
	}

	isHeaderCell := grid.ContainsAny(h.Tokens...)
	for r := start; r <= anchor; r++ {
		hits := 0
		for c := range g.Row(r) {
			if isHeaderCell(g.NormalizedText(r, c)) {
				hits++
			}
		}
		if hits >= h.Threshold {
			return r, true
		}
	}
	return -1, false
}

// MapColumns assigns each header cell, left to right, to the first field
// rule that matches it and whose field is still unmapped. It also reports
// whether a building column was found.
func (e *Extractor) MapColumns(headers []string) (ColumnMap, bool) {
	cmap := make(ColumnMap)
	for i, raw := range headers {
		text := grid.Normalize(raw)
		for _, rule := range e.vocab.Fields {
			if _, mapped := cmap[rule.Field]; mapped {
				continue
			}
			if rule.Matches(text) {
				cmap[rule.Field] = i
				break
			}
		}
	}
	_, hasBuilding := cmap[rules.FieldBuildingNo]
	return cmap, hasBuilding
}

// ExtractRecords reads unit rows starting at t.DataStart. Rows are skipped
// until the serial column reads "1"; from then on every row is a record
// until the serial cell is empty, not a number, or the grid ends.
func (e *Extractor) ExtractRecords(g *grid.Grid, label rules.SectionLabel, t Table) []inventory.UnitRecord {
	fb := e.vocab.Fallback
	serialCol := t.Columns.Col(rules.FieldSrNo, fb.Serial)
	buildingCol := t.Columns.Col(rules.FieldBuildingNo, fb.Building)
	flatCol := t.Columns.Col(rules.FieldFlatNo, fb.Flat)
	carpetCol := t.Columns.Col(rules.FieldCarpetArea, fb.Carpet)

	var records []inventory.UnitRecord
	armed := false
	for r := t.DataStart; r < g.RowCount(); r++ {
		serial := g.Cell(r, serialCol)
		if !armed {
			if grid.Normalize(serial.String()) != "1" {
				continue
			}
			armed = true
		}

		seq, ok := parseSerial(serial)
		if !ok {
			e.logger.Debug("serial sequence ended",
				zap.String("section", string(label)),
				zap.Int("row", r),
				zap.String("value", serial.String()))
			break
		}

		records = append(records, inventory.UnitRecord{
			Sequence:         seq,
			Building:         g.Text(r, buildingCol),
			Flat:             g.Text(r, flatCol),
			CarpetArea:       g.Text(r, carpetCol),
			Section:          label,
			RegistrationDate: "",
		})
	}
	return records
}

// parseSerial accepts integers and decimals (truncated toward zero) and
// rejects empty, NaN and infinite values.
func parseSerial(c grid.Cell) (int, bool) {
	if c.IsEmpty() {
		return 0, false
	}
	switch c.Kind {
	case grid.Number:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return 0, false
		}
		return int(c.Num), true
	case grid.Text:
		s := strings.TrimSpace(c.Text)
		if s == "" {
			return 0, false
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}

// LocateTable chains section location, data start, header detection and
// column mapping. The returned error is a NotFound warning describing which
// step failed.
func (e *Extractor) LocateTable(g *grid.Grid, label rules.SectionLabel) (Table, *cerrors.ConversionError) {
	t := Table{SectionRow: -1, DataStart: -1, HeaderRow: -1}

	sectionRow, ok := e.LocateSection(g, label)
	if !ok {
		return t, cerrors.New(cerrors.ErrorTypeNotFound, "section not found")
	}
	t.SectionRow = sectionRow

	dataStart, ok := e.DataStart(g, sectionRow)
	if !ok {
		return t, cerrors.New(cerrors.ErrorTypeNotFound, "serial number 1 not found").
			WithContext("from row " + strconv.Itoa(sectionRow))
	}
	t.DataStart = dataStart

	headerRow, ok := e.DetectHeader(g, dataStart)
	if !ok {
		return t, cerrors.New(cerrors.ErrorTypeNotFound, "header row not found").
			WithContext("near row " + strconv.Itoa(dataStart))
	}
	t.HeaderRow = headerRow

	headers := make([]string, len(g.Row(headerRow)))
	for c := range headers {
		headers[c] = g.Cell(headerRow, c).String()
	}
	t.Columns, t.HasBuilding = e.MapColumns(headers)
	return t, nil
}

// ExtractSection returns the records of one section. When the section yields
// nothing the second value explains why; it is a warning, not a failure.
func (e *Extractor) ExtractSection(g *grid.Grid, label rules.SectionLabel) (inventory.SectionResult, *cerrors.ConversionError) {
	t, miss := e.LocateTable(g, label)
	if miss != nil {
		miss.WithSheet(sheetName(g)).WithSection(string(label))
		e.logger.Warn(miss.Message,
			zap.String("sheet", sheetName(g)),
			zap.String("section", string(label)),
			zap.String("context", miss.Context))
		return inventory.SectionResult{}, miss
	}

	e.logger.Debug("unit table located",
		zap.String("sheet", sheetName(g)),
		zap.String("section", string(label)),
		zap.Int("section_row", t.SectionRow),
		zap.Int("header_row", t.HeaderRow),
		zap.Int("data_start", t.DataStart),
		zap.Any("columns", t.Columns))

	records := e.ExtractRecords(g, label, t)
	e.logger.Info("extracted units",
		zap.String("sheet", sheetName(g)),
		zap.String("section", string(label)),
		zap.Int("count", len(records)))

	return inventory.SectionResult{Records: records, BuildingColumn: t.HasBuilding}, nil
}
