package layout

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/a3tai/circular29/internal/inventory"
	"github.com/a3tai/circular29/internal/rules"
)

const (
	SheetName        = "Sheet1"
	DefaultRowHeight = 15.6
	HeaderRowHeight  = 98
	NoteRowHeight    = 38

	Salutation   = "To whomsoever it may concern"
	InventoryTag = "Information of Sold/ Booked inventory (Building Wise)"
	NoteText     = "Note: This information has been tallied and confirmed from details submitted in Annexure 'A' of Form 3 issued by Chartered Accountant."
	SignText     = "Sign"
	SignLine     = "________________"

	// preamble rows, 1-based
	salutationRow = 2
	nameRow       = 4
	regNoRow      = 5
	inventoryRow  = 7
	asOnRow       = 9
	headerRow     = 11
)

var (
	preambleStyle = &Style{Font: Font{Family: "Aptos", Size: 14, Bold: true}}
	headerStyle   = &Style{
		Font:       Font{Family: "Times New Roman", Size: 12, Bold: true},
		Border:     true,
		Horizontal: "center",
		Vertical:   "center",
		Wrap:       true,
	}
	dataStyle = &Style{
		Font:       Font{Family: "Times New Roman", Size: 11},
		Border:     true,
		Horizontal: "center",
		Vertical:   "center",
	}
	noteStyle = &Style{
		Font:       Font{Family: "Aptos", Size: 11},
		Horizontal: "center",
		Vertical:   "center",
		Wrap:       true,
	}
	signStyle = &Style{
		Font:       Font{Family: "Aptos", Size: 11},
		Horizontal: "center",
	}
)

// ColumnWidths of columns A through E.
var ColumnWidths = map[int]float64{1: 9, 2: 15, 3: 12, 4: 16, 5: 18}

// Header texts. The carpet heading keeps its trailing space.
const (
	HeaderSerial   = "Sr.No"
	HeaderBuilding = "Building No"
	HeaderFlat     = "Flat No./ Shop No"
	HeaderCarpet   = "Carpet Area In Sq.Mtrs "
	HeaderStatus   = "Sold/ Booked /Unsold Reserved/ Rehab/ Mortgaged/ Not for Sale"
	HeaderRegDate  = "Registration Date of Sub Registrar"
)

// Renderer lays out a collected State as a Document.
type Renderer struct {
	vocab  *rules.Vocabulary
	logger *zap.Logger
}

// NewRenderer creates a Renderer. Nil arguments select defaults. A Renderer
// is safe for concurrent use.
func NewRenderer(vocab *rules.Vocabulary, logger *zap.Logger) *Renderer {
	if vocab == nil {
		vocab = rules.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		vocab:  vocab,
		logger: logger,
	}
}

// Render lays out state with the default vocabulary.
func Render(state *inventory.State) *Document {
	return NewRenderer(nil, nil).Render(state)
}

// Render builds the output document. The state's BuildingColumn flag must be
// final; it decides whether the Building No column is present.
func (r *Renderer) Render(state *inventory.State) *Document {
	doc := &Document{
		SheetName:        SheetName,
		ColumnWidths:     make(map[int]float64, len(ColumnWidths)),
		DefaultRowHeight: DefaultRowHeight,
		BuildingColumn:   state.BuildingColumn,
	}
	for col, w := range ColumnWidths {
		doc.ColumnWidths[col] = w
	}

	asOn, ok := FormatAsOn(state.Meta.AsOnDate)
	if !ok && state.Meta.AsOnDate != "" {
		r.logger.Warn("as-on date could not be parsed, writing raw text",
			zap.String("conversion_id", state.ID),
			zap.String("date", state.Meta.AsOnDate))
	}

	doc.addRow(Row{Index: salutationRow, Cells: []Cell{{Col: 1, Value: Salutation, Style: preambleStyle}}})
	r.mergedLine(doc, nameRow, "Name of Project: "+state.Meta.Name)
	r.mergedLine(doc, regNoRow, "MahaRERA Project Registration Number: "+state.Meta.RegistrationNumber)
	r.mergedLine(doc, inventoryRow, InventoryTag)
	r.mergedLine(doc, asOnRow, "Information as on dated: "+asOn)

	headers := []string{HeaderSerial}
	if state.BuildingColumn {
		headers = append(headers, HeaderBuilding)
	}
	headers = append(headers, HeaderFlat, HeaderCarpet, HeaderStatus, HeaderRegDate)

	hdr := Row{Index: headerRow, Height: HeaderRowHeight}
	for i, h := range headers {
		hdr.Cells = append(hdr.Cells, Cell{Col: i + 1, Value: h, Style: headerStyle})
	}
	doc.addRow(hdr)

	current := headerRow + 1
	serial := 1
	for _, label := range rules.RenderOrder {
		for _, rec := range state.Records(label) {
			doc.addRow(r.dataRow(current, serial, rec, label, state.BuildingColumn))
			serial++
			current++
		}
	}
	doc.UnitCount = serial - 1

	// one blank row, then the note
	current++
	doc.addRow(Row{Index: current, Height: NoteRowHeight, Cells: []Cell{{Col: 1, Value: NoteText, Style: noteStyle}}})
	doc.merge(current, 1, 5)

	current += 2
	doc.addRow(Row{Index: current, Cells: []Cell{{Col: 4, Value: SignText, Style: signStyle}}})
	doc.merge(current, 4, 5)

	current++
	doc.addRow(Row{Index: current, Cells: []Cell{{Col: 5, Value: SignLine, Style: signStyle}}})

	r.logger.Debug("document rendered",
		zap.String("conversion_id", state.ID),
		zap.Int("units", doc.UnitCount),
		zap.Bool("building_column", state.BuildingColumn),
		zap.Int("last_row", current))
	return doc
}

func (r *Renderer) mergedLine(doc *Document, row int, text string) {
	doc.addRow(Row{Index: row, Cells: []Cell{{Col: 1, Value: text, Style: preambleStyle}}})
	doc.merge(row, 1, 5)
}

func (r *Renderer) dataRow(index, serial int, rec inventory.UnitRecord, label rules.SectionLabel, withBuilding bool) Row {
	row := Row{Index: index}
	col := 1
	add := func(v interface{}) {
		row.Cells = append(row.Cells, Cell{Col: col, Value: v, Style: dataStyle})
		col++
	}

	add(serial)
	if withBuilding {
		add(strings.TrimSpace(rec.Building))
	}
	add(strings.TrimSpace(rec.Flat))
	add(FormatCarpetArea(rec.CarpetArea))
	add(r.StatusText(label))
	add(r.RegistrationDate(label))
	return row
}

// StatusText is the status column value for a section.
func (r *Renderer) StatusText(label rules.SectionLabel) string {
	if r.vocab.Status[label].Upper {
		return strings.ToUpper(string(label))
	}
	// Casers carry state and cannot be shared between goroutines.
	return cases.Title(language.English).String(string(label))
}

// RegistrationDate is the registration date column value for a section.
func (r *Renderer) RegistrationDate(label rules.SectionLabel) string {
	tmpl, ok := r.vocab.Status[label]
	if !ok {
		return "NA"
	}
	return tmpl.RegistrationDate
}

// FormatCarpetArea renders a numeric area with two decimals and returns any
// other text unchanged.
func FormatCarpetArea(raw string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return raw
	}
	return fmt.Sprintf("%.2f", v)
}

// OutputFilename returns "Circular 29 - {name} as on {Month Year}.xlsx".
func OutputFilename(meta inventory.ProjectMetadata) string {
	name := strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(meta.Name), "_", " "))
	if name == "" {
		name = "Project"
	}
	name = strings.Map(func(r rune) rune {
		if r == filepath.Separator || r == '/' {
			return ' '
		}
		return r
	}, name)
	return fmt.Sprintf("Circular 29 - %s as on %s.xlsx", name, MonthYear(meta.AsOnDate))
}
