// Package layout renders collected inventory into the Circular 29 document
// model. It knows nothing about spreadsheet libraries; the workbook package
// turns a Document into a file.
package layout

// Font describes a cell font.
type Font struct {
	Family string  `json:"family"`
	Size   float64 `json:"size"`
	Bold   bool    `json:"bold,omitempty"`
}

// Style is the visual style of a cell.
type Style struct {
	Font       Font   `json:"font"`
	Border     bool   `json:"border,omitempty"` // thin border on all sides
	Horizontal string `json:"horizontal,omitempty"`
	Vertical   string `json:"vertical,omitempty"`
	Wrap       bool   `json:"wrap,omitempty"`
}

// Cell is one written cell. Col is 1-based; Value is a string or an int.
type Cell struct {
	Col   int         `json:"col"`
	Value interface{} `json:"value"`
	Style *Style      `json:"style,omitempty"`
}

// Row is one written row. Index is 1-based. A zero Height keeps the sheet
// default.
type Row struct {
	Index  int     `json:"index"`
	Cells  []Cell  `json:"cells"`
	Height float64 `json:"height,omitempty"`
}

// Span is a horizontal merge on one row, columns inclusive and 1-based.
type Span struct {
	Row     int `json:"row"`
	FromCol int `json:"from_col"`
	ToCol   int `json:"to_col"`
}

// Document is the rendered output sheet.
type Document struct {
	SheetName        string          `json:"sheet_name"`
	Rows             []Row           `json:"rows"`
	Merges           []Span          `json:"merges"`
	ColumnWidths     map[int]float64 `json:"column_widths"`
	DefaultRowHeight float64         `json:"default_row_height"`
	UnitCount        int             `json:"unit_count"`
	BuildingColumn   bool            `json:"building_column"`
}

// Row returns the row with the given 1-based index.
func (d *Document) Row(index int) (Row, bool) {
	for _, r := range d.Rows {
		if r.Index == index {
			return r, true
		}
	}
	return Row{}, false
}

// Cell returns the cell at a 1-based row and column.
func (d *Document) Cell(row, col int) (Cell, bool) {
	r, ok := d.Row(row)
	if !ok {
		return Cell{}, false
	}
	for _, c := range r.Cells {
		if c.Col == col {
			return c, true
		}
	}
	return Cell{}, false
}

// LastRow returns the highest row index written.
func (d *Document) LastRow() int {
	last := 0
	for _, r := range d.Rows {
		if r.Index > last {
			last = r.Index
		}
	}
	return last
}

func (d *Document) addRow(r Row) {
	d.Rows = append(d.Rows, r)
}

func (d *Document) merge(row, from, to int) {
	d.Merges = append(d.Merges, Span{Row: row, FromCol: from, ToCol: to})
}
