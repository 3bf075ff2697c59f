// Package workbook reads Form 3 spreadsheets into grids and writes rendered
// documents out as .xlsx files.
package workbook

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	cerrors "github.com/a3tai/circular29/internal/errors"
	"github.com/a3tai/circular29/internal/grid"
)

// Format is a supported spreadsheet format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// DetectFormat returns the format implied by a file extension.
func DetectFormat(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, true
	case ".xls":
		return FormatXLS, true
	default:
		return "", false
	}
}

// Book is a workbook opened from disk. Sheets are loaded on first use and
// cached. Book implements grid.Workbook and is safe for concurrent use.
type Book struct {
	Path   string
	Format Format

	names []string
	load  func(name string) ([][]string, error)
	close func() error

	mu    sync.Mutex
	cache map[string]*grid.Grid
}

// Open opens an .xlsx, .xlsm or .xls workbook.
func Open(path string) (*Book, error) {
	format, ok := DetectFormat(path)
	if !ok {
		return nil, cerrors.New(cerrors.ErrorTypeInvalidInput, "unsupported file type").
			WithContext(filepath.Ext(path)).WithFile(path)
	}

	switch format {
	case FormatXLS:
		return OpenXLS(path)
	default:
		return OpenXLSX(path)
	}
}

// OpenXLSX opens an Office Open XML workbook with excelize.
func OpenXLSX(path string) (*Book, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, cerrors.WrapError(cerrors.ErrorTypeSourceFailure, err).
			WithContext("open workbook").WithFile(path)
	}

	return &Book{
		Path:   path,
		Format: FormatXLSX,
		names:  f.GetSheetList(),
		load: func(name string) ([][]string, error) {
			return f.GetRows(name, excelize.Options{RawCellValue: true})
		},
		close: f.Close,
		cache: make(map[string]*grid.Grid),
	}, nil
}

// OpenXLS opens a legacy BIFF workbook with extrame/xls.
func OpenXLS(path string) (*Book, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, cerrors.WrapError(cerrors.ErrorTypeSourceFailure, err).
			WithContext("open workbook").WithFile(path)
	}

	sheets := make(map[string]int, wb.NumSheets())
	names := make([]string, 0, wb.NumSheets())
	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}
		names = append(names, ws.Name)
		sheets[ws.Name] = i
	}

	return &Book{
		Path:   path,
		Format: FormatXLS,
		names:  names,
		load: func(name string) ([][]string, error) {
			idx, ok := sheets[name]
			if !ok {
				return nil, &grid.SheetNotFoundError{Name: name}
			}
			return readXLSSheet(wb.GetSheet(idx)), nil
		},
		close: func() error { return nil },
		cache: make(map[string]*grid.Grid),
	}, nil
}

// readXLSSheet keeps row positions intact; missing rows become empty rows.
func readXLSSheet(ws *xls.WorkSheet) [][]string {
	if ws == nil {
		return nil
	}
	rows := make([][]string, 0, int(ws.MaxRow)+1)
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cols := make([]string, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cols[j] = row.Col(j)
		}
		rows = append(rows, cols)
	}
	return rows
}

// SheetNames returns sheet names in workbook order.
func (b *Book) SheetNames() []string {
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

// Sheet loads the named sheet as a grid.
func (b *Book) Sheet(name string) (*grid.Grid, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if g, ok := b.cache[name]; ok {
		return g, nil
	}

	found := false
	for _, n := range b.names {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		return nil, &grid.SheetNotFoundError{Name: name}
	}

	rows, err := b.load(name)
	if err != nil {
		return nil, cerrors.WrapError(cerrors.ErrorTypeSourceFailure, fmt.Errorf("read sheet %q: %w", name, err)).
			WithSheet(name).WithFile(b.Path)
	}

	g := grid.FromStrings(name, rows)
	b.cache[name] = g
	return g, nil
}

// Close releases the underlying file.
func (b *Book) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}
