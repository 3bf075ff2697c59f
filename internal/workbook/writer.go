package workbook

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	cerrors "github.com/a3tai/circular29/internal/errors"
	"github.com/a3tai/circular29/internal/layout"
)

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// Build renders doc into a new excelize file. The caller owns the file and
// must close it.
func Build(doc *layout.Document) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := doc.SheetName
	if sheet == "" {
		sheet = layout.SheetName
	}
	if def := f.GetSheetName(0); def != sheet {
		if err := f.SetSheetName(def, sheet); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := fill(f, sheet, doc); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func fill(f *excelize.File, sheet string, doc *layout.Document) error {
	if doc.DefaultRowHeight > 0 {
		h := doc.DefaultRowHeight
		if err := f.SetSheetProps(sheet, &excelize.SheetPropsOptions{DefaultRowHeight: &h}); err != nil {
			return fmt.Errorf("set default row height: %w", err)
		}
	}

	for col, width := range doc.ColumnWidths {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return fmt.Errorf("set width of column %s: %w", name, err)
		}
	}

	styles := make(map[*layout.Style]int)
	styleID := func(s *layout.Style) (int, error) {
		if id, ok := styles[s]; ok {
			return id, nil
		}
		id, err := f.NewStyle(toExcelStyle(s))
		if err != nil {
			return 0, err
		}
		styles[s] = id
		return id, nil
	}

	for _, row := range doc.Rows {
		for _, c := range row.Cells {
			cell, err := excelize.CoordinatesToCellName(c.Col, row.Index)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, c.Value); err != nil {
				return fmt.Errorf("set %s: %w", cell, err)
			}
			if c.Style == nil {
				continue
			}
			id, err := styleID(c.Style)
			if err != nil {
				return fmt.Errorf("create style: %w", err)
			}
			if err := f.SetCellStyle(sheet, cell, cell, id); err != nil {
				return fmt.Errorf("style %s: %w", cell, err)
			}
		}
		if row.Height > 0 {
			if err := f.SetRowHeight(sheet, row.Index, row.Height); err != nil {
				return fmt.Errorf("set height of row %d: %w", row.Index, err)
			}
		}
	}

	for _, span := range doc.Merges {
		if span.FromCol == span.ToCol {
			continue
		}
		from, err := excelize.CoordinatesToCellName(span.FromCol, span.Row)
		if err != nil {
			return err
		}
		to, err := excelize.CoordinatesToCellName(span.ToCol, span.Row)
		if err != nil {
			return err
		}
		if err := f.MergeCell(sheet, from, to); err != nil {
			return fmt.Errorf("merge %s:%s: %w", from, to, err)
		}
	}
	return nil
}

func toExcelStyle(s *layout.Style) *excelize.Style {
	style := &excelize.Style{
		Font: &excelize.Font{
			Family: s.Font.Family,
			Size:   s.Font.Size,
			Bold:   s.Font.Bold,
		},
	}
	if s.Border {
		style.Border = thinBorder
	}
	if s.Horizontal != "" || s.Vertical != "" || s.Wrap {
		style.Alignment = &excelize.Alignment{
			Horizontal: s.Horizontal,
			Vertical:   s.Vertical,
			WrapText:   s.Wrap,
		}
	}
	return style
}

// WriteTo renders doc and writes the .xlsx bytes to w.
func WriteTo(doc *layout.Document, w io.Writer) error {
	f, err := Build(doc)
	if err != nil {
		return cerrors.WrapError(cerrors.ErrorTypeSourceFailure, err).WithContext("render workbook")
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return cerrors.WrapError(cerrors.ErrorTypeSourceFailure, err).WithContext("write workbook")
	}
	return nil
}

// Write renders doc to path, creating the parent directory when needed.
func Write(doc *layout.Document, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cerrors.WrapError(cerrors.ErrorTypeSourceFailure, err).WithContext("create output directory").WithFile(path)
	}

	f, err := Build(doc)
	if err != nil {
		return cerrors.WrapError(cerrors.ErrorTypeSourceFailure, err).WithContext("render workbook").WithFile(path)
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return cerrors.WrapError(cerrors.ErrorTypeSourceFailure, err).WithContext("save workbook").WithFile(path)
	}
	return nil
}
