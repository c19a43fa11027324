// Package xlsxexport renders submissions as an Excel workbook with one sheet
// per form type.
package xlsxexport

import (
	"fmt"
	"io"
	"regexp"

	"github.com/xuri/excelize/v2"

	"formdesk/internal/csvexport"
	"formdesk/internal/domain"
	"formdesk/internal/form"
)

const defaultSheet = "Sheet1"

// maxSheetName is the Excel limit on sheet name length.
const maxSheetName = 31

var invalidSheetChars = regexp.MustCompile(`[\[\]:*?/\\]`)

// Workbook accumulates sheets before being written out.
type Workbook struct {
	f           *excelize.File
	headerStyle int
	sheets      int
}

// New creates an empty workbook.
func New() (*Workbook, error) {
	f := excelize.NewFile()
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1F4E78"}},
		Alignment: &excelize.Alignment{
			Vertical: "center",
			WrapText: true,
		},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsxexport.New: header style: %w", err)
	}
	return &Workbook{f: f, headerStyle: style}, nil
}

// AddSheet writes one sheet for def holding subs.
func (w *Workbook) AddSheet(def *form.Definition, subs []domain.Submission) error {
	name := SheetName(def.Type)
	if w.sheets == 0 {
		if err := w.f.SetSheetName(defaultSheet, name); err != nil {
			return fmt.Errorf("xlsxexport.AddSheet: rename: %w", err)
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		return fmt.Errorf("xlsxexport.AddSheet: %w", err)
	}
	w.sheets++

	header := csvexport.Columns(def)
	if err := w.f.SetSheetRow(name, "A1", toRow(header)); err != nil {
		return fmt.Errorf("xlsxexport.AddSheet: header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("xlsxexport.AddSheet: %w", err)
	}
	if err := w.f.SetCellStyle(name, "A1", last, w.headerStyle); err != nil {
		return fmt.Errorf("xlsxexport.AddSheet: style: %w", err)
	}
	if err := w.f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("xlsxexport.AddSheet: panes: %w", err)
	}

	for i := range subs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsxexport.AddSheet: %w", err)
		}
		if err := w.f.SetSheetRow(name, cell, toRow(csvexport.Row(def, &subs[i]))); err != nil {
			return fmt.Errorf("xlsxexport.AddSheet: row %d: %w", i+2, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := w.f.SetColWidth(name, "A", lastCol, 22); err != nil {
		return fmt.Errorf("xlsxexport.AddSheet: widths: %w", err)
	}
	return nil
}

// WriteTo writes the workbook to out. A workbook with no sheets still
// contains an empty default sheet.
func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	return w.f.WriteTo(out)
}

// Close releases the workbook's resources.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// SheetName converts a form type into a valid, unique-enough Excel sheet name.
func SheetName(formType string) string {
	s := invalidSheetChars.ReplaceAllString(formType, "_")
	if s == "" {
		s = "submissions"
	}
	if len(s) > maxSheetName {
		s = s[:maxSheetName]
	}
	return s
}

func toRow(cells []string) *[]any {
	row := make([]any, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return &row
}
