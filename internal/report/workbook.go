// Package report writes reconciliation and bank classification results to Excel workbooks.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Workbook is an Excel workbook being assembled sheet by sheet.
type Workbook struct {
	file   *excelize.File
	styles styles
	sheets int
}

type styles struct {
	title   int
	header  int
	flagged int
	review  int
}

// NewWorkbook creates an empty workbook.
func NewWorkbook() (*Workbook, error) {
	f := excelize.NewFile()

	var s styles
	var err error
	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return nil, fmt.Errorf("failed to create title style: %w", err)
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
	}); err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if s.flagged, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "9C0006"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
	}); err != nil {
		return nil, fmt.Errorf("failed to create flagged style: %w", err)
	}
	if s.review, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFEB9C"}, Pattern: 1},
	}); err != nil {
		return nil, fmt.Errorf("failed to create review style: %w", err)
	}

	return &Workbook{file: f, styles: s}, nil
}

// Sheets returns the names of the sheets written so far.
func (w *Workbook) Sheets() []string {
	if w.sheets == 0 {
		return nil
	}
	return w.file.GetSheetList()
}

// newSheet creates a sheet, reusing the default sheet for the first one.
func (w *Workbook) newSheet(name string) error {
	if idx, _ := w.file.GetSheetIndex(name); idx >= 0 {
		return fmt.Errorf("sheet %q already exists", name)
	}

	if w.sheets == 0 {
		if err := w.file.SetSheetName(defaultSheet, name); err != nil {
			return fmt.Errorf("failed to name sheet %q: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", name, err)
	}

	w.sheets++
	return nil
}

// writeRows writes values starting at A1, one slice per row.
func (w *Workbook) writeRows(sheet string, values [][]any) error {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := w.file.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	return nil
}

// styleRow applies style to columns 1..cols of a 1-based row.
func (w *Workbook) styleRow(sheet string, row, cols, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return w.file.SetCellStyle(sheet, first, last, style)
}

func (w *Workbook) setWidths(sheet string, widths []float64) error {
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := w.file.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

// SaveAs writes the workbook to path, creating its directory.
func (w *Workbook) SaveAs(path string) error {
	if w.sheets == 0 {
		return fmt.Errorf("workbook has no sheets")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.Info("Saved report", "path", path, "sheets", w.sheets)
	return nil
}

// Close releases the workbook's resources.
func (w *Workbook) Close() error {
	return w.file.Close()
}
