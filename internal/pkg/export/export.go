// Package export renders tabular reports as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Table is one worksheet: a bold header row followed by data rows.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]any
	// Footer is written after a blank line, e.g. column totals.
	Footer []any
}

// WriteXLSX writes the tables as sheets of a single workbook to w.
func WriteXLSX(w io.Writer, tables ...Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("export: no tables to write")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("export: create header style: %w", err)
	}

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.Sheet); err != nil {
				return fmt.Errorf("export: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.Sheet); err != nil {
			return fmt.Errorf("export: add sheet %q: %w", t.Sheet, err)
		}
		if err := writeTable(f, t, headerStyle); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, t Table, headerStyle int) error {
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Sheet, "A1", &header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	if len(t.Header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.Header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(t.Sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("export: style header: %w", err)
		}
		lastCol, _, _ := excelize.SplitCellName(last)
		if err := f.SetColWidth(t.Sheet, "A", lastCol, 16); err != nil {
			return fmt.Errorf("export: set column width: %w", err)
		}
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(t.Sheet, cell, &row); err != nil {
			return fmt.Errorf("export: write row %d: %w", i+1, err)
		}
	}

	if len(t.Footer) > 0 {
		cell, err := excelize.CoordinatesToCellName(1, len(t.Rows)+3)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(t.Sheet, cell, &t.Footer); err != nil {
			return fmt.Errorf("export: write footer: %w", err)
		}
	}
	return nil
}
