package report

import (
	"fmt"
	"io"

	"github.com/dgallion1/pchreport/internal/table"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetAligned = "Aligned"
	SheetRSS     = "RSS"
	SheetRMS     = "BandedRMS"
)

// WriteWorkbook exports the three engine tables as sheets of one .xlsx file.
// Missing values are left as empty cells.
func WriteWorkbook(w io.Writer, aligned *table.Aligned, rss *table.RSS, rms *table.BandedRMS) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetAligned); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetRSS, SheetRMS} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	// Aligned: Frequency + one column per (node, axis).
	header := []any{table.FrequencyColumn}
	for _, c := range aligned.Columns() {
		header = append(header, c.Key.Name())
	}
	rows := make([][]any, aligned.Len())
	for r := range rows {
		row := []any{cellValue(aligned.Frequency[r])}
		for _, c := range aligned.Columns() {
			row = append(row, cellValue(c.Values[r]))
		}
		rows[r] = row
	}
	if err := writeSheet(f, SheetAligned, header, rows); err != nil {
		return err
	}

	// RSS: Frequency + RSS_{id}.
	header = []any{table.FrequencyColumn}
	for _, c := range rss.Columns {
		header = append(header, c.Key.Label())
	}
	rows = make([][]any, len(rss.Frequency))
	for r := range rows {
		row := []any{cellValue(rss.Frequency[r])}
		for _, c := range rss.Columns {
			row = append(row, cellValue(c.Values[r]))
		}
		rows[r] = row
	}
	if err := writeSheet(f, SheetRSS, header, rows); err != nil {
		return err
	}

	// BandedRMS: band label + one column per node.
	header = []any{"Band"}
	for _, n := range rms.Nodes {
		header = append(header, string(n))
	}
	rows = make([][]any, len(rms.Bands))
	for i, b := range rms.Bands {
		row := []any{b.Name()}
		for _, v := range rms.Values[i] {
			row = append(row, cellValue(v))
		}
		rows[i] = row
	}
	if err := writeSheet(f, SheetRMS, header, rows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i, err)
		}
	}
	return nil
}

func cellValue(v float64) any {
	if table.Missing(v) {
		return nil
	}
	return v
}
