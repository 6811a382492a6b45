package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	recordsSheet = "Subjects"
	summarySheet = "Summary"
)

// XLSXExporter renders datasets into a workbook with a records sheet and a summary sheet.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render builds the workbook in memory.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for col, header := range data.Headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellStr(recordsSheet, cell, header); err != nil {
			return nil, fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	for r, row := range data.Rows {
		for c, value := range data.record(row) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := setCell(f, cell, value, data.numeric(data.Headers[c])); err != nil {
				return nil, err
			}
		}
		if err := fillRowColor(f, data, r); err != nil {
			return nil, err
		}
	}
	styleHeader(f, recordsSheet, len(data.Headers))
	fitColumns(f, recordsSheet, data)

	if len(data.Summary) > 0 || data.Title != "" {
		if _, err := f.NewSheet(summarySheet); err != nil {
			return nil, fmt.Errorf("new sheet: %w", err)
		}
		for i, line := range summaryRows(data) {
			if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &[]string{line.Label, line.Value}); err != nil {
				return nil, fmt.Errorf("write summary row: %w", err)
			}
		}
		_ = f.SetColWidth(summarySheet, "A", "A", 22)
		_ = f.SetColWidth(summarySheet, "B", "B", 14)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

// setCell stores numeric columns as numbers so spreadsheet formulas work on them.
func setCell(f *excelize.File, cell, value string, numeric bool) error {
	var err error
	if n, parseErr := strconv.ParseFloat(value, 64); numeric && parseErr == nil {
		err = f.SetCellFloat(recordsSheet, cell, n, -1, 64)
	} else {
		err = f.SetCellStr(recordsSheet, cell, value)
	}
	if err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	return nil
}

// fillRowColor paints the first cell of row r with the subject color.
func fillRowColor(f *excelize.File, data Dataset, r int) error {
	if _, _, _, ok := data.rowColor(r); !ok {
		return nil
	}
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{strings.TrimPrefix(data.RowColors[r], "#")}},
	})
	if err != nil {
		return fmt.Errorf("row color style: %w", err)
	}
	cell, _ := excelize.CoordinatesToCellName(1, r+2)
	return f.SetCellStyle(recordsSheet, cell, cell, style)
}

func styleHeader(f *excelize.File, sheet string, cols int) {
	end, _ := excelize.CoordinatesToCellName(cols, 1)
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(sheet, "A1", end, style)
	}
	_ = f.AutoFilter(sheet, "A1:"+end, nil)
}

// fitColumns approximates column widths from the header and cell lengths.
func fitColumns(f *excelize.File, sheet string, data Dataset) {
	for c, header := range data.Headers {
		width := len([]rune(header))
		for _, row := range data.Rows {
			if l := len([]rune(row[header])); l > width {
				width = l
			}
		}
		w := float64(width) * 1.1
		if w < 10 {
			w = 10
		}
		if w > 40 {
			w = 40
		}
		col, _ := excelize.ColumnNumberToName(c + 1)
		_ = f.SetColWidth(sheet, col, col, w)
	}
}

// summaryRows puts the title and subtitle ahead of the summary lines.
func summaryRows(data Dataset) []SummaryLine {
	lines := make([]SummaryLine, 0, len(data.Summary)+2)
	if data.Title != "" {
		lines = append(lines, SummaryLine{Label: "Title", Value: data.Title})
	}
	if data.Subtitle != "" {
		lines = append(lines, SummaryLine{Label: "Note", Value: data.Subtitle})
	}
	return append(lines, data.Summary...)
}
