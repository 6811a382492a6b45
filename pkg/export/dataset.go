package export

import (
	"fmt"
	"strconv"
	"strings"
)

// Format identifies a rendered file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a requested format. An empty string selects CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported format %q", raw)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// SummaryLine is a label/value pair printed after the table body.
type SummaryLine struct {
	Label string
	Value string
}

// Dataset is the content of one transcript file.
type Dataset struct {
	Title    string
	Subtitle string
	Headers  []string
	Rows     []map[string]string
	Summary  []SummaryLine
	// Numeric lists headers whose cells are numbers: right aligned in PDF, typed in XLSX.
	Numeric []string
	// RowColors holds one #RRGGBB per row, drawn as a swatch next to the row.
	RowColors []string
}

func (d Dataset) validate() error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("dataset requires at least one header")
	}
	if len(d.RowColors) > 0 && len(d.RowColors) != len(d.Rows) {
		return fmt.Errorf("dataset has %d row colors for %d rows", len(d.RowColors), len(d.Rows))
	}
	return nil
}

func (d Dataset) record(row map[string]string) []string {
	out := make([]string, len(d.Headers))
	for i, header := range d.Headers {
		out[i] = row[header]
	}
	return out
}

func (d Dataset) numeric(header string) bool {
	for _, h := range d.Numeric {
		if h == header {
			return true
		}
	}
	return false
}

// rowColor returns the RGB swatch of row i; ok is false when the row has none.
func (d Dataset) rowColor(i int) (r, g, b int, ok bool) {
	if i >= len(d.RowColors) {
		return 0, 0, 0, false
	}
	return parseHex(d.RowColors[i])
}

func parseHex(hex string) (r, g, b int, ok bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), true
}
