package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter writes the table followed by a blank line and the summary pairs.
// Title, subtitle and colors have no CSV representation and are dropped.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render returns the CSV bytes of data.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}

	records := make([][]string, 0, len(data.Rows)+len(data.Summary)+2)
	records = append(records, data.Headers)
	for _, row := range data.Rows {
		records = append(records, data.record(row))
	}
	if len(data.Summary) > 0 {
		records = append(records, []string{})
		for _, line := range data.Summary {
			records = append(records, []string{line.Label, line.Value})
		}
	}

	var buf bytes.Buffer
	if err := csv.NewWriter(&buf).WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}
