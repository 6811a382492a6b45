package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth   = 190.0
	swatchWidth = 4.0
	minColWidth = 14.0
	cellPadding = 4.0
)

// PDFExporter renders a dataset as an A4 transcript: heading, table with
// color swatches, summary block and a page counter footer.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render returns the PDF bytes of data.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.AddPage()

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 9, tr(data.Title), "", 1, "L", false, 0, "")
	}
	if data.Subtitle != "" {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 6, tr(data.Subtitle), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	withSwatch := len(data.RowColors) > 0
	widths := columnWidths(pdf, data, withSwatch)

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	if withSwatch {
		pdf.CellFormat(swatchWidth, 8, "", "1", 0, "", true, 0, "")
	}
	for i, header := range data.Headers {
		pdf.CellFormat(widths[i], 8, tr(header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for r, row := range data.Rows {
		if withSwatch {
			red, green, blue, ok := data.rowColor(r)
			if ok {
				pdf.SetFillColor(red, green, blue)
			}
			pdf.CellFormat(swatchWidth, 7, "", "1", 0, "", ok, 0, "")
		}
		for i, value := range data.record(row) {
			align := "L"
			if data.numeric(data.Headers[i]) {
				align = "R"
			}
			pdf.CellFormat(widths[i], 7, tr(value), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(data.Summary) > 0 {
		pdf.Ln(5)
		for _, line := range data.Summary {
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(45, 7, tr(line.Label), "", 0, "", false, 0, "")
			pdf.SetFont("Arial", "", 10)
			pdf.CellFormat(0, 7, tr(line.Value), "", 1, "", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths sizes each column to its widest text, then scales the set to fill the page.
func columnWidths(pdf *gofpdf.Fpdf, data Dataset, withSwatch bool) []float64 {
	available := pageWidth
	if withSwatch {
		available -= swatchWidth
	}

	widths := make([]float64, len(data.Headers))
	total := 0.0
	for i, header := range data.Headers {
		pdf.SetFont("Arial", "B", 9)
		w := pdf.GetStringWidth(header)
		pdf.SetFont("Arial", "", 9)
		for _, row := range data.Rows {
			if cw := pdf.GetStringWidth(row[header]); cw > w {
				w = cw
			}
		}
		w += cellPadding
		if w < minColWidth {
			w = minColWidth
		}
		widths[i] = w
		total += w
	}

	scale := available / total
	for i := range widths {
		widths[i] *= scale
	}
	return widths
}
