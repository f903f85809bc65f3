package report

import (
	"bytes"

	"github.com/jung-kurt/gofpdf"

	"tradelens/internal/comparison"
)

// Landscape A4 leaves 267mm between the 15mm margins.
var pdfColumnWidths = []float64{38, 26, 50, 50, 22, 22, 59}

var pdfMatchFill = map[comparison.MatchStatus][3]int{
	comparison.MatchExact:    {198, 239, 206},
	comparison.MatchPartial:  {255, 235, 156},
	comparison.MatchMismatch: {255, 199, 206},
	comparison.MatchMissing:  {217, 217, 217},
}

// renderPDF lays out the summary followed by the per-field comparison table.
func renderPDF(doc Document) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.SetTitle("Document comparison "+doc.Session.ID.String(), true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Invoice / Bill of Lading Comparison")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	for _, r := range summaryRows(doc) {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 6, tr(r[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(r[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(255, 200, 100)
		for i, col := range comparisonColumns {
			pdf.CellFormat(pdfColumnWidths[i], 8, col, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	header()

	matchCol := len(comparisonColumns) - 3 // "Match"
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for i, c := range doc.Result.Comparisons {
		if pdf.GetY()+7 > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		for col, value := range comparisonRow(c) {
			switch {
			case col == matchCol:
				rgb, ok := pdfMatchFill[c.Match]
				if !ok {
					rgb = [3]int{255, 255, 255}
				}
				pdf.SetFillColor(rgb[0], rgb[1], rgb[2])
			case i%2 == 1:
				pdf.SetFillColor(245, 245, 245)
			default:
				pdf.SetFillColor(255, 255, 255)
			}
			w := pdfColumnWidths[col]
			pdf.CellFormat(w, 7, fitText(pdf, tr(value), w-2), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fitText shortens s with a trailing "..." until it fits within width mm.
// s is already cp1252, one byte per glyph.
func fitText(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
