package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders a timetable sheet as a landscape A4 table.
type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

func (e *PDFExporter) Export(sheet *Sheet) ([]byte, error) {
	if sheet == nil {
		return nil, fmt.Errorf("export: nil sheet")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, sheet.Title, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pageW, _ := pdf.GetPageSize()
	usable := pageW - 20
	slotW := 34.0
	dayW := slotW
	if len(sheet.Days) > 0 {
		dayW = (usable - slotW) / float64(len(sheet.Days))
	}

	// Header row.
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(slotW, 8, "Time", "1", 0, "C", true, 0, "")
	for _, day := range sheet.Days {
		pdf.CellFormat(dayW, 8, day, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, slot := range sheet.Slots {
		pdf.CellFormat(slotW, 10, slot, "1", 0, "C", false, 0, "")
		for _, day := range sheet.Days {
			pdf.CellFormat(dayW, 10, sheet.CellAt(day, slot), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) ContentType() string {
	return "application/pdf"
}

func (e *PDFExporter) FileExtension() string {
	return "pdf"
}
