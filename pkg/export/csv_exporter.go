package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Sheet is a renderer-agnostic timetable table. Rows are slots, columns
// are days, and Cells is indexed as Cells[day][slot].
type Sheet struct {
	Title string
	Days  []string
	Slots []string
	Cells map[string]map[string]string
}

// CellAt returns the rendered text for a cell, or empty string.
func (s *Sheet) CellAt(day, slot string) string {
	if s.Cells == nil {
		return ""
	}
	return s.Cells[day][slot]
}

// CSVExporter renders a timetable sheet as CSV with a slot column
// followed by one column per day.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Export(sheet *Sheet) ([]byte, error) {
	if sheet == nil {
		return nil, fmt.Errorf("export: nil sheet")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{"Time"}, sheet.Days...)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for _, slot := range sheet.Slots {
		row := make([]string, 0, len(sheet.Days)+1)
		row = append(row, slot)
		for _, day := range sheet.Days {
			row = append(row, sheet.CellAt(day, slot))
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *CSVExporter) ContentType() string {
	return "text/csv"
}

func (e *CSVExporter) FileExtension() string {
	return "csv"
}
