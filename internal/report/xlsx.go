package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"tradelens/internal/comparison"
)

const (
	comparisonSheet = "Comparison"
	summarySheet    = "Summary"
)

var matchFill = map[comparison.MatchStatus]string{
	comparison.MatchExact:    "C6EFCE",
	comparison.MatchPartial:  "FFEB9C",
	comparison.MatchMismatch: "FFC7CE",
	comparison.MatchMissing:  "D9D9D9",
}

// renderXLSX builds a two-sheet workbook: per-field comparisons, then the summary.
func renderXLSX(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), comparisonSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := writeRow(f, comparisonSheet, 1, comparisonColumns); err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(comparisonSheet, 1, 1, header); err != nil {
		return nil, err
	}

	fills := make(map[comparison.MatchStatus]int, len(matchFill))
	for status, color := range matchFill {
		id, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}})
		if err != nil {
			return nil, err
		}
		fills[status] = id
	}

	matchCol := len(comparisonColumns) - 2 // "Match"
	for i, c := range doc.Result.Comparisons {
		row := i + 2
		if err := writeRow(f, comparisonSheet, row, comparisonRow(c)); err != nil {
			return nil, err
		}
		if style, ok := fills[c.Match]; ok {
			cell, err := excelize.CoordinatesToCellName(matchCol, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellStyle(comparisonSheet, cell, cell, style); err != nil {
				return nil, err
			}
		}
	}
	if err := f.SetColWidth(comparisonSheet, "A", "D", 28); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(comparisonSheet, "G", "G", 60); err != nil {
		return nil, err
	}

	for i, r := range summaryRows(doc) {
		if err := writeRow(f, summarySheet, i+1, r); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "B", 30); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}
