package report

import (
	"bytes"
	"encoding/csv"
)

// BOM is the UTF-8 byte order mark, for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// renderCSV writes the field comparisons, a blank separator row, then the
// summary as key/value rows.
func renderCSV(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(BOM)
	w := csv.NewWriter(&buf)

	if err := w.Write(comparisonColumns); err != nil {
		return nil, err
	}
	for _, c := range doc.Result.Comparisons {
		if err := w.Write(comparisonRow(c)); err != nil {
			return nil, err
		}
	}
	if err := w.Write([]string{}); err != nil {
		return nil, err
	}
	for _, row := range summaryRows(doc) {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
