// Package report renders completed comparison sessions for download.
package report

import (
	"fmt"
	"strconv"
	"time"

	"tradelens/internal/comparison"
	"tradelens/internal/domain"
)

// Document is the input to every renderer.
type Document struct {
	Session      *domain.ComparisonSession
	Result       *comparison.Result
	Invoice      *domain.ExtractedDocument
	BillOfLading *domain.ExtractedDocument
	GeneratedAt  time.Time
}

// Rendered is a finished report file.
type Rendered struct {
	FileName    string
	ContentType string
	Data        []byte
}

type renderer struct {
	ext         string
	contentType string
	render      func(Document) ([]byte, error)
}

var renderers = map[domain.ExportFormat]renderer{
	domain.ExportFormatCSV:  {ext: "csv", contentType: "text/csv; charset=utf-8", render: renderCSV},
	domain.ExportFormatJSON: {ext: "json", contentType: "application/json", render: renderJSON},
	domain.ExportFormatXLSX: {ext: "xlsx", contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", render: renderXLSX},
	domain.ExportFormatPDF:  {ext: "pdf", contentType: "application/pdf", render: renderPDF},
}

// ParseFormat maps a query value to an ExportFormat.
func ParseFormat(s string) (domain.ExportFormat, error) {
	f := domain.ExportFormat(s)
	if _, ok := renderers[f]; !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedExportFormat, s)
	}
	return f, nil
}

// Render produces the report for doc in the given format.
func Render(format domain.ExportFormat, doc Document) (*Rendered, error) {
	r, ok := renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedExportFormat, format)
	}
	if doc.Session == nil || doc.Result == nil {
		return nil, fmt.Errorf("report: session and result are required")
	}
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now().UTC()
	}
	data, err := r.render(doc)
	if err != nil {
		return nil, fmt.Errorf("rendering %s report: %w", format, err)
	}
	return &Rendered{
		FileName:    BuildFilename(doc.Session, doc.GeneratedAt, r.ext),
		ContentType: r.contentType,
		Data:        data,
	}, nil
}

// BuildFilename returns comparison_{session id}_{YYYY-MM-DD}.{ext}.
func BuildFilename(s *domain.ComparisonSession, at time.Time, ext string) string {
	return fmt.Sprintf("comparison_%s_%s.%s", s.ID, at.Format("2006-01-02"), ext)
}

// ArchiveKey is the object key under which an exported report is kept.
func ArchiveKey(s *domain.ComparisonSession, format domain.ExportFormat) string {
	return fmt.Sprintf("sessions/%s/reports/report.%s", s.ID, format)
}

// ArchiveKeys lists every key ArchiveKey can produce for a session.
func ArchiveKeys(s *domain.ComparisonSession) []string {
	keys := make([]string, 0, len(renderers))
	for _, f := range []domain.ExportFormat{domain.ExportFormatCSV, domain.ExportFormatJSON, domain.ExportFormatXLSX, domain.ExportFormatPDF} {
		keys = append(keys, ArchiveKey(s, f))
	}
	return keys
}

var comparisonColumns = []string{
	"Field",
	"Category",
	"Invoice Value",
	"Bill of Lading Value",
	"Match",
	"Confidence",
	"Notes",
}

func comparisonRow(c comparison.FieldComparison) []string {
	return []string{
		c.Field,
		string(c.Category),
		deref(c.InvoiceValue),
		deref(c.BLValue),
		string(c.Match),
		formatConfidence(c.Confidence),
		c.Notes,
	}
}

func summaryRows(doc Document) [][]string {
	s := doc.Result.Summary
	rows := [][]string{
		{"Session ID", doc.Session.ID.String()},
		{"Generated At", doc.GeneratedAt.Format(time.RFC3339)},
		{"Total Fields", strconv.Itoa(s.TotalFields)},
		{"Matching Fields", strconv.Itoa(s.MatchingFields)},
		{"Discrepant Fields", strconv.Itoa(s.DiscrepantFields)},
		{"Missing Fields", strconv.Itoa(s.MissingFields)},
		{"Overall Match", string(s.OverallMatch)},
		{"Overall Risk", string(s.OverallRisk)},
		{"Confidence Score", formatConfidence(s.ConfidenceScore)},
	}
	for _, c := range comparison.Categories {
		if level, ok := s.RiskByCategory[c]; ok {
			rows = append(rows, []string{"Risk: " + string(c), string(level)})
		}
	}
	if doc.Session.ResultHash != "" {
		rows = append(rows, []string{"Result Hash", doc.Session.ResultHash})
	}
	return rows
}

func formatConfidence(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
