package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RawValue is one extracted field as the extractor saw it.
type RawValue struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// ExtractedDocument is the output of document extraction. Fields are keyed by
// source field name (e.g. "freight_total" on a bill of lading).
type ExtractedDocument struct {
	DocumentType         DocumentType        `json:"document_type"`
	Fields               map[string]RawValue `json:"fields"`
	ExtractionConfidence float64             `json:"extraction_confidence"`
}

// Value returns the raw value stored under key, or nil when the field was not extracted.
func (d ExtractedDocument) Value(key string) *string {
	rv, ok := d.Fields[key]
	if !ok {
		return nil
	}
	v := rv.Value
	return &v
}

// Validate checks the document type and confidence ranges.
func (d ExtractedDocument) Validate() error {
	if !d.DocumentType.Valid() {
		return fmt.Errorf("%w: unknown document type %q", ErrInvalidDocument, d.DocumentType)
	}
	if d.ExtractionConfidence < 0 || d.ExtractionConfidence > 1 {
		return fmt.Errorf("%w: extraction confidence %v outside [0,1]", ErrInvalidDocument, d.ExtractionConfidence)
	}
	for k, v := range d.Fields {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("%w: empty field name", ErrInvalidDocument)
		}
		if v.Confidence < 0 || v.Confidence > 1 {
			return fmt.Errorf("%w: field %q confidence %v outside [0,1]", ErrInvalidDocument, k, v.Confidence)
		}
	}
	return nil
}

// ComparisonSession records one reconciliation run and its outcome.
type ComparisonSession struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	Status         SessionStatus   `db:"status" json:"status"`
	InvoiceFileKey string          `db:"invoice_file_key" json:"invoice_file_key,omitempty"`
	BOLFileKey     string          `db:"bol_file_key" json:"bol_file_key,omitempty"`
	InvoiceData    json.RawMessage `db:"invoice_data" json:"invoice_data,omitempty"`
	BOLData        json.RawMessage `db:"bol_data" json:"bol_data,omitempty"`
	Comparisons    json.RawMessage `db:"comparisons" json:"comparisons,omitempty"`
	Summary        json.RawMessage `db:"summary" json:"summary,omitempty"`
	OverallRisk    string          `db:"overall_risk" json:"overall_risk,omitempty"`
	ErrorMessage   string          `db:"error_message" json:"error_message,omitempty"`
	ProcessingMS   int64           `db:"processing_ms" json:"processing_ms"`
	ResultHash     string          `db:"result_hash" json:"result_hash,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// FileKeys returns the stored object keys, skipping unset ones.
func (s *ComparisonSession) FileKeys() []string {
	var keys []string
	for _, k := range []string{s.InvoiceFileKey, s.BOLFileKey} {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
