package comparison

import (
	"context"
	"fmt"

	"tradelens/internal/domain"
)

// Engine compares an invoice against a bill of lading field by field.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	fields     FieldTable
	aggregator *Aggregator
}

type engineOptions struct {
	bands      RiskBands
	thresholds map[string]float64
}

// Option configures NewEngine.
type Option func(*engineOptions)

// WithRiskBands replaces the default category risk cut-offs.
func WithRiskBands(b RiskBands) Option {
	return func(o *engineOptions) { o.bands = b }
}

// WithThresholds overrides PARTIAL thresholds per canonical field name.
func WithThresholds(overrides map[string]float64) Option {
	return func(o *engineOptions) {
		if o.thresholds == nil {
			o.thresholds = make(map[string]float64, len(overrides))
		}
		for k, v := range overrides {
			o.thresholds[k] = v
		}
	}
}

// NewEngine validates table and returns an engine bound to it. Unset weights
// become 1. Any structural problem is reported as ErrInvalidFieldTable; a
// threshold override for a field not in the table also matches ErrUnknownField.
func NewEngine(table FieldTable, opts ...Option) (*Engine, error) {
	o := engineOptions{bands: DefaultRiskBands()}
	for _, opt := range opts {
		opt(&o)
	}

	if len(table) == 0 {
		return nil, fmt.Errorf("%w: no fields", ErrInvalidFieldTable)
	}
	fields := table.clone()
	for i := range fields {
		if fields[i].Weight == 0 {
			fields[i].Weight = 1
		}
	}
	if len(o.thresholds) > 0 {
		var err error
		if fields, err = fields.WithThresholds(o.thresholds); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFieldTable, err)
		}
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	if err := o.bands.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		fields:     fields,
		aggregator: NewAggregator(fields, o.bands),
	}, nil
}

// Fields returns a copy of the engine's field table.
func (e *Engine) Fields() FieldTable {
	return e.fields.clone()
}

// Compare reconciles the two documents, given in either order. Exactly one must
// be an invoice and the other a bill of lading.
func (e *Engine) Compare(ctx context.Context, a, b domain.ExtractedDocument) (*Result, error) {
	invoice, bol, err := orderDocuments(a, b)
	if err != nil {
		return nil, err
	}
	hooks := HooksFromContext(ctx)

	comparisons := make([]FieldComparison, 0, len(e.fields))
	for _, spec := range e.fields {
		fc := MatchField(spec, invoice.Value(spec.InvoiceField), bol.Value(spec.BLField))
		hooks.field(fc)
		comparisons = append(comparisons, fc)
	}

	summary := e.aggregator.Aggregate(comparisons)
	hooks.logf("comparison: %d fields, %d matching, %d discrepant, overall risk %s",
		summary.TotalFields, summary.MatchingFields, summary.DiscrepantFields, summary.OverallRisk)

	return &Result{Comparisons: comparisons, Summary: summary}, nil
}

// Match compares one named field in isolation.
func (e *Engine) Match(field string, invoiceRaw, blRaw *string) (FieldComparison, error) {
	spec, ok := e.fields.Lookup(field)
	if !ok {
		return FieldComparison{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return MatchField(spec, invoiceRaw, blRaw), nil
}

// Aggregate summarizes comparisons with the engine's table and risk bands.
func (e *Engine) Aggregate(comparisons []FieldComparison) Summary {
	return e.aggregator.Aggregate(comparisons)
}

func orderDocuments(a, b domain.ExtractedDocument) (invoice, bol domain.ExtractedDocument, err error) {
	switch {
	case a.DocumentType == domain.DocumentTypeInvoice && b.DocumentType == domain.DocumentTypeBillOfLading:
		return a, b, nil
	case a.DocumentType == domain.DocumentTypeBillOfLading && b.DocumentType == domain.DocumentTypeInvoice:
		return b, a, nil
	default:
		return invoice, bol, fmt.Errorf("%w: got %q and %q", ErrDocumentTypeMismatch, a.DocumentType, b.DocumentType)
	}
}
