package comparison

import (
	"fmt"
	"strings"
)

const (
	// unparseableConfidence is low but nonzero: the pair could not be verified,
	// which is weaker evidence than a confirmed conflict.
	unparseableConfidence = 0.2
	// thresholdTolerance keeps inclusive boundaries inclusive under float rounding.
	thresholdTolerance = 1e-9
)

// MatchField compares one canonical field. A nil or blank raw value is absent.
func MatchField(spec FieldSpec, invoiceRaw, blRaw *string) FieldComparison {
	fc := FieldComparison{
		Field:        spec.Name,
		Category:     spec.Category,
		InvoiceValue: invoiceRaw,
		BLValue:      blRaw,
	}

	invoiceAbsent, blAbsent := absent(invoiceRaw), absent(blRaw)
	if invoiceAbsent || blAbsent {
		fc.Match = MatchMissing
		fc.Confidence = 0
		switch {
		case invoiceAbsent && blAbsent:
			fc.Notes = "missing on both documents"
		case invoiceAbsent:
			fc.Notes = "missing on invoice"
		default:
			fc.Notes = "missing on bill of lading"
		}
		return fc
	}

	a := Normalize(*invoiceRaw, spec)
	b := Normalize(*blRaw, spec)
	if a.Unparseable() || b.Unparseable() {
		fc.Match = MatchMismatch
		fc.Confidence = unparseableConfidence
		fc.Notes = unparseableNote(a, b)
		return fc
	}

	if a.Equal(b) {
		fc.Match = MatchExact
		fc.Confidence = 1
		fc.Notes = "Perfect match"
		return fc
	}

	sim := clamp01(behaviors[spec.Type].similarity(a, b))
	limit := spec.EffectiveThreshold()
	fc.Confidence = sim
	if sim+thresholdTolerance >= limit {
		fc.Match = MatchPartial
		fc.Notes = fmt.Sprintf("Minor difference within tolerance (similarity %.3f, threshold %.2f)", sim, limit)
	} else {
		fc.Match = MatchMismatch
		fc.Notes = fmt.Sprintf("Values differ (similarity %.3f below threshold %.2f)", sim, limit)
	}
	return fc
}

func absent(raw *string) bool {
	return raw == nil || strings.TrimSpace(*raw) == ""
}

func unparseableNote(a, b Value) string {
	var parts []string
	if a.Unparseable() {
		parts = append(parts, "invoice: "+a.Reason)
	}
	if b.Unparseable() {
		parts = append(parts, "bill of lading: "+b.Reason)
	}
	return "unparseable (" + strings.Join(parts, "; ") + ")"
}
