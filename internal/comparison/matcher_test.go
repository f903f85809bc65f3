package comparison_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tradelens/internal/comparison"
)

func ptr(s string) *string { return &s }

func TestMatchField_Amount_ThresholdBoundary(t *testing.T) {
	spec := amountSpec()

	t.Run("one_percent_is_partial", func(t *testing.T) {
		fc := comparison.MatchField(spec, ptr("100"), ptr("99"))
		assert.Equal(t, comparison.MatchPartial, fc.Match)
		assert.InDelta(t, 0.99, fc.Confidence, 1e-12)
	})

	t.Run("just_over_one_percent_is_mismatch", func(t *testing.T) {
		fc := comparison.MatchField(spec, ptr("100"), ptr("98.99"))
		assert.Equal(t, comparison.MatchMismatch, fc.Match)
		assert.InDelta(t, 0.9899, fc.Confidence, 1e-12)
	})

	t.Run("formatting_differences_are_exact", func(t *testing.T) {
		fc := comparison.MatchField(spec, ptr("$10,000.00"), ptr("10000.00"))
		assert.Equal(t, comparison.MatchExact, fc.Match)
		assert.Equal(t, 1.0, fc.Confidence)
		assert.Equal(t, "Perfect match", fc.Notes)
	})

	t.Run("zero_against_zero", func(t *testing.T) {
		fc := comparison.MatchField(spec, ptr("0.00"), ptr("0"))
		assert.Equal(t, comparison.MatchExact, fc.Match)
	})

	t.Run("sign_flip_is_mismatch", func(t *testing.T) {
		fc := comparison.MatchField(spec, ptr("(250)"), ptr("250"))
		assert.Equal(t, comparison.MatchMismatch, fc.Match)
		assert.Equal(t, 0.0, fc.Confidence)
	})
}

func TestMatchField_Date(t *testing.T) {
	spec := comparison.FieldSpec{Name: "shipment_date", Type: comparison.FieldTypeDate, Category: comparison.CategoryLogistics}

	fc := comparison.MatchField(spec, ptr("2024-03-10"), ptr("15/03/2024"))
	assert.Equal(t, comparison.MatchMismatch, fc.Match)
	assert.InDelta(t, 0.833, fc.Confidence, 0.001)

	fc = comparison.MatchField(spec, ptr("2024-03-15"), ptr("2024-03-18"))
	assert.Equal(t, comparison.MatchPartial, fc.Match, "three days sits on the inclusive boundary")
	assert.InDelta(t, 0.9, fc.Confidence, 1e-9)

	fc = comparison.MatchField(spec, ptr("2024-03-15"), ptr("March 15, 2024"))
	assert.Equal(t, comparison.MatchExact, fc.Match)

	fc = comparison.MatchField(spec, ptr("2024-01-01"), ptr("2024-06-01"))
	assert.Equal(t, comparison.MatchMismatch, fc.Match)
	assert.Equal(t, 0.0, fc.Confidence)
}

func TestMatchField_Date_CenturiesApart(t *testing.T) {
	spec := comparison.FieldSpec{Name: "shipment_date", Type: comparison.FieldTypeDate, Category: comparison.CategoryLogistics}

	pairs := [][2]string{
		{"2024-01-15", "2324-01-15"},
		{"2324-01-15", "2024-01-15"},
		{"1024-01-15", "2024-01-15"},
		{"2024-01-15", "1024-01-15"},
		{"0001-01-01", "9999-12-31"},
	}
	for _, p := range pairs {
		t.Run(p[0]+"_vs_"+p[1], func(t *testing.T) {
			fc := comparison.MatchField(spec, ptr(p[0]), ptr(p[1]))
			assert.Equal(t, comparison.MatchMismatch, fc.Match)
			assert.Equal(t, 0.0, fc.Confidence)
		})
	}
}

func TestMatchField_Identifier(t *testing.T) {
	spec := comparison.FieldSpec{Name: "invoice_number", Type: comparison.FieldTypeIdentifier}

	fc := comparison.MatchField(spec, ptr("INV-2024-0001"), ptr("inv 2024 0001"))
	assert.Equal(t, comparison.MatchExact, fc.Match)

	fc = comparison.MatchField(spec, ptr("INV-2024-0001"), ptr("INV-2024-0007"))
	assert.Equal(t, comparison.MatchPartial, fc.Match)
	assert.InDelta(t, 1-1.0/11, fc.Confidence, 1e-9)

	fc = comparison.MatchField(spec, ptr("INV-1"), ptr("PO-99"))
	assert.Equal(t, comparison.MatchMismatch, fc.Match)
}

func TestMatchField_FreeText(t *testing.T) {
	spec := comparison.FieldSpec{Name: "shipper_name", Type: comparison.FieldTypeFreeText}

	fc := comparison.MatchField(spec, ptr("ACME  Trading Co"), ptr("acme trading co"))
	assert.Equal(t, comparison.MatchExact, fc.Match)

	fc = comparison.MatchField(spec, ptr("Acme Trading Company"), ptr("Acme Trading Compny"))
	assert.Equal(t, comparison.MatchPartial, fc.Match)

	fc = comparison.MatchField(spec, ptr("ACME Corp"), ptr("Globex Industries"))
	assert.Equal(t, comparison.MatchMismatch, fc.Match)
	assert.Contains(t, fc.Notes, "below threshold")
}

func TestMatchField_Missing(t *testing.T) {
	spec := amountSpec()

	tests := []struct {
		name    string
		invoice *string
		bl      *string
		note    string
	}{
		{"invoice_nil", nil, ptr("10"), "missing on invoice"},
		{"bl_nil", ptr("10"), nil, "missing on bill of lading"},
		{"both_nil", nil, nil, "missing on both documents"},
		{"blank_counts_as_absent", ptr("   "), ptr("10"), "missing on invoice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := comparison.MatchField(spec, tt.invoice, tt.bl)
			assert.Equal(t, comparison.MatchMissing, fc.Match)
			assert.Equal(t, 0.0, fc.Confidence)
			assert.Equal(t, tt.note, fc.Notes)
		})
	}
}

func TestMatchField_Unparseable(t *testing.T) {
	fc := comparison.MatchField(amountSpec(), ptr("TBD"), ptr("100"))
	assert.Equal(t, comparison.MatchMismatch, fc.Match)
	assert.Equal(t, 0.2, fc.Confidence)
	assert.Contains(t, fc.Notes, "unparseable")
	assert.Contains(t, fc.Notes, "invoice")
	assert.NotContains(t, fc.Notes, "bill of lading")
}

func TestMatchField_ThresholdOverride(t *testing.T) {
	strict := 1.0
	spec := comparison.FieldSpec{Name: "package_count", Type: comparison.FieldTypeAmount, Threshold: &strict}

	fc := comparison.MatchField(spec, ptr("1000"), ptr("999"))
	assert.Equal(t, comparison.MatchMismatch, fc.Match)
}

func TestMatchField_KeepsRawValues(t *testing.T) {
	fc := comparison.MatchField(amountSpec(), ptr("$1,000"), ptr("1000"))
	if assert.NotNil(t, fc.InvoiceValue) && assert.NotNil(t, fc.BLValue) {
		assert.Equal(t, "$1,000", *fc.InvoiceValue)
		assert.Equal(t, "1000", *fc.BLValue)
	}
	assert.Equal(t, "total_amount", fc.Field)
}

func TestMatchField_ConfidenceInRange(t *testing.T) {
	specs := []comparison.FieldSpec{
		amountSpec(),
		{Name: "d", Type: comparison.FieldTypeDate},
		{Name: "i", Type: comparison.FieldTypeIdentifier},
		{Name: "f", Type: comparison.FieldTypeFreeText},
	}
	values := []*string{nil, ptr(""), ptr("0"), ptr("-1e9"), ptr("2024-01-01"), ptr("x"), ptr("99999999999999999999.99")}
	for _, spec := range specs {
		for _, a := range values {
			for _, b := range values {
				fc := comparison.MatchField(spec, a, b)
				assert.GreaterOrEqual(t, fc.Confidence, 0.0)
				assert.LessOrEqual(t, fc.Confidence, 1.0)
			}
		}
	}
}
