package comparison_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelens/internal/comparison"
)

func fc(field string, match comparison.MatchStatus, confidence float64) comparison.FieldComparison {
	return comparison.FieldComparison{Field: field, Match: match, Confidence: confidence}
}

func TestRiskBands_Level(t *testing.T) {
	b := comparison.DefaultRiskBands()
	assert.Equal(t, comparison.RiskLow, b.Level(0))
	assert.Equal(t, comparison.RiskLow, b.Level(0.1499))
	assert.Equal(t, comparison.RiskMedium, b.Level(0.15))
	assert.Equal(t, comparison.RiskMedium, b.Level(0.3999))
	assert.Equal(t, comparison.RiskHigh, b.Level(0.40))
	assert.Equal(t, comparison.RiskHigh, b.Level(1))
}

func TestRiskBands_Validate(t *testing.T) {
	assert.NoError(t, comparison.DefaultRiskBands().Validate())
	assert.ErrorIs(t, comparison.RiskBands{Medium: 0, High: 0.4}.Validate(), comparison.ErrInvalidFieldTable)
	assert.ErrorIs(t, comparison.RiskBands{Medium: 0.5, High: 0.4}.Validate(), comparison.ErrInvalidFieldTable)
	assert.ErrorIs(t, comparison.RiskBands{Medium: 0.5, High: 1.4}.Validate(), comparison.ErrInvalidFieldTable)
}

func TestAggregate_Empty(t *testing.T) {
	agg := comparison.NewAggregator(comparison.DefaultFieldTable(), comparison.DefaultRiskBands())
	s := agg.Aggregate(nil)

	assert.Equal(t, 0, s.TotalFields)
	assert.Equal(t, comparison.OverallMatchUndetermined, s.OverallMatch)
	assert.Equal(t, 0.0, s.ConfidenceScore)
	assert.Equal(t, comparison.RiskLow, s.OverallRisk)
	require.Len(t, s.RiskByCategory, 3)
	for _, c := range comparison.Categories {
		assert.Equal(t, comparison.RiskLow, s.RiskByCategory[c])
	}
}

func TestAggregate_Counts(t *testing.T) {
	agg := comparison.NewAggregator(comparison.DefaultFieldTable(), comparison.DefaultRiskBands())
	s := agg.Aggregate([]comparison.FieldComparison{
		fc("shipper_name", comparison.MatchExact, 1),
		fc("vessel_name", comparison.MatchPartial, 0.9),
		fc("currency", comparison.MatchMismatch, 0.2),
		fc("notify_party", comparison.MatchMissing, 0),
	})

	assert.Equal(t, 4, s.TotalFields)
	assert.Equal(t, 2, s.MatchingFields)
	assert.Equal(t, 2, s.DiscrepantFields)
	assert.Equal(t, 1, s.MissingFields)
	assert.Equal(t, s.TotalFields, s.MatchingFields+s.DiscrepantFields)
	assert.InDelta(t, 0.525, s.ConfidenceScore, 1e-9)
}

func TestAggregate_WeightedCategoryRatio(t *testing.T) {
	table := comparison.FieldTable{
		{Name: "a", Type: comparison.FieldTypeFreeText, Category: comparison.CategoryParties, Weight: 1, InvoiceField: "a", BLField: "a"},
		{Name: "b", Type: comparison.FieldTypeFreeText, Category: comparison.CategoryParties, Weight: 4, InvoiceField: "b", BLField: "b"},
		{Name: "c", Type: comparison.FieldTypeFreeText, Category: comparison.CategoryParties, Weight: 5, InvoiceField: "c", BLField: "c"},
	}
	agg := comparison.NewAggregator(table, comparison.DefaultRiskBands())

	// 1/10 failed: LOW
	s := agg.Aggregate([]comparison.FieldComparison{
		fc("a", comparison.MatchMismatch, 0), fc("b", comparison.MatchExact, 1), fc("c", comparison.MatchExact, 1),
	})
	assert.Equal(t, comparison.RiskLow, s.RiskByCategory[comparison.CategoryParties])

	// 4/10 failed: HIGH at the inclusive band edge
	s = agg.Aggregate([]comparison.FieldComparison{
		fc("a", comparison.MatchExact, 1), fc("b", comparison.MatchMissing, 0), fc("c", comparison.MatchExact, 1),
	})
	assert.Equal(t, comparison.RiskHigh, s.RiskByCategory[comparison.CategoryParties])
	assert.Equal(t, comparison.OverallMatchLow, s.OverallMatch)

	// partial counts as matching
	s = agg.Aggregate([]comparison.FieldComparison{
		fc("a", comparison.MatchPartial, 0.9), fc("b", comparison.MatchExact, 1), fc("c", comparison.MatchExact, 1),
	})
	assert.Equal(t, comparison.RiskLow, s.OverallRisk)
	assert.Equal(t, comparison.OverallMatchHigh, s.OverallMatch)
}

func TestAggregate_CriticalMismatchEscalates(t *testing.T) {
	table := comparison.FieldTable{
		{Name: "total", Type: comparison.FieldTypeAmount, Category: comparison.CategoryCommercial, Weight: 1, Critical: true, InvoiceField: "t", BLField: "t"},
	}
	for i := 0; i < 9; i++ {
		name := string(rune('a' + i))
		table = append(table, comparison.FieldSpec{Name: name, Type: comparison.FieldTypeFreeText, Category: comparison.CategoryCommercial, Weight: 1, InvoiceField: name, BLField: name})
	}
	agg := comparison.NewAggregator(table, comparison.DefaultRiskBands())

	comparisons := []comparison.FieldComparison{fc("total", comparison.MatchMismatch, 0.5)}
	for _, f := range table[1:] {
		comparisons = append(comparisons, fc(f.Name, comparison.MatchExact, 1))
	}
	s := agg.Aggregate(comparisons)
	assert.Equal(t, comparison.RiskHigh, s.RiskByCategory[comparison.CategoryCommercial], "ratio 0.1 alone would be LOW")
	assert.Equal(t, comparison.RiskHigh, s.OverallRisk)

	// a critical field that is merely missing is weighed, not escalated
	comparisons[0] = fc("total", comparison.MatchMissing, 0)
	s = agg.Aggregate(comparisons)
	assert.Equal(t, comparison.RiskLow, s.RiskByCategory[comparison.CategoryCommercial])
}

func TestAggregate_OverallIsMaxOfCategories(t *testing.T) {
	table := comparison.FieldTable{
		{Name: "p", Type: comparison.FieldTypeFreeText, Category: comparison.CategoryParties, InvoiceField: "p", BLField: "p"},
		{Name: "l1", Type: comparison.FieldTypeFreeText, Category: comparison.CategoryLogistics, InvoiceField: "l1", BLField: "l1"},
		{Name: "l2", Type: comparison.FieldTypeFreeText, Category: comparison.CategoryLogistics, InvoiceField: "l2", BLField: "l2"},
		{Name: "l3", Type: comparison.FieldTypeFreeText, Category: comparison.CategoryLogistics, InvoiceField: "l3", BLField: "l3"},
		{Name: "l4", Type: comparison.FieldTypeFreeText, Category: comparison.CategoryLogistics, InvoiceField: "l4", BLField: "l4"},
	}
	agg := comparison.NewAggregator(table, comparison.DefaultRiskBands())
	s := agg.Aggregate([]comparison.FieldComparison{
		fc("p", comparison.MatchExact, 1),
		fc("l1", comparison.MatchMismatch, 0.1),
		fc("l2", comparison.MatchExact, 1),
		fc("l3", comparison.MatchExact, 1),
		fc("l4", comparison.MatchExact, 1),
	})

	assert.Equal(t, comparison.RiskLow, s.RiskByCategory[comparison.CategoryParties])
	assert.Equal(t, comparison.RiskMedium, s.RiskByCategory[comparison.CategoryLogistics])
	assert.Equal(t, comparison.RiskLow, s.RiskByCategory[comparison.CategoryCommercial])
	assert.Equal(t, comparison.RiskMedium, s.OverallRisk)
	assert.Equal(t, comparison.OverallMatchMedium, s.OverallMatch)
}

func TestAggregate_UnknownFieldsCountButHaveNoCategory(t *testing.T) {
	agg := comparison.NewAggregator(comparison.DefaultFieldTable(), comparison.DefaultRiskBands())
	s := agg.Aggregate([]comparison.FieldComparison{
		fc("not_in_table", comparison.MatchMismatch, 0),
		fc("shipper_name", comparison.MatchExact, 1),
	})

	assert.Equal(t, 2, s.TotalFields)
	assert.Equal(t, 1, s.DiscrepantFields)
	assert.InDelta(t, 0.5, s.ConfidenceScore, 1e-9)
	assert.Equal(t, comparison.RiskLow, s.OverallRisk)
}

func TestAggregate_MonotonicInCriticalMismatches(t *testing.T) {
	table := comparison.DefaultFieldTable()
	agg := comparison.NewAggregator(table, comparison.DefaultRiskBands())

	comparisons := make([]comparison.FieldComparison, len(table))
	for i, f := range table {
		comparisons[i] = fc(f.Name, comparison.MatchExact, 1)
	}
	prev := agg.Aggregate(comparisons).OverallRisk
	assert.Equal(t, comparison.RiskLow, prev)

	for i, f := range table {
		if !f.Critical {
			continue
		}
		comparisons[i] = fc(f.Name, comparison.MatchMismatch, 0.3)
		cur := agg.Aggregate(comparisons).OverallRisk
		assert.Equal(t, cur, cur.Max(prev), "risk dropped after critical mismatch on %s", f.Name)
		assert.Equal(t, comparison.RiskHigh, cur)
		prev = cur
	}
}
