package comparison

import "fmt"

// RiskBands maps a category's weighted discrepancy ratio to a risk level:
// below Medium is LOW, below High is MEDIUM, anything else HIGH.
type RiskBands struct {
	Medium float64
	High   float64
}

// DefaultRiskBands returns the 0.15 / 0.40 cut-offs.
func DefaultRiskBands() RiskBands {
	return RiskBands{Medium: 0.15, High: 0.40}
}

// Validate requires 0 < Medium <= High <= 1.
func (b RiskBands) Validate() error {
	if b.Medium <= 0 || b.High < b.Medium || b.High > 1 {
		return fmt.Errorf("%w: risk bands must satisfy 0 < medium (%v) <= high (%v) <= 1", ErrInvalidFieldTable, b.Medium, b.High)
	}
	return nil
}

// Level classifies a discrepancy ratio.
func (b RiskBands) Level(ratio float64) RiskLevel {
	switch {
	case ratio < b.Medium:
		return RiskLow
	case ratio < b.High:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// Aggregator rolls field comparisons up into category and overall risk.
type Aggregator struct {
	fields map[string]FieldSpec
	bands  RiskBands
}

// NewAggregator indexes table for weight, category and criticality lookups.
func NewAggregator(table FieldTable, bands RiskBands) *Aggregator {
	fields := make(map[string]FieldSpec, len(table))
	for _, f := range table {
		fields[f.Name] = f
	}
	return &Aggregator{fields: fields, bands: bands}
}

type categoryTally struct {
	total     float64
	failed    float64
	escalated bool
}

// Aggregate never fails; an empty slice yields an undetermined summary.
// Comparisons for fields outside the table count toward totals and confidence
// but belong to no category.
func (a *Aggregator) Aggregate(comparisons []FieldComparison) Summary {
	s := Summary{
		TotalFields:    len(comparisons),
		RiskByCategory: make(map[Category]RiskLevel, len(Categories)),
	}

	tallies := make(map[Category]*categoryTally, len(Categories))
	for _, c := range Categories {
		tallies[c] = &categoryTally{}
	}

	var confidenceSum float64
	for _, fc := range comparisons {
		confidenceSum += fc.Confidence

		failed := false
		switch fc.Match {
		case MatchExact, MatchPartial:
			s.MatchingFields++
		case MatchMissing:
			s.DiscrepantFields++
			s.MissingFields++
			failed = true
		default:
			s.DiscrepantFields++
			failed = true
		}

		spec, known := a.fields[fc.Field]
		if !known {
			continue
		}
		t, ok := tallies[spec.Category]
		if !ok {
			continue
		}
		w := spec.EffectiveWeight()
		t.total += w
		if failed {
			t.failed += w
		}
		if spec.Critical && fc.Match == MatchMismatch {
			t.escalated = true
		}
	}

	overall := RiskLow
	for _, c := range Categories {
		t := tallies[c]
		level := RiskLow
		if t.total > 0 {
			level = a.bands.Level(t.failed / t.total)
		}
		if t.escalated {
			level = RiskHigh
		}
		s.RiskByCategory[c] = level
		overall = overall.Max(level)
	}
	s.OverallRisk = overall

	if s.TotalFields == 0 {
		s.OverallMatch = OverallMatchUndetermined
		s.ConfidenceScore = 0
		return s
	}
	s.OverallMatch = matchByRisk[overall]
	s.ConfidenceScore = clamp01(confidenceSum / float64(s.TotalFields))
	return s
}
