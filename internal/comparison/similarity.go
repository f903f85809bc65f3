package comparison

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"
)

// dateDecayDays is the drift at which date similarity reaches zero.
const dateDecayDays = 30

var (
	one = decimal.NewFromInt(1)
	// amountEpsilon keeps the relative difference defined when both amounts are zero.
	amountEpsilon = decimal.RequireFromString("0.01")
)

func amountSimilarity(a, b Value) float64 {
	diff := a.Amount.Sub(b.Amount).Abs()
	denom := decimal.Max(a.Amount.Abs(), b.Amount.Abs(), amountEpsilon)
	ratio := diff.Div(denom)
	if ratio.GreaterThanOrEqual(one) {
		return 0
	}
	return one.Sub(ratio).InexactFloat64()
}

func dateSimilarity(a, b Value) float64 {
	days := a.Date.DaysBetween(b.Date)
	if days >= dateDecayDays {
		return 0
	}
	return 1 - float64(days)/dateDecayDays
}

func textSimilarity(a, b Value) float64 {
	longest := max(utf8.RuneCountInString(a.Text), utf8.RuneCountInString(b.Text))
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a.Text, b.Text)
	return clamp01(1 - float64(dist)/float64(longest))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
