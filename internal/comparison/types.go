package comparison

// FieldType selects the normalizer, similarity function and default threshold for a field.
type FieldType string

const (
	FieldTypeAmount     FieldType = "amount"
	FieldTypeDate       FieldType = "date"
	FieldTypeIdentifier FieldType = "identifier"
	FieldTypeFreeText   FieldType = "free_text"
)

// Valid reports whether t has a registered behavior.
func (t FieldType) Valid() bool {
	_, ok := behaviors[t]
	return ok
}

// Category groups canonical fields for risk reporting.
type Category string

const (
	CategoryParties    Category = "parties"
	CategoryLogistics  Category = "logistics"
	CategoryCommercial Category = "commercial"
)

// Categories lists every category in report order.
var Categories = []Category{CategoryParties, CategoryLogistics, CategoryCommercial}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// MatchStatus is the per-field outcome of a comparison.
type MatchStatus string

const (
	MatchExact    MatchStatus = "exact"
	MatchPartial  MatchStatus = "partial"
	MatchMismatch MatchStatus = "mismatch"
	MatchMissing  MatchStatus = "missing"
)

// RiskLevel is ordered LOW < MEDIUM < HIGH.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

func (r RiskLevel) rank() int {
	switch r {
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	default:
		return 0
	}
}

// Max returns the higher of two risk levels.
func (r RiskLevel) Max(other RiskLevel) RiskLevel {
	if other.rank() > r.rank() {
		return other
	}
	return r
}

// OverallMatch is the reviewer-facing match label derived from the overall risk.
type OverallMatch string

const (
	OverallMatchHigh         OverallMatch = "high"
	OverallMatchMedium       OverallMatch = "medium"
	OverallMatchLow          OverallMatch = "low"
	OverallMatchUndetermined OverallMatch = "undetermined"
)

var matchByRisk = map[RiskLevel]OverallMatch{
	RiskLow:    OverallMatchHigh,
	RiskMedium: OverallMatchMedium,
	RiskHigh:   OverallMatchLow,
}

// FieldComparison is the judgment for one canonical field.
// A nil InvoiceValue or BLValue means the field was absent on that document.
type FieldComparison struct {
	Field        string      `json:"field"`
	Category     Category    `json:"category,omitempty"`
	InvoiceValue *string     `json:"invoiceValue"`
	BLValue      *string     `json:"blValue"`
	Match        MatchStatus `json:"match"`
	Confidence   float64     `json:"confidence"`
	Notes        string      `json:"notes"`
}

// Summary rolls up a full list of field comparisons.
type Summary struct {
	TotalFields      int                    `json:"totalFields"`
	MatchingFields   int                    `json:"matchingFields"`
	DiscrepantFields int                    `json:"discrepantFields"`
	MissingFields    int                    `json:"missingFields"`
	OverallMatch     OverallMatch           `json:"overallMatch"`
	OverallRisk      RiskLevel              `json:"overallRisk"`
	ConfidenceScore  float64                `json:"confidenceScore"`
	RiskByCategory   map[Category]RiskLevel `json:"riskByCategory"`
}

// Result is the output of Engine.Compare.
type Result struct {
	Comparisons []FieldComparison `json:"comparisons"`
	Summary     Summary           `json:"summary"`
}
