package comparison

// typeBehavior binds a FieldType to how its values are canonicalized and compared.
type typeBehavior struct {
	normalize  func(raw string, spec FieldSpec) Value
	similarity func(a, b Value) float64
	threshold  float64
}

var behaviors = map[FieldType]typeBehavior{
	FieldTypeAmount: {
		normalize:  normalizeAmount,
		similarity: amountSimilarity,
		threshold:  0.99,
	},
	FieldTypeDate: {
		normalize:  normalizeDate,
		similarity: dateSimilarity,
		threshold:  0.90,
	},
	FieldTypeIdentifier: {
		normalize:  normalizeIdentifier,
		similarity: textSimilarity,
		threshold:  0.85,
	},
	FieldTypeFreeText: {
		normalize:  normalizeFreeText,
		similarity: textSimilarity,
		threshold:  0.85,
	},
}

// DefaultThreshold returns the PARTIAL/MISMATCH boundary used for t when a field
// does not override it. Unknown types return 1.
func DefaultThreshold(t FieldType) float64 {
	if b, ok := behaviors[t]; ok {
		return b.threshold
	}
	return 1
}
