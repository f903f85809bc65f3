package parser

import (
	"strings"

	"tradelens/internal/domain"
)

// BuildExtractionPrompt returns the extraction prompt for a trade document,
// asking for exactly the given source fields.
func BuildExtractionPrompt(docType domain.DocumentType, fields []string) string {
	var b strings.Builder
	b.WriteString("You are a trade document data extraction assistant. Analyze the provided ")
	b.WriteString(docType.Label())
	b.WriteString(" and extract the fields listed below.\n\n")
	b.WriteString(`IMPORTANT INSTRUCTIONS:
- Copy values exactly as printed. Do not reformat amounts, dates or reference numbers.
- For parties (shipper, seller, consignee, buyer, notify party) extract the name and the full address as separate fields.
- If a field is not present in the document, set its value to null and its confidence to 0.0.

Return ONLY valid JSON with no markdown formatting, no code fences and no explanation.

The JSON must have this shape:
{
  "fields": {
    "<field_name>": {"value": "<text as printed>", "confidence": 0.0}
  },
  "extraction_confidence": 0.0
}

Confidence values are floats between 0.0 and 1.0.

Fields to extract:
`)
	for _, f := range fields {
		b.WriteString("- ")
		b.WriteString(f)
		b.WriteString("\n")
	}
	return b.String()
}
