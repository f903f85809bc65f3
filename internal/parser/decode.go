package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"tradelens/internal/domain"
)

type wireField struct {
	Value      json.RawMessage `json:"value"`
	Confidence float64         `json:"confidence"`
}

type wireDocument struct {
	DocumentType         domain.DocumentType  `json:"document_type"`
	Fields               map[string]wireField `json:"fields"`
	ExtractionConfidence float64              `json:"extraction_confidence"`
}

// DecodeDocument parses the extraction JSON shape into an ExtractedDocument of
// type docType. Field values may be strings, numbers or booleans; nulls are
// dropped. Markdown code fences around the JSON are tolerated. A document_type
// in the payload must agree with docType.
func DecodeDocument(docType domain.DocumentType, data []byte) (*domain.ExtractedDocument, error) {
	var wire wireDocument
	if err := json.Unmarshal(stripCodeFence(data), &wire); err != nil {
		return nil, fmt.Errorf("decoding extraction JSON: %w (raw: %s)", err, truncate(string(data), 500))
	}
	if wire.DocumentType != "" && wire.DocumentType != docType {
		return nil, fmt.Errorf("%w: expected %s, payload declares %s", domain.ErrInvalidDocument, docType, wire.DocumentType)
	}

	doc := &domain.ExtractedDocument{
		DocumentType:         docType,
		Fields:               make(map[string]domain.RawValue, len(wire.Fields)),
		ExtractionConfidence: clampConfidence(wire.ExtractionConfidence),
	}
	for name, f := range wire.Fields {
		value, ok, err := scalarText(f.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", domain.ErrInvalidDocument, name, err)
		}
		if !ok {
			continue
		}
		doc.Fields[name] = domain.RawValue{Value: value, Confidence: clampConfidence(f.Confidence)}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func scalarText(raw json.RawMessage) (string, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false, err
		}
		return s, true, nil
	case '{', '[':
		return "", false, fmt.Errorf("value must be a scalar")
	default:
		// numbers and booleans keep their literal text
		return string(raw), true, nil
	}
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}

func stripCodeFence(data []byte) []byte {
	s := strings.TrimSpace(string(data))
	if !strings.HasPrefix(s, "```") {
		return []byte(s)
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(strings.TrimSpace(s))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
