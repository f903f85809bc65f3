package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelens/internal/domain"
	"tradelens/internal/parser"
)

func TestDecodeDocument(t *testing.T) {
	data := []byte(`{
		"document_type": "bill_of_lading",
		"fields": {
			"bl_number": {"value": "MAEU123", "confidence": 0.97},
			"gross_weight": {"value": 1250.5, "confidence": 0.8},
			"notify_party": {"value": null, "confidence": 0},
			"shipper_name": {"value": "Acme Ltd", "confidence": 1.4}
		},
		"extraction_confidence": 0.91
	}`)

	doc, err := parser.DecodeDocument(domain.DocumentTypeBillOfLading, data)

	require.NoError(t, err)
	assert.Equal(t, domain.DocumentTypeBillOfLading, doc.DocumentType)
	assert.Equal(t, 0.91, doc.ExtractionConfidence)
	assert.Len(t, doc.Fields, 3)
	assert.Equal(t, "MAEU123", doc.Fields["bl_number"].Value)
	assert.Equal(t, "1250.5", doc.Fields["gross_weight"].Value)
	assert.Equal(t, 1.0, doc.Fields["shipper_name"].Confidence)
	assert.Nil(t, doc.Value("notify_party"))
}

func TestDecodeDocument_CodeFence(t *testing.T) {
	data := []byte("```json\n{\"fields\": {\"invoice_number\": {\"value\": \"INV-9\", \"confidence\": 0.9}}}\n```")

	doc, err := parser.DecodeDocument(domain.DocumentTypeInvoice, data)

	require.NoError(t, err)
	assert.Equal(t, domain.DocumentTypeInvoice, doc.DocumentType)
	assert.Equal(t, "INV-9", doc.Fields["invoice_number"].Value)
}

func TestDecodeDocument_Errors(t *testing.T) {
	tests := []struct {
		name    string
		docType domain.DocumentType
		data    string
		invalid bool
	}{
		{name: "malformed json", docType: domain.DocumentTypeInvoice, data: `{"fields":`},
		{name: "type disagrees", docType: domain.DocumentTypeInvoice, data: `{"document_type":"bill_of_lading","fields":{}}`, invalid: true},
		{name: "object value", docType: domain.DocumentTypeInvoice, data: `{"fields":{"seller":{"value":{"name":"x"},"confidence":1}}}`, invalid: true},
		{name: "unknown doc type", docType: domain.DocumentType("packing_list"), data: `{"fields":{}}`, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := parser.DecodeDocument(tt.docType, []byte(tt.data))
			assert.Nil(t, doc)
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, domain.ErrInvalidDocument)
			}
		})
	}
}

func TestBuildExtractionPrompt(t *testing.T) {
	prompt := parser.BuildExtractionPrompt(domain.DocumentTypeInvoice, []string{"invoice_number", "total_amount"})

	assert.Contains(t, prompt, domain.DocumentTypeInvoice.Label())
	assert.Contains(t, prompt, "- invoice_number\n")
	assert.Contains(t, prompt, "- total_amount\n")
	assert.Contains(t, prompt, `"extraction_confidence"`)
}
