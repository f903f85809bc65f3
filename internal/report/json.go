package report

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"tradelens/internal/comparison"
	"tradelens/internal/domain"
)

type jsonReport struct {
	SessionID    uuid.UUID                    `json:"sessionId"`
	GeneratedAt  time.Time                    `json:"generatedAt"`
	ResultHash   string                       `json:"resultHash,omitempty"`
	Summary      comparison.Summary           `json:"summary"`
	Comparisons  []comparison.FieldComparison `json:"comparisons"`
	Invoice      *domain.ExtractedDocument    `json:"invoiceData,omitempty"`
	BillOfLading *domain.ExtractedDocument    `json:"blData,omitempty"`
}

func renderJSON(doc Document) ([]byte, error) {
	return json.MarshalIndent(jsonReport{
		SessionID:    doc.Session.ID,
		GeneratedAt:  doc.GeneratedAt,
		ResultHash:   doc.Session.ResultHash,
		Summary:      doc.Result.Summary,
		Comparisons:  doc.Result.Comparisons,
		Invoice:      doc.Invoice,
		BillOfLading: doc.BillOfLading,
	}, "", "  ")
}
