package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"tradelens/internal/comparison"
	"tradelens/internal/domain"
)

// sessionPayload is the decoded JSON content of a completed session.
type sessionPayload struct {
	Result       *comparison.Result
	Invoice      *domain.ExtractedDocument
	BillOfLading *domain.ExtractedDocument
}

// storeResult writes the documents and comparison result onto s and marks it completed.
func storeResult(s *domain.ComparisonSession, invoice, bol *domain.ExtractedDocument, result *comparison.Result) error {
	invoiceJSON, err := json.Marshal(invoice)
	if err != nil {
		return fmt.Errorf("marshaling invoice data: %w", err)
	}
	bolJSON, err := json.Marshal(bol)
	if err != nil {
		return fmt.Errorf("marshaling bill of lading data: %w", err)
	}
	comparisonsJSON, err := json.Marshal(result.Comparisons)
	if err != nil {
		return fmt.Errorf("marshaling comparisons: %w", err)
	}
	summaryJSON, err := json.Marshal(result.Summary)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}

	s.InvoiceData = invoiceJSON
	s.BOLData = bolJSON
	s.Comparisons = comparisonsJSON
	s.Summary = summaryJSON
	s.OverallRisk = string(result.Summary.OverallRisk)
	s.ResultHash = resultHash(comparisonsJSON, summaryJSON)
	s.Status = domain.SessionStatusCompleted
	s.ErrorMessage = ""
	return nil
}

// resultHash is the hex sha256 of the comparisons JSON followed by the summary JSON.
func resultHash(comparisonsJSON, summaryJSON []byte) string {
	h := sha256.New()
	h.Write(comparisonsJSON)
	h.Write(summaryJSON)
	return hex.EncodeToString(h.Sum(nil))
}

// loadResult decodes a completed session. Sessions still processing or failed
// return ErrSessionNotCompleted.
func loadResult(s *domain.ComparisonSession) (*sessionPayload, error) {
	if s.Status != domain.SessionStatusCompleted {
		return nil, fmt.Errorf("%w: session %s is %s", domain.ErrSessionNotCompleted, s.ID, s.Status)
	}

	p := &sessionPayload{Result: &comparison.Result{}}
	if err := json.Unmarshal(s.Comparisons, &p.Result.Comparisons); err != nil {
		return nil, fmt.Errorf("decoding comparisons: %w", err)
	}
	if err := json.Unmarshal(s.Summary, &p.Result.Summary); err != nil {
		return nil, fmt.Errorf("decoding summary: %w", err)
	}
	if len(s.InvoiceData) > 0 {
		if err := json.Unmarshal(s.InvoiceData, &p.Invoice); err != nil {
			return nil, fmt.Errorf("decoding invoice data: %w", err)
		}
	}
	if len(s.BOLData) > 0 {
		if err := json.Unmarshal(s.BOLData, &p.BillOfLading); err != nil {
			return nil, fmt.Errorf("decoding bill of lading data: %w", err)
		}
	}
	return p, nil
}
