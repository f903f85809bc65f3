package port

import (
	"context"

	"tradelens/internal/domain"
)

// ExtractInput carries the data needed for document extraction.
type ExtractInput struct {
	FileBytes    []byte
	ContentType  string
	DocumentType domain.DocumentType
}

// DocumentExtractor turns an uploaded document into extracted fields.
type DocumentExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*domain.ExtractedDocument, error)
}
