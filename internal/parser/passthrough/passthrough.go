// Package passthrough accepts documents that were extracted upstream and
// uploaded as JSON in the extraction shape.
package passthrough

import (
	"context"
	"fmt"

	"tradelens/internal/config"
	"tradelens/internal/domain"
	"tradelens/internal/parser"
	"tradelens/internal/port"
)

// Extractor implements port.DocumentExtractor for application/json uploads.
type Extractor struct{}

// Factory adapts Extractor to parser.ProviderFactory.
func Factory(_ *config.ParserProviderConfig, _ parser.Schema) (port.DocumentExtractor, error) {
	return Extractor{}, nil
}

func (Extractor) Extract(_ context.Context, input port.ExtractInput) (*domain.ExtractedDocument, error) {
	if input.ContentType != "application/json" {
		return nil, fmt.Errorf("passthrough: unsupported content type %s", input.ContentType)
	}
	return parser.DecodeDocument(input.DocumentType, input.FileBytes)
}
