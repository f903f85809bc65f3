package parser

import (
	"context"

	"tradelens/internal/domain"
	"tradelens/internal/port"
)

// ContentTypeRouter sends each document to the extractor registered for its
// content type, or to the default extractor.
type ContentTypeRouter struct {
	byType   map[string]port.DocumentExtractor
	fallback port.DocumentExtractor
}

// NewContentTypeRouter creates a router over fallback with per-content-type overrides.
func NewContentTypeRouter(fallback port.DocumentExtractor, byType map[string]port.DocumentExtractor) *ContentTypeRouter {
	return &ContentTypeRouter{byType: byType, fallback: fallback}
}

func (r *ContentTypeRouter) Extract(ctx context.Context, input port.ExtractInput) (*domain.ExtractedDocument, error) {
	if e, ok := r.byType[input.ContentType]; ok {
		return e.Extract(ctx, input)
	}
	return r.fallback.Extract(ctx, input)
}
