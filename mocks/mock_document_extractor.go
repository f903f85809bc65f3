package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tradelens/internal/domain"
	"tradelens/internal/port"
)

// MockDocumentExtractor is a mock implementation of port.DocumentExtractor.
type MockDocumentExtractor struct {
	mock.Mock
}

func (m *MockDocumentExtractor) Extract(ctx context.Context, input port.ExtractInput) (*domain.ExtractedDocument, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractedDocument), args.Error(1)
}
