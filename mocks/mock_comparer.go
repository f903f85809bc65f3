package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tradelens/internal/comparison"
	"tradelens/internal/domain"
)

// MockComparer is a mock implementation of service.Comparer.
type MockComparer struct {
	mock.Mock
}

func (m *MockComparer) Compare(ctx context.Context, a, b domain.ExtractedDocument) (*comparison.Result, error) {
	args := m.Called(ctx, a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*comparison.Result), args.Error(1)
}

func (m *MockComparer) Fields() comparison.FieldTable {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(comparison.FieldTable)
}
