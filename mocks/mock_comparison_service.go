package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"tradelens/internal/comparison"
	"tradelens/internal/domain"
	"tradelens/internal/service"
)

// MockComparisonService is a mock implementation of service.ComparisonService.
type MockComparisonService struct {
	mock.Mock
}

func (m *MockComparisonService) Upload(ctx context.Context, input service.UploadInput) (*service.UploadResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadResult), args.Error(1)
}

func (m *MockComparisonService) Compare(ctx context.Context, input service.CompareInput) (*service.CompareResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CompareResult), args.Error(1)
}

func (m *MockComparisonService) GetSession(ctx context.Context, id uuid.UUID) (*domain.ComparisonSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComparisonSession), args.Error(1)
}

func (m *MockComparisonService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockComparisonService) Status(ctx context.Context, id uuid.UUID) (*service.StatusReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StatusReport), args.Error(1)
}

func (m *MockComparisonService) Result(ctx context.Context, id uuid.UUID) (*comparison.Result, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*comparison.Result), args.Error(1)
}

func (m *MockComparisonService) Fields() comparison.FieldTable {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(comparison.FieldTable)
}
