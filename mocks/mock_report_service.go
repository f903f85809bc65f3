package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"tradelens/internal/domain"
	"tradelens/internal/service"
)

// MockReportService is a mock implementation of service.ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Export(ctx context.Context, sessionID uuid.UUID, format domain.ExportFormat) (*service.ExportedReport, error) {
	args := m.Called(ctx, sessionID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportedReport), args.Error(1)
}
