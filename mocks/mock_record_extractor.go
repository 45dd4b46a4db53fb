package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"expenso/internal/domain"
	"expenso/internal/port"
)

// MockRecordExtractor is a mock implementation of port.RecordExtractor.
type MockRecordExtractor struct {
	mock.Mock
}

func (m *MockRecordExtractor) Extract(ctx context.Context, input port.ExtractInput) ([]domain.ExpenseRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExpenseRecord), args.Error(1)
}
