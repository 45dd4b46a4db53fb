package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"expenso/internal/domain"
)

// MockBatchHistory is a mock implementation of port.BatchHistory.
type MockBatchHistory struct {
	mock.Mock
}

func (m *MockBatchHistory) ListTerminalBatches(ctx context.Context, ownerID uuid.UUID, primaryHash string) ([]domain.Batch, error) {
	args := m.Called(ctx, ownerID, primaryHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Batch), args.Error(1)
}

func (m *MockBatchHistory) GetRecords(ctx context.Context, batchID uuid.UUID) ([]domain.ExpenseRecord, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExpenseRecord), args.Error(1)
}
