package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"expenso/internal/domain"
)

// MockRecordRepo is a mock implementation of port.RecordRepository.
type MockRecordRepo struct {
	mock.Mock
}

func (m *MockRecordRepo) CreateMany(ctx context.Context, records []domain.ExpenseRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockRecordRepo) GetByID(ctx context.Context, ownerID, recordID uuid.UUID) (*domain.ExpenseRecord, error) {
	args := m.Called(ctx, ownerID, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExpenseRecord), args.Error(1)
}

func (m *MockRecordRepo) ListByBatch(ctx context.Context, ownerID, batchID uuid.UUID) ([]domain.ExpenseRecord, error) {
	args := m.Called(ctx, ownerID, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExpenseRecord), args.Error(1)
}

func (m *MockRecordRepo) Update(ctx context.Context, record *domain.ExpenseRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepo) ResolveIssue(ctx context.Context, ownerID, recordID uuid.UUID, flag domain.IssueFlag) error {
	args := m.Called(ctx, ownerID, recordID, flag)
	return args.Error(0)
}

func (m *MockRecordRepo) MarkBatchCarried(ctx context.Context, ownerID, batchID uuid.UUID) error {
	args := m.Called(ctx, ownerID, batchID)
	return args.Error(0)
}
