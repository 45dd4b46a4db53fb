package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"expenso/internal/domain"
	"expenso/internal/recon"
	"expenso/internal/service"
)

// MockBatchService is a mock implementation of service.BatchService.
type MockBatchService struct {
	mock.Mock
}

func (m *MockBatchService) Submit(ctx context.Context, input service.SubmitInput) (*service.SubmitResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmitResult), args.Error(1)
}

func (m *MockBatchService) GetByID(ctx context.Context, ownerID, batchID uuid.UUID) (*domain.Batch, error) {
	args := m.Called(ctx, ownerID, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Batch), args.Error(1)
}

func (m *MockBatchService) List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Batch, int, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Batch), args.Int(1), args.Error(2)
}

func (m *MockBatchService) ListRecords(ctx context.Context, ownerID, batchID uuid.UUID) ([]domain.ExpenseRecord, error) {
	args := m.Called(ctx, ownerID, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExpenseRecord), args.Error(1)
}

func (m *MockBatchService) PreviewDelta(ctx context.Context, ownerID, batchID uuid.UUID) (*recon.DeltaResult, error) {
	args := m.Called(ctx, ownerID, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recon.DeltaResult), args.Error(1)
}

func (m *MockBatchService) Resolve(ctx context.Context, ownerID, batchID uuid.UUID, decision service.ReviewDecision) (*domain.Batch, error) {
	args := m.Called(ctx, ownerID, batchID, decision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Batch), args.Error(1)
}
