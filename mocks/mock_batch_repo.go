package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"expenso/internal/domain"
)

// MockBatchRepo is a mock implementation of port.BatchRepository.
type MockBatchRepo struct {
	mock.Mock
}

func (m *MockBatchRepo) Create(ctx context.Context, batch *domain.Batch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepo) GetByID(ctx context.Context, ownerID, batchID uuid.UUID) (*domain.Batch, error) {
	args := m.Called(ctx, ownerID, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Batch), args.Error(1)
}

func (m *MockBatchRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Batch, int, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Batch), args.Int(1), args.Error(2)
}

func (m *MockBatchRepo) UpdateStatus(ctx context.Context, ownerID, batchID uuid.UUID, status domain.BatchStatus) error {
	args := m.Called(ctx, ownerID, batchID, status)
	return args.Error(0)
}

func (m *MockBatchRepo) UpdateOutcome(ctx context.Context, batch *domain.Batch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepo) MarkCompleted(ctx context.Context, ownerID, batchID uuid.UUID, recordCount int, successRate float64, completedAt time.Time) error {
	args := m.Called(ctx, ownerID, batchID, recordCount, successRate, completedAt)
	return args.Error(0)
}

func (m *MockBatchRepo) MarkFailed(ctx context.Context, ownerID, batchID uuid.UUID, reason string) error {
	args := m.Called(ctx, ownerID, batchID, reason)
	return args.Error(0)
}

func (m *MockBatchRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Batch, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Batch), args.Error(1)
}
