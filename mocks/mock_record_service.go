package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"expenso/internal/domain"
	"expenso/internal/service"
)

// MockRecordService is a mock implementation of service.RecordService.
type MockRecordService struct {
	mock.Mock
}

func (m *MockRecordService) GetByID(ctx context.Context, ownerID, recordID uuid.UUID) (*domain.ExpenseRecord, error) {
	args := m.Called(ctx, ownerID, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExpenseRecord), args.Error(1)
}

func (m *MockRecordService) Update(ctx context.Context, ownerID, recordID uuid.UUID, input service.UpdateRecordInput) (*domain.ExpenseRecord, error) {
	args := m.Called(ctx, ownerID, recordID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExpenseRecord), args.Error(1)
}

func (m *MockRecordService) ResolveIssue(ctx context.Context, ownerID, recordID uuid.UUID, flag domain.IssueFlag) (*domain.ExpenseRecord, error) {
	args := m.Called(ctx, ownerID, recordID, flag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExpenseRecord), args.Error(1)
}
