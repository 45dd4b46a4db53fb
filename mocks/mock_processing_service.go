package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"expenso/internal/domain"
)

// MockProcessingService is a mock implementation of service.ProcessingService.
type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) ProcessBatch(ctx context.Context, batch *domain.Batch) {
	m.Called(ctx, batch)
}
