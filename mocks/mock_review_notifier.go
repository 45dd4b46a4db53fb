package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockReviewNotifier is a mock implementation of port.ReviewNotifier.
type MockReviewNotifier struct {
	mock.Mock
}

func (m *MockReviewNotifier) SendReviewRequired(ctx context.Context, toEmail, toName string, batchID uuid.UUID) error {
	args := m.Called(ctx, toEmail, toName, batchID)
	return args.Error(0)
}
