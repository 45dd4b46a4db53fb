package noop

import (
	"context"
	"log"

	"github.com/google/uuid"

	"expenso/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a ReviewNotifier that only logs. Used in development
// and when no email provider is configured.
func NewNoopSender() port.ReviewNotifier {
	return &noopSender{}
}

func (s *noopSender) SendReviewRequired(ctx context.Context, toEmail, toName string, batchID uuid.UUID) error {
	log.Printf("noopSender: would send review-required email to %s <%s> for batch %s", toName, toEmail, batchID)
	return nil
}
