package port

import (
	"context"

	"github.com/google/uuid"
)

// ReviewNotifier informs an owner that a submission needs a human decision
// between near-tied baselines.
type ReviewNotifier interface {
	SendReviewRequired(ctx context.Context, toEmail, toName string, batchID uuid.UUID) error
}
