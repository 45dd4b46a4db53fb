package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"expenso/internal/domain"
)

// BatchRepository defines the contract for batch persistence.
type BatchRepository interface {
	Create(ctx context.Context, batch *domain.Batch) error
	GetByID(ctx context.Context, ownerID, batchID uuid.UUID) (*domain.Batch, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Batch, int, error)
	UpdateStatus(ctx context.Context, ownerID, batchID uuid.UUID, status domain.BatchStatus) error
	UpdateOutcome(ctx context.Context, batch *domain.Batch) error
	MarkCompleted(ctx context.Context, ownerID, batchID uuid.UUID, recordCount int, successRate float64, completedAt time.Time) error
	MarkFailed(ctx context.Context, ownerID, batchID uuid.UUID, reason string) error
	// ClaimQueued atomically claims up to limit queued batches for processing,
	// moving them to the processing status so concurrent workers never pick
	// the same batch twice.
	ClaimQueued(ctx context.Context, limit int) ([]domain.Batch, error)
}

// RecordRepository defines the contract for expense record persistence.
type RecordRepository interface {
	CreateMany(ctx context.Context, records []domain.ExpenseRecord) error
	GetByID(ctx context.Context, ownerID, recordID uuid.UUID) (*domain.ExpenseRecord, error)
	ListByBatch(ctx context.Context, ownerID, batchID uuid.UUID) ([]domain.ExpenseRecord, error)
	Update(ctx context.Context, record *domain.ExpenseRecord) error
	ResolveIssue(ctx context.Context, ownerID, recordID uuid.UUID, flag domain.IssueFlag) error
	// MarkBatchCarried flips every record of a batch to the carried status.
	// Used when a reviewer accepts a baseline wholesale.
	MarkBatchCarried(ctx context.Context, ownerID, batchID uuid.UUID) error
}

// StatsRepository provides aggregate statistics.
type StatsRepository interface {
	GetOwnerStats(ctx context.Context, ownerID uuid.UUID) (*domain.Stats, error)
}
