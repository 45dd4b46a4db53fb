package port

import (
	"context"

	"github.com/google/uuid"

	"expenso/internal/domain"
)

// BatchHistory is the reconciliation engine's read-only view of completed
// batches. It is deliberately narrow (two read methods) so the engine can be
// tested against an in-memory fake with no persistence technology involved.
type BatchHistory interface {
	// ListTerminalBatches returns the owner's batches in a terminal status
	// whose primary ledger hash equals primaryHash, most recent first. The
	// hash filter keeps the query indexed; match classification happens in
	// the engine.
	ListTerminalBatches(ctx context.Context, ownerID uuid.UUID, primaryHash string) ([]domain.Batch, error)

	// GetRecords returns the records of a single historical batch. Called
	// only for the chosen baseline, never for alternatives.
	GetRecords(ctx context.Context, batchID uuid.UUID) ([]domain.ExpenseRecord, error)
}
