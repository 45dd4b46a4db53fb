package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"expenso/internal/domain"
	"expenso/internal/port"
)

type historyRepo struct {
	db *sqlx.DB
}

// NewHistoryRepo creates a new PostgreSQL-backed BatchHistory. The query is
// keyed on (owner_id, primary_hash) which is covered by an index, so history
// growth does not slow down matching.
func NewHistoryRepo(db *sqlx.DB) port.BatchHistory {
	return &historyRepo{db: db}
}

func (r *historyRepo) ListTerminalBatches(ctx context.Context, ownerID uuid.UUID, primaryHash string) ([]domain.Batch, error) {
	var batches []domain.Batch
	err := r.db.SelectContext(ctx, &batches,
		`SELECT * FROM batches
		 WHERE owner_id = $1
		   AND primary_hash = $2
		   AND status IN ($3, $4)
		 ORDER BY created_at DESC`,
		ownerID, primaryHash, domain.BatchStatusCompleted, domain.BatchStatusFailed)
	if err != nil {
		return nil, fmt.Errorf("historyRepo.ListTerminalBatches: %w", err)
	}
	return batches, nil
}

func (r *historyRepo) GetRecords(ctx context.Context, batchID uuid.UUID) ([]domain.ExpenseRecord, error) {
	var records []domain.ExpenseRecord
	err := r.db.SelectContext(ctx, &records,
		"SELECT * FROM expense_records WHERE batch_id = $1 ORDER BY person_name ASC, person_ref ASC",
		batchID)
	if err != nil {
		return nil, fmt.Errorf("historyRepo.GetRecords: %w", err)
	}
	return records, nil
}
