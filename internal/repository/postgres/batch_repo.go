package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"expenso/internal/domain"
	"expenso/internal/port"
)

type batchRepo struct {
	db *sqlx.DB
}

// NewBatchRepo creates a new PostgreSQL-backed BatchRepository.
func NewBatchRepo(db *sqlx.DB) port.BatchRepository {
	return &batchRepo{db: db}
}

func (r *batchRepo) Create(ctx context.Context, batch *domain.Batch) error {
	now := time.Now().UTC()
	batch.CreatedAt = now
	batch.UpdatedAt = now

	query := `INSERT INTO batches
		(id, owner_id, status, primary_file_id, receipt_file_id, primary_hash, receipt_hash,
		 record_count, success_rate, recommendation, baseline_batch_id, failure_reason,
		 created_at, updated_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.ExecContext(ctx, query,
		batch.ID, batch.OwnerID, batch.Status, batch.PrimaryFileID, batch.ReceiptFileID,
		batch.PrimaryHash, batch.ReceiptHash, batch.RecordCount, batch.SuccessRate,
		batch.Recommendation, batch.BaselineBatchID, batch.FailureReason,
		batch.CreatedAt, batch.UpdatedAt, batch.CompletedAt)
	if err != nil {
		return fmt.Errorf("batchRepo.Create: %w", err)
	}
	return nil
}

func (r *batchRepo) GetByID(ctx context.Context, ownerID, batchID uuid.UUID) (*domain.Batch, error) {
	var batch domain.Batch
	err := r.db.GetContext(ctx, &batch,
		"SELECT * FROM batches WHERE id = $1 AND owner_id = $2", batchID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, fmt.Errorf("batchRepo.GetByID: %w", err)
	}
	return &batch, nil
}

func (r *batchRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Batch, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM batches WHERE owner_id = $1", ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("batchRepo.ListByOwner count: %w", err)
	}

	var batches []domain.Batch
	err = r.db.SelectContext(ctx, &batches,
		`SELECT * FROM batches
		 WHERE owner_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("batchRepo.ListByOwner: %w", err)
	}
	return batches, total, nil
}

func (r *batchRepo) UpdateStatus(ctx context.Context, ownerID, batchID uuid.UUID, status domain.BatchStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE batches SET status = $1, updated_at = $2 WHERE id = $3 AND owner_id = $4",
		status, time.Now().UTC(), batchID, ownerID)
	if err != nil {
		return fmt.Errorf("batchRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrBatchNotFound
	}
	return nil
}

func (r *batchRepo) UpdateOutcome(ctx context.Context, batch *domain.Batch) error {
	batch.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE batches
		 SET status = $1, recommendation = $2, baseline_batch_id = $3, record_count = $4,
		     success_rate = $5, failure_reason = $6, updated_at = $7, completed_at = $8
		 WHERE id = $9 AND owner_id = $10`,
		batch.Status, batch.Recommendation, batch.BaselineBatchID, batch.RecordCount,
		batch.SuccessRate, batch.FailureReason, batch.UpdatedAt, batch.CompletedAt,
		batch.ID, batch.OwnerID)
	if err != nil {
		return fmt.Errorf("batchRepo.UpdateOutcome: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrBatchNotFound
	}
	return nil
}

func (r *batchRepo) MarkCompleted(ctx context.Context, ownerID, batchID uuid.UUID, recordCount int, successRate float64, completedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE batches
		 SET status = $1, record_count = $2, success_rate = $3, completed_at = $4, updated_at = $5
		 WHERE id = $6 AND owner_id = $7`,
		domain.BatchStatusCompleted, recordCount, successRate, completedAt, time.Now().UTC(),
		batchID, ownerID)
	if err != nil {
		return fmt.Errorf("batchRepo.MarkCompleted: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrBatchNotFound
	}
	return nil
}

func (r *batchRepo) MarkFailed(ctx context.Context, ownerID, batchID uuid.UUID, reason string) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE batches
		 SET status = $1, failure_reason = $2, completed_at = $3, updated_at = $4
		 WHERE id = $5 AND owner_id = $6`,
		domain.BatchStatusFailed, reason, now, now, batchID, ownerID)
	if err != nil {
		return fmt.Errorf("batchRepo.MarkFailed: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrBatchNotFound
	}
	return nil
}

// ClaimQueued moves up to limit queued batches to processing in one statement
// so concurrent workers never claim the same batch. FOR UPDATE SKIP LOCKED
// keeps pollers from blocking each other.
func (r *batchRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Batch, error) {
	var batches []domain.Batch
	err := r.db.SelectContext(ctx, &batches,
		`UPDATE batches SET status = $1, updated_at = $2
		 WHERE id IN (
			SELECT id FROM batches
			WHERE status = $3
			ORDER BY created_at ASC
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		domain.BatchStatusProcessing, time.Now().UTC(), domain.BatchStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("batchRepo.ClaimQueued: %w", err)
	}
	return batches, nil
}
