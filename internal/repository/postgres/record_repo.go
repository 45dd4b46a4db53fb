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

type recordRepo struct {
	db *sqlx.DB
}

// NewRecordRepo creates a new PostgreSQL-backed RecordRepository.
func NewRecordRepo(db *sqlx.DB) port.RecordRepository {
	return &recordRepo{db: db}
}

func (r *recordRepo) CreateMany(ctx context.Context, records []domain.ExpenseRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for i := range records {
		records[i].CreatedAt = now
		records[i].UpdatedAt = now
		if len(records[i].IssueFlags) == 0 {
			records[i].IssueFlags = []byte("[]")
		}
	}

	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO expense_records
		 (id, batch_id, owner_id, person_name, person_ref, primary_amount, secondary_amount,
		  issue_flags, status, created_at, updated_at)
		 VALUES (:id, :batch_id, :owner_id, :person_name, :person_ref, :primary_amount,
		  :secondary_amount, :issue_flags, :status, :created_at, :updated_at)`,
		records)
	if err != nil {
		return fmt.Errorf("recordRepo.CreateMany: %w", err)
	}
	return nil
}

func (r *recordRepo) GetByID(ctx context.Context, ownerID, recordID uuid.UUID) (*domain.ExpenseRecord, error) {
	var rec domain.ExpenseRecord
	err := r.db.GetContext(ctx, &rec,
		"SELECT * FROM expense_records WHERE id = $1 AND owner_id = $2", recordID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("recordRepo.GetByID: %w", err)
	}
	return &rec, nil
}

func (r *recordRepo) ListByBatch(ctx context.Context, ownerID, batchID uuid.UUID) ([]domain.ExpenseRecord, error) {
	var records []domain.ExpenseRecord
	err := r.db.SelectContext(ctx, &records,
		`SELECT * FROM expense_records
		 WHERE batch_id = $1 AND owner_id = $2
		 ORDER BY person_name ASC, person_ref ASC`,
		batchID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("recordRepo.ListByBatch: %w", err)
	}
	return records, nil
}

func (r *recordRepo) Update(ctx context.Context, record *domain.ExpenseRecord) error {
	record.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE expense_records
		 SET primary_amount = $1, secondary_amount = $2, issue_flags = $3, status = $4, updated_at = $5
		 WHERE id = $6 AND owner_id = $7`,
		record.PrimaryAmount, record.SecondaryAmount, record.IssueFlags, record.Status,
		record.UpdatedAt, record.ID, record.OwnerID)
	if err != nil {
		return fmt.Errorf("recordRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (r *recordRepo) MarkBatchCarried(ctx context.Context, ownerID, batchID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE expense_records SET status = $1, updated_at = $2
		 WHERE batch_id = $3 AND owner_id = $4`,
		domain.RecordStatusCarried, time.Now().UTC(), batchID, ownerID)
	if err != nil {
		return fmt.Errorf("recordRepo.MarkBatchCarried: %w", err)
	}
	return nil
}

func (r *recordRepo) ResolveIssue(ctx context.Context, ownerID, recordID uuid.UUID, flag domain.IssueFlag) error {
	rec, err := r.GetByID(ctx, ownerID, recordID)
	if err != nil {
		return err
	}

	flags := rec.Issues()
	kept := make([]domain.IssueFlag, 0, len(flags))
	for _, f := range flags {
		if f != flag {
			kept = append(kept, f)
		}
	}
	if err := rec.SetIssues(kept); err != nil {
		return fmt.Errorf("recordRepo.ResolveIssue: %w", err)
	}
	if len(kept) == 0 && rec.Status == domain.RecordStatusFlagged {
		rec.Status = domain.RecordStatusProcessed
	}
	return r.Update(ctx, rec)
}
