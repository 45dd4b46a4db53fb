package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"expenso/internal/domain"
	"expenso/internal/port"
)

type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new PostgreSQL-backed StatsRepository.
func NewStatsRepo(db *sqlx.DB) port.StatsRepository {
	return &statsRepo{db: db}
}

const ownerBatchStatsQuery = `SELECT
	COUNT(*) AS total_batches,
	COUNT(CASE WHEN status = 'completed' THEN 1 END) AS completed_batches,
	COUNT(CASE WHEN status = 'failed' THEN 1 END) AS failed_batches,
	COUNT(CASE WHEN status = 'needs_review' THEN 1 END) AS pending_review,
	COALESCE(AVG(CASE WHEN status = 'completed' THEN success_rate END), 0) AS avg_success_rate
FROM batches WHERE owner_id = $1`

const ownerRecordStatsQuery = `SELECT
	COUNT(*) AS total_records,
	COUNT(CASE WHEN issue_flags != '[]'::jsonb THEN 1 END) AS records_with_issue
FROM expense_records WHERE owner_id = $1`

func (r *statsRepo) GetOwnerStats(ctx context.Context, ownerID uuid.UUID) (*domain.Stats, error) {
	var stats domain.Stats
	if err := r.db.GetContext(ctx, &stats, ownerBatchStatsQuery, ownerID); err != nil {
		return nil, fmt.Errorf("statsRepo.GetOwnerStats batches: %w", err)
	}

	var recStats struct {
		TotalRecords     int `db:"total_records"`
		RecordsWithIssue int `db:"records_with_issue"`
	}
	if err := r.db.GetContext(ctx, &recStats, ownerRecordStatsQuery, ownerID); err != nil {
		return nil, fmt.Errorf("statsRepo.GetOwnerStats records: %w", err)
	}
	stats.TotalRecords = recStats.TotalRecords
	stats.RecordsWithIssue = recStats.RecordsWithIssue

	return &stats, nil
}
