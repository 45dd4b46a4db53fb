package service

import (
	"context"

	"github.com/google/uuid"

	"expenso/internal/domain"
	"expenso/internal/port"
)

// UpdateRecordInput is the DTO for correcting a record's amounts.
type UpdateRecordInput struct {
	PrimaryAmount   *float64 `json:"primary_amount"`
	SecondaryAmount *float64 `json:"secondary_amount"`
}

// RecordService defines per-record operations: inspection, corrections, and
// issue resolution.
type RecordService interface {
	GetByID(ctx context.Context, ownerID, recordID uuid.UUID) (*domain.ExpenseRecord, error)
	Update(ctx context.Context, ownerID, recordID uuid.UUID, input UpdateRecordInput) (*domain.ExpenseRecord, error)
	ResolveIssue(ctx context.Context, ownerID, recordID uuid.UUID, flag domain.IssueFlag) (*domain.ExpenseRecord, error)
}

type recordService struct {
	repo port.RecordRepository
}

// NewRecordService creates a new RecordService implementation.
func NewRecordService(repo port.RecordRepository) RecordService {
	return &recordService{repo: repo}
}

func (s *recordService) GetByID(ctx context.Context, ownerID, recordID uuid.UUID) (*domain.ExpenseRecord, error) {
	return s.repo.GetByID(ctx, ownerID, recordID)
}

func (s *recordService) Update(ctx context.Context, ownerID, recordID uuid.UUID, input UpdateRecordInput) (*domain.ExpenseRecord, error) {
	rec, err := s.repo.GetByID(ctx, ownerID, recordID)
	if err != nil {
		return nil, err
	}

	if input.PrimaryAmount != nil {
		rec.PrimaryAmount = *input.PrimaryAmount
	}
	if input.SecondaryAmount != nil {
		rec.SecondaryAmount = *input.SecondaryAmount
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *recordService) ResolveIssue(ctx context.Context, ownerID, recordID uuid.UUID, flag domain.IssueFlag) (*domain.ExpenseRecord, error) {
	if err := s.repo.ResolveIssue(ctx, ownerID, recordID, flag); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, ownerID, recordID)
}
