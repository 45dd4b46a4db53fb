package service

import (
	"context"
	"log"
	"math"
	"time"

	"expenso/internal/domain"
	"expenso/internal/port"
)

// ProcessingService runs the per-record pipeline for a claimed batch: issue
// flagging, status transitions, and the batch outcome rollup.
type ProcessingService interface {
	ProcessBatch(ctx context.Context, batch *domain.Batch)
}

type processingService struct {
	batchRepo  port.BatchRepository
	recordRepo port.RecordRepository
	tolerance  float64
}

// NewProcessingService creates a new ProcessingService implementation.
// tolerance is the absolute amount difference treated as a receipt match.
func NewProcessingService(batchRepo port.BatchRepository, recordRepo port.RecordRepository, tolerance float64) ProcessingService {
	return &processingService{
		batchRepo:  batchRepo,
		recordRepo: recordRepo,
		tolerance:  tolerance,
	}
}

// ProcessBatch evaluates every pending record of the batch and finishes it.
// Carried records were settled by a previous batch and are counted as
// successes without re-evaluation. Errors fail the batch; they never panic
// the worker.
func (s *processingService) ProcessBatch(ctx context.Context, batch *domain.Batch) {
	records, err := s.recordRepo.ListByBatch(ctx, batch.OwnerID, batch.ID)
	if err != nil {
		log.Printf("processingService.ProcessBatch: listing records for batch %s: %v", batch.ID, err)
		_ = s.batchRepo.MarkFailed(ctx, batch.OwnerID, batch.ID, "listing records: "+err.Error())
		return
	}

	succeeded := 0
	for i := range records {
		rec := &records[i]
		if rec.Status == domain.RecordStatusCarried {
			succeeded++
			continue
		}

		flags := s.evaluate(rec)
		if err := rec.SetIssues(flags); err != nil {
			log.Printf("processingService.ProcessBatch: encoding issues for record %s: %v", rec.ID, err)
			_ = s.batchRepo.MarkFailed(ctx, batch.OwnerID, batch.ID, "encoding issues: "+err.Error())
			return
		}

		if len(flags) == 0 {
			rec.Status = domain.RecordStatusProcessed
			succeeded++
		} else {
			rec.Status = domain.RecordStatusFlagged
		}

		if err := s.recordRepo.Update(ctx, rec); err != nil {
			log.Printf("processingService.ProcessBatch: updating record %s: %v", rec.ID, err)
			_ = s.batchRepo.MarkFailed(ctx, batch.OwnerID, batch.ID, "updating record: "+err.Error())
			return
		}
	}

	successRate := 1.0
	if len(records) > 0 {
		successRate = float64(succeeded) / float64(len(records))
	}

	if err := s.batchRepo.MarkCompleted(ctx, batch.OwnerID, batch.ID, len(records), successRate, time.Now().UTC()); err != nil {
		log.Printf("processingService.ProcessBatch: completing batch %s: %v", batch.ID, err)
		return
	}
	log.Printf("processingService.ProcessBatch: batch %s completed (%d records, %.2f success rate)",
		batch.ID, len(records), successRate)
}

// evaluate recomputes a record's issue flags. Extraction-time flags that the
// pipeline cannot re-derive (duplicate_person) are preserved.
func (s *processingService) evaluate(rec *domain.ExpenseRecord) []domain.IssueFlag {
	var flags []domain.IssueFlag
	for _, f := range rec.Issues() {
		if f == domain.IssueDuplicatePerson {
			flags = append(flags, f)
		}
	}

	switch {
	case rec.PrimaryAmount == 0:
		flags = append(flags, domain.IssueMissingAmount)
	case rec.PrimaryAmount < 0:
		flags = append(flags, domain.IssueNegativeAmount)
	}

	if rec.SecondaryAmount != 0 && math.Abs(rec.PrimaryAmount-rec.SecondaryAmount) > s.tolerance {
		flags = append(flags, domain.IssueReceiptMismatch)
	}

	return flags
}
