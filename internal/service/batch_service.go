package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"time"

	"github.com/google/uuid"

	"expenso/internal/domain"
	"expenso/internal/port"
	"expenso/internal/recon"
)

// SubmitInput is the DTO for a batch submission: both artifacts of the pair,
// straight off the multipart request.
type SubmitInput struct {
	OwnerID       uuid.UUID
	Primary       multipart.File
	PrimaryHeader *multipart.FileHeader
	Receipt       multipart.File
	ReceiptHeader *multipart.FileHeader
}

// SubmitResult pairs the created batch with the reconciliation verdict that
// decided its fate.
type SubmitResult struct {
	Batch     *domain.Batch     `json:"batch"`
	Detection *recon.DeltaResult `json:"detection"`
}

// ReviewDecision is the DTO for resolving a batch stuck in needs_review.
// Action reuses the recommendation vocabulary; skip and delta require a
// baseline chosen from the presented candidates.
type ReviewDecision struct {
	Action          domain.Recommendation `json:"action" binding:"required,oneof=skip_processing delta_processing full_processing"`
	BaselineBatchID *uuid.UUID            `json:"baseline_batch_id"`
}

// BatchService orchestrates the submission workflow: artifact upload,
// extraction, reconciliation, and the follow-through on the engine's
// recommendation.
type BatchService interface {
	Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error)
	GetByID(ctx context.Context, ownerID, batchID uuid.UUID) (*domain.Batch, error)
	List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Batch, int, error)
	ListRecords(ctx context.Context, ownerID, batchID uuid.UUID) ([]domain.ExpenseRecord, error)
	PreviewDelta(ctx context.Context, ownerID, batchID uuid.UUID) (*recon.DeltaResult, error)
	Resolve(ctx context.Context, ownerID, batchID uuid.UUID, decision ReviewDecision) (*domain.Batch, error)
}

type batchService struct {
	batchRepo  port.BatchRepository
	recordRepo port.RecordRepository
	userRepo   port.UserRepository
	files      FileService
	extractor  port.RecordExtractor
	engine     *recon.Engine
	notifier   port.ReviewNotifier
}

// NewBatchService creates a new BatchService implementation.
func NewBatchService(
	batchRepo port.BatchRepository,
	recordRepo port.RecordRepository,
	userRepo port.UserRepository,
	files FileService,
	extractor port.RecordExtractor,
	engine *recon.Engine,
	notifier port.ReviewNotifier,
) BatchService {
	return &batchService{
		batchRepo:  batchRepo,
		recordRepo: recordRepo,
		userRepo:   userRepo,
		files:      files,
		extractor:  extractor,
		engine:     engine,
		notifier:   notifier,
	}
}

func (s *batchService) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if input.Primary == nil || input.Receipt == nil {
		return nil, domain.ErrMissingArtifact
	}

	primaryMeta, primaryBytes, err := s.files.UploadArtifact(ctx, ArtifactUploadInput{
		OwnerID: input.OwnerID,
		Kind:    domain.ArtifactPrimaryLedger,
		File:    input.Primary,
		Header:  input.PrimaryHeader,
	})
	if err != nil {
		return nil, err
	}

	receiptMeta, receiptBytes, err := s.files.UploadArtifact(ctx, ArtifactUploadInput{
		OwnerID: input.OwnerID,
		Kind:    domain.ArtifactReceiptLedger,
		File:    input.Receipt,
		Header:  input.ReceiptHeader,
	})
	if err != nil {
		return nil, err
	}

	batch := &domain.Batch{
		ID:            uuid.New(),
		OwnerID:       input.OwnerID,
		Status:        domain.BatchStatusPending,
		PrimaryFileID: primaryMeta.ID,
		ReceiptFileID: receiptMeta.ID,
		PrimaryHash:   primaryMeta.ContentHash,
		ReceiptHash:   receiptMeta.ContentHash,
	}
	if err := s.batchRepo.Create(ctx, batch); err != nil {
		return nil, err
	}

	records, err := s.extractor.Extract(ctx, port.ExtractInput{
		PrimaryBytes: primaryBytes,
		ReceiptBytes: receiptBytes,
		ContentType:  primaryMeta.ContentType,
	})
	if err != nil {
		log.Printf("batchService.Submit: extraction failed for batch %s: %v", batch.ID, err)
		_ = s.batchRepo.MarkFailed(ctx, batch.OwnerID, batch.ID, err.Error())
		return nil, err
	}
	for i := range records {
		records[i].BatchID = batch.ID
		records[i].OwnerID = batch.OwnerID
	}

	detection, err := s.engine.DetectDelta(ctx, recon.DetectInput{
		OwnerID:        batch.OwnerID,
		PrimaryHash:    batch.PrimaryHash,
		ReceiptHash:    batch.ReceiptHash,
		CurrentRecords: records,
	})
	if err != nil {
		// Inconsistencies and malformed hashes fail the batch loudly. The
		// degradation path inside the engine never reaches here.
		log.Printf("batchService.Submit: reconciliation failed for batch %s: %v", batch.ID, err)
		_ = s.batchRepo.MarkFailed(ctx, batch.OwnerID, batch.ID, err.Error())
		return nil, err
	}

	if err := s.applyOutcome(ctx, batch, records, detection); err != nil {
		return nil, err
	}

	return &SubmitResult{Batch: batch, Detection: detection.Result}, nil
}

// applyOutcome transitions the freshly created batch according to the
// engine's recommendation and persists the appropriate record set.
func (s *batchService) applyOutcome(ctx context.Context, batch *domain.Batch, records []domain.ExpenseRecord, detection *recon.Detection) error {
	outcome := detection.Outcome
	batch.Recommendation = outcome.Recommendation
	if outcome.Candidate != nil {
		id := outcome.Candidate.Batch.ID
		batch.BaselineBatchID = &id
	}

	switch outcome.Recommendation {
	case domain.RecommendSkip:
		return s.completeFromBaseline(ctx, batch, &outcome.Candidate.Batch)

	case domain.RecommendDelta:
		staged := stageDeltaRecords(batch, records, outcome.Diff)
		if err := s.recordRepo.CreateMany(ctx, staged); err != nil {
			return err
		}
		batch.Status = domain.BatchStatusQueued
		return s.batchRepo.UpdateOutcome(ctx, batch)

	case domain.RecommendReview:
		if err := s.recordRepo.CreateMany(ctx, records); err != nil {
			return err
		}
		batch.Status = domain.BatchStatusNeedsReview
		if err := s.batchRepo.UpdateOutcome(ctx, batch); err != nil {
			return err
		}
		s.notifyReviewRequired(ctx, batch)
		return nil

	default: // full_processing
		if err := s.recordRepo.CreateMany(ctx, records); err != nil {
			return err
		}
		batch.Status = domain.BatchStatusQueued
		return s.batchRepo.UpdateOutcome(ctx, batch)
	}
}

// completeFromBaseline finishes a skip_processing batch immediately: the
// baseline's records are copied over as carried and the baseline's outcome
// counts become this batch's outcome.
func (s *batchService) completeFromBaseline(ctx context.Context, batch *domain.Batch, baseline *domain.Batch) error {
	baselineRecords, err := s.recordRepo.ListByBatch(ctx, batch.OwnerID, baseline.ID)
	if err != nil {
		return err
	}

	carried := make([]domain.ExpenseRecord, len(baselineRecords))
	for i := range baselineRecords {
		carried[i] = baselineRecords[i]
		carried[i].ID = uuid.New()
		carried[i].BatchID = batch.ID
		carried[i].Status = domain.RecordStatusCarried
	}
	if err := s.recordRepo.CreateMany(ctx, carried); err != nil {
		return err
	}

	now := time.Now().UTC()
	batch.Status = domain.BatchStatusCompleted
	batch.RecordCount = len(carried)
	batch.SuccessRate = baseline.SuccessRate
	batch.CompletedAt = &now
	return s.batchRepo.UpdateOutcome(ctx, batch)
}

// stageDeltaRecords marks the unchanged part of a delta batch as carried so
// the worker only re-processes what actually changed. Records absent from the
// diff (the engine degraded or the diff is nil) stay pending.
func stageDeltaRecords(batch *domain.Batch, records []domain.ExpenseRecord, diff *recon.Diff) []domain.ExpenseRecord {
	if diff == nil {
		return records
	}

	unchanged := make(map[domain.RecordKey]bool, len(diff.Unchanged))
	for i := range diff.Unchanged {
		unchanged[diff.Unchanged[i].Key()] = true
	}

	staged := make([]domain.ExpenseRecord, len(records))
	for i := range records {
		staged[i] = records[i]
		if unchanged[records[i].Key()] {
			staged[i].Status = domain.RecordStatusCarried
		}
	}
	return staged
}

func (s *batchService) notifyReviewRequired(ctx context.Context, batch *domain.Batch) {
	owner, err := s.userRepo.GetByID(ctx, batch.OwnerID)
	if err != nil {
		log.Printf("batchService: looking up owner %s for review notification: %v", batch.OwnerID, err)
		return
	}
	if err := s.notifier.SendReviewRequired(ctx, owner.Email, owner.FullName, batch.ID); err != nil {
		log.Printf("batchService: sending review notification for batch %s: %v", batch.ID, err)
	}
}

func (s *batchService) GetByID(ctx context.Context, ownerID, batchID uuid.UUID) (*domain.Batch, error) {
	return s.batchRepo.GetByID(ctx, ownerID, batchID)
}

func (s *batchService) List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Batch, int, error) {
	return s.batchRepo.ListByOwner(ctx, ownerID, offset, limit)
}

func (s *batchService) ListRecords(ctx context.Context, ownerID, batchID uuid.UUID) ([]domain.ExpenseRecord, error) {
	if _, err := s.batchRepo.GetByID(ctx, ownerID, batchID); err != nil {
		return nil, err
	}
	return s.recordRepo.ListByBatch(ctx, ownerID, batchID)
}

// PreviewDelta re-runs reconciliation for an existing batch without changing
// its state. Useful for inspecting why a batch ended up in review.
func (s *batchService) PreviewDelta(ctx context.Context, ownerID, batchID uuid.UUID) (*recon.DeltaResult, error) {
	batch, err := s.batchRepo.GetByID(ctx, ownerID, batchID)
	if err != nil {
		return nil, err
	}
	records, err := s.recordRepo.ListByBatch(ctx, ownerID, batchID)
	if err != nil {
		return nil, err
	}

	detection, err := s.engine.DetectDelta(ctx, recon.DetectInput{
		OwnerID:        ownerID,
		PrimaryHash:    batch.PrimaryHash,
		ReceiptHash:    batch.ReceiptHash,
		CurrentRecords: records,
	})
	if err != nil {
		return nil, err
	}
	return detection.Result, nil
}

func (s *batchService) Resolve(ctx context.Context, ownerID, batchID uuid.UUID, decision ReviewDecision) (*domain.Batch, error) {
	batch, err := s.batchRepo.GetByID(ctx, ownerID, batchID)
	if err != nil {
		return nil, err
	}
	if batch.Status != domain.BatchStatusNeedsReview {
		return nil, domain.ErrBatchNotReviewable
	}

	switch decision.Action {
	case domain.RecommendFull:
		batch.Recommendation = domain.RecommendFull
		batch.BaselineBatchID = nil
		batch.Status = domain.BatchStatusQueued
		if err := s.batchRepo.UpdateOutcome(ctx, batch); err != nil {
			return nil, err
		}
		return batch, nil

	case domain.RecommendDelta, domain.RecommendSkip:
		baseline, err := s.resolveBaseline(ctx, ownerID, decision.BaselineBatchID)
		if err != nil {
			return nil, err
		}
		batch.BaselineBatchID = &baseline.ID
		batch.Recommendation = decision.Action

		if decision.Action == domain.RecommendSkip {
			// The batch's own records are already persisted from the review
			// path; accepting a baseline wholesale carries them as-is.
			if err := s.recordRepo.MarkBatchCarried(ctx, ownerID, batch.ID); err != nil {
				return nil, err
			}
			records, err := s.recordRepo.ListByBatch(ctx, ownerID, batch.ID)
			if err != nil {
				return nil, err
			}
			now := time.Now().UTC()
			batch.Status = domain.BatchStatusCompleted
			batch.RecordCount = len(records)
			batch.SuccessRate = baseline.SuccessRate
			batch.CompletedAt = &now
			if err := s.batchRepo.UpdateOutcome(ctx, batch); err != nil {
				return nil, err
			}
			return batch, nil
		}

		// Delta against a reviewer-chosen baseline: carry the unchanged
		// records so the worker only re-processes what actually changed.
		if err := s.carryUnchangedAgainstBaseline(ctx, ownerID, batch, baseline); err != nil {
			return nil, err
		}
		batch.Status = domain.BatchStatusQueued
		if err := s.batchRepo.UpdateOutcome(ctx, batch); err != nil {
			return nil, err
		}
		return batch, nil

	default:
		return nil, fmt.Errorf("batchService.Resolve: unsupported action %q", decision.Action)
	}
}

// carryUnchangedAgainstBaseline reconciles a batch's persisted records
// against the baseline's and flips the unchanged ones to carried. It is the
// review-path counterpart of stageDeltaRecords, which does the same for
// records that have not been persisted yet.
func (s *batchService) carryUnchangedAgainstBaseline(ctx context.Context, ownerID uuid.UUID, batch, baseline *domain.Batch) error {
	records, err := s.recordRepo.ListByBatch(ctx, ownerID, batch.ID)
	if err != nil {
		return err
	}
	baselineRecords, err := s.recordRepo.ListByBatch(ctx, ownerID, baseline.ID)
	if err != nil {
		return err
	}

	diff, err := recon.Reconcile(records, baselineRecords, s.engine.Policy().AmountTolerance)
	if err != nil {
		return err
	}

	unchanged := make(map[domain.RecordKey]bool, len(diff.Unchanged))
	for i := range diff.Unchanged {
		unchanged[diff.Unchanged[i].Key()] = true
	}
	for i := range records {
		if !unchanged[records[i].Key()] || records[i].Status == domain.RecordStatusCarried {
			continue
		}
		records[i].Status = domain.RecordStatusCarried
		if err := s.recordRepo.Update(ctx, &records[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *batchService) resolveBaseline(ctx context.Context, ownerID uuid.UUID, baselineID *uuid.UUID) (*domain.Batch, error) {
	if baselineID == nil {
		return nil, domain.ErrBatchNotReviewable
	}
	baseline, err := s.batchRepo.GetByID(ctx, ownerID, *baselineID)
	if err != nil {
		if errors.Is(err, domain.ErrBatchNotFound) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, err
	}
	if !baseline.Status.IsTerminal() {
		return nil, domain.ErrBatchNotReviewable
	}
	return baseline, nil
}
