package service_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"expenso/internal/domain"
	"expenso/internal/recon"
	"expenso/internal/service"
	"expenso/mocks"
)

const (
	hashPrimary = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	hashReceipt = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	hashOther   = "cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc"
)

type fakeUpload struct {
	*bytes.Reader
}

func (f fakeUpload) Close() error { return nil }

func newFakeFile(content string) multipart.File {
	return fakeUpload{bytes.NewReader([]byte(content))}
}

type batchFixture struct {
	batchRepo  *mocks.MockBatchRepo
	recordRepo *mocks.MockRecordRepo
	userRepo   *mocks.MockUserRepo
	files      *mocks.MockFileService
	extractor  *mocks.MockRecordExtractor
	history    *mocks.MockBatchHistory
	notifier   *mocks.MockReviewNotifier
	svc        service.BatchService
}

func newBatchFixture() *batchFixture {
	f := &batchFixture{
		batchRepo:  new(mocks.MockBatchRepo),
		recordRepo: new(mocks.MockRecordRepo),
		userRepo:   new(mocks.MockUserRepo),
		files:      new(mocks.MockFileService),
		extractor:  new(mocks.MockRecordExtractor),
		history:    new(mocks.MockBatchHistory),
		notifier:   new(mocks.MockReviewNotifier),
	}
	engine := recon.NewEngine(f.history, recon.DefaultPolicy(), 3*time.Second)
	f.svc = service.NewBatchService(f.batchRepo, f.recordRepo, f.userRepo, f.files, f.extractor, engine, f.notifier)
	return f
}

func (f *batchFixture) expectUploads(ownerID uuid.UUID) {
	primaryMeta := &domain.FileMeta{ID: uuid.New(), OwnerID: ownerID, ContentHash: hashPrimary, ContentType: "text/csv"}
	receiptMeta := &domain.FileMeta{ID: uuid.New(), OwnerID: ownerID, ContentHash: hashReceipt, ContentType: "text/csv"}

	f.files.On("UploadArtifact", mock.Anything, mock.MatchedBy(func(in service.ArtifactUploadInput) bool {
		return in.Kind == domain.ArtifactPrimaryLedger
	})).Return(primaryMeta, []byte("primary"), nil)
	f.files.On("UploadArtifact", mock.Anything, mock.MatchedBy(func(in service.ArtifactUploadInput) bool {
		return in.Kind == domain.ArtifactReceiptLedger
	})).Return(receiptMeta, []byte("receipt"), nil)
}

func expenseRec(name, ref string, primary, secondary float64) domain.ExpenseRecord {
	return domain.ExpenseRecord{
		ID:              uuid.New(),
		PersonName:      name,
		PersonRef:       ref,
		PrimaryAmount:   primary,
		SecondaryAmount: secondary,
		Status:          domain.RecordStatusPending,
	}
}

func submitInput(ownerID uuid.UUID) service.SubmitInput {
	return service.SubmitInput{
		OwnerID:       ownerID,
		Primary:       newFakeFile("primary"),
		PrimaryHeader: &multipart.FileHeader{Filename: "ledger.csv"},
		Receipt:       newFakeFile("receipt"),
		ReceiptHeader: &multipart.FileHeader{Filename: "receipts.csv"},
	}
}

func TestBatchService_Submit_MissingArtifact(t *testing.T) {
	f := newBatchFixture()

	_, err := f.svc.Submit(context.Background(), service.SubmitInput{
		OwnerID: uuid.New(),
		Primary: newFakeFile("primary"),
	})
	assert.ErrorIs(t, err, domain.ErrMissingArtifact)
}

func TestBatchService_Submit_NoHistoryQueuesFullProcessing(t *testing.T) {
	f := newBatchFixture()
	ownerID := uuid.New()
	f.expectUploads(ownerID)

	records := []domain.ExpenseRecord{expenseRec("Asha Rao", "EMP-042", 1250.50, 1250.50)}

	f.batchRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Batch")).Return(nil)
	f.extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).Return(records, nil)
	f.history.On("ListTerminalBatches", mock.Anything, ownerID, hashPrimary).Return([]domain.Batch{}, nil)
	f.recordRepo.On("CreateMany", mock.Anything, mock.AnythingOfType("[]domain.ExpenseRecord")).Return(nil)
	f.batchRepo.On("UpdateOutcome", mock.Anything, mock.AnythingOfType("*domain.Batch")).Return(nil)

	result, err := f.svc.Submit(context.Background(), submitInput(ownerID))
	require.NoError(t, err)

	assert.Equal(t, domain.BatchStatusQueued, result.Batch.Status)
	assert.Equal(t, domain.RecommendFull, result.Batch.Recommendation)
	assert.Nil(t, result.Batch.BaselineBatchID)
	assert.Equal(t, domain.RecommendFull, result.Detection.Recommendation)
	f.batchRepo.AssertExpectations(t)
	f.recordRepo.AssertExpectations(t)
}

func TestBatchService_Submit_ExactMatchCompletesFromBaseline(t *testing.T) {
	f := newBatchFixture()
	ownerID := uuid.New()
	f.expectUploads(ownerID)

	baseline := domain.Batch{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Status:      domain.BatchStatusCompleted,
		PrimaryHash: hashPrimary,
		ReceiptHash: hashReceipt,
		SuccessRate: 0.85,
		CreatedAt:   time.Now().UTC().Add(-24 * time.Hour),
	}
	baselineRecords := []domain.ExpenseRecord{
		expenseRec("Asha Rao", "EMP-042", 1250.50, 1250.50),
		expenseRec("Ben Okafor", "EMP-007", 830.00, 830.00),
	}

	f.batchRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Batch")).Return(nil)
	f.extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).
		Return([]domain.ExpenseRecord{expenseRec("Asha Rao", "EMP-042", 1250.50, 1250.50)}, nil)
	f.history.On("ListTerminalBatches", mock.Anything, ownerID, hashPrimary).Return([]domain.Batch{baseline}, nil)
	f.recordRepo.On("ListByBatch", mock.Anything, ownerID, baseline.ID).Return(baselineRecords, nil)
	f.recordRepo.On("CreateMany", mock.Anything, mock.MatchedBy(func(recs []domain.ExpenseRecord) bool {
		if len(recs) != 2 {
			return false
		}
		for _, r := range recs {
			if r.Status != domain.RecordStatusCarried {
				return false
			}
		}
		return true
	})).Return(nil)
	f.batchRepo.On("UpdateOutcome", mock.Anything, mock.AnythingOfType("*domain.Batch")).Return(nil)

	result, err := f.svc.Submit(context.Background(), submitInput(ownerID))
	require.NoError(t, err)

	assert.Equal(t, domain.BatchStatusCompleted, result.Batch.Status)
	assert.Equal(t, domain.RecommendSkip, result.Batch.Recommendation)
	require.NotNil(t, result.Batch.BaselineBatchID)
	assert.Equal(t, baseline.ID, *result.Batch.BaselineBatchID)
	assert.Equal(t, 2, result.Batch.RecordCount)
	assert.Equal(t, 0.85, result.Batch.SuccessRate)
	assert.NotNil(t, result.Batch.CompletedAt)
	f.recordRepo.AssertExpectations(t)
}

func TestBatchService_Submit_PartialMatchStagesDeltaRecords(t *testing.T) {
	f := newBatchFixture()
	ownerID := uuid.New()
	f.expectUploads(ownerID)

	baseline := domain.Batch{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Status:      domain.BatchStatusCompleted,
		PrimaryHash: hashPrimary,
		ReceiptHash: hashOther,
		SuccessRate: 1.0,
		CreatedAt:   time.Now().UTC(),
	}
	baselineRecords := []domain.ExpenseRecord{
		expenseRec("Asha Rao", "EMP-042", 1250.50, 1250.50),
		expenseRec("Ben Okafor", "EMP-007", 830.00, 830.00),
	}
	current := []domain.ExpenseRecord{
		expenseRec("Asha Rao", "EMP-042", 1250.50, 1250.50),
		expenseRec("Ben Okafor", "EMP-007", 900.00, 900.00),
	}

	f.batchRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Batch")).Return(nil)
	f.extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).Return(current, nil)
	f.history.On("ListTerminalBatches", mock.Anything, ownerID, hashPrimary).Return([]domain.Batch{baseline}, nil)
	f.history.On("GetRecords", mock.Anything, baseline.ID).Return(baselineRecords, nil)

	// The unchanged record is staged as carried so the worker skips it.
	f.recordRepo.On("CreateMany", mock.Anything, mock.MatchedBy(func(recs []domain.ExpenseRecord) bool {
		if len(recs) != 2 {
			return false
		}
		byName := map[string]domain.RecordStatus{}
		for _, r := range recs {
			byName[r.PersonName] = r.Status
		}
		return byName["Asha Rao"] == domain.RecordStatusCarried &&
			byName["Ben Okafor"] == domain.RecordStatusPending
	})).Return(nil)
	f.batchRepo.On("UpdateOutcome", mock.Anything, mock.AnythingOfType("*domain.Batch")).Return(nil)

	result, err := f.svc.Submit(context.Background(), submitInput(ownerID))
	require.NoError(t, err)

	assert.Equal(t, domain.BatchStatusQueued, result.Batch.Status)
	assert.Equal(t, domain.RecommendDelta, result.Batch.Recommendation)
	f.recordRepo.AssertExpectations(t)
}

func TestBatchService_Submit_NearTieGoesToReviewAndNotifies(t *testing.T) {
	f := newBatchFixture()
	ownerID := uuid.New()
	f.expectUploads(ownerID)

	now := time.Now().UTC()
	first := domain.Batch{
		ID: uuid.New(), OwnerID: ownerID, Status: domain.BatchStatusCompleted,
		PrimaryHash: hashPrimary, ReceiptHash: hashOther, SuccessRate: 1.0, CreatedAt: now,
	}
	second := domain.Batch{
		ID: uuid.New(), OwnerID: ownerID, Status: domain.BatchStatusCompleted,
		PrimaryHash: hashPrimary, ReceiptHash: hashOther, SuccessRate: 1.0, CreatedAt: now,
	}

	f.batchRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Batch")).Return(nil)
	f.extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).
		Return([]domain.ExpenseRecord{expenseRec("Asha Rao", "EMP-042", 500.00, 500.00)}, nil)
	f.history.On("ListTerminalBatches", mock.Anything, ownerID, hashPrimary).
		Return([]domain.Batch{first, second}, nil)
	f.history.On("GetRecords", mock.Anything, first.ID).
		Return([]domain.ExpenseRecord{expenseRec("Asha Rao", "EMP-042", 100.00, 100.00)}, nil)
	f.recordRepo.On("CreateMany", mock.Anything, mock.AnythingOfType("[]domain.ExpenseRecord")).Return(nil)
	f.batchRepo.On("UpdateOutcome", mock.Anything, mock.AnythingOfType("*domain.Batch")).Return(nil)

	owner := &domain.User{ID: ownerID, Email: "owner@test.com", FullName: "Owner"}
	f.userRepo.On("GetByID", mock.Anything, ownerID).Return(owner, nil)
	f.notifier.On("SendReviewRequired", mock.Anything, "owner@test.com", "Owner", mock.AnythingOfType("uuid.UUID")).Return(nil)

	result, err := f.svc.Submit(context.Background(), submitInput(ownerID))
	require.NoError(t, err)

	assert.Equal(t, domain.BatchStatusNeedsReview, result.Batch.Status)
	assert.Equal(t, domain.RecommendReview, result.Batch.Recommendation)
	f.notifier.AssertExpectations(t)
}

func TestBatchService_Submit_NotifierFailureDoesNotFailSubmit(t *testing.T) {
	f := newBatchFixture()
	ownerID := uuid.New()
	f.expectUploads(ownerID)

	now := time.Now().UTC()
	first := domain.Batch{
		ID: uuid.New(), OwnerID: ownerID, Status: domain.BatchStatusCompleted,
		PrimaryHash: hashPrimary, ReceiptHash: hashOther, SuccessRate: 1.0, CreatedAt: now,
	}
	second := first
	second.ID = uuid.New()

	f.batchRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Batch")).Return(nil)
	f.extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).
		Return([]domain.ExpenseRecord{expenseRec("Asha Rao", "EMP-042", 500.00, 500.00)}, nil)
	f.history.On("ListTerminalBatches", mock.Anything, ownerID, hashPrimary).
		Return([]domain.Batch{first, second}, nil)
	f.history.On("GetRecords", mock.Anything, first.ID).
		Return([]domain.ExpenseRecord{expenseRec("Asha Rao", "EMP-042", 100.00, 100.00)}, nil)
	f.recordRepo.On("CreateMany", mock.Anything, mock.AnythingOfType("[]domain.ExpenseRecord")).Return(nil)
	f.batchRepo.On("UpdateOutcome", mock.Anything, mock.AnythingOfType("*domain.Batch")).Return(nil)
	f.userRepo.On("GetByID", mock.Anything, ownerID).Return(nil, errors.New("db error"))

	result, err := f.svc.Submit(context.Background(), submitInput(ownerID))
	require.NoError(t, err)
	assert.Equal(t, domain.BatchStatusNeedsReview, result.Batch.Status)
}

func TestBatchService_Submit_ExtractionFailureMarksBatchFailed(t *testing.T) {
	f := newBatchFixture()
	ownerID := uuid.New()
	f.expectUploads(ownerID)

	extractErr := errors.New("malformed csv: " + domain.ErrExtractionFailed.Error())
	f.batchRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Batch")).Return(nil)
	f.extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).Return(nil, extractErr)
	f.batchRepo.On("MarkFailed", mock.Anything, ownerID, mock.AnythingOfType("uuid.UUID"), extractErr.Error()).Return(nil)

	_, err := f.svc.Submit(context.Background(), submitInput(ownerID))
	assert.Error(t, err)
	f.batchRepo.AssertCalled(t, "MarkFailed", mock.Anything, ownerID, mock.AnythingOfType("uuid.UUID"), extractErr.Error())
}

func TestBatchService_Submit_HistoryOutageDegradesToFull(t *testing.T) {
	f := newBatchFixture()
	ownerID := uuid.New()
	f.expectUploads(ownerID)

	f.batchRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Batch")).Return(nil)
	f.extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).
		Return([]domain.ExpenseRecord{expenseRec("Asha Rao", "EMP-042", 100.00, 100.00)}, nil)
	f.history.On("ListTerminalBatches", mock.Anything, ownerID, hashPrimary).
		Return(nil, errors.New("history down"))
	f.recordRepo.On("CreateMany", mock.Anything, mock.AnythingOfType("[]domain.ExpenseRecord")).Return(nil)
	f.batchRepo.On("UpdateOutcome", mock.Anything, mock.AnythingOfType("*domain.Batch")).Return(nil)

	result, err := f.svc.Submit(context.Background(), submitInput(ownerID))
	require.NoError(t, err)

	assert.Equal(t, domain.BatchStatusQueued, result.Batch.Status)
	assert.True(t, result.Detection.Degraded)
	assert.Equal(t, domain.RecommendFull, result.Detection.Recommendation)
}

func TestBatchService_ListRecords_UnknownBatch(t *testing.T) {
	f := newBatchFixture()
	ownerID := uuid.New()
	batchID := uuid.New()

	f.batchRepo.On("GetByID", mock.Anything, ownerID, batchID).Return(nil, domain.ErrBatchNotFound)

	_, err := f.svc.ListRecords(context.Background(), ownerID, batchID)
	assert.ErrorIs(t, err, domain.ErrBatchNotFound)
}

func TestBatchService_Resolve_NotReviewable(t *testing.T) {
	f := newBatchFixture()
	ownerID := uuid.New()
	batchID := uuid.New()

	f.batchRepo.On("GetByID", mock.Anything, ownerID, batchID).
		Return(&domain.Batch{ID: batchID, OwnerID: ownerID, Status: domain.BatchStatusCompleted}, nil)

	_, err := f.svc.Resolve(context.Background(), ownerID, batchID, service.ReviewDecision{Action: domain.RecommendFull})
	assert.ErrorIs(t, err, domain.ErrBatchNotReviewable)
}

func TestBatchService_Resolve_FullQueuesWithoutBaseline(t *testing.T) {
	f := newBatchFixture()
	ownerID := uuid.New()
	batchID := uuid.New()
	baselineID := uuid.New()

	batch := &domain.Batch{
		ID: batchID, OwnerID: ownerID, Status: domain.BatchStatusNeedsReview,
		Recommendation: domain.RecommendReview, BaselineBatchID: &baselineID,
	}
	f.batchRepo.On("GetByID", mock.Anything, ownerID, batchID).Return(batch, nil)
	f.batchRepo.On("UpdateOutcome", mock.Anything, mock.AnythingOfType("*domain.Batch")).Return(nil)

	resolved, err := f.svc.Resolve(context.Background(), ownerID, batchID, service.ReviewDecision{Action: domain.RecommendFull})
	require.NoError(t, err)

	assert.Equal(t, domain.BatchStatusQueued, resolved.Status)
	assert.Equal(t, domain.RecommendFull, resolved.Recommendation)
	assert.Nil(t, resolved.BaselineBatchID)
}

func TestBatchService_Resolve_DeltaRequiresBaseline(t *testing.T) {
	f := newBatchFixture()
	ownerID := uuid.New()
	batchID := uuid.New()

	f.batchRepo.On("GetByID", mock.Anything, ownerID, batchID).
		Return(&domain.Batch{ID: batchID, OwnerID: ownerID, Status: domain.BatchStatusNeedsReview}, nil)

	_, err := f.svc.Resolve(context.Background(), ownerID, batchID, service.ReviewDecision{Action: domain.RecommendDelta})
	assert.ErrorIs(t, err, domain.ErrBatchNotReviewable)
}

func TestBatchService_Resolve_DeltaRejectsNonTerminalBaseline(t *testing.T) {
	f := newBatchFixture()
	ownerID := uuid.New()
	batchID := uuid.New()
	baselineID := uuid.New()

	f.batchRepo.On("GetByID", mock.Anything, ownerID, batchID).
		Return(&domain.Batch{ID: batchID, OwnerID: ownerID, Status: domain.BatchStatusNeedsReview}, nil)
	f.batchRepo.On("GetByID", mock.Anything, ownerID, baselineID).
		Return(&domain.Batch{ID: baselineID, OwnerID: ownerID, Status: domain.BatchStatusProcessing}, nil)

	_, err := f.svc.Resolve(context.Background(), ownerID, batchID, service.ReviewDecision{
		Action:          domain.RecommendDelta,
		BaselineBatchID: &baselineID,
	})
	assert.ErrorIs(t, err, domain.ErrBatchNotReviewable)
}

func TestBatchService_Resolve_DeltaCarriesUnchangedRecords(t *testing.T) {
	f := newBatchFixture()
	ownerID := uuid.New()
	batchID := uuid.New()
	baselineID := uuid.New()

	f.batchRepo.On("GetByID", mock.Anything, ownerID, batchID).
		Return(&domain.Batch{ID: batchID, OwnerID: ownerID, Status: domain.BatchStatusNeedsReview}, nil)
	f.batchRepo.On("GetByID", mock.Anything, ownerID, baselineID).
		Return(&domain.Batch{ID: baselineID, OwnerID: ownerID, Status: domain.BatchStatusCompleted}, nil)

	// Asha Rao is unchanged against the baseline; Ben Okafor's amount moved.
	f.recordRepo.On("ListByBatch", mock.Anything, ownerID, batchID).
		Return([]domain.ExpenseRecord{
			expenseRec("Asha Rao", "EMP-042", 100.00, 100.00),
			expenseRec("Ben Okafor", "EMP-017", 250.00, 250.00),
		}, nil)
	f.recordRepo.On("ListByBatch", mock.Anything, ownerID, baselineID).
		Return([]domain.ExpenseRecord{
			expenseRec("Asha Rao", "EMP-042", 100.00, 100.00),
			expenseRec("Ben Okafor", "EMP-017", 200.00, 200.00),
		}, nil)

	var carried []domain.ExpenseRecord
	f.recordRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.ExpenseRecord")).
		Run(func(args mock.Arguments) {
			carried = append(carried, *args.Get(1).(*domain.ExpenseRecord))
		}).Return(nil)
	f.batchRepo.On("UpdateOutcome", mock.Anything, mock.AnythingOfType("*domain.Batch")).Return(nil)

	resolved, err := f.svc.Resolve(context.Background(), ownerID, batchID, service.ReviewDecision{
		Action:          domain.RecommendDelta,
		BaselineBatchID: &baselineID,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.BatchStatusQueued, resolved.Status)
	assert.Equal(t, domain.RecommendDelta, resolved.Recommendation)
	require.NotNil(t, resolved.BaselineBatchID)
	assert.Equal(t, baselineID, *resolved.BaselineBatchID)

	// Only the unchanged record is flipped; the changed one stays pending for
	// the worker.
	require.Len(t, carried, 1)
	assert.Equal(t, "Asha Rao", carried[0].PersonName)
	assert.Equal(t, domain.RecordStatusCarried, carried[0].Status)
}

func TestBatchService_Resolve_SkipCarriesExistingRecords(t *testing.T) {
	f := newBatchFixture()
	ownerID := uuid.New()
	batchID := uuid.New()
	baselineID := uuid.New()

	f.batchRepo.On("GetByID", mock.Anything, ownerID, batchID).
		Return(&domain.Batch{ID: batchID, OwnerID: ownerID, Status: domain.BatchStatusNeedsReview}, nil)
	f.batchRepo.On("GetByID", mock.Anything, ownerID, baselineID).
		Return(&domain.Batch{ID: baselineID, OwnerID: ownerID, Status: domain.BatchStatusCompleted, SuccessRate: 0.9}, nil)
	f.recordRepo.On("MarkBatchCarried", mock.Anything, ownerID, batchID).Return(nil)
	f.recordRepo.On("ListByBatch", mock.Anything, ownerID, batchID).
		Return([]domain.ExpenseRecord{expenseRec("Asha Rao", "EMP-042", 100, 100)}, nil)
	f.batchRepo.On("UpdateOutcome", mock.Anything, mock.AnythingOfType("*domain.Batch")).Return(nil)

	resolved, err := f.svc.Resolve(context.Background(), ownerID, batchID, service.ReviewDecision{
		Action:          domain.RecommendSkip,
		BaselineBatchID: &baselineID,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.BatchStatusCompleted, resolved.Status)
	assert.Equal(t, 1, resolved.RecordCount)
	assert.Equal(t, 0.9, resolved.SuccessRate)
	assert.NotNil(t, resolved.CompletedAt)
	f.recordRepo.AssertCalled(t, "MarkBatchCarried", mock.Anything, ownerID, batchID)
}
