package recon_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"expenso/internal/domain"
	"expenso/internal/recon"
	"expenso/mocks"
)

const (
	primaryHashA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	receiptHashA = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	receiptHashB = "cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc"
)

func terminalBatch(receiptHash string, age time.Duration, successRate float64) domain.Batch {
	return domain.Batch{
		ID:          uuid.New(),
		Status:      domain.BatchStatusCompleted,
		PrimaryHash: primaryHashA,
		ReceiptHash: receiptHash,
		SuccessRate: successRate,
		CreatedAt:   time.Now().UTC().Add(-age),
	}
}

func TestMatcher_ExactBeforePartials(t *testing.T) {
	history := new(mocks.MockBatchHistory)
	ownerID := uuid.New()

	// Most recent first, as the history contract requires. The exact match
	// sits in the middle but must come out first.
	newer := terminalBatch(receiptHashB, 24*time.Hour, 0.9)
	exact := terminalBatch(receiptHashA, 48*time.Hour, 0.8)
	older := terminalBatch(receiptHashB, 72*time.Hour, 0.7)
	history.On("ListTerminalBatches", mock.Anything, ownerID, primaryHashA).
		Return([]domain.Batch{newer, exact, older}, nil)

	m := recon.NewMatcher(history, 5)
	candidates, err := m.FindCandidates(context.Background(), ownerID, primaryHashA, receiptHashA)
	require.NoError(t, err)

	require.Len(t, candidates, 3)
	assert.Equal(t, recon.MatchExact, candidates[0].MatchType)
	assert.Equal(t, exact.ID, candidates[0].Batch.ID)
	assert.Equal(t, recon.MatchPartial, candidates[1].MatchType)
	assert.Equal(t, newer.ID, candidates[1].Batch.ID)
	assert.Equal(t, older.ID, candidates[2].Batch.ID)
	history.AssertExpectations(t)
}

func TestMatcher_DuplicateExactKeepsMostRecent(t *testing.T) {
	history := new(mocks.MockBatchHistory)
	ownerID := uuid.New()

	recent := terminalBatch(receiptHashA, 24*time.Hour, 0.9)
	stale := terminalBatch(receiptHashA, 96*time.Hour, 0.5)
	history.On("ListTerminalBatches", mock.Anything, ownerID, primaryHashA).
		Return([]domain.Batch{recent, stale}, nil)

	m := recon.NewMatcher(history, 5)
	candidates, err := m.FindCandidates(context.Background(), ownerID, primaryHashA, receiptHashA)
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, recent.ID, candidates[0].Batch.ID)
}

func TestMatcher_CapsCandidates(t *testing.T) {
	history := new(mocks.MockBatchHistory)
	ownerID := uuid.New()

	batches := make([]domain.Batch, 10)
	for i := range batches {
		batches[i] = terminalBatch(receiptHashB, time.Duration(i)*24*time.Hour, 0.8)
	}
	history.On("ListTerminalBatches", mock.Anything, ownerID, primaryHashA).
		Return(batches, nil)

	m := recon.NewMatcher(history, 3)
	candidates, err := m.FindCandidates(context.Background(), ownerID, primaryHashA, receiptHashA)
	require.NoError(t, err)
	assert.Len(t, candidates, 3)
}

func TestMatcher_SignalsDerived(t *testing.T) {
	history := new(mocks.MockBatchHistory)
	ownerID := uuid.New()

	b := terminalBatch(receiptHashB, 10*24*time.Hour, 0.75)
	history.On("ListTerminalBatches", mock.Anything, ownerID, primaryHashA).
		Return([]domain.Batch{b}, nil)

	m := recon.NewMatcher(history, 5)
	candidates, err := m.FindCandidates(context.Background(), ownerID, primaryHashA, receiptHashA)
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, 10, candidates[0].Signals.AgeDays)
	assert.Equal(t, 0.75, candidates[0].Signals.SuccessRate)
}

func TestMatcher_NoHistoryIsEmpty(t *testing.T) {
	history := new(mocks.MockBatchHistory)
	ownerID := uuid.New()

	history.On("ListTerminalBatches", mock.Anything, ownerID, primaryHashA).
		Return([]domain.Batch{}, nil)

	m := recon.NewMatcher(history, 5)
	candidates, err := m.FindCandidates(context.Background(), ownerID, primaryHashA, receiptHashA)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestMatcher_HistoryErrorPropagates(t *testing.T) {
	history := new(mocks.MockBatchHistory)
	ownerID := uuid.New()

	history.On("ListTerminalBatches", mock.Anything, ownerID, primaryHashA).
		Return(nil, errors.New("connection refused"))

	m := recon.NewMatcher(history, 5)
	_, err := m.FindCandidates(context.Background(), ownerID, primaryHashA, receiptHashA)
	assert.Error(t, err)
}
