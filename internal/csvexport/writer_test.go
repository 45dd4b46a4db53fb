package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenso/internal/domain"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 8)
	assert.Equal(t, "Person Name", row[0])
	assert.Equal(t, "Person Ref", row[1])
	assert.Equal(t, "Created At", row[7])
}

func TestWriteRecords(t *testing.T) {
	createdAt := time.Date(2025, 1, 14, 8, 0, 0, 0, time.UTC)
	rec := domain.ExpenseRecord{
		ID:              uuid.New(),
		PersonName:      "Asha Rao",
		PersonRef:       "EMP-042",
		PrimaryAmount:   1250.50,
		SecondaryAmount: 1200,
		Status:          domain.RecordStatusProcessed,
		CreatedAt:       createdAt,
	}
	require.NoError(t, rec.SetIssues([]domain.IssueFlag{domain.IssueReceiptMismatch}))

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRecords([]domain.ExpenseRecord{rec}))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 8)
	assert.Equal(t, "Asha Rao", row[0])
	assert.Equal(t, "EMP-042", row[1])
	assert.Equal(t, "1250.50", row[2])
	assert.Equal(t, "1200.00", row[3])
	assert.Equal(t, "50.50", row[4])
	assert.Equal(t, "processed", row[5])
	assert.Equal(t, "receipt_mismatch", row[6])
	assert.Equal(t, "2025-01-14T08:00:00Z", row[7])
}

func TestWriteRecords_NoIssues(t *testing.T) {
	rec := domain.ExpenseRecord{
		PersonName:      "Dev Mehta",
		PersonRef:       "EMP-007",
		PrimaryAmount:   99.999,
		SecondaryAmount: 0.1,
		Status:          domain.RecordStatusPending,
		CreatedAt:       time.Now(),
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRecords([]domain.ExpenseRecord{rec}))
	w.Flush()

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Equal(t, "100.00", row[2]) // 99.999 rounds
	assert.Equal(t, "0.10", row[3])
	assert.Empty(t, row[6])
}

func TestWriteRecords_MultipleIssues(t *testing.T) {
	rec := domain.ExpenseRecord{
		PersonName: "No Amount",
		PersonRef:  "EMP-100",
		Status:     domain.RecordStatusFlagged,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, rec.SetIssues([]domain.IssueFlag{
		domain.IssueMissingAmount,
		domain.IssueDuplicatePerson,
	}))

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRecords([]domain.ExpenseRecord{rec}))
	w.Flush()

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "missing_amount; duplicate_person", row[6])
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "March Expenses", "March_Expenses"},
		{"special chars", "FY 2024-25 / Q3 (Oct–Dec)", "FY_2024-25_Q3_Oct_Dec"},
		{"hyphens and underscores preserved", "my-batch_2025", "my-batch_2025"},
		{"consecutive underscores collapsed", "test___batch", "test_batch"},
		{"leading/trailing cleaned", "  hello  ", "hello"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	id := uuid.New().String()
	filename := BuildFilename(id)
	today := time.Now().Format("2006-01-02")
	assert.Equal(t, "batch_"+id[:8]+"_"+today+".csv", filename)
}
