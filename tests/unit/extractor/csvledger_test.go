package extractor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenso/internal/domain"
	"expenso/internal/extractor/csvledger"
	"expenso/internal/port"
)

func extract(t *testing.T, primary, receipt string) ([]domain.ExpenseRecord, error) {
	t.Helper()
	e := csvledger.NewExtractor()
	return e.Extract(context.Background(), port.ExtractInput{
		PrimaryBytes: []byte(primary),
		ReceiptBytes: []byte(receipt),
	})
}

func TestExtract_OverlaysReceiptTotals(t *testing.T) {
	primary := "person_name,person_ref,amount\n" +
		"Asha Rao,EMP-042,1250.50\n" +
		"Ben Okafor,EMP-017,310.00\n"
	receipt := "person_name,person_ref,amount\n" +
		"Asha Rao,EMP-042,1200.00\n" +
		"Ben Okafor,EMP-017,310.00\n"

	records, err := extract(t, primary, receipt)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Asha Rao", records[0].PersonName)
	assert.Equal(t, "EMP-042", records[0].PersonRef)
	assert.Equal(t, 1250.50, records[0].PrimaryAmount)
	assert.Equal(t, 1200.00, records[0].SecondaryAmount)
	assert.Equal(t, domain.RecordStatusPending, records[0].Status)

	assert.Equal(t, "Ben Okafor", records[1].PersonName)
	assert.Equal(t, 310.00, records[1].SecondaryAmount)
}

func TestExtract_PersonMissingFromReceipt(t *testing.T) {
	primary := "person_name,person_ref,amount\nAsha Rao,EMP-042,1250.50\n"
	receipt := "person_name,person_ref,amount\n"

	records, err := extract(t, primary, receipt)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0.0, records[0].SecondaryAmount)
}

func TestExtract_DuplicatePersonMergedAndFlagged(t *testing.T) {
	primary := "person_name,person_ref,amount\n" +
		"Asha Rao,EMP-042,1000.00\n" +
		"Asha Rao,EMP-042,250.50\n"
	receipt := "person_name,person_ref,amount\n"

	records, err := extract(t, primary, receipt)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1250.50, records[0].PrimaryAmount)
	assert.Contains(t, records[0].Issues(), domain.IssueDuplicatePerson)
}

func TestExtract_ReceiptRowsForSamePersonAreSummed(t *testing.T) {
	primary := "person_name,person_ref,amount\nAsha Rao,EMP-042,500.00\n"
	receipt := "person_name,person_ref,amount\n" +
		"Asha Rao,EMP-042,200.00\n" +
		"Asha Rao,EMP-042,300.00\n"

	records, err := extract(t, primary, receipt)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 500.00, records[0].SecondaryAmount)
}

func TestExtract_HeaderAliases(t *testing.T) {
	primary := "name,employee_id,total\nAsha Rao,EMP-042,42.00\n"
	receipt := "name,ref,amount\nAsha Rao,EMP-042,42.00\n"

	records, err := extract(t, primary, receipt)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 42.00, records[0].PrimaryAmount)
	assert.Equal(t, 42.00, records[0].SecondaryAmount)
}

func TestExtract_BlankRowsSkipped(t *testing.T) {
	primary := "person_name,person_ref,amount\n" +
		"Asha Rao,EMP-042,42.00\n" +
		",,0\n"
	receipt := "person_name,person_ref,amount\n"

	records, err := extract(t, primary, receipt)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestExtract_MissingColumns(t *testing.T) {
	primary := "person_name,amount\nAsha Rao,42.00\n"
	receipt := "person_name,person_ref,amount\n"

	_, err := extract(t, primary, receipt)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtract_MalformedRowMidFileFailsWholeLedger(t *testing.T) {
	primary := "person_name,person_ref,amount\n" +
		"Asha Rao,EMP-042,1250.50\n" +
		"\"Ben Okafor,EMP-017,310.00\n" +
		"Chloe Mensah,EMP-101,75.25\n"
	receipt := "person_name,person_ref,amount\n"

	records, err := extract(t, primary, receipt)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Nil(t, records)
}

func TestExtract_WrongFieldCountFailsWholeLedger(t *testing.T) {
	primary := "person_name,person_ref,amount\n" +
		"Asha Rao,EMP-042,1250.50\n" +
		"Ben Okafor,EMP-017\n" +
		"Chloe Mensah,EMP-101,75.25\n"
	receipt := "person_name,person_ref,amount\n"

	records, err := extract(t, primary, receipt)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Nil(t, records)
}

func TestExtract_InvalidAmount(t *testing.T) {
	primary := "person_name,person_ref,amount\nAsha Rao,EMP-042,not-a-number\n"
	receipt := "person_name,person_ref,amount\n"

	_, err := extract(t, primary, receipt)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtract_BadReceiptLedger(t *testing.T) {
	primary := "person_name,person_ref,amount\nAsha Rao,EMP-042,42.00\n"
	receipt := "garbage\n"

	_, err := extract(t, primary, receipt)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}
