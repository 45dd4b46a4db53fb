package recon_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenso/internal/domain"
	"expenso/internal/recon"
)

func rec(name, ref string, primary, secondary float64) domain.ExpenseRecord {
	return domain.ExpenseRecord{
		ID:              uuid.New(),
		PersonName:      name,
		PersonRef:       ref,
		PrimaryAmount:   primary,
		SecondaryAmount: secondary,
	}
}

func TestReconcile_IdenticalSetsAreUnchanged(t *testing.T) {
	records := []domain.ExpenseRecord{
		rec("Asha Rao", "EMP-042", 1250.50, 1250.50),
		rec("Ben Okafor", "EMP-007", 830.00, 830.00),
	}

	diff, err := recon.Reconcile(records, records, 0.01)
	require.NoError(t, err)
	assert.True(t, diff.Empty())
	assert.Len(t, diff.Unchanged, 2)
}

func TestReconcile_Categories(t *testing.T) {
	current := []domain.ExpenseRecord{
		rec("Asha Rao", "EMP-042", 1250.50, 1250.50), // unchanged
		rec("Ben Okafor", "EMP-007", 900.00, 900.00), // modified
		rec("Chen Wei", "EMP-101", 400.00, 400.00),   // added
	}
	baseline := []domain.ExpenseRecord{
		rec("Asha Rao", "EMP-042", 1250.50, 1250.50),
		rec("Ben Okafor", "EMP-007", 830.00, 830.00),
		rec("Dana Klein", "EMP-055", 120.00, 120.00), // removed
	}

	diff, err := recon.Reconcile(current, baseline, 0.01)
	require.NoError(t, err)

	assert.Len(t, diff.Unchanged, 1)
	assert.Len(t, diff.Modified, 1)
	assert.Len(t, diff.Added, 1)
	assert.Len(t, diff.Removed, 1)
	assert.False(t, diff.Empty())

	assert.Equal(t, "Ben Okafor", diff.Modified[0].Current.PersonName)
	assert.Equal(t, 830.00, diff.Modified[0].Baseline.PrimaryAmount)
	assert.Equal(t, "Chen Wei", diff.Added[0].PersonName)
	assert.Equal(t, "Dana Klein", diff.Removed[0].PersonName)

	// Every key across both sets lands in exactly one category.
	total := len(diff.Unchanged) + len(diff.Modified) + len(diff.Added) + len(diff.Removed)
	assert.Equal(t, 4, total)
}

func TestReconcile_ToleranceBoundary(t *testing.T) {
	baseline := []domain.ExpenseRecord{rec("Asha Rao", "EMP-042", 100.00, 100.00)}

	// Within tolerance: unchanged.
	within := []domain.ExpenseRecord{rec("Asha Rao", "EMP-042", 100.01, 100.00)}
	diff, err := recon.Reconcile(within, baseline, 0.01)
	require.NoError(t, err)
	assert.Len(t, diff.Unchanged, 1)
	assert.Empty(t, diff.Modified)

	// Past tolerance: modified.
	past := []domain.ExpenseRecord{rec("Asha Rao", "EMP-042", 100.02, 100.00)}
	diff, err = recon.Reconcile(past, baseline, 0.01)
	require.NoError(t, err)
	assert.Empty(t, diff.Unchanged)
	assert.Len(t, diff.Modified, 1)
}

func TestReconcile_SecondaryAmountChangeIsModified(t *testing.T) {
	baseline := []domain.ExpenseRecord{rec("Asha Rao", "EMP-042", 100.00, 100.00)}
	current := []domain.ExpenseRecord{rec("Asha Rao", "EMP-042", 100.00, 85.00)}

	diff, err := recon.Reconcile(current, baseline, 0.01)
	require.NoError(t, err)
	assert.Len(t, diff.Modified, 1)
}

func TestReconcile_SameNameDifferentRefAreDistinct(t *testing.T) {
	baseline := []domain.ExpenseRecord{rec("Asha Rao", "EMP-042", 100.00, 100.00)}
	current := []domain.ExpenseRecord{rec("Asha Rao", "EMP-043", 100.00, 100.00)}

	diff, err := recon.Reconcile(current, baseline, 0.01)
	require.NoError(t, err)
	assert.Len(t, diff.Added, 1)
	assert.Len(t, diff.Removed, 1)
}

func TestReconcile_EmptyCurrentIsAllRemoved(t *testing.T) {
	baseline := []domain.ExpenseRecord{
		rec("Asha Rao", "EMP-042", 100.00, 100.00),
		rec("Ben Okafor", "EMP-007", 830.00, 830.00),
	}

	diff, err := recon.Reconcile(nil, baseline, 0.01)
	require.NoError(t, err)
	assert.Len(t, diff.Removed, 2)
	assert.False(t, diff.Empty())
}

func TestReconcile_DuplicateCurrentKeyFails(t *testing.T) {
	current := []domain.ExpenseRecord{
		rec("Asha Rao", "EMP-042", 100.00, 100.00),
		rec("Asha Rao", "EMP-042", 200.00, 200.00),
	}

	_, err := recon.Reconcile(current, nil, 0.01)
	assert.ErrorIs(t, err, domain.ErrReconciliationInconsistency)
}

func TestReconcile_DuplicateBaselineKeyFails(t *testing.T) {
	baseline := []domain.ExpenseRecord{
		rec("Asha Rao", "EMP-042", 100.00, 100.00),
		rec("Asha Rao", "EMP-042", 200.00, 200.00),
	}

	_, err := recon.Reconcile(nil, baseline, 0.01)
	assert.ErrorIs(t, err, domain.ErrReconciliationInconsistency)
}
