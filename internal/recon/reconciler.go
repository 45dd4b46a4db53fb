package recon

import (
	"fmt"
	"math"

	"expenso/internal/domain"
)

// Reconcile computes the record-level difference between the newly extracted
// records and a baseline batch's records. Every natural key across both sets
// lands in exactly one of the four diff categories. Amounts are compared with
// an absolute tolerance because they may be recomputed through slightly
// different rounding paths.
//
// An empty current set is a legitimate result (everything removed), not an
// error; flagging it as suspicious is the caller's business.
func Reconcile(current, baseline []domain.ExpenseRecord, tolerance float64) (*Diff, error) {
	baseByKey := make(map[domain.RecordKey]domain.ExpenseRecord, len(baseline))
	for i := range baseline {
		baseByKey[baseline[i].Key()] = baseline[i]
	}

	diff := &Diff{}
	seen := make(map[domain.RecordKey]bool, len(current))

	for i := range current {
		rec := current[i]
		key := rec.Key()
		if seen[key] {
			return nil, fmt.Errorf("key %q/%q: %w", key.Name, key.Ref, domain.ErrReconciliationInconsistency)
		}
		seen[key] = true

		base, ok := baseByKey[key]
		if !ok {
			diff.Added = append(diff.Added, rec)
			continue
		}
		if amountsEqual(rec.PrimaryAmount, base.PrimaryAmount, tolerance) &&
			amountsEqual(rec.SecondaryAmount, base.SecondaryAmount, tolerance) {
			diff.Unchanged = append(diff.Unchanged, rec)
		} else {
			diff.Modified = append(diff.Modified, RecordPair{Current: rec, Baseline: base})
		}
	}

	for i := range baseline {
		key := baseline[i].Key()
		if seen[key] {
			continue
		}
		if baseByKey[key].ID != baseline[i].ID {
			// Two baseline records collapsed onto one key: the stored batch
			// violates the per-batch key uniqueness invariant.
			return nil, fmt.Errorf("baseline key %q/%q: %w", key.Name, key.Ref, domain.ErrReconciliationInconsistency)
		}
		seen[key] = true
		diff.Removed = append(diff.Removed, baseline[i])
	}

	return diff, nil
}

func amountsEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
