package recon

import (
	"expenso/internal/domain"
)

// MatchType classifies how a historical batch relates to a new submission.
type MatchType string

const (
	// MatchExact means both artifact hashes equal the historical batch's.
	MatchExact MatchType = "exact"
	// MatchPartial means only the primary ledger hash matches; the receipt
	// ledger differs. The common case of an updated receipt set against a
	// previously accepted primary ledger.
	MatchPartial MatchType = "partial"
	// MatchNone means no historical batch shares either hash.
	MatchNone MatchType = "none"
)

// Signals are the raw inputs to confidence scoring. They are derived once by
// the matcher and never persisted.
type Signals struct {
	AgeDays     int
	SuccessRate float64
}

// Candidate is a request-scoped match result: a historical batch plus the
// signals and confidence attached to it.
type Candidate struct {
	Batch      domain.Batch
	MatchType  MatchType
	Signals    Signals
	Confidence float64
}

// RecordPair carries both versions of a modified record so callers can show
// what changed.
type RecordPair struct {
	Current  domain.ExpenseRecord `json:"current"`
	Baseline domain.ExpenseRecord `json:"baseline"`
}

// Diff is the record-level difference between a submission and its baseline.
// The four lists are disjoint by natural key and together cover the union of
// keys across both record sets.
type Diff struct {
	Unchanged []domain.ExpenseRecord `json:"unchanged"`
	Modified  []RecordPair           `json:"modified"`
	Added     []domain.ExpenseRecord `json:"added"`
	Removed   []domain.ExpenseRecord `json:"removed"`
}

// Empty reports whether reconciliation found nothing different.
func (d *Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Modified) == 0 && len(d.Removed) == 0
}
