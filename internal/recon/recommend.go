package recon

import (
	"expenso/internal/domain"
)

// Policy holds the reconciliation policy constants. They live here and only
// here; matcher, scorer, and reconciler stay threshold-free and reusable.
type Policy struct {
	// ConfidenceThreshold separates delta_processing from review_required
	// for partial matches with a non-empty diff.
	ConfidenceThreshold float64
	// TieMargin is the confidence gap under which two partial candidates
	// count as near-tied, deferring the choice to a human.
	TieMargin float64
	// AmountTolerance is the absolute tolerance for "amount unchanged".
	AmountTolerance float64
	// MaxCandidates caps the matcher's candidate list.
	MaxCandidates int
}

// DefaultPolicy returns the stock policy constants.
func DefaultPolicy() Policy {
	return Policy{
		ConfidenceThreshold: 0.80,
		TieMargin:           0.05,
		AmountTolerance:     0.01,
		MaxCandidates:       5,
	}
}

// Outcome is the selector's verdict. Build it only through the per-variant
// constructors below; they are what keeps illegal shapes (skip_processing
// with a diff for an exact match, full_processing with a candidate) out of
// the codebase.
type Outcome struct {
	Recommendation domain.Recommendation
	Candidate      *Candidate
	Diff           *Diff
	Alternatives   []Candidate
}

// FullOutcome recommends full processing with no baseline.
func FullOutcome() Outcome {
	return Outcome{Recommendation: domain.RecommendFull}
}

// SkipOutcome recommends skipping processing entirely. diff is nil for exact
// matches (there was nothing to reconcile) and the empty diff for partial
// matches that reconciled to no differences.
func SkipOutcome(best Candidate, diff *Diff, alternatives []Candidate) Outcome {
	return Outcome{
		Recommendation: domain.RecommendSkip,
		Candidate:      &best,
		Diff:           diff,
		Alternatives:   alternatives,
	}
}

// DeltaOutcome recommends re-processing only the changed records.
func DeltaOutcome(best Candidate, diff *Diff, alternatives []Candidate) Outcome {
	return Outcome{
		Recommendation: domain.RecommendDelta,
		Candidate:      &best,
		Diff:           diff,
		Alternatives:   alternatives,
	}
}

// ReviewOutcome defers the baseline choice to a human.
func ReviewOutcome(best Candidate, diff *Diff, alternatives []Candidate) Outcome {
	return Outcome{
		Recommendation: domain.RecommendReview,
		Candidate:      &best,
		Diff:           diff,
		Alternatives:   alternatives,
	}
}

// Select turns the best candidate plus its diff into a processing
// recommendation.
//
//   - no candidate: full_processing
//   - exact match: skip_processing regardless of confidence; content
//     identity is conclusive and confidence is informational only
//   - partial match, empty diff: skip_processing (the receipt ledger changed
//     but produced equivalent records)
//   - partial match, non-empty diff, confidence above threshold and no
//     near-tied alternative: delta_processing
//   - otherwise: review_required
func Select(p Policy, candidates []Candidate, diff *Diff) Outcome {
	if len(candidates) == 0 {
		return FullOutcome()
	}

	best := candidates[0]
	alternatives := candidates[1:]

	if best.MatchType == MatchExact {
		return SkipOutcome(best, nil, alternatives)
	}

	if diff != nil && diff.Empty() {
		return SkipOutcome(best, diff, alternatives)
	}

	if nearTied(p, best, alternatives) {
		return ReviewOutcome(best, diff, alternatives)
	}
	if best.Confidence > p.ConfidenceThreshold {
		return DeltaOutcome(best, diff, alternatives)
	}
	return ReviewOutcome(best, diff, alternatives)
}

func nearTied(p Policy, best Candidate, alternatives []Candidate) bool {
	for i := range alternatives {
		if alternatives[i].MatchType != MatchPartial {
			continue
		}
		if best.Confidence-alternatives[i].Confidence <= p.TieMargin {
			return true
		}
	}
	return false
}
