// Package recon implements the batch reconciliation engine: given a new
// submission's artifact fingerprints, it decides whether the submission is
// identical to, a superset of, or unrelated to a previously processed batch,
// and when related computes the record-level difference against the matched
// baseline so only changed records need full re-processing.
//
// The engine is stateless between invocations; candidates, diffs, and
// outcomes are all request-scoped and never shared across calls.
package recon

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"expenso/internal/domain"
	"expenso/internal/port"
)

// Engine wires the fingerprint validation, matcher, scorer, reconciler, and
// recommendation selector into the single detect-delta operation.
type Engine struct {
	history        port.BatchHistory
	matcher        *Matcher
	policy         Policy
	historyTimeout time.Duration
}

// NewEngine creates an Engine over the given history store. historyTimeout
// bounds every history query; the upload workflow is latency-sensitive and a
// slow history query must not stall it.
func NewEngine(history port.BatchHistory, policy Policy, historyTimeout time.Duration) *Engine {
	if historyTimeout <= 0 {
		historyTimeout = 3 * time.Second
	}
	return &Engine{
		history:        history,
		matcher:        NewMatcher(history, policy.MaxCandidates),
		policy:         policy,
		historyTimeout: historyTimeout,
	}
}

// Policy returns the policy the engine was configured with, so callers that
// reconcile outside DetectDelta use the same tolerances.
func (e *Engine) Policy() Policy {
	return e.policy
}

// DetectInput is the request to DetectDelta. CurrentRecords are the freshly
// extracted records of the new submission; they are only consulted when a
// partial match needs reconciling.
type DetectInput struct {
	OwnerID        uuid.UUID
	PrimaryHash    string
	ReceiptHash    string
	CurrentRecords []domain.ExpenseRecord
}

// CandidateSummary describes the chosen baseline in a DeltaResult.
type CandidateSummary struct {
	BatchID     uuid.UUID `json:"batch_id"`
	CreatedAt   time.Time `json:"created_at"`
	RecordCount int       `json:"record_count"`
	SuccessRate float64   `json:"success_rate"`
}

// AlternativeSummary describes a non-selected candidate. Records of
// alternatives are never fetched.
type AlternativeSummary struct {
	BatchID    uuid.UUID `json:"batch_id"`
	CreatedAt  time.Time `json:"created_at"`
	Confidence float64   `json:"confidence"`
}

// DiffSummary is the wire shape of a reconciliation diff.
type DiffSummary struct {
	AddedCount     int                    `json:"added_count"`
	ModifiedCount  int                    `json:"modified_count"`
	RemovedCount   int                    `json:"removed_count"`
	UnchangedCount int                    `json:"unchanged_count"`
	Added          []domain.ExpenseRecord `json:"added"`
	Modified       []RecordPair           `json:"modified"`
	Removed        []domain.ExpenseRecord `json:"removed"`
}

// DeltaResult is the transport-independent result of DetectDelta.
type DeltaResult struct {
	MatchType      MatchType             `json:"match_type"`
	Candidate      *CandidateSummary     `json:"candidate"`
	Confidence     *float64              `json:"confidence"`
	Diff           *DiffSummary          `json:"diff"`
	Alternatives   []AlternativeSummary  `json:"alternatives"`
	Recommendation domain.Recommendation `json:"recommendation"`
	// Degraded is set when the history store was unavailable and the engine
	// fell back to full_processing.
	Degraded bool `json:"degraded,omitempty"`
}

// Detection pairs the wire result with the internal outcome so callers (the
// submission orchestrator) can act on the chosen baseline and diff.
type Detection struct {
	Result  *DeltaResult
	Outcome Outcome
}

// DetectDelta runs the full reconciliation pipeline. Malformed hashes are
// rejected up front with domain.ErrInvalidHash. History failures and
// timeouts degrade to full_processing with a logged warning rather than an
// error; invariant violations (domain.ErrReconciliationInconsistency) are
// propagated, never swallowed.
func (e *Engine) DetectDelta(ctx context.Context, in DetectInput) (*Detection, error) {
	if err := ValidateHash(in.PrimaryHash); err != nil {
		return nil, err
	}
	if err := ValidateHash(in.ReceiptHash); err != nil {
		return nil, err
	}

	hctx, cancel := context.WithTimeout(ctx, e.historyTimeout)
	defer cancel()

	candidates, err := e.matcher.FindCandidates(hctx, in.OwnerID, in.PrimaryHash, in.ReceiptHash)
	if err != nil {
		log.Printf("recon.Engine: history unavailable for owner %s, degrading to full processing: %v", in.OwnerID, err)
		return degradedDetection(), nil
	}

	for i := range candidates {
		candidates[i].Confidence = Score(candidates[i].MatchType, candidates[i].Signals)
	}

	var diff *Diff
	if len(candidates) > 0 && candidates[0].MatchType == MatchPartial {
		rctx, rcancel := context.WithTimeout(ctx, e.historyTimeout)
		defer rcancel()

		baseline, err := e.history.GetRecords(rctx, candidates[0].Batch.ID)
		if err != nil {
			log.Printf("recon.Engine: fetching baseline records for batch %s failed, degrading to full processing: %v",
				candidates[0].Batch.ID, err)
			return degradedDetection(), nil
		}
		diff, err = Reconcile(in.CurrentRecords, baseline, e.policy.AmountTolerance)
		if err != nil {
			return nil, err
		}
	}

	outcome := Select(e.policy, candidates, diff)
	return &Detection{
		Result:  buildResult(outcome),
		Outcome: outcome,
	}, nil
}

func degradedDetection() *Detection {
	return &Detection{
		Result: &DeltaResult{
			MatchType:      MatchNone,
			Recommendation: domain.RecommendFull,
			Alternatives:   []AlternativeSummary{},
			Degraded:       true,
		},
		Outcome: FullOutcome(),
	}
}

func buildResult(outcome Outcome) *DeltaResult {
	result := &DeltaResult{
		MatchType:      MatchNone,
		Recommendation: outcome.Recommendation,
		Alternatives:   []AlternativeSummary{},
	}

	if outcome.Candidate != nil {
		best := outcome.Candidate
		result.MatchType = best.MatchType
		result.Candidate = &CandidateSummary{
			BatchID:     best.Batch.ID,
			CreatedAt:   best.Batch.CreatedAt,
			RecordCount: best.Batch.RecordCount,
			SuccessRate: best.Batch.SuccessRate,
		}
		conf := best.Confidence
		result.Confidence = &conf
	}

	if outcome.Diff != nil {
		result.Diff = &DiffSummary{
			AddedCount:     len(outcome.Diff.Added),
			ModifiedCount:  len(outcome.Diff.Modified),
			RemovedCount:   len(outcome.Diff.Removed),
			UnchangedCount: len(outcome.Diff.Unchanged),
			Added:          outcome.Diff.Added,
			Modified:       outcome.Diff.Modified,
			Removed:        outcome.Diff.Removed,
		}
	}

	for _, alt := range outcome.Alternatives {
		result.Alternatives = append(result.Alternatives, AlternativeSummary{
			BatchID:    alt.Batch.ID,
			CreatedAt:  alt.Batch.CreatedAt,
			Confidence: alt.Confidence,
		})
	}
	return result
}
