package recon

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"expenso/internal/port"
)

// Matcher searches the owner's batch history for exact and partial matches of
// a new submission's artifact hashes.
type Matcher struct {
	history       port.BatchHistory
	maxCandidates int
	now           func() time.Time
}

// NewMatcher creates a Matcher. maxCandidates bounds the returned list
// (exact match plus alternatives); values below 1 fall back to 1.
func NewMatcher(history port.BatchHistory, maxCandidates int) *Matcher {
	if maxCandidates < 1 {
		maxCandidates = 1
	}
	return &Matcher{
		history:       history,
		maxCandidates: maxCandidates,
		now:           time.Now,
	}
}

// FindCandidates returns match candidates ordered exact first, then partial
// matches by creation time descending, capped at the configured maximum.
// Recency strictly dominates partial ordering; success rate only ever affects
// confidence, never position.
func (m *Matcher) FindCandidates(ctx context.Context, ownerID uuid.UUID, primaryHash, receiptHash string) ([]Candidate, error) {
	batches, err := m.history.ListTerminalBatches(ctx, ownerID, primaryHash)
	if err != nil {
		return nil, fmt.Errorf("listing terminal batches: %w", err)
	}

	now := m.now()
	var exact *Candidate
	var partials []Candidate
	exactDupes := 0

	// ListTerminalBatches returns most recent first, so the first exact hit
	// is the one to keep and any further exact hit is a duplicate anomaly.
	for i := range batches {
		b := batches[i]
		c := Candidate{
			Batch:   b,
			Signals: Signals{AgeDays: ageDays(now, b.CreatedAt), SuccessRate: b.SuccessRate},
		}
		if b.ReceiptHash == receiptHash {
			if exact != nil {
				exactDupes++
				continue
			}
			c.MatchType = MatchExact
			exact = &c
			continue
		}
		c.MatchType = MatchPartial
		partials = append(partials, c)
	}

	if exactDupes > 0 {
		log.Printf("recon.Matcher: %d duplicate exact matches for owner %s, keeping most recent batch %s",
			exactDupes, ownerID, exact.Batch.ID)
	}

	candidates := make([]Candidate, 0, len(partials)+1)
	if exact != nil {
		candidates = append(candidates, *exact)
	}
	candidates = append(candidates, partials...)

	if len(candidates) > m.maxCandidates {
		candidates = candidates[:m.maxCandidates]
	}
	return candidates, nil
}

func ageDays(now, createdAt time.Time) int {
	age := now.Sub(createdAt)
	if age < 0 {
		return 0
	}
	return int(age.Hours() / 24)
}
