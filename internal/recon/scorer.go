package recon

// Confidence scoring constants. Exact content identity is the strongest
// possible signal, so its base alone clears any sensible review threshold.
const (
	baseExact   = 0.95
	basePartial = 0.78

	bonusSameDay     = 0.05
	bonusWithinWeek  = 0.03
	bonusWithinMonth = 0.01

	qualityWeight = 0.05
)

// Score assigns a confidence in [0,1] to a candidate baseline. It is a pure
// function of the match type and raw signals: identical inputs always produce
// identical output. Banded recency bonuses are used instead of a continuous
// decay so boundaries stay easy to reason about and test.
func Score(matchType MatchType, sig Signals) float64 {
	var score float64
	switch matchType {
	case MatchExact:
		score = baseExact
	case MatchPartial:
		score = basePartial
	default:
		return 0
	}

	score += recencyBonus(sig.AgeDays)
	score += qualityWeight * clamp01(sig.SuccessRate)

	return clamp01(score)
}

func recencyBonus(ageDays int) float64 {
	switch {
	case ageDays <= 0:
		return bonusSameDay
	case ageDays <= 7:
		return bonusWithinWeek
	case ageDays <= 30:
		return bonusWithinMonth
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
