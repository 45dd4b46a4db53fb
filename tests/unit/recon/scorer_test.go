package recon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"expenso/internal/recon"
)

func TestScore_ExactBase(t *testing.T) {
	// Old batch with zero success rate: base score only.
	got := recon.Score(recon.MatchExact, recon.Signals{AgeDays: 90, SuccessRate: 0})
	assert.InDelta(t, 0.95, got, 1e-9)
}

func TestScore_PartialBase(t *testing.T) {
	got := recon.Score(recon.MatchPartial, recon.Signals{AgeDays: 90, SuccessRate: 0})
	assert.InDelta(t, 0.78, got, 1e-9)
}

func TestScore_NoneIsZero(t *testing.T) {
	got := recon.Score(recon.MatchNone, recon.Signals{AgeDays: 0, SuccessRate: 1})
	assert.Equal(t, 0.0, got)
}

func TestScore_RecencyBands(t *testing.T) {
	cases := []struct {
		name    string
		ageDays int
		want    float64
	}{
		{"same day", 0, 0.78 + 0.05},
		{"within week", 7, 0.78 + 0.03},
		{"just past week", 8, 0.78 + 0.01},
		{"within month", 30, 0.78 + 0.01},
		{"past month", 31, 0.78},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := recon.Score(recon.MatchPartial, recon.Signals{AgeDays: tc.ageDays, SuccessRate: 0})
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestScore_SuccessRateWeight(t *testing.T) {
	base := recon.Score(recon.MatchPartial, recon.Signals{AgeDays: 90, SuccessRate: 0})
	full := recon.Score(recon.MatchPartial, recon.Signals{AgeDays: 90, SuccessRate: 1.0})
	assert.InDelta(t, 0.05, full-base, 1e-9)

	// Out-of-range success rates are clamped before weighting.
	over := recon.Score(recon.MatchPartial, recon.Signals{AgeDays: 90, SuccessRate: 3.0})
	assert.InDelta(t, full, over, 1e-9)
}

func TestScore_ClampedToOne(t *testing.T) {
	// Exact, same-day, perfect success rate sums past 1.0 and must clamp.
	got := recon.Score(recon.MatchExact, recon.Signals{AgeDays: 0, SuccessRate: 1.0})
	assert.Equal(t, 1.0, got)
}

func TestScore_Pure(t *testing.T) {
	sig := recon.Signals{AgeDays: 3, SuccessRate: 0.7}
	first := recon.Score(recon.MatchPartial, sig)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, recon.Score(recon.MatchPartial, sig))
	}
}
