package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	defaults := DefaultThresholds()
	type testCase struct {
		name       string
		score      int
		thresholds Thresholds
		expected   Recommendation
	}
	for _, tc := range []testCase{
		{"at buy threshold", 3, defaults, RecommendationBuy},
		{"above buy threshold", 5, defaults, RecommendationBuy},
		{"between thresholds", 2, defaults, RecommendationHold},
		{"at sell threshold", 1, defaults, RecommendationSell},
		{"below sell threshold", 0, defaults, RecommendationSell},
		{"overlapping thresholds prefer buy", 2, Thresholds{Buy: 2, Sell: 3}, RecommendationBuy},
		{"zero thresholds", 0, Thresholds{Buy: 0, Sell: 0}, RecommendationBuy},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, Classify(tc.score, tc.thresholds))
		})
	}
}

func TestRenderRationale(t *testing.T) {
	t.Run("passed and errored entries are rendered", func(t *testing.T) {
		out := RenderRationale([]RationaleEntry{
			{Ordinal: 1, Rule: "RSI < 30", Outcome: RuleOutcomeFailed},
			{Ordinal: 2, Rule: "Price > SMA_20", Outcome: RuleOutcomePassed},
			{Ordinal: 3, Rule: "Price > SMA_50", Outcome: RuleOutcomeError, Reason: "missing value: SMA_50 has no value"},
		})
		require.Equal(t, "PASSED #2: Price > SMA_20 | ERROR #3: Price > SMA_50 (missing value: SMA_50 has no value)", out)
	})

	t.Run("nothing passed", func(t *testing.T) {
		require.Equal(t, "", RenderRationale([]RationaleEntry{
			{Ordinal: 1, Rule: "RSI < 30", Outcome: RuleOutcomeFailed},
		}))
	})
}
