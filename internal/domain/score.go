package domain

import (
	"fmt"
	"strings"
)

type Recommendation string

const (
	RecommendationBuy  Recommendation = "BUY"
	RecommendationHold Recommendation = "HOLD"
	RecommendationSell Recommendation = "SELL"
)

type Thresholds struct {
	Buy  int `json:"buy"`
	Sell int `json:"sell"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{Buy: 3, Sell: 1}
}

// Classify maps a score to a recommendation. BUY is checked before SELL so a
// misconfigured pair (sell >= buy) still resolves to the stronger signal.
func Classify(score int, t Thresholds) Recommendation {
	if score >= t.Buy {
		return RecommendationBuy
	}
	if score <= t.Sell {
		return RecommendationSell
	}
	return RecommendationHold
}

// Rule is one line of the user's rule block.
type Rule struct {
	Ordinal int    `json:"ordinal"`
	Text    string `json:"text"`
	// Expression is Text with any trailing comment removed.
	Expression string `json:"expression"`
}

type RuleOutcome string

const (
	RuleOutcomePassed RuleOutcome = "PASSED"
	RuleOutcomeFailed RuleOutcome = "FAILED"
	RuleOutcomeError  RuleOutcome = "ERROR"
)

type RationaleEntry struct {
	Ordinal int         `json:"ordinal"`
	Rule    string      `json:"rule"`
	Outcome RuleOutcome `json:"outcome"`
	Reason  string      `json:"reason,omitempty"`
	// Err is a RuleEvaluationError when Outcome is ERROR.
	Err error `json:"-"`
}

func (e RationaleEntry) String() string {
	switch e.Outcome {
	case RuleOutcomeError:
		return fmt.Sprintf("ERROR #%d: %s (%s)", e.Ordinal, e.Rule, e.Reason)
	default:
		return fmt.Sprintf("%s #%d: %s", e.Outcome, e.Ordinal, e.Rule)
	}
}

const NoRulesApplied = "No Rules Applied"

// RenderRationale joins passed and errored entries. Rules that simply
// evaluated to false are kept in the structured rationale only.
func RenderRationale(entries []RationaleEntry) string {
	parts := []string{}
	for _, e := range entries {
		if e.Outcome == RuleOutcomeFailed {
			continue
		}
		parts = append(parts, e.String())
	}
	return strings.Join(parts, " | ")
}

type ScoredRecord struct {
	FeatureRecord
	Score          int              `json:"Score"`
	Rationale      []RationaleEntry `json:"RationaleEntries"`
	RationaleText  string           `json:"Rationale"`
	Recommendation Recommendation   `json:"Recommendation"`
}

type Summary struct {
	Buy   int `json:"buy"`
	Hold  int `json:"hold"`
	Sell  int `json:"sell"`
	Total int `json:"total"`
}
