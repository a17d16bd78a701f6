package l3_service

import (
	"sort"
	"stockscreener/internal/domain"
)

type ClassifierService interface {
	ClassifyAndRank(rows []domain.ScoredRecord, thresholds domain.Thresholds) []domain.ScoredRecord
	Summarize(rows []domain.ScoredRecord) domain.Summary
}

type classifierServiceHandler struct{}

func NewClassifierService() ClassifierService {
	return classifierServiceHandler{}
}

// ClassifyAndRank returns a new slice ordered by gap ratio, then N day gain,
// then score, all descending. Missing keys sort last and ties keep the
// input order. Rows scored without any rules keep their HOLD.
func (h classifierServiceHandler) ClassifyAndRank(rows []domain.ScoredRecord, thresholds domain.Thresholds) []domain.ScoredRecord {
	out := make([]domain.ScoredRecord, len(rows))
	copy(out, rows)
	for i := range out {
		if len(out[i].Rationale) == 0 {
			out[i].Recommendation = domain.RecommendationHold
			continue
		}
		out[i].Recommendation = domain.Classify(out[i].Score, thresholds)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := compareDesc(out[i].OpenCloseRatio, out[j].OpenCloseRatio); c != 0 {
			return c < 0
		}
		if c := compareDesc(out[i].PctChangeN, out[j].PctChangeN); c != 0 {
			return c < 0
		}
		return out[i].Score > out[j].Score
	})
	return out
}

// compareDesc returns -1 when a ranks ahead of b.
func compareDesc(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	}
	return 0
}

func (h classifierServiceHandler) Summarize(rows []domain.ScoredRecord) domain.Summary {
	out := domain.Summary{Total: len(rows)}
	for _, r := range rows {
		switch r.Recommendation {
		case domain.RecommendationBuy:
			out.Buy++
		case domain.RecommendationSell:
			out.Sell++
		default:
			out.Hold++
		}
	}
	return out
}
