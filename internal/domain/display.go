package domain

import "github.com/shopspring/decimal"

// DisplayRow is the rounded view of a scored record used by presenters.
// Gap and gain are converted to percentages.
type DisplayRow struct {
	Recommendation Recommendation `json:"recommendation"`
	Score          int            `json:"score"`
	Ticker         Symbol         `json:"ticker"`
	GapPct         *float64       `json:"gapPct"`
	GainPct        *float64       `json:"gainPct"`
	GapUpCount     int            `json:"gapUpCount"`
	GapDownCount   int            `json:"gapDownCount"`
	AvgGapUpPct    float64        `json:"avgGapUpPct"`
	Price          float64        `json:"price"`
	Volume         float64        `json:"volume"`
	VolAvg         float64        `json:"volAvg"`
	RSI            *float64       `json:"rsi"`
	SMA10          *float64       `json:"sma10"`
	SMA20          *float64       `json:"sma20"`
	SMA50          *float64       `json:"sma50"`
	Rationale      string         `json:"rationale"`
}

func round(f float64, places int32) float64 {
	return decimal.NewFromFloat(f).Round(places).InexactFloat64()
}

func roundPtr(f *float64, places int32) *float64 {
	if f == nil {
		return nil
	}
	r := round(*f, places)
	return &r
}

func pctPtr(f *float64, offset float64) *float64 {
	if f == nil {
		return nil
	}
	p := decimal.NewFromFloat(*f).Sub(decimal.NewFromFloat(offset)).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	return &p
}

func NewDisplayRow(r ScoredRecord) DisplayRow {
	return DisplayRow{
		Recommendation: r.Recommendation,
		Score:          r.Score,
		Ticker:         r.Ticker,
		GapPct:         pctPtr(r.OpenCloseRatio, 1),
		GainPct:        pctPtr(r.PctChangeN, 0),
		GapUpCount:     r.GapUpCount,
		GapDownCount:   r.GapDownCount,
		AvgGapUpPct:    round(r.AvgGapUpPct, 2),
		Price:          round(r.Price, 0),
		Volume:         round(r.Volume, 0),
		VolAvg:         round(r.VolAvg, 0),
		RSI:            roundPtr(r.RSI, 2),
		SMA10:          roundPtr(r.SMA10, 0),
		SMA20:          roundPtr(r.SMA20, 0),
		SMA50:          roundPtr(r.SMA50, 0),
		Rationale:      r.RationaleText,
	}
}

func NewDisplayRows(rows []ScoredRecord) []DisplayRow {
	out := make([]DisplayRow, len(rows))
	for i, r := range rows {
		out[i] = NewDisplayRow(r)
	}
	return out
}
