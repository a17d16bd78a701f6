package domain

import "fmt"

// IndicatorParams are the user-tunable lookback periods of the indicator engine.
type IndicatorParams struct {
	RsiPeriod       int `json:"rsiPeriod"`
	VolAvgPeriod    int `json:"volAvgPeriod"`
	PctChangePeriod int `json:"pctChangePeriod"`
}

// MovingAverageWindows are the fixed SMA windows exposed as SMA_<n>.
var MovingAverageWindows = []int{3, 5, 10, 20, 50}

func DefaultIndicatorParams() IndicatorParams {
	return IndicatorParams{
		RsiPeriod:       14,
		VolAvgPeriod:    20,
		PctChangePeriod: 5,
	}
}

// MinBars is the shortest history a symbol needs before features are extracted.
func (p IndicatorParams) MinBars() int {
	out := 2
	periods := append([]int{p.RsiPeriod, p.VolAvgPeriod, p.PctChangePeriod}, MovingAverageWindows...)
	for _, n := range periods {
		if n > out {
			out = n
		}
	}
	return out
}

// Validate checks the ranges offered to users. The indicator engine itself
// only requires positive periods.
func (p IndicatorParams) Validate() error {
	if p.RsiPeriod < 7 || p.RsiPeriod > 30 {
		return fmt.Errorf("rsi period must be between 7 and 30, got %d", p.RsiPeriod)
	}
	if p.VolAvgPeriod < 10 || p.VolAvgPeriod > 50 {
		return fmt.Errorf("volume average period must be between 10 and 50, got %d", p.VolAvgPeriod)
	}
	if p.PctChangePeriod < 1 || p.PctChangePeriod > 60 {
		return fmt.Errorf("percent change period must be between 1 and 60, got %d", p.PctChangePeriod)
	}
	return nil
}

// BenchmarkSnapshot is the macro context shared by every record of a run.
type BenchmarkSnapshot struct {
	Symbol        Symbol  `json:"symbol"`
	PreviousClose float64 `json:"previousClose"`
	LatestClose   float64 `json:"latestClose"`
	ChangePct     float64 `json:"changePct"`
}

// FeatureRecord is the flat per-ticker snapshot rules are evaluated against.
// It is built once by the indicator engine and never modified afterwards.
// Nil pointers are indicators that could not be computed from the history.
type FeatureRecord struct {
	Ticker Symbol `json:"Ticker"`

	Price      float64 `json:"Price"`
	Open       float64 `json:"Open"`
	High       float64 `json:"High"`
	Low        float64 `json:"Low"`
	Volume     float64 `json:"Volume"`
	VolAvg     float64 `json:"Vol_Avg"`
	PrevClose  float64 `json:"Prev_Close"`
	Prev2Close float64 `json:"Prev_2_Close"`

	OpenCloseRatio *float64 `json:"Open_Close_Ratio"`
	PctChangeN     *float64 `json:"Pct_Change_N"`

	SMA3  *float64 `json:"SMA_3"`
	SMA5  *float64 `json:"SMA_5"`
	SMA10 *float64 `json:"SMA_10"`
	SMA20 *float64 `json:"SMA_20"`
	SMA50 *float64 `json:"SMA_50"`

	RSI *float64 `json:"RSI"`

	GapUpCount   int     `json:"Gap_Up_Count"`
	GapDownCount int     `json:"Gap_Down_Count"`
	AvgGapUpPct  float64 `json:"Avg_Gap_Up_Pct"`

	IHSGPrevClose float64 `json:"IHSG_Prev_Close"`
	IHSGChangePct float64 `json:"IHSG_Change_Pct"`
}

type FeatureField struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`

	get func(FeatureRecord) *float64
}

func (f FeatureField) Value(r FeatureRecord) *float64 {
	return f.get(r)
}

func float64Ptr(f float64) *float64 {
	return &f
}

// FeatureFields is the declared rule namespace, in export column order.
var FeatureFields = []FeatureField{
	{"Price", "Price", "Latest close", func(r FeatureRecord) *float64 { return float64Ptr(r.Price) }},
	{"Open", "Price", "Latest open", func(r FeatureRecord) *float64 { return float64Ptr(r.Open) }},
	{"High", "Price", "Latest high", func(r FeatureRecord) *float64 { return float64Ptr(r.High) }},
	{"Low", "Price", "Latest low", func(r FeatureRecord) *float64 { return float64Ptr(r.Low) }},
	{"Volume", "Volume", "Latest volume", func(r FeatureRecord) *float64 { return float64Ptr(r.Volume) }},
	{"Vol_Avg", "Volume", "Mean volume over the volume average period", func(r FeatureRecord) *float64 { return float64Ptr(r.VolAvg) }},
	{"Prev_Close", "History", "Close one bar back", func(r FeatureRecord) *float64 { return float64Ptr(r.PrevClose) }},
	{"Prev_2_Close", "History", "Close two bars back", func(r FeatureRecord) *float64 { return float64Ptr(r.Prev2Close) }},
	{"Open_Close_Ratio", "Ratio", "Latest open divided by previous close", func(r FeatureRecord) *float64 { return r.OpenCloseRatio }},
	{"Pct_Change_N", "Gain", "Return over the percent change period (0.05 = 5%)", func(r FeatureRecord) *float64 { return r.PctChangeN }},
	{"SMA_3", "Moving average", "3 bar simple moving average of close", func(r FeatureRecord) *float64 { return r.SMA3 }},
	{"SMA_5", "Moving average", "5 bar simple moving average of close", func(r FeatureRecord) *float64 { return r.SMA5 }},
	{"SMA_10", "Moving average", "10 bar simple moving average of close", func(r FeatureRecord) *float64 { return r.SMA10 }},
	{"SMA_20", "Moving average", "20 bar simple moving average of close", func(r FeatureRecord) *float64 { return r.SMA20 }},
	{"SMA_50", "Moving average", "50 bar simple moving average of close", func(r FeatureRecord) *float64 { return r.SMA50 }},
	{"RSI", "Momentum", "Relative strength index over the rsi period", func(r FeatureRecord) *float64 { return r.RSI }},
	{"Gap_Up_Count", "Gap history", "Bars that opened above the previous close", func(r FeatureRecord) *float64 { return float64Ptr(float64(r.GapUpCount)) }},
	{"Gap_Down_Count", "Gap history", "Bars that opened below the previous close", func(r FeatureRecord) *float64 { return float64Ptr(float64(r.GapDownCount)) }},
	{"Avg_Gap_Up_Pct", "Gap history", "Mean gap up size in percent", func(r FeatureRecord) *float64 { return float64Ptr(r.AvgGapUpPct) }},
	{"IHSG_Prev_Close", "Macro", "Benchmark previous close", func(r FeatureRecord) *float64 { return float64Ptr(r.IHSGPrevClose) }},
	{"IHSG_Change_Pct", "Macro", "Benchmark change in percent", func(r FeatureRecord) *float64 { return float64Ptr(r.IHSGChangePct) }},
}

func FeatureFieldNames() []string {
	out := make([]string, len(FeatureFields))
	for i, f := range FeatureFields {
		out[i] = f.Name
	}
	return out
}

// Fields returns the record as the variable environment used by rules.
func (r FeatureRecord) Fields() map[string]*float64 {
	out := make(map[string]*float64, len(FeatureFields))
	for _, f := range FeatureFields {
		out[f.Name] = f.get(r)
	}
	return out
}

// SetMovingAverage stores the SMA of the given window on the record.
func (r *FeatureRecord) SetMovingAverage(window int, v *float64) error {
	switch window {
	case 3:
		r.SMA3 = v
	case 5:
		r.SMA5 = v
	case 10:
		r.SMA10 = v
	case 20:
		r.SMA20 = v
	case 50:
		r.SMA50 = v
	default:
		return fmt.Errorf("no SMA_%d field", window)
	}
	return nil
}
