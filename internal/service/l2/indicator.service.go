package l2_service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"stockscreener/internal/domain"
	"stockscreener/internal/logger"

	"github.com/markcheno/go-talib"
	"github.com/montanaflynn/stats"
)

type ComputeResult struct {
	Records   map[domain.Symbol]domain.FeatureRecord
	Benchmark domain.BenchmarkSnapshot
	Dropped   []domain.DroppedSymbol
}

type IndicatorService interface {
	Compute(ctx context.Context, series map[domain.Symbol]domain.BarSeries, benchmark domain.Symbol, params domain.IndicatorParams) (*ComputeResult, error)
}

type indicatorServiceHandler struct{}

func NewIndicatorService() IndicatorService {
	return indicatorServiceHandler{}
}

// NewBenchmarkSnapshot summarizes the last two bars of the benchmark.
func NewBenchmarkSnapshot(symbol domain.Symbol, series domain.BarSeries) (domain.BenchmarkSnapshot, error) {
	if len(series) < 2 {
		return domain.BenchmarkSnapshot{}, domain.DataUnavailableError{
			Reason: fmt.Sprintf("benchmark %s has %d bars, need at least 2", symbol, len(series)),
		}
	}
	prev := series[len(series)-2].Close
	last := series[len(series)-1].Close
	changePct := (last - prev) / prev * 100
	if !isFinite(changePct) {
		return domain.BenchmarkSnapshot{}, domain.DataUnavailableError{
			Reason: fmt.Sprintf("benchmark %s previous close is %f", symbol, prev),
		}
	}

	return domain.BenchmarkSnapshot{
		Symbol:        symbol,
		PreviousClose: prev,
		LatestClose:   last,
		ChangePct:     changePct,
	}, nil
}

func (h indicatorServiceHandler) Compute(ctx context.Context, series map[domain.Symbol]domain.BarSeries, benchmark domain.Symbol, params domain.IndicatorParams) (*ComputeResult, error) {
	log := logger.FromContext(ctx)

	if params.RsiPeriod <= 0 || params.VolAvgPeriod <= 0 || params.PctChangePeriod <= 0 {
		return nil, fmt.Errorf("indicator periods must be positive, got %+v", params)
	}

	benchmarkSeries, ok := series[benchmark]
	if !ok {
		return nil, domain.DataUnavailableError{Reason: fmt.Sprintf("no data for benchmark %s", benchmark)}
	}
	snapshot, err := NewBenchmarkSnapshot(benchmark, benchmarkSeries)
	if err != nil {
		return nil, err
	}

	symbols := []domain.Symbol{}
	for s := range series {
		if s != benchmark {
			symbols = append(symbols, s)
		}
	}
	sort.Slice(symbols, func(i, j int) bool {
		return symbols[i] < symbols[j]
	})

	out := &ComputeResult{
		Records:   map[domain.Symbol]domain.FeatureRecord{},
		Benchmark: snapshot,
		Dropped:   []domain.DroppedSymbol{},
	}
	minBars := params.MinBars()
	for _, symbol := range symbols {
		bars := series[symbol]
		if len(bars) < minBars {
			err := domain.DataInsufficientError{Symbol: symbol, Have: len(bars), Need: minBars}
			log.Debugf("dropping %s", err.Error())
			out.Dropped = append(out.Dropped, domain.NewDroppedSymbol(symbol, err))
			continue
		}
		record, err := computeFeatureRecord(symbol, bars, snapshot, params)
		if err != nil {
			return nil, fmt.Errorf("failed to compute features for %s: %w", symbol, err)
		}
		out.Records[symbol] = *record
	}

	return out, nil
}

func computeFeatureRecord(symbol domain.Symbol, bars domain.BarSeries, snapshot domain.BenchmarkSnapshot, params domain.IndicatorParams) (*domain.FeatureRecord, error) {
	n := len(bars)
	closes := bars.Closes()
	volumes := bars.Volumes()
	latest, ok := bars.Last()
	if !ok || n < 2 {
		return nil, fmt.Errorf("need at least 2 bars, got %d", n)
	}

	volAvg, err := stats.Mean(tail(volumes, params.VolAvgPeriod))
	if err != nil {
		return nil, fmt.Errorf("failed to compute volume average: %w", err)
	}

	gapUp, gapDown, avgGapUpPct, err := gapHistory(bars.Opens(), closes, params.PctChangePeriod)
	if err != nil {
		return nil, err
	}

	record := domain.FeatureRecord{
		Ticker:         symbol,
		Price:          latest.Close,
		Open:           latest.Open,
		High:           latest.High,
		Low:            latest.Low,
		Volume:         latest.Volume,
		VolAvg:         volAvg,
		PrevClose:      closes[n-2],
		Prev2Close:     valueAt(closes, n-3),
		OpenCloseRatio: finitePtr(latest.Open / closes[n-2]),
		PctChangeN:     pctChange(closes, params.PctChangePeriod),
		RSI:            lastRsi(closes, params.RsiPeriod),
		GapUpCount:     gapUp,
		GapDownCount:   gapDown,
		AvgGapUpPct:    avgGapUpPct,
		IHSGPrevClose:  snapshot.PreviousClose,
		IHSGChangePct:  snapshot.ChangePct,
	}
	for _, window := range domain.MovingAverageWindows {
		if err := record.SetMovingAverage(window, lastSma(closes, window)); err != nil {
			return nil, err
		}
	}
	return &record, nil
}

// gapHistory inspects open[t] / close[t-1] over the last `period` bars.
func gapHistory(opens, closes []float64, period int) (int, int, float64, error) {
	start := len(opens) - period
	if start < 1 {
		start = 1
	}
	up, down := 0, 0
	gapUpPcts := []float64{}
	for i := start; i < len(opens); i++ {
		ratio := opens[i] / closes[i-1]
		if !isFinite(ratio) {
			continue
		}
		if ratio > 1 {
			up++
			gapUpPcts = append(gapUpPcts, (ratio-1)*100)
		} else if ratio < 1 {
			down++
		}
	}
	if up == 0 {
		return up, down, 0, nil
	}
	avg, err := stats.Mean(gapUpPcts)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to compute average gap up: %w", err)
	}
	return up, down, avg, nil
}

func pctChange(closes []float64, period int) *float64 {
	last := len(closes) - 1
	base := last - period
	if base < 0 {
		return nil
	}
	return finitePtr(closes[last]/closes[base] - 1)
}

func lastSma(closes []float64, window int) *float64 {
	if window <= 0 || len(closes) < window {
		return nil
	}
	out := talib.Sma(closes, window)
	return finitePtr(out[len(out)-1])
}

// lastRsi needs `period` price changes, i.e. more than `period` closes.
func lastRsi(closes []float64, period int) *float64 {
	if period < 2 || len(closes) <= period {
		return nil
	}
	out := talib.Rsi(closes, period)
	return finitePtr(out[len(out)-1])
}

func tail(values []float64, n int) []float64 {
	if n >= len(values) {
		return values
	}
	return values[len(values)-n:]
}

func valueAt(values []float64, i int) float64 {
	if i < 0 || i >= len(values) {
		return 0
	}
	return values[i]
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finitePtr(f float64) *float64 {
	if !isFinite(f) {
		return nil
	}
	return &f
}
