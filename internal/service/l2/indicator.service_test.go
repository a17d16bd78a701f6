package l2_service

import (
	"context"
	"errors"
	"stockscreener/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func risingSeries(n int) domain.BarSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := []domain.Bar{}
	for i := 0; i < n; i++ {
		c := float64(i + 1)
		bars = append(bars, domain.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: float64(100 * (i + 1)),
		})
	}
	return bars
}

func benchmarkSeries(prev, last float64) domain.BarSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return domain.BarSeries{
		{Date: start, Open: prev, High: prev, Low: prev, Close: prev, Volume: 1},
		{Date: start.AddDate(0, 0, 1), Open: last, High: last, Low: last, Close: last, Volume: 1},
	}
}

func TestNewBenchmarkSnapshot(t *testing.T) {
	t.Run("change is in percent", func(t *testing.T) {
		snapshot, err := NewBenchmarkSnapshot("^JKSE", benchmarkSeries(100, 102))
		require.NoError(t, err)
		require.Equal(t, 100.0, snapshot.PreviousClose)
		require.Equal(t, 102.0, snapshot.LatestClose)
		require.InDelta(t, 2.0, snapshot.ChangePct, 1e-9)
	})

	t.Run("single bar is unavailable", func(t *testing.T) {
		_, err := NewBenchmarkSnapshot("^JKSE", risingSeries(1))
		var unavailable domain.DataUnavailableError
		require.True(t, errors.As(err, &unavailable))
	})

	t.Run("zero previous close is unavailable", func(t *testing.T) {
		series := benchmarkSeries(100, 102)
		series[0].Close = 0
		_, err := NewBenchmarkSnapshot("^JKSE", series)
		require.Error(t, err)
	})
}

func Test_indicatorServiceHandler_Compute(t *testing.T) {
	ctx := context.Background()
	params := domain.DefaultIndicatorParams()

	t.Run("benchmark context is copied into every record", func(t *testing.T) {
		h := NewIndicatorService()
		result, err := h.Compute(ctx, map[domain.Symbol]domain.BarSeries{
			"^JKSE":   benchmarkSeries(100, 102),
			"AAAA.JK": risingSeries(60),
			"BBBB.JK": risingSeries(70),
		}, "^JKSE", params)
		require.NoError(t, err)

		require.Len(t, result.Records, 2)
		_, ok := result.Records["^JKSE"]
		require.False(t, ok)
		for _, r := range result.Records {
			require.Equal(t, 100.0, r.IHSGPrevClose)
			require.InDelta(t, 2.0, r.IHSGChangePct, 1e-9)
		}
	})

	t.Run("computes features from the latest bars", func(t *testing.T) {
		h := NewIndicatorService()
		result, err := h.Compute(ctx, map[domain.Symbol]domain.BarSeries{
			"^JKSE":   benchmarkSeries(100, 102),
			"AAAA.JK": risingSeries(60),
		}, "^JKSE", params)
		require.NoError(t, err)

		r := result.Records["AAAA.JK"]
		require.Equal(t, domain.Symbol("AAAA.JK"), r.Ticker)
		require.Equal(t, 60.0, r.Price)
		require.Equal(t, 59.0, r.PrevClose)
		require.Equal(t, 58.0, r.Prev2Close)
		require.InDelta(t, 60.0/59.0, *r.OpenCloseRatio, 1e-12)
		require.InDelta(t, 60.0/55.0-1, *r.PctChangeN, 1e-12)
		require.InDelta(t, 59.0, *r.SMA3, 1e-9)
		require.InDelta(t, 58.0, *r.SMA5, 1e-9)
		require.InDelta(t, 55.5, *r.SMA10, 1e-9)
		require.InDelta(t, 50.5, *r.SMA20, 1e-9)
		require.InDelta(t, 35.5, *r.SMA50, 1e-9)
		require.InDelta(t, 100.0, *r.RSI, 1e-9)
		require.Equal(t, 6000.0, r.Volume)
		// mean of 4100..6000 step 100
		require.InDelta(t, 5050.0, r.VolAvg, 1e-9)
		require.Equal(t, 5, r.GapUpCount)
		require.Equal(t, 0, r.GapDownCount)
	})

	t.Run("gap history over the percent change period", func(t *testing.T) {
		series := risingSeries(60)
		for i := range series {
			series[i].Close = 100
			series[i].Open = 100
		}
		series[57].Open = 102
		series[58].Open = 98
		series[59].Open = 104

		h := NewIndicatorService()
		result, err := h.Compute(ctx, map[domain.Symbol]domain.BarSeries{
			"^JKSE":   benchmarkSeries(100, 102),
			"AAAA.JK": series,
		}, "^JKSE", params)
		require.NoError(t, err)

		r := result.Records["AAAA.JK"]
		require.Equal(t, 2, r.GapUpCount)
		require.Equal(t, 1, r.GapDownCount)
		require.InDelta(t, 3.0, r.AvgGapUpPct, 1e-9)
		require.InDelta(t, 1.04, *r.OpenCloseRatio, 1e-12)
	})

	t.Run("short history is dropped as insufficient", func(t *testing.T) {
		h := NewIndicatorService()
		result, err := h.Compute(ctx, map[domain.Symbol]domain.BarSeries{
			"^JKSE":   benchmarkSeries(100, 102),
			"AAAA.JK": risingSeries(60),
			"NEWW.JK": risingSeries(30),
		}, "^JKSE", params)
		require.NoError(t, err)

		require.Len(t, result.Records, 1)
		require.Len(t, result.Dropped, 1)
		require.Equal(t, domain.Symbol("NEWW.JK"), result.Dropped[0].Symbol)

		var insufficient domain.DataInsufficientError
		require.True(t, errors.As(result.Dropped[0].Err, &insufficient))
		require.Equal(t, 30, insufficient.Have)
		require.Equal(t, 50, insufficient.Need)
	})

	t.Run("missing benchmark is unavailable", func(t *testing.T) {
		h := NewIndicatorService()
		_, err := h.Compute(ctx, map[domain.Symbol]domain.BarSeries{
			"AAAA.JK": risingSeries(60),
		}, "^JKSE", params)
		var unavailable domain.DataUnavailableError
		require.True(t, errors.As(err, &unavailable))
	})

	t.Run("non positive periods are rejected", func(t *testing.T) {
		h := NewIndicatorService()
		_, err := h.Compute(ctx, map[domain.Symbol]domain.BarSeries{
			"^JKSE": benchmarkSeries(100, 102),
		}, "^JKSE", domain.IndicatorParams{RsiPeriod: 0, VolAvgPeriod: 20, PctChangePeriod: 5})
		require.Error(t, err)
	})

	t.Run("repeated runs are identical", func(t *testing.T) {
		input := map[domain.Symbol]domain.BarSeries{
			"^JKSE":   benchmarkSeries(100, 102),
			"AAAA.JK": risingSeries(60),
		}
		h := NewIndicatorService()
		first, err := h.Compute(ctx, input, "^JKSE", params)
		require.NoError(t, err)
		second, err := h.Compute(ctx, input, "^JKSE", params)
		require.NoError(t, err)
		require.Equal(t, first, second)
	})
}

func Test_indicatorHelpers(t *testing.T) {
	t.Run("sma is missing when shorter than the window", func(t *testing.T) {
		closes := risingSeries(49).Closes()
		require.Nil(t, lastSma(closes, 50))
		require.NotNil(t, lastSma(closes, 20))
	})

	t.Run("rsi needs more closes than the period", func(t *testing.T) {
		require.Nil(t, lastRsi(risingSeries(14).Closes(), 14))
		require.NotNil(t, lastRsi(risingSeries(15).Closes(), 14))
		require.Nil(t, lastRsi(risingSeries(15).Closes(), 1))
	})

	t.Run("rsi is bounded", func(t *testing.T) {
		closes := []float64{44, 44.3, 44.1, 43.6, 44.3, 44.8, 45.1, 45.4, 45.8, 46.1, 45.9, 46.2, 45.6, 46.3, 46.3, 46.0, 46.4, 46.2, 45.6, 46.2}
		rsi := lastRsi(closes, 14)
		require.NotNil(t, rsi)
		require.GreaterOrEqual(t, *rsi, 0.0)
		require.LessOrEqual(t, *rsi, 100.0)
	})

	t.Run("percent change needs a base bar", func(t *testing.T) {
		closes := []float64{10, 11, 12}
		require.Nil(t, pctChange(closes, 3))
		require.InDelta(t, 0.2, *pctChange(closes, 2), 1e-12)
	})

	t.Run("non finite values become missing", func(t *testing.T) {
		require.Nil(t, pctChange([]float64{0, 5}, 1))
	})
}
