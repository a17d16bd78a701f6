package app

import (
	"context"
	"errors"
	"stockscreener/internal/domain"
	mock_repository "stockscreener/internal/repository/mocks"
	l1_service "stockscreener/internal/service/l1"
	l2_service "stockscreener/internal/service/l2"
	l3_service "stockscreener/internal/service/l3"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// series returns n daily bars with closes from `from` in steps of `step`.
// The last bar opens `gap` above the previous close.
func series(n int, from, step, gap float64) domain.BarSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := []domain.Bar{}
	for i := 0; i < n; i++ {
		c := from + step*float64(i)
		bars = append(bars, domain.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		})
	}
	if n > 1 {
		bars[n-1].Open = bars[n-2].Close * (1 + gap)
	}
	return bars
}

func newTestApp(t *testing.T, bars map[domain.Symbol]domain.BarSeries) ScreenerApp {
	ctrl := gomock.NewController(t)
	repo := mock_repository.NewMockMarketDataRepository(ctrl)
	repo.EXPECT().Name().Return("mock").AnyTimes()
	repo.EXPECT().GetDailyBars(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, symbol domain.Symbol, start, end time.Time) (domain.BarSeries, error) {
			s, ok := bars[symbol]
			if !ok {
				return nil, errors.New("symbol not found")
			}
			return s, nil
		},
	).AnyTimes()

	return ScreenerApp{
		TickerService:     l1_service.NewTickerService(l1_service.DefaultExchangeSuffix),
		PriceService:      l1_service.NewPriceService(repo, 0, 4),
		IndicatorService:  l2_service.NewIndicatorService(),
		RuleService:       l2_service.NewRuleService(),
		ClassifierService: l3_service.NewClassifierService(),
		Benchmark:         "^JKSE",
		Lookback:          l1_service.DefaultLookback,
		Now: func() time.Time {
			return time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
		},
	}
}

func TestScreenerApp_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("end to end run", func(t *testing.T) {
		app := newTestApp(t, map[domain.Symbol]domain.BarSeries{
			"^JKSE":   series(60, 100, 0, 0.02),
			"BBCA.JK": series(60, 100, 1, 0.03),
			"TLKM.JK": series(60, 200, -1, -0.01),
			"GOTO.JK": series(20, 50, 1, 0),
		})

		result, err := app.Run(ctx, ScreenRequest{
			Tickers:    "bbca, TLKM.JK\nGOTO MISSING",
			Rules:      "Open_Close_Ratio > 1.005\nPrice > SMA_20\nRSI > 50 # momentum\nIHSG_Change_Pct >= 0",
			Thresholds: domain.DefaultThresholds(),
		})
		require.NoError(t, err)

		require.Equal(t, "^JKSE", result.Benchmark.Symbol.String())
		require.InDelta(t, 0, result.Benchmark.ChangePct, 1e-9)
		require.Len(t, result.Records, 2)
		require.Equal(t, domain.Symbol("BBCA.JK"), result.Records[0].Ticker)
		require.Equal(t, 4, result.Records[0].Score)
		require.Equal(t, domain.RecommendationBuy, result.Records[0].Recommendation)
		require.Equal(t, domain.Symbol("TLKM.JK"), result.Records[1].Ticker)
		require.Equal(t, 1, result.Records[1].Score)
		require.Equal(t, domain.RecommendationSell, result.Records[1].Recommendation)

		require.Equal(t, domain.Summary{Buy: 1, Hold: 0, Sell: 1, Total: 2}, result.Summary)

		dropped := []domain.Symbol{}
		for _, d := range result.Dropped {
			dropped = append(dropped, d.Symbol)
		}
		require.ElementsMatch(t, []domain.Symbol{"MISSING.JK", "GOTO.JK"}, dropped)
		require.Len(t, result.Rules, 4)
		require.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), result.RunDate)
		require.NotEmpty(t, result.Profile.Spans)
	})

	t.Run("benchmark failure is fatal", func(t *testing.T) {
		app := newTestApp(t, map[domain.Symbol]domain.BarSeries{
			"BBCA.JK": series(60, 100, 1, 0.03),
		})

		_, err := app.Run(ctx, ScreenRequest{
			Tickers:    "BBCA",
			Rules:      "Price > 0",
			Thresholds: domain.DefaultThresholds(),
		})
		var unavailable domain.DataUnavailableError
		require.True(t, errors.As(err, &unavailable))
	})

	t.Run("empty inputs fall back with warnings", func(t *testing.T) {
		app := newTestApp(t, map[domain.Symbol]domain.BarSeries{
			"^JKSE": series(60, 100, 0, 0),
		})

		result, err := app.Run(ctx, ScreenRequest{
			Thresholds: domain.DefaultThresholds(),
		})
		require.NoError(t, err)
		require.Empty(t, result.Records)
		require.Len(t, result.Warnings, 2)
	})
}
