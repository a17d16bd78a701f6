package repository

import (
	"context"
	"fmt"
	"stockscreener/internal/domain"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

type alpacaRepositoryHandler struct {
	MdClient *marketdata.Client
}

// NewAlpacaRepository serves daily bars from Alpaca market data. Symbols are
// passed through as-is, so it is meant for a US universe with no exchange
// suffix and an ETF such as SPY as the benchmark.
func NewAlpacaRepository(apiKey, apiSecret, endpoint string) MarketDataRepository {
	mdClient := marketdata.NewClient(marketdata.ClientOpts{
		BaseURL:   endpoint,
		APIKey:    apiKey,
		APISecret: apiSecret,
	})

	return alpacaRepositoryHandler{
		MdClient: mdClient,
	}
}

func (h alpacaRepositoryHandler) Name() string {
	return "alpaca"
}

func (h alpacaRepositoryHandler) GetDailyBars(ctx context.Context, symbol domain.Symbol, start, end time.Time) (domain.BarSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results, err := h.MdClient.GetBars(symbol.String(), marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.Split,
		Start:      start,
		End:        end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get alpaca bars for %s: %w", symbol, err)
	}

	return newBarSeriesFromAlpaca(results), nil
}

func newBarSeriesFromAlpaca(results []marketdata.Bar) domain.BarSeries {
	bars := make([]domain.Bar, 0, len(results))
	for _, r := range results {
		bars = append(bars, domain.Bar{
			Date:   r.Timestamp.UTC(),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: float64(r.Volume),
		})
	}
	return domain.NewBarSeries(bars)
}
