package repository

import (
	"context"
	"fmt"
	"stockscreener/internal/domain"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

//go:generate mockgen -source=market_data.repository.go -destination=mocks/mock_market_data.repository.go -package=mock_repository

// MarketDataRepository is the upstream source of daily bars.
type MarketDataRepository interface {
	Name() string
	GetDailyBars(ctx context.Context, symbol domain.Symbol, start, end time.Time) (domain.BarSeries, error)
}

type yahooRepositoryHandler struct{}

func NewYahooRepository() MarketDataRepository {
	return yahooRepositoryHandler{}
}

func (h yahooRepositoryHandler) Name() string {
	return "yahoo"
}

func (h yahooRepositoryHandler) GetDailyBars(ctx context.Context, symbol domain.Symbol, start, end time.Time) (domain.BarSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Symbol:   symbol.String(),
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	bars := []domain.Bar{}
	for iter.Next() {
		bars = append(bars, newBarFromChart(iter.Bar()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get prices for %s: %w", symbol, err)
	}

	return domain.NewBarSeries(bars), nil
}

func newBarFromChart(b *finance.ChartBar) domain.Bar {
	return domain.Bar{
		Date:   time.Unix(int64(b.Timestamp), 0).UTC(),
		Open:   b.Open.InexactFloat64(),
		High:   b.High.InexactFloat64(),
		Low:    b.Low.InexactFloat64(),
		Close:  b.Close.InexactFloat64(),
		Volume: float64(b.Volume),
	}
}
