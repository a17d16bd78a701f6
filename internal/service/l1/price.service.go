package l1_service

import (
	"context"
	"fmt"
	"stockscreener/internal/domain"
	"stockscreener/internal/logger"
	"stockscreener/internal/repository"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	DefaultLookback  = 3 * 365 * 24 * time.Hour
	DefaultCacheTTL  = 15 * time.Minute
	defaultNumWorker = 10
)

type PriceService interface {
	Fetch(ctx context.Context, symbols []domain.Symbol, lookback time.Duration) (*FetchResult, error)
}

type FetchResult struct {
	Series map[domain.Symbol]domain.BarSeries
	Failed []domain.DroppedSymbol
}

type priceServiceHandler struct {
	MarketDataRepository repository.MarketDataRepository
	Cache                *cache.Cache
	NumWorkers           int
	Now                  func() time.Time
}

// NewPriceService wraps a market data repository with per-symbol fan-out and
// a TTL cache. A ttl <= 0 disables caching.
func NewPriceService(marketDataRepository repository.MarketDataRepository, ttl time.Duration, numWorkers int) PriceService {
	var c *cache.Cache
	if ttl > 0 {
		c = cache.New(ttl, 2*ttl)
	}
	if numWorkers <= 0 {
		numWorkers = defaultNumWorker
	}
	return priceServiceHandler{
		MarketDataRepository: marketDataRepository,
		Cache:                c,
		NumWorkers:           numWorkers,
		Now:                  time.Now,
	}
}

type fetchInput struct {
	Symbol domain.Symbol
}

type fetchResult struct {
	Symbol domain.Symbol
	Series domain.BarSeries
	Err    error
}

func (h priceServiceHandler) cacheKey(symbol domain.Symbol, start, end time.Time) string {
	return fmt.Sprintf("%s|%s|%s|%s", h.MarketDataRepository.Name(), symbol, start.Format(time.DateOnly), end.Format(time.DateOnly))
}

func (h priceServiceHandler) getDailyBars(ctx context.Context, symbol domain.Symbol, start, end time.Time) (domain.BarSeries, error) {
	key := h.cacheKey(symbol, start, end)
	if h.Cache != nil {
		if cached, ok := h.Cache.Get(key); ok {
			return cached.(domain.BarSeries), nil
		}
	}

	series, err := h.MarketDataRepository.GetDailyBars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no bars returned")
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bar series: %w", err)
	}

	if h.Cache != nil {
		h.Cache.Set(key, series, cache.DefaultExpiration)
	}
	return series, nil
}

// Fetch loads bars for every symbol independently. A symbol that fails is
// reported in Failed; only a batch where nothing succeeds is an error.
func (h priceServiceHandler) Fetch(ctx context.Context, symbols []domain.Symbol, lookback time.Duration) (*FetchResult, error) {
	log := logger.FromContext(ctx)

	if len(symbols) == 0 {
		return nil, domain.DataUnavailableError{Reason: "no symbols requested"}
	}
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	now := h.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	start := end.Add(-lookback)

	inputCh := make(chan fetchInput, len(symbols))
	resultCh := make(chan fetchResult, len(symbols))
	var wg sync.WaitGroup
	for _, s := range symbols {
		wg.Add(1)
		inputCh <- fetchInput{Symbol: s}
	}
	close(inputCh)

	for i := 0; i < h.NumWorkers; i++ {
		go func() {
			for input := range inputCh {
				var (
					series domain.BarSeries
					err    error
				)
				if ctxErr := ctx.Err(); ctxErr != nil {
					err = ctxErr
				} else {
					series, err = h.getDailyBars(ctx, input.Symbol, start, end)
				}
				resultCh <- fetchResult{
					Symbol: input.Symbol,
					Series: series,
					Err:    err,
				}
				wg.Done()
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	bySymbol := map[domain.Symbol]fetchResult{}
	for res := range resultCh {
		bySymbol[res.Symbol] = res
	}

	out := &FetchResult{
		Series: map[domain.Symbol]domain.BarSeries{},
		Failed: []domain.DroppedSymbol{},
	}
	var firstErr error
	// walk the input order so Failed is deterministic
	for _, s := range symbols {
		res, ok := bySymbol[s]
		if !ok {
			continue
		}
		if res.Err != nil {
			err := domain.SymbolFetchError{Symbol: s, Err: res.Err}
			log.Warnf("%s", err.Error())
			out.Failed = append(out.Failed, domain.NewDroppedSymbol(s, err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out.Series[s] = res.Series
	}

	if err := ctx.Err(); err != nil {
		return nil, domain.DataUnavailableError{Reason: "fetch cancelled", Err: err}
	}
	if len(out.Series) == 0 {
		return nil, domain.DataUnavailableError{
			Reason: fmt.Sprintf("all %d symbols failed", len(symbols)),
			Err:    firstErr,
		}
	}

	log.Infof("fetched bars for %d/%d symbols from %s", len(out.Series), len(symbols), h.MarketDataRepository.Name())
	return out, nil
}
