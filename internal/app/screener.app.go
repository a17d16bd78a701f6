package app

import (
	"context"
	"fmt"
	"stockscreener/internal/domain"
	"stockscreener/internal/logger"
	l1_service "stockscreener/internal/service/l1"
	l2_service "stockscreener/internal/service/l2"
	l3_service "stockscreener/internal/service/l3"
	"time"

	"github.com/google/uuid"
)

type ScreenerApp struct {
	TickerService     l1_service.TickerService
	PriceService      l1_service.PriceService
	IndicatorService  l2_service.IndicatorService
	RuleService       l2_service.RuleService
	ClassifierService l3_service.ClassifierService

	Benchmark domain.Symbol
	Lookback  time.Duration
	Now       func() time.Time
}

type ScreenRequest struct {
	Tickers    string
	Rules      string
	Params     domain.IndicatorParams
	Thresholds domain.Thresholds
	// Lookback of zero uses the app default.
	Lookback time.Duration
}

type ScreenResult struct {
	RunID     uuid.UUID                     `json:"runId"`
	RunDate   time.Time                     `json:"runDate"`
	Benchmark domain.BenchmarkSnapshot      `json:"benchmark"`
	Records   []domain.ScoredRecord         `json:"records"`
	Summary   domain.Summary                `json:"summary"`
	Warnings  []domain.ConfigurationWarning `json:"warnings"`
	Dropped   []domain.DroppedSymbol        `json:"dropped"`
	Rules     []domain.Rule                 `json:"rules"`
	Profile   *domain.Profile               `json:"profile"`
}

// Run executes one screening pass. Only a DataUnavailableError (or a
// cancelled context) fails the run; per symbol and per rule problems are
// reported in the result.
func (h ScreenerApp) Run(ctx context.Context, in ScreenRequest) (*ScreenResult, error) {
	log := logger.FromContext(ctx)
	profile := domain.GetProfile(ctx)

	runID := uuid.New()
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	runDate := now()

	params := in.Params
	if params == (domain.IndicatorParams{}) {
		params = domain.DefaultIndicatorParams()
	}
	lookback := in.Lookback
	if lookback <= 0 {
		lookback = h.Lookback
	}

	_, endSpan := profile.StartNewSpan("normalizing tickers")
	symbols, warnings := h.TickerService.Normalize(in.Tickers, h.Benchmark)
	endSpan()

	_, endSpan = profile.StartNewSpan("fetching prices")
	fetched, err := h.PriceService.Fetch(ctx, symbols, lookback)
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	if _, ok := fetched.Series[h.Benchmark]; !ok {
		return nil, domain.DataUnavailableError{
			Reason: fmt.Sprintf("benchmark %s could not be fetched", h.Benchmark),
			Err:    benchmarkFetchErr(fetched.Failed, h.Benchmark),
		}
	}

	_, endSpan = profile.StartNewSpan("computing indicators")
	computed, err := h.IndicatorService.Compute(ctx, fetched.Series, h.Benchmark, params)
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to compute indicators: %w", err)
	}

	records := []domain.FeatureRecord{}
	for _, s := range symbols {
		if r, ok := computed.Records[s]; ok {
			records = append(records, r)
		}
	}

	_, endSpan = profile.StartNewSpan("evaluating rules")
	scored, ruleWarnings := h.RuleService.Evaluate(ctx, records, in.Rules, in.Thresholds)
	endSpan()
	warnings = append(warnings, ruleWarnings...)

	_, endSpan = profile.StartNewSpan("ranking")
	ranked := h.ClassifierService.ClassifyAndRank(scored, in.Thresholds)
	summary := h.ClassifierService.Summarize(ranked)
	endSpan()

	dropped := append([]domain.DroppedSymbol{}, fetched.Failed...)
	dropped = append(dropped, computed.Dropped...)

	log.Infow(
		"screening run complete",
		"runId", runID.String(),
		"symbols", len(symbols),
		"scored", len(ranked),
		"dropped", len(dropped),
		"buy", summary.Buy,
		"hold", summary.Hold,
		"sell", summary.Sell,
	)

	return &ScreenResult{
		RunID:     runID,
		RunDate:   runDate,
		Benchmark: computed.Benchmark,
		Records:   ranked,
		Summary:   summary,
		Warnings:  warnings,
		Dropped:   dropped,
		Rules:     l2_service.ParseRules(in.Rules),
		Profile:   profile,
	}, nil
}

func benchmarkFetchErr(failed []domain.DroppedSymbol, benchmark domain.Symbol) error {
	for _, f := range failed {
		if f.Symbol == benchmark {
			return f.Err
		}
	}
	return nil
}
