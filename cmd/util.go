package cmd

import (
	"fmt"
	"stockscreener/api"
	"stockscreener/internal/app"
	"stockscreener/internal/domain"
	"stockscreener/internal/repository"
	l1_service "stockscreener/internal/service/l1"
	l2_service "stockscreener/internal/service/l2"
	l3_service "stockscreener/internal/service/l3"
	"stockscreener/internal/util"
	"time"
)

const defaultRunTimeout = 2 * time.Minute

func NewMarketDataRepository(config util.Config) (repository.MarketDataRepository, error) {
	switch config.Provider {
	case util.ProviderYahoo:
		return repository.NewYahooRepository(), nil
	case util.ProviderAlpaca:
		return repository.NewAlpacaRepository(config.Alpaca.ApiKey, config.Alpaca.ApiSecret, config.Alpaca.Endpoint), nil
	}
	return nil, fmt.Errorf("unknown market data provider %q", config.Provider)
}

func NewScreenerApp(config util.Config) (*app.ScreenerApp, error) {
	marketDataRepository, err := NewMarketDataRepository(config)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := config.CacheDuration()
	if err != nil {
		return nil, err
	}

	return &app.ScreenerApp{
		TickerService:     l1_service.NewTickerService(config.ExchangeSuffix),
		PriceService:      l1_service.NewPriceService(marketDataRepository, cacheTTL, config.FetchWorkers),
		IndicatorService:  l2_service.NewIndicatorService(),
		RuleService:       l2_service.NewRuleService(),
		ClassifierService: l3_service.NewClassifierService(),
		Benchmark:         domain.NewSymbol(config.Benchmark),
		Lookback:          config.Lookback(),
		Now:               time.Now,
	}, nil
}

func InitializeDependencies() (*api.ApiHandler, *util.Config, error) {
	config, err := util.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	screenerApp, err := NewScreenerApp(*config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize screener: %w", err)
	}

	apiHandler := &api.ApiHandler{
		ScreenerApp:       *screenerApp,
		ExportRepository:  repository.NewExportRepository(),
		DefaultParams:     config.Params,
		DefaultThresholds: config.Thresholds,
		RunTimeout:        defaultRunTimeout,
	}

	return apiHandler, config, nil
}
