package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"stockscreener/internal/domain"
	"time"
)

type Config struct {
	Provider       string                 `json:"provider"`
	ExchangeSuffix string                 `json:"exchangeSuffix"`
	Benchmark      string                 `json:"benchmark"`
	LookbackDays   int                    `json:"lookbackDays"`
	CacheTTL       string                 `json:"cacheTtl"`
	FetchWorkers   int                    `json:"fetchWorkers"`
	Port           int                    `json:"port"`
	Alpaca         AlpacaConfig           `json:"alpaca"`
	Params         domain.IndicatorParams `json:"params"`
	Thresholds     domain.Thresholds      `json:"thresholds"`
}

type AlpacaConfig struct {
	ApiKey    string `json:"apiKey"`
	ApiSecret string `json:"apiSecret"`
	Endpoint  string `json:"endpoint"`
}

const (
	ProviderYahoo  = "yahoo"
	ProviderAlpaca = "alpaca"
)

func DefaultConfig() Config {
	return Config{
		Provider:       ProviderYahoo,
		ExchangeSuffix: ".JK",
		Benchmark:      "^JKSE",
		LookbackDays:   3 * 365,
		CacheTTL:       "15m",
		FetchWorkers:   10,
		Port:           3009,
		Params:         domain.DefaultIndicatorParams(),
		Thresholds:     domain.DefaultThresholds(),
	}
}

func (c Config) Lookback() time.Duration {
	return time.Duration(c.LookbackDays) * 24 * time.Hour
}

func (c Config) CacheDuration() (time.Duration, error) {
	if c.CacheTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid cacheTtl %q: %w", c.CacheTTL, err)
	}
	return d, nil
}

func (c Config) Validate() error {
	if c.Provider != ProviderYahoo && c.Provider != ProviderAlpaca {
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Provider == ProviderAlpaca && (c.Alpaca.ApiKey == "" || c.Alpaca.ApiSecret == "") {
		return fmt.Errorf("alpaca provider requires apiKey and apiSecret")
	}
	if c.Benchmark == "" {
		return fmt.Errorf("benchmark cannot be empty")
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("lookbackDays must be positive, got %d", c.LookbackDays)
	}
	if _, err := c.CacheDuration(); err != nil {
		return err
	}
	if err := c.Params.Validate(); err != nil {
		return fmt.Errorf("invalid default params: %w", err)
	}
	return nil
}

func configFile() string {
	if f := os.Getenv("SCREENER_CONFIG"); f != "" {
		return f
	}
	switch os.Getenv("SCREENER_ENV") {
	case "dev":
		return "config-dev.json"
	case "test":
		return "config-test.json"
	}
	return "config.json"
}

// LoadConfig reads the config file for the current environment on top of
// DefaultConfig. A missing file is not an error.
func LoadConfig() (*Config, error) {
	return LoadConfigFile(configFile())
}

func LoadConfigFile(path string) (*Config, error) {
	config := DefaultConfig()

	f, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}

	err = json.Unmarshal(f, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &config, nil
}
