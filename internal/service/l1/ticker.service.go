package l1_service

import (
	"stockscreener/internal/domain"
	"strings"
	"unicode"
)

const DefaultExchangeSuffix = ".JK"

type TickerService interface {
	Normalize(rawText string, benchmark domain.Symbol) ([]domain.Symbol, []domain.ConfigurationWarning)
}

type tickerServiceHandler struct {
	ExchangeSuffix string
}

func NewTickerService(exchangeSuffix string) TickerService {
	return tickerServiceHandler{
		ExchangeSuffix: strings.ToUpper(exchangeSuffix),
	}
}

func isSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

// Normalize turns free text into an ordered, de-duplicated symbol list that
// always contains the benchmark exactly once. A benchmark missing from the
// input is placed first.
func (h tickerServiceHandler) Normalize(rawText string, benchmark domain.Symbol) ([]domain.Symbol, []domain.ConfigurationWarning) {
	benchmark = domain.NewSymbol(benchmark.String())

	seen := map[domain.Symbol]bool{}
	symbols := []domain.Symbol{}
	for _, token := range strings.FieldsFunc(rawText, isSeparator) {
		symbol := domain.NewSymbol(token)
		if symbol == "" {
			continue
		}
		if symbol != benchmark && !strings.HasSuffix(symbol.String(), h.ExchangeSuffix) {
			symbol = domain.Symbol(symbol.String() + h.ExchangeSuffix)
		}
		if seen[symbol] {
			continue
		}
		seen[symbol] = true
		symbols = append(symbols, symbol)
	}

	warnings := []domain.ConfigurationWarning{}
	if len(symbols) == 0 || (len(symbols) == 1 && symbols[0] == benchmark) {
		warnings = append(warnings, domain.ConfigurationWarning{
			Field:   "tickers",
			Message: "no tickers supplied, only the benchmark will be fetched",
		})
	}

	if !seen[benchmark] {
		symbols = append([]domain.Symbol{benchmark}, symbols...)
	}

	return symbols, warnings
}
