package domain

import (
	"fmt"
)

// ConfigurationWarning is a recoverable input problem that was replaced by a
// documented default.
type ConfigurationWarning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (w ConfigurationWarning) Error() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

type DataInsufficientError struct {
	Symbol Symbol
	Have   int
	Need   int
}

func (e DataInsufficientError) Error() string {
	return fmt.Sprintf("%s has %d bars of history, need at least %d", e.Symbol, e.Have, e.Need)
}

// DataUnavailableError is fatal for a run: nothing usable came back from the
// market data source.
type DataUnavailableError struct {
	Reason string
	Err    error
}

func (e DataUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("market data unavailable: %s: %s", e.Reason, e.Err.Error())
	}
	return fmt.Sprintf("market data unavailable: %s", e.Reason)
}

func (e DataUnavailableError) Unwrap() error {
	return e.Err
}

type SymbolFetchError struct {
	Symbol Symbol
	Err    error
}

func (e SymbolFetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %s", e.Symbol, e.Err.Error())
}

func (e SymbolFetchError) Unwrap() error {
	return e.Err
}

type RuleEvaluationError struct {
	Ordinal int
	Rule    string
	Err     error
}

func (e RuleEvaluationError) Error() string {
	return fmt.Sprintf("rule #%d %q: %s", e.Ordinal, e.Rule, e.Err.Error())
}

func (e RuleEvaluationError) Unwrap() error {
	return e.Err
}

// DroppedSymbol is a symbol excluded from the results and why.
type DroppedSymbol struct {
	Symbol Symbol `json:"symbol"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

func NewDroppedSymbol(symbol Symbol, err error) DroppedSymbol {
	return DroppedSymbol{
		Symbol: symbol,
		Reason: err.Error(),
		Err:    err,
	}
}
