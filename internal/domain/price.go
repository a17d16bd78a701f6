package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Symbol is a normalized ticker, e.g. "BBCA.JK" or the benchmark "^JKSE".
type Symbol string

func (s Symbol) String() string {
	return string(s)
}

func NewSymbol(raw string) Symbol {
	return Symbol(strings.ToUpper(strings.TrimSpace(raw)))
}

type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

func (b Bar) isEmpty() bool {
	return b.Open == 0 && b.High == 0 && b.Low == 0 && b.Close == 0
}

// BarSeries is ordered ascending by date with no duplicate dates.
type BarSeries []Bar

// NewBarSeries cleans raw provider bars: holiday rows with no prices are
// dropped, bars are sorted by date and a repeated date keeps the last bar seen.
func NewBarSeries(bars []Bar) BarSeries {
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if b.isEmpty() {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})

	deduped := make([]Bar, 0, len(out))
	for _, b := range out {
		if n := len(deduped); n > 0 && sameDay(deduped[n-1].Date, b.Date) {
			deduped[n-1] = b
			continue
		}
		deduped = append(deduped, b)
	}

	return deduped
}

func (s BarSeries) Validate() error {
	for i := 1; i < len(s); i++ {
		if sameDay(s[i-1].Date, s[i].Date) {
			return fmt.Errorf("duplicate bar on %s", s[i].Date.Format(time.DateOnly))
		}
		if s[i].Date.Before(s[i-1].Date) {
			return fmt.Errorf("bar on %s is out of order", s[i].Date.Format(time.DateOnly))
		}
	}
	return nil
}

func (s BarSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

func (s BarSeries) Opens() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Open
	}
	return out
}

func (s BarSeries) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Volume
	}
	return out
}

func (s BarSeries) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

func sameDay(a, b time.Time) bool {
	return a.Format(time.DateOnly) == b.Format(time.DateOnly)
}
