package repository

import (
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	finance "github.com/piquette/finance-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func Test_newBarFromChart(t *testing.T) {
	ts := time.Date(2024, 6, 3, 2, 0, 0, 0, time.UTC)
	bar := newBarFromChart(&finance.ChartBar{
		Open:      decimal.NewFromFloat(9000),
		High:      decimal.NewFromFloat(9150),
		Low:       decimal.NewFromFloat(8975),
		Close:     decimal.NewFromFloat(9100),
		Volume:    1_250_000,
		Timestamp: int(ts.Unix()),
	})

	require.Equal(t, ts, bar.Date)
	require.Equal(t, 9000.0, bar.Open)
	require.Equal(t, 9150.0, bar.High)
	require.Equal(t, 8975.0, bar.Low)
	require.Equal(t, 9100.0, bar.Close)
	require.Equal(t, 1_250_000.0, bar.Volume)
}

func Test_newBarSeriesFromAlpaca(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, 6, d, 4, 0, 0, 0, time.UTC)
	}

	t.Run("sorts and drops empty bars", func(t *testing.T) {
		series := newBarSeriesFromAlpaca([]marketdata.Bar{
			{Timestamp: day(4), Open: 11, High: 12, Low: 10, Close: 11.5, Volume: 200},
			{Timestamp: day(3), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
			{Timestamp: day(5)},
		})

		require.Len(t, series, 2)
		require.NoError(t, series.Validate())
		require.Equal(t, day(3), series[0].Date)
		require.Equal(t, 200.0, series[1].Volume)
	})

	t.Run("repeated day keeps the last bar", func(t *testing.T) {
		series := newBarSeriesFromAlpaca([]marketdata.Bar{
			{Timestamp: day(3), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
			{Timestamp: day(3).Add(time.Hour), Open: 10, High: 11, Low: 9, Close: 10.8, Volume: 150},
		})

		require.Len(t, series, 1)
		require.Equal(t, 10.8, series[0].Close)
	})
}
