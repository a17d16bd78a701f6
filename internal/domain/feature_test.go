package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndicatorParams(t *testing.T) {
	t.Run("min bars covers the longest moving average", func(t *testing.T) {
		require.Equal(t, 50, DefaultIndicatorParams().MinBars())
		require.Equal(t, 60, IndicatorParams{RsiPeriod: 14, VolAvgPeriod: 20, PctChangePeriod: 60}.MinBars())
	})

	t.Run("validate", func(t *testing.T) {
		require.NoError(t, DefaultIndicatorParams().Validate())
		require.Error(t, IndicatorParams{RsiPeriod: 6, VolAvgPeriod: 20, PctChangePeriod: 5}.Validate())
		require.Error(t, IndicatorParams{RsiPeriod: 14, VolAvgPeriod: 51, PctChangePeriod: 5}.Validate())
		require.Error(t, IndicatorParams{RsiPeriod: 14, VolAvgPeriod: 20, PctChangePeriod: 0}.Validate())
	})
}

func TestFeatureRecord_Fields(t *testing.T) {
	sma := 100.0
	r := FeatureRecord{
		Ticker:        "BBCA.JK",
		Price:         105,
		SMA20:         &sma,
		GapUpCount:    2,
		IHSGChangePct: 1.5,
	}

	fields := r.Fields()
	require.Len(t, fields, len(FeatureFieldNames()))
	require.Equal(t, 105.0, *fields["Price"])
	require.Equal(t, 100.0, *fields["SMA_20"])
	require.Equal(t, 2.0, *fields["Gap_Up_Count"])
	require.Equal(t, 1.5, *fields["IHSG_Change_Pct"])
	require.Nil(t, fields["SMA_50"])
	require.Nil(t, fields["RSI"])
	_, ok := fields["Ticker"]
	require.False(t, ok)
}

func TestFeatureRecord_SetMovingAverage(t *testing.T) {
	t.Run("every window has a field", func(t *testing.T) {
		names := map[string]bool{}
		for _, n := range FeatureFieldNames() {
			names[n] = true
		}
		for _, w := range MovingAverageWindows {
			v := float64(w)
			r := FeatureRecord{}
			require.NoError(t, r.SetMovingAverage(w, &v))

			name := fmt.Sprintf("SMA_%d", w)
			require.True(t, names[name], name)
			require.Equal(t, v, *r.Fields()[name])
		}
	})

	t.Run("unknown window", func(t *testing.T) {
		v := 1.0
		r := FeatureRecord{}
		require.Error(t, r.SetMovingAverage(7, &v))
	})
}

func TestFeatureFieldNames(t *testing.T) {
	require.Equal(t, []string{
		"Price", "Open", "High", "Low", "Volume", "Vol_Avg", "Prev_Close", "Prev_2_Close",
		"Open_Close_Ratio", "Pct_Change_N", "SMA_3", "SMA_5", "SMA_10", "SMA_20", "SMA_50",
		"RSI", "Gap_Up_Count", "Gap_Down_Count", "Avg_Gap_Up_Pct", "IHSG_Prev_Close", "IHSG_Change_Pct",
	}, FeatureFieldNames())
}
