package main

import (
	"bytes"
	"os"
	"path/filepath"
	"stockscreener/internal/app"
	"stockscreener/internal/domain"
	"stockscreener/internal/util"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadOption(t *testing.T) {
	t.Run("value without file", func(t *testing.T) {
		out, err := readOption("RSI < 30", "")
		require.NoError(t, err)
		require.Equal(t, "RSI < 30", out)
	})

	t.Run("file wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.txt")
		require.NoError(t, os.WriteFile(path, []byte("Price > 1\n"), 0644))
		out, err := readOption("RSI < 30", path)
		require.NoError(t, err)
		require.Equal(t, "Price > 1\n", out)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readOption("", filepath.Join(t.TempDir(), "nope.txt"))
		require.Error(t, err)
	})
}

func TestRootCmdRejectsInvalidParams(t *testing.T) {
	c := newRootCmd(util.DefaultConfig())
	c.SetOut(&bytes.Buffer{})
	c.SetErr(&bytes.Buffer{})
	c.SetArgs([]string{"--rsi-period", "3"})
	require.Error(t, c.Execute())
}

func TestPrintResult(t *testing.T) {
	ratio := 1.02
	buf := &bytes.Buffer{}
	printResult(buf, &app.ScreenResult{
		Benchmark: domain.BenchmarkSnapshot{Symbol: "^JKSE", PreviousClose: 100, LatestClose: 102, ChangePct: 2},
		Records: []domain.ScoredRecord{{
			FeatureRecord:  domain.FeatureRecord{Ticker: "BBCA.JK", Price: 9000, OpenCloseRatio: &ratio},
			Score:          1,
			RationaleText:  "PASSED #1: Open_Close_Ratio > 1.005",
			Recommendation: domain.RecommendationSell,
		}},
		Summary: domain.Summary{Sell: 1, Total: 1},
		Dropped: []domain.DroppedSymbol{{Symbol: "XXXX.JK", Reason: "not found"}},
	})

	out := buf.String()
	require.Contains(t, out, "^JKSE  prev close 100.00  change +2.00%")
	require.Contains(t, out, "dropped XXXX.JK: not found")
	require.Contains(t, out, "BBCA.JK")
	require.Contains(t, out, "2.00")
	require.Contains(t, out, "BUY 0  HOLD 0  SELL 1  TOTAL 1")
}
