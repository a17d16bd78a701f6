package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"stockscreener/cmd"
	"stockscreener/internal/app"
	"stockscreener/internal/domain"
	"stockscreener/internal/logger"
	"stockscreener/internal/repository"
	"stockscreener/internal/util"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

type screenOptions struct {
	Tickers         string
	TickersFile     string
	Rules           string
	RulesFile       string
	RsiPeriod       int
	VolAvgPeriod    int
	PctChangePeriod int
	Buy             int
	Sell            int
	OutDir          string
	Timeout         time.Duration
	Json            bool
}

const defaultTickers = "BBCA, BBRI, BMRI, TLKM, ASII, GOTO, ANTM"

const defaultRules = `Price > SMA_20
SMA_20 > SMA_50
RSI > 50 and RSI < 70
Volume > Vol_Avg`

func readOption(value, file string) (string, error) {
	if file == "" {
		return value, nil
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file, err)
	}
	return string(b), nil
}

func newRootCmd(config util.Config) *cobra.Command {
	opts := screenOptions{}

	rootCmd := &cobra.Command{
		Use:   "screen",
		Short: "Score a list of tickers against a rule block",
		Long: `Fetch daily bars for each ticker, compute indicators, score every ticker
against the rules (one per line, # starts a comment) and classify it as
BUY, HOLD or SELL. Results are printed and written to a CSV file.`,
		Example: `  screen --tickers "BBCA BBRI TLKM" --rules "RSI < 30"
  screen --tickers-file tickers.txt --rules-file rules.txt --buy 2 --sell 0`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			tickers, err := readOption(opts.Tickers, opts.TickersFile)
			if err != nil {
				return err
			}
			rules, err := readOption(opts.Rules, opts.RulesFile)
			if err != nil {
				return err
			}

			params := domain.IndicatorParams{
				RsiPeriod:       opts.RsiPeriod,
				VolAvgPeriod:    opts.VolAvgPeriod,
				PctChangePeriod: opts.PctChangePeriod,
			}
			if err := params.Validate(); err != nil {
				return err
			}

			screenerApp, err := cmd.NewScreenerApp(config)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
			defer cancel()
			ctx = logger.WithContext(ctx, logger.New())
			profile, endProfile := domain.NewProfile()
			ctx = domain.WithProfile(ctx, profile)

			result, err := screenerApp.Run(ctx, app.ScreenRequest{
				Tickers:    tickers,
				Rules:      rules,
				Params:     params,
				Thresholds: domain.Thresholds{Buy: opts.Buy, Sell: opts.Sell},
			})
			endProfile()
			if err != nil {
				return err
			}

			if opts.Json {
				util.Pprint(result)
			} else {
				printResult(c.OutOrStdout(), result)
			}

			path, err := repository.NewExportRepository().WriteFile(opts.OutDir, result.RunDate, result.Records)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "\nwrote %s\n", path)
			return nil
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.Tickers, "tickers", defaultTickers, "tickers separated by commas, spaces or newlines")
	flags.StringVar(&opts.TickersFile, "tickers-file", "", "read tickers from a file instead of --tickers")
	flags.StringVar(&opts.Rules, "rules", defaultRules, "rules, one per line")
	flags.StringVar(&opts.RulesFile, "rules-file", "", "read rules from a file instead of --rules")
	flags.IntVar(&opts.RsiPeriod, "rsi-period", config.Params.RsiPeriod, "RSI period (7-30)")
	flags.IntVar(&opts.VolAvgPeriod, "vol-avg-period", config.Params.VolAvgPeriod, "volume average period (10-50)")
	flags.IntVar(&opts.PctChangePeriod, "pct-change-period", config.Params.PctChangePeriod, "percent change and gap history period (1-60)")
	flags.IntVar(&opts.Buy, "buy", config.Thresholds.Buy, "minimum score for BUY")
	flags.IntVar(&opts.Sell, "sell", config.Thresholds.Sell, "maximum score for SELL")
	flags.StringVar(&opts.OutDir, "out-dir", ".", "directory for the CSV export")
	flags.BoolVar(&opts.Json, "json", false, "print the full result as JSON instead of a table")
	flags.DurationVar(&opts.Timeout, "timeout", 2*time.Minute, "bound for the whole run")

	return rootCmd
}

func formatPtr(f *float64, format string) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf(format, *f)
}

func printResult(w io.Writer, result *app.ScreenResult) {
	b := result.Benchmark
	fmt.Fprintf(w, "%s  prev close %.2f  change %+.2f%%\n\n", b.Symbol, b.PreviousClose, b.ChangePct)

	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning.Error())
	}
	for _, d := range result.Dropped {
		fmt.Fprintf(w, "dropped %s: %s\n", d.Symbol, d.Reason)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REC\tSCORE\tTICKER\tGAP %\tGAIN %\tPRICE\tRSI\tRATIONALE")
	for _, row := range domain.NewDisplayRows(result.Records) {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%.0f\t%s\t%s\n",
			row.Recommendation,
			row.Score,
			row.Ticker,
			formatPtr(row.GapPct, "%.2f"),
			formatPtr(row.GainPct, "%.2f"),
			row.Price,
			formatPtr(row.RSI, "%.2f"),
			row.Rationale,
		)
	}
	tw.Flush()

	s := result.Summary
	fmt.Fprintf(w, "\nBUY %d  HOLD %d  SELL %d  TOTAL %d\n", s.Buy, s.Hold, s.Sell, s.Total)
}

func main() {
	config, err := util.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newRootCmd(*config).Execute(); err != nil {
		os.Exit(1)
	}
}
