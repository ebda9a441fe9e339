package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/guttosm/macropulse/config"
	"github.com/guttosm/macropulse/internal/fetch"
	"github.com/guttosm/macropulse/internal/logger"
	"github.com/guttosm/macropulse/internal/params"
	"github.com/guttosm/macropulse/internal/pipeline"
	"github.com/guttosm/macropulse/internal/sink"
	"github.com/guttosm/macropulse/internal/source/balance"
	"github.com/guttosm/macropulse/internal/source/currency"
	"github.com/guttosm/macropulse/internal/source/weather"
)

// options carries the parsed CLI inputs of one run.
type options struct {
	source    string
	start     string
	end       string
	startYear int
	endYear   int
	out       string
	byDay     string
}

// dispatch validates the inputs for the selected source, builds the
// adapter from config, and executes one pipeline run.
func dispatch(ctx context.Context, cfg config.Config, opts options) error {
	client := fetch.New(cfg.HTTP.Timeout)
	out := sink.NewCSV(opts.out)

	switch opts.source {
	case "currency":
		rng, daily, err := params.CheckDateParams(opts.start, opts.end, opts.out, opts.byDay)
		if err != nil {
			return err
		}
		a := currency.New(client, cfg.Currency.BaseURL, cfg.Currency.Symbols, rng, daily)
		return pipeline.Run(ctx, a, out)

	case "weather":
		rng, daily, err := params.CheckDateParams(opts.start, opts.end, opts.out, opts.byDay)
		if err != nil {
			return err
		}
		a := weather.New(client, cfg.Weather.BaseURL, cfg.Weather.Stations, rng, daily)
		return pipeline.Run(ctx, a, out)

	case "balance":
		if err := params.CheckYearParams(opts.startYear, opts.endYear, opts.out); err != nil {
			return err
		}
		a := balance.New(client, cfg.Balance.ArchiveURL, opts.startYear, opts.endYear, cfg.Balance.Parallel)
		return pipeline.Run(ctx, a, out)

	default:
		return fmt.Errorf("unknown source %q (want currency, weather, or balance)", opts.source)
	}
}

// main is the entry point of the macropulse loader.
//
// Sources (selected via --source):
//   - currency: daily USD exchange-rate series over --start/--end.
//   - weather:  daily station temperatures over --start/--end.
//   - balance:  quarterly balance-of-payments reports over
//     --start-year/--end-year.
//
// Flags:
//   - --source: Data source ("currency", "weather", or "balance").
//   - --start/--end: ISO 8601 date range for currency and weather.
//   - --start-year/--end-year: Year range for balance.
//   - --out: Output .csv path.
//   - --by-day: "true" keeps daily rows; "false" (default) buckets the
//     date-ranged sources by ISO week. Ignored by balance.
func main() {
	config.LoadConfig()
	logger.Init()

	opts := options{}
	flag.StringVar(&opts.source, "source", "", "Source: currency, weather, or balance")
	flag.StringVar(&opts.start, "start", "", "Start date (YYYY-MM-DD)")
	flag.StringVar(&opts.end, "end", "", "End date (YYYY-MM-DD)")
	flag.IntVar(&opts.startYear, "start-year", 0, "First report year (balance)")
	flag.IntVar(&opts.endYear, "end-year", 0, "Last report year (balance)")
	flag.StringVar(&opts.out, "out", "", "Output file path (must end with .csv)")
	flag.StringVar(&opts.byDay, "by-day", "false", "Keep daily rows instead of weekly buckets")
	flag.Parse()

	if err := dispatch(context.Background(), config.AppConfig, opts); err != nil {
		logger.L().Fatal().Err(err).Str("source", opts.source).Msg("run failed")
	}
	logger.L().Info().Str("out", opts.out).Msg("run completed successfully")
}
