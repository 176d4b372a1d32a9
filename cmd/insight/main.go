// insight runs the analytics engine over a book of JSON records and prints
// the result as indented JSON.
//
// Usage:
//
//	insight -records books.json all
//	insight -records books.json forecast
//	insight -demo query "which clients haven't paid me in 90 days?"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgerpulse/insight/internal/config"
	"github.com/ledgerpulse/insight/internal/engine"
	"github.com/ledgerpulse/insight/internal/store"
)

const demoMonths = 6

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	recordsPath := flag.String("records", "", "comma-separated JSON record files")
	demo := flag.Bool("demo", false, "use generated demo records instead of files")
	flag.Parse()

	if err := run(*configPath, *recordsPath, *demo, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "insight: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, recordsPath string, demo bool, args []string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	var src *store.MemorySource
	switch {
	case demo:
		src = store.NewMemorySource()
		store.Seed(src, demoMonths, time.Now().UTC())
	case recordsPath != "":
		src, err = store.LoadFiles(strings.Split(recordsPath, ",")...)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("no records: pass -records or -demo")
	}

	e := engine.New(src, engine.WithLogger(log))
	ctx := context.Background()

	command := "all"
	if len(args) > 0 {
		command = args[0]
	}

	var result any
	switch command {
	case "forecast":
		result, err = e.RevenueForecast(ctx, cfg.Forecast.HorizonMonths)
	case "cashflow":
		result, err = e.CashFlow(ctx, cfg.CashFlow.HorizonMonths, cfg.CashFlow.StartingBalance)
	case "anomalies":
		result, err = e.Anomalies(ctx)
	case "clients":
		result, err = e.ClientInsights(ctx, cfg.Clients.InactivityDays)
	case "expenses":
		result, err = e.ExpenseReview(ctx)
	case "query":
		text := strings.Join(args[1:], " ")
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("query: no question given")
		}
		result, err = e.Query(ctx, text)
	case "all":
		result, err = e.Snapshot(ctx, engine.Params{
			ForecastHorizonMonths: cfg.Forecast.HorizonMonths,
			CashFlowHorizonMonths: cfg.CashFlow.HorizonMonths,
			StartingBalance:       cfg.CashFlow.StartingBalance,
			InactivityDays:        cfg.Clients.InactivityDays,
		})
	default:
		return fmt.Errorf("unknown command %q (want forecast|cashflow|anomalies|clients|expenses|query|all)", command)
	}
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("log level: %w", err)
	}
	var log zerolog.Logger
	if cfg.Log.Format == "console" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger(), nil
}
