package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/quant-backtest/internal/backtest"
	"github.com/rxtech-lab/quant-backtest/internal/datasource"
	"github.com/rxtech-lab/quant-backtest/internal/logger"
	"github.com/rxtech-lab/quant-backtest/internal/reporting"
	"github.com/rxtech-lab/quant-backtest/internal/strategy"
	"github.com/rxtech-lab/quant-backtest/internal/types"
	"github.com/rxtech-lab/quant-backtest/pkg/marketdata"
	"github.com/rxtech-lab/quant-backtest/pkg/marketdata/provider"
)

// loadConfig reads the YAML config file when one is given, otherwise
// starts from defaults, then applies flag overrides on top.
func loadConfig(cmd *cli.Command) (backtest.Config, error) {
	config := backtest.DefaultConfig()

	if path := cmd.String("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return config, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if symbol := cmd.String("symbol"); symbol != "" {
		config.Symbol = symbol
	}

	if capital := cmd.Float64("capital"); capital > 0 {
		config.InitialCapital = capital
	}

	if notional := cmd.Float64("notional"); notional > 0 {
		config.TradeNotional = notional
	}

	if threshold := cmd.Float64("confidence"); threshold > 0 {
		config.ConfidenceThreshold = threshold
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// buildSource wires the bar source: a local data file when --data is set,
// otherwise the requested vendor. The config's time range restricts file
// reads at the query level.
func buildSource(cmd *cli.Command, config backtest.Config, log *logger.Logger) (marketdata.Source, func(), error) {
	if dataPath := cmd.String("data"); dataPath != "" {
		ds, err := datasource.NewDataSource(":memory:", log)
		if err != nil {
			return nil, nil, err
		}

		if err := ds.Initialize(dataPath); err != nil {
			ds.Close()

			return nil, nil, err
		}

		return marketdata.NewFileSourceWithRange(ds, config.StartTime, config.EndTime), func() { ds.Close() }, nil
	}

	providerType := provider.ProviderType(cmd.String("provider"))

	var providerConfig any
	if providerType == provider.ProviderPolygon {
		providerConfig = os.Getenv("POLYGON_API_KEY")
	}

	source, err := provider.NewSource(providerType, providerConfig)
	if err != nil {
		return nil, nil, err
	}

	return source, func() {}, nil
}

// backtestAction runs a single backtest: fetch bars, replay the strategy,
// simulate the portfolio, and write the reports.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("print-schema") {
		config := backtest.DefaultConfig()

		schema, err := config.GenerateSchemaJSON()
		if err != nil {
			return err
		}

		fmt.Println(schema)

		return nil
	}

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	zapLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer zapLogger.Sync()

	source, cleanup, err := buildSource(cmd, config, zapLogger)
	if err != nil {
		return err
	}
	defer cleanup()

	days := cmd.Int("days")

	bars, err := source.GetHistoricalBars(ctx, config.Symbol, "1Day", int(days))
	if err != nil {
		return fmt.Errorf("failed to fetch bars: %w", err)
	}

	// Vendor sources fetch by count, so the config's time range is applied
	// after the fetch. File sources have already filtered at the query level.
	bars = marketdata.FilterBars(bars, config.StartTime, config.EndTime)

	if len(bars) == 0 {
		return fmt.Errorf("no bars available for %s", config.Symbol)
	}

	opts := strategy.DefaultOptions()
	opts.ConfidenceThreshold = config.ConfidenceThreshold

	strat, err := strategy.NewMeanReversion(source, zapLogger, opts)
	if err != nil {
		return err
	}

	results := strat.RunBacktest(bars)
	if len(results) == 0 {
		return fmt.Errorf("not enough bars to produce signals (got %d)", len(bars))
	}

	sim := backtest.NewSimulator(config.InitialCapital, zapLogger)
	sim.Replay(results, backtest.FixedNotionalSizer{Notional: config.TradeNotional}, config.ConfidenceThreshold)

	finalPrice := results[len(results)-1].CurrentPrice
	metrics := sim.CalculateFinalMetrics(finalPrice)

	return writeReports(cmd, results, sim, metrics)
}

func writeReports(cmd *cli.Command, results []types.StrategyResult, sim *backtest.Simulator, metrics types.BacktestMetrics) error {
	var writer reporting.ResultWriter

	outputDir := cmd.String("output")

	switch format := cmd.String("format"); format {
	case "csv":
		csvWriter, err := reporting.NewCSVWriter(outputDir)
		if err != nil {
			return err
		}

		log.Printf("Writing results to %s", csvWriter.RunDir())

		writer = csvWriter
	case "json":
		writer = reporting.NewJSONWriter(fmt.Sprintf("%s/backtest_%s.json", outputDir, time.Now().Format("2006-01-02_15-04-05")))
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}

	for _, result := range results {
		if err := writer.WriteSignal(result); err != nil {
			return err
		}
	}

	portfolio := sim.Portfolio()

	for _, trade := range portfolio.TradeHistory {
		if err := writer.WriteTrade(trade); err != nil {
			return err
		}
	}

	timestamps := make([]time.Time, len(results))
	for i, result := range results {
		timestamps[i] = result.Time
	}

	if err := writer.WriteEquityCurve(portfolio.DailyValues, timestamps); err != nil {
		return err
	}

	if err := writer.WriteMetrics(metrics); err != nil {
		return err
	}

	return writer.Close()
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Run a mean reversion backtest over historical bars",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"t"},
				Usage:    "Ticker symbol to backtest",
				Required: false,
			},
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to a YAML config file",
				Required: false,
			},
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to a local CSV or parquet data file (overrides --provider)",
				Required: false,
			},
			&cli.StringFlag{
				Name:     "provider",
				Aliases:  []string{"p"},
				Usage:    fmt.Sprintf("Data provider to use (e.g., %s, %s)", provider.ProviderPolygon, provider.ProviderBinance),
				Value:    string(provider.ProviderPolygon),
				Required: false,
			},
			&cli.IntFlag{
				Name:  "days",
				Usage: "Number of daily bars to fetch",
				Value: 365,
			},
			&cli.Float64Flag{
				Name:  "capital",
				Usage: "Starting capital in USD",
			},
			&cli.Float64Flag{
				Name:  "notional",
				Usage: "Dollar amount targeted per trade",
			},
			&cli.Float64Flag{
				Name:  "confidence",
				Usage: "Minimum signal confidence required to trade",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory for results",
				Value:   "results",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (csv or json)",
				Value:   "csv",
			},
			&cli.BoolFlag{
				Name:  "print-schema",
				Usage: "Print the JSON schema for the config file and exit",
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
