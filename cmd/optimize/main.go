package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/quant-backtest/internal/logger"
	"github.com/rxtech-lab/quant-backtest/internal/optimizer"
	"github.com/rxtech-lab/quant-backtest/internal/reporting"
	"github.com/rxtech-lab/quant-backtest/pkg/marketdata/provider"
)

// defaultDaysGrid covers short swing windows through a full year of
// daily bars.
var defaultDaysGrid = []int{60, 90, 180, 365}

// defaultConfidenceGrid sweeps the tradeable confidence range.
var defaultConfidenceGrid = []float64{0.55, 0.60, 0.65, 0.70, 0.75}

func optimizeAction(ctx context.Context, cmd *cli.Command) error {
	symbols := cmd.StringSlice("symbol")
	if len(symbols) == 0 {
		return fmt.Errorf("at least one --symbol is required")
	}

	zapLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer zapLogger.Sync()

	providerType := provider.ProviderType(cmd.String("provider"))

	var config any
	if providerType == provider.ProviderPolygon {
		config = os.Getenv("POLYGON_API_KEY")
	}

	source, err := provider.NewSource(providerType, config)
	if err != nil {
		return err
	}

	grid := optimizer.BuildGrid(symbols, defaultDaysGrid, defaultConfidenceGrid)

	opt := optimizer.NewOptimizer(source, zapLogger, int(cmd.Int("concurrency")))
	if err := opt.Run(ctx, grid); err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	top := opt.TopResults(int(cmd.Int("top")))
	if len(top) == 0 {
		return fmt.Errorf("no grid cell produced a result")
	}

	for i, result := range top {
		log.Printf("#%d %s days=%d confidence=%.2f return=%.2f%% trades=%d win_rate=%.1f%%",
			i+1,
			result.Params.Symbol,
			result.Params.Days,
			result.Params.ConfidenceThreshold,
			result.Metrics.TotalReturnPct,
			result.Metrics.TotalTrades,
			result.Metrics.WinRatePct,
		)
	}

	outputPath := filepath.Join(
		cmd.String("output"),
		fmt.Sprintf("optimization_%s.json", time.Now().Format("2006-01-02_15-04-05")),
	)

	if err := reporting.WriteJSON(outputPath, opt.Results()); err != nil {
		return err
	}

	log.Printf("Wrote %d results to %s", len(opt.Results()), outputPath)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "optimize",
		Usage: "Sweep strategy parameters over a grid of backtests",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "symbol",
				Aliases:  []string{"t"},
				Usage:    "Ticker symbol to include in the sweep (repeatable)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "provider",
				Aliases:  []string{"p"},
				Usage:    fmt.Sprintf("Data provider to use (e.g., %s, %s)", provider.ProviderPolygon, provider.ProviderBinance),
				Value:    string(provider.ProviderPolygon),
				Required: false,
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Number of backtests to run in parallel",
				Value: 4,
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "Number of best results to print",
				Value: 10,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory for results",
				Value:   "results",
			},
		},
		Action: optimizeAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
