package optimizer

import (
	"context"
	"sort"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rxtech-lab/quant-backtest/internal/backtest"
	"github.com/rxtech-lab/quant-backtest/internal/logger"
	"github.com/rxtech-lab/quant-backtest/internal/strategy"
	"github.com/rxtech-lab/quant-backtest/internal/types"
	"github.com/rxtech-lab/quant-backtest/pkg/errors"
	"github.com/rxtech-lab/quant-backtest/pkg/marketdata"
)

const (
	// Every grid cell runs with the same capital and per-trade notional so
	// returns are comparable across cells.
	optimizerCapital  = 1_000_000
	optimizerNotional = 50_000
)

// ParameterSet is one cell of the optimization grid.
type ParameterSet struct {
	Symbol              string  `yaml:"symbol" json:"symbol" csv:"symbol"`
	Days                int     `yaml:"days" json:"days" csv:"days"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold" json:"confidence_threshold" csv:"confidence_threshold"`
}

// Result pairs a parameter set with the metrics its backtest produced.
type Result struct {
	Params  ParameterSet          `yaml:"params" json:"params"`
	Metrics types.BacktestMetrics `yaml:"metrics" json:"metrics"`
}

// Optimizer sweeps a parameter grid, running an independent backtest per
// cell and collecting the results.
type Optimizer struct {
	source      marketdata.Source
	log         *logger.Logger
	concurrency int

	mu      sync.Mutex
	results []Result
}

// NewOptimizer creates an optimizer backed by the given bar source.
// Concurrency caps the number of simultaneous backtests; values below 1
// mean sequential.
func NewOptimizer(source marketdata.Source, log *logger.Logger, concurrency int) *Optimizer {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if concurrency < 1 {
		concurrency = 1
	}

	return &Optimizer{
		source:      source,
		log:         log,
		concurrency: concurrency,
	}
}

// BuildGrid returns the cross product of symbols, day counts and
// confidence thresholds.
func BuildGrid(symbols []string, days []int, confidenceThresholds []float64) []ParameterSet {
	grid := make([]ParameterSet, 0, len(symbols)*len(days)*len(confidenceThresholds))

	for _, symbol := range symbols {
		for _, d := range days {
			for _, confidence := range confidenceThresholds {
				grid = append(grid, ParameterSet{
					Symbol:              symbol,
					Days:                d,
					ConfidenceThreshold: confidence,
				})
			}
		}
	}

	return grid
}

// Run executes every cell of the grid and stores the results. Cells that
// fail to fetch data or produce no signals are logged and skipped rather
// than failing the sweep; only context cancellation aborts the run.
func (o *Optimizer) Run(ctx context.Context, grid []ParameterSet) error {
	if len(grid) == 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "empty parameter grid")
	}

	o.mu.Lock()
	o.results = o.results[:0]
	o.mu.Unlock()

	bar := progressbar.Default(int64(len(grid)))
	bar.Describe("Optimizing parameters")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, params := range grid {
		g.Go(func() error {
			defer func() {
				_ = bar.Add(1)
			}()

			if err := gctx.Err(); err != nil {
				return err
			}

			result, err := o.runCell(gctx, params)
			if err != nil {
				o.log.Warn("skipping grid cell",
					zap.String("symbol", params.Symbol),
					zap.Int("days", params.Days),
					zap.Float64("confidence_threshold", params.ConfidenceThreshold),
					zap.Error(err),
				)

				return nil
			}

			o.mu.Lock()
			o.results = append(o.results, result)
			o.mu.Unlock()

			return nil
		})
	}

	return g.Wait()
}

func (o *Optimizer) runCell(ctx context.Context, params ParameterSet) (Result, error) {
	bars, err := o.source.GetHistoricalBars(ctx, params.Symbol, "1Day", params.Days)
	if err != nil {
		return Result{}, err
	}

	if len(bars) == 0 {
		return Result{}, errors.Newf(errors.ErrCodeBacktestNoData, "no bars for %s", params.Symbol)
	}

	opts := strategy.DefaultOptions()
	opts.ConfidenceThreshold = params.ConfidenceThreshold

	strat, err := strategy.NewMeanReversion(nil, o.log, opts)
	if err != nil {
		return Result{}, err
	}

	results := strat.RunBacktest(bars)
	if len(results) == 0 {
		return Result{}, errors.Newf(errors.ErrCodeInsufficientData, "no signals for %s over %d days", params.Symbol, params.Days)
	}

	sim := backtest.NewSimulator(optimizerCapital, o.log)
	sim.Replay(results, backtest.FixedNotionalSizer{Notional: optimizerNotional}, params.ConfidenceThreshold)

	finalPrice := results[len(results)-1].CurrentPrice
	metrics := sim.CalculateFinalMetrics(finalPrice)

	return Result{Params: params, Metrics: metrics}, nil
}

// Results returns all collected results in no particular order.
func (o *Optimizer) Results() []Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]Result, len(o.results))
	copy(out, o.results)

	return out
}

// TopResults returns the n best results by total return, descending.
func (o *Optimizer) TopResults(n int) []Result {
	results := o.Results()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Metrics.TotalReturnPct > results[j].Metrics.TotalReturnPct
	})

	if n > 0 && len(results) > n {
		results = results[:n]
	}

	return results
}
