package optimizer

import (
	"context"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/quant-backtest/internal/types"
	"github.com/rxtech-lab/quant-backtest/pkg/errors"
)

// fakeSource serves a canned bar series per symbol
type fakeSource struct {
	barsBySymbol map[string][]types.Bar
	err          error
}

func (f *fakeSource) GetHistoricalBars(ctx context.Context, symbol string, timeframe string, limit int) ([]types.Bar, error) {
	if f.err != nil {
		return nil, f.err
	}

	bars := f.barsBySymbol[symbol]
	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}

	return bars, nil
}

func (f *fakeSource) GetLatestQuote(ctx context.Context, symbol string) (optional.Option[types.Quote], error) {
	return optional.None[types.Quote](), nil
}

// crashSeries builds 20 flat bars followed by a steep decline, enough to
// trigger oversold buys
func crashSeries() []types.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	bars := make([]types.Bar, 0, 40)
	price := 100.0

	for i := 0; i < 40; i++ {
		if i >= 20 {
			price *= 0.97
		}

		bars = append(bars, types.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: 1000,
		})
	}

	return bars
}

// OptimizerTestSuite is a test suite for the parameter grid sweep
type OptimizerTestSuite struct {
	suite.Suite
}

// TestOptimizerSuite runs the test suite
func TestOptimizerSuite(t *testing.T) {
	suite.Run(t, new(OptimizerTestSuite))
}

func (suite *OptimizerTestSuite) TestBuildGrid() {
	grid := BuildGrid(
		[]string{"AAPL", "MSFT"},
		[]int{90, 180},
		[]float64{0.6, 0.65, 0.7},
	)

	suite.Assert().Len(grid, 12)
	suite.Assert().Equal(ParameterSet{Symbol: "AAPL", Days: 90, ConfidenceThreshold: 0.6}, grid[0])
	suite.Assert().Equal(ParameterSet{Symbol: "MSFT", Days: 180, ConfidenceThreshold: 0.7}, grid[11])
}

func (suite *OptimizerTestSuite) TestRunEmptyGrid() {
	opt := NewOptimizer(&fakeSource{}, nil, 1)

	err := opt.Run(context.Background(), nil)
	suite.Assert().Error(err)
	suite.Assert().True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

// TestRunCollectsResults verifies every viable cell produces a result and
// cells without data are skipped without failing the sweep
func (suite *OptimizerTestSuite) TestRunCollectsResults() {
	source := &fakeSource{
		barsBySymbol: map[string][]types.Bar{
			"AAPL": crashSeries(),
		},
	}

	opt := NewOptimizer(source, nil, 2)

	grid := BuildGrid([]string{"AAPL", "UNKNOWN"}, []int{40}, []float64{0.55, 0.65})
	suite.Require().NoError(opt.Run(context.Background(), grid))

	results := opt.Results()
	suite.Assert().Len(results, 2)

	for _, result := range results {
		suite.Assert().Equal("AAPL", result.Params.Symbol)
		suite.Assert().NotZero(result.Metrics.StartingCapital)
	}
}

// TestTopResults verifies ordering by total return, descending
func (suite *OptimizerTestSuite) TestTopResults() {
	opt := NewOptimizer(&fakeSource{}, nil, 1)
	opt.results = []Result{
		{Params: ParameterSet{Symbol: "A"}, Metrics: types.BacktestMetrics{TotalReturnPct: 1.5}},
		{Params: ParameterSet{Symbol: "B"}, Metrics: types.BacktestMetrics{TotalReturnPct: 7.2}},
		{Params: ParameterSet{Symbol: "C"}, Metrics: types.BacktestMetrics{TotalReturnPct: -3.0}},
	}

	top := opt.TopResults(2)
	suite.Require().Len(top, 2)
	suite.Assert().Equal("B", top[0].Params.Symbol)
	suite.Assert().Equal("A", top[1].Params.Symbol)
}

func (suite *OptimizerTestSuite) TestRunHonorsCancellation() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &fakeSource{
		barsBySymbol: map[string][]types.Bar{"AAPL": crashSeries()},
	}

	opt := NewOptimizer(source, nil, 1)

	err := opt.Run(ctx, BuildGrid([]string{"AAPL"}, []int{40}, []float64{0.65}))
	suite.Assert().Error(err)
}
