package reporting

import (
	"time"

	"github.com/rxtech-lab/quant-backtest/internal/types"
)

// ResultWriter defines the interface for writing backtest results
type ResultWriter interface {
	// WriteTrade writes an executed trade to the output
	WriteTrade(trade types.Trade) error

	// WriteSignal writes a strategy evaluation to the output
	WriteSignal(result types.StrategyResult) error

	// WriteEquityCurve writes the portfolio value series
	WriteEquityCurve(equityCurve []float64, timestamps []time.Time) error

	// WriteMetrics writes the final performance metrics
	WriteMetrics(metrics types.BacktestMetrics) error

	// Close finalizes the writing process
	Close() error
}
