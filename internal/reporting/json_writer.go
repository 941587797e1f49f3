package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rxtech-lab/quant-backtest/internal/types"
	"github.com/rxtech-lab/quant-backtest/pkg/errors"
)

// JSONWriter implements ResultWriter by accumulating everything in memory
// and writing a single summary document on Close.
type JSONWriter struct {
	path string

	trades      []types.Trade
	signals     []types.StrategyResult
	equityCurve []equityPoint
	metrics     *types.BacktestMetrics
}

type equityPoint struct {
	Time   time.Time `json:"time"`
	Equity float64   `json:"equity"`
}

type jsonReport struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Metrics     *types.BacktestMetrics `json:"metrics,omitempty"`
	Trades      []types.Trade          `json:"trades"`
	Signals     []types.StrategyResult `json:"signals"`
	EquityCurve []equityPoint          `json:"equity_curve"`
}

// NewJSONWriter creates a JSONWriter that writes to the given file path
// on Close.
func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

// WriteTrade implements ResultWriter.
func (w *JSONWriter) WriteTrade(trade types.Trade) error {
	w.trades = append(w.trades, trade)

	return nil
}

// WriteSignal implements ResultWriter.
func (w *JSONWriter) WriteSignal(result types.StrategyResult) error {
	w.signals = append(w.signals, result)

	return nil
}

// WriteEquityCurve implements ResultWriter.
func (w *JSONWriter) WriteEquityCurve(equityCurve []float64, timestamps []time.Time) error {
	for i, equity := range equityCurve {
		point := equityPoint{Equity: equity}
		if i < len(timestamps) {
			point.Time = timestamps[i]
		}

		w.equityCurve = append(w.equityCurve, point)
	}

	return nil
}

// WriteMetrics implements ResultWriter.
func (w *JSONWriter) WriteMetrics(metrics types.BacktestMetrics) error {
	w.metrics = &metrics

	return nil
}

// Close writes the accumulated report to disk.
func (w *JSONWriter) Close() error {
	report := jsonReport{
		GeneratedAt: time.Now(),
		Metrics:     w.metrics,
		Trades:      w.trades,
		Signals:     w.signals,
		EquityCurve: w.equityCurve,
	}

	return WriteJSON(w.path, report)
}

// WriteJSON marshals v with indentation and writes it to path, creating
// parent directories as needed.
func WriteJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to create output directory", err)
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to marshal report", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write report", err)
	}

	return nil
}
