package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/quant-backtest/internal/types"
	"github.com/rxtech-lab/quant-backtest/pkg/errors"
)

// CSVWriter implements ResultWriter by writing to CSV files under a
// timestamped run directory.
type CSVWriter struct {
	baseDir string
	runDir  string

	tradesFile      *os.File
	signalsFile     *os.File
	equityCurveFile *os.File

	tradesCsv      *csv.Writer
	signalsCsv     *csv.Writer
	equityCurveCsv *csv.Writer
}

// NewCSVWriter creates a new CSVWriter with the given base directory
func NewCSVWriter(baseDir string) (*CSVWriter, error) {
	// Create a directory for this run using current timestamp
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	runDir := filepath.Join(baseDir, timestamp)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to create run directory", err)
	}

	writer := &CSVWriter{
		baseDir: baseDir,
		runDir:  runDir,
	}

	if err := writer.initFiles(); err != nil {
		writer.closeFiles()

		return nil, err
	}

	return writer, nil
}

// RunDir returns the directory this run's files are written to.
func (w *CSVWriter) RunDir() string {
	return w.runDir
}

// initFiles initializes all CSV files
func (w *CSVWriter) initFiles() error {
	tradesFile, err := os.Create(filepath.Join(w.runDir, "trades.csv"))
	if err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to create trades file", err)
	}

	w.tradesFile = tradesFile
	w.tradesCsv = csv.NewWriter(tradesFile)

	if err := w.tradesCsv.Write([]string{
		"id", "time", "action", "price", "shares", "value", "confidence", "reason",
	}); err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write trades header", err)
	}

	signalsFile, err := os.Create(filepath.Join(w.runDir, "signals.csv"))
	if err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to create signals file", err)
	}

	w.signalsFile = signalsFile
	w.signalsCsv = csv.NewWriter(signalsFile)

	if err := w.signalsCsv.Write([]string{
		"time", "signal", "confidence", "price", "ema", "rsi",
		"bb_upper", "bb_middle", "bb_lower", "reason",
	}); err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write signals header", err)
	}

	equityCurveFile, err := os.Create(filepath.Join(w.runDir, "equity_curve.csv"))
	if err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to create equity curve file", err)
	}

	w.equityCurveFile = equityCurveFile
	w.equityCurveCsv = csv.NewWriter(equityCurveFile)

	if err := w.equityCurveCsv.Write([]string{"timestamp", "equity"}); err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write equity curve header", err)
	}

	return nil
}

// WriteTrade writes an executed trade to the output
func (w *CSVWriter) WriteTrade(trade types.Trade) error {
	record := []string{
		trade.ID,
		trade.Time.Format(time.RFC3339),
		string(trade.Action),
		fmt.Sprintf("%f", trade.Price),
		fmt.Sprintf("%d", trade.Shares),
		fmt.Sprintf("%f", trade.Value),
		fmt.Sprintf("%f", trade.Confidence),
		trade.Reason,
	}

	if err := w.tradesCsv.Write(record); err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write trade", err)
	}

	w.tradesCsv.Flush()

	return w.tradesCsv.Error()
}

// WriteSignal writes a strategy evaluation to the output
func (w *CSVWriter) WriteSignal(result types.StrategyResult) error {
	record := []string{
		result.Time.Format(time.RFC3339),
		string(result.Signal),
		fmt.Sprintf("%f", result.Confidence),
		fmt.Sprintf("%f", result.CurrentPrice),
		fmt.Sprintf("%f", result.Indicators.EMA),
		fmt.Sprintf("%f", result.Indicators.RSI),
		fmt.Sprintf("%f", result.Indicators.BBUpper),
		fmt.Sprintf("%f", result.Indicators.BBMiddle),
		fmt.Sprintf("%f", result.Indicators.BBLower),
		result.Reason,
	}

	if err := w.signalsCsv.Write(record); err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write signal", err)
	}

	w.signalsCsv.Flush()

	return w.signalsCsv.Error()
}

// WriteEquityCurve writes the portfolio value series
func (w *CSVWriter) WriteEquityCurve(equityCurve []float64, timestamps []time.Time) error {
	for i, equity := range equityCurve {
		// Fall back to the write time when no timestamps were recorded
		timestamp := time.Now()
		if i < len(timestamps) {
			timestamp = timestamps[i]
		}

		record := []string{
			timestamp.Format(time.RFC3339),
			fmt.Sprintf("%f", equity),
		}

		if err := w.equityCurveCsv.Write(record); err != nil {
			return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write equity curve point", err)
		}
	}

	w.equityCurveCsv.Flush()

	return w.equityCurveCsv.Error()
}

// WriteMetrics writes the final performance metrics as YAML
func (w *CSVWriter) WriteMetrics(metrics types.BacktestMetrics) error {
	metricsFile, err := os.Create(filepath.Join(w.runDir, "metrics.yaml"))
	if err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to create metrics file", err)
	}
	defer metricsFile.Close()

	data, err := yaml.Marshal(metrics)
	if err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to marshal metrics", err)
	}

	if _, err := metricsFile.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write metrics", err)
	}

	return nil
}

// Close finalizes the writing process
func (w *CSVWriter) Close() error {
	for _, c := range []*csv.Writer{w.tradesCsv, w.signalsCsv, w.equityCurveCsv} {
		if c != nil {
			c.Flush()
		}
	}

	return w.closeFiles()
}

// closeFiles closes whichever files have been opened so far.
func (w *CSVWriter) closeFiles() error {
	var firstErr error

	for _, f := range []*os.File{w.tradesFile, w.signalsFile, w.equityCurveFile} {
		if f == nil {
			continue
		}

		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
