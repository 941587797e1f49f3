package types

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BacktestMetrics is a read-only performance snapshot derived from a
// completed portfolio plus a terminal mark price. It is computed once at
// the end of a run and never mutated afterward.
type BacktestMetrics struct {
	StartingCapital float64 `yaml:"starting_capital" csv:"starting_capital" json:"starting_capital"`
	EndingCapital   float64 `yaml:"ending_capital" csv:"ending_capital" json:"ending_capital"`
	TotalReturnPct  float64 `yaml:"total_return_pct" csv:"total_return_pct" json:"total_return_pct"`
	MaxDrawdownPct  float64 `yaml:"max_drawdown_pct" csv:"max_drawdown_pct" json:"max_drawdown_pct"`
	// SharpeRatio is a simplified linear approximation, not a
	// volatility-normalized ratio. See the simulator for the exact formula.
	SharpeRatio float64 `yaml:"sharpe_ratio" csv:"sharpe_ratio" json:"sharpe_ratio"`
	// TotalTrades counts every transaction, buys and sells alike
	TotalTrades int `yaml:"total_trades" csv:"total_trades" json:"total_trades"`
	// WinningTrades and LosingTrades count completed buy->sell cycles
	WinningTrades int     `yaml:"winning_trades" csv:"winning_trades" json:"winning_trades"`
	LosingTrades  int     `yaml:"losing_trades" csv:"losing_trades" json:"losing_trades"`
	WinRatePct    float64 `yaml:"win_rate_pct" csv:"win_rate_pct" json:"win_rate_pct"`
	AvgWin        float64 `yaml:"avg_win" csv:"avg_win" json:"avg_win"`
	AvgLoss       float64 `yaml:"avg_loss" csv:"avg_loss" json:"avg_loss"`
	// ProfitFactor is gross wins / gross losses, reported as 0 when no
	// losing cycle was recorded
	ProfitFactor         float64 `yaml:"profit_factor" csv:"profit_factor" json:"profit_factor"`
	CurrentPositionValue float64 `yaml:"current_position_value" csv:"current_position_value" json:"current_position_value"`
}

// WriteBacktestMetrics serializes metrics to a YAML file.
func WriteBacktestMetrics(path string, metrics BacktestMetrics) error {
	data, err := yaml.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest metrics to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest metrics to file: %w", err)
	}

	return nil
}
