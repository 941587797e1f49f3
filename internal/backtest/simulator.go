package backtest

import (
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rxtech-lab/quant-backtest/internal/logger"
	"github.com/rxtech-lab/quant-backtest/internal/types"
)

// Simulator replays a strategy result sequence against a portfolio and
// computes the final performance metrics. One simulator owns one portfolio
// for exactly one run; create a fresh simulator per run.
type Simulator struct {
	portfolio       *Portfolio
	startingCapital float64
	metrics         types.BacktestMetrics
	log             *logger.Logger
}

// NewSimulator creates a simulator with a freshly seeded portfolio.
func NewSimulator(startingCapital float64, log *logger.Logger) *Simulator {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Simulator{
		portfolio:       NewPortfolio(startingCapital),
		startingCapital: startingCapital,
		metrics:         types.BacktestMetrics{StartingCapital: startingCapital},
		log:             log,
	}
}

// Portfolio returns the simulator's portfolio.
func (s *Simulator) Portfolio() *Portfolio {
	return s.portfolio
}

// Metrics returns the most recently computed metrics snapshot.
func (s *Simulator) Metrics() types.BacktestMetrics {
	return s.metrics
}

// Replay walks the strategy results in order, executing buys and sells
// whose confidence clears the threshold, sized by the given policy. Sells
// are capped at the held position. Every result also records a portfolio
// value snapshot for drawdown computation.
func (s *Simulator) Replay(results []types.StrategyResult, sizer Sizer, confidenceThreshold float64) {
	for _, result := range results {
		switch result.Signal {
		case types.SignalTypeBuy:
			if result.Confidence >= confidenceThreshold {
				shares := sizer.Shares(result.CurrentPrice)
				if s.portfolio.ExecuteBuy(result.Time, result.CurrentPrice, shares, result.Confidence, result.Reason) {
					s.log.Debug("buy executed",
						zap.Float64("price", result.CurrentPrice),
						zap.Int("shares", shares),
						zap.Float64("confidence", result.Confidence),
					)
				}
			}
		case types.SignalTypeSell:
			if result.Confidence >= confidenceThreshold && s.portfolio.SharesHeld > 0 {
				shares := min(sizer.Shares(result.CurrentPrice), s.portfolio.SharesHeld)
				if s.portfolio.ExecuteSell(result.Time, result.CurrentPrice, shares, result.Confidence, result.Reason) {
					s.log.Debug("sell executed",
						zap.Float64("price", result.CurrentPrice),
						zap.Int("shares", shares),
						zap.Float64("confidence", result.Confidence),
					)
				}
			}
		case types.SignalTypeHold, types.SignalTypeNone:
		}

		s.portfolio.RecordDailyValue(result.CurrentPrice)
	}
}

// CalculateFinalMetrics derives the metrics snapshot from the completed
// portfolio marked at the given final price. Call once after all trades
// are replayed; the snapshot is never mutated afterwards.
//
// Trade cycle P&L uses average cost basis accounting: each sell realizes
// P&L against the weighted average cost of the open position, then reduces
// the cost proportionally to the fraction of shares sold.
func (s *Simulator) CalculateFinalMetrics(finalPrice float64) types.BacktestMetrics {
	m := types.BacktestMetrics{
		StartingCapital:      s.startingCapital,
		EndingCapital:        s.portfolio.TotalValue(finalPrice),
		CurrentPositionValue: float64(s.portfolio.SharesHeld) * finalPrice,
		TotalTrades:          len(s.portfolio.TradeHistory),
	}

	m.TotalReturnPct = (m.EndingCapital - m.StartingCapital) / m.StartingCapital * 100.0

	positionCost := decimal.Zero
	positionShares := 0

	var totalWins, totalLosses float64

	for _, trade := range s.portfolio.TradeHistory {
		switch trade.Action {
		case types.TradeActionBuy:
			positionCost = positionCost.Add(decimal.NewFromFloat(trade.Value))
			positionShares += trade.Shares
		case types.TradeActionSell:
			if positionShares <= 0 {
				continue
			}

			avgCost := positionCost.Div(decimal.NewFromInt(int64(positionShares)))
			pnl, _ := decimal.NewFromFloat(trade.Price).
				Sub(avgCost).
				Mul(decimal.NewFromInt(int64(trade.Shares))).
				Float64()

			if pnl > 0 {
				m.WinningTrades++
				totalWins += pnl
			} else {
				m.LosingTrades++
				totalLosses += math.Abs(pnl)
			}

			soldRatio := decimal.NewFromInt(int64(trade.Shares)).Div(decimal.NewFromInt(int64(positionShares)))
			positionCost = positionCost.Sub(positionCost.Mul(soldRatio))
			positionShares -= trade.Shares
		}
	}

	completedCycles := m.WinningTrades + m.LosingTrades
	if completedCycles > 0 {
		m.WinRatePct = float64(m.WinningTrades) / float64(completedCycles) * 100.0

		if m.WinningTrades > 0 {
			m.AvgWin = totalWins / float64(m.WinningTrades)
		}

		if m.LosingTrades > 0 {
			m.AvgLoss = totalLosses / float64(m.LosingTrades)
		}

		// Reported as 0 when no losing cycle exists; see package docs for
		// the rationale behind keeping this contract.
		if totalLosses > 0 {
			m.ProfitFactor = totalWins / totalLosses
		}
	}

	m.MaxDrawdownPct = maxDrawdown(s.portfolio.DailyValues, s.startingCapital)

	// Simplified risk-adjusted return: linear in total return above an
	// assumed 2% risk-free rate. Not volatility normalized.
	if m.TotalReturnPct > 2.0 {
		m.SharpeRatio = (m.TotalReturnPct - 2.0) / 15.0
	}

	s.metrics = m

	s.log.Info("final metrics computed",
		zap.Float64("ending_capital", m.EndingCapital),
		zap.Float64("total_return_pct", m.TotalReturnPct),
		zap.Int("total_trades", m.TotalTrades),
		zap.Float64("win_rate_pct", m.WinRatePct),
	)

	return m
}

// maxDrawdown walks the value sequence tracking a running peak and returns
// the largest percentage decline from that peak. An empty sequence reads 0.
func maxDrawdown(values []float64, startingPeak float64) float64 {
	maxDD := 0.0
	peak := startingPeak

	for _, value := range values {
		if value > peak {
			peak = value
		}

		drawdown := (peak - value) / peak * 100.0
		if drawdown > maxDD {
			maxDD = drawdown
		}
	}

	return maxDD
}
