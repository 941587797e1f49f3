// Package backtest simulates trade execution against a portfolio and
// derives performance statistics from the result.
package backtest

import (
	"time"

	"github.com/google/uuid"

	"github.com/rxtech-lab/quant-backtest/internal/types"
)

// Portfolio tracks cash, the share position and the full trade history of
// one backtest run. It is owned exclusively by one Simulator and mutated
// only through ExecuteBuy/ExecuteSell; cash and shares never go negative.
type Portfolio struct {
	Cash         float64
	SharesHeld   int
	LastBuyPrice float64
	TradeHistory []types.Trade
	// DailyValues is the portfolio value snapshot sequence used for
	// drawdown computation
	DailyValues []float64
}

// NewPortfolio creates a portfolio seeded with the given starting cash.
func NewPortfolio(startingCash float64) *Portfolio {
	return &Portfolio{
		Cash:         startingCash,
		SharesHeld:   0,
		LastBuyPrice: 0,
		TradeHistory: nil,
		DailyValues:  nil,
	}
}

// TotalValue returns cash plus the position marked at the given price.
func (p *Portfolio) TotalValue(currentPrice float64) float64 {
	return p.Cash + float64(p.SharesHeld)*currentPrice
}

// CanBuy reports whether the portfolio can afford the given order.
func (p *Portfolio) CanBuy(price float64, shares int) bool {
	return p.Cash >= price*float64(shares)
}

// ExecuteBuy deducts cash, adds shares and appends a trade record. An
// unaffordable buy is silently rejected and returns false; callers are
// expected to size orders within available cash.
func (p *Portfolio) ExecuteBuy(t time.Time, price float64, shares int, confidence float64, reason string) bool {
	if shares <= 0 || !p.CanBuy(price, shares) {
		return false
	}

	cost := price * float64(shares)
	p.Cash -= cost
	p.SharesHeld += shares
	p.LastBuyPrice = price

	p.TradeHistory = append(p.TradeHistory, types.Trade{
		ID:         uuid.New().String(),
		Time:       t,
		Action:     types.TradeActionBuy,
		Price:      price,
		Shares:     shares,
		Value:      cost,
		Confidence: confidence,
		Reason:     reason,
	})

	return true
}

// ExecuteSell adds proceeds, removes shares and appends a trade record. A
// sell exceeding the held position is silently rejected and returns false.
func (p *Portfolio) ExecuteSell(t time.Time, price float64, shares int, confidence float64, reason string) bool {
	if shares <= 0 || p.SharesHeld < shares {
		return false
	}

	proceeds := price * float64(shares)
	p.Cash += proceeds
	p.SharesHeld -= shares

	p.TradeHistory = append(p.TradeHistory, types.Trade{
		ID:         uuid.New().String(),
		Time:       t,
		Action:     types.TradeActionSell,
		Price:      price,
		Shares:     shares,
		Value:      proceeds,
		Confidence: confidence,
		Reason:     reason,
	})

	return true
}

// RecordDailyValue appends the current portfolio value marked at the given
// price to the daily value sequence.
func (p *Portfolio) RecordDailyValue(currentPrice float64) {
	p.DailyValues = append(p.DailyValues, p.TotalValue(currentPrice))
}
