package backtest

// Sizer decides how many whole shares to trade at a given price. The
// sizing policy belongs to the driver, not the simulator: different
// drivers may size fixed-notional, fixed-share or proportional to
// confidence.
type Sizer interface {
	Shares(price float64) int
}

// FixedNotionalSizer targets a fixed dollar amount per trade and rounds
// down to whole shares.
type FixedNotionalSizer struct {
	// Notional is the target dollar amount per trade
	Notional float64
}

// Shares implements Sizer.
func (s FixedNotionalSizer) Shares(price float64) int {
	if price <= 0 {
		return 0
	}

	return int(s.Notional / price)
}
