package indicator

import (
	"github.com/rxtech-lab/quant-backtest/internal/types"
)

// Streaming is a technical indicator that consumes one price at a time and
// maintains incremental state. Implementations are not safe for concurrent
// use; each strategy instance owns its own indicators.
type Streaming interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config configures the indicator parameters and resets its state
	Config(params ...any) error
	// Update consumes the next price and returns the indicator's primary
	// value (EMA value, RSI value, Bollinger middle band)
	Update(price float64) float64
	// Reset clears all internal state so the indicator can be reused for an
	// independent run
	Reset()
	// IsInitialized reports whether enough data has been seen for the
	// indicator's value to be meaningful
	IsInitialized() bool
}
