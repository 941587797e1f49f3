package indicator

import (
	"github.com/rxtech-lab/quant-backtest/internal/types"
	"github.com/rxtech-lab/quant-backtest/pkg/errors"
)

// RSI implements a streaming Relative Strength Index in [0, 100].
//
// Price changes are split into gains and losses, each smoothed by an EMA
// over the configured period. RS = avgGain/avgLoss, RSI = 100 - 100/(1+RS).
// Two defined fallbacks keep the value total: a flat market (both averages
// zero) reads 50, a pure uptrend (zero average loss) reads 100.
type RSI struct {
	gainsEMA      *EMA
	lossesEMA     *EMA
	previousPrice float64
	current       float64
	initialized   bool
}

const rsiNeutral = 50.0

// NewRSI creates a new RSI indicator with the default period.
func NewRSI() *RSI {
	return newRSI(14)
}

// NewRSIWithPeriod creates a new RSI indicator with the given period.
func NewRSIWithPeriod(period int) (*RSI, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	return newRSI(period), nil
}

func newRSI(period int) *RSI {
	return &RSI{
		gainsEMA:      newEMA(period),
		lossesEMA:     newEMA(period),
		previousPrice: 0,
		current:       rsiNeutral,
		initialized:   false,
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config configures the RSI indicator and resets its state.
// Expected parameters: period (int).
func (r *RSI) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	r.gainsEMA = newEMA(period)
	r.lossesEMA = newEMA(period)
	r.Reset()

	return nil
}

// Update consumes the next price and returns the updated RSI value.
// The first call only stores the price and returns the neutral 50: no
// change is knowable from a single observation.
func (r *RSI) Update(price float64) float64 {
	if !r.initialized {
		r.previousPrice = price
		r.initialized = true

		return r.current
	}

	change := price - r.previousPrice

	gain := 0.0
	loss := 0.0

	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	r.gainsEMA.Update(gain)
	r.lossesEMA.Update(loss)

	avgGain := r.gainsEMA.Value()
	avgLoss := r.lossesEMA.Value()

	switch {
	case avgGain == 0 && avgLoss == 0:
		// Flat market
		r.current = rsiNeutral
	case avgLoss == 0:
		// Pure uptrend, avoids division by zero
		r.current = 100.0
	default:
		rs := avgGain / avgLoss
		r.current = 100.0 - (100.0 / (1.0 + rs))
	}

	r.previousPrice = price

	return r.current
}

// Value returns the current RSI.
func (r *RSI) Value() float64 {
	return r.current
}

// Reset implements Streaming.
func (r *RSI) Reset() {
	r.gainsEMA.Reset()
	r.lossesEMA.Reset()
	r.previousPrice = 0
	r.current = rsiNeutral
	r.initialized = false
}

// IsInitialized implements Streaming.
func (r *RSI) IsInitialized() bool {
	return r.initialized
}
