package indicator

import (
	"github.com/rxtech-lab/quant-backtest/internal/types"
	"github.com/rxtech-lab/quant-backtest/pkg/errors"
)

// EMA implements a streaming Exponential Moving Average.
//
// EMA_today = alpha * price + (1 - alpha) * EMA_yesterday, alpha = 2/(period+1).
// The first observed price bootstraps the average.
type EMA struct {
	period      int
	alpha       float64
	current     float64
	initialized bool
}

// NewEMA creates a new EMA indicator with the default period.
func NewEMA() *EMA {
	return newEMA(20)
}

// NewEMAWithPeriod creates a new EMA indicator with the given period.
func NewEMAWithPeriod(period int) (*EMA, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	return newEMA(period), nil
}

func newEMA(period int) *EMA {
	return &EMA{
		period:      period,
		alpha:       smoothingFactor(period),
		current:     0,
		initialized: false,
	}
}

func smoothingFactor(period int) float64 {
	return 2.0 / float64(period+1)
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Config configures the EMA indicator and resets its state.
// Expected parameters: period (int).
func (e *EMA) Config(params ...any) error {
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

	e.period = period
	e.alpha = smoothingFactor(period)
	e.Reset()

	return nil
}

// Update consumes the next price and returns the updated EMA value.
func (e *EMA) Update(price float64) float64 {
	if !e.initialized {
		e.current = price
		e.initialized = true

		return e.current
	}

	e.current = e.alpha*price + (1-e.alpha)*e.current

	return e.current
}

// Value returns the current EMA. The value is undefined before the first
// update; callers must check IsInitialized.
func (e *EMA) Value() float64 {
	return e.current
}

// Reset implements Streaming.
func (e *EMA) Reset() {
	e.current = 0
	e.initialized = false
}

// IsInitialized implements Streaming.
func (e *EMA) IsInitialized() bool {
	return e.initialized
}

// Period returns the configured period.
func (e *EMA) Period() int {
	return e.period
}
