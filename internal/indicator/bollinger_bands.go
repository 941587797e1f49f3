package indicator

import (
	"math"

	"github.com/rxtech-lab/quant-backtest/internal/types"
	"github.com/rxtech-lab/quant-backtest/pkg/errors"
)

// Bands holds the three Bollinger band values for one update.
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// BollingerBands implements streaming Bollinger Bands over a bounded FIFO
// window of the last period prices.
//
// middle = SMA(window), upper/lower = middle +/- k * stddev, where stddev is
// the population standard deviation (divisor = period). Until the window is
// full the indicator returns a zero Bands value; callers must check
// IsInitialized before trusting it.
type BollingerBands struct {
	period      int
	stdDev      float64
	window      []float64
	current     Bands
	initialized bool
}

// NewBollingerBands creates a new Bollinger Bands indicator with the
// default configuration (period 20, 2 standard deviations).
func NewBollingerBands() *BollingerBands {
	return newBollingerBands(20, 2.0)
}

// NewBollingerBandsWithConfig creates a new Bollinger Bands indicator with
// the given period and standard deviation multiplier.
func NewBollingerBandsWithConfig(period int, stdDev float64) (*BollingerBands, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	if stdDev <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidStdDev, "stdDev must be a positive number, got %f", stdDev)
	}

	return newBollingerBands(period, stdDev), nil
}

func newBollingerBands(period int, stdDev float64) *BollingerBands {
	return &BollingerBands{
		period:      period,
		stdDev:      stdDev,
		window:      make([]float64, 0, period),
		current:     Bands{},
		initialized: false,
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Config configures the Bollinger Bands indicator and resets its state.
// Expected parameters: period (int), stdDev (float64).
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: period (int), stdDev (float64)")
	}

	period, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	stdDev, ok := params[1].(float64)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for stdDev parameter, expected float64")
	}

	if stdDev <= 0 {
		return errors.Newf(errors.ErrCodeInvalidStdDev, "stdDev must be a positive number, got %f", stdDev)
	}

	bb.period = period
	bb.stdDev = stdDev
	bb.window = make([]float64, 0, period)
	bb.Reset()

	return nil
}

// Update consumes the next price and returns the updated middle band.
// Use UpdateBands to receive all three band values.
func (bb *BollingerBands) Update(price float64) float64 {
	return bb.UpdateBands(price).Middle
}

// UpdateBands consumes the next price, evicting the oldest window entry
// when the window is full, and returns the recalculated bands. While the
// window is short the returned value is zero and the indicator stays
// uninitialized.
func (bb *BollingerBands) UpdateBands(price float64) Bands {
	bb.window = append(bb.window, price)
	if len(bb.window) > bb.period {
		bb.window = bb.window[1:]
	}

	if len(bb.window) < bb.period {
		return Bands{}
	}

	var sum float64
	for _, p := range bb.window {
		sum += p
	}

	sma := sum / float64(bb.period)

	var squaredDiffSum float64

	for _, p := range bb.window {
		diff := p - sma
		squaredDiffSum += diff * diff
	}

	stdDev := math.Sqrt(squaredDiffSum / float64(bb.period))

	bb.current = Bands{
		Upper:  sma + bb.stdDev*stdDev,
		Middle: sma,
		Lower:  sma - bb.stdDev*stdDev,
	}
	bb.initialized = true

	return bb.current
}

// Value returns the most recently computed bands, or an
// InsufficientDataError while the window is not yet full.
func (bb *BollingerBands) Value() (Bands, error) {
	if !bb.initialized {
		return Bands{}, errors.NewInsufficientDataErrorf(bb.period, len(bb.window),
			"insufficient data points for Bollinger Bands: required %d, got %d", bb.period, len(bb.window))
	}

	return bb.current, nil
}

// Reset implements Streaming.
func (bb *BollingerBands) Reset() {
	bb.window = bb.window[:0]
	bb.current = Bands{}
	bb.initialized = false
}

// IsInitialized implements Streaming.
func (bb *BollingerBands) IsInitialized() bool {
	return bb.initialized
}
