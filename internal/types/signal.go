package types

import "time"

type SignalType string

const (
	// SignalTypeNone is the uninitialized signal, before any data has been seen
	SignalTypeNone SignalType = "none"
	// SignalTypeBuy is a signal that tells the caller to open or add to a position
	SignalTypeBuy SignalType = "buy"
	// SignalTypeSell is a signal that tells the caller to reduce or close a position
	SignalTypeSell SignalType = "sell"
	// SignalTypeHold is an explicit decision not to trade
	SignalTypeHold SignalType = "hold"
)

// ConfidenceBreakdown holds the four normalized factor scores that are
// blended into the final confidence value. Each score is in [0, 1].
type ConfidenceBreakdown struct {
	// RSIExtremity measures how far RSI is into oversold/overbought territory
	RSIExtremity float64 `csv:"rsi_extremity" yaml:"rsi_extremity" json:"rsi_extremity"`
	// BandExtremity measures how far price is outside the Bollinger channel
	BandExtremity float64 `csv:"band_extremity" yaml:"band_extremity" json:"band_extremity"`
	// TrendDeviation measures price displacement from the EMA
	TrendDeviation float64 `csv:"trend_deviation" yaml:"trend_deviation" json:"trend_deviation"`
	// VolatilityRegime measures band width relative to the middle band
	VolatilityRegime float64 `csv:"volatility_regime" yaml:"volatility_regime" json:"volatility_regime"`
}

// StrategyResult is the outcome of evaluating one price against the
// strategy. Immutable once produced.
type StrategyResult struct {
	// Time is the time of the bar or quote that produced this result
	Time time.Time `csv:"time" yaml:"time" json:"time"`
	// Signal is the trading decision
	Signal SignalType `csv:"signal" yaml:"signal" json:"signal"`
	// Confidence is in [0.5, 0.95] when computed from initialized indicators,
	// 0 when no data was available
	Confidence float64 `csv:"confidence" yaml:"confidence" json:"confidence"`
	// Reason is a human-readable explanation of the decision
	Reason string `csv:"reason" yaml:"reason" json:"reason"`
	// CurrentPrice is the price the decision was made at
	CurrentPrice float64 `csv:"current_price" yaml:"current_price" json:"current_price"`
	// Indicators is the indicator state after this price update
	Indicators IndicatorSnapshot `csv:"indicators" yaml:"indicators" json:"indicators"`
	// Breakdown is the structured factor scoring behind Confidence
	Breakdown ConfidenceBreakdown `csv:"breakdown" yaml:"breakdown" json:"breakdown"`
}
