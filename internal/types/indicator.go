package types

type IndicatorType string

const (
	// IndicatorTypeEMA is the exponential moving average indicator
	IndicatorTypeEMA IndicatorType = "ema"
	// IndicatorTypeRSI is the relative strength index indicator
	IndicatorTypeRSI IndicatorType = "rsi"
	// IndicatorTypeBollingerBands is the Bollinger Bands indicator
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
)

// IndicatorSnapshot captures the value of every indicator after a single
// price update. The band values are only meaningful once the Bollinger
// window is full.
type IndicatorSnapshot struct {
	EMA      float64 `csv:"ema" yaml:"ema" json:"ema"`
	RSI      float64 `csv:"rsi" yaml:"rsi" json:"rsi"`
	BBUpper  float64 `csv:"bb_upper" yaml:"bb_upper" json:"bb_upper"`
	BBMiddle float64 `csv:"bb_middle" yaml:"bb_middle" json:"bb_middle"`
	BBLower  float64 `csv:"bb_lower" yaml:"bb_lower" json:"bb_lower"`
}
