package types

import "time"

// Bar is a single OHLCV candle. Bars are always handled in ascending time
// order; the data source is responsible for the ordering guarantee.
type Bar struct {
	Time   time.Time `csv:"time" yaml:"time" json:"time"`
	Open   float64   `csv:"open" yaml:"open" json:"open"`
	High   float64   `csv:"high" yaml:"high" json:"high"`
	Low    float64   `csv:"low" yaml:"low" json:"low"`
	Close  float64   `csv:"close" yaml:"close" json:"close"`
	Volume float64   `csv:"volume" yaml:"volume" json:"volume"`
}

// Quote is a top-of-book bid/ask snapshot.
type Quote struct {
	Symbol   string    `csv:"symbol" yaml:"symbol" json:"symbol"`
	Time     time.Time `csv:"time" yaml:"time" json:"time"`
	BidPrice float64   `csv:"bid_price" yaml:"bid_price" json:"bid_price"`
	AskPrice float64   `csv:"ask_price" yaml:"ask_price" json:"ask_price"`
	BidSize  float64   `csv:"bid_size" yaml:"bid_size" json:"bid_size"`
	AskSize  float64   `csv:"ask_size" yaml:"ask_size" json:"ask_size"`
}

// MidPrice returns the bid/ask midpoint used as the current price.
func (q Quote) MidPrice() float64 {
	return (q.BidPrice + q.AskPrice) / 2.0
}

// Spread returns the bid/ask spread.
func (q Quote) Spread() float64 {
	return q.AskPrice - q.BidPrice
}
