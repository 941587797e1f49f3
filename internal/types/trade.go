package types

import "time"

type TradeAction string

const (
	TradeActionBuy  TradeAction = "BUY"
	TradeActionSell TradeAction = "SELL"
)

// Trade is a single executed transaction. Entries are append-only; the
// portfolio never mutates a trade after recording it.
type Trade struct {
	ID     string      `csv:"id" yaml:"id" json:"id"`
	Time   time.Time   `csv:"time" yaml:"time" json:"time"`
	Action TradeAction `csv:"action" yaml:"action" json:"action"`
	Price  float64     `csv:"price" yaml:"price" json:"price"`
	Shares int         `csv:"shares" yaml:"shares" json:"shares"`
	// Value is price * shares at execution time
	Value      float64 `csv:"value" yaml:"value" json:"value"`
	Confidence float64 `csv:"confidence" yaml:"confidence" json:"confidence"`
	Reason     string  `csv:"reason" yaml:"reason" json:"reason"`
}
