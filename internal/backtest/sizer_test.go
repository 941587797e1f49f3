package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedNotionalSizer(t *testing.T) {
	testCases := []struct {
		name     string
		notional float64
		price    float64
		expected int
	}{
		{name: "exact division", notional: 10000, price: 100, expected: 100},
		{name: "rounds down", notional: 10000, price: 117, expected: 85},
		{name: "price above notional", notional: 100, price: 250, expected: 0},
		{name: "zero price", notional: 10000, price: 0, expected: 0},
		{name: "negative price", notional: 10000, price: -5, expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sizer := FixedNotionalSizer{Notional: tc.notional}
			assert.Equal(t, tc.expected, sizer.Shares(tc.price))
		})
	}
}
