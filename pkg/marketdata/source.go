// Package marketdata provides access to historical bars and live quotes
// from external market data vendors.
package marketdata

import (
	"context"
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/quant-backtest/internal/types"
)

// Source is the data-supply capability injected into strategies. It hides
// the vendor behind two operations: historical bars in ascending time order
// and an optional latest quote. A missing quote is a valid outcome, not an
// error.
type Source interface {
	// GetHistoricalBars returns up to limit bars for the symbol at the given
	// timeframe (e.g. "1Day", "1Min"), ordered ascending by time.
	GetHistoricalBars(ctx context.Context, symbol string, timeframe string, limit int) ([]types.Bar, error)
	// GetLatestQuote returns the most recent bid/ask quote for the symbol,
	// or None when the vendor has no quote available.
	GetLatestQuote(ctx context.Context, symbol string) (optional.Option[types.Quote], error)
}

// FilterBars keeps the bars whose timestamps fall inside the optional
// [start, end] bounds. A None bound is unbounded on that side.
func FilterBars(bars []types.Bar, start, end optional.Option[time.Time]) []types.Bar {
	if start.IsNone() && end.IsNone() {
		return bars
	}

	filtered := make([]types.Bar, 0, len(bars))

	for _, bar := range bars {
		if start.IsSome() && bar.Time.Before(start.Unwrap()) {
			continue
		}

		if end.IsSome() && bar.Time.After(end.Unwrap()) {
			continue
		}

		filtered = append(filtered, bar)
	}

	return filtered
}
