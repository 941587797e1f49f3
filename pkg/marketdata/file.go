package marketdata

import (
	"context"
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/quant-backtest/internal/datasource"
	"github.com/rxtech-lab/quant-backtest/internal/types"
	"github.com/rxtech-lab/quant-backtest/pkg/errors"
)

// FileSource serves bars from a local data file through a DataSource.
// The symbol and timeframe arguments are ignored; a file holds exactly
// one symbol at one resolution.
type FileSource struct {
	source datasource.DataSource
	start  optional.Option[time.Time]
	end    optional.Option[time.Time]
}

// NewFileSource wraps an initialized data source as a bar source.
func NewFileSource(source datasource.DataSource) *FileSource {
	return NewFileSourceWithRange(source, optional.None[time.Time](), optional.None[time.Time]())
}

// NewFileSourceWithRange wraps an initialized data source as a bar source
// restricted to the optional [start, end] time bounds. Reads outside the
// bounds are filtered at the query level.
func NewFileSourceWithRange(source datasource.DataSource, start, end optional.Option[time.Time]) *FileSource {
	return &FileSource{source: source, start: start, end: end}
}

// GetHistoricalBars implements Source. When limit is positive only the
// most recent limit bars are returned.
func (f *FileSource) GetHistoricalBars(ctx context.Context, symbol string, timeframe string, limit int) ([]types.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bars := make([]types.Bar, 0, 1000)

	for bar, err := range f.source.ReadAll(f.start, f.end) {
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to read bars from file", err)
		}

		bars = append(bars, bar)
	}

	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}

	return bars, nil
}

// GetLatestQuote implements Source. A data file carries no quote feed, so
// the latest bar's close stands in for both sides of the book.
func (f *FileSource) GetLatestQuote(ctx context.Context, symbol string) (optional.Option[types.Quote], error) {
	if err := ctx.Err(); err != nil {
		return optional.None[types.Quote](), err
	}

	bar, err := f.source.ReadLastBar()
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeDataNotFound) {
			return optional.None[types.Quote](), nil
		}

		return optional.None[types.Quote](), err
	}

	return optional.Some(types.Quote{
		Symbol:   symbol,
		Time:     bar.Time,
		BidPrice: bar.Close,
		AskPrice: bar.Close,
	}), nil
}
