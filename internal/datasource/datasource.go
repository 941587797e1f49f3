package datasource

import (
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/quant-backtest/internal/types"
)

// DataSource reads historical bars from a local market data file. The
// backing file is loaded once via Initialize and queried read-only after
// that.
type DataSource interface {
	// Initialize loads market data from the given file path. CSV and
	// parquet files are supported, chosen by extension.
	Initialize(path string) error
	// ReadAll yields every bar in ascending time order, optionally bounded
	// by start and end.
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool)
	// GetRange returns all bars between start and end inclusive.
	GetRange(start time.Time, end time.Time) ([]types.Bar, error)
	// ReadLastBar returns the most recent bar in the data source.
	ReadLastBar() (types.Bar, error)
	// Count returns the number of bars, optionally bounded by start and end.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close closes the data source and releases any resources
	Close() error
}
