package provider

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/rxtech-lab/quant-backtest/internal/types"
	"github.com/rxtech-lab/quant-backtest/pkg/errors"
	"github.com/rxtech-lab/quant-backtest/pkg/marketdata"
)

// PolygonSource serves historical aggregates and last quotes from the
// Polygon REST API.
type PolygonSource struct {
	client *polygon.Client
}

// NewPolygonSource creates a Polygon-backed market data source.
func NewPolygonSource(apiKey string) (marketdata.Source, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "apiKey is required")
	}

	return &PolygonSource{
		client: polygon.New(apiKey),
	}, nil
}

// GetHistoricalBars implements marketdata.Source. It pages through the
// aggregates endpoint and returns the last limit bars in ascending order.
func (s *PolygonSource) GetHistoricalBars(ctx context.Context, symbol string, timeframe string, limit int) ([]types.Bar, error) {
	if limit <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "limit must be a positive integer, got %d", limit)
	}

	spec, err := parseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}

	endDate := time.Now()
	// Request a wider window than strictly necessary; markets are closed on
	// weekends and holidays, so limit bars span more than limit durations.
	startDate := endDate.Add(-time.Duration(2*limit) * spec.duration)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: spec.multiplier,
		Timespan:   spec.timespan,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithOrder(models.Asc).WithLimit(50000)

	iter := s.client.ListAggs(ctx, params)

	bars := make([]types.Bar, 0, limit)

	for iter.Next() {
		agg := iter.Item()
		bars = append(bars, types.Bar{
			Time:   time.Time(agg.Timestamp),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}

	if iter.Err() != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, iter.Err(), "failed to list aggregates for %s", symbol)
	}

	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}

	return bars, nil
}

// GetLatestQuote implements marketdata.Source. An empty quote from the
// vendor is reported as None rather than an error.
func (s *PolygonSource) GetLatestQuote(ctx context.Context, symbol string) (optional.Option[types.Quote], error) {
	res, err := s.client.GetLastQuote(ctx, &models.GetLastQuoteParams{Ticker: symbol})
	if err != nil {
		return optional.None[types.Quote](), errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to get last quote for %s", symbol)
	}

	last := res.Results
	if last.BidPrice == 0 && last.AskPrice == 0 {
		return optional.None[types.Quote](), nil
	}

	return optional.Some(types.Quote{
		Symbol:   symbol,
		Time:     time.Time(last.SipTimestamp),
		BidPrice: last.BidPrice,
		AskPrice: last.AskPrice,
		BidSize:  last.BidSize,
		AskSize:  last.AskSize,
	}), nil
}
