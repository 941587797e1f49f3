package provider

import (
	"time"

	"github.com/polygon-io/client-go/rest/models"

	"github.com/rxtech-lab/quant-backtest/pkg/errors"
)

// timeframeSpec is the vendor-neutral decomposition of a timeframe string
// such as "1Min", "15Min", "1Hour" or "1Day".
type timeframeSpec struct {
	multiplier int
	timespan   models.Timespan
	duration   time.Duration
}

var timeframes = map[string]timeframeSpec{
	"1Min":  {multiplier: 1, timespan: models.Minute, duration: time.Minute},
	"5Min":  {multiplier: 5, timespan: models.Minute, duration: 5 * time.Minute},
	"15Min": {multiplier: 15, timespan: models.Minute, duration: 15 * time.Minute},
	"30Min": {multiplier: 30, timespan: models.Minute, duration: 30 * time.Minute},
	"1Hour": {multiplier: 1, timespan: models.Hour, duration: time.Hour},
	"4Hour": {multiplier: 4, timespan: models.Hour, duration: 4 * time.Hour},
	"1Day":  {multiplier: 1, timespan: models.Day, duration: 24 * time.Hour},
	"1Week": {multiplier: 1, timespan: models.Week, duration: 7 * 24 * time.Hour},
}

// parseTimeframe resolves a timeframe string into its multiplier, timespan
// and bar duration.
func parseTimeframe(timeframe string) (timeframeSpec, error) {
	spec, ok := timeframes[timeframe]
	if !ok {
		return timeframeSpec{}, errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe: %s", timeframe)
	}

	return spec, nil
}

// binanceInterval converts a timeframe string into the Binance kline
// interval notation ("1m", "1h", "1d", ...).
func binanceInterval(timeframe string) (string, error) {
	intervals := map[string]string{
		"1Min":  "1m",
		"5Min":  "5m",
		"15Min": "15m",
		"30Min": "30m",
		"1Hour": "1h",
		"4Hour": "4h",
		"1Day":  "1d",
		"1Week": "1w",
	}

	interval, ok := intervals[timeframe]
	if !ok {
		return "", errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe: %s", timeframe)
	}

	return interval, nil
}
