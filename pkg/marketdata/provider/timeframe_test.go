package provider

import (
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxtech-lab/quant-backtest/pkg/errors"
)

func TestParseTimeframe(t *testing.T) {
	testCases := []struct {
		timeframe  string
		multiplier int
		timespan   models.Timespan
		duration   time.Duration
	}{
		{timeframe: "1Min", multiplier: 1, timespan: models.Minute, duration: time.Minute},
		{timeframe: "15Min", multiplier: 15, timespan: models.Minute, duration: 15 * time.Minute},
		{timeframe: "4Hour", multiplier: 4, timespan: models.Hour, duration: 4 * time.Hour},
		{timeframe: "1Day", multiplier: 1, timespan: models.Day, duration: 24 * time.Hour},
		{timeframe: "1Week", multiplier: 1, timespan: models.Week, duration: 7 * 24 * time.Hour},
	}

	for _, tc := range testCases {
		t.Run(tc.timeframe, func(t *testing.T) {
			spec, err := parseTimeframe(tc.timeframe)
			require.NoError(t, err)
			assert.Equal(t, tc.multiplier, spec.multiplier)
			assert.Equal(t, tc.timespan, spec.timespan)
			assert.Equal(t, tc.duration, spec.duration)
		})
	}
}

func TestParseTimeframeUnsupported(t *testing.T) {
	for _, timeframe := range []string{"", "2Day", "1min", "daily"} {
		_, err := parseTimeframe(timeframe)
		assert.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidTimeframe))
	}
}

func TestBinanceInterval(t *testing.T) {
	testCases := []struct {
		timeframe string
		interval  string
	}{
		{timeframe: "1Min", interval: "1m"},
		{timeframe: "30Min", interval: "30m"},
		{timeframe: "1Hour", interval: "1h"},
		{timeframe: "1Day", interval: "1d"},
		{timeframe: "1Week", interval: "1w"},
	}

	for _, tc := range testCases {
		t.Run(tc.timeframe, func(t *testing.T) {
			interval, err := binanceInterval(tc.timeframe)
			require.NoError(t, err)
			assert.Equal(t, tc.interval, interval)
		})
	}

	_, err := binanceInterval("2Day")
	assert.Error(t, err)
}
