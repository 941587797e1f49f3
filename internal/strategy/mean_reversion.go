// Package strategy turns streaming indicator state into trading signals.
package strategy

import (
	"context"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rxtech-lab/quant-backtest/internal/indicator"
	"github.com/rxtech-lab/quant-backtest/internal/logger"
	"github.com/rxtech-lab/quant-backtest/internal/types"
	"github.com/rxtech-lab/quant-backtest/pkg/errors"
	"github.com/rxtech-lab/quant-backtest/pkg/marketdata"
)

// Confidence factor weights. RSI extremity dominates because the strategy
// trades mean reversion off momentum extremes.
const (
	rsiWeight   = 0.35
	bandWeight  = 0.30
	trendWeight = 0.20
	volWeight   = 0.15
)

// Options are the tunable parameters of the mean reversion strategy.
type Options struct {
	EMAPeriod           int     `yaml:"ema_period" validate:"gt=0"`
	RSIPeriod           int     `yaml:"rsi_period" validate:"gt=0"`
	BBPeriod            int     `yaml:"bb_period" validate:"gt=0"`
	BBStdDev            float64 `yaml:"bb_std_dev" validate:"gt=0"`
	OversoldThreshold   float64 `yaml:"oversold_threshold" validate:"gt=0,lt=100"`
	OverboughtThreshold float64 `yaml:"overbought_threshold" validate:"gt=0,lt=100,gtfield=OversoldThreshold"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold" validate:"gt=0,lte=1"`
}

// DefaultOptions returns the standard mean reversion parameter set:
// EMA(20), RSI(14), Bollinger(20, 2.0), RSI thresholds 30/70, 65%
// confidence.
func DefaultOptions() Options {
	return Options{
		EMAPeriod:           20,
		RSIPeriod:           14,
		BBPeriod:            20,
		BBStdDev:            2.0,
		OversoldThreshold:   30,
		OverboughtThreshold: 70,
		ConfidenceThreshold: 0.65,
	}
}

// MeanReversion is a mean reversion strategy over three streaming
// indicators. One instance owns its indicator state exclusively and must
// not be shared across goroutines; independent runs get independent
// instances.
type MeanReversion struct {
	ema  *indicator.EMA
	rsi  *indicator.RSI
	bb   *indicator.BollingerBands
	opts Options

	registry indicator.Registry
	source   marketdata.Source
	log      *logger.Logger
}

// NewMeanReversion creates a mean reversion strategy with the given
// options. The source may be nil when the strategy is only used for
// replaying historical bars.
func NewMeanReversion(source marketdata.Source, log *logger.Logger, opts Options) (*MeanReversion, error) {
	if err := validator.New().Struct(opts); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid strategy options", err)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	ema, err := indicator.NewEMAWithPeriod(opts.EMAPeriod)
	if err != nil {
		return nil, err
	}

	rsi, err := indicator.NewRSIWithPeriod(opts.RSIPeriod)
	if err != nil {
		return nil, err
	}

	bb, err := indicator.NewBollingerBandsWithConfig(opts.BBPeriod, opts.BBStdDev)
	if err != nil {
		return nil, err
	}

	registry := indicator.NewRegistry()

	for _, ind := range []indicator.Streaming{ema, rsi, bb} {
		if err := registry.RegisterIndicator(ind); err != nil {
			return nil, err
		}
	}

	return &MeanReversion{
		ema:      ema,
		rsi:      rsi,
		bb:       bb,
		opts:     opts,
		registry: registry,
		source:   source,
		log:      log,
	}, nil
}

// Options returns the currently configured parameters.
func (s *MeanReversion) Options() Options {
	return s.opts
}

// SetConfidenceThreshold updates the confidence threshold. Values outside
// (0, 1] are rejected.
func (s *MeanReversion) SetConfidenceThreshold(threshold float64) error {
	if threshold <= 0 || threshold > 1 {
		return errors.Newf(errors.ErrCodeInvalidThreshold, "confidence threshold must be in (0, 1], got %f", threshold)
	}

	s.opts.ConfidenceThreshold = threshold

	return nil
}

// Indicator resolves one of the strategy's registered indicators by name.
func (s *MeanReversion) Indicator(name types.IndicatorType) (indicator.Streaming, error) {
	return s.registry.GetIndicator(name)
}

// Reset clears all indicator state so the instance can be reused for an
// independent run.
func (s *MeanReversion) Reset() {
	for _, name := range s.registry.ListIndicators() {
		ind, err := s.registry.GetIndicator(name)
		if err != nil {
			continue
		}

		ind.Reset()
	}
}

// IngestHistory feeds every bar's close through all indicators without
// emitting signals. Bars must be in ascending time order.
func (s *MeanReversion) IngestHistory(bars []types.Bar) {
	for _, bar := range bars {
		s.ema.Update(bar.Close)
		s.rsi.Update(bar.Close)
		s.bb.UpdateBands(bar.Close)
	}

	s.log.Debug("history ingested",
		zap.Int("bars", len(bars)),
	)
}

// GenerateSignal updates all indicators with the new price and evaluates
// the decision rule.
func (s *MeanReversion) GenerateSignal(price float64) types.StrategyResult {
	emaValue := s.ema.Update(price)
	rsiValue := s.rsi.Update(price)
	bands := s.bb.UpdateBands(price)

	return s.decide(price, emaValue, rsiValue, bands)
}

// GenerateSignalForSymbol pulls the latest quote from the injected data
// source and evaluates the decision rule on its mid price. A missing quote
// is a local condition, not an error: the result is Hold with zero
// confidence.
func (s *MeanReversion) GenerateSignalForSymbol(ctx context.Context, symbol string) (types.StrategyResult, error) {
	if s.source == nil {
		return types.StrategyResult{}, errors.New(errors.ErrCodeDataSourceUnavailable, "no market data source configured")
	}

	quote, err := s.source.GetLatestQuote(ctx, symbol)
	if err != nil {
		return types.StrategyResult{}, err
	}

	if quote.IsNone() {
		s.log.Warn("no quote available",
			zap.String("symbol", symbol),
		)

		return types.StrategyResult{
			Signal:     types.SignalTypeHold,
			Confidence: 0,
			Reason:     "no quote data available",
		}, nil
	}

	q := quote.Unwrap()
	result := s.GenerateSignal(q.MidPrice())
	result.Time = q.Time

	return result, nil
}

// RunBacktest replays the full bar sequence through a fresh indicator
// state: warm up on the first min(20, n/2) bars without emitting signals,
// then produce one result per remaining bar in chronological order.
func (s *MeanReversion) RunBacktest(bars []types.Bar) []types.StrategyResult {
	if len(bars) == 0 {
		s.log.Warn("no historical bars to backtest")

		return nil
	}

	s.Reset()

	warmup := min(20, len(bars)/2)
	s.IngestHistory(bars[:warmup])

	results := make([]types.StrategyResult, 0, len(bars)-warmup)

	for _, bar := range bars[warmup:] {
		result := s.GenerateSignal(bar.Close)
		result.Time = bar.Time
		results = append(results, result)
	}

	s.log.Debug("backtest replay complete",
		zap.Int("bars", len(bars)),
		zap.Int("warmup", warmup),
		zap.Int("signals", len(results)),
	)

	return results
}

// decide computes the confidence score and applies the decision rule,
// first match wins: oversold and confident buys, overbought and confident
// sells, anything else holds.
func (s *MeanReversion) decide(price, emaValue, rsiValue float64, bands indicator.Bands) types.StrategyResult {
	confidence, breakdown := s.calculateConfidence(price, emaValue, rsiValue, bands)

	result := types.StrategyResult{
		Signal:       types.SignalTypeHold,
		Confidence:   confidence,
		CurrentPrice: price,
		Indicators: types.IndicatorSnapshot{
			EMA:      emaValue,
			RSI:      rsiValue,
			BBUpper:  bands.Upper,
			BBMiddle: bands.Middle,
			BBLower:  bands.Lower,
		},
		Breakdown: breakdown,
	}

	switch {
	case rsiValue < s.opts.OversoldThreshold && confidence >= s.opts.ConfidenceThreshold:
		result.Signal = types.SignalTypeBuy
		result.Reason = fmt.Sprintf("RSI oversold (value=%.2f, threshold=%.0f), confidence %.0f%%",
			rsiValue, s.opts.OversoldThreshold, confidence*100)
	case rsiValue > s.opts.OverboughtThreshold && confidence >= s.opts.ConfidenceThreshold:
		result.Signal = types.SignalTypeSell
		result.Reason = fmt.Sprintf("RSI overbought (value=%.2f, threshold=%.0f), confidence %.0f%%",
			rsiValue, s.opts.OverboughtThreshold, confidence*100)
	default:
		result.Reason = fmt.Sprintf("no entry: RSI=%.2f, confidence %.0f%% (need %.0f%%)",
			rsiValue, confidence*100, s.opts.ConfidenceThreshold*100)
	}

	return result
}

// calculateConfidence blends four normalized factors into a single score
// rescaled into [0.5, 0.95].
func (s *MeanReversion) calculateConfidence(price, emaValue, rsiValue float64, bands indicator.Bands) (float64, types.ConfidenceBreakdown) {
	breakdown := types.ConfidenceBreakdown{}

	// RSI momentum strength: distance into oversold/overbought territory.
	if rsiValue <= 30 {
		breakdown.RSIExtremity = (30 - rsiValue) / 30.0
	} else if rsiValue >= 70 {
		breakdown.RSIExtremity = (rsiValue - 70) / 30.0
	}

	breakdown.RSIExtremity = clamp01(breakdown.RSIExtremity)

	// Bollinger band extremes: distance outside the channel relative to its
	// width. Zero when the band width is not positive.
	bandWidth := bands.Upper - bands.Lower
	if bandWidth > 0 {
		if price < bands.Lower {
			breakdown.BandExtremity = (bands.Lower - price) / bandWidth
		} else if price > bands.Upper {
			breakdown.BandExtremity = (price - bands.Upper) / bandWidth
		}

		breakdown.BandExtremity = clamp01(breakdown.BandExtremity)
	}

	// Trend context: displacement from the EMA, scaled so a 10% deviation
	// saturates the score.
	if emaValue != 0 {
		breakdown.TrendDeviation = math.Min(1.0, math.Abs((price-emaValue)/emaValue)*10)
	}

	// Volatility regime: band width as a fraction of the middle band,
	// scaled so a 5% width saturates the score.
	if bandWidth > 0 && bands.Middle > 0 {
		breakdown.VolatilityRegime = math.Min(1.0, bandWidth/bands.Middle*20)
	}

	totalScore := breakdown.RSIExtremity*rsiWeight +
		breakdown.BandExtremity*bandWeight +
		breakdown.TrendDeviation*trendWeight +
		breakdown.VolatilityRegime*volWeight
	totalWeight := rsiWeight + bandWeight + trendWeight + volWeight

	weighted := totalScore / totalWeight

	// Rescale into the professional band: 0.5 neutral, 0.95 very high.
	return 0.5 + weighted*0.45, breakdown
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}

	if v > 1 {
		return 1
	}

	return v
}
