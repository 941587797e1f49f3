package provider

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/quant-backtest/internal/types"
	"github.com/rxtech-lab/quant-backtest/pkg/errors"
	"github.com/rxtech-lab/quant-backtest/pkg/marketdata"
)

// binanceKlineLimit is the maximum number of klines Binance returns per
// request.
const binanceKlineLimit = 1000

// BinanceSource serves historical klines and book-ticker quotes from the
// public Binance API. No credentials are needed for market data.
type BinanceSource struct {
	client *binance.Client
}

// NewBinanceSource creates a Binance-backed market data source.
func NewBinanceSource() (marketdata.Source, error) {
	return &BinanceSource{
		client: binance.NewClient("", ""),
	}, nil
}

// GetHistoricalBars implements marketdata.Source. Requests are paginated
// backwards from now until limit bars are collected or no more data exists.
func (s *BinanceSource) GetHistoricalBars(ctx context.Context, symbol string, timeframe string, limit int) ([]types.Bar, error) {
	if limit <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "limit must be a positive integer, got %d", limit)
	}

	interval, err := binanceInterval(timeframe)
	if err != nil {
		return nil, err
	}

	bars := make([]types.Bar, 0, limit)
	endTimeMillis := time.Now().UnixMilli()

	for len(bars) < limit {
		batch := min(limit-len(bars), binanceKlineLimit)

		klines, err := s.client.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			EndTime(endTimeMillis).
			Limit(batch).
			Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines for %s", symbol)
		}

		if len(klines) == 0 {
			break
		}

		page := make([]types.Bar, 0, len(klines))
		for _, k := range klines {
			page = append(page, klineToBar(k))
		}

		// Pages arrive newest-last; prepend so the final slice stays ascending.
		bars = append(page, bars...)
		endTimeMillis = klines[0].OpenTime - 1
	}

	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}

	return bars, nil
}

// GetLatestQuote implements marketdata.Source using the book ticker
// endpoint (best bid/ask).
func (s *BinanceSource) GetLatestQuote(ctx context.Context, symbol string) (optional.Option[types.Quote], error) {
	tickers, err := s.client.NewListBookTickersService().Symbol(symbol).Do(ctx)
	if err != nil {
		return optional.None[types.Quote](), errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch book ticker for %s", symbol)
	}

	if len(tickers) == 0 {
		return optional.None[types.Quote](), nil
	}

	ticker := tickers[0]
	bidPrice, _ := strconv.ParseFloat(ticker.BidPrice, 64)
	askPrice, _ := strconv.ParseFloat(ticker.AskPrice, 64)
	bidSize, _ := strconv.ParseFloat(ticker.BidQuantity, 64)
	askSize, _ := strconv.ParseFloat(ticker.AskQuantity, 64)

	if bidPrice == 0 && askPrice == 0 {
		return optional.None[types.Quote](), nil
	}

	return optional.Some(types.Quote{
		Symbol:   symbol,
		Time:     time.Now(),
		BidPrice: bidPrice,
		AskPrice: askPrice,
		BidSize:  bidSize,
		AskSize:  askSize,
	}), nil
}

func klineToBar(k *binance.Kline) types.Bar {
	open, _ := strconv.ParseFloat(k.Open, 64)
	high, _ := strconv.ParseFloat(k.High, 64)
	low, _ := strconv.ParseFloat(k.Low, 64)
	closePrice, _ := strconv.ParseFloat(k.Close, 64)
	volume, _ := strconv.ParseFloat(k.Volume, 64)

	return types.Bar{
		Time:   time.UnixMilli(k.OpenTime),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}
}
