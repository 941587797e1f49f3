package provider

import (
	"github.com/rxtech-lab/quant-backtest/pkg/errors"
	"github.com/rxtech-lab/quant-backtest/pkg/marketdata"
)

type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

// NewSource creates a market data source for the given provider type.
// The config parameter carries provider-specific configuration: the API key
// string for polygon, ignored for binance public market data.
func NewSource(providerType ProviderType, config any) (marketdata.Source, error) {
	switch providerType {
	case ProviderPolygon:
		apiKey, ok := config.(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon provider requires an API key string config")
		}

		return NewPolygonSource(apiKey)
	case ProviderBinance:
		return NewBinanceSource()
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}
