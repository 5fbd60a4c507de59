package provider

import (
	"context"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderBitfinex ProviderType = "bitfinex"
	ProviderBinance  ProviderType = "binance"
	ProviderPolygon  ProviderType = "polygon"
)

// Provider fetches the most recent candles for a symbol.
type Provider interface {
	// Name returns the provider type name. It is part of cache keys.
	Name() string
	// FetchCandles returns up to limit of the most recent candles for the given
	// symbol label (e.g. "BTC"), oldest first. The returned table carries the label
	// as its symbol, not the exchange notation.
	// example:
	// FetchCandles(ctx, "BTC", types.Timeframe1h, 200)
	FetchCandles(ctx context.Context, symbol string, timeframe types.Timeframe, limit int) (types.CandleTable, error)
}

// Options holds the settings shared by the provider constructors.
type Options struct {
	// BaseURL overrides the exchange endpoint. Empty keeps the public default.
	BaseURL string
	// APIKey is required by polygon.
	APIKey string
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
func NewMarketDataProvider(providerType ProviderType, opts Options) (Provider, error) {
	switch providerType {
	case ProviderBitfinex:
		return NewBitfinexClient(opts.BaseURL), nil
	case ProviderBinance:
		return NewBinanceClient(opts.BaseURL), nil
	case ProviderPolygon:
		client, err := NewPolygonClient(opts.APIKey)
		if err != nil {
			return nil, err
		}

		return client, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

func checkRequest(symbol string, timeframe types.Timeframe, limit int) error {
	if symbol == "" {
		return errors.New(errors.ErrCodeInvalidSymbol, "symbol is required")
	}

	if !timeframe.IsValid() {
		return errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe: %q", timeframe)
	}

	if limit <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "limit must be positive, got %d", limit)
	}

	return nil
}

// trimToLimit keeps the newest limit candles of an ascending slice.
func trimToLimit(candles []types.Candle, limit int) []types.Candle {
	if len(candles) > limit {
		return candles[len(candles)-limit:]
	}

	return candles
}
