package provider

import (
	"github.com/polygon-io/client-go/rest/models"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// bitfinexTimeframe converts a timeframe into Bitfinex candle key notation.
func bitfinexTimeframe(tf types.Timeframe) (string, error) {
	switch tf {
	case types.Timeframe1m, types.Timeframe5m, types.Timeframe15m, types.Timeframe1h, types.Timeframe4h:
		return string(tf), nil
	case types.Timeframe1d:
		return "1D", nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe for bitfinex: %s", tf)
	}
}

// binanceInterval converts a timeframe into a Binance kline interval.
func binanceInterval(tf types.Timeframe) (string, error) {
	if !tf.IsValid() {
		return "", errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe for binance: %s", tf)
	}

	// Binance uses the same notation for every supported timeframe.
	return string(tf), nil
}

// polygonTimespan converts a timeframe into Polygon's multiplier and timespan pair.
func polygonTimespan(tf types.Timeframe) (int, models.Timespan, error) {
	switch tf {
	case types.Timeframe1m:
		return 1, models.Minute, nil
	case types.Timeframe5m:
		return 5, models.Minute, nil
	case types.Timeframe15m:
		return 15, models.Minute, nil
	case types.Timeframe1h:
		return 1, models.Hour, nil
	case types.Timeframe4h:
		return 4, models.Hour, nil
	case types.Timeframe1d:
		return 1, models.Day, nil
	default:
		return 0, "", errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe for polygon: %s", tf)
	}
}
