package pipeline

import (
	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// DefaultMaxCandles caps the derived candle limit. It matches the largest
// page Bitfinex serves in one request.
const DefaultMaxCandles = 10000

// Config sizes the candle window of a refresh pass.
type Config struct {
	// HistoryYears is the history window used when a request has no limit.
	HistoryYears float64 `yaml:"history_years" json:"history_years" envconfig:"HISTORY_YEARS" validate:"gt=0" jsonschema:"title=History Years,description=Years of candles to load when no limit is given,default=3"`
	// MaxCandles caps the derived limit. Zero means no cap.
	MaxCandles int `yaml:"max_candles" json:"max_candles" envconfig:"MAX_CANDLES" validate:"gte=0" jsonschema:"title=Max Candles,description=Upper bound for the derived candle limit (0 disables),minimum=0,default=10000"`
}

// DefaultConfig loads three years of history capped at DefaultMaxCandles.
func DefaultConfig() Config {
	return Config{
		HistoryYears: types.DefaultHistoryYears,
		MaxCandles:   DefaultMaxCandles,
	}
}

// Validate checks the config with the struct tags.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid pipeline configuration", err)
	}

	return nil
}

// CandleLimit returns the number of candles fetched for timeframe when the
// request leaves the limit open.
func (c Config) CandleLimit(timeframe types.Timeframe) int {
	limit := types.CandlesForHistory(timeframe, c.HistoryYears)
	if c.MaxCandles > 0 && limit > c.MaxCandles {
		return c.MaxCandles
	}

	return limit
}
