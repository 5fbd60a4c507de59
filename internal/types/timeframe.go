package types

import (
	"time"

	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// Timeframe is the candle interval used throughout the app.
type Timeframe string

const (
	Timeframe1m  Timeframe = "1m"
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	Timeframe1d  Timeframe = "1d"
)

// DefaultHistoryYears is how much history CandlesForHistory targets by default.
const DefaultHistoryYears = 3.0

// AllTimeframes lists the supported timeframes from shortest to longest.
func AllTimeframes() []Timeframe {
	return []Timeframe{Timeframe1m, Timeframe5m, Timeframe15m, Timeframe1h, Timeframe4h, Timeframe1d}
}

// ParseTimeframe converts a string into a Timeframe.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if !tf.IsValid() {
		return "", errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe: %q", s)
	}

	return tf, nil
}

// IsValid reports whether the timeframe is supported.
func (t Timeframe) IsValid() bool {
	for _, tf := range AllTimeframes() {
		if tf == t {
			return true
		}
	}

	return false
}

// Duration is the length of one candle.
func (t Timeframe) Duration() time.Duration {
	switch t {
	case Timeframe1m:
		return time.Minute
	case Timeframe5m:
		return 5 * time.Minute
	case Timeframe15m:
		return 15 * time.Minute
	case Timeframe1h:
		return time.Hour
	case Timeframe4h:
		return 4 * time.Hour
	case Timeframe1d:
		return 24 * time.Hour
	default:
		return 0
	}
}

// CandlesPerDay returns how many candles of this timeframe fit into one day.
// Unknown timeframes count as hourly.
func (t Timeframe) CandlesPerDay() int {
	d := t.Duration()
	if d == 0 {
		return 24
	}

	return int((24 * time.Hour) / d)
}

// CandlesForHistory approximates how many candles cover the given number of years.
func CandlesForHistory(t Timeframe, years float64) int {
	if years <= 0 {
		years = DefaultHistoryYears
	}

	return int(float64(t.CandlesPerDay()) * 365 * years)
}

func (t Timeframe) String() string {
	return string(t)
}
