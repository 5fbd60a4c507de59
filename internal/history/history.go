// Package history keeps the last emitted signal per symbol and timeframe
// between refresh passes. It is owned by the caller, never by the core.
package history

import (
	"context"
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-signal/internal/types"
)

// Entry is one recorded signal observation.
type Entry struct {
	Symbol     string           `json:"symbol" yaml:"symbol"`
	Timeframe  types.Timeframe  `json:"timeframe" yaml:"timeframe"`
	Signal     types.SignalType `json:"signal" yaml:"signal"`
	Rule       string           `json:"rule" yaml:"rule"`
	Reason     string           `json:"reason" yaml:"reason"`
	Price      float64          `json:"price" yaml:"price"`
	CandleTime time.Time        `json:"candle_time" yaml:"candle_time"`
	RecordedAt time.Time        `json:"recorded_at" yaml:"recorded_at"`
}

// Store maps symbol+timeframe to the history of recorded signals.
type Store interface {
	// Last returns the most recent entry, or None if the key was never recorded.
	Last(ctx context.Context, symbol string, timeframe types.Timeframe) (optional.Option[Entry], error)
	// Record appends an entry. RecordedAt is filled in when zero.
	Record(ctx context.Context, entry Entry) error
	// List returns up to limit entries, newest first. limit <= 0 returns all.
	List(ctx context.Context, symbol string, timeframe types.Timeframe, limit int) ([]Entry, error)
}
