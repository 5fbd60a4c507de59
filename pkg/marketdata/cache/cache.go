// Package cache stores fetched candle tables for a short time so repeated
// refreshes inside the TTL do not hit the exchange again.
package cache

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/argo-signal/internal/types"
)

// DefaultTTL matches the refresh cadence of the dashboard.
const DefaultTTL = 60 * time.Second

// Store keeps candle tables by key until their TTL runs out.
type Store interface {
	// Get returns None on a miss or an expired entry.
	Get(ctx context.Context, key string) (optional.Option[types.CandleTable], error)
	Set(ctx context.Context, key string, table types.CandleTable, ttl time.Duration) error
}

// Key builds the cache key for one fetch request.
func Key(provider, symbol string, timeframe types.Timeframe, limit int) string {
	return strings.Join([]string{safe(provider), safe(symbol), safe(string(timeframe)), strconv.Itoa(limit)}, ":")
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")

	return s
}
