package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-signal/internal/types"
)

// NoDataLabel is shown instead of a signal when a symbol has no data.
const NoDataLabel = "NO DATA"

// WatchlistRow is one symbol of the watchlist.
type WatchlistRow struct {
	Symbol    string           `json:"symbol"`
	Price     float64          `json:"price"`
	ChangePct float64          `json:"change_pct"`
	Signal    types.SignalType `json:"signal"`
	Reason    string           `json:"reason"`
	Available bool             `json:"available"`
}

// Label is the signal text, or NO DATA when the symbol is unavailable.
func (r WatchlistRow) Label() string {
	if !r.Available {
		return NoDataLabel
	}

	return string(r.Signal)
}

// Color is the badge color of the row.
func (r WatchlistRow) Color() string {
	if !r.Available {
		return types.NoDataColor
	}

	return r.Signal.Color()
}

// WatchlistRequest lists the symbols to refresh on one timeframe.
type WatchlistRequest struct {
	Symbols   []string
	Timeframe types.Timeframe
	Limit     int
	Notify    bool
}

// Watchlist runs one pass per symbol in order. A symbol whose pass fails is
// reported as unavailable and does not stop the others.
func (p *Pipeline) Watchlist(ctx context.Context, req WatchlistRequest) []WatchlistRow {
	rows := make([]WatchlistRow, 0, len(req.Symbols))

	for _, symbol := range req.Symbols {
		row := WatchlistRow{Symbol: symbol, Signal: types.SignalHold, Reason: NoDataReason}

		result, err := p.Run(ctx, Request{
			Symbol:    symbol,
			Timeframe: req.Timeframe,
			Limit:     req.Limit,
			Notify:    req.Notify,
		})
		if err != nil {
			p.logger.Warn("Watchlist pass failed", zap.String("symbol", symbol), zap.Error(err))
		}

		if err == nil && result.Available {
			row.Price = result.Price
			row.ChangePct = result.ChangePct
			row.Signal = result.Latest.Type
			row.Reason = result.Latest.Reason
			row.Available = true
		}

		rows = append(rows, row)
	}

	return rows
}
