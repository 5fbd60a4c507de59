// Package backtest replays a signal sequence against prices.
package backtest

import (
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"go.uber.org/zap"
)

// Simulator is a long-only FLAT/LONG state machine.
type Simulator struct {
	config Config
	logger *logger.Logger
	now    func() time.Time
}

// NewSimulator creates a simulator. The config must be valid.
func NewSimulator(config Config, log *logger.Logger) (*Simulator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Simulator{config: config, logger: log, now: time.Now}, nil
}

// Config returns the simulator configuration.
func (s *Simulator) Config() Config {
	return s.config
}

type position struct {
	side  types.PositionSide
	entry types.Trade
	holds int
}

// Run replays signals over table. signals must be parallel to the candles and
// every value must belong to the signal enumeration, otherwise the run is rejected.
func (s *Simulator) Run(table types.CandleTable, signals []types.Signal) (types.BacktestReport, error) {
	if err := table.Validate(); err != nil {
		return types.BacktestReport{}, err
	}

	if len(signals) != table.Len() {
		return types.BacktestReport{}, errors.Newf(errors.ErrCodeSignalSequenceMismatch,
			"got %d signals for %d candles of %s", len(signals), table.Len(), table.Symbol)
	}

	for i, sig := range signals {
		if err := sig.Type.Validate(); err != nil {
			return types.BacktestReport{}, errors.Wrapf(errors.ErrCodeInvalidSignalValue, err, "signal at index %d rejected", i)
		}
	}

	pos := position{side: types.PositionSideFlat}
	trades := make([]types.Trade, 0)

	for i, sig := range signals {
		candle := table.Candles[i]

		switch pos.side {
		case types.PositionSideFlat:
			if sig.Type.IsBuy() {
				pos = position{
					side: types.PositionSideLong,
					entry: types.Trade{
						EntryIndex:  i,
						EntryTime:   candle.Time,
						EntryPrice:  candle.Close,
						EntrySignal: sig.Type,
						Side:        types.PositionSideLong,
					},
				}
			}
		case types.PositionSideLong:
			switch {
			case sig.Type.IsSell():
				trades = append(trades, closeTrade(pos.entry, i, candle, sig.Type, types.ExitReasonSignal))
				pos = position{side: types.PositionSideFlat}
			case sig.Type == types.SignalHold:
				pos.holds++
				if s.config.ExitAfterHolds > 0 && pos.holds >= s.config.ExitAfterHolds {
					trades = append(trades, closeTrade(pos.entry, i, candle, sig.Type, types.ExitReasonHoldTimeout))
					pos = position{side: types.PositionSideFlat}
				}
			default:
				// A buy while long resets the hold counter but never adds a position.
				pos.holds = 0
			}
		}
	}

	report := types.BacktestReport{
		ID:        uuid.New().String(),
		Timestamp: s.now(),
		Symbol:    table.Symbol,
		Timeframe: table.Timeframe,
		Trades:    trades,
	}

	if pos.side == types.PositionSideLong {
		last := table.Len() - 1
		open := closeTrade(pos.entry, last, table.Candles[last], types.SignalHold, types.ExitReasonOpen)
		open.Open = true
		report.OpenPosition = &open
	}

	report.TradeResult = CalculateTradeResult(trades, s.config.Compounding)
	report.HoldingTime = CalculateHoldingTime(trades)
	report.BuyAndHoldReturn = buyAndHold(table)

	if s.config.Horizon > 0 {
		horizon, err := EvaluateHorizon(table, signals, s.config.Horizon)
		if err != nil {
			return types.BacktestReport{}, err
		}

		report.Horizon = &horizon
	}

	s.logger.Debug("Backtest finished",
		zap.String("symbol", table.Symbol),
		zap.String("timeframe", table.Timeframe.String()),
		zap.Int("trades", report.TradeResult.NumberOfTrades),
		zap.Bool("open_position", report.OpenPosition != nil),
		zap.Float64("total_return", report.TradeResult.TotalReturn),
	)

	return report, nil
}

func closeTrade(entry types.Trade, index int, candle types.Candle, signal types.SignalType, reason types.ExitReason) types.Trade {
	t := entry
	t.ExitIndex = index
	t.ExitTime = candle.Time
	t.ExitPrice = candle.Close
	t.ExitSignal = signal
	t.ExitReason = reason
	t.Return = (candle.Close - entry.EntryPrice) / entry.EntryPrice

	return t
}

func buyAndHold(table types.CandleTable) float64 {
	if table.Len() < 2 {
		return 0
	}

	first := table.Candles[0].Close

	return (table.Candles[table.Len()-1].Close - first) / first
}
