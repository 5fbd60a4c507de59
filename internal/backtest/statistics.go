package backtest

import (
	"math"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/shopspring/decimal"
)

// CalculateTradeResult aggregates closed trades. Returns are accumulated in
// decimal so a long run of small trades does not drift.
func CalculateTradeResult(trades []types.Trade, compounding bool) types.TradeResult {
	result := types.TradeResult{Compounding: compounding}
	if len(trades) == 0 {
		return result
	}

	one := decimal.NewFromInt(1)
	product := one
	sum := decimal.Zero
	best, worst := math.Inf(-1), math.Inf(1)

	for _, t := range trades {
		r := decimal.NewFromFloat(t.Return)
		product = product.Mul(one.Add(r))
		sum = sum.Add(r)

		if t.IsWin() {
			result.NumberOfWinningTrades++
		}

		best = math.Max(best, t.Return)
		worst = math.Min(worst, t.Return)
	}

	count := len(trades)
	result.NumberOfTrades = count
	result.NumberOfLosingTrades = count - result.NumberOfWinningTrades
	result.WinRate = float64(result.NumberOfWinningTrades) / float64(count)
	result.AverageReturn = sum.Div(decimal.NewFromInt(int64(count))).InexactFloat64()
	result.BestTrade = best
	result.WorstTrade = worst

	if compounding {
		result.TotalReturn = product.Sub(one).InexactFloat64()
	} else {
		result.TotalReturn = sum.InexactFloat64()
	}

	result.MaxDrawdown = MaxDrawdown(EquityCurve(trades, compounding))

	return result
}

// EquityCurve returns equity after each trade, starting from 1.0.
func EquityCurve(trades []types.Trade, compounding bool) []float64 {
	one := decimal.NewFromInt(1)
	equity := one
	curve := make([]float64, 0, len(trades)+1)
	curve = append(curve, 1)

	for _, t := range trades {
		r := decimal.NewFromFloat(t.Return)
		if compounding {
			equity = equity.Mul(one.Add(r))
		} else {
			equity = equity.Add(r)
		}

		curve = append(curve, equity.InexactFloat64())
	}

	return curve
}

// MaxDrawdown is the largest peak to trough decline as a fraction of the peak.
func MaxDrawdown(curve []float64) float64 {
	if len(curve) == 0 {
		return 0
	}

	peak := curve[0]
	maxDD := 0.0

	for _, v := range curve {
		if v > peak {
			peak = v
		}

		if peak > 0 {
			maxDD = math.Max(maxDD, (peak-v)/peak)
		}
	}

	return maxDD
}

// CalculateHoldingTime summarizes trade durations in candles.
func CalculateHoldingTime(trades []types.Trade) types.TradeHoldingTime {
	if len(trades) == 0 {
		return types.TradeHoldingTime{}
	}

	minHold, maxHold, total := math.MaxInt, 0, 0

	for _, t := range trades {
		h := t.HoldingCandles()
		minHold = min(minHold, h)
		maxHold = max(maxHold, h)
		total += h
	}

	return types.TradeHoldingTime{Min: minHold, Max: maxHold, Avg: total / len(trades)}
}
