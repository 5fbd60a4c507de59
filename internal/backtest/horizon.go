package backtest

import (
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/shopspring/decimal"
)

// EvaluateHorizon scores every actionable signal by the price move over the
// next horizon candles. A buy is correct when price rose, a sell when it fell.
// Signals too close to the end of the table are skipped.
func EvaluateHorizon(table types.CandleTable, signals []types.Signal, horizon int) (types.HorizonReport, error) {
	if horizon <= 0 {
		return types.HorizonReport{}, errors.Newf(errors.ErrCodeBacktestConfigError, "horizon must be positive, got %d", horizon)
	}

	if len(signals) != table.Len() {
		return types.HorizonReport{}, errors.Newf(errors.ErrCodeSignalSequenceMismatch,
			"got %d signals for %d candles of %s", len(signals), table.Len(), table.Symbol)
	}

	report := types.HorizonReport{
		Horizon:  horizon,
		Outcomes: make([]types.HorizonOutcome, 0),
		BySignal: make(map[types.SignalType]types.HorizonSummary),
	}

	for i, sig := range signals {
		if err := sig.Type.Validate(); err != nil {
			return types.HorizonReport{}, err
		}

		if !sig.Type.IsActionable() || i+horizon >= table.Len() {
			continue
		}

		price := table.Candles[i].Close
		exit := table.Candles[i+horizon].Close
		ret := (exit - price) / price * 100

		report.Outcomes = append(report.Outcomes, types.HorizonOutcome{
			Index:     i,
			Time:      table.Candles[i].Time,
			Signal:    sig.Type,
			Price:     price,
			ExitPrice: exit,
			ReturnPct: ret,
			Correct:   float64(sig.Type.Direction())*ret > 0,
		})
	}

	report.Overall = summarize(report.Outcomes)

	grouped := make(map[types.SignalType][]types.HorizonOutcome)
	for _, o := range report.Outcomes {
		grouped[o.Signal] = append(grouped[o.Signal], o)
	}

	for sig, outcomes := range grouped {
		report.BySignal[sig] = summarize(outcomes)
	}

	return report, nil
}

func summarize(outcomes []types.HorizonOutcome) types.HorizonSummary {
	if len(outcomes) == 0 {
		return types.HorizonSummary{}
	}

	sum := decimal.Zero
	hits := 0

	for _, o := range outcomes {
		sum = sum.Add(decimal.NewFromFloat(o.ReturnPct))
		if o.Correct {
			hits++
		}
	}

	n := len(outcomes)

	return types.HorizonSummary{
		Trades:       n,
		AvgReturnPct: sum.Div(decimal.NewFromInt(int64(n))).InexactFloat64(),
		HitRate:      float64(hits) / float64(n),
	}
}
