package signal

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// Generator produces the signal sequence for a whole table.
type Generator struct {
	evaluator *Evaluator
}

// NewGenerator creates a generator around evaluator.
func NewGenerator(evaluator *Evaluator) *Generator {
	return &Generator{evaluator: evaluator}
}

// Evaluator returns the wrapped evaluator.
func (g *Generator) Evaluator() *Evaluator {
	return g.evaluator
}

// Generate evaluates every index in order. The last emitted actionable
// signal is threaded from one index to the next.
func (g *Generator) Generate(table types.CandleTable, snapshots []types.IndicatorSnapshot) ([]types.Signal, error) {
	if len(snapshots) != table.Len() {
		return nil, errors.Newf(errors.ErrCodeSnapshotLengthMismatch,
			"got %d snapshots for %d candles of %s", len(snapshots), table.Len(), table.Symbol)
	}

	signals := make([]types.Signal, table.Len())
	last := optional.None[types.SignalType]()
	prev := optional.None[Bar]()

	for i, candle := range table.Candles {
		bar := Bar{Candle: candle, Snapshot: snapshots[i]}
		decision := g.evaluator.Evaluate(Input{Current: bar, Previous: prev, LastSignal: last})

		signals[i] = types.Signal{
			Index:  i,
			Time:   candle.Time,
			Type:   decision.Type,
			Rule:   decision.Rule,
			Reason: decision.Reason,
		}

		if decision.Type.IsActionable() {
			last = optional.Some(decision.Type)
		}

		prev = optional.Some(bar)
	}

	return signals, nil
}

// Latest returns the signal at the last index.
func Latest(signals []types.Signal) optional.Option[types.Signal] {
	if len(signals) == 0 {
		return optional.None[types.Signal]()
	}

	return optional.Some(signals[len(signals)-1])
}

// LastActionable returns the most recent BUY/SELL style signal.
func LastActionable(signals []types.Signal) optional.Option[types.Signal] {
	for i := len(signals) - 1; i >= 0; i-- {
		if signals[i].Type.IsActionable() {
			return optional.Some(signals[i])
		}
	}

	return optional.None[types.Signal]()
}
