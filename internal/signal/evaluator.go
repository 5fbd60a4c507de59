// Package signal maps indicator snapshots to discrete trading signals.
package signal

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
)

const (
	ReasonInsufficientHistory = "insufficient history"
	ReasonNoConditionMet      = "no condition met"
)

// Rule names reported on each decision.
const (
	RuleInsufficientHistory = "insufficient_history"
	RuleTrendFilter         = "trend_filter"
	RuleBlowOffTop          = "blow_off_top"
	RuleDeepDip             = "deep_dip"
	RuleOverheat            = "overheat"
	RulePullback            = "pullback"
	RuleGoldenCross         = "golden_cross"
	RuleMomentum            = "momentum"
	RuleOverextension       = "overextension"
	RuleDeathCross          = "death_cross"
	RuleNoCondition         = "no_condition"
	RulePersists            = "persists"
)

// RequiredIndicators must all be defined before any rule is tried.
var RequiredIndicators = []types.IndicatorName{
	types.IndicatorBBUpper,
	types.IndicatorBBMiddle,
	types.IndicatorBBLower,
	types.IndicatorRSI14,
	types.IndicatorEMA20,
}

// Bar is one candle together with its indicator snapshot.
type Bar struct {
	Candle   types.Candle
	Snapshot types.IndicatorSnapshot
}

// Input is everything the evaluator looks at for one index.
type Input struct {
	Current  Bar
	Previous optional.Option[Bar]
	// LastSignal is the last actionable signal emitted before this index.
	LastSignal optional.Option[types.SignalType]
}

// Decision is the evaluator's output for one index.
type Decision struct {
	Type   types.SignalType
	Rule   string
	Reason string
}

// Evaluator runs the ordered rule chain. It holds no state between calls.
type Evaluator struct {
	config Config
	rules  []rule
}

// NewEvaluator creates an evaluator with the given thresholds.
func NewEvaluator(config Config) *Evaluator {
	return &Evaluator{
		config: config,
		rules:  defaultRules(),
	}
}

// Config returns the thresholds in use.
func (e *Evaluator) Config() Config {
	return e.config
}

// RuleNames lists the rule chain in evaluation order.
func (e *Evaluator) RuleNames() []string {
	names := make([]string, 0, len(e.rules)+1)
	for _, r := range e.rules {
		names = append(names, r.name)
	}

	return append(names, RuleNoCondition)
}

// Evaluate returns exactly one decision for the input. The first matching
// rule wins.
func (e *Evaluator) Evaluate(in Input) Decision {
	if !in.Current.Snapshot.Defined(RequiredIndicators...) {
		return Decision{Type: types.SignalHold, Rule: RuleInsufficientHistory, Reason: ReasonInsufficientHistory}
	}

	v := newView(in)

	if e.config.TrendFilter && v.sma200.IsSome() && v.close < v.sma200.Unwrap() {
		return Decision{
			Type:   types.SignalHold,
			Rule:   RuleTrendFilter,
			Reason: fmt.Sprintf("close %.2f below SMA200 %.2f, long-only", v.close, v.sma200.Unwrap()),
		}
	}

	for _, r := range e.rules {
		ok, reason := r.match(e.config, v)
		if !ok {
			continue
		}

		decision := Decision{Type: r.signal, Rule: r.name, Reason: reason}

		if e.config.SuppressRepeats && in.LastSignal.IsSome() && in.LastSignal.Unwrap() == decision.Type {
			return Decision{
				Type:   types.SignalHold,
				Rule:   RulePersists,
				Reason: fmt.Sprintf("%s persists (%s)", decision.Type, reason),
			}
		}

		return decision
	}

	return Decision{Type: types.SignalHold, Rule: RuleNoCondition, Reason: ReasonNoConditionMet}
}
