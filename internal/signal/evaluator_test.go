package signal

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/stretchr/testify/suite"
)

type EvaluatorTestSuite struct {
	suite.Suite
	evaluator *Evaluator
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorTestSuite))
}

func (suite *EvaluatorTestSuite) SetupTest() {
	suite.evaluator = NewEvaluator(DefaultConfig())
}

var testTime = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func snapshot(values map[types.IndicatorName]float64) types.IndicatorSnapshot {
	snap := types.NewIndicatorSnapshot(1, testTime)
	for name, v := range values {
		snap.Values[name] = optional.Some(v)
	}

	return snap
}

func flatCandle(price float64) types.Candle {
	return types.Candle{Time: testTime, Open: price, High: price, Low: price, Close: price}
}

func bands(lower, middle, upper float64) map[types.IndicatorName]float64 {
	return map[types.IndicatorName]float64{
		types.IndicatorBBLower:  lower,
		types.IndicatorBBMiddle: middle,
		types.IndicatorBBUpper:  upper,
	}
}

func with(base map[types.IndicatorName]float64, extra map[types.IndicatorName]float64) map[types.IndicatorName]float64 {
	out := make(map[types.IndicatorName]float64, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}

	for k, v := range extra {
		out[k] = v
	}

	return out
}

func input(candle types.Candle, current map[types.IndicatorName]float64, prevCandle types.Candle, previous map[types.IndicatorName]float64) Input {
	return Input{
		Current:    Bar{Candle: candle, Snapshot: snapshot(current)},
		Previous:   optional.Some(Bar{Candle: prevCandle, Snapshot: snapshot(previous)}),
		LastSignal: optional.None[types.SignalType](),
	}
}

func (suite *EvaluatorTestSuite) TestInsufficientHistory() {
	in := Input{
		Current: Bar{Candle: flatCandle(100), Snapshot: snapshot(with(bands(95, 100, 105), map[types.IndicatorName]float64{
			types.IndicatorEMA20: 100,
		}))},
	}

	d := suite.evaluator.Evaluate(in)
	suite.Equal(types.SignalHold, d.Type)
	suite.Equal(ReasonInsufficientHistory, d.Reason)
	suite.Equal(RuleInsufficientHistory, d.Rule)
}

func (suite *EvaluatorTestSuite) TestTrendFilter() {
	cur := with(bands(90, 100, 110), map[types.IndicatorName]float64{
		types.IndicatorRSI14: 30, types.IndicatorEMA20: 100, types.IndicatorSMA200: 120,
	})
	prev := with(cur, map[types.IndicatorName]float64{types.IndicatorRSI14: 25})

	d := suite.evaluator.Evaluate(input(flatCandle(89), cur, flatCandle(92), prev))
	suite.Equal(types.SignalHold, d.Type)
	suite.Equal(RuleTrendFilter, d.Rule)

	cfg := DefaultConfig()
	cfg.TrendFilter = false
	d = NewEvaluator(cfg).Evaluate(input(flatCandle(89), cur, flatCandle(92), prev))
	suite.Equal(types.SignalStrongBuy, d.Type)
}

func (suite *EvaluatorTestSuite) TestBlowOffTop() {
	candle := types.Candle{Time: testTime, Open: 100, High: 120, Low: 95, Close: 104}
	cur := with(bands(90, 96, 103), map[types.IndicatorName]float64{types.IndicatorRSI14: 75, types.IndicatorEMA20: 98})
	prev := with(cur, map[types.IndicatorName]float64{types.IndicatorRSI14: 78})

	d := suite.evaluator.Evaluate(input(candle, cur, flatCandle(106), prev))
	suite.Equal(types.SignalStrongSell, d.Type)
	suite.Equal(RuleBlowOffTop, d.Rule)
	suite.Contains(d.Reason, "blow-off top")
}

func (suite *EvaluatorTestSuite) TestDeepDip() {
	cur := with(bands(91, 100, 109), map[types.IndicatorName]float64{types.IndicatorRSI14: 30, types.IndicatorEMA20: 100})
	prev := with(cur, map[types.IndicatorName]float64{types.IndicatorRSI14: 28})

	d := suite.evaluator.Evaluate(input(flatCandle(90), cur, flatCandle(92), prev))
	suite.Equal(types.SignalStrongBuy, d.Type)
	suite.Equal(RuleDeepDip, d.Rule)

	// RSI still falling: no deep dip, and 30 is outside the pullback RSI range.
	prev[types.IndicatorRSI14] = 33
	d = suite.evaluator.Evaluate(input(flatCandle(90), cur, flatCandle(92), prev))
	suite.Equal(types.SignalHold, d.Type)
}

func (suite *EvaluatorTestSuite) TestQuietMarketDeepDip() {
	cur := with(bands(99, 100, 101), map[types.IndicatorName]float64{types.IndicatorRSI14: 32, types.IndicatorEMA20: 100})
	prev := with(cur, map[types.IndicatorName]float64{types.IndicatorRSI14: 31})

	// At the band in a quiet market is still a deep dip
	d := suite.evaluator.Evaluate(input(flatCandle(98.9), cur, flatCandle(99.5), prev))
	suite.Equal(types.SignalStrongBuy, d.Type)
	suite.Equal(RuleDeepDip, d.Rule)
	suite.NotContains(d.Reason, "quiet market")

	d = suite.evaluator.Evaluate(input(flatCandle(98), cur, flatCandle(99.5), prev))
	suite.Equal(types.SignalStrongBuy, d.Type)
	suite.Equal(RuleDeepDip, d.Rule)
	suite.Contains(d.Reason, "deeper dip in quiet market")
}

func (suite *EvaluatorTestSuite) TestOverheat() {
	cur := with(bands(100, 112, 125), map[types.IndicatorName]float64{
		types.IndicatorRSI14: 82, types.IndicatorEMA20: 118, types.IndicatorEMA50: 110,
	})
	prev := with(cur, map[types.IndicatorName]float64{types.IndicatorRSI14: 85})

	d := suite.evaluator.Evaluate(input(flatCandle(130), cur, flatCandle(128), prev))
	suite.Equal(types.SignalStrongSell, d.Type)
	suite.Equal(RuleOverheat, d.Rule)
}

func (suite *EvaluatorTestSuite) TestPullbackBelowEMA50() {
	cur := with(bands(90, 100, 110), map[types.IndicatorName]float64{
		types.IndicatorRSI14: 40, types.IndicatorEMA20: 99, types.IndicatorEMA50: 100,
	})
	prev := with(cur, map[types.IndicatorName]float64{types.IndicatorRSI14: 38})

	d := suite.evaluator.Evaluate(input(flatCandle(95.5), cur, flatCandle(95), prev))
	suite.Equal(types.SignalBuy, d.Type)
	suite.Equal(RulePullback, d.Rule)
	suite.Contains(d.Reason, "EMA50")
}

func (suite *EvaluatorTestSuite) TestGoldenCross() {
	cur := with(bands(95, 100, 105), map[types.IndicatorName]float64{
		types.IndicatorRSI14: 50, types.IndicatorEMA20: 101, types.IndicatorEMA50: 100.5,
	})
	prev := with(bands(95, 100, 105), map[types.IndicatorName]float64{
		types.IndicatorRSI14: 49, types.IndicatorEMA20: 99, types.IndicatorEMA50: 100,
	})

	d := suite.evaluator.Evaluate(input(flatCandle(102), cur, flatCandle(101), prev))
	suite.Equal(types.SignalBuy, d.Type)
	suite.Equal(RuleGoldenCross, d.Rule)
}

func (suite *EvaluatorTestSuite) TestOverextension() {
	cur := with(bands(100, 105, 110), map[types.IndicatorName]float64{
		types.IndicatorRSI14: 75, types.IndicatorEMA20: 106, types.IndicatorEMA50: 105,
	})
	prev := with(cur, map[types.IndicatorName]float64{types.IndicatorRSI14: 78})

	d := suite.evaluator.Evaluate(input(flatCandle(112), cur, flatCandle(113), prev))
	suite.Equal(types.SignalSell, d.Type)
	suite.Equal(RuleOverextension, d.Rule)
}

func (suite *EvaluatorTestSuite) TestDeathCross() {
	cur := with(bands(95, 100, 105), map[types.IndicatorName]float64{
		types.IndicatorRSI14: 45, types.IndicatorEMA20: 99, types.IndicatorEMA50: 100,
	})
	prev := with(bands(95, 100, 105), map[types.IndicatorName]float64{
		types.IndicatorRSI14: 50, types.IndicatorEMA20: 101, types.IndicatorEMA50: 100,
	})

	d := suite.evaluator.Evaluate(input(flatCandle(99), cur, flatCandle(100), prev))
	suite.Equal(types.SignalSell, d.Type)
	suite.Equal(RuleDeathCross, d.Rule)
}

func (suite *EvaluatorTestSuite) TestNoConditionMet() {
	cur := with(bands(95, 100, 105), map[types.IndicatorName]float64{types.IndicatorRSI14: 50, types.IndicatorEMA20: 100})

	d := suite.evaluator.Evaluate(input(flatCandle(100), cur, flatCandle(100), cur))
	suite.Equal(types.SignalHold, d.Type)
	suite.Equal(ReasonNoConditionMet, d.Reason)
}

func (suite *EvaluatorTestSuite) TestRepeatSuppressed() {
	cur := with(bands(91, 100, 109), map[types.IndicatorName]float64{types.IndicatorRSI14: 30, types.IndicatorEMA20: 100})
	prev := with(cur, map[types.IndicatorName]float64{types.IndicatorRSI14: 28})

	in := input(flatCandle(90), cur, flatCandle(92), prev)
	in.LastSignal = optional.Some(types.SignalStrongBuy)

	d := suite.evaluator.Evaluate(in)
	suite.Equal(types.SignalHold, d.Type)
	suite.Equal(RulePersists, d.Rule)
	suite.Contains(d.Reason, "STRONG BUY persists")

	in.LastSignal = optional.Some(types.SignalSell)
	suite.Equal(types.SignalStrongBuy, suite.evaluator.Evaluate(in).Type)
}

func (suite *EvaluatorTestSuite) TestDeterministic() {
	cur := with(bands(91, 100, 109), map[types.IndicatorName]float64{types.IndicatorRSI14: 30, types.IndicatorEMA20: 100})
	prev := with(cur, map[types.IndicatorName]float64{types.IndicatorRSI14: 28})
	in := input(flatCandle(90), cur, flatCandle(92), prev)

	first := suite.evaluator.Evaluate(in)
	for i := 0; i < 10; i++ {
		suite.Equal(first, suite.evaluator.Evaluate(in))
	}
}

func (suite *EvaluatorTestSuite) TestRuleNames() {
	names := suite.evaluator.RuleNames()
	suite.Equal(RuleBlowOffTop, names[0])
	suite.Equal(RuleNoCondition, names[len(names)-1])
}
