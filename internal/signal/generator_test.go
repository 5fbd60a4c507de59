package signal

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-signal/internal/indicator"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type GeneratorTestSuite struct {
	suite.Suite
	engine *indicator.Engine
}

func TestGeneratorSuite(t *testing.T) {
	suite.Run(t, new(GeneratorTestSuite))
}

func (suite *GeneratorTestSuite) SetupTest() {
	engine, err := indicator.NewDefaultEngine()
	suite.Require().NoError(err)
	suite.engine = engine
}

func tableOf(closes []float64) types.CandleTable {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]types.Candle, len(closes))

	for i, c := range closes {
		candles[i] = types.Candle{Time: start.Add(time.Duration(i) * 24 * time.Hour), Open: c, High: c, Low: c, Close: c}
	}

	return types.CandleTable{Symbol: "tBTCUSD", Timeframe: types.Timeframe1d, Candles: candles}
}

func (suite *GeneratorTestSuite) generate(cfg Config, closes []float64) []types.Signal {
	table := tableOf(closes)
	snapshots, err := suite.engine.Compute(table)
	suite.Require().NoError(err)

	signals, err := NewGenerator(NewEvaluator(cfg)).Generate(table, snapshots)
	suite.Require().NoError(err)
	suite.Require().Len(signals, len(closes))

	return signals
}

func (suite *GeneratorTestSuite) TestRisingSeries() {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	signals := suite.generate(DefaultConfig(), closes)

	for i := 0; i < 19; i++ {
		suite.Equal(types.SignalHold, signals[i].Type)
		suite.Equal(ReasonInsufficientHistory, signals[i].Reason, "index %d", i)
	}

	suite.Equal(types.SignalBuy, signals[20].Type)
	suite.Equal(RuleMomentum, signals[20].Rule)

	for i := 21; i < 25; i++ {
		suite.Equal(types.SignalHold, signals[i].Type)
		suite.Equal(RulePersists, signals[i].Rule)
	}

	// A steady climb yields a BUY somewhere and never a sell of any strength
	seen := make([]types.SignalType, 0, len(signals))
	for _, s := range signals {
		seen = append(seen, s.Type)
	}

	suite.Contains(seen, types.SignalBuy)
	suite.NotContains(seen, types.SignalSell)
	suite.NotContains(seen, types.SignalStrongSell)

	last := LastActionable(signals)
	suite.True(last.IsSome())
	suite.Equal(types.SignalBuy, last.Unwrap().Type)

	cfg := DefaultConfig()
	cfg.SuppressRepeats = false
	unsuppressed := suite.generate(cfg, closes)
	suite.Equal(types.SignalBuy, Latest(unsuppressed).Unwrap().Type)
}

func (suite *GeneratorTestSuite) TestFlatSeries() {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100
	}

	for i, s := range suite.generate(DefaultConfig(), closes) {
		suite.Equal(types.SignalHold, s.Type, "index %d", i)
		suite.Equal(i, s.Index)
	}
}

func (suite *GeneratorTestSuite) TestLengthMismatch() {
	table := tableOf([]float64{1, 2, 3})

	_, err := NewGenerator(NewEvaluator(DefaultConfig())).Generate(table, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeSnapshotLengthMismatch))
}

func (suite *GeneratorTestSuite) TestLatestEmpty() {
	suite.True(Latest(nil).IsNone())
	suite.True(LastActionable(nil).IsNone())
}
