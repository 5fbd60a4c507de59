package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/rxtech-lab/argo-signal/internal/config"
	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/mocks"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

type BacktestCmdTestSuite struct {
	suite.Suite
	dir string
	log *logger.Logger
}

func TestBacktestCmdSuite(t *testing.T) {
	suite.Run(t, new(BacktestCmdTestSuite))
}

func (suite *BacktestCmdTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	suite.log = logger.NewNopLogger()
}

func (suite *BacktestCmdTestSuite) TestSyntheticProvider() {
	p := syntheticProvider{count: 300}

	table, err := p.FetchCandles(context.Background(), "BTC", types.Timeframe1d, 0)
	suite.Require().NoError(err)
	suite.Equal(300, table.Len())

	table, err = p.FetchCandles(context.Background(), "BTC", types.Timeframe1d, 100)
	suite.Require().NoError(err)
	suite.Equal(100, table.Len())
}

func (suite *BacktestCmdTestSuite) TestRunBacktestsWritesReportsAndMarks() {
	p, err := newPipeline(config.Default(), syntheticProvider{count: 400}, suite.log)
	suite.Require().NoError(err)

	reports, err := runBacktests(context.Background(), p, runOptions{
		Symbols:       []string{"BTC", "ETH"},
		Timeframe:     types.Timeframe1d,
		OutputDir:     suite.dir,
		ExportCandles: true,
	}, suite.log)
	suite.Require().NoError(err)
	suite.Require().Len(reports, 2)

	for _, report := range reports {
		dir := runDir(suite.dir, report.Symbol, types.Timeframe1d)
		suite.Equal(filepath.Join(dir, "marks.parquet"), report.MarksFilePath)
		suite.FileExists(report.MarksFilePath)
		suite.FileExists(report.TradesFilePath)
		suite.FileExists(filepath.Join(dir, "candles.parquet"))
	}

	content, err := os.ReadFile(filepath.Join(suite.dir, reportFileName))
	suite.Require().NoError(err)
	suite.Contains(string(content), "symbol: BTC")
	suite.Contains(string(content), "symbol: ETH")
}

func (suite *BacktestCmdTestSuite) TestRunBacktestsSkipsUnavailableSymbols() {
	ctrl := gomock.NewController(suite.T())
	source := mocks.NewMockProvider(ctrl)
	source.EXPECT().Name().Return("bitfinex").AnyTimes()
	source.EXPECT().FetchCandles(gomock.Any(), "BTC", types.Timeframe1d, gomock.Any()).
		Return(types.CandleTable{}, errors.New(errors.ErrCodeMarketDataFetchFailed, "upstream down"))

	p, err := newPipeline(config.Default(), source, suite.log)
	suite.Require().NoError(err)

	reports, err := runBacktests(context.Background(), p, runOptions{
		Symbols:   []string{"BTC"},
		Timeframe: types.Timeframe1d,
		OutputDir: suite.dir,
	}, suite.log)
	suite.Require().NoError(err)
	suite.Empty(reports)
	suite.FileExists(filepath.Join(suite.dir, reportFileName))
}

func (suite *BacktestCmdTestSuite) TestRunDir() {
	suite.Equal(filepath.Join("out", "X_BTCUSD_1h"), runDir("out", "X:BTCUSD", types.Timeframe1h))
}

func (suite *BacktestCmdTestSuite) TestPrintSummary() {
	var out bytes.Buffer

	printSummary(&out, []types.BacktestReport{{
		Symbol:           "BTC",
		Timeframe:        types.Timeframe1d,
		TradeResult:      types.TradeResult{NumberOfTrades: 4, WinRate: 0.5, TotalReturn: 0.1234},
		BuyAndHoldReturn: 0.2,
	}})

	suite.Contains(out.String(), "SYMBOL")
	suite.Contains(out.String(), "BTC")
	suite.Contains(out.String(), "50.0%")
	suite.Contains(out.String(), "12.34%")
}
