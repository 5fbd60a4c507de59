package provider

import (
	"context"
	"errors"
	"net/http"
	"testing"

	binance "github.com/adshao/go-binance/v2"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-signal/internal/types"
	argoErrors "github.com/rxtech-lab/argo-signal/pkg/errors"
)

// mockBinanceAPIClient implements BinanceAPIClient for testing.
type mockBinanceAPIClient struct {
	klinesPerCall [][]*binance.Kline
	errorsPerCall []error
	callCount     int
	endTimes      []int64
	limits        []int
}

func (m *mockBinanceAPIClient) NewKlinesService() BinanceKlinesService {
	return &mockBinanceKlinesService{client: m}
}

type mockBinanceKlinesService struct {
	client   *mockBinanceAPIClient
	symbol   string
	interval string
	limit    int
	end      int64
}

func (m *mockBinanceKlinesService) Symbol(symbol string) BinanceKlinesService {
	m.symbol = symbol
	return m
}

func (m *mockBinanceKlinesService) Interval(interval string) BinanceKlinesService {
	m.interval = interval
	return m
}

func (m *mockBinanceKlinesService) Limit(limit int) BinanceKlinesService {
	m.limit = limit
	return m
}

func (m *mockBinanceKlinesService) EndTime(endTime int64) BinanceKlinesService {
	m.end = endTime
	return m
}

func (m *mockBinanceKlinesService) Do(_ context.Context) ([]*binance.Kline, error) {
	idx := m.client.callCount
	m.client.callCount++
	m.client.endTimes = append(m.client.endTimes, m.end)
	m.client.limits = append(m.client.limits, m.limit)

	var err error
	if idx < len(m.client.errorsPerCall) {
		err = m.client.errorsPerCall[idx]
	}

	if idx < len(m.client.klinesPerCall) {
		return m.client.klinesPerCall[idx], err
	}

	return nil, err
}

func kline(openTime int64, closePrice string) *binance.Kline {
	return &binance.Kline{
		OpenTime: openTime,
		Open:     "1",
		High:     "2",
		Low:      "0.5",
		Close:    closePrice,
		Volume:   "10",
	}
}

type BinanceClientTestSuite struct {
	suite.Suite
}

func TestBinanceClientSuite(t *testing.T) {
	suite.Run(t, new(BinanceClientTestSuite))
}

func (suite *BinanceClientTestSuite) TestNewBinanceClient() {
	client := NewBinanceClient("")
	suite.NotNil(client.apiClient)
	suite.Equal("binance", client.Name())
}

func (suite *BinanceClientTestSuite) TestFetchCandlesFromServer() {
	exchange, server := newMockExchange(hourlyCandles(30))
	defer server.Close()

	client := NewBinanceClient(server.URL)
	table, err := client.FetchCandles(context.Background(), "ETH", types.Timeframe1h, 10)
	suite.Require().NoError(err)

	suite.Equal("ETH", table.Symbol)
	suite.Require().Len(table.Candles, 10)
	suite.Equal(120.0, table.Candles[0].Close)
	suite.Equal(129.0, table.Candles[9].Close)
	suite.Equal(130.0, table.Candles[9].High)
	suite.NoError(table.Validate())
	suite.Equal([]string{"ETHUSDT@1h"}, exchange.requestKeys())
}

func (suite *BinanceClientTestSuite) TestFetchCandlesServerError() {
	exchange, server := newMockExchange(hourlyCandles(3))
	defer server.Close()
	exchange.status = http.StatusBadRequest

	_, err := NewBinanceClient(server.URL).FetchCandles(context.Background(), "NOPE", types.Timeframe1h, 3)
	suite.Require().Error(err)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeMarketDataFetchFailed))
}

func (suite *BinanceClientTestSuite) TestFetchCandlesPaginatesBackwards() {
	firstPage := make([]*binance.Kline, 0, binancePageLimit)
	for i := 0; i < binancePageLimit; i++ {
		firstPage = append(firstPage, kline(int64(10_000+i)*3_600_000, "3"))
	}

	mockAPI := &mockBinanceAPIClient{
		klinesPerCall: [][]*binance.Kline{
			firstPage,
			{kline(9_998*3_600_000, "1"), kline(9_999*3_600_000, "2")},
		},
	}

	table, err := NewBinanceClientWithAPI(mockAPI).FetchCandles(context.Background(), "BTC", types.Timeframe1h, binancePageLimit+5)
	suite.Require().NoError(err)

	suite.Equal(2, mockAPI.callCount)
	suite.Equal([]int{binancePageLimit, 5}, mockAPI.limits)
	suite.Equal(int64(0), mockAPI.endTimes[0])
	suite.Equal(int64(10_000*3_600_000-1), mockAPI.endTimes[1])
	suite.Len(table.Candles, binancePageLimit+2)
	suite.Equal(1.0, table.Candles[0].Close)
	suite.Equal(2.0, table.Candles[1].Close)
	suite.NoError(table.Validate())
}

func (suite *BinanceClientTestSuite) TestFetchCandlesAPIError() {
	mockAPI := &mockBinanceAPIClient{errorsPerCall: []error{errors.New("rate limited")}}

	_, err := NewBinanceClientWithAPI(mockAPI).FetchCandles(context.Background(), "BTC", types.Timeframe1h, 10)
	suite.Require().Error(err)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeMarketDataFetchFailed))
	suite.Contains(err.Error(), "rate limited")
}

func (suite *BinanceClientTestSuite) TestFetchCandlesInvalidNumber() {
	mockAPI := &mockBinanceAPIClient{
		klinesPerCall: [][]*binance.Kline{{kline(3_600_000, "not-a-number")}},
	}

	_, err := NewBinanceClientWithAPI(mockAPI).FetchCandles(context.Background(), "BTC", types.Timeframe1h, 10)
	suite.Require().Error(err)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeMarketDataParseFailed))
}

func (suite *BinanceClientTestSuite) TestFetchCandlesEmpty() {
	mockAPI := &mockBinanceAPIClient{}

	table, err := NewBinanceClientWithAPI(mockAPI).FetchCandles(context.Background(), "BTC", types.Timeframe1d, 10)
	suite.Require().NoError(err)
	suite.Empty(table.Candles)
	suite.Equal(1, mockAPI.callCount)
}
