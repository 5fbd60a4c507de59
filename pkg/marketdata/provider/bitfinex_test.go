package provider

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

type BitfinexClientTestSuite struct {
	suite.Suite
}

func TestBitfinexClientSuite(t *testing.T) {
	suite.Run(t, new(BitfinexClientTestSuite))
}

func (suite *BitfinexClientTestSuite) TestNewBitfinexClientDefaults() {
	client := NewBitfinexClient("")
	suite.Equal(DefaultBitfinexBaseURL, client.baseURL)
	suite.Equal(requestTimeout, client.httpClient.Timeout)
	suite.Equal("bitfinex", client.Name())
}

func (suite *BitfinexClientTestSuite) TestFetchCandlesAscending() {
	exchange, server := newMockExchange(hourlyCandles(50))
	defer server.Close()

	client := NewBitfinexClient(server.URL)
	table, err := client.FetchCandles(context.Background(), "BTC", types.Timeframe1h, 20)
	suite.Require().NoError(err)

	suite.Equal("BTC", table.Symbol)
	suite.Equal(types.Timeframe1h, table.Timeframe)
	suite.Require().Len(table.Candles, 20)
	suite.Equal(130.0, table.Candles[0].Close)
	suite.Equal(149.0, table.Candles[19].Close)
	suite.NoError(table.Validate())

	suite.Equal([]string{"trade:1h:tBTCUSD"}, exchange.requestKeys())
	suite.Equal(userAgent, exchange.userAgents[0])
}

func (suite *BitfinexClientTestSuite) TestFetchCandlesFieldOrder() {
	_, server := newMockExchange(hourlyCandles(1))
	defer server.Close()

	table, err := NewBitfinexClient(server.URL).FetchCandles(context.Background(), "ETH", types.Timeframe1h, 5)
	suite.Require().NoError(err)
	suite.Require().Len(table.Candles, 1)

	c := table.Candles[0]
	suite.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), c.Time)
	suite.Equal(99.5, c.Open)
	suite.Equal(101.0, c.High)
	suite.Equal(99.0, c.Low)
	suite.Equal(100.0, c.Close)
	suite.Equal(10.0, c.Volume)
}

func (suite *BitfinexClientTestSuite) TestFetchCandlesMapsDailyAndDoge() {
	exchange, server := newMockExchange(hourlyCandles(3))
	defer server.Close()

	_, err := NewBitfinexClient(server.URL).FetchCandles(context.Background(), "DOGE", types.Timeframe1d, 3)
	suite.Require().NoError(err)
	suite.Equal([]string{"trade:1D:tDOGE:USD"}, exchange.requestKeys())
}

func (suite *BitfinexClientTestSuite) TestFetchCandlesPaginates() {
	exchange, server := newMockExchange(hourlyCandles(bitfinexPageLimit + 500))
	defer server.Close()

	table, err := NewBitfinexClient(server.URL).FetchCandles(context.Background(), "BTC", types.Timeframe1h, bitfinexPageLimit+200)
	suite.Require().NoError(err)
	suite.Len(table.Candles, bitfinexPageLimit+200)
	suite.NoError(table.Validate())
	suite.Len(exchange.requestKeys(), 2)
}

func (suite *BitfinexClientTestSuite) TestFetchCandlesPaginatesPastSkippedRows() {
	candles := hourlyCandles(bitfinexPageLimit + 500)
	exchange, server := newMockExchange(candles)
	defer server.Close()

	// One malformed row in the newest page
	skipped := candles[len(candles)-10].Time
	exchange.truncated = map[int64]bool{skipped.UnixMilli(): true}

	table, err := NewBitfinexClient(server.URL).FetchCandles(context.Background(), "BTC", types.Timeframe1h, bitfinexPageLimit+200)
	suite.Require().NoError(err)
	suite.Len(table.Candles, bitfinexPageLimit+200)
	suite.NoError(table.Validate())
	suite.Len(exchange.requestKeys(), 2)

	for _, c := range table.Candles {
		suite.False(c.Time.Equal(skipped))
	}
}

func (suite *BitfinexClientTestSuite) TestFetchCandlesOversizedBody() {
	exchange, server := newMockExchange(nil)
	defer server.Close()
	exchange.rawBody = "[" + strings.Repeat("[1704067200000,1,2,3,0.5,10],", 64) + "[1704067200000,1,2,3,0.5,10]]"

	client := NewBitfinexClient(server.URL)
	suite.Equal(int64(maxResponseBytes), client.maxBodyBytes)
	client.maxBodyBytes = 256

	_, err := client.FetchCandles(context.Background(), "BTC", types.Timeframe1h, 5)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
	suite.Contains(err.Error(), "exceeds 256 bytes")
}

func (suite *BitfinexClientTestSuite) TestParseBitfinexPageCountsRawRows() {
	page, err := parseBitfinexCandles([]byte(`[[1704070800000,1,2,3,0.5,10],[1704067200000,1,2]]`))
	suite.Require().NoError(err)
	suite.Len(page.candles, 1)
	suite.Equal(2, page.rows)
	suite.Equal(int64(1704067200000), page.oldest)
}

func (suite *BitfinexClientTestSuite) TestFetchCandlesShortHistory() {
	_, server := newMockExchange(hourlyCandles(7))
	defer server.Close()

	table, err := NewBitfinexClient(server.URL).FetchCandles(context.Background(), "BTC", types.Timeframe1h, 200)
	suite.Require().NoError(err)
	suite.Len(table.Candles, 7)
}

func (suite *BitfinexClientTestSuite) TestFetchCandlesHTTPError() {
	exchange, server := newMockExchange(hourlyCandles(5))
	defer server.Close()
	exchange.status = http.StatusInternalServerError

	_, err := NewBitfinexClient(server.URL).FetchCandles(context.Background(), "BTC", types.Timeframe1h, 5)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
	suite.Contains(err.Error(), "HTTP 500")
}

func (suite *BitfinexClientTestSuite) TestFetchCandlesInvalidJSON() {
	exchange, server := newMockExchange(nil)
	defer server.Close()
	exchange.rawBody = `{"not":"a list"}`

	_, err := NewBitfinexClient(server.URL).FetchCandles(context.Background(), "BTC", types.Timeframe1h, 5)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataParseFailed))
}

func (suite *BitfinexClientTestSuite) TestFetchCandlesUnreachable() {
	_, server := newMockExchange(nil)
	server.Close()

	_, err := NewBitfinexClient(server.URL).FetchCandles(context.Background(), "BTC", types.Timeframe1h, 5)
	suite.Require().Error(err)
	suite.True(errors.IsUpstreamFailure(err))
}

func (suite *BitfinexClientTestSuite) TestFetchCandlesInvalidRequest() {
	client := NewBitfinexClient("http://127.0.0.1:0")

	_, err := client.FetchCandles(context.Background(), "", types.Timeframe1h, 5)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidSymbol))

	_, err = client.FetchCandles(context.Background(), "BTC", types.Timeframe("2h"), 5)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidTimeframe))

	_, err = client.FetchCandles(context.Background(), "BTC", types.Timeframe1h, 0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *BitfinexClientTestSuite) TestParseBitfinexCandles() {
	testCases := []struct {
		name     string
		body     string
		expected []float64
	}{
		{
			name:     "skips short rows",
			body:     `[[1704067200000,1,2,3,0.5,10],[1704070800000,1,2]]`,
			expected: []float64{2},
		},
		{
			name:     "skips rows with null fields",
			body:     `[[1704067200000,1,2,3,0.5,10],[1704070800000,1,null,3,0.5,10]]`,
			expected: []float64{2},
		},
		{
			name:     "keeps extra fields",
			body:     `[[1704067200000,1,4,5,0.5,10,99]]`,
			expected: []float64{4},
		},
		{
			name:     "empty list",
			body:     `[]`,
			expected: []float64{},
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			page, err := parseBitfinexCandles([]byte(tc.body))
			suite.Require().NoError(err)

			closes := make([]float64, 0, len(page.candles))
			for _, c := range page.candles {
				closes = append(closes, c.Close)
			}

			suite.Equal(tc.expected, closes)
		})
	}
}
