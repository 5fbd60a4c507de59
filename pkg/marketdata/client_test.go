package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/mocks"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata/cache"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata/provider"
)

// ClientTestSuite covers ProviderConfig and the caching decorator.
type ClientTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockProvider *mocks.MockProvider
	now          time.Time
	store        *cache.MemoryStore
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

// SetupTest runs before each test
func (suite *ClientTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockProvider = mocks.NewMockProvider(suite.ctrl)
	suite.mockProvider.EXPECT().Name().Return("bitfinex").AnyTimes()
	suite.now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.store = cache.NewMemoryStoreWithClock(func() time.Time { return suite.now })
}

// TearDownTest runs after each test
func (suite *ClientTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *ClientTestSuite) table() types.CandleTable {
	return mocks.GenerateSeries("BTC", types.Timeframe1h, 30)
}

func (suite *ClientTestSuite) TestProviderConfigValidation() {
	testCases := []struct {
		name        string
		config      ProviderConfig
		expectError bool
	}{
		{
			name:        "default config",
			config:      DefaultProviderConfig(),
			expectError: false,
		},
		{
			name:        "missing provider",
			config:      ProviderConfig{},
			expectError: true,
		},
		{
			name:        "unknown provider",
			config:      ProviderConfig{Provider: "kraken"},
			expectError: true,
		},
		{
			name:        "polygon without key",
			config:      ProviderConfig{Provider: provider.ProviderPolygon},
			expectError: true,
		},
		{
			name:        "polygon with key",
			config:      ProviderConfig{Provider: provider.ProviderPolygon, PolygonAPIKey: "key"},
			expectError: false,
		},
		{
			name:        "invalid base url",
			config:      ProviderConfig{Provider: provider.ProviderBitfinex, BaseURL: "not a url"},
			expectError: true,
		},
		{
			name:        "invalid redis address",
			config:      ProviderConfig{Provider: provider.ProviderBitfinex, RedisAddr: "localhost"},
			expectError: true,
		},
		{
			name:        "redis address",
			config:      ProviderConfig{Provider: provider.ProviderBitfinex, RedisAddr: "localhost:6379"},
			expectError: false,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			err := tc.config.Validate()
			if tc.expectError {
				suite.Error(err)
				suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
			} else {
				suite.NoError(err)
			}
		})
	}
}

func (suite *ClientTestSuite) TestNewProvider() {
	p, err := NewProvider(DefaultProviderConfig(), nil)
	suite.Require().NoError(err)
	suite.Equal("bitfinex", p.Name())
	suite.IsType(&CachingProvider{}, p)

	config := DefaultProviderConfig()
	config.DisableCache = true
	p, err = NewProvider(config, nil)
	suite.Require().NoError(err)
	suite.IsType(&provider.BitfinexClient{}, p)

	config = DefaultProviderConfig()
	config.Provider = provider.ProviderBinance
	config.RedisAddr = "localhost:6379"
	p, err = NewProvider(config, nil)
	suite.Require().NoError(err)
	suite.Equal("binance", p.Name())

	_, err = NewProvider(ProviderConfig{Provider: provider.ProviderPolygon}, nil)
	suite.Error(err)
}

func (suite *ClientTestSuite) TestCacheHitWithinTTL() {
	table := suite.table()
	suite.mockProvider.EXPECT().
		FetchCandles(gomock.Any(), "BTC", types.Timeframe1h, 200).
		Return(table, nil).
		Times(1)

	caching := NewCachingProvider(suite.mockProvider, suite.store, time.Minute, nil)

	first, err := caching.FetchCandles(context.Background(), "BTC", types.Timeframe1h, 200)
	suite.Require().NoError(err)

	suite.now = suite.now.Add(30 * time.Second)
	second, err := caching.FetchCandles(context.Background(), "BTC", types.Timeframe1h, 200)
	suite.Require().NoError(err)

	suite.Equal(first.Closes(), second.Closes())
}

func (suite *ClientTestSuite) TestRefetchAfterTTL() {
	suite.mockProvider.EXPECT().
		FetchCandles(gomock.Any(), "BTC", types.Timeframe1h, 200).
		Return(suite.table(), nil).
		Times(2)

	caching := NewCachingProvider(suite.mockProvider, suite.store, time.Minute, nil)

	_, err := caching.FetchCandles(context.Background(), "BTC", types.Timeframe1h, 200)
	suite.Require().NoError(err)

	suite.now = suite.now.Add(time.Minute)
	_, err = caching.FetchCandles(context.Background(), "BTC", types.Timeframe1h, 200)
	suite.Require().NoError(err)
}

func (suite *ClientTestSuite) TestDifferentLimitIsDifferentKey() {
	suite.mockProvider.EXPECT().FetchCandles(gomock.Any(), "BTC", types.Timeframe1h, 200).Return(suite.table(), nil).Times(1)
	suite.mockProvider.EXPECT().FetchCandles(gomock.Any(), "BTC", types.Timeframe1h, 300).Return(suite.table(), nil).Times(1)

	caching := NewCachingProvider(suite.mockProvider, suite.store, time.Minute, nil)

	_, err := caching.FetchCandles(context.Background(), "BTC", types.Timeframe1h, 200)
	suite.NoError(err)
	_, err = caching.FetchCandles(context.Background(), "BTC", types.Timeframe1h, 300)
	suite.NoError(err)
}

func (suite *ClientTestSuite) TestFailuresAreNotCached() {
	gomock.InOrder(
		suite.mockProvider.EXPECT().
			FetchCandles(gomock.Any(), "ETH", types.Timeframe1d, 50).
			Return(types.CandleTable{}, errors.New(errors.ErrCodeMarketDataFetchFailed, "timeout")),
		suite.mockProvider.EXPECT().
			FetchCandles(gomock.Any(), "ETH", types.Timeframe1d, 50).
			Return(suite.table(), nil),
	)

	caching := NewCachingProvider(suite.mockProvider, suite.store, time.Minute, nil)

	_, err := caching.FetchCandles(context.Background(), "ETH", types.Timeframe1d, 50)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
	suite.Equal(0, suite.store.Len())

	table, err := caching.FetchCandles(context.Background(), "ETH", types.Timeframe1d, 50)
	suite.Require().NoError(err)
	suite.Equal(30, table.Len())
	suite.Equal(1, suite.store.Len())
}

func (suite *ClientTestSuite) TestEmptyTablesAreNotCached() {
	suite.mockProvider.EXPECT().
		FetchCandles(gomock.Any(), "XRP", types.Timeframe1h, 10).
		Return(types.CandleTable{Symbol: "XRP", Timeframe: types.Timeframe1h}, nil).
		Times(2)

	caching := NewCachingProvider(suite.mockProvider, suite.store, time.Minute, nil)

	for i := 0; i < 2; i++ {
		table, err := caching.FetchCandles(context.Background(), "XRP", types.Timeframe1h, 10)
		suite.NoError(err)
		suite.Equal(0, table.Len())
	}
}

func (suite *ClientTestSuite) TestDefaultTTL() {
	caching := NewCachingProvider(suite.mockProvider, suite.store, 0, nil)
	suite.Equal(cache.DefaultTTL, caching.ttl)
	suite.Equal("bitfinex", caching.Name())
}
