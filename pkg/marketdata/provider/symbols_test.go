package provider

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

type SymbolsTestSuite struct {
	suite.Suite
}

func TestSymbolsSuite(t *testing.T) {
	suite.Run(t, new(SymbolsTestSuite))
}

func (suite *SymbolsTestSuite) TestResolveSymbol() {
	testCases := []struct {
		provider ProviderType
		label    string
		expected string
	}{
		{ProviderBitfinex, "BTC", "tBTCUSD"},
		{ProviderBitfinex, "doge", "tDOGE:USD"},
		{ProviderBinance, "ETH", "ETHUSDT"},
		{ProviderPolygon, "XRP", "X:XRPUSD"},
		{ProviderBitfinex, "tLTCUSD", "tLTCUSD"},
	}

	for _, tc := range testCases {
		symbol, err := ResolveSymbol(tc.provider, tc.label)
		suite.NoError(err)
		suite.Equal(tc.expected, symbol)
	}

	_, err := ResolveSymbol(ProviderBitfinex, "  ")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidSymbol))
}

func (suite *SymbolsTestSuite) TestSupportedSymbols() {
	symbols := SupportedSymbols()
	suite.Equal([]string{"BTC", "ETH", "XRP", "SOL", "DOGE"}, symbols)

	symbols[0] = "changed"
	suite.Equal("BTC", SupportedSymbols()[0])
}

func (suite *SymbolsTestSuite) TestNewMarketDataProvider() {
	p, err := NewMarketDataProvider(ProviderBitfinex, Options{})
	suite.NoError(err)
	suite.Equal("bitfinex", p.Name())

	p, err = NewMarketDataProvider(ProviderBinance, Options{})
	suite.NoError(err)
	suite.Equal("binance", p.Name())

	p, err = NewMarketDataProvider(ProviderPolygon, Options{APIKey: "key"})
	suite.NoError(err)
	suite.Equal("polygon", p.Name())

	_, err = NewMarketDataProvider(ProviderPolygon, Options{})
	suite.Error(err)

	_, err = NewMarketDataProvider("kraken", Options{})
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))
}
