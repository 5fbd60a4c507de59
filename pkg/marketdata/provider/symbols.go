package provider

import (
	"strings"

	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// supportedSymbols keeps the display order of the watchlist.
var supportedSymbols = []string{"BTC", "ETH", "XRP", "SOL", "DOGE"}

var symbolTable = map[string]map[ProviderType]string{
	"BTC":  {ProviderBitfinex: "tBTCUSD", ProviderBinance: "BTCUSDT", ProviderPolygon: "X:BTCUSD"},
	"ETH":  {ProviderBitfinex: "tETHUSD", ProviderBinance: "ETHUSDT", ProviderPolygon: "X:ETHUSD"},
	"XRP":  {ProviderBitfinex: "tXRPUSD", ProviderBinance: "XRPUSDT", ProviderPolygon: "X:XRPUSD"},
	"SOL":  {ProviderBitfinex: "tSOLUSD", ProviderBinance: "SOLUSDT", ProviderPolygon: "X:SOLUSD"},
	"DOGE": {ProviderBitfinex: "tDOGE:USD", ProviderBinance: "DOGEUSDT", ProviderPolygon: "X:DOGEUSD"},
}

// SupportedSymbols returns the built-in symbol labels.
func SupportedSymbols() []string {
	out := make([]string, len(supportedSymbols))
	copy(out, supportedSymbols)

	return out
}

// ResolveSymbol maps a label such as "BTC" to the provider's own notation.
// Labels outside the built-in table are passed through unchanged so exchange
// symbols can be used directly.
func ResolveSymbol(providerType ProviderType, label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", errors.New(errors.ErrCodeInvalidSymbol, "symbol is required")
	}

	if bySource, ok := symbolTable[strings.ToUpper(label)]; ok {
		if symbol, ok := bySource[providerType]; ok {
			return symbol, nil
		}
	}

	return label, nil
}
