package marketdata

import (
	"sort"

	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-signal/pkg/utils"
)

// ProviderInfo contains metadata about a market data provider.
type ProviderInfo struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	RequiresAuth bool   `json:"requiresAuth"`
	Default      bool   `json:"default"`
}

// providerRegistry holds metadata about all supported providers.
var providerRegistry = map[provider.ProviderType]ProviderInfo{
	provider.ProviderBitfinex: {
		Name:         string(provider.ProviderBitfinex),
		DisplayName:  "Bitfinex",
		Description:  "Public crypto candles from the Bitfinex REST API, no key required",
		RequiresAuth: false,
		Default:      true,
	},
	provider.ProviderBinance: {
		Name:         string(provider.ProviderBinance),
		DisplayName:  "Binance",
		Description:  "Cryptocurrency exchange with extensive market data for crypto trading pairs",
		RequiresAuth: false,
	},
	provider.ProviderPolygon: {
		Name:         string(provider.ProviderPolygon),
		DisplayName:  "Polygon.io",
		Description:  "Aggregates for crypto tickers such as X:BTCUSD, requires an API key",
		RequiresAuth: true,
	},
}

// GetSupportedProviders returns all supported provider names in sorted order.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	sort.Strings(providers)

	return providers
}

// GetProviderInfo returns metadata for a specific provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[provider.ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", providerName)
	}

	return info, nil
}

// ListProviderInfo returns metadata for every provider, sorted by name.
func ListProviderInfo() []ProviderInfo {
	names := GetSupportedProviders()
	infos := make([]ProviderInfo, 0, len(names))

	for _, name := range names {
		infos = append(infos, providerRegistry[provider.ProviderType(name)])
	}

	return infos
}

// GetProviderConfigSchema returns the JSON schema of ProviderConfig.
func GetProviderConfigSchema() (string, error) {
	//nolint:exhaustruct // Empty struct is intentional for schema generation
	schema, err := utils.GetSchemaFromConfig(&ProviderConfig{})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to marshal provider schema", err)
	}

	return schema, nil
}
