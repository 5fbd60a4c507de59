package marketdata

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-signal/internal/logger"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata/cache"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata/provider"
)

// ProviderConfig holds the configuration for the candle source and its cache.
type ProviderConfig struct {
	Provider       provider.ProviderType `yaml:"provider" json:"provider" envconfig:"PROVIDER" validate:"required,oneof=bitfinex binance polygon" jsonschema:"title=Provider,description=Candle source,enum=bitfinex,enum=binance,enum=polygon,default=bitfinex"`
	BaseURL        string                `yaml:"base_url" json:"base_url,omitempty" envconfig:"BASE_URL" validate:"omitempty,url" jsonschema:"title=Base URL,description=Override the exchange REST endpoint"`
	PolygonAPIKey  string                `yaml:"polygon_api_key" json:"polygon_api_key,omitempty" envconfig:"POLYGON_API_KEY" validate:"required_if=Provider polygon" jsonschema:"title=Polygon API Key,description=Required when provider is polygon"`
	CacheTTL       time.Duration         `yaml:"cache_ttl" json:"cache_ttl" envconfig:"CACHE_TTL" validate:"gte=0" jsonschema:"title=Cache TTL,description=How long fetched candles are reused (nanoseconds in JSON)"`
	DisableCache   bool                  `yaml:"disable_cache" json:"disable_cache" envconfig:"DISABLE_CACHE" jsonschema:"title=Disable Cache"`
	RedisAddr      string                `yaml:"redis_addr" json:"redis_addr,omitempty" envconfig:"REDIS_ADDR" validate:"omitempty,hostname_port" jsonschema:"title=Redis Address,description=host:port of a Redis server; empty keeps the cache in memory"`
	RedisPassword  string                `yaml:"redis_password" json:"redis_password,omitempty" envconfig:"REDIS_PASSWORD" jsonschema:"title=Redis Password"`
	RedisDB        int                   `yaml:"redis_db" json:"redis_db" envconfig:"REDIS_DB" validate:"gte=0" jsonschema:"title=Redis DB"`
	RedisNamespace string                `yaml:"redis_namespace" json:"redis_namespace,omitempty" envconfig:"REDIS_NAMESPACE" jsonschema:"title=Redis Namespace"`
}

// DefaultProviderConfig returns the public Bitfinex source with a 60s memory cache.
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		Provider: provider.ProviderBitfinex,
		CacheTTL: cache.DefaultTTL,
	}
}

// Validate checks the config with the struct tags.
func (c ProviderConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid market data configuration", err)
	}

	return nil
}

// NewProvider builds the configured provider wrapped in a CachingProvider
// unless caching is disabled.
func NewProvider(config ProviderConfig, log *logger.Logger) (provider.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	inner, err := provider.NewMarketDataProvider(config.Provider, provider.Options{
		BaseURL: config.BaseURL,
		APIKey:  config.PolygonAPIKey,
	})
	if err != nil {
		return nil, err
	}

	if config.DisableCache {
		return inner, nil
	}

	var store cache.Store = cache.NewMemoryStore()

	if config.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
		store = cache.NewRedisStore(rdb, config.RedisNamespace)
	}

	return NewCachingProvider(inner, store, config.CacheTTL, log), nil
}

// CachingProvider decorates a Provider with a TTL cache. Only successful,
// non-empty fetches are stored, and cache errors fall back to the provider.
type CachingProvider struct {
	inner provider.Provider
	store cache.Store
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachingProvider wraps inner. If ttl is 0, cache.DefaultTTL is used.
func NewCachingProvider(inner provider.Provider, store cache.Store, ttl time.Duration, log *logger.Logger) *CachingProvider {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &CachingProvider{
		inner: inner,
		store: store,
		ttl:   ttl,
		log:   log,
	}
}

func (p *CachingProvider) Name() string {
	return p.inner.Name()
}

func (p *CachingProvider) FetchCandles(ctx context.Context, symbol string, timeframe types.Timeframe, limit int) (types.CandleTable, error) {
	key := cache.Key(p.inner.Name(), symbol, timeframe, limit)

	cached, err := p.store.Get(ctx, key)
	if err != nil {
		p.log.Warn("candle cache read failed", zap.String("key", key), zap.Error(err))
	} else if cached.IsSome() {
		p.log.Debug("candle cache hit", zap.String("key", key))

		return cached.Unwrap(), nil
	}

	table, err := p.inner.FetchCandles(ctx, symbol, timeframe, limit)
	if err != nil {
		return types.CandleTable{}, err
	}

	if table.Len() == 0 {
		return table, nil
	}

	if err := p.store.Set(ctx, key, table, p.ttl); err != nil {
		p.log.Warn("candle cache write failed", zap.String("key", key), zap.Error(err))
	}

	return table, nil
}
