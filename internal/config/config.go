// Package config loads the application settings from a yaml file, a .env
// file and ARGO_SIGNAL_* environment variables, in that order of precedence
// from lowest to highest.
package config

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-signal/internal/backtest"
	"github.com/rxtech-lab/argo-signal/internal/notification"
	"github.com/rxtech-lab/argo-signal/internal/pipeline"
	"github.com/rxtech-lab/argo-signal/internal/signal"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/internal/version"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata"
	"github.com/rxtech-lab/argo-signal/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-signal/pkg/utils"
)

// EnvPrefix prefixes every environment override, e.g. ARGO_SIGNAL_SERVER_ADDR.
const EnvPrefix = "ARGO_SIGNAL"

// Config is the complete application configuration.
type Config struct {
	// Version is the release the file was written for. Files for a newer
	// minor or another major release are rejected.
	Version      string                    `yaml:"version,omitempty" json:"version,omitempty" envconfig:"CONFIG_VERSION" jsonschema:"title=Config Version,description=argo-signal release this file targets"`
	LogLevel     string                    `yaml:"log_level" json:"log_level" envconfig:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn error" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error,default=info"`
	Server       ServerConfig              `yaml:"server" json:"server" envconfig:"SERVER"`
	MarketData   marketdata.ProviderConfig `yaml:"market_data" json:"market_data" envconfig:"MARKETDATA"`
	Pipeline     pipeline.Config           `yaml:"pipeline" json:"pipeline" envconfig:"PIPELINE"`
	Signal       signal.Config             `yaml:"signal" json:"signal" envconfig:"SIGNAL"`
	Backtest     backtest.Config           `yaml:"backtest" json:"backtest" envconfig:"BACKTEST"`
	History      HistoryConfig             `yaml:"history" json:"history" envconfig:"HISTORY"`
	Notification NotificationConfig        `yaml:"notification" json:"notification" envconfig:"NOTIFY"`
	Watchlist    WatchlistConfig           `yaml:"watchlist" json:"watchlist" envconfig:"WATCHLIST"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr" envconfig:"ADDR" validate:"required,hostname_port" jsonschema:"title=Listen Address,default=:8080"`
	// ReadTimeout bounds reading a request. Analysis requests are served after
	// the candle fetch, so the write timeout is longer.
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gte=0"`
}

// HistoryDriver selects the last-signal store.
type HistoryDriver string

const (
	HistoryDriverMemory HistoryDriver = "memory"
	HistoryDriverSQLite HistoryDriver = "sqlite"
)

// HistoryConfig configures the last-signal store.
type HistoryConfig struct {
	Driver HistoryDriver `yaml:"driver" json:"driver" envconfig:"DRIVER" validate:"required,oneof=memory sqlite" jsonschema:"title=Driver,enum=memory,enum=sqlite,default=memory"`
	Path   string        `yaml:"path" json:"path,omitempty" envconfig:"PATH" validate:"required_if=Driver sqlite" jsonschema:"title=SQLite Path,description=Database file used by the sqlite driver"`
}

// WebhookConfig configures the webhook notifier. An empty URL disables it.
type WebhookConfig struct {
	URL     string            `yaml:"url" json:"url,omitempty" envconfig:"URL" validate:"omitempty,url" jsonschema:"title=Webhook URL"`
	Headers map[string]string `yaml:"headers" json:"headers,omitempty" envconfig:"HEADERS" jsonschema:"title=Headers"`
}

// TelegramConfig configures the Telegram notifier. An empty token disables it.
type TelegramConfig struct {
	APIURL   string `yaml:"api_url" json:"api_url,omitempty" envconfig:"API_URL" validate:"omitempty,url" jsonschema:"title=Bot API URL"`
	BotToken string `yaml:"bot_token" json:"bot_token,omitempty" envconfig:"BOT_TOKEN" jsonschema:"title=Bot Token"`
	ChatID   string `yaml:"chat_id" json:"chat_id,omitempty" envconfig:"CHAT_ID" validate:"required_with=BotToken" jsonschema:"title=Chat ID"`
}

// NotificationConfig lists the notifiers that receive signal changes.
type NotificationConfig struct {
	// Log writes every change to the application log.
	Log      bool                      `yaml:"log" json:"log" envconfig:"LOG" jsonschema:"title=Log Changes,default=true"`
	Webhook  WebhookConfig             `yaml:"webhook" json:"webhook" envconfig:"WEBHOOK"`
	Telegram TelegramConfig            `yaml:"telegram" json:"telegram" envconfig:"TELEGRAM"`
	Email    *notification.EmailConfig `yaml:"email,omitempty" json:"email,omitempty" envconfig:"EMAIL" validate:"omitempty"`
}

// WatchlistConfig lists the symbols shown side by side.
type WatchlistConfig struct {
	Symbols   []string        `yaml:"symbols" json:"symbols" envconfig:"SYMBOLS" validate:"required,min=1,dive,required" jsonschema:"title=Symbols"`
	Timeframe types.Timeframe `yaml:"timeframe" json:"timeframe" envconfig:"TIMEFRAME" validate:"required,oneof=1m 5m 15m 1h 4h 1d" jsonschema:"title=Timeframe,enum=1m,enum=5m,enum=15m,enum=1h,enum=4h,enum=1d,default=1d"`
	// RefreshInterval is how often the watchlist refreshes. It should not be
	// shorter than the market data cache TTL.
	RefreshInterval time.Duration `yaml:"refresh_interval" json:"refresh_interval" envconfig:"REFRESH_INTERVAL" validate:"gte=0"`
}

// Default returns the stock configuration: public Bitfinex data, a memory
// history and log notifications.
func Default() Config {
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MarketData: marketdata.DefaultProviderConfig(),
		Pipeline:   pipeline.DefaultConfig(),
		Signal:     signal.DefaultConfig(),
		Backtest:   backtest.DefaultConfig(),
		History: HistoryConfig{
			Driver: HistoryDriverMemory,
		},
		Notification: NotificationConfig{
			Log: true,
		},
		Watchlist: WatchlistConfig{
			Symbols:         provider.SupportedSymbols(),
			Timeframe:       types.Timeframe1d,
			RefreshInterval: time.Minute,
		},
	}
}

// Load builds the configuration from the defaults, the yaml file at path (if
// not empty), the given .env files and the environment. Missing .env files
// are ignored. With no env files, ./.env is tried.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeConfigLoadFailed, err, "failed to open config file %s", path)
		}
		defer file.Close()

		if err := decodeYAML(file, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := loadEnvFiles(envFiles...); err != nil {
		return Config{}, err
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeConfigLoadFailed, "failed to read environment overrides", err)
	}

	// envconfig allocates nested pointers even when nothing is set
	if cfg.Notification.Email != nil && cfg.Notification.Email.Host == "" {
		cfg.Notification.Email = nil
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Parse decodes yaml on top of the defaults and validates the result. The
// environment is not consulted.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := decodeYAML(bytes.NewReader(data), &cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrap(errors.ErrCodeConfigLoadFailed, "failed to parse config file", err)
	}

	return nil
}

func loadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return errors.Wrapf(errors.ErrCodeConfigLoadFailed, err, "failed to load env file %s", file)
		}
	}

	return nil
}

// Validate checks every section with the struct tags and the config version
// against the running binary.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if err := version.CheckConfigCompatibility(version.GetVersion(), c.Version); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "incompatible config version", err)
	}

	return nil
}

// GenerateSchema generates a JSON schema for Config.
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	schema := utils.NewSchemaReflector().Reflect(c)
	schema.Title = "argo-signal-config"
	schema.Description = "Configuration schema for argo-signal"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}
