package backtest

import (
	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// Config controls how a signal sequence is replayed.
type Config struct {
	// ExitAfterHolds closes a long position after this many consecutive HOLD
	// signals. Zero keeps positions open until a SELL.
	ExitAfterHolds int `yaml:"exit_after_holds" json:"exit_after_holds" validate:"gte=0" jsonschema:"title=Exit After Holds,description=Close a position after N consecutive HOLD signals (0 disables),minimum=0,default=0"`
	// Compounding multiplies trade returns instead of summing them.
	Compounding bool `yaml:"compounding" json:"compounding" jsonschema:"title=Compounding,description=Compound trade returns for the total return,default=true"`
	// Horizon is the look-ahead in candles for the fixed-horizon evaluation. Zero disables it.
	Horizon int `yaml:"horizon" json:"horizon" validate:"gte=0" jsonschema:"title=Horizon,description=Candles to look ahead when scoring each signal (0 disables),minimum=0,default=5"`
}

// DefaultConfig returns compounding returns, no hold exits and a 5 candle horizon.
func DefaultConfig() Config {
	return Config{
		ExitAfterHolds: 0,
		Compounding:    true,
		Horizon:        5,
	}
}

// Validate checks the config with the struct tags.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid backtest configuration", err)
	}

	return nil
}

// GenerateSchema generates a JSON schema for Config.
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
	}

	schema := reflector.Reflect(c)
	schema.Title = "backtest-config"
	schema.Description = "Configuration schema for the signal backtest"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}
