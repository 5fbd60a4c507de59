package signal

// Config holds the thresholds of the rule chain.
type Config struct {
	// Band width relative to the middle band below which the market counts as quiet.
	LowVolatility float64 `yaml:"low_volatility" json:"low_volatility" validate:"gt=0" jsonschema:"title=Low Volatility,description=(BB_UPPER-BB_LOWER)/BB_MIDDLE below this is a quiet market,default=0.06"`
	// Band width above which the lower band check gets extra slack.
	HighVolatility float64 `yaml:"high_volatility" json:"high_volatility" validate:"gtfield=LowVolatility" jsonschema:"title=High Volatility,default=0.12"`
	// Minimum upper wick as a share of the candle range for a blow-off top.
	WickRatio float64 `yaml:"wick_ratio" json:"wick_ratio" validate:"gt=0,lt=1" jsonschema:"title=Wick Ratio,default=0.45"`
	BlowOffRSI float64 `yaml:"blow_off_rsi" json:"blow_off_rsi" validate:"gte=0,lte=100" jsonschema:"title=Blow-off RSI,default=73"`
	DeepDipRSI float64 `yaml:"deep_dip_rsi" json:"deep_dip_rsi" validate:"gte=0,lte=100" jsonschema:"title=Deep Dip RSI,default=35"`
	// In quiet markets a deep dip must close this far under the lower band.
	LowVolDipFactor float64 `yaml:"low_vol_dip_factor" json:"low_vol_dip_factor" validate:"gt=0,lte=1" jsonschema:"title=Low Volatility Dip Factor,default=0.995"`
	OverheatRSI     float64 `yaml:"overheat_rsi" json:"overheat_rsi" validate:"gte=0,lte=100" jsonschema:"title=Overheat RSI,default=80"`
	// Close above EMA50 times this counts as stretched.
	EMA50Stretch    float64 `yaml:"ema50_stretch" json:"ema50_stretch" validate:"gte=1" jsonschema:"title=EMA50 Stretch,default=1.12"`
	PullbackRSILow  float64 `yaml:"pullback_rsi_low" json:"pullback_rsi_low" validate:"gte=0,lte=100" jsonschema:"title=Pullback RSI Low,default=30"`
	PullbackRSIHigh float64 `yaml:"pullback_rsi_high" json:"pullback_rsi_high" validate:"gtfield=PullbackRSILow,lte=100" jsonschema:"title=Pullback RSI High,default=48"`
	// Lower band multiplier used for pullbacks in volatile markets.
	HighVolBandSlack float64 `yaml:"high_vol_band_slack" json:"high_vol_band_slack" validate:"gte=1" jsonschema:"title=High Volatility Band Slack,default=1.01"`
	// Close below EMA50 times this counts as a discount.
	EMA50Discount   float64 `yaml:"ema50_discount" json:"ema50_discount" validate:"gt=0,lte=1" jsonschema:"title=EMA50 Discount,default=0.96"`
	MomentumRSI     float64 `yaml:"momentum_rsi" json:"momentum_rsi" validate:"gte=0,lte=100" jsonschema:"title=Momentum RSI,default=55"`
	OverextendedRSI float64 `yaml:"overextended_rsi" json:"overextended_rsi" validate:"gte=0,lte=100" jsonschema:"title=Overextended RSI,default=72"`
	// Hold everything while close is under SMA200.
	TrendFilter bool `yaml:"trend_filter" json:"trend_filter" jsonschema:"title=Trend Filter,default=true"`
	// Turn a repeat of the last actionable signal into HOLD.
	SuppressRepeats bool `yaml:"suppress_repeats" json:"suppress_repeats" jsonschema:"title=Suppress Repeats,default=true"`
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		LowVolatility:    0.06,
		HighVolatility:   0.12,
		WickRatio:        0.45,
		BlowOffRSI:       73,
		DeepDipRSI:       35,
		LowVolDipFactor:  0.995,
		OverheatRSI:      80,
		EMA50Stretch:     1.12,
		PullbackRSILow:   30,
		PullbackRSIHigh:  48,
		HighVolBandSlack: 1.01,
		EMA50Discount:    0.96,
		MomentumRSI:      55,
		OverextendedRSI:  72,
		TrendFilter:      true,
		SuppressRepeats:  true,
	}
}
