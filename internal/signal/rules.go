package signal

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
)

type rule struct {
	name   string
	signal types.SignalType
	match  func(cfg Config, v view) (bool, string)
}

// view flattens the input into the values the rules read. Required
// indicators are plain floats; everything else stays optional.
type view struct {
	candle    types.Candle
	close     float64
	prevClose optional.Option[float64]

	bbUpper, bbMiddle, bbLower float64
	rsi                        float64
	ema20                      float64

	prevRSI   optional.Option[float64]
	prevEMA20 optional.Option[float64]
	ema50     optional.Option[float64]
	prevEMA50 optional.Option[float64]
	sma200    optional.Option[float64]
}

func newView(in Input) view {
	snap := in.Current.Snapshot
	v := view{
		candle:    in.Current.Candle,
		close:     in.Current.Candle.Close,
		prevClose: optional.None[float64](),
		bbUpper:   snap.Float(types.IndicatorBBUpper),
		bbMiddle:  snap.Float(types.IndicatorBBMiddle),
		bbLower:   snap.Float(types.IndicatorBBLower),
		rsi:       snap.Float(types.IndicatorRSI14),
		ema20:     snap.Float(types.IndicatorEMA20),
		prevRSI:   optional.None[float64](),
		prevEMA20: optional.None[float64](),
		ema50:     snap.Get(types.IndicatorEMA50),
		prevEMA50: optional.None[float64](),
		sma200:    snap.Get(types.IndicatorSMA200),
	}

	if in.Previous.IsSome() {
		prev := in.Previous.Unwrap()
		v.prevClose = optional.Some(prev.Candle.Close)
		v.prevRSI = prev.Snapshot.Get(types.IndicatorRSI14)
		v.prevEMA20 = prev.Snapshot.Get(types.IndicatorEMA20)
		v.prevEMA50 = prev.Snapshot.Get(types.IndicatorEMA50)
	}

	return v
}

// volatility is the band width relative to the middle band.
func (v view) volatility() float64 {
	if v.bbMiddle == 0 {
		return 0
	}

	return (v.bbUpper - v.bbLower) / v.bbMiddle
}

func (v view) rsiRising() bool {
	return v.prevRSI.IsSome() && v.rsi > v.prevRSI.Unwrap()
}

func (v view) rsiFalling() bool {
	return v.prevRSI.IsSome() && v.rsi < v.prevRSI.Unwrap()
}

// emaCross returns +1 when EMA20 crossed above EMA50 on this candle, -1 when
// it crossed below, 0 otherwise or when either side is undefined.
func (v view) emaCross() int {
	if v.ema50.IsNone() || v.prevEMA20.IsNone() || v.prevEMA50.IsNone() {
		return 0
	}

	prevDiff := v.prevEMA20.Unwrap() - v.prevEMA50.Unwrap()
	diff := v.ema20 - v.ema50.Unwrap()

	switch {
	case prevDiff <= 0 && diff > 0:
		return 1
	case prevDiff >= 0 && diff < 0:
		return -1
	default:
		return 0
	}
}

// defaultRules is the chain after the history and trend checks. STRONG
// variants come before their plain counterparts.
func defaultRules() []rule {
	return []rule{
		{name: RuleBlowOffTop, signal: types.SignalStrongSell, match: blowOffTop},
		{name: RuleDeepDip, signal: types.SignalStrongBuy, match: deepDip},
		{name: RuleOverheat, signal: types.SignalStrongSell, match: overheat},
		{name: RulePullback, signal: types.SignalBuy, match: pullback},
		{name: RuleGoldenCross, signal: types.SignalBuy, match: goldenCross},
		{name: RuleMomentum, signal: types.SignalBuy, match: momentum},
		{name: RuleOverextension, signal: types.SignalSell, match: overextension},
		{name: RuleDeathCross, signal: types.SignalSell, match: deathCross},
	}
}

// blowOffTop: long upper wick closing lower above the upper band with a hot RSI.
func blowOffTop(cfg Config, v view) (bool, string) {
	rng := v.candle.Range()
	if rng <= 0 || v.prevClose.IsNone() {
		return false, ""
	}

	wick := v.candle.UpperWick()
	if wick > cfg.WickRatio*rng && v.close < v.prevClose.Unwrap() && v.close > v.bbUpper && v.rsi > cfg.BlowOffRSI {
		return true, fmt.Sprintf("blow-off top: upper wick %.0f%% of range, close %.2f above upper band %.2f, RSI %.1f",
			wick/rng*100, v.close, v.bbUpper, v.rsi)
	}

	return false, ""
}

func deepDip(cfg Config, v view) (bool, string) {
	if v.close > v.bbLower || v.rsi >= cfg.DeepDipRSI || !v.rsiRising() {
		return false, ""
	}

	// A quiet market only changes the reason text
	if v.volatility() < cfg.LowVolatility && v.close < v.bbLower*cfg.LowVolDipFactor {
		return true, fmt.Sprintf("deeper dip in quiet market: close %.2f well below lower band %.2f, RSI %.1f turning up", v.close, v.bbLower, v.rsi)
	}

	return true, fmt.Sprintf("deep dip: close %.2f at or below lower band %.2f, RSI %.1f turning up", v.close, v.bbLower, v.rsi)
}

func overheat(cfg Config, v view) (bool, string) {
	if v.ema50.IsNone() {
		return false, ""
	}

	ema50 := v.ema50.Unwrap()
	if v.close > ema50*cfg.EMA50Stretch && v.close > v.bbUpper && v.rsi > cfg.OverheatRSI && v.rsiFalling() {
		return true, fmt.Sprintf("overheated: close %.2f is %.1f%% above EMA50 and above upper band, RSI %.1f rolling over",
			v.close, (v.close/ema50-1)*100, v.rsi)
	}

	return false, ""
}

func pullback(cfg Config, v view) (bool, string) {
	if v.rsi <= cfg.PullbackRSILow || v.rsi > cfg.PullbackRSIHigh || !v.rsiRising() {
		return false, ""
	}

	slack := 1.0
	if v.volatility() > cfg.HighVolatility {
		slack = cfg.HighVolBandSlack
	}

	if v.close <= v.bbLower*slack {
		return true, fmt.Sprintf("pullback to lower band %.2f, RSI %.1f recovering", v.bbLower, v.rsi)
	}

	if v.ema50.IsSome() && v.close <= v.ema50.Unwrap()*cfg.EMA50Discount {
		return true, fmt.Sprintf("pullback below EMA50 %.2f, RSI %.1f recovering", v.ema50.Unwrap(), v.rsi)
	}

	return false, ""
}

func goldenCross(_ Config, v view) (bool, string) {
	if v.emaCross() > 0 {
		return true, fmt.Sprintf("EMA20 %.2f crossed above EMA50 %.2f", v.ema20, v.ema50.Unwrap())
	}

	return false, ""
}

func momentum(cfg Config, v view) (bool, string) {
	if v.prevEMA20.IsNone() {
		return false, ""
	}

	if v.close > v.ema20 && v.ema20 > v.prevEMA20.Unwrap() && v.rsi >= cfg.MomentumRSI && v.close <= v.bbUpper {
		return true, fmt.Sprintf("uptrend: close %.2f above rising EMA20 %.2f, RSI %.1f", v.close, v.ema20, v.rsi)
	}

	return false, ""
}

func overextension(cfg Config, v view) (bool, string) {
	if v.close > v.bbUpper && v.rsi > cfg.OverextendedRSI && v.rsiFalling() {
		return true, fmt.Sprintf("overextended: close %.2f above upper band %.2f, RSI %.1f falling", v.close, v.bbUpper, v.rsi)
	}

	return false, ""
}

func deathCross(_ Config, v view) (bool, string) {
	if v.emaCross() < 0 {
		return true, fmt.Sprintf("EMA20 %.2f crossed below EMA50 %.2f", v.ema20, v.ema50.Unwrap())
	}

	return false, ""
}
