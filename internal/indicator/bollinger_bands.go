package indicator

import (
	"fmt"
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// BollingerBands returns the upper, middle and lower bands: the period SMA of
// close plus and minus k population standard deviations over the same window.
// Defined from index period-1.
func BollingerBands(closes []float64, period int, k float64) (upper, middle, lower Series, err error) {
	if period <= 0 {
		return nil, nil, nil, errors.Newf(errors.ErrCodeInvalidIndicatorConfig, "Bollinger period must be a positive integer, got %d", period)
	}

	if k < 0 {
		return nil, nil, nil, errors.Newf(errors.ErrCodeInvalidIndicatorConfig, "Bollinger deviation multiplier must not be negative, got %v", k)
	}

	n := len(closes)
	upper, middle, lower = newSeries(n), newSeries(n), newSeries(n)

	for i := period - 1; i < n; i++ {
		window := closes[i-period+1 : i+1]
		m := mean(window)

		variance := 0.0
		for _, c := range window {
			variance += (c - m) * (c - m)
		}

		sd := math.Sqrt(variance / float64(period))

		middle[i] = optional.Some(m)
		upper[i] = optional.Some(m + k*sd)
		lower[i] = optional.Some(m - k*sd)
	}

	return upper, middle, lower, nil
}

// BollingerBandsIndicator is the registry wrapper around BollingerBands.
type BollingerBandsIndicator struct {
	period int
	stdDev float64
}

// NewBollingerBands creates Bollinger Bands with period 20 and 2 standard deviations.
func NewBollingerBands() Indicator {
	return &BollingerBandsIndicator{period: 20, stdDev: 2}
}

func (b *BollingerBandsIndicator) Name() string {
	return fmt.Sprintf("BB%d", b.period)
}

func (b *BollingerBandsIndicator) Type() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Config expects: period (int), optionally followed by the deviation multiplier (float64).
func (b *BollingerBandsIndicator) Config(params ...any) error {
	period, err := periodParam("BollingerBands", params)
	if err != nil {
		return err
	}

	stdDev := b.stdDev

	if len(params) >= 2 {
		v, ok := params[1].(float64)
		if !ok {
			return errors.New(errors.ErrCodeInvalidIndicatorConfig, "BollingerBands: invalid type for std dev parameter, expected float64")
		}

		if v < 0 {
			return errors.Newf(errors.ErrCodeInvalidIndicatorConfig, "BollingerBands: std dev must not be negative, got %v", v)
		}

		stdDev = v
	}

	b.period = period
	b.stdDev = stdDev

	return nil
}

func (b *BollingerBandsIndicator) Compute(closes []float64) (map[types.IndicatorName]Series, error) {
	upper, middle, lower, err := BollingerBands(closes, b.period, b.stdDev)
	if err != nil {
		return nil, err
	}

	return map[types.IndicatorName]Series{
		types.IndicatorBBUpper:  upper,
		types.IndicatorBBMiddle: middle,
		types.IndicatorBBLower:  lower,
	}, nil
}
