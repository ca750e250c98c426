package indicator

import (
	"github.com/moznion/go-optional"

	"github.com/arcadia-lab/sentinel-trading/internal/types"
)

// Stochastic computes the %K oscillator over kPeriod candles and %D as a
// dPeriod simple moving average of %K. Requires kPeriod+dPeriod-1 candles.
func Stochastic(candles []types.Candle, kPeriod, dPeriod int) optional.Option[types.StochasticValue] {
	if kPeriod <= 0 || dPeriod <= 0 || len(candles) < kPeriod+dPeriod-1 {
		return optional.None[types.StochasticValue]()
	}

	kValues := make([]float64, 0, dPeriod)

	for offset := dPeriod - 1; offset >= 0; offset-- {
		end := len(candles) - offset
		window := candles[end-kPeriod : end]

		highest := window[0].High
		lowest := window[0].Low

		for _, candle := range window[1:] {
			if candle.High > highest {
				highest = candle.High
			}

			if candle.Low < lowest {
				lowest = candle.Low
			}
		}

		k := 50.0
		if highest != lowest {
			k = 100 * (window[len(window)-1].Close - lowest) / (highest - lowest)
		}

		kValues = append(kValues, k)
	}

	d := 0.0
	for _, k := range kValues {
		d += k
	}

	d /= float64(dPeriod)

	return optional.Some(types.StochasticValue{
		K: kValues[len(kValues)-1],
		D: d,
	})
}
