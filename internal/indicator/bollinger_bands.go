package indicator

import (
	"math"

	"github.com/moznion/go-optional"

	"github.com/arcadia-lab/sentinel-trading/internal/types"
)

// BollingerBands computes the upper, middle and lower bands over the last
// period closes using stdDev standard deviations, plus %B locating the
// current price inside the band.
func BollingerBands(candles []types.Candle, period int, stdDev float64) optional.Option[types.BollingerValue] {
	if period <= 0 || len(candles) < period {
		return optional.None[types.BollingerValue]()
	}

	prices := closes(candles)
	window := prices[len(prices)-period:]

	mean := 0.0
	for _, price := range window {
		mean += price
	}

	mean /= float64(period)

	variance := 0.0
	for _, price := range window {
		variance += (price - mean) * (price - mean)
	}

	variance /= float64(period)
	sigma := math.Sqrt(variance)

	upper := mean + stdDev*sigma
	lower := mean - stdDev*sigma

	percentB := 0.5
	if upper != lower {
		percentB = (prices[len(prices)-1] - lower) / (upper - lower)
	}

	return optional.Some(types.BollingerValue{
		Upper:    upper,
		Middle:   mean,
		Lower:    lower,
		PercentB: percentB,
	})
}
