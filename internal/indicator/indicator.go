// Package indicator computes technical indicators over a chronological
// candle window. Every calculator returns an optional value: when the window
// is shorter than the indicator's warm-up period the result is None rather
// than a fabricated number, and downstream consumers treat absence as
// "not enough history yet".
package indicator

import (
	"github.com/moznion/go-optional"

	"github.com/arcadia-lab/sentinel-trading/internal/types"
)

// closes extracts the close price series from a chronological candle window.
func closes(candles []types.Candle) []float64 {
	prices := make([]float64, len(candles))
	for i, candle := range candles {
		prices[i] = candle.Close
	}

	return prices
}

// lastClose returns the most recent close, None for an empty window.
func lastClose(candles []types.Candle) optional.Option[float64] {
	if len(candles) == 0 {
		return optional.None[float64]()
	}

	return optional.Some(candles[len(candles)-1].Close)
}

// emaSeries computes the exponential moving average series over prices,
// seeded with the simple average of the first period values. The returned
// slice is aligned so that index i corresponds to prices[period-1+i].
func emaSeries(prices []float64, period int) []float64 {
	if len(prices) < period {
		return nil
	}

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += prices[i]
	}

	seed /= float64(period)

	multiplier := 2.0 / (float64(period) + 1.0)
	series := make([]float64, 0, len(prices)-period+1)
	series = append(series, seed)

	ema := seed
	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
		series = append(series, ema)
	}

	return series
}
