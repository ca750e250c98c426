package indicator

import (
	"github.com/moznion/go-optional"

	"github.com/arcadia-lab/sentinel-trading/internal/types"
)

// SMA computes the simple moving average of the last period closes.
func SMA(candles []types.Candle, period int) optional.Option[float64] {
	if period <= 0 || len(candles) < period {
		return optional.None[float64]()
	}

	prices := closes(candles)

	sum := 0.0
	for _, price := range prices[len(prices)-period:] {
		sum += price
	}

	return optional.Some(sum / float64(period))
}

// EMA computes the exponential moving average of the closes, seeded with a
// simple average over the first period values.
func EMA(candles []types.Candle, period int) optional.Option[float64] {
	if period <= 0 || len(candles) < period {
		return optional.None[float64]()
	}

	series := emaSeries(closes(candles), period)
	if len(series) == 0 {
		return optional.None[float64]()
	}

	return optional.Some(series[len(series)-1])
}
