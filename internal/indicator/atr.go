package indicator

import (
	"math"

	"github.com/moznion/go-optional"

	"github.com/arcadia-lab/sentinel-trading/internal/types"
)

// trueRanges computes the true range series; index i corresponds to
// candles[i+1] since TR needs the previous close.
func trueRanges(candles []types.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}

	ranges := make([]float64, 0, len(candles)-1)

	for i := 1; i < len(candles); i++ {
		prevClose := candles[i-1].Close
		tr := math.Max(
			candles[i].High-candles[i].Low,
			math.Max(
				math.Abs(candles[i].High-prevClose),
				math.Abs(candles[i].Low-prevClose),
			),
		)
		ranges = append(ranges, tr)
	}

	return ranges
}

// ATR computes the Average True Range with Wilder's smoothing. Requires
// period+1 candles.
func ATR(candles []types.Candle, period int) optional.Option[float64] {
	if period <= 0 || len(candles) < period+1 {
		return optional.None[float64]()
	}

	ranges := trueRanges(candles)

	atr := 0.0
	for i := 0; i < period; i++ {
		atr += ranges[i]
	}

	atr /= float64(period)

	for i := period; i < len(ranges); i++ {
		atr = (atr*float64(period-1) + ranges[i]) / float64(period)
	}

	return optional.Some(atr)
}
