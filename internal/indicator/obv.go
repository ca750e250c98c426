package indicator

import (
	"github.com/moznion/go-optional"

	"github.com/arcadia-lab/sentinel-trading/internal/types"
)

// OBV computes On-Balance Volume over the whole window, anchored at zero on
// the first candle. Requires at least two candles for a meaningful value.
func OBV(candles []types.Candle) optional.Option[float64] {
	if len(candles) < 2 {
		return optional.None[float64]()
	}

	obv := 0.0

	for i := 1; i < len(candles); i++ {
		switch {
		case candles[i].Close > candles[i-1].Close:
			obv += candles[i].Volume
		case candles[i].Close < candles[i-1].Close:
			obv -= candles[i].Volume
		}
	}

	return optional.Some(obv)
}
