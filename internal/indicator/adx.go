package indicator

import (
	"math"

	"github.com/moznion/go-optional"

	"github.com/arcadia-lab/sentinel-trading/internal/types"
)

// ADX computes the Average Directional Index together with the plus and
// minus directional indicators, all Wilder-smoothed. The first ADX value
// needs a DX series of length period, which in turn needs period+1 candles,
// so the minimum window is 2*period+1 candles.
func ADX(candles []types.Candle, period int) optional.Option[types.ADXValue] {
	if period <= 0 || len(candles) < 2*period+1 {
		return optional.None[types.ADXValue]()
	}

	n := len(candles) - 1
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)

	for i := 1; i < len(candles); i++ {
		upMove := candles[i].High - candles[i-1].High
		downMove := candles[i-1].Low - candles[i].Low

		if upMove > downMove && upMove > 0 {
			plusDM[i-1] = upMove
		}

		if downMove > upMove && downMove > 0 {
			minusDM[i-1] = downMove
		}
	}

	ranges := trueRanges(candles)

	// Wilder-smoothed running sums.
	smoothTR := 0.0
	smoothPlus := 0.0
	smoothMinus := 0.0

	for i := 0; i < period; i++ {
		smoothTR += ranges[i]
		smoothPlus += plusDM[i]
		smoothMinus += minusDM[i]
	}

	dx := make([]float64, 0, n-period+1)

	plusDI := 0.0
	minusDI := 0.0

	appendDX := func() {
		plusDI = 0
		minusDI = 0

		if smoothTR != 0 {
			plusDI = 100 * smoothPlus / smoothTR
			minusDI = 100 * smoothMinus / smoothTR
		}

		sum := plusDI + minusDI
		if sum == 0 {
			dx = append(dx, 0)
			return
		}

		dx = append(dx, 100*math.Abs(plusDI-minusDI)/sum)
	}

	appendDX()

	for i := period; i < n; i++ {
		smoothTR = smoothTR - smoothTR/float64(period) + ranges[i]
		smoothPlus = smoothPlus - smoothPlus/float64(period) + plusDM[i]
		smoothMinus = smoothMinus - smoothMinus/float64(period) + minusDM[i]

		appendDX()
	}

	if len(dx) < period {
		return optional.None[types.ADXValue]()
	}

	adx := 0.0
	for i := 0; i < period; i++ {
		adx += dx[i]
	}

	adx /= float64(period)

	for i := period; i < len(dx); i++ {
		adx = (adx*float64(period-1) + dx[i]) / float64(period)
	}

	return optional.Some(types.ADXValue{
		ADX:     adx,
		PlusDI:  plusDI,
		MinusDI: minusDI,
	})
}
