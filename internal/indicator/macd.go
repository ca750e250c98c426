package indicator

import (
	"github.com/moznion/go-optional"

	"github.com/arcadia-lab/sentinel-trading/internal/types"
)

// MACD computes the Moving Average Convergence Divergence line, its signal
// line and the histogram. Requires slowPeriod+signalPeriod-1 candles so the
// signal EMA has a full warm-up.
func MACD(candles []types.Candle, fastPeriod, slowPeriod, signalPeriod int) optional.Option[types.MACDValue] {
	if fastPeriod <= 0 || slowPeriod <= fastPeriod || signalPeriod <= 0 {
		return optional.None[types.MACDValue]()
	}

	if len(candles) < slowPeriod+signalPeriod-1 {
		return optional.None[types.MACDValue]()
	}

	prices := closes(candles)

	fast := emaSeries(prices, fastPeriod)
	slow := emaSeries(prices, slowPeriod)

	// Align the fast series to the slow one; slow starts slowPeriod-fastPeriod
	// samples later.
	offset := slowPeriod - fastPeriod
	macdLine := make([]float64, len(slow))

	for i := range slow {
		macdLine[i] = fast[i+offset] - slow[i]
	}

	signal := emaSeries(macdLine, signalPeriod)
	if len(signal) == 0 {
		return optional.None[types.MACDValue]()
	}

	macd := macdLine[len(macdLine)-1]
	sig := signal[len(signal)-1]

	return optional.Some(types.MACDValue{
		MACD:      macd,
		Signal:    sig,
		Histogram: macd - sig,
	})
}
