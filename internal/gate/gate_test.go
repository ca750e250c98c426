package gate

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadia-lab/sentinel-trading/internal/types"
)

func observationNames(observations []Observation) []string {
	names := make([]string, len(observations))
	for i, observation := range observations {
		names[i] = observation.Name
	}

	return names
}

func TestRSIOversoldIsPrimary(t *testing.T) {
	snapshot := types.Snapshot{RSI14: optional.Some(25.0)}

	ok, observations := ShouldCallOracle(snapshot)
	assert.True(t, ok)
	assert.Contains(t, observationNames(observations), "rsi_oversold")
}

func TestRSIOverboughtIsPrimary(t *testing.T) {
	snapshot := types.Snapshot{RSI14: optional.Some(75.0)}

	ok, observations := ShouldCallOracle(snapshot)
	assert.True(t, ok)
	assert.Contains(t, observationNames(observations), "rsi_overbought")
}

func TestQuietSnapshotSkipsOracle(t *testing.T) {
	snapshot := types.Snapshot{
		RSI14: optional.Some(50.0),
		MACD: optional.Some(types.MACDValue{
			MACD:      0.1,
			Signal:    0.1,
			Histogram: 0,
		}),
		ADX14: optional.Some(types.ADXValue{
			ADX:     10,
			PlusDI:  15,
			MinusDI: 14,
		}),
		Bollinger: optional.Some(types.BollingerValue{
			Upper:    110,
			Middle:   100,
			Lower:    90,
			PercentB: 0.5,
		}),
	}

	ok, _ := ShouldCallOracle(snapshot)
	assert.False(t, ok)
}

func TestEmptySnapshotTriggersNothing(t *testing.T) {
	ok, observations := ShouldCallOracle(types.Snapshot{})
	assert.False(t, ok)
	assert.Empty(t, observations)
}

func TestMACDCrossovers(t *testing.T) {
	bullish := types.Snapshot{
		MACD: optional.Some(types.MACDValue{MACD: 1.5, Signal: 1.0, Histogram: 0.5}),
	}

	ok, observations := ShouldCallOracle(bullish)
	assert.True(t, ok)
	assert.Contains(t, observationNames(observations), "macd_bullish_cross")

	bearish := types.Snapshot{
		MACD: optional.Some(types.MACDValue{MACD: -1.5, Signal: -1.0, Histogram: -0.5}),
	}

	ok, observations = ShouldCallOracle(bearish)
	assert.True(t, ok)
	assert.Contains(t, observationNames(observations), "macd_bearish_cross")
}

func TestBollingerBreaches(t *testing.T) {
	above := types.Snapshot{
		Bollinger: optional.Some(types.BollingerValue{Upper: 110, Middle: 100, Lower: 90, PercentB: 1.1}),
	}

	ok, observations := ShouldCallOracle(above)
	assert.True(t, ok)
	assert.Contains(t, observationNames(observations), "bollinger_breach_upper")

	below := types.Snapshot{
		Bollinger: optional.Some(types.BollingerValue{Upper: 110, Middle: 100, Lower: 90, PercentB: -0.1}),
	}

	ok, observations = ShouldCallOracle(below)
	assert.True(t, ok)
	assert.Contains(t, observationNames(observations), "bollinger_breach_lower")
}

func TestADXStrongTrend(t *testing.T) {
	snapshot := types.Snapshot{
		ADX14: optional.Some(types.ADXValue{ADX: 30, PlusDI: 25, MinusDI: 10}),
	}

	ok, observations := ShouldCallOracle(snapshot)
	assert.True(t, ok)
	assert.Contains(t, observationNames(observations), "adx_strong_trend_bullish")

	snapshot = types.Snapshot{
		ADX14: optional.Some(types.ADXValue{ADX: 30, PlusDI: 10, MinusDI: 25}),
	}

	_, observations = ShouldCallOracle(snapshot)
	assert.Contains(t, observationNames(observations), "adx_strong_trend_bearish")
}

func TestStochasticNeedsBothLinesBeyondThreshold(t *testing.T) {
	unconfirmed := types.Snapshot{
		Stochastic: optional.Some(types.StochasticValue{K: 15, D: 25}),
	}

	_, observations := ShouldCallOracle(unconfirmed)
	assert.Empty(t, observationNames(observations))

	unconfirmed = types.Snapshot{
		Stochastic: optional.Some(types.StochasticValue{K: 85, D: 75}),
	}

	_, observations = ShouldCallOracle(unconfirmed)
	assert.Empty(t, observationNames(observations))

	confirmed := types.Snapshot{
		Stochastic: optional.Some(types.StochasticValue{K: 85, D: 82}),
	}

	_, observations = ShouldCallOracle(confirmed)
	assert.Contains(t, observationNames(observations), "stochastic_overbought")
}

func TestSecondaryObservationsAloneDoNotTrigger(t *testing.T) {
	snapshot := types.Snapshot{
		EMA20: optional.Some(105.0),
		SMA20: optional.Some(100.0),
		Stochastic: optional.Some(types.StochasticValue{
			K: 15,
			D: 18,
		}),
	}

	ok, observations := ShouldCallOracle(snapshot)
	assert.False(t, ok)

	names := observationNames(observations)
	require.Len(t, names, 2)
	assert.Contains(t, names, "ma_bias_bullish")
	assert.Contains(t, names, "stochastic_oversold")
}
