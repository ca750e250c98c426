package analysis

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadia-lab/sentinel-trading/internal/gate"
	"github.com/arcadia-lab/sentinel-trading/internal/types"
)

func candle(i int, low, high, close float64) types.Candle {
	openTime := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * 4 * time.Hour)

	return types.Candle{
		Symbol:    "BTCUSDT",
		Interval:  "240",
		OpenTime:  openTime,
		CloseTime: openTime.Add(4 * time.Hour),
		Open:      close,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    100,
	}
}

func TestBuildPayloadSummaryStats(t *testing.T) {
	snapshot := types.Snapshot{
		Symbol:   "BTCUSDT",
		Interval: "240",
		Close:    optional.Some(50500.0),
	}

	candles := []types.Candle{
		candle(0, 49000, 50200, 50000),
		candle(1, 49500, 51500, 50200),
		candle(2, 48800, 51000, 50500),
	}

	payload := BuildPayload(snapshot, candles, nil, nil)

	assert.Equal(t, "BTCUSDT", payload.Symbol)
	assert.Equal(t, "240", payload.Interval)
	assert.Equal(t, 50500.0, payload.CurrentPrice)
	assert.Equal(t, 51500.0, payload.WindowHigh)
	assert.Equal(t, 48800.0, payload.WindowLow)
	assert.InDelta(t, 1.0, payload.ChangePercent, 1e-9) // 50000 -> 50500
}

func TestBuildPayloadHistoryIsChronological(t *testing.T) {
	snapshot := types.Snapshot{
		Symbol:   "BTCUSDT",
		Interval: "240",
		RSI14:    optional.Some(30.0),
		MACD:     optional.Some(types.MACDValue{MACD: 3, Signal: 2, Histogram: 1}),
	}

	// Stored snapshots arrive newest first.
	history := []types.Snapshot{
		{RSI14: optional.Some(40.0), MACD: optional.Some(types.MACDValue{MACD: 2})},
		{RSI14: optional.Some(50.0), MACD: optional.Some(types.MACDValue{MACD: 1})},
	}

	payload := BuildPayload(snapshot, nil, history, nil)

	require.Equal(t, []float64{50, 40, 30}, payload.RSIHistory)
	require.Len(t, payload.MACDHistory, 3)
	assert.Equal(t, 1.0, payload.MACDHistory[0].MACD)
	assert.Equal(t, 3.0, payload.MACDHistory[2].MACD)
	assert.Len(t, payload.RecentSnapshots, 2)
}

func TestBuildPayloadSkipsAbsentHistoryValues(t *testing.T) {
	snapshot := types.Snapshot{Symbol: "BTCUSDT", Interval: "240"}

	history := []types.Snapshot{
		{RSI14: optional.Some(40.0)},
		{}, // warm-up snapshot without indicators
	}

	payload := BuildPayload(snapshot, nil, history, nil)

	assert.Equal(t, []float64{40}, payload.RSIHistory)
	assert.Empty(t, payload.MACDHistory)
	assert.Zero(t, payload.CurrentPrice)
	assert.Zero(t, payload.ChangePercent)
}

func TestBuildPayloadCarriesObservations(t *testing.T) {
	observations := []gate.Observation{
		{Name: "rsi_oversold", Detail: "RSI 25.00 below 30", Primary: true},
	}

	payload := BuildPayload(types.Snapshot{}, nil, nil, observations)

	require.Len(t, payload.Observations, 1)
	assert.Equal(t, "rsi_oversold", payload.Observations[0].Name)
}
