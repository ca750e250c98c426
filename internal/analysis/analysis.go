// Package analysis assembles the market context payload handed to the
// decision oracle: the current snapshot, summary statistics over the candle
// window and short trailing indicator histories.
package analysis

import (
	"github.com/arcadia-lab/sentinel-trading/internal/gate"
	"github.com/arcadia-lab/sentinel-trading/internal/types"
)

// Payload is the JSON document embedded in the oracle prompt.
type Payload struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`

	CurrentPrice  float64 `json:"currentPrice"`
	WindowHigh    float64 `json:"windowHigh"`
	WindowLow     float64 `json:"windowLow"`
	ChangePercent float64 `json:"changePercent"`

	Snapshot     types.Snapshot     `json:"snapshot"`
	Observations []gate.Observation `json:"observations,omitempty"`

	RSIHistory  []float64         `json:"rsiHistory,omitempty"`
	MACDHistory []types.MACDValue `json:"macdHistory,omitempty"`

	RecentSnapshots []types.Snapshot `json:"recentSnapshots,omitempty"`
}

// BuildPayload combines the fresh snapshot, the chronological candle window
// and the most recent stored snapshots (newest first, as loaded) into an
// oracle payload. History series are emitted oldest first so the oracle
// reads them left to right.
func BuildPayload(
	snapshot types.Snapshot,
	candles []types.Candle,
	history []types.Snapshot,
	observations []gate.Observation,
) Payload {
	payload := Payload{
		Symbol:          snapshot.Symbol,
		Interval:        snapshot.Interval,
		Snapshot:        snapshot,
		Observations:    observations,
		RecentSnapshots: history,
	}

	if price, err := snapshot.Close.Take(); err == nil {
		payload.CurrentPrice = price
	}

	if len(candles) > 0 {
		payload.WindowHigh = candles[0].High
		payload.WindowLow = candles[0].Low

		for _, candle := range candles[1:] {
			if candle.High > payload.WindowHigh {
				payload.WindowHigh = candle.High
			}

			if candle.Low < payload.WindowLow {
				payload.WindowLow = candle.Low
			}
		}

		first := candles[0].Close
		last := candles[len(candles)-1].Close

		if first != 0 {
			payload.ChangePercent = (last - first) / first * 100
		}
	}

	// history arrives newest first; walk it backwards to build chronological
	// series ending at the current snapshot.
	for i := len(history) - 1; i >= 0; i-- {
		if rsi, err := history[i].RSI14.Take(); err == nil {
			payload.RSIHistory = append(payload.RSIHistory, rsi)
		}

		if macd, err := history[i].MACD.Take(); err == nil {
			payload.MACDHistory = append(payload.MACDHistory, macd)
		}
	}

	if rsi, err := snapshot.RSI14.Take(); err == nil {
		payload.RSIHistory = append(payload.RSIHistory, rsi)
	}

	if macd, err := snapshot.MACD.Take(); err == nil {
		payload.MACDHistory = append(payload.MACDHistory, macd)
	}

	return payload
}
