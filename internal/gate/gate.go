// Package gate implements the heuristic pre-filter that decides whether an
// indicator snapshot is interesting enough to spend an oracle call on.
// Rules are threshold checks on the snapshot only, no history and no network.
package gate

import (
	"fmt"

	"github.com/arcadia-lab/sentinel-trading/internal/types"
)

// Thresholds for the heuristic rules.
const (
	RSIOversold     = 30.0
	RSIOverbought   = 70.0
	ADXStrong       = 25.0
	StochOversold   = 20.0
	StochOverbought = 80.0
)

// Observation is one triggered heuristic rule. Primary observations are
// strong enough to justify an oracle call on their own; the rest only add
// context to the payload.
type Observation struct {
	Name    string `json:"name"`
	Detail  string `json:"detail"`
	Primary bool   `json:"primary"`
}

// Evaluate runs all heuristic rules against the snapshot and returns the
// triggered observations. Absent indicators trigger nothing.
func Evaluate(snapshot types.Snapshot) []Observation {
	observations := make([]Observation, 0)

	if rsi, err := snapshot.RSI14.Take(); err == nil {
		switch {
		case rsi < RSIOversold:
			observations = append(observations, Observation{
				Name:    "rsi_oversold",
				Detail:  fmt.Sprintf("RSI %.2f below %.0f", rsi, RSIOversold),
				Primary: true,
			})
		case rsi > RSIOverbought:
			observations = append(observations, Observation{
				Name:    "rsi_overbought",
				Detail:  fmt.Sprintf("RSI %.2f above %.0f", rsi, RSIOverbought),
				Primary: true,
			})
		}
	}

	ema, emaErr := snapshot.EMA20.Take()
	sma, smaErr := snapshot.SMA20.Take()

	if emaErr == nil && smaErr == nil && ema != sma {
		bias := "bullish"
		if ema < sma {
			bias = "bearish"
		}

		observations = append(observations, Observation{
			Name:   "ma_bias_" + bias,
			Detail: fmt.Sprintf("EMA20 %.2f vs SMA20 %.2f", ema, sma),
		})
	}

	if macd, err := snapshot.MACD.Take(); err == nil {
		switch {
		case macd.MACD > macd.Signal && macd.Histogram > 0:
			observations = append(observations, Observation{
				Name:    "macd_bullish_cross",
				Detail:  fmt.Sprintf("MACD %.4f above signal %.4f", macd.MACD, macd.Signal),
				Primary: true,
			})
		case macd.MACD < macd.Signal && macd.Histogram < 0:
			observations = append(observations, Observation{
				Name:    "macd_bearish_cross",
				Detail:  fmt.Sprintf("MACD %.4f below signal %.4f", macd.MACD, macd.Signal),
				Primary: true,
			})
		}
	}

	if bb, err := snapshot.Bollinger.Take(); err == nil {
		switch {
		case bb.PercentB > 1:
			observations = append(observations, Observation{
				Name:    "bollinger_breach_upper",
				Detail:  fmt.Sprintf("price above upper band, %%B %.2f", bb.PercentB),
				Primary: true,
			})
		case bb.PercentB < 0:
			observations = append(observations, Observation{
				Name:    "bollinger_breach_lower",
				Detail:  fmt.Sprintf("price below lower band, %%B %.2f", bb.PercentB),
				Primary: true,
			})
		}
	}

	if adx, err := snapshot.ADX14.Take(); err == nil && adx.ADX > ADXStrong {
		bias := "bullish"
		if adx.MinusDI > adx.PlusDI {
			bias = "bearish"
		}

		observations = append(observations, Observation{
			Name:    "adx_strong_trend_" + bias,
			Detail:  fmt.Sprintf("ADX %.2f, +DI %.2f, -DI %.2f", adx.ADX, adx.PlusDI, adx.MinusDI),
			Primary: true,
		})
	}

	if stoch, err := snapshot.Stochastic.Take(); err == nil {
		// both lines must confirm before the observation fires
		switch {
		case stoch.K < StochOversold && stoch.D < StochOversold:
			observations = append(observations, Observation{
				Name:   "stochastic_oversold",
				Detail: fmt.Sprintf("%%K %.2f and %%D %.2f below %.0f", stoch.K, stoch.D, StochOversold),
			})
		case stoch.K > StochOverbought && stoch.D > StochOverbought:
			observations = append(observations, Observation{
				Name:   "stochastic_overbought",
				Detail: fmt.Sprintf("%%K %.2f and %%D %.2f above %.0f", stoch.K, stoch.D, StochOverbought),
			})
		}
	}

	return observations
}

// ShouldCallOracle reports whether the snapshot carries at least one primary
// observation. Callers with an open position bypass the gate entirely so the
// oracle can manage the position every tick.
func ShouldCallOracle(snapshot types.Snapshot) (bool, []Observation) {
	observations := Evaluate(snapshot)

	for _, observation := range observations {
		if observation.Primary {
			return true, observations
		}
	}

	return false, observations
}
