package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// MACDValue carries the MACD line, its signal line and the histogram.
type MACDValue struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// BollingerValue carries the Bollinger band levels and percent-b.
type BollingerValue struct {
	Upper    float64 `json:"upper"`
	Middle   float64 `json:"middle"`
	Lower    float64 `json:"lower"`
	PercentB float64 `json:"pb"`
}

// ADXValue carries the average directional index and its directional components.
type ADXValue struct {
	ADX     float64 `json:"adx"`
	PlusDI  float64 `json:"pdi"`
	MinusDI float64 `json:"mdi"`
}

// StochasticValue carries the stochastic oscillator %K and %D lines.
type StochasticValue struct {
	K float64 `json:"k"`
	D float64 `json:"d"`
}

// Snapshot is the latest value of each tracked indicator at a point in time.
// A field is None when the candle series was too short for that indicator.
// Snapshots are immutable once recorded.
type Snapshot struct {
	ID         int64     `json:"id"`
	Symbol     string    `json:"symbol"`
	Interval   string    `json:"interval"`
	ComputedAt time.Time `json:"computed_at"`

	SMA20      optional.Option[float64]         `json:"sma20"`
	EMA20      optional.Option[float64]         `json:"ema20"`
	RSI14      optional.Option[float64]         `json:"rsi14"`
	MACD       optional.Option[MACDValue]       `json:"macd"`
	Bollinger  optional.Option[BollingerValue]  `json:"bollinger"`
	ATR14      optional.Option[float64]         `json:"atr14"`
	ADX14      optional.Option[ADXValue]        `json:"adx14"`
	Stochastic optional.Option[StochasticValue] `json:"stochastic"`
	OBV        optional.Option[float64]         `json:"obv"`
	Close      optional.Option[float64]         `json:"close"`
}
