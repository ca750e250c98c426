package types

import "github.com/moznion/go-optional"

// PositionSide is the exchange-side direction of an open position.
type PositionSide string

const (
	PositionSideBuy  PositionSide = "Buy"
	PositionSideSell PositionSide = "Sell"
)

// Opposite returns the side that closes a position opened on this side.
func (s PositionSide) Opposite() PositionSide {
	if s == PositionSideBuy {
		return PositionSideSell
	}

	return PositionSideBuy
}

// Position is the exchange-owned open position for a symbol.
// This core only reads it; the exchange is the source of truth.
type Position struct {
	Symbol        string                   `json:"symbol"`
	Side          PositionSide             `json:"side"`
	EntryPrice    float64                  `json:"entry_price"`
	MarkPrice     float64                  `json:"mark_price"`
	Size          float64                  `json:"size"`
	Leverage      float64                  `json:"leverage"`
	UnrealisedPnL float64                  `json:"unrealised_pnl"`
	TakeProfit    optional.Option[float64] `json:"take_profit"`
	StopLoss      optional.Option[float64] `json:"stop_loss"`
}
