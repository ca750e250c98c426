// Package exchange talks to the derivatives exchange: market data queries,
// the open-position guard and order execution.
package exchange

import (
	"context"
	"net/http"

	"github.com/moznion/go-optional"

	"github.com/arcadia-lab/sentinel-trading/internal/types"
)

// Doer abstracts the HTTP client for tests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// OpenPositionParams describes a market entry order.
type OpenPositionParams struct {
	Symbol   string
	Side     types.PositionSide
	Qty      float64
	Leverage int

	TakeProfit optional.Option[float64]
	StopLoss   optional.Option[float64]

	// OrderLinkID is the caller-supplied idempotency key; the exchange
	// rejects a second order carrying the same id.
	OrderLinkID string
}

// Exchange is the execution port consumed by the orchestrator.
type Exchange interface {
	GetCandles(ctx context.Context, symbol, interval string, limit int) ([]types.Candle, error)
	LastClosedCandle(ctx context.Context, symbol, interval string) (types.Candle, error)
	GetPosition(ctx context.Context, symbol string) (optional.Option[types.Position], error)
	OpenPosition(ctx context.Context, params OpenPositionParams) (string, error)
	ClosePosition(ctx context.Context, symbol, orderLinkID string) (string, error)
}
