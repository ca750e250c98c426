package marketdata

import (
	"context"

	"github.com/arcadia-lab/sentinel-trading/internal/exchange"
	"github.com/arcadia-lab/sentinel-trading/internal/types"
)

// BybitProvider sources candles from the execution exchange itself, so the
// ingested series and the traded instrument always agree.
type BybitProvider struct {
	exchange exchange.Exchange
}

// NewBybitProvider wraps the exchange client as a candle provider.
func NewBybitProvider(exchange exchange.Exchange) *BybitProvider {
	return &BybitProvider{exchange: exchange}
}

var _ Provider = (*BybitProvider)(nil)

func (p *BybitProvider) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]types.Candle, error) {
	return p.exchange.GetCandles(ctx, symbol, interval, limit)
}

func (p *BybitProvider) LastClosedCandle(ctx context.Context, symbol, interval string) (types.Candle, error) {
	return p.exchange.LastClosedCandle(ctx, symbol, interval)
}
