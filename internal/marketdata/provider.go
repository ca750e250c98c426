// Package marketdata is the candle-sourcing port: a narrow provider
// interface with one implementation per supported exchange feed.
package marketdata

import (
	"context"

	"github.com/arcadia-lab/sentinel-trading/internal/types"
	"github.com/arcadia-lab/sentinel-trading/pkg/errors"
)

// Provider serves closed candles in chronological order.
type Provider interface {
	GetCandles(ctx context.Context, symbol, interval string, limit int) ([]types.Candle, error)
	LastClosedCandle(ctx context.Context, symbol, interval string) (types.Candle, error)
}

// lastClosedFromSeries picks the most recent closed candle out of a
// chronological series whose tail is the still-forming candle.
func lastClosedFromSeries(symbol, interval string, candles []types.Candle) (types.Candle, error) {
	if len(candles) < 2 {
		return types.Candle{}, errors.Newf(errors.ErrCodeNoClosedCandle,
			"no closed candle available for %s %s", symbol, interval)
	}

	return candles[len(candles)-2], nil
}
