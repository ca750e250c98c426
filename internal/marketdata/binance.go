package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"

	"github.com/arcadia-lab/sentinel-trading/internal/types"
	"github.com/arcadia-lab/sentinel-trading/pkg/errors"
)

// BinanceProvider sources candles from the Binance spot kline API. Market
// data only; execution stays on the primary exchange.
type BinanceProvider struct {
	client *binance.Client
}

// NewBinanceProvider creates an unauthenticated Binance client; kline
// queries are public endpoints.
func NewBinanceProvider() *BinanceProvider {
	return &BinanceProvider{client: binance.NewClient("", "")}
}

var _ Provider = (*BinanceProvider)(nil)

// GetCandles fetches up to limit klines. Binance serves them oldest first,
// so no reordering is needed.
func (p *BinanceProvider) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]types.Candle, error) {
	binanceInterval, err := toBinanceInterval(interval)
	if err != nil {
		return nil, err
	}

	klines, err := p.client.NewKlinesService().
		Symbol(symbol).
		Interval(binanceInterval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to fetch klines from Binance", err)
	}

	candles := make([]types.Candle, 0, len(klines))

	for _, k := range klines {
		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		closePrice, _ := strconv.ParseFloat(k.Close, 64)
		volume, _ := strconv.ParseFloat(k.Volume, 64)

		candles = append(candles, types.Candle{
			Symbol:    symbol,
			Interval:  interval,
			OpenTime:  time.UnixMilli(k.OpenTime).UTC(),
			CloseTime: time.UnixMilli(k.CloseTime).UTC(),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    volume,
		})
	}

	return candles, nil
}

func (p *BinanceProvider) LastClosedCandle(ctx context.Context, symbol, interval string) (types.Candle, error) {
	candles, err := p.GetCandles(ctx, symbol, interval, 2)
	if err != nil {
		return types.Candle{}, err
	}

	return lastClosedFromSeries(symbol, interval, candles)
}

// toBinanceInterval maps a minutes-as-label interval onto the Binance
// interval vocabulary (1m..30m, 1h..12h, 1d, 1w).
func toBinanceInterval(interval string) (string, error) {
	duration, ok := types.IntervalDuration(interval)
	if !ok {
		return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval %q", interval)
	}

	minutes := int(duration.Minutes())

	switch {
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes), nil
	case minutes%(60*24*7) == 0:
		return fmt.Sprintf("%dw", minutes/(60*24*7)), nil
	case minutes%(60*24) == 0:
		return fmt.Sprintf("%dd", minutes/(60*24)), nil
	case minutes%60 == 0:
		return fmt.Sprintf("%dh", minutes/60), nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidInterval,
			"interval %q does not map to a Binance interval", interval)
	}
}
