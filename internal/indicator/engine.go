package indicator

import (
	"time"

	"go.uber.org/zap"

	"github.com/arcadia-lab/sentinel-trading/internal/logger"
	"github.com/arcadia-lab/sentinel-trading/internal/store"
	"github.com/arcadia-lab/sentinel-trading/internal/types"
)

// Default indicator parameters, matching common charting conventions.
const (
	DefaultMAPeriod        = 20
	DefaultRSIPeriod       = 14
	DefaultMACDFast        = 12
	DefaultMACDSlow        = 26
	DefaultMACDSignal      = 9
	DefaultBollingerPeriod = 20
	DefaultBollingerStdDev = 2.0
	DefaultATRPeriod       = 14
	DefaultADXPeriod       = 14
	DefaultStochasticK     = 14
	DefaultStochasticD     = 3
)

// Engine computes a full indicator snapshot from a candle window and
// persists it. Indicators whose warm-up exceeds the window are recorded
// as absent, never as zero.
type Engine struct {
	snapshots *store.SnapshotStore
	logger    *logger.Logger
}

// NewEngine creates a snapshot engine backed by the given snapshot store.
func NewEngine(snapshots *store.SnapshotStore, logger *logger.Logger) *Engine {
	return &Engine{
		snapshots: snapshots,
		logger:    logger,
	}
}

// Compute builds a snapshot from a chronological candle window without
// persisting it.
func (e *Engine) Compute(symbol, interval string, candles []types.Candle) types.Snapshot {
	return types.Snapshot{
		Symbol:     symbol,
		Interval:   interval,
		ComputedAt: time.Now().UTC(),
		SMA20:      SMA(candles, DefaultMAPeriod),
		EMA20:      EMA(candles, DefaultMAPeriod),
		RSI14:      RSI(candles, DefaultRSIPeriod),
		MACD:       MACD(candles, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal),
		Bollinger:  BollingerBands(candles, DefaultBollingerPeriod, DefaultBollingerStdDev),
		ATR14:      ATR(candles, DefaultATRPeriod),
		ADX14:      ADX(candles, DefaultADXPeriod),
		Stochastic: Stochastic(candles, DefaultStochasticK, DefaultStochasticD),
		OBV:        OBV(candles),
		Close:      lastClose(candles),
	}
}

// ComputeAndRecord computes the snapshot and persists it, returning the
// stored snapshot with its assigned id.
func (e *Engine) ComputeAndRecord(symbol, interval string, candles []types.Candle) (types.Snapshot, error) {
	snapshot := e.Compute(symbol, interval, candles)

	id, err := e.snapshots.Insert(snapshot)
	if err != nil {
		return types.Snapshot{}, err
	}

	snapshot.ID = id

	e.logger.Debug("Recorded indicator snapshot",
		zap.Int64("id", id),
		zap.String("symbol", symbol),
		zap.String("interval", interval),
		zap.Int("window", len(candles)),
	)

	return snapshot, nil
}
