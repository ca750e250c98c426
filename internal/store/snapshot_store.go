package store

import (
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/moznion/go-optional"

	"github.com/arcadia-lab/sentinel-trading/internal/types"
	"github.com/arcadia-lab/sentinel-trading/pkg/errors"
)

// SnapshotStore persists immutable indicator snapshots, one per pipeline tick.
type SnapshotStore struct {
	store *Store
}

// Insert stores the snapshot and returns its assigned id.
func (s *SnapshotStore) Insert(snapshot types.Snapshot) (int64, error) {
	macdValue, macdSignal, macdHistogram := splitMACD(snapshot.MACD)
	bbUpper, bbMiddle, bbLower, bbPercentB := splitBollinger(snapshot.Bollinger)
	adx, plusDI, minusDI := splitADX(snapshot.ADX14)
	stochK, stochD := splitStochastic(snapshot.Stochastic)

	query := s.store.sq.
		Insert("snapshots").
		Columns(
			"symbol", "interval", "computed_at",
			"sma20", "ema20", "rsi14",
			"macd_value", "macd_signal", "macd_histogram",
			"bb_upper", "bb_middle", "bb_lower", "bb_percent_b",
			"atr14", "adx", "plus_di", "minus_di",
			"stoch_k", "stoch_d", "obv", "close",
		).
		Values(
			snapshot.Symbol, snapshot.Interval, snapshot.ComputedAt.UTC(),
			nullFloat(snapshot.SMA20), nullFloat(snapshot.EMA20), nullFloat(snapshot.RSI14),
			macdValue, macdSignal, macdHistogram,
			bbUpper, bbMiddle, bbLower, bbPercentB,
			nullFloat(snapshot.ATR14), adx, plusDI, minusDI,
			stochK, stochD, nullFloat(snapshot.OBV), nullFloat(snapshot.Close),
		).
		Suffix("RETURNING id").
		RunWith(s.store.db)

	var id int64
	if err := query.QueryRow().Scan(&id); err != nil {
		return 0, errors.Wrap(errors.ErrCodeSnapshotWriteFailed, "failed to insert snapshot", err)
	}

	return id, nil
}

// Latest returns the most recent k snapshots ordered descending by computed_at.
func (s *SnapshotStore) Latest(symbol, interval string, k int) ([]types.Snapshot, error) {
	query := s.store.sq.
		Select(
			"id", "symbol", "interval", "computed_at",
			"sma20", "ema20", "rsi14",
			"macd_value", "macd_signal", "macd_histogram",
			"bb_upper", "bb_middle", "bb_lower", "bb_percent_b",
			"atr14", "adx", "plus_di", "minus_di",
			"stoch_k", "stoch_d", "obv", "close",
		).
		From("snapshots").
		Where(squirrel.Eq{"symbol": symbol, "interval": interval}).
		OrderBy("computed_at DESC", "id DESC").
		Limit(uint64(k)).
		RunWith(s.store.db)

	rows, err := query.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query snapshots", err)
	}
	defer rows.Close()

	snapshots := make([]types.Snapshot, 0, k)

	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}

		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate snapshots", err)
	}

	return snapshots, nil
}

func scanSnapshot(rows *sql.Rows) (types.Snapshot, error) {
	var (
		snapshot types.Snapshot

		sma20, ema20, rsi14                    sql.NullFloat64
		macdValue, macdSignal, macdHistogram   sql.NullFloat64
		bbUpper, bbMiddle, bbLower, bbPercentB sql.NullFloat64
		atr14, adx, plusDI, minusDI            sql.NullFloat64
		stochK, stochD, obv, close_            sql.NullFloat64
	)

	err := rows.Scan(
		&snapshot.ID, &snapshot.Symbol, &snapshot.Interval, &snapshot.ComputedAt,
		&sma20, &ema20, &rsi14,
		&macdValue, &macdSignal, &macdHistogram,
		&bbUpper, &bbMiddle, &bbLower, &bbPercentB,
		&atr14, &adx, &plusDI, &minusDI,
		&stochK, &stochD, &obv, &close_,
	)
	if err != nil {
		return types.Snapshot{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan snapshot", err)
	}

	snapshot.SMA20 = optFloat(sma20)
	snapshot.EMA20 = optFloat(ema20)
	snapshot.RSI14 = optFloat(rsi14)
	snapshot.ATR14 = optFloat(atr14)
	snapshot.OBV = optFloat(obv)
	snapshot.Close = optFloat(close_)

	if macdValue.Valid && macdSignal.Valid && macdHistogram.Valid {
		snapshot.MACD = optional.Some(types.MACDValue{
			MACD:      macdValue.Float64,
			Signal:    macdSignal.Float64,
			Histogram: macdHistogram.Float64,
		})
	}

	if bbUpper.Valid && bbMiddle.Valid && bbLower.Valid && bbPercentB.Valid {
		snapshot.Bollinger = optional.Some(types.BollingerValue{
			Upper:    bbUpper.Float64,
			Middle:   bbMiddle.Float64,
			Lower:    bbLower.Float64,
			PercentB: bbPercentB.Float64,
		})
	}

	if adx.Valid && plusDI.Valid && minusDI.Valid {
		snapshot.ADX14 = optional.Some(types.ADXValue{
			ADX:     adx.Float64,
			PlusDI:  plusDI.Float64,
			MinusDI: minusDI.Float64,
		})
	}

	if stochK.Valid && stochD.Valid {
		snapshot.Stochastic = optional.Some(types.StochasticValue{
			K: stochK.Float64,
			D: stochD.Float64,
		})
	}

	return snapshot, nil
}

func nullFloat(o optional.Option[float64]) any {
	if o.IsSome() {
		return o.Unwrap()
	}

	return nil
}

func optFloat(v sql.NullFloat64) optional.Option[float64] {
	if v.Valid {
		return optional.Some(v.Float64)
	}

	return optional.None[float64]()
}

func splitMACD(o optional.Option[types.MACDValue]) (any, any, any) {
	if o.IsNone() {
		return nil, nil, nil
	}

	v := o.Unwrap()

	return v.MACD, v.Signal, v.Histogram
}

func splitBollinger(o optional.Option[types.BollingerValue]) (any, any, any, any) {
	if o.IsNone() {
		return nil, nil, nil, nil
	}

	v := o.Unwrap()

	return v.Upper, v.Middle, v.Lower, v.PercentB
}

func splitADX(o optional.Option[types.ADXValue]) (any, any, any) {
	if o.IsNone() {
		return nil, nil, nil
	}

	v := o.Unwrap()

	return v.ADX, v.PlusDI, v.MinusDI
}

func splitStochastic(o optional.Option[types.StochasticValue]) (any, any) {
	if o.IsNone() {
		return nil, nil
	}

	v := o.Unwrap()

	return v.K, v.D
}
