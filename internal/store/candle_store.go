package store

import (
	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/arcadia-lab/sentinel-trading/internal/types"
	"github.com/arcadia-lab/sentinel-trading/pkg/errors"
)

// CandleStore persists OHLCV candles. Rows are append-only: an upsert on an
// existing (symbol, interval, open_time) identity is a no-op and never
// overwrites the originally stored fields.
type CandleStore struct {
	store *Store
}

// Upsert inserts the candle if its identity is new. Returns true when a row
// was actually inserted.
func (c *CandleStore) Upsert(candle types.Candle) (bool, error) {
	query := c.store.sq.
		Insert("candles").
		Columns("symbol", "interval", "open_time", "close_time", "open", "high", "low", "close", "volume").
		Values(
			candle.Symbol, candle.Interval, candle.OpenTime.UTC(), candle.CloseTime.UTC(),
			candle.Open, candle.High, candle.Low, candle.Close, candle.Volume,
		).
		Suffix("ON CONFLICT (symbol, interval, open_time) DO NOTHING").
		RunWith(c.store.db)

	res, err := query.Exec()
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to upsert candle", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read upsert result", err)
	}

	return affected > 0, nil
}

// UpsertBatch ingests a batch of candles with per-row failure tolerance: a
// failing row is logged and skipped, the rest of the batch continues.
// Returns the number of rows actually inserted.
func (c *CandleStore) UpsertBatch(candles []types.Candle) int {
	inserted := 0

	for _, candle := range candles {
		ok, err := c.Upsert(candle)
		if err != nil {
			c.store.logger.Error("Failed to ingest candle",
				zap.String("symbol", candle.Symbol),
				zap.String("interval", candle.Interval),
				zap.Time("open_time", candle.OpenTime),
				zap.Error(err),
			)

			continue
		}

		if ok {
			inserted++
		}
	}

	return inserted
}

// Latest returns the most recent limit candles ordered descending by
// open_time. Callers reverse the slice when they need chronological order.
func (c *CandleStore) Latest(symbol, interval string, limit int) ([]types.Candle, error) {
	query := c.store.sq.
		Select("symbol", "interval", "open_time", "close_time", "open", "high", "low", "close", "volume").
		From("candles").
		Where(squirrel.Eq{"symbol": symbol, "interval": interval}).
		OrderBy("open_time DESC").
		Limit(uint64(limit)).
		RunWith(c.store.db)

	rows, err := query.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query candles", err)
	}
	defer rows.Close()

	candles := make([]types.Candle, 0, limit)

	for rows.Next() {
		var candle types.Candle

		err := rows.Scan(
			&candle.Symbol, &candle.Interval, &candle.OpenTime, &candle.CloseTime,
			&candle.Open, &candle.High, &candle.Low, &candle.Close, &candle.Volume,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan candle", err)
		}

		candles = append(candles, candle)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate candles", err)
	}

	return candles, nil
}

// Count returns the number of stored candles for a symbol/interval.
func (c *CandleStore) Count(symbol, interval string) (int, error) {
	var count int

	query := c.store.sq.
		Select("COUNT(*)").
		From("candles").
		Where(squirrel.Eq{"symbol": symbol, "interval": interval}).
		RunWith(c.store.db)

	if err := query.QueryRow().Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count candles", err)
	}

	return count, nil
}
