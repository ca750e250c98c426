package store

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/arcadia-lab/sentinel-trading/internal/logger"
)

// Store owns the DuckDB handle and the persisted schema: candles, indicator
// snapshots and trading signals. Use ":memory:" as path for ephemeral storage.
type Store struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewStore opens (or creates) the database at path.
func NewStore(path string, logger *logger.Logger) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the tables and sequences if they do not exist.
func (s *Store) Initialize() error {
	_, err := s.db.Exec(`CREATE SEQUENCE IF NOT EXISTS snapshot_id_seq`)
	if err != nil {
		return fmt.Errorf("failed to create snapshot sequence: %w", err)
	}

	_, err = s.db.Exec(`CREATE SEQUENCE IF NOT EXISTS signal_id_seq`)
	if err != nil {
		return fmt.Errorf("failed to create signal sequence: %w", err)
	}

	// candle identity is (symbol, interval, open_time)
	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS candles (
			symbol TEXT NOT NULL,
			interval TEXT NOT NULL,
			open_time TIMESTAMP NOT NULL,
			close_time TIMESTAMP NOT NULL,
			open DOUBLE NOT NULL,
			high DOUBLE NOT NULL,
			low DOUBLE NOT NULL,
			close DOUBLE NOT NULL,
			volume DOUBLE NOT NULL,
			PRIMARY KEY (symbol, interval, open_time)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create candles table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id BIGINT PRIMARY KEY DEFAULT nextval('snapshot_id_seq'),
			symbol TEXT NOT NULL,
			interval TEXT NOT NULL,
			computed_at TIMESTAMP NOT NULL,
			sma20 DOUBLE,
			ema20 DOUBLE,
			rsi14 DOUBLE,
			macd_value DOUBLE,
			macd_signal DOUBLE,
			macd_histogram DOUBLE,
			bb_upper DOUBLE,
			bb_middle DOUBLE,
			bb_lower DOUBLE,
			bb_percent_b DOUBLE,
			atr14 DOUBLE,
			adx DOUBLE,
			plus_di DOUBLE,
			minus_di DOUBLE,
			stoch_k DOUBLE,
			stoch_d DOUBLE,
			obv DOUBLE,
			close DOUBLE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create snapshots table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS signals (
			id BIGINT PRIMARY KEY DEFAULT nextval('signal_id_seq'),
			symbol TEXT NOT NULL,
			action TEXT NOT NULL,
			confidence DOUBLE NOT NULL,
			entry_price DOUBLE NOT NULL,
			stop_loss DOUBLE NOT NULL,
			take_profit DOUBLE NOT NULL,
			rr_ratio DOUBLE NOT NULL,
			status TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			executed_at TIMESTAMP,
			execution_order_id TEXT,
			close_price DOUBLE,
			pnl DOUBLE,
			result TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create signals table: %w", err)
	}

	return nil
}

// Candles returns the candle store view.
func (s *Store) Candles() *CandleStore {
	return &CandleStore{store: s}
}

// Snapshots returns the indicator snapshot store view.
func (s *Store) Snapshots() *SnapshotStore {
	return &SnapshotStore{store: s}
}

// Signals returns the trading signal store view.
func (s *Store) Signals() *SignalStore {
	return &SignalStore{store: s}
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
