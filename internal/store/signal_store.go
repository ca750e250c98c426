package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/arcadia-lab/sentinel-trading/internal/types"
	"github.com/arcadia-lab/sentinel-trading/pkg/errors"
)

// SignalStore persists trading signals and guards their lifecycle
// transitions. The status column is the only shared resource requiring
// concurrency control in the system: execute and cancel are implemented as
// single conditional updates so that two concurrent callback deliveries for
// the same id resolve to exactly one winner.
type SignalStore struct {
	store *Store
}

// Create inserts a new signal with status PENDING and returns its id.
// The raw decision is stored alongside the typed columns as an audit payload.
func (s *SignalStore) Create(symbol string, decision types.Decision) (int64, error) {
	payload, err := json.Marshal(decision)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to encode decision payload", err)
	}

	query := s.store.sq.
		Insert("signals").
		Columns(
			"symbol", "action", "confidence", "entry_price", "stop_loss",
			"take_profit", "rr_ratio", "status", "payload", "created_at",
		).
		Values(
			symbol, string(decision.Action), decision.Confidence, decision.EntryPrice,
			decision.StopLoss, decision.TakeProfit, decision.RRRatio,
			string(types.SignalStatusPending), string(payload), time.Now().UTC(),
		).
		Suffix("RETURNING id").
		RunWith(s.store.db)

	var id int64
	if err := query.QueryRow().Scan(&id); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert signal", err)
	}

	return id, nil
}

// Get loads one signal by id.
func (s *SignalStore) Get(id int64) (types.TradingSignal, error) {
	query := s.store.sq.
		Select(signalColumns()...).
		From("signals").
		Where(squirrel.Eq{"id": id}).
		RunWith(s.store.db)

	rows, err := query.Query()
	if err != nil {
		return types.TradingSignal{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query signal", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return types.TradingSignal{}, errors.Newf(errors.ErrCodeSignalNotFound, "signal %d not found", id)
	}

	return scanSignal(rows)
}

// List returns all signals ordered descending by creation time.
func (s *SignalStore) List() ([]types.TradingSignal, error) {
	query := s.store.sq.
		Select(signalColumns()...).
		From("signals").
		OrderBy("created_at DESC", "id DESC").
		RunWith(s.store.db)

	rows, err := query.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query signals", err)
	}
	defer rows.Close()

	signals := make([]types.TradingSignal, 0)

	for rows.Next() {
		signal, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}

		signals = append(signals, signal)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate signals", err)
	}

	return signals, nil
}

// LatestExecuted returns the most recently executed signal for a symbol.
func (s *SignalStore) LatestExecuted(symbol string) (types.TradingSignal, error) {
	query := s.store.sq.
		Select(signalColumns()...).
		From("signals").
		Where(squirrel.Eq{"symbol": symbol, "status": string(types.SignalStatusExecuted)}).
		OrderBy("executed_at DESC", "id DESC").
		Limit(1).
		RunWith(s.store.db)

	rows, err := query.Query()
	if err != nil {
		return types.TradingSignal{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query signals", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return types.TradingSignal{}, errors.Newf(errors.ErrCodeSignalNotFound, "no executed signal for %s", symbol)
	}

	return scanSignal(rows)
}

// Execute transitions PENDING → EXECUTED, recording the execution time and
// the exchange order reference. The check-and-set runs as one conditional
// update; when the signal is no longer PENDING the call is a no-op and an
// ErrCodeAlreadyProcessed error reports the current status so the caller
// does not re-issue an exchange order.
func (s *SignalStore) Execute(id int64, orderID string) error {
	query := s.store.sq.
		Update("signals").
		Set("status", string(types.SignalStatusExecuted)).
		Set("executed_at", time.Now().UTC()).
		Set("execution_order_id", orderID).
		Where(squirrel.Eq{"id": id, "status": string(types.SignalStatusPending)}).
		RunWith(s.store.db)

	return s.runGuardedTransition(id, query)
}

// Cancel transitions PENDING → CANCELLED under the same guard as Execute.
func (s *SignalStore) Cancel(id int64) error {
	query := s.store.sq.
		Update("signals").
		Set("status", string(types.SignalStatusCancelled)).
		Where(squirrel.Eq{"id": id, "status": string(types.SignalStatusPending)}).
		RunWith(s.store.db)

	return s.runGuardedTransition(id, query)
}

// Close records the market outcome against an already-executed signal.
// Closing a signal that is not EXECUTED is rejected.
func (s *SignalStore) Close(id int64, closePrice, pnl float64, result types.TradeResult) error {
	signal, err := s.Get(id)
	if err != nil {
		return err
	}

	if signal.Status != types.SignalStatusExecuted {
		return errors.Newf(errors.ErrCodeSignalNotExecuted,
			"cannot close signal %d in status %s", id, signal.Status)
	}

	query := s.store.sq.
		Update("signals").
		Set("close_price", closePrice).
		Set("pnl", pnl).
		Set("result", string(result)).
		Where(squirrel.Eq{"id": id, "status": string(types.SignalStatusExecuted)}).
		RunWith(s.store.db)

	res, err := query.Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to close signal", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to read close result", err)
	}

	if affected == 0 {
		return errors.Newf(errors.ErrCodeSignalNotExecuted, "signal %d left EXECUTED before close", id)
	}

	return nil
}

// runGuardedTransition executes a conditional status update and converts a
// zero-row result into the appropriate typed outcome.
func (s *SignalStore) runGuardedTransition(id int64, query squirrel.UpdateBuilder) error {
	res, err := query.Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to update signal status", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to read update result", err)
	}

	if affected > 0 {
		return nil
	}

	// Lost the race or the id does not exist; report which.
	signal, err := s.Get(id)
	if err != nil {
		return err
	}

	return errors.Newf(errors.ErrCodeAlreadyProcessed,
		"signal %d already processed (status %s)", id, signal.Status)
}

// PnL computes the profit or loss of a directional trade in quote currency
// using decimal arithmetic, positive when the trade won.
func PnL(action types.Action, entryPrice, closePrice, size float64) float64 {
	entry := decimal.NewFromFloat(entryPrice)
	exit := decimal.NewFromFloat(closePrice)
	qty := decimal.NewFromFloat(size)

	diff := exit.Sub(entry)
	if action == types.ActionShort {
		diff = entry.Sub(exit)
	}

	pnl, _ := diff.Mul(qty).Float64()

	return pnl
}

// Outcome classifies a PnL value as a trade result.
func Outcome(pnl float64) types.TradeResult {
	switch {
	case pnl > 0:
		return types.TradeResultWin
	case pnl < 0:
		return types.TradeResultLoss
	default:
		return types.TradeResultBreakeven
	}
}

func signalColumns() []string {
	return []string{
		"id", "symbol", "action", "confidence", "entry_price", "stop_loss",
		"take_profit", "rr_ratio", "status", "payload", "created_at",
		"executed_at", "execution_order_id", "close_price", "pnl", "result",
	}
}

func scanSignal(rows *sql.Rows) (types.TradingSignal, error) {
	var (
		signal types.TradingSignal

		action, status   string
		executedAt       sql.NullTime
		executionOrderID sql.NullString
		closePrice, pnl  sql.NullFloat64
		result           sql.NullString
	)

	err := rows.Scan(
		&signal.ID, &signal.Symbol, &action, &signal.Confidence, &signal.EntryPrice,
		&signal.StopLoss, &signal.TakeProfit, &signal.RRRatio, &status, &signal.Payload,
		&signal.CreatedAt, &executedAt, &executionOrderID, &closePrice, &pnl, &result,
	)
	if err != nil {
		return types.TradingSignal{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan signal", err)
	}

	signal.Action = types.Action(action)
	signal.Status = types.SignalStatus(status)

	if executedAt.Valid {
		signal.ExecutedAt = optional.Some(executedAt.Time)
	}

	if executionOrderID.Valid {
		signal.ExecutionOrderID = optional.Some(executionOrderID.String)
	}

	signal.ClosePrice = optFloat(closePrice)
	signal.PnL = optFloat(pnl)

	if result.Valid {
		signal.Result = optional.Some(types.TradeResult(result.String))
	}

	return signal, nil
}
