// Package orchestrator drives the signal lifecycle: scheduled pipeline
// ticks from market data to Telegram notification, and callback handling
// that turns a human confirmation into at most one exchange order.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/arcadia-lab/sentinel-trading/internal/analysis"
	"github.com/arcadia-lab/sentinel-trading/internal/config"
	"github.com/arcadia-lab/sentinel-trading/internal/exchange"
	"github.com/arcadia-lab/sentinel-trading/internal/gate"
	"github.com/arcadia-lab/sentinel-trading/internal/indicator"
	"github.com/arcadia-lab/sentinel-trading/internal/logger"
	"github.com/arcadia-lab/sentinel-trading/internal/marketdata"
	"github.com/arcadia-lab/sentinel-trading/internal/notify"
	"github.com/arcadia-lab/sentinel-trading/internal/store"
	"github.com/arcadia-lab/sentinel-trading/internal/types"
	"github.com/arcadia-lab/sentinel-trading/pkg/errors"
)

// Oracle is the decision port; failures surface as None, never as errors.
type Oracle interface {
	Decide(ctx context.Context, payload analysis.Payload, position optional.Option[types.Position]) optional.Option[types.Decision]
}

// Orchestrator owns the tick pipeline and the callback state transitions.
type Orchestrator struct {
	config   *config.Config
	store    *store.Store
	engine   *indicator.Engine
	provider marketdata.Provider
	exchange exchange.Exchange
	oracle   Oracle
	notifier notify.Notifier
	logger   *logger.Logger

	// one run lock per (symbol, interval); an overrunning tick causes the
	// next scheduled one to be skipped instead of queued.
	runLocks sync.Map
}

// New wires the orchestrator.
func New(
	cfg *config.Config,
	st *store.Store,
	engine *indicator.Engine,
	provider marketdata.Provider,
	exch exchange.Exchange,
	oracle Oracle,
	notifier notify.Notifier,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		config:   cfg,
		store:    st,
		engine:   engine,
		provider: provider,
		exchange: exch,
		oracle:   oracle,
		notifier: notifier,
		logger:   log,
	}
}

// Run ticks on every interval boundary (UTC-aligned) until the context is
// cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	duration, ok := types.IntervalDuration(o.config.Interval)
	if !ok {
		return errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval %q", o.config.Interval)
	}

	o.logger.Info("Scheduler started",
		zap.String("symbol", o.config.Symbol),
		zap.String("interval", o.config.Interval),
		zap.Duration("period", duration),
	)

	for {
		next := time.Now().UTC().Truncate(duration).Add(duration)
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()

			return ctx.Err()
		case <-timer.C:
			if err := o.Tick(ctx); err != nil && !errors.HasCode(err, errors.ErrCodeTickInFlight) {
				o.logger.Error("Tick failed", zap.Error(err))
			}
		}
	}
}

// Tick runs one pipeline pass. Stage failures end the tick; durable side
// effects already committed (ingested candle, stored snapshot) stay.
func (o *Orchestrator) Tick(ctx context.Context) error {
	symbol, interval := o.config.Symbol, o.config.Interval

	lockKey := symbol + "/" + interval
	lockAny, _ := o.runLocks.LoadOrStore(lockKey, &sync.Mutex{})
	lock := lockAny.(*sync.Mutex)

	if !lock.TryLock() {
		o.logger.Warn("Skipping tick, previous run still in flight",
			zap.String("symbol", symbol),
			zap.String("interval", interval),
		)

		return errors.Newf(errors.ErrCodeTickInFlight, "tick for %s already running", lockKey)
	}
	defer lock.Unlock()

	candle, err := o.fetchCandle(ctx, symbol, interval)
	if err != nil {
		return o.failStage("fetch", err)
	}

	inserted, err := o.store.Candles().Upsert(candle)
	if err != nil {
		return o.failStage("ingest", err)
	}

	if inserted {
		o.logger.Info("Ingested candle",
			zap.String("symbol", symbol),
			zap.Time("open_time", candle.OpenTime),
			zap.Float64("close", candle.Close),
		)
	} else {
		o.logger.Debug("Candle already ingested",
			zap.String("symbol", symbol),
			zap.Time("open_time", candle.OpenTime),
		)
	}

	window, err := o.loadWindow(symbol, interval)
	if err != nil {
		return o.failStage("window", err)
	}

	snapshot, err := o.engine.ComputeAndRecord(symbol, interval, window)
	if err != nil {
		return o.failStage("snapshot", err)
	}

	position, err := o.fetchPosition(ctx, symbol)
	if err != nil {
		return o.failStage("position", err)
	}

	shouldCall, observations := gate.ShouldCallOracle(snapshot)
	if position.IsSome() {
		// manage the open position every tick regardless of the gate
		shouldCall = true
	}

	if !shouldCall {
		o.logger.Info("Gate closed, skipping oracle",
			zap.String("symbol", symbol),
			zap.Int("observations", len(observations)),
		)

		return nil
	}

	history, err := o.loadHistory(symbol, interval, snapshot.ID)
	if err != nil {
		return o.failStage("history", err)
	}

	payload := analysis.BuildPayload(snapshot, window, history, observations)

	decideCtx, cancel := context.WithTimeout(ctx, o.config.CallTimeout)
	decision := o.oracle.Decide(decideCtx, payload, position)

	cancel()

	choice, err := decision.Take()
	if err != nil {
		o.logger.Info("Oracle returned no decision", zap.String("symbol", symbol))

		return nil
	}

	// every decision is persisted and surfaced, HOLD/WAIT included; the
	// operator sees the full recommendation trail
	id, err := o.store.Signals().Create(symbol, choice)
	if err != nil {
		return o.failStage("create", err)
	}

	notifyCtx, cancel := context.WithTimeout(ctx, o.config.CallTimeout)
	defer cancel()

	if err := o.notifier.Notify(notifyCtx, id, symbol, choice); err != nil {
		// the signal row stays PENDING; it is still actionable later
		return o.failStage("notify", err)
	}

	o.logger.Info("Signal created and notified",
		zap.Int64("signal_id", id),
		zap.String("symbol", symbol),
		zap.String("action", string(choice.Action)),
		zap.Float64("confidence", choice.Confidence),
	)

	return nil
}

func (o *Orchestrator) fetchCandle(ctx context.Context, symbol, interval string) (types.Candle, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.config.CallTimeout)
	defer cancel()

	return o.provider.LastClosedCandle(callCtx, symbol, interval)
}

func (o *Orchestrator) fetchPosition(ctx context.Context, symbol string) (optional.Option[types.Position], error) {
	callCtx, cancel := context.WithTimeout(ctx, o.config.CallTimeout)
	defer cancel()

	return o.exchange.GetPosition(callCtx, symbol)
}

// loadWindow returns the trailing candle window in chronological order.
func (o *Orchestrator) loadWindow(symbol, interval string) ([]types.Candle, error) {
	latest, err := o.store.Candles().Latest(symbol, interval, o.config.CandleLimit)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(latest)-1; i < j; i, j = i+1, j-1 {
		latest[i], latest[j] = latest[j], latest[i]
	}

	return latest, nil
}

// loadHistory returns the trailing stored snapshots, excluding the one just
// recorded for this tick.
func (o *Orchestrator) loadHistory(symbol, interval string, currentID int64) ([]types.Snapshot, error) {
	latest, err := o.store.Snapshots().Latest(symbol, interval, o.config.SnapshotHistory+1)
	if err != nil {
		return nil, err
	}

	history := make([]types.Snapshot, 0, len(latest))

	for _, snapshot := range latest {
		if snapshot.ID == currentID {
			continue
		}

		history = append(history, snapshot)
	}

	if len(history) > o.config.SnapshotHistory {
		history = history[:o.config.SnapshotHistory]
	}

	return history, nil
}

func (o *Orchestrator) failStage(stage string, err error) error {
	o.logger.Error("Tick aborted",
		zap.String("stage", stage),
		zap.Error(err),
	)

	return errors.Wrapf(errors.ErrCodeTickFailed, err, "tick stage %s failed", stage)
}

// HandleCallback applies a human confirmation to a signal. Exchange effects
// run before the status transition so a crash between the two leaves a
// PENDING row and an exchange-side idempotency key rather than a marked
// signal without an order.
func (o *Orchestrator) HandleCallback(ctx context.Context, event types.CallbackEvent) error {
	signal, err := o.store.Signals().Get(event.SignalID)
	if err != nil {
		o.answer(ctx, event.QueryID, "signal not found")

		return err
	}

	if signal.Status != types.SignalStatusPending {
		o.answer(ctx, event.QueryID, fmt.Sprintf("already processed (%s)", signal.Status))

		return nil
	}

	switch event.Verb {
	case types.CallbackVerbExecute:
		return o.executeSignal(ctx, event, signal)
	case types.CallbackVerbDiscard:
		return o.discardSignal(ctx, event)
	default:
		return errors.Newf(errors.ErrCodeInvalidCallback, "unknown callback verb %q", event.Verb)
	}
}

func (o *Orchestrator) executeSignal(ctx context.Context, event types.CallbackEvent, signal types.TradingSignal) error {
	if !isExecutable(signal.Action) {
		// HOLD, WAIT, ADD, MOVE_SL carry no direct order; reject the
		// confirmation and fold the signal away.
		if err := o.store.Signals().Cancel(signal.ID); err != nil &&
			!errors.HasCode(err, errors.ErrCodeAlreadyProcessed) {
			return err
		}

		o.answer(ctx, event.QueryID, fmt.Sprintf("%s is not executable, discarded", signal.Action))

		return nil
	}

	orderID, err := o.placeOrder(ctx, signal)
	if err != nil {
		o.answer(ctx, event.QueryID, "execution failed")
		o.sendText(ctx, fmt.Sprintf("Signal #%d execution failed: %v", signal.ID, err))

		return err
	}

	if err := o.store.Signals().Execute(signal.ID, orderID); err != nil {
		if errors.HasCode(err, errors.ErrCodeAlreadyProcessed) {
			// lost the race after the exchange call; the orderLinkId key
			// guarantees the concurrent winner placed the same order once
			o.logger.Warn("Signal transitioned concurrently after order placement",
				zap.Int64("signal_id", signal.ID),
				zap.String("order_id", orderID),
			)
			o.answer(ctx, event.QueryID, "already processed (EXECUTED)")

			return nil
		}

		return err
	}

	o.answer(ctx, event.QueryID, "executed")
	o.sendText(ctx, fmt.Sprintf("Signal #%d executed: %s %s, order %s",
		signal.ID, signal.Action, signal.Symbol, orderID))

	return nil
}

// isExecutable reports whether the action maps onto a direct exchange order.
func isExecutable(action types.Action) bool {
	switch action {
	case types.ActionLong, types.ActionShort, types.ActionClose, types.ActionTakeProfit:
		return true
	default:
		return false
	}
}

// placeOrder maps the signal action onto an exchange call and returns the
// order id.
func (o *Orchestrator) placeOrder(ctx context.Context, signal types.TradingSignal) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.config.CallTimeout)
	defer cancel()

	// opens and closes share the signal-derived idempotency key, so a
	// duplicate confirmation repeats the same exchange-side order
	orderLinkID := fmt.Sprintf("signal-%d", signal.ID)

	if signal.Action == types.ActionClose || signal.Action == types.ActionTakeProfit {
		return o.exchange.ClosePosition(callCtx, signal.Symbol, orderLinkID)
	}

	side := types.PositionSideBuy
	if signal.Action == types.ActionShort {
		side = types.PositionSideSell
	}

	return o.exchange.OpenPosition(callCtx, exchange.OpenPositionParams{
		Symbol:      signal.Symbol,
		Side:        side,
		Qty:         o.config.PositionSize,
		Leverage:    int(o.config.Leverage),
		TakeProfit:  optional.Some(signal.TakeProfit),
		StopLoss:    optional.Some(signal.StopLoss),
		OrderLinkID: orderLinkID,
	})
}

func (o *Orchestrator) discardSignal(ctx context.Context, event types.CallbackEvent) error {
	err := o.store.Signals().Cancel(event.SignalID)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeAlreadyProcessed) {
			signal, getErr := o.store.Signals().Get(event.SignalID)
			if getErr == nil {
				o.answer(ctx, event.QueryID, fmt.Sprintf("already processed (%s)", signal.Status))
			}

			return nil
		}

		return err
	}

	o.answer(ctx, event.QueryID, "discarded")
	o.sendText(ctx, fmt.Sprintf("Signal #%d discarded", event.SignalID))

	return nil
}

func (o *Orchestrator) answer(ctx context.Context, queryID, text string) {
	if queryID == "" {
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, o.config.CallTimeout)
	defer cancel()

	if err := o.notifier.AnswerCallback(callCtx, queryID, text); err != nil {
		o.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}

func (o *Orchestrator) sendText(ctx context.Context, text string) {
	callCtx, cancel := context.WithTimeout(ctx, o.config.CallTimeout)
	defer cancel()

	if err := o.notifier.SendText(callCtx, text); err != nil {
		o.logger.Warn("Failed to send status message", zap.Error(err))
	}
}
