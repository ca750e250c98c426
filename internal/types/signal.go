package types

import (
	"time"

	"github.com/arcadia-lab/sentinel-trading/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
)

// Action is the trade action recommended by the decision oracle.
type Action string

const (
	ActionShort      Action = "SHORT"
	ActionLong       Action = "LONG"
	ActionHold       Action = "HOLD"
	ActionWait       Action = "WAIT"
	ActionAdd        Action = "ADD"
	ActionClose      Action = "CLOSE"
	ActionMoveSL     Action = "MOVE_SL"
	ActionTakeProfit Action = "TAKE_PROFIT"
)

// EntryActions are the actions that open a new position.
func (a Action) OpensPosition() bool {
	return a == ActionLong || a == ActionShort
}

// ManagesPosition reports whether the action only makes sense against an
// already open position.
func (a Action) ManagesPosition() bool {
	switch a {
	case ActionHold, ActionAdd, ActionClose, ActionMoveSL, ActionTakeProfit:
		return true
	default:
		return false
	}
}

// SignalStatus is the lifecycle state of a persisted trading signal.
// PENDING is the only non-terminal state; EXECUTED and CANCELLED are terminal.
type SignalStatus string

const (
	SignalStatusPending   SignalStatus = "PENDING"
	SignalStatusExecuted  SignalStatus = "EXECUTED"
	SignalStatusCancelled SignalStatus = "CANCELLED"
)

// TradeResult is the recorded market outcome of an executed signal.
type TradeResult string

const (
	TradeResultWin       TradeResult = "WIN"
	TradeResultLoss      TradeResult = "LOSS"
	TradeResultBreakeven TradeResult = "BREAKEVEN"
)

// Decision is the structured output of the decision oracle.
//
// The struct tags double as the wire schema: json for the oracle response,
// jsonschema for the schema embedded in the prompt, validate for the
// post-decision checks.
type Decision struct {
	Action     Action  `json:"action" jsonschema:"title=Action,enum=SHORT,enum=LONG,enum=HOLD,enum=WAIT,enum=ADD,enum=CLOSE,enum=MOVE_SL,enum=TAKE_PROFIT" validate:"required,oneof=SHORT LONG HOLD WAIT ADD CLOSE MOVE_SL TAKE_PROFIT"`
	Confidence float64 `json:"confidence" jsonschema:"title=Confidence,description=Confidence in the action as a percentage,minimum=0,maximum=100" validate:"gte=0,lte=100"`
	EntryPrice float64 `json:"entryPrice" jsonschema:"title=Entry Price,exclusiveMinimum=0" validate:"required,gt=0"`
	StopLoss   float64 `json:"stopLoss" jsonschema:"title=Stop Loss,exclusiveMinimum=0" validate:"required,gt=0"`
	TakeProfit float64 `json:"takeProfit" jsonschema:"title=Take Profit,exclusiveMinimum=0" validate:"required,gt=0"`
	RRRatio    float64 `json:"rrRatio" jsonschema:"title=Risk/Reward Ratio,exclusiveMinimum=0" validate:"required,gt=0"`
}

// Validate checks the decision against the output schema.
func (d *Decision) Validate() error {
	validate := validator.New()
	if err := validate.Struct(d); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDecision, "decision failed schema validation", err)
	}

	return nil
}

// ValidateAgainstRange applies the price-consistency rules that the prompt
// states as guidance: entry inside the observed low..high range, and stop
// loss / take profit on the correct side of the entry for directional actions.
func (d *Decision) ValidateAgainstRange(low, high float64) error {
	if err := d.Validate(); err != nil {
		return err
	}

	if low > 0 && high > 0 && (d.EntryPrice < low || d.EntryPrice > high) {
		return errors.Newf(errors.ErrCodeInvalidDecision,
			"entry price %.4f outside observed range [%.4f, %.4f]", d.EntryPrice, low, high)
	}

	switch d.Action {
	case ActionLong:
		if d.StopLoss >= d.EntryPrice {
			return errors.Newf(errors.ErrCodeInvalidDecision,
				"LONG stop loss %.4f must be below entry %.4f", d.StopLoss, d.EntryPrice)
		}

		if d.TakeProfit <= d.EntryPrice {
			return errors.Newf(errors.ErrCodeInvalidDecision,
				"LONG take profit %.4f must be above entry %.4f", d.TakeProfit, d.EntryPrice)
		}
	case ActionShort:
		if d.StopLoss <= d.EntryPrice {
			return errors.Newf(errors.ErrCodeInvalidDecision,
				"SHORT stop loss %.4f must be above entry %.4f", d.StopLoss, d.EntryPrice)
		}

		if d.TakeProfit >= d.EntryPrice {
			return errors.Newf(errors.ErrCodeInvalidDecision,
				"SHORT take profit %.4f must be below entry %.4f", d.TakeProfit, d.EntryPrice)
		}
	default:
	}

	return nil
}

// TradingSignal is a persisted, state-machine-governed record of one
// oracle decision. Rows are created PENDING and only mutated through the
// guarded transitions of the signal store; they are never deleted.
type TradingSignal struct {
	ID         int64   `json:"id" csv:"id"`
	Symbol     string  `json:"symbol" csv:"symbol"`
	Action     Action  `json:"action" csv:"action"`
	Confidence float64 `json:"confidence" csv:"confidence"`
	EntryPrice float64 `json:"entry_price" csv:"entry_price"`
	StopLoss   float64 `json:"stop_loss" csv:"stop_loss"`
	TakeProfit float64 `json:"take_profit" csv:"take_profit"`
	RRRatio    float64 `json:"rr_ratio" csv:"rr_ratio"`

	Status    SignalStatus `json:"status" csv:"status"`
	Payload   string       `json:"payload" csv:"-"`
	CreatedAt time.Time    `json:"created_at" csv:"created_at"`

	ExecutedAt       optional.Option[time.Time] `json:"executed_at" csv:"-"`
	ExecutionOrderID optional.Option[string]    `json:"execution_order_id" csv:"-"`

	ClosePrice optional.Option[float64]     `json:"close_price" csv:"-"`
	PnL        optional.Option[float64]     `json:"pnl" csv:"-"`
	Result     optional.Option[TradeResult] `json:"result" csv:"-"`
}
