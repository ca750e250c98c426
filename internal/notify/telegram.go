// Package notify is the human-confirmation gateway: outbound Telegram
// messages carrying execute/discard choices, and the inbound webhook that
// turns button presses into callback events.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/arcadia-lab/sentinel-trading/internal/logger"
	"github.com/arcadia-lab/sentinel-trading/internal/types"
	"github.com/arcadia-lab/sentinel-trading/pkg/errors"
)

const defaultAPIBase = "https://api.telegram.org"

// Doer abstracts the HTTP client for tests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Notifier is the outbound messaging port consumed by the orchestrator.
type Notifier interface {
	Notify(ctx context.Context, id int64, symbol string, decision types.Decision) error
	SendText(ctx context.Context, text string) error
	AnswerCallback(ctx context.Context, queryID, text string) error
}

// TelegramConfig holds the Bot API credentials and target chat.
type TelegramConfig struct {
	BotToken string
	ChatID   string

	// APIBase overrides the Bot API host, used by tests.
	APIBase string
}

// TelegramClient sends messages through the Telegram Bot API.
type TelegramClient struct {
	config     TelegramConfig
	httpClient Doer
	logger     *logger.Logger
}

// NewTelegramClient creates the client. A nil httpClient falls back to a
// timeout-guarded default.
func NewTelegramClient(config TelegramConfig, httpClient Doer, logger *logger.Logger) *TelegramClient {
	if config.APIBase == "" {
		config.APIBase = defaultAPIBase
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &TelegramClient{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

var _ Notifier = (*TelegramClient)(nil)

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// Notify sends the new-signal summary with the execute/discard keyboard.
func (t *TelegramClient) Notify(ctx context.Context, id int64, symbol string, decision types.Decision) error {
	text := fmt.Sprintf(
		"*New signal #%d*\n"+
			"Symbol: %s\n"+
			"Action: *%s*\n"+
			"Confidence: %.0f%%\n"+
			"Entry: %.4f\n"+
			"Stop loss: %.4f\n"+
			"Take profit: %.4f\n"+
			"R/R: %.2f",
		id, symbol, decision.Action, decision.Confidence,
		decision.EntryPrice, decision.StopLoss, decision.TakeProfit, decision.RRRatio,
	)

	body := map[string]any{
		"chat_id":    t.config.ChatID,
		"text":       text,
		"parse_mode": "Markdown",
		"reply_markup": map[string]any{
			"inline_keyboard": [][]inlineButton{{
				{Text: "✅ Execute", CallbackData: types.CallbackData(types.CallbackVerbExecute, id)},
				{Text: "❌ Discard", CallbackData: types.CallbackData(types.CallbackVerbDiscard, id)},
			}},
		},
	}

	if err := t.call(ctx, "sendMessage", body); err != nil {
		return err
	}

	t.logger.Info("Sent signal notification",
		zap.Int64("signal_id", id),
		zap.String("symbol", symbol),
		zap.String("action", string(decision.Action)),
	)

	return nil
}

// SendText sends a plain status message to the configured chat.
func (t *TelegramClient) SendText(ctx context.Context, text string) error {
	return t.call(ctx, "sendMessage", map[string]any{
		"chat_id": t.config.ChatID,
		"text":    text,
	})
}

// AnswerCallback acks an inline-button press so the client stops the
// loading spinner.
func (t *TelegramClient) AnswerCallback(ctx context.Context, queryID, text string) error {
	body := map[string]any{"callback_query_id": queryID}
	if text != "" {
		body["text"] = text
	}

	return t.call(ctx, "answerCallbackQuery", body)
}

func (t *TelegramClient) call(ctx context.Context, method string, body map[string]any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotifyFailed, "failed to encode telegram request", err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", t.config.APIBase, t.config.BotToken, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotifyFailed, "failed to build telegram request", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeNotifyFailed, err, "telegram %s failed", method)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)

		return errors.Newf(errors.ErrCodeNotifyFailed,
			"telegram %s returned status %d: %s", method, resp.StatusCode, respBody)
	}

	return nil
}
