// Package oracle adapts an OpenAI-style chat-completions endpoint into a
// trading decision source. The adapter is failure-silent:
// transport errors, bad responses and schema violations all collapse to
// "no decision this tick" so one flaky oracle call never aborts the
// pipeline or raises a spurious signal.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/arcadia-lab/sentinel-trading/internal/analysis"
	"github.com/arcadia-lab/sentinel-trading/internal/logger"
	"github.com/arcadia-lab/sentinel-trading/internal/types"
	"github.com/arcadia-lab/sentinel-trading/pkg/errors"
)

// Doer abstracts the HTTP client for tests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the oracle endpoint settings.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
}

// Client calls the chat-completions endpoint and parses structured
// decisions out of the JSON-mode response.
type Client struct {
	config     Config
	httpClient Doer
	logger     *logger.Logger
	schema     string
}

// NewClient creates an oracle client. The response schema is reflected once
// from the decision struct and embedded verbatim in every system prompt.
func NewClient(config Config, httpClient Doer, logger *logger.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	reflector := jsonschema.Reflector{DoNotReference: true}

	schemaBytes, err := json.MarshalIndent(reflector.Reflect(&types.Decision{}), "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeOracleUnavailable, "failed to build decision schema", err)
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
		schema:     string(schemaBytes),
	}, nil
}

type chatRequest struct {
	Model          string         `json:"model"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
	Messages       []chatMessage  `json:"messages"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Decide asks the oracle for a decision on the payload. A Some position
// switches the prompt into position-management mode. All failure paths log
// and return None.
func (c *Client) Decide(
	ctx context.Context,
	payload analysis.Payload,
	position optional.Option[types.Position],
) optional.Option[types.Decision] {
	decision, err := c.decide(ctx, payload, position)
	if err != nil {
		c.logger.Warn("Oracle produced no decision",
			zap.String("symbol", payload.Symbol),
			zap.Error(err),
		)

		return optional.None[types.Decision]()
	}

	return optional.Some(decision)
}

func (c *Client) decide(
	ctx context.Context,
	payload analysis.Payload,
	position optional.Option[types.Position],
) (types.Decision, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return types.Decision{}, errors.Wrap(errors.ErrCodeOracleBadResponse, "failed to encode payload", err)
	}

	userContent := fmt.Sprintf("Market analysis payload:\n%s", payloadJSON)

	if pos, posErr := position.Take(); posErr == nil {
		positionJSON, marshalErr := json.Marshal(pos)
		if marshalErr != nil {
			return types.Decision{}, errors.Wrap(errors.ErrCodeOracleBadResponse, "failed to encode position", marshalErr)
		}

		userContent += fmt.Sprintf("\n\nCurrently open position:\n%s", positionJSON)
	}

	request := chatRequest{
		Model:          c.config.Model,
		Temperature:    c.config.Temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt(position.IsSome())},
			{Role: "user", Content: userContent},
		},
	}

	body, err := json.Marshal(request)
	if err != nil {
		return types.Decision{}, errors.Wrap(errors.ErrCodeOracleBadResponse, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return types.Decision{}, errors.Wrap(errors.ErrCodeOracleUnavailable, "failed to build request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.Decision{}, errors.Wrap(errors.ErrCodeOracleUnavailable, "oracle request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Decision{}, errors.Wrap(errors.ErrCodeOracleUnavailable, "failed to read oracle response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return types.Decision{}, errors.Newf(errors.ErrCodeOracleUnavailable,
			"oracle returned status %d: %s", resp.StatusCode, respBody)
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return types.Decision{}, errors.Wrap(errors.ErrCodeOracleBadResponse, "failed to decode oracle response", err)
	}

	if len(chat.Choices) == 0 {
		return types.Decision{}, errors.New(errors.ErrCodeOracleBadResponse, "oracle response has no choices")
	}

	var decision types.Decision
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &decision); err != nil {
		return types.Decision{}, errors.Wrap(errors.ErrCodeOracleBadResponse, "oracle content is not a decision", err)
	}

	if err := decision.ValidateAgainstRange(payload.WindowLow, payload.WindowHigh); err != nil {
		return types.Decision{}, errors.Wrap(errors.ErrCodeOracleSchemaRejected, "oracle decision rejected", err)
	}

	return decision, nil
}

func (c *Client) systemPrompt(hasPosition bool) string {
	if hasPosition {
		return fmt.Sprintf(`You are a cryptocurrency position manager reviewing an open futures position.
Given the market analysis payload and the open position, respond with exactly one JSON object.
Prefer HOLD unless the market clearly moved; use CLOSE to exit, MOVE_SL to trail the stop,
TAKE_PROFIT to realize gains, ADD only on strong continuation.
Entry price, stop loss and take profit must restate the managed levels and stay positive.

The JSON object must conform to this schema:
%s`, c.schema)
	}

	return fmt.Sprintf(`You are a cryptocurrency trading analyst. Given the market analysis payload,
respond with exactly one JSON object describing your decision.
Rules:
- entryPrice must be within 1%% of the current price and inside the observed window range.
- For LONG: stopLoss below entryPrice, takeProfit above entryPrice.
- For SHORT: stopLoss above entryPrice, takeProfit below entryPrice.
- rrRatio is (takeProfit distance) / (stopLoss distance); recommend at least 2.0.
- Use WAIT or HOLD when the setup is not convincing.

The JSON object must conform to this schema:
%s`, c.schema)
}
