package exchange

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/arcadia-lab/sentinel-trading/internal/logger"
	"github.com/arcadia-lab/sentinel-trading/internal/types"
	"github.com/arcadia-lab/sentinel-trading/pkg/errors"
)

const (
	defaultRecvWindow = "5000"

	// retCodeLeverageNotModified is returned when set-leverage repeats the
	// current leverage; it is not a failure for our purposes.
	retCodeLeverageNotModified = 110043
)

// BybitConfig holds the REST endpoint credentials.
type BybitConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string
}

// BybitClient is a Bybit v5 REST client scoped to linear perpetuals.
type BybitClient struct {
	config     BybitConfig
	httpClient Doer
	logger     *logger.Logger
}

// NewBybitClient creates the client. A nil httpClient falls back to a
// timeout-guarded default.
func NewBybitClient(config BybitConfig, httpClient Doer, logger *logger.Logger) *BybitClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &BybitClient{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

var _ Exchange = (*BybitClient)(nil)

// envelope is the common Bybit v5 response wrapper. A non-zero retCode is a
// domain-level rejection delivered with HTTP 200.
type envelope struct {
	RetCode int             `json:"retCode"`
	RetMsg  string          `json:"retMsg"`
	Result  json.RawMessage `json:"result"`
}

// DomainError is the typed cause attached to retCode rejections so callers
// can tolerate specific codes.
type DomainError struct {
	RetCode int
	RetMsg  string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("retCode %d: %s", e.RetCode, e.RetMsg)
}

type klineResult struct {
	List [][]string `json:"list"`
}

type positionResult struct {
	List []struct {
		Symbol        string `json:"symbol"`
		Side          string `json:"side"`
		Size          string `json:"size"`
		AvgPrice      string `json:"avgPrice"`
		MarkPrice     string `json:"markPrice"`
		Leverage      string `json:"leverage"`
		UnrealisedPnl string `json:"unrealisedPnl"`
		TakeProfit    string `json:"takeProfit"`
		StopLoss      string `json:"stopLoss"`
	} `json:"list"`
}

type orderResult struct {
	OrderID     string `json:"orderId"`
	OrderLinkID string `json:"orderLinkId"`
}

// GetCandles fetches up to limit klines and returns them in chronological
// order. Bybit serves the list newest first.
func (b *BybitClient) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]types.Candle, error) {
	params := url.Values{}
	params.Set("category", "linear")
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))

	var result klineResult
	if err := b.get(ctx, "/v5/market/kline", params, &result); err != nil {
		return nil, err
	}

	duration, ok := types.IntervalDuration(interval)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval %q", interval)
	}

	candles := make([]types.Candle, 0, len(result.List))

	for i := len(result.List) - 1; i >= 0; i-- {
		candle, err := parseKline(symbol, interval, duration, result.List[i])
		if err != nil {
			return nil, err
		}

		candles = append(candles, candle)
	}

	return candles, nil
}

// LastClosedCandle returns the most recent fully closed kline. The head of a
// limit-2 query is the still-forming candle; the second element is the one
// that just closed.
func (b *BybitClient) LastClosedCandle(ctx context.Context, symbol, interval string) (types.Candle, error) {
	candles, err := b.GetCandles(ctx, symbol, interval, 2)
	if err != nil {
		return types.Candle{}, err
	}

	if len(candles) < 2 {
		return types.Candle{}, errors.Newf(errors.ErrCodeNoClosedCandle,
			"no closed candle available for %s %s", symbol, interval)
	}

	// chronological order: the closed candle precedes the forming one.
	return candles[len(candles)-2], nil
}

// GetPosition returns the open linear position for symbol, None when the
// exchange reports zero size.
func (b *BybitClient) GetPosition(ctx context.Context, symbol string) (optional.Option[types.Position], error) {
	params := url.Values{}
	params.Set("category", "linear")
	params.Set("symbol", symbol)

	var result positionResult
	if err := b.get(ctx, "/v5/position/list", params, &result); err != nil {
		return optional.None[types.Position](), err
	}

	if len(result.List) == 0 {
		return optional.None[types.Position](), nil
	}

	raw := result.List[0]

	size, err := strconv.ParseFloat(raw.Size, 64)
	if err != nil || size == 0 {
		return optional.None[types.Position](), nil
	}

	position := types.Position{
		Symbol:        raw.Symbol,
		Side:          types.PositionSide(raw.Side),
		Size:          size,
		EntryPrice:    parseFloat(raw.AvgPrice),
		MarkPrice:     parseFloat(raw.MarkPrice),
		Leverage:      parseFloat(raw.Leverage),
		UnrealisedPnL: parseFloat(raw.UnrealisedPnl),
	}

	if tp := parseFloat(raw.TakeProfit); tp > 0 {
		position.TakeProfit = optional.Some(tp)
	}

	if sl := parseFloat(raw.StopLoss); sl > 0 {
		position.StopLoss = optional.Some(sl)
	}

	return optional.Some(position), nil
}

// OpenPosition sets leverage when requested and places a market order with
// TP/SL attached. Returns the exchange order id.
func (b *BybitClient) OpenPosition(ctx context.Context, params OpenPositionParams) (string, error) {
	if params.Leverage > 0 {
		if err := b.setLeverage(ctx, params.Symbol, params.Leverage); err != nil {
			return "", err
		}
	}

	body := map[string]string{
		"category":  "linear",
		"symbol":    params.Symbol,
		"side":      string(params.Side),
		"orderType": "Market",
		"qty":       strconv.FormatFloat(params.Qty, 'f', -1, 64),
	}

	if params.OrderLinkID != "" {
		body["orderLinkId"] = params.OrderLinkID
	}

	if tp, err := params.TakeProfit.Take(); err == nil {
		body["takeProfit"] = strconv.FormatFloat(tp, 'f', -1, 64)
	}

	if sl, err := params.StopLoss.Take(); err == nil {
		body["stopLoss"] = strconv.FormatFloat(sl, 'f', -1, 64)
	}

	var result orderResult
	if err := b.post(ctx, "/v5/order/create", body, &result); err != nil {
		return "", errors.Wrap(errors.ErrCodeOrderFailed, "failed to open position", err)
	}

	b.logger.Info("Opened position",
		zap.String("symbol", params.Symbol),
		zap.String("side", string(params.Side)),
		zap.Float64("qty", params.Qty),
		zap.String("order_id", result.OrderID),
		zap.String("order_link_id", params.OrderLinkID),
	)

	return result.OrderID, nil
}

// ClosePosition flattens the open position with a reduce-only market order
// on the opposite side. orderLinkID is the exchange-side idempotency key; an
// empty one gets a freshly minted key. Returns the exchange order id.
func (b *BybitClient) ClosePosition(ctx context.Context, symbol, orderLinkID string) (string, error) {
	position, err := b.GetPosition(ctx, symbol)
	if err != nil {
		return "", err
	}

	open, err := position.Take()
	if err != nil {
		return "", errors.Newf(errors.ErrCodePositionNotFound, "no open position for %s", symbol)
	}

	if orderLinkID == "" {
		orderLinkID = "close-" + uuid.New().String()
	}

	body := map[string]string{
		"category":    "linear",
		"symbol":      symbol,
		"side":        string(open.Side.Opposite()),
		"orderType":   "Market",
		"qty":         strconv.FormatFloat(open.Size, 'f', -1, 64),
		"reduceOnly":  "true",
		"orderLinkId": orderLinkID,
	}

	var result orderResult
	if err := b.post(ctx, "/v5/order/create", body, &result); err != nil {
		return "", errors.Wrap(errors.ErrCodeOrderFailed, "failed to close position", err)
	}

	b.logger.Info("Closed position",
		zap.String("symbol", symbol),
		zap.String("side", string(open.Side)),
		zap.Float64("qty", open.Size),
		zap.String("order_id", result.OrderID),
	)

	return result.OrderID, nil
}

func (b *BybitClient) setLeverage(ctx context.Context, symbol string, leverage int) error {
	body := map[string]string{
		"category":     "linear",
		"symbol":       symbol,
		"buyLeverage":  strconv.Itoa(leverage),
		"sellLeverage": strconv.Itoa(leverage),
	}

	err := b.post(ctx, "/v5/position/set-leverage", body, nil)

	var domainErr *DomainError
	if errors.As(err, &domainErr) && domainErr.RetCode == retCodeLeverageNotModified {
		return nil
	}

	return err
}

func (b *BybitClient) get(ctx context.Context, path string, params url.Values, out any) error {
	query := params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		b.config.BaseURL+path+"?"+query, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExchangeRequestFailed, "failed to build request", err)
	}

	b.sign(req, query)

	return b.send(req, out)
}

func (b *BybitClient) post(ctx context.Context, path string, body map[string]string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExchangeRequestFailed, "failed to encode request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		b.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(errors.ErrCodeExchangeRequestFailed, "failed to build request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	b.sign(req, string(payload))

	return b.send(req, out)
}

// sign applies the v5 HMAC headers: the signature covers
// timestamp + api key + recv window + query string or JSON body.
func (b *BybitClient) sign(req *http.Request, payload string) {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)

	mac := hmac.New(sha256.New, []byte(b.config.APISecret))
	mac.Write([]byte(timestamp + b.config.APIKey + defaultRecvWindow + payload))

	req.Header.Set("X-BAPI-API-KEY", b.config.APIKey)
	req.Header.Set("X-BAPI-TIMESTAMP", timestamp)
	req.Header.Set("X-BAPI-RECV-WINDOW", defaultRecvWindow)
	req.Header.Set("X-BAPI-SIGN", hex.EncodeToString(mac.Sum(nil)))
}

func (b *BybitClient) send(req *http.Request, out any) error {
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExchangeRequestFailed, "exchange request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExchangeRequestFailed, "failed to read exchange response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return errors.Newf(errors.ErrCodeExchangeRequestFailed,
			"exchange returned status %d: %s", resp.StatusCode, body)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataParseFailed, "failed to decode exchange response", err)
	}

	if env.RetCode != 0 {
		return errors.Wrap(errors.ErrCodeExchangeDomainError, "exchange rejected request",
			&DomainError{RetCode: env.RetCode, RetMsg: env.RetMsg})
	}

	if out != nil {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return errors.Wrap(errors.ErrCodeMarketDataParseFailed, "failed to decode exchange result", err)
		}
	}

	return nil
}

func parseKline(symbol, interval string, duration time.Duration, row []string) (types.Candle, error) {
	if len(row) < 6 {
		return types.Candle{}, errors.Newf(errors.ErrCodeMarketDataParseFailed,
			"kline row has %d fields, want at least 6", len(row))
	}

	startMs, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return types.Candle{}, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "bad kline start time", err)
	}

	openTime := time.UnixMilli(startMs).UTC()

	return types.Candle{
		Symbol:    symbol,
		Interval:  interval,
		OpenTime:  openTime,
		CloseTime: openTime.Add(duration),
		Open:      parseFloat(row[1]),
		High:      parseFloat(row[2]),
		Low:       parseFloat(row[3]),
		Close:     parseFloat(row[4]),
		Volume:    parseFloat(row[5]),
	}, nil
}

func parseFloat(s string) float64 {
	value, _ := strconv.ParseFloat(s, 64)

	return value
}
