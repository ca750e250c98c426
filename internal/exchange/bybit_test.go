package exchange

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadia-lab/sentinel-trading/internal/logger"
	"github.com/arcadia-lab/sentinel-trading/internal/types"
	"github.com/arcadia-lab/sentinel-trading/pkg/errors"
)

// bybitStub is a configurable fake for the v5 REST surface.
type bybitStub struct {
	t *testing.T

	klineRows        [][]string
	positionRows     []map[string]string
	leverageRetCode  int
	orderBodies      []map[string]string
	setLeverageCalls int
}

func (s *bybitStub) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v5/market/kline", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(s.t, "linear", r.URL.Query().Get("category"))
		s.reply(w, 0, "OK", map[string]any{"list": s.klineRows})
	})

	mux.HandleFunc("/v5/position/list", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(s.t, r.Header.Get("X-BAPI-SIGN"))
		assert.NotEmpty(s.t, r.Header.Get("X-BAPI-TIMESTAMP"))
		s.reply(w, 0, "OK", map[string]any{"list": s.positionRows})
	})

	mux.HandleFunc("/v5/position/set-leverage", func(w http.ResponseWriter, r *http.Request) {
		s.setLeverageCalls++
		s.reply(w, s.leverageRetCode, "leverage", map[string]any{})
	})

	mux.HandleFunc("/v5/order/create", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(s.t, json.NewDecoder(r.Body).Decode(&body))
		s.orderBodies = append(s.orderBodies, body)
		s.reply(w, 0, "OK", map[string]any{"orderId": "order-123", "orderLinkId": body["orderLinkId"]})
	})

	return mux
}

func (s *bybitStub) reply(w http.ResponseWriter, retCode int, retMsg string, result map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	require.NoError(s.t, json.NewEncoder(w).Encode(map[string]any{
		"retCode": retCode,
		"retMsg":  retMsg,
		"result":  result,
	}))
}

func newStubClient(t *testing.T, stub *bybitStub) (*BybitClient, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(stub.handler())

	client := NewBybitClient(BybitConfig{
		APIKey:    "key",
		APISecret: "secret",
		BaseURL:   server.URL,
	}, server.Client(), logger.NewNopLogger())

	return client, server
}

func TestGetCandlesReversesToChronological(t *testing.T) {
	stub := &bybitStub{
		t: t,
		// newest first, as the exchange serves them
		klineRows: [][]string{
			{"1717243200000", "50200", "50300", "50100", "50250", "12", "0"},
			{"1717228800000", "50000", "50100", "49900", "50050", "10", "0"},
		},
	}

	client, server := newStubClient(t, stub)
	defer server.Close()

	candles, err := client.GetCandles(context.Background(), "BTCUSDT", "240", 2)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	assert.True(t, candles[0].OpenTime.Before(candles[1].OpenTime))
	assert.Equal(t, 50050.0, candles[0].Close)
	assert.Equal(t, 50250.0, candles[1].Close)
	assert.Equal(t, candles[0].OpenTime.Add(4*time.Hour), candles[0].CloseTime)
	assert.Equal(t, "BTCUSDT", candles[0].Symbol)
	assert.Equal(t, "240", candles[0].Interval)
}

func TestLastClosedCandleSkipsFormingCandle(t *testing.T) {
	stub := &bybitStub{
		t: t,
		klineRows: [][]string{
			{"1717243200000", "50200", "50300", "50100", "50250", "12", "0"}, // forming
			{"1717228800000", "50000", "50100", "49900", "50050", "10", "0"}, // closed
		},
	}

	client, server := newStubClient(t, stub)
	defer server.Close()

	candle, err := client.LastClosedCandle(context.Background(), "BTCUSDT", "240")
	require.NoError(t, err)
	assert.Equal(t, 50050.0, candle.Close)
}

func TestLastClosedCandleRequiresTwoRows(t *testing.T) {
	stub := &bybitStub{
		t:         t,
		klineRows: [][]string{{"1717243200000", "50200", "50300", "50100", "50250", "12", "0"}},
	}

	client, server := newStubClient(t, stub)
	defer server.Close()

	_, err := client.LastClosedCandle(context.Background(), "BTCUSDT", "240")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNoClosedCandle))
}

func TestDomainErrorOnRetCode(t *testing.T) {
	stub := &bybitStub{t: t}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.reply(w, 10001, "params error", map[string]any{})
	}))
	defer server.Close()

	client := NewBybitClient(BybitConfig{BaseURL: server.URL}, server.Client(), logger.NewNopLogger())

	_, err := client.GetCandles(context.Background(), "BTCUSDT", "240", 2)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeExchangeDomainError))

	var domainErr *DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, 10001, domainErr.RetCode)
}

func TestGetPositionZeroSizeIsNone(t *testing.T) {
	stub := &bybitStub{
		t: t,
		positionRows: []map[string]string{
			{"symbol": "BTCUSDT", "side": "Buy", "size": "0", "avgPrice": "0"},
		},
	}

	client, server := newStubClient(t, stub)
	defer server.Close()

	position, err := client.GetPosition(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.True(t, position.IsNone())
}

func TestGetPositionParsesOpenPosition(t *testing.T) {
	stub := &bybitStub{
		t: t,
		positionRows: []map[string]string{
			{
				"symbol":        "BTCUSDT",
				"side":          "Sell",
				"size":          "0.5",
				"avgPrice":      "50000",
				"markPrice":     "49500",
				"leverage":      "3",
				"unrealisedPnl": "250",
				"takeProfit":    "48000",
				"stopLoss":      "51000",
			},
		},
	}

	client, server := newStubClient(t, stub)
	defer server.Close()

	position, err := client.GetPosition(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	require.True(t, position.IsSome())

	open := position.Unwrap()
	assert.Equal(t, types.PositionSideSell, open.Side)
	assert.Equal(t, 0.5, open.Size)
	assert.Equal(t, 50000.0, open.EntryPrice)
	assert.Equal(t, 48000.0, open.TakeProfit.Unwrap())
	assert.Equal(t, 51000.0, open.StopLoss.Unwrap())
}

func TestOpenPositionPlacesMarketOrder(t *testing.T) {
	stub := &bybitStub{t: t}

	client, server := newStubClient(t, stub)
	defer server.Close()

	orderID, err := client.OpenPosition(context.Background(), OpenPositionParams{
		Symbol:      "BTCUSDT",
		Side:        types.PositionSideBuy,
		Qty:         0.01,
		Leverage:    3,
		TakeProfit:  optional.Some(52000.0),
		StopLoss:    optional.Some(49000.0),
		OrderLinkID: "signal-42",
	})
	require.NoError(t, err)
	assert.Equal(t, "order-123", orderID)
	assert.Equal(t, 1, stub.setLeverageCalls)

	require.Len(t, stub.orderBodies, 1)

	order := stub.orderBodies[0]
	assert.Equal(t, "linear", order["category"])
	assert.Equal(t, "Buy", order["side"])
	assert.Equal(t, "Market", order["orderType"])
	assert.Equal(t, "0.01", order["qty"])
	assert.Equal(t, "52000", order["takeProfit"])
	assert.Equal(t, "49000", order["stopLoss"])
	assert.Equal(t, "signal-42", order["orderLinkId"])
}

func TestOpenPositionToleratesLeverageNotModified(t *testing.T) {
	stub := &bybitStub{t: t, leverageRetCode: retCodeLeverageNotModified}

	client, server := newStubClient(t, stub)
	defer server.Close()

	_, err := client.OpenPosition(context.Background(), OpenPositionParams{
		Symbol:   "BTCUSDT",
		Side:     types.PositionSideBuy,
		Qty:      0.01,
		Leverage: 3,
	})
	require.NoError(t, err)
	assert.Len(t, stub.orderBodies, 1)
}

func TestClosePositionIsReduceOnlyOpposite(t *testing.T) {
	stub := &bybitStub{
		t: t,
		positionRows: []map[string]string{
			{"symbol": "BTCUSDT", "side": "Buy", "size": "0.5", "avgPrice": "50000"},
		},
	}

	client, server := newStubClient(t, stub)
	defer server.Close()

	orderID, err := client.ClosePosition(context.Background(), "BTCUSDT", "signal-7")
	require.NoError(t, err)
	assert.Equal(t, "order-123", orderID)

	require.Len(t, stub.orderBodies, 1)

	order := stub.orderBodies[0]
	assert.Equal(t, "Sell", order["side"])
	assert.Equal(t, "0.5", order["qty"])
	assert.Equal(t, "true", order["reduceOnly"])
	assert.Equal(t, "signal-7", order["orderLinkId"])
}

func TestClosePositionMintsKeyWhenAbsent(t *testing.T) {
	stub := &bybitStub{
		t: t,
		positionRows: []map[string]string{
			{"symbol": "BTCUSDT", "side": "Buy", "size": "0.5", "avgPrice": "50000"},
		},
	}

	client, server := newStubClient(t, stub)
	defer server.Close()

	_, err := client.ClosePosition(context.Background(), "BTCUSDT", "")
	require.NoError(t, err)

	require.Len(t, stub.orderBodies, 1)
	assert.True(t, strings.HasPrefix(stub.orderBodies[0]["orderLinkId"], "close-"))
}

func TestClosePositionWithoutOpenPosition(t *testing.T) {
	stub := &bybitStub{t: t}

	client, server := newStubClient(t, stub)
	defer server.Close()

	_, err := client.ClosePosition(context.Background(), "BTCUSDT", "signal-7")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodePositionNotFound))
}
