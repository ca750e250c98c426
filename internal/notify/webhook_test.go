package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadia-lab/sentinel-trading/internal/logger"
	"github.com/arcadia-lab/sentinel-trading/internal/types"
)

type recordingHandler struct {
	events []types.CallbackEvent
}

func (h *recordingHandler) HandleCallback(_ context.Context, event types.CallbackEvent) error {
	h.events = append(h.events, event)

	return nil
}

type stubPositions struct {
	position optional.Option[types.Position]
}

func (s *stubPositions) GetPosition(_ context.Context, symbol string) (optional.Option[types.Position], error) {
	return s.position, nil
}

func newTestServer(handler *recordingHandler, positions PositionSource) *Server {
	return NewServer(handler, positions, "secret-key", logger.NewNopLogger())
}

func postWebhook(t *testing.T, server *Server, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	return rec
}

func TestWebhookDispatchesCallback(t *testing.T) {
	handler := &recordingHandler{}
	server := newTestServer(handler, &stubPositions{})

	rec := postWebhook(t, server, `{
		"update_id": 1,
		"callback_query": {"id": "q-1", "data": "execute_42"}
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, handler.events, 1)
	assert.Equal(t, types.CallbackVerbExecute, handler.events[0].Verb)
	assert.Equal(t, int64(42), handler.events[0].SignalID)
	assert.Equal(t, "q-1", handler.events[0].QueryID)
}

func TestWebhookIgnoresMalformedCallbackData(t *testing.T) {
	handler := &recordingHandler{}
	server := newTestServer(handler, &stubPositions{})

	rec := postWebhook(t, server, `{
		"update_id": 1,
		"callback_query": {"id": "q-1", "data": "approve_42"}
	}`)

	// still 200 so Telegram does not retry
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, handler.events)
}

func TestWebhookIgnoresPlainMessages(t *testing.T) {
	handler := &recordingHandler{}
	server := newTestServer(handler, &stubPositions{})

	rec := postWebhook(t, server, `{
		"update_id": 1,
		"message": {"text": "hello", "chat": {"id": 7}}
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, handler.events)
}

func TestWebhookToleratesBadJSON(t *testing.T) {
	handler := &recordingHandler{}
	server := newTestServer(handler, &stubPositions{})

	rec := postWebhook(t, server, `{not json`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, handler.events)
}

func TestInternalPositionsRequiresKey(t *testing.T) {
	server := newTestServer(&recordingHandler{}, &stubPositions{})

	req := httptest.NewRequest(http.MethodGet, "/internal/positions?symbol=BTCUSDT", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/internal/positions?symbol=BTCUSDT", nil)
	req.Header.Set("X-Internal-Key", "wrong")
	rec = httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestInternalPositionsDisabledWithoutKey(t *testing.T) {
	server := NewServer(&recordingHandler{}, &stubPositions{}, "", logger.NewNopLogger())

	req := httptest.NewRequest(http.MethodGet, "/internal/positions?symbol=BTCUSDT", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInternalPositionsReportsOpenPosition(t *testing.T) {
	positions := &stubPositions{
		position: optional.Some(types.Position{
			Symbol:     "BTCUSDT",
			Side:       types.PositionSideBuy,
			EntryPrice: 50000,
			Size:       0.01,
		}),
	}

	server := newTestServer(&recordingHandler{}, positions)

	req := httptest.NewRequest(http.MethodGet, "/internal/positions?symbol=BTCUSDT", nil)
	req.Header.Set("X-Internal-Key", "secret-key")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"open":true`)
	assert.Contains(t, rec.Body.String(), `"BTCUSDT"`)
}

func TestInternalPositionsReportsFlat(t *testing.T) {
	server := newTestServer(&recordingHandler{}, &stubPositions{position: optional.None[types.Position]()})

	req := httptest.NewRequest(http.MethodGet, "/internal/positions?symbol=BTCUSDT", nil)
	req.Header.Set("X-Internal-Key", "secret-key")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"open":false`)
}

func TestInternalPositionsRequiresSymbol(t *testing.T) {
	server := newTestServer(&recordingHandler{}, &stubPositions{})

	req := httptest.NewRequest(http.MethodGet, "/internal/positions", nil)
	req.Header.Set("X-Internal-Key", "secret-key")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
