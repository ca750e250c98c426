package oracle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadia-lab/sentinel-trading/internal/analysis"
	"github.com/arcadia-lab/sentinel-trading/internal/logger"
	"github.com/arcadia-lab/sentinel-trading/internal/types"
)

func testPayload() analysis.Payload {
	return analysis.Payload{
		Symbol:       "BTCUSDT",
		Interval:     "240",
		CurrentPrice: 50000,
		WindowHigh:   52000,
		WindowLow:    48000,
	}
}

// oracleServer returns a chat-completions stub that answers with content.
func oracleServer(t *testing.T, content string, requests *[][]byte) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		if requests != nil {
			*requests = append(*requests, body)
		}

		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		response := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
}

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()

	client, err := NewClient(Config{
		BaseURL:     server.URL,
		APIKey:      "test-key",
		Model:       "gpt-4o-mini",
		Temperature: 0.6,
	}, server.Client(), logger.NewNopLogger())
	require.NoError(t, err)

	return client
}

func TestDecideReturnsValidDecision(t *testing.T) {
	content := `{"action":"LONG","confidence":80,"entryPrice":50100,"stopLoss":49000,"takeProfit":52000,"rrRatio":1.7}`

	server := oracleServer(t, content, nil)
	defer server.Close()

	client := newTestClient(t, server)

	decision := client.Decide(context.Background(), testPayload(), optional.None[types.Position]())
	require.True(t, decision.IsSome())

	got := decision.Unwrap()
	assert.Equal(t, types.ActionLong, got.Action)
	assert.Equal(t, 80.0, got.Confidence)
	assert.Equal(t, 50100.0, got.EntryPrice)
}

func TestDecideRejectsOutOfSchemaDecision(t *testing.T) {
	// confidence above 100 fails validation
	content := `{"action":"LONG","confidence":150,"entryPrice":50100,"stopLoss":49000,"takeProfit":52000,"rrRatio":1.7}`

	server := oracleServer(t, content, nil)
	defer server.Close()

	client := newTestClient(t, server)

	decision := client.Decide(context.Background(), testPayload(), optional.None[types.Position]())
	assert.True(t, decision.IsNone())
}

func TestDecideRejectsEntryOutsideWindow(t *testing.T) {
	content := `{"action":"LONG","confidence":80,"entryPrice":60000,"stopLoss":59000,"takeProfit":62000,"rrRatio":2}`

	server := oracleServer(t, content, nil)
	defer server.Close()

	client := newTestClient(t, server)

	decision := client.Decide(context.Background(), testPayload(), optional.None[types.Position]())
	assert.True(t, decision.IsNone())
}

func TestDecideRejectsWrongSideStopLoss(t *testing.T) {
	// LONG with stop loss above entry
	content := `{"action":"LONG","confidence":80,"entryPrice":50100,"stopLoss":51000,"takeProfit":52000,"rrRatio":2}`

	server := oracleServer(t, content, nil)
	defer server.Close()

	client := newTestClient(t, server)

	decision := client.Decide(context.Background(), testPayload(), optional.None[types.Position]())
	assert.True(t, decision.IsNone())
}

func TestDecideSwallowsMalformedContent(t *testing.T) {
	server := oracleServer(t, "I cannot answer in JSON today.", nil)
	defer server.Close()

	client := newTestClient(t, server)

	decision := client.Decide(context.Background(), testPayload(), optional.None[types.Position]())
	assert.True(t, decision.IsNone())
}

func TestDecideSwallowsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	decision := client.Decide(context.Background(), testPayload(), optional.None[types.Position]())
	assert.True(t, decision.IsNone())
}

func TestDecideSwallowsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "k", Model: "m"}, nil, logger.NewNopLogger())
	require.NoError(t, err)

	decision := client.Decide(context.Background(), testPayload(), optional.None[types.Position]())
	assert.True(t, decision.IsNone())
}

func TestDecideUsesPositionManagementPrompt(t *testing.T) {
	content := `{"action":"HOLD","confidence":60,"entryPrice":50000,"stopLoss":49000,"takeProfit":52000,"rrRatio":2}`

	var requests [][]byte

	server := oracleServer(t, content, &requests)
	defer server.Close()

	client := newTestClient(t, server)

	position := optional.Some(types.Position{
		Symbol:     "BTCUSDT",
		Side:       types.PositionSideBuy,
		EntryPrice: 50000,
		Size:       0.01,
	})

	decision := client.Decide(context.Background(), testPayload(), position)
	require.True(t, decision.IsSome())
	assert.Equal(t, types.ActionHold, decision.Unwrap().Action)

	require.Len(t, requests, 1)

	var request chatRequest
	require.NoError(t, json.Unmarshal(requests[0], &request))
	require.Len(t, request.Messages, 2)
	assert.Contains(t, request.Messages[0].Content, "position manager")
	assert.Contains(t, request.Messages[1].Content, "open position")
	assert.Contains(t, request.Messages[0].Content, "$schema")
	assert.Equal(t, "json_object", request.ResponseFormat.Type)
	assert.Equal(t, "gpt-4o-mini", request.Model)
}
