package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/arcadia-lab/sentinel-trading/internal/logger"
	"github.com/arcadia-lab/sentinel-trading/internal/types"
)

// CallbackHandler consumes parsed callback events.
type CallbackHandler interface {
	HandleCallback(ctx context.Context, event types.CallbackEvent) error
}

// PositionSource serves the internal positions endpoint.
type PositionSource interface {
	GetPosition(ctx context.Context, symbol string) (optional.Option[types.Position], error)
}

// Server receives Telegram webhook updates and exposes the guarded internal
// positions endpoint.
type Server struct {
	router      *mux.Router
	handler     CallbackHandler
	positions   PositionSource
	internalKey string
	logger      *logger.Logger
	httpServer  *http.Server
}

// NewServer wires the routes. internalKey guards /internal/*; an empty key
// disables those routes entirely.
func NewServer(handler CallbackHandler, positions PositionSource, internalKey string, logger *logger.Logger) *Server {
	s := &Server{
		router:      mux.NewRouter(),
		handler:     handler,
		positions:   positions,
		internalKey: internalKey,
		logger:      logger,
	}

	s.router.HandleFunc("/telegram/webhook", s.handleWebhook).Methods(http.MethodPost)

	if internalKey != "" {
		internal := s.router.PathPrefix("/internal").Subrouter()
		internal.Use(s.internalKeyMiddleware)
		internal.HandleFunc("/positions", s.handlePositions).Methods(http.MethodGet)
	}

	return s
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Webhook server listening", zap.String("addr", addr))

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// update mirrors the subset of the Telegram update object we consume.
type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
	CallbackQuery *struct {
		ID   string `json:"id"`
		Data string `json:"data"`
	} `json:"callback_query"`
}

// handleWebhook always answers 200: Telegram retries non-2xx deliveries and
// a permanently malformed update would retry forever.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var u update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		s.logger.Warn("Discarding malformed webhook update", zap.Error(err))
		w.WriteHeader(http.StatusOK)

		return
	}

	switch {
	case u.CallbackQuery != nil:
		verb, signalID, err := types.ParseCallbackData(u.CallbackQuery.Data)
		if err != nil {
			s.logger.Warn("Discarding unparseable callback",
				zap.String("data", u.CallbackQuery.Data),
				zap.Error(err),
			)

			break
		}

		event := types.CallbackEvent{
			Verb:     verb,
			SignalID: signalID,
			QueryID:  u.CallbackQuery.ID,
		}

		if err := s.handler.HandleCallback(r.Context(), event); err != nil {
			s.logger.Error("Callback handling failed",
				zap.String("verb", string(verb)),
				zap.Int64("signal_id", signalID),
				zap.Error(err),
			)
		}
	case u.Message != nil:
		s.logger.Info("Ignoring plain message",
			zap.Int64("chat_id", u.Message.Chat.ID),
			zap.String("text", u.Message.Text),
		)
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) internalKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Internal-Key") != s.internalKey {
			http.Error(w, "forbidden", http.StatusForbidden)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)

		return
	}

	position, err := s.positions.GetPosition(r.Context(), symbol)
	if err != nil {
		s.logger.Error("Position lookup failed", zap.String("symbol", symbol), zap.Error(err))
		http.Error(w, "position lookup failed", http.StatusBadGateway)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	open, err := position.Take()
	if err != nil {
		json.NewEncoder(w).Encode(map[string]any{"symbol": symbol, "open": false})

		return
	}

	json.NewEncoder(w).Encode(map[string]any{"symbol": symbol, "open": true, "position": open})
}
