package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"market-data-service/internal/application/dto"
	"market-data-service/internal/domain/entities"
	"market-data-service/internal/domain/interfaces"
	"market-data-service/internal/infrastructure/logging"

	"github.com/gorilla/websocket"
)

// Límites del intervalo de push
const (
	DefaultStreamInterval = 5 * time.Second
	MinStreamInterval     = time.Second
	MaxStreamInterval     = 5 * time.Minute

	streamWriteWait = 10 * time.Second
	streamPongWait  = 60 * time.Second
)

// StreamHandler empuja batches de quotes por websocket en intervalos fijos
type StreamHandler struct {
	market     interfaces.MarketDataService
	mapper     *dto.MarketMapper
	maxSymbols int
	upgrader   websocket.Upgrader

	// pongWait acota el silencio del cliente; los pings salen cada 9/10 de pongWait
	pongWait time.Duration
}

// NewStreamHandler creates a new stream handler. allowedOrigins vacío o con "*"
// acepta cualquier origen.
func NewStreamHandler(market interfaces.MarketDataService, maxSymbols int, allowedOrigins []string) *StreamHandler {
	if maxSymbols <= 0 {
		maxSymbols = dto.DefaultMaxSymbols
	}

	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &StreamHandler{
		market:     market,
		mapper:     dto.NewMarketMapper(),
		maxSymbols: maxSymbols,
		pongWait:   streamPongWait,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(origins) == 0 || origins["*"] || origins[origin]
			},
		},
	}
}

// Stream godoc
// @Summary Stream quotes over websocket
// @Description Upgrades the connection and pushes a quotes batch immediately and then every interval, until the client disconnects.
// @Tags market
// @Param symbols query string true "Comma separated symbols" example(AAPL,MSFT)
// @Param interval query string false "Push interval (Go duration, 1s to 5m)" default(5s)
// @Success 101 {object} dto.QuotesResponse "Each message is a quotes batch"
// @Failure 400 {object} dto.ErrorResponse "Invalid symbols or interval"
// @Router /api/v1/stream [get]
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	request := dto.NewQuotesRequest(query.Get("symbols"))
	if err := request.Validate(h.maxSymbols); err != nil {
		writeValidationError(ctx, w, query.Get("symbols"), err)
		return
	}

	interval, err := parseStreamInterval(query.Get("interval"))
	if err != nil {
		writeValidationError(ctx, w, query.Get("interval"), err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade ya respondió al cliente
		logging.WarnWithError(ctx, "Websocket upgrade failed", err, nil)
		return
	}
	defer conn.Close()

	// el contexto del request no sigue vivo de forma confiable tras el hijack
	streamCtx, cancel := context.WithCancel(logging.WithRequestID(context.Background(), logging.GetRequestID(ctx)))
	defer cancel()

	logging.Info(streamCtx, "Quote stream opened", logging.Fields{
		logging.FieldSymbols: request.Symbols,
		"interval":           interval.String(),
	})

	go h.readLoop(conn, cancel)

	pushed := h.pushLoop(streamCtx, conn, request.Symbols, interval)

	logging.Info(streamCtx, "Quote stream closed", logging.Fields{
		logging.FieldSymbols: request.Symbols,
		"messages":           pushed,
	})
}

// readLoop descarta mensajes del cliente y cancela al cerrarse la conexión
func (h *StreamHandler) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	}
}

func (h *StreamHandler) pushLoop(ctx context.Context, conn *websocket.Conn, symbols []string, interval time.Duration) int {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// el ping va por su cuenta: un intervalo de push largo no debe vencer el read deadline
	pinger := time.NewTicker(h.pongWait * 9 / 10)
	defer pinger.Stop()

	pushed := 0
	for {
		result := h.market.GetQuotes(ctx, symbols)
		if ctx.Err() != nil {
			return pushed
		}

		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := conn.WriteJSON(h.mapper.ToQuotesResponse(result)); err != nil {
			logging.Debug(ctx, "Quote stream write failed", logging.Fields{
				logging.FieldError: err.Error(),
			})
			return pushed
		}
		pushed++

		if !h.waitNextPush(ctx, conn, ticker.C, pinger.C) {
			return pushed
		}
	}
}

// waitNextPush espera el próximo tick de push enviando pings mientras tanto.
// Retorna false si el stream terminó.
func (h *StreamHandler) waitNextPush(ctx context.Context, conn *websocket.Conn, push, ping <-chan time.Time) bool {
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(streamWriteWait))
			return false
		case <-push:
			return true
		case <-ping:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return false
			}
		}
	}
}

func parseStreamInterval(raw string) (time.Duration, error) {
	if raw == "" {
		return DefaultStreamInterval, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, entities.Wrap(entities.ErrValidation, fmt.Sprintf("invalid interval %q", raw))
	}
	if d < MinStreamInterval || d > MaxStreamInterval {
		return 0, entities.Wrap(entities.ErrValidation,
			fmt.Sprintf("interval must be between %s and %s", MinStreamInterval, MaxStreamInterval))
	}
	return d, nil
}
